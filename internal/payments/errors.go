package payments

import "errors"

var (
	ErrTaskNotFound        = errors.New("Task not found")
	ErrNoBeneficiary       = errors.New("Task has no assigned beneficiary")
	ErrPaymentNotFound     = errors.New("Payment not found")
	ErrInsufficientBalance = errors.New("Settling would drive project balance negative")
)
