package domain

import (
	"time"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Payment is an append-only outbound ledger entry tied to a task and a
// beneficiary. pending→paid is the only transition; a paid payment is
// immutable and PaidAt is set exactly once.
type Payment struct {
	ID         uint       `gorm:"column:id;primaryKey" json:"id"`
	TaskID     uint       `gorm:"column:task_id;not null;index" json:"task_id"`
	Task       *Task      `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	UserID     uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	LnInvoice  string     `gorm:"column:ln_invoice;size:255;not null;uniqueIndex" json:"ln_invoice"`
	AmountSats int64      `gorm:"column:amount_sats;not null;default:0" json:"amount_sats"`
	Status     string     `gorm:"column:status;size:30;not null;default:'pending'" json:"status"`
	PaidAt     *time.Time `gorm:"column:paid_at" json:"paid_at"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
