package payments

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"cofilab-backend/internal/database"
	"cofilab-backend/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	DB     *gorm.DB
	Oracle SettlementOracle
}

// NewInvoiceID derives a globally-unique opaque invoice identifier from the
// amount, wall-clock time and random bytes. Uniqueness, not reversibility,
// is the requirement.
func NewInvoiceID(amountSats int64) string {
	var nonce [8]byte
	_, _ = rand.Read(nonce[:])
	seed := fmt.Sprintf("%d-%d-%s", amountSats, time.Now().UnixNano(), hex.EncodeToString(nonce[:]))
	sum := sha256.Sum256([]byte(seed))
	return fmt.Sprintf("lnbc%dn1p%s", amountSats, hex.EncodeToString(sum[:])[:50])
}

// CreateInvoice stores a pending Payment for the task's beneficiary. No
// balance effect until settlement.
func (s *Service) CreateInvoice(ctx context.Context, taskID uint, amountSats int64) (*domain.Payment, error) {
	var task domain.Task
	if err := s.DB.WithContext(ctx).First(&task, taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.AssignedToID == nil {
		return nil, ErrNoBeneficiary
	}

	payment := domain.Payment{
		TaskID:     task.ID,
		UserID:     *task.AssignedToID,
		LnInvoice:  NewInvoiceID(amountSats),
		AmountSats: amountSats,
		Status:     domain.PaymentStatusPending,
	}
	if err := s.DB.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// Settle looks up the payment by invoice id and, if the oracle confirms
// settlement, atomically flips it to paid and decrements the owning
// project's live balance. Already-paid payments short-circuit: PaidAt is
// never rewritten and the balance is never re-decremented. An unconfirmed
// invoice comes back still pending with no mutation.
func (s *Service) Settle(ctx context.Context, invoiceID string) (*domain.Payment, error) {
	var payment domain.Payment
	if err := s.DB.WithContext(ctx).Where("ln_invoice = ?", invoiceID).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status == domain.PaymentStatusPaid {
		return &payment, nil
	}

	settled, err := s.Oracle.IsSettled(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !settled {
		return &payment, nil
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-read under the transaction; two settlement callbacks can race.
		if err := tx.Where("ln_invoice = ?", invoiceID).First(&payment).Error; err != nil {
			return err
		}
		if payment.Status == domain.PaymentStatusPaid {
			return nil
		}

		var task domain.Task
		if err := tx.First(&task, payment.TaskID).Error; err != nil {
			return err
		}
		var project domain.Project
		if err := database.LockForUpdate(tx).First(&project, task.ProjectID).Error; err != nil {
			return err
		}
		if project.CurrentBalance < payment.AmountSats {
			return ErrInsufficientBalance
		}

		now := time.Now()
		payment.Status = domain.PaymentStatusPaid
		payment.PaidAt = &now
		if err := tx.Model(&domain.Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
			"status":  domain.PaymentStatusPaid,
			"paid_at": now,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&domain.Project{}).Where("id = ?", project.ID).
			UpdateColumn("current_balance", gorm.Expr("current_balance - ?", payment.AmountSats)).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// History returns a user's payments, newest first.
func (s *Service) History(ctx context.Context, userID uint) ([]domain.Payment, error) {
	var list []domain.Payment
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&list).Error
	return list, err
}
