package distribution

import (
	"context"

	"cofilab-backend/internal/domain"
	"cofilab-backend/internal/payments"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Job creates reward payments for a project's validated tasks.
type Job struct {
	DB *gorm.DB
}

// Distribute creates one pending Payment per validated, unrewarded task with
// a beneficiary, sized by the task's cached reward_sats, and marks the task
// rewarded. Each (create-payment, mark-rewarded) pair is one transaction;
// rewarded=true is the commit signal, so re-running with no newly validated
// tasks creates zero payments, and a cancellation mid-run leaves already
// committed tasks committed. Returns the number of payments created.
func (j *Job) Distribute(ctx context.Context, projectID uint) (int, error) {
	var project domain.Project
	if err := j.DB.WithContext(ctx).First(&project, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrProjectNotFound
		}
		return 0, err
	}

	var tasks []domain.Task
	if err := j.DB.WithContext(ctx).
		Where("project_id = ? AND validated = ? AND rewarded = ? AND reward_sats > 0", projectID, true, false).
		Order("id").Find(&tasks).Error; err != nil {
		return 0, err
	}

	created := 0
	var firstErr error
	for _, task := range tasks {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}
		if task.AssignedToID == nil {
			continue // no beneficiary: skip, not an error
		}

		err := j.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var t domain.Task
			if err := tx.First(&t, task.ID).Error; err != nil {
				return err
			}
			if t.Rewarded || t.AssignedToID == nil {
				return nil
			}

			payment := domain.Payment{
				TaskID:     t.ID,
				UserID:     *t.AssignedToID,
				LnInvoice:  payments.NewInvoiceID(t.RewardSats),
				AmountSats: t.RewardSats,
				Status:     domain.PaymentStatusPending,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			return tx.Model(&domain.Task{}).Where("id = ?", t.ID).
				Update("rewarded", true).Error
		})
		if err != nil {
			// Task stays unrewarded for a future retry.
			log.Error().Err(err).Uint("task_id", task.ID).Uint("project_id", projectID).
				Msg("Reward payment failed; task left unrewarded")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		created++
	}
	return created, firstErr
}
