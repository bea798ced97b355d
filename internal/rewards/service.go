package rewards

import (
	"context"

	"cofilab-backend/internal/database"
	"cofilab-backend/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// RecalculateProject recomputes and persists reward_sats for every task of
// the project as one batch, in its own transaction.
func (s *Service) RecalculateProject(ctx context.Context, projectID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return RecalculateInTx(tx, projectID)
	})
}

// RecalculateForManager is the manager-only on-demand recalculation.
func (s *Service) RecalculateForManager(ctx context.Context, projectID, userID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project domain.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrProjectNotFound
			}
			return err
		}
		if project.ManagerID != userID {
			return ErrNotManager
		}
		return RecalculateInTx(tx, projectID)
	})
}

// RecalculateInTx runs the full-project recalculation inside an existing
// transaction. The project row is locked so the batch cannot interleave with
// a concurrent task edit or funding credit on the same project.
func RecalculateInTx(tx *gorm.DB, projectID uint) error {
	var project domain.Project
	if err := database.LockForUpdate(tx).First(&project, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrProjectNotFound
		}
		return err
	}

	var tasks []domain.Task
	if err := tx.Where("project_id = ?", projectID).Order("id").Find(&tasks).Error; err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	weights := make([]TaskWeight, 0, len(tasks))
	for _, t := range tasks {
		weights = append(weights, TaskWeight{TaskID: t.ID, Weight: t.Weight})
	}
	allocated := Allocate(project.TotalBudget, weights)

	for _, t := range tasks {
		if t.RewardSats == allocated[t.ID] {
			continue
		}
		if err := tx.Model(&domain.Task{}).Where("id = ?", t.ID).
			Update("reward_sats", allocated[t.ID]).Error; err != nil {
			return err
		}
	}
	return nil
}
