package projects

import (
	"context"

	"cofilab-backend/internal/distribution"
	"cofilab-backend/internal/domain"
	"cofilab-backend/internal/rewards"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB    *gorm.DB
	Queue *distribution.Queue
}

// TaskInput carries the mutable task fields. A zero weight means "default",
// which is 1.0.
type TaskInput struct {
	ProjectID    uint            `json:"project_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Weight       decimal.Decimal `json:"weight"`
	AssignedToID *uint           `json:"assigned_to_id"`
}

// CreateProject stores a new project managed by the caller. Budget starts at
// zero and only verified funding events can raise it.
func (s *Service) CreateProject(ctx context.Context, managerID uint, name, description string, isPublic bool) (*domain.Project, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	project := domain.Project{
		Name:        name,
		Description: description,
		ManagerID:   managerID,
		IsPublic:    isPublic,
	}
	if err := s.DB.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateTask adds a task and recalculates every sibling's reward share in
// the same transaction, so the cached reward_sats are never observed stale
// relative to the new weight distribution.
func (s *Service) CreateTask(ctx context.Context, userID uint, input TaskInput) (*domain.Task, error) {
	weight := input.Weight
	if weight.IsZero() {
		weight = decimal.NewFromInt(1)
	}
	if weight.IsNegative() {
		return nil, ErrInvalidWeight
	}
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	var task domain.Task
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := s.managedProject(tx, input.ProjectID, userID)
		if err != nil {
			return err
		}
		task = domain.Task{
			ProjectID:    project.ID,
			Title:        input.Title,
			Description:  input.Description,
			Weight:       weight,
			AssignedToID: input.AssignedToID,
			Status:       domain.TaskStatusTodo,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return rewards.RecalculateInTx(tx, project.ID)
	})
	if err != nil {
		return nil, err
	}
	// Reload to pick up the recalculated reward share.
	if err := s.DB.WithContext(ctx).First(&task, task.ID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask edits a task and recalculates the project in the same
// transaction.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID uint, input TaskInput) (*domain.Task, error) {
	if input.Weight.IsNegative() {
		return nil, ErrInvalidWeight
	}

	var task domain.Task
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTaskNotFound
			}
			return err
		}
		if _, err := s.managedProject(tx, task.ProjectID, userID); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if input.Title != "" {
			updates["title"] = input.Title
		}
		if input.Description != "" {
			updates["description"] = input.Description
		}
		if !input.Weight.IsZero() {
			updates["weight"] = input.Weight
		}
		if input.AssignedToID != nil {
			updates["assigned_to_id"] = *input.AssignedToID
		}
		if len(updates) > 0 {
			if err := tx.Model(&domain.Task{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return rewards.RecalculateInTx(tx, task.ProjectID)
	})
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).First(&task, taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task; siblings are recalculated in the same
// transaction (the freed weight redistributes their shares).
func (s *Service) DeleteTask(ctx context.Context, userID, taskID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task domain.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTaskNotFound
			}
			return err
		}
		if _, err := s.managedProject(tx, task.ProjectID, userID); err != nil {
			return err
		}
		if err := tx.Delete(&domain.Task{}, taskID).Error; err != nil {
			return err
		}
		return rewards.RecalculateInTx(tx, task.ProjectID)
	})
}

// ValidateTask flips validated (manager-only) and enqueues the distribution
// job in the same transaction via the outbox, then nudges the queue after
// commit. A validated task always has a distribution attempt on record.
func (s *Service) ValidateTask(ctx context.Context, userID, taskID uint) error {
	var projectID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task domain.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTaskNotFound
			}
			return err
		}
		if _, err := s.managedProject(tx, task.ProjectID, userID); err != nil {
			return err
		}
		projectID = task.ProjectID

		if err := tx.Model(&domain.Task{}).Where("id = ?", taskID).Updates(map[string]interface{}{
			"validated": true,
			"status":    domain.TaskStatusDone,
		}).Error; err != nil {
			return err
		}
		return distribution.EnqueueTx(tx, task.ProjectID)
	})
	if err != nil {
		return err
	}
	if s.Queue != nil {
		s.Queue.Nudge(ctx, projectID)
	}
	return nil
}

// ListTasks returns a project's tasks, newest first.
func (s *Service) ListTasks(ctx context.Context, projectID uint) ([]domain.Task, error) {
	var project domain.Project
	if err := s.DB.WithContext(ctx).First(&project, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	var tasks []domain.Task
	err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (s *Service) managedProject(tx *gorm.DB, projectID, userID uint) (*domain.Project, error) {
	var project domain.Project
	if err := tx.First(&project, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.ManagerID != userID {
		return nil, ErrNotManager
	}
	return &project, nil
}
