package distribution

import (
	"context"
	"testing"

	"cofilab-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupJobTest(t *testing.T) (*Job, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Project{}, &domain.Task{},
		&domain.Payment{}, &domain.DistributionJob{},
	))
	return &Job{DB: db}, db
}

func seedValidatedTasks(t *testing.T, db *gorm.DB) (domain.Project, domain.User) {
	manager := domain.User{Username: "manager"}
	require.NoError(t, db.Create(&manager).Error)
	receiver := domain.User{Username: "receiver"}
	require.NoError(t, db.Create(&receiver).Error)

	project := domain.Project{Name: "Rewarded Project", ManagerID: manager.ID, TotalBudget: 30000, CurrentBalance: 30000}
	require.NoError(t, db.Create(&project).Error)

	tasks := []domain.Task{
		{ProjectID: project.ID, Title: "T1", Weight: decimal.NewFromInt(1), AssignedToID: &receiver.ID, Validated: true, RewardSats: 10000, Status: domain.TaskStatusDone},
		{ProjectID: project.ID, Title: "T2", Weight: decimal.NewFromInt(2), AssignedToID: &receiver.ID, Validated: true, RewardSats: 20000, Status: domain.TaskStatusDone},
	}
	for i := range tasks {
		require.NoError(t, db.Create(&tasks[i]).Error)
	}
	return project, receiver
}

func TestDistribute_CreatesPaymentsAndMarksRewarded(t *testing.T) {
	j, db := setupJobTest(t)
	project, receiver := seedValidatedTasks(t, db)

	created, err := j.Distribute(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	var payments []domain.Payment
	require.NoError(t, db.Find(&payments).Error)
	require.Len(t, payments, 2)
	var total int64
	for _, p := range payments {
		assert.Equal(t, receiver.ID, p.UserID)
		assert.Equal(t, domain.PaymentStatusPending, p.Status)
		total += p.AmountSats
	}
	assert.Equal(t, int64(30000), total)

	var tasks []domain.Task
	require.NoError(t, db.Where("project_id = ?", project.ID).Find(&tasks).Error)
	for _, task := range tasks {
		assert.True(t, task.Rewarded)
	}
}

// A second run with no newly validated tasks creates zero payments.
func TestDistribute_Idempotent(t *testing.T) {
	j, db := setupJobTest(t)
	project, _ := seedValidatedTasks(t, db)

	created, err := j.Distribute(context.Background(), project.ID)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	created, err = j.Distribute(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Zero(t, created)

	var count int64
	require.NoError(t, db.Model(&domain.Payment{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var tasks []domain.Task
	require.NoError(t, db.Where("project_id = ?", project.ID).Find(&tasks).Error)
	for _, task := range tasks {
		assert.True(t, task.Rewarded)
	}
}

func TestDistribute_SkipsTasksWithoutBeneficiary(t *testing.T) {
	j, db := setupJobTest(t)
	project, _ := seedValidatedTasks(t, db)

	orphan := domain.Task{ProjectID: project.ID, Title: "T3", Weight: decimal.NewFromInt(1), Validated: true, RewardSats: 500, Status: domain.TaskStatusDone}
	require.NoError(t, db.Create(&orphan).Error)

	created, err := j.Distribute(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	var got domain.Task
	require.NoError(t, db.First(&got, orphan.ID).Error)
	assert.False(t, got.Rewarded, "task without beneficiary is skipped, not errored")
}

func TestDistribute_SkipsUnvalidatedAndZeroReward(t *testing.T) {
	j, db := setupJobTest(t)
	project, receiver := seedValidatedTasks(t, db)

	unvalidated := domain.Task{ProjectID: project.ID, Title: "T4", Weight: decimal.NewFromInt(1), AssignedToID: &receiver.ID, RewardSats: 100, Status: domain.TaskStatusTodo}
	zeroReward := domain.Task{ProjectID: project.ID, Title: "T5", Weight: decimal.NewFromInt(1), AssignedToID: &receiver.ID, Validated: true, Status: domain.TaskStatusDone}
	require.NoError(t, db.Create(&unvalidated).Error)
	require.NoError(t, db.Create(&zeroReward).Error)

	created, err := j.Distribute(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
}

func TestDistribute_ProjectNotFound(t *testing.T) {
	j, _ := setupJobTest(t)
	_, err := j.Distribute(context.Background(), 9999)
	assert.Equal(t, ErrProjectNotFound, err)
}
