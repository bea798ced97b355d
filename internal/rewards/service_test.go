package rewards

import (
	"context"
	"net/http/httptest"
	"testing"

	"cofilab-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRewardsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Project{}, &domain.Task{}))
	return &Service{DB: db}, db
}

func seedProject(t *testing.T, db *gorm.DB, budget int64) (domain.Project, domain.User) {
	manager := domain.User{Username: "manager"}
	require.NoError(t, db.Create(&manager).Error)
	project := domain.Project{Name: "P", ManagerID: manager.ID, TotalBudget: budget, CurrentBalance: budget}
	require.NoError(t, db.Create(&project).Error)
	return project, manager
}

func TestRecalculateProject_PersistsBatch(t *testing.T) {
	s, db := setupRewardsTest(t)
	project, _ := seedProject(t, db, 10000)

	t1 := domain.Task{ProjectID: project.ID, Title: "T1", Weight: decimal.NewFromInt(1), Status: domain.TaskStatusTodo}
	t2 := domain.Task{ProjectID: project.ID, Title: "T2", Weight: decimal.NewFromInt(2), Status: domain.TaskStatusTodo}
	require.NoError(t, db.Create(&t1).Error)
	require.NoError(t, db.Create(&t2).Error)

	require.NoError(t, s.RecalculateProject(context.Background(), project.ID))

	var got1, got2 domain.Task
	require.NoError(t, db.First(&got1, t1.ID).Error)
	require.NoError(t, db.First(&got2, t2.ID).Error)
	assert.Equal(t, int64(3333), got1.RewardSats)
	assert.Equal(t, int64(6666), got2.RewardSats)
}

func TestRecalculateForManager_RejectsNonManager(t *testing.T) {
	s, db := setupRewardsTest(t)
	project, _ := seedProject(t, db, 1000)

	other := domain.User{Username: "someone-else"}
	require.NoError(t, db.Create(&other).Error)

	err := s.RecalculateForManager(context.Background(), project.ID, other.ID)
	assert.Equal(t, ErrNotManager, err)
}

func TestRecalculateForManager_UnknownProject(t *testing.T) {
	s, db := setupRewardsTest(t)
	user := domain.User{Username: "u"}
	require.NoError(t, db.Create(&user).Error)

	err := s.RecalculateForManager(context.Background(), 9999, user.ID)
	assert.Equal(t, ErrProjectNotFound, err)
}

func TestRecalculateHandler_ManagerOnly(t *testing.T) {
	s, db := setupRewardsTest(t)
	project, manager := seedProject(t, db, 30000)
	other := domain.User{Username: "other"}
	require.NoError(t, db.Create(&other).Error)

	task := domain.Task{ProjectID: project.ID, Title: "T", Weight: decimal.NewFromInt(1), Status: domain.TaskStatusTodo}
	require.NoError(t, db.Create(&task).Error)

	h := &Handlers{Service: s}
	newApp := func(u domain.User) *fiber.App {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user", &u)
			return c.Next()
		})
		app.Get("/recalculate-rewards/:project_id", h.Recalculate)
		return app
	}

	resp, err := newApp(other).Test(httptest.NewRequest("GET", "/recalculate-rewards/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = newApp(manager).Test(httptest.NewRequest("GET", "/recalculate-rewards/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got domain.Task
	require.NoError(t, db.First(&got, task.ID).Error)
	assert.Equal(t, int64(30000), got.RewardSats)
}
