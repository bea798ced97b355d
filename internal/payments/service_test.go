package payments

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

// fakeOracle returns a fixed settlement answer.
type fakeOracle struct {
	settled bool
	calls   int
}

func (f *fakeOracle) IsSettled(ctx context.Context, invoiceID string) (bool, error) {
	f.calls++
	return f.settled, nil
}

func setupPaymentsTest(t *testing.T, oracle SettlementOracle) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Project{}, &domain.Task{}, &domain.Payment{}))
	return &Service{DB: db, Oracle: oracle}, db
}

func seedTask(t *testing.T, db *gorm.DB, balance int64) domain.Task {
	manager := domain.User{Username: "manager"}
	require.NoError(t, db.Create(&manager).Error)
	worker := domain.User{Username: "worker"}
	require.NoError(t, db.Create(&worker).Error)
	project := domain.Project{Name: "P", ManagerID: manager.ID, TotalBudget: balance, CurrentBalance: balance}
	require.NoError(t, db.Create(&project).Error)
	task := domain.Task{
		ProjectID:    project.ID,
		Title:        "T",
		Weight:       decimal.NewFromInt(1),
		AssignedToID: &worker.ID,
		Status:       domain.TaskStatusTodo,
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func TestCreateInvoice_StoresPendingPayment(t *testing.T) {
	s, db := setupPaymentsTest(t, &fakeOracle{})
	task := seedTask(t, db, 10000)

	payment, err := s.CreateInvoice(context.Background(), task.ID, 5000)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Equal(t, int64(5000), payment.AmountSats)
	assert.Nil(t, payment.PaidAt)
	assert.NotEmpty(t, payment.LnInvoice)

	// no balance effect before settlement
	var project domain.Project
	require.NoError(t, db.First(&project, task.ProjectID).Error)
	assert.Equal(t, int64(10000), project.CurrentBalance)
}

func TestCreateInvoice_UniqueInvoiceIDs(t *testing.T) {
	s, db := setupPaymentsTest(t, &fakeOracle{})
	task := seedTask(t, db, 10000)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p, err := s.CreateInvoice(context.Background(), task.ID, 100)
		require.NoError(t, err)
		require.False(t, seen[p.LnInvoice], "duplicate invoice id %s", p.LnInvoice)
		seen[p.LnInvoice] = true
	}
}

func TestCreateInvoice_NoBeneficiary(t *testing.T) {
	s, db := setupPaymentsTest(t, &fakeOracle{})
	task := seedTask(t, db, 10000)
	require.NoError(t, db.Model(&domain.Task{}).Where("id = ?", task.ID).Update("assigned_to_id", nil).Error)

	_, err := s.CreateInvoice(context.Background(), task.ID, 100)
	assert.Equal(t, ErrNoBeneficiary, err)
}

func TestCreateInvoice_TaskNotFound(t *testing.T) {
	s, _ := setupPaymentsTest(t, &fakeOracle{})
	_, err := s.CreateInvoice(context.Background(), 404, 100)
	assert.Equal(t, ErrTaskNotFound, err)
}

func TestSettle_NotFound(t *testing.T) {
	s, _ := setupPaymentsTest(t, &fakeOracle{})
	_, err := s.Settle(context.Background(), "lnbc-nope")
	assert.Equal(t, ErrPaymentNotFound, err)
}

func TestSettle_UnsettledStaysPending(t *testing.T) {
	s, db := setupPaymentsTest(t, &fakeOracle{settled: false})
	task := seedTask(t, db, 10000)
	payment, err := s.CreateInvoice(context.Background(), task.ID, 5000)
	require.NoError(t, err)

	got, err := s.Settle(context.Background(), payment.LnInvoice)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, got.Status)
	assert.Nil(t, got.PaidAt)

	var project domain.Project
	require.NoError(t, db.First(&project, task.ProjectID).Error)
	assert.Equal(t, int64(10000), project.CurrentBalance)
}

func TestSettle_PaysAndDecrementsBalance(t *testing.T) {
	s, db := setupPaymentsTest(t, &fakeOracle{settled: true})
	task := seedTask(t, db, 10000)
	payment, err := s.CreateInvoice(context.Background(), task.ID, 5000)
	require.NoError(t, err)

	got, err := s.Settle(context.Background(), payment.LnInvoice)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, got.Status)
	require.NotNil(t, got.PaidAt)

	var project domain.Project
	require.NoError(t, db.First(&project, task.ProjectID).Error)
	assert.Equal(t, int64(5000), project.CurrentBalance)
}

// Once paid, settling again neither rewrites paid_at nor re-decrements.
func TestSettle_Idempotent(t *testing.T) {
	oracle := &fakeOracle{settled: true}
	s, db := setupPaymentsTest(t, oracle)
	task := seedTask(t, db, 10000)
	payment, err := s.CreateInvoice(context.Background(), task.ID, 5000)
	require.NoError(t, err)

	first, err := s.Settle(context.Background(), payment.LnInvoice)
	require.NoError(t, err)
	callsAfterFirst := oracle.calls

	second, err := s.Settle(context.Background(), payment.LnInvoice)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, second.Status)
	assert.Equal(t, first.PaidAt.Unix(), second.PaidAt.Unix())
	assert.Equal(t, callsAfterFirst, oracle.calls, "paid payment must short-circuit before the oracle")

	var project domain.Project
	require.NoError(t, db.First(&project, task.ProjectID).Error)
	assert.Equal(t, int64(5000), project.CurrentBalance)
}

func TestSettle_GuardsBalanceUnderflow(t *testing.T) {
	s, db := setupPaymentsTest(t, &fakeOracle{settled: true})
	task := seedTask(t, db, 1000)
	payment, err := s.CreateInvoice(context.Background(), task.ID, 5000)
	require.NoError(t, err)

	_, err = s.Settle(context.Background(), payment.LnInvoice)
	assert.Equal(t, ErrInsufficientBalance, err)

	var got domain.Payment
	require.NoError(t, db.First(&got, payment.ID).Error)
	assert.Equal(t, domain.PaymentStatusPending, got.Status)

	var project domain.Project
	require.NoError(t, db.First(&project, task.ProjectID).Error)
	assert.Equal(t, int64(1000), project.CurrentBalance)
}
