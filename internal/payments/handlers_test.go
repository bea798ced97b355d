package payments

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupVerifyApp(t *testing.T, oracle SettlementOracle) (*fiber.App, *Service) {
	s, _ := setupPaymentsTest(t, oracle)
	h := &Handlers{Service: s}
	app := fiber.New()
	app.Get("/payments/verify/:invoice_id", h.Verify)
	return app, s
}

func TestVerify_NotFound(t *testing.T) {
	app, _ := setupVerifyApp(t, &fakeOracle{})

	resp, err := app.Test(httptest.NewRequest("GET", "/payments/verify/lnbc-unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestVerify_PendingShape(t *testing.T) {
	oracle := &fakeOracle{settled: false}
	app, s := setupVerifyApp(t, oracle)
	task := seedTask(t, s.DB, 10000)
	payment, err := s.CreateInvoice(context.Background(), task.ID, 500)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/payments/verify/"+payment.LnInvoice, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "pending", body["status"])
	assert.NotContains(t, body, "payment_id")
}

func TestVerify_PaidShape(t *testing.T) {
	oracle := &fakeOracle{settled: true}
	app, s := setupVerifyApp(t, oracle)
	task := seedTask(t, s.DB, 10000)
	payment, err := s.CreateInvoice(context.Background(), task.ID, 500)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/payments/verify/"+payment.LnInvoice, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "paid", body["status"])
	assert.Equal(t, float64(payment.ID), body["payment_id"])
	assert.Equal(t, float64(task.ID), body["task_id"])
	assert.Equal(t, float64(500), body["amount_sats"])
}
