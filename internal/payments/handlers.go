package payments

import (
	"strconv"

	"cofilab-backend/internal/domain"
	"cofilab-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *Service
}

// Verify GET /payments/verify/:invoice_id — settlement poll. Unknown
// settlement state is "pending", never an error.
func (h *Handlers) Verify(c *fiber.Ctx) error {
	invoiceID := c.Params("invoice_id")

	payment, err := h.Service.Settle(c.Context(), invoiceID)
	switch err {
	case nil:
	case ErrPaymentNotFound:
		return response.Detail(c, fiber.StatusNotFound, "Payment not found")
	case ErrInsufficientBalance:
		log.Error().Str("invoice_id", invoiceID).Msg("Settlement blocked: project balance would underflow")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	default:
		log.Error().Err(err).Str("invoice_id", invoiceID).Msg("Settlement failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}

	if payment.Status != domain.PaymentStatusPaid {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "pending"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":      "paid",
		"payment_id":  payment.ID,
		"task_id":     payment.TaskID,
		"amount_sats": payment.AmountSats,
	})
}

// Create POST /payments/create — manual pending payment for a task.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		TaskID     uint  `json:"task_id"`
		AmountSats int64 `json:"amount_sats"`
	}
	if err := c.BodyParser(&body); err != nil || body.TaskID == 0 || body.AmountSats <= 0 {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest)
	}

	payment, err := h.Service.CreateInvoice(c.Context(), body.TaskID, body.AmountSats)
	switch err {
	case nil:
	case ErrTaskNotFound:
		return response.Error(c, err.Error(), fiber.StatusNotFound)
	case ErrNoBeneficiary:
		return response.Error(c, err.Error(), fiber.StatusBadRequest)
	default:
		log.Error().Err(err).Uint("task_id", body.TaskID).Msg("Invoice creation failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment_id":  payment.ID,
		"ln_invoice":  payment.LnInvoice,
		"amount_sats": payment.AmountSats,
		"status":      payment.Status,
	})
}

// History GET /payments/history/:user_id — payment ledger for a user.
func (h *Handlers) History(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("user_id"), 10, 64)
	if err != nil {
		return response.Error(c, "Invalid user id", fiber.StatusBadRequest)
	}
	list, err := h.Service.History(c.Context(), uint(userID))
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
	return response.Success(c, "Payment history", list)
}
