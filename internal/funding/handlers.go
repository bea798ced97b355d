package funding

import (
	"cofilab-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Gate *Gate
}

// HandleWebhook POST /webhook/funding — inbound payment notification.
// External senders get a definitive status code; never a silent 200 on
// failure.
func (h *Handlers) HandleWebhook(c *fiber.Ctx) error {
	var ev RawEvent
	if err := c.BodyParser(&ev); err != nil {
		return response.Detail(c, fiber.StatusBadRequest, "missing fields")
	}

	record, err := h.Gate.Ingest(c.Context(), ev)
	switch err {
	case nil:
	case ErrMissingFields:
		return response.Detail(c, fiber.StatusBadRequest, "missing fields")
	case ErrInvalidSignature:
		log.Warn().Str("trace_id", c.Get("X-Trace-Id")).Msg("Funding webhook signature rejected")
		return response.Detail(c, fiber.StatusForbidden, "invalid signature")
	case ErrProjectNotFound:
		return response.Detail(c, fiber.StatusNotFound, "project not found")
	case ErrDuplicateProof:
		return response.Detail(c, fiber.StatusConflict, "duplicate proof_hash")
	default:
		log.Error().Err(err).Msg("Funding ingest failed")
		return response.Detail(c, fiber.StatusInternalServerError, "internal error")
	}

	log.Info().Uint("project_id", record.ProjectID).Int64("amount_sats", record.AmountSats).Msg("Funding recorded")
	return c.Status(fiber.StatusCreated).JSON(record)
}
