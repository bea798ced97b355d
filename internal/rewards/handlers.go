package rewards

import (
	"strconv"

	"cofilab-backend/internal/middleware"
	"cofilab-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *Service
}

// Recalculate GET /recalculate-rewards/:project_id — manager-only full
// project recalculation.
func (h *Handlers) Recalculate(c *fiber.Ctx) error {
	projectID, err := strconv.ParseUint(c.Params("project_id"), 10, 64)
	if err != nil {
		return response.Error(c, "Invalid project id", fiber.StatusBadRequest)
	}

	user := middleware.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	switch err := h.Service.RecalculateForManager(c.Context(), uint(projectID), user.ID); err {
	case nil:
	case ErrProjectNotFound:
		return response.Error(c, err.Error(), fiber.StatusNotFound)
	case ErrNotManager:
		return response.Error(c, err.Error(), fiber.StatusForbidden)
	default:
		log.Error().Err(err).Uint64("project_id", projectID).Msg("Reward recalculation failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}
