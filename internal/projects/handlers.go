package projects

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

// CreateProject POST /projects
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    *bool  `json:"is_public"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest)
	}
	isPublic := true
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	user := middleware.GetUser(c)
	project, err := h.Service.CreateProject(c.Context(), user.ID, body.Name, body.Description, isPublic)
	if err == ErrNameRequired {
		return response.Error(c, err.Error(), fiber.StatusBadRequest)
	}
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
	return response.SuccessCreated(c, "Project created", project)
}

// ListTasks GET /projects/:id/tasks
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	projectID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.Error(c, "Invalid project id", fiber.StatusBadRequest)
	}
	tasks, err := h.Service.ListTasks(c.Context(), uint(projectID))
	if err == ErrProjectNotFound {
		return response.Error(c, err.Error(), fiber.StatusNotFound)
	}
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
	return response.Success(c, "Project tasks", tasks)
}

// CreateTask POST /tasks
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var input TaskInput
	if err := c.BodyParser(&input); err != nil || input.ProjectID == 0 {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest)
	}

	user := middleware.GetUser(c)
	task, err := h.Service.CreateTask(c.Context(), user.ID, input)
	if err != nil {
		return h.mapTaskError(c, err)
	}
	return response.SuccessCreated(c, "Task created", task)
}

// UpdateTask PUT /tasks/:id
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	taskID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.Error(c, "Invalid task id", fiber.StatusBadRequest)
	}
	var input TaskInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest)
	}

	user := middleware.GetUser(c)
	task, err := h.Service.UpdateTask(c.Context(), user.ID, uint(taskID), input)
	if err != nil {
		return h.mapTaskError(c, err)
	}
	return response.Success(c, "Task updated", task)
}

// DeleteTask DELETE /tasks/:id
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	taskID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.Error(c, "Invalid task id", fiber.StatusBadRequest)
	}
	user := middleware.GetUser(c)
	if err := h.Service.DeleteTask(c.Context(), user.ID, uint(taskID)); err != nil {
		return h.mapTaskError(c, err)
	}
	return response.Success(c, "Task deleted", nil)
}

// ValidateTask POST /tasks/:id/validate — manager-only; triggers the reward
// distribution job asynchronously through the outbox.
func (h *Handlers) ValidateTask(c *fiber.Ctx) error {
	taskID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.Error(c, "Invalid task id", fiber.StatusBadRequest)
	}
	user := middleware.GetUser(c)
	if err := h.Service.ValidateTask(c.Context(), user.ID, uint(taskID)); err != nil {
		return h.mapTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "validated"})
}

func (h *Handlers) mapTaskError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrProjectNotFound, ErrTaskNotFound:
		return response.Error(c, err.Error(), fiber.StatusNotFound)
	case ErrNotManager:
		return response.Error(c, err.Error(), fiber.StatusForbidden)
	case ErrInvalidWeight, ErrTitleRequired, ErrNameRequired:
		return response.Error(c, err.Error(), fiber.StatusBadRequest)
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("Task operation failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError)
	}
}
