package projects

import "errors"

var (
	ErrProjectNotFound = errors.New("Project not found")
	ErrTaskNotFound    = errors.New("Task not found")
	ErrNotManager      = errors.New("Only the project manager can perform this action")
	ErrInvalidWeight   = errors.New("Task weight must be positive")
	ErrNameRequired    = errors.New("Project name is required")
	ErrTitleRequired   = errors.New("Task title is required")
)
