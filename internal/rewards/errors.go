package rewards

import "errors"

var (
	ErrProjectNotFound = errors.New("Project not found")
	ErrNotManager      = errors.New("Only the project manager can recalculate rewards")
)
