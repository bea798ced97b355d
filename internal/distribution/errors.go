package distribution

import "errors"

// ErrProjectNotFound is non-fatal for callers: the project may have been
// deleted between schedule and run.
var ErrProjectNotFound = errors.New("Project not found")
