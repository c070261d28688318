package server

import "errors"

// Server-specific errors
var (
	ErrServerAlreadyRunning = errors.New("viewer server is already running")
)
