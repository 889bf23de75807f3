package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when a job is registered with bad settings
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrAlreadyRunning is returned when jobs are added after Start
	ErrAlreadyRunning = errors.New("scheduler is already running")
)
