package scheduler

import "errors"

var (
	// ErrSchedulerRunning is returned when registering a job after Start
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrJobNotFound is returned when a job is not registered
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyRegistered is returned for duplicate job names
	ErrJobAlreadyRegistered = errors.New("job already registered")

	// ErrJobAlreadyRunning is returned when a job is triggered while it runs
	ErrJobAlreadyRunning = errors.New("job already running")

	// ErrJobPanicked wraps a recovered panic from a job body
	ErrJobPanicked = errors.New("job panicked")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
