package engine

import "errors"

var (
	// ErrNoSurface is returned by New when no drawing surface is supplied.
	ErrNoSurface = errors.New("engine: no drawing surface")
	// ErrInvalidConfig wraps config validation failures.
	ErrInvalidConfig = errors.New("engine: invalid config")
	// ErrAlreadyRunning is returned by Loop.Start and Loop.TryStep while
	// another runner is driving the field.
	ErrAlreadyRunning = errors.New("engine: loop already running")
	// ErrStopped is returned by Loop.TryStep after Stop.
	ErrStopped = errors.New("engine: loop stopped")
	// ErrFrameFailed is reported by Loop.Err after a frame panicked.
	ErrFrameFailed = errors.New("engine: frame failed")
)
