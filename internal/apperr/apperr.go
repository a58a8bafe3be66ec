package apperr

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	// ErrDeadlock is returned when the database aborted a transaction to break a deadlock.
	ErrDeadlock = errors.New("deadlock detected")
)
