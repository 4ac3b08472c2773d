package services

import "errors"

// Error kinds reported by the roulette. Details are wrapped around these
// with fmt.Errorf, so callers classify with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrEmptyPool         = errors.New("no participants in the pool")
	ErrNoTasksRemaining  = errors.New("no pending tasks remaining")
	ErrAlreadyInProgress = errors.New("a draw is already in progress")
	ErrInvalidState      = errors.New("invalid state")
	ErrPersistence       = errors.New("persistence failed")
)
