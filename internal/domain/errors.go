package domain

import "errors"

// Domain errors (no external dependencies).
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDuplicate       = errors.New("duplicate resource")
	ErrConflict        = errors.New("conflict with current state")
	ErrRunInProgress   = errors.New("a sync run is already in progress")
	ErrProviderFailure = errors.New("rate provider request failed")
	ErrReasonRequired  = errors.New("a reason is required for this decision")
)
