package apperr

import "errors"

// Business outcomes returned by the core services. Handlers translate these to
// HTTP statuses; unexpected storage errors are left unwrapped and surface as 500s.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyEnrolled  = errors.New("already enrolled")
	ErrAlreadyCompleted = errors.New("already completed")
	ErrInvalidState     = errors.New("invalid state")
	ErrConflict         = errors.New("conflict")
	ErrRateLimited      = errors.New("rate limited")
)
