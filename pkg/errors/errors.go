package parley_errors

import "errors"

// Failure kinds shared across the service and handler layers. Handlers
// translate these into HTTP statuses; anything not listed here is a 500.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrSessionExpired  = errors.New("session expired")
)
