// Package apperr defines the error taxonomy shared by services and
// handlers. Every failure a caller can observe maps to exactly one of
// these sentinels; handlers translate them to HTTP status codes in one
// place instead of guessing per endpoint.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrUnknownSubject     = errors.New("unknown form subject")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrValidation         = errors.New("invalid input")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// The two Forbidden variants wrap ErrForbidden so callers can match either
// the broad class or the exact reason.
var (
	ErrCrossTenant      = fmt.Errorf("cross-tenant access: %w", ErrForbidden)
	ErrInsufficientRole = fmt.Errorf("insufficient role: %w", ErrForbidden)
)

// ErrInvalidCredentials deliberately carries no hint about whether the
// email exists.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)

// Status maps an error to its HTTP status code. Unknown errors are
// internal faults.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrUnknownSubject),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show the caller. Internal faults never
// leak their detail.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

// Validation wraps a field-level problem into the taxonomy.
func Validation(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}
