package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the service and repository layers.
// Handlers translate these into HTTP status codes with errors.Is.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a state transition lost a race, e.g. claiming a
	// listing that is already claimed or expired.
	ErrConflict = errors.New("conflict")

	// ErrForbidden means the caller is authenticated but not allowed to
	// act on this record.
	ErrForbidden = errors.New("forbidden")

	// ErrNotVerified means the caller must verify their email first.
	ErrNotVerified = errors.New("email not verified")

	// ErrUnavailable means the underlying store could not be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// ValidationError reports a single malformed or out-of-range input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError for the given field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
