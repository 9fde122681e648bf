package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a request is malformed or misses a required field.
	// It is resolved at the boundary, before any write happens.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an entity does not exist for the given key.
	ErrNotFound = errors.New("not found")

	// ErrOutOfStock is returned when a borrow request hits a book with zero
	// available copies. Distinct from ErrNotFound so clients can offer a
	// wait-list experience later.
	ErrOutOfStock = errors.New("no copies available")

	// ErrConflict is returned when a write would violate a referential or
	// uniqueness guard; the original state is preserved.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyReturned is returned when a loan is closed twice. It wraps
	// ErrConflict so generic handling still treats it as a conflict.
	ErrAlreadyReturned = fmt.Errorf("loan already returned: %w", ErrConflict)

	// ErrUnauthorized is returned when no valid principal is attached to a request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the access control gate denies an action.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable is returned on storage or transport failures. Such
	// failures never leave partial writes behind, so callers may retry.
	ErrUnavailable = errors.New("storage unavailable")
)

// Kind maps an error to its stable machine-readable kind. Every failure
// surfaced to a client carries one of these alongside the human description.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrAlreadyReturned):
		return "already_returned"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}
