/*
errors.go - Error types shared by the store and the API boundary

PURPOSE:
  All domain error values in one place. The API boundary converts every
  error into a uniform {ok:false, error:"..."} result, so errors here
  carry human-readable messages rather than codes.

ERROR CATEGORIES:
  1. NotFound   - update/reference target missing; operation aborted
  2. Validation - rejected before any store mutation
  3. I/O        - document write failures, surfaced to the caller

USAGE:
  Wrap with context where useful; classify with errors.Is:

    if pledge.IsNotFound(err) { ... 404 ... }
*/
package pledge

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when an update or reference target does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrGroupNotFound is returned when a pledge references a group
	// that does not exist in the current year.
	ErrGroupNotFound = errors.New("group not found in the current year")

	// ErrDuplicateGroup is returned when creating a group whose id is
	// already taken within the current year.
	ErrDuplicateGroup = errors.New("a group with this id already exists in the current year")

	// ErrValidation is returned for input rejected before any store
	// mutation.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// NotFoundError identifies the missing record by kind and id.
type NotFoundError struct {
	Kind string // e.g. "group", "collection day"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError carries a field-level rejection message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrGroupNotFound)
}

// IsClientError reports whether err is caused by invalid client input
// rather than an internal fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrDuplicateGroup)
}
