/*
errors.go - Centralized error types for the estimation engines

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages return these (or wrap them with context) so the HTTP and
  CLI layers can classify failures with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Validation errors - an input invariant is violated. Never retried,
     never silently corrected.
  2. Lookup errors - a referenced record does not exist.
  3. Store errors - duplicate keys and other persistence failures.

USAGE:
  if err := in.Validate(); err != nil {
      var verr *generic.ValidationError
      if errors.As(err, &verr) {
          fmt.Println(verr.Field, verr.Reason)
      }
  }

SEE ALSO:
  - schedule/assignment.go: Assignment validation
  - pricing/engine.go: Pricing input validation
  - api/handlers.go: Maps these errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the category of every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a record with the same id already exists.
	ErrDuplicate = errors.New("duplicate id")

	// ErrInvalidTransition is returned when a quote status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which input field broke which rule.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string // "assignment", "quote", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate returns true if the error indicates an id collision.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
