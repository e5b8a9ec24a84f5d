package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for the domain failure taxonomy. Repositories and
// services wrap these with pkg/errors so callers can classify failures
// with errors.Is while still seeing the full chain in logs.
var (
	// ErrNotFound indicates no entity exists with the given id.
	ErrNotFound = errors.New("not found")

	// ErrNotEntitled indicates a download redemption against a purchase
	// that is not COMPLETED.
	ErrNotEntitled = errors.New("purchase not entitled to downloads")

	// ErrConflict indicates a unique-field collision or a lost
	// optimistic-concurrency race.
	ErrConflict = errors.New("conflict")

	// ErrTransient indicates the backing store was unavailable; the
	// operation is safe to retry.
	ErrTransient = errors.New("transient failure")
)

// ValidationError describes a malformed or missing field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// InvalidTransitionError describes an illegal status move.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Entity, e.From, e.To)
}

// InvalidTransition builds an InvalidTransitionError.
func InvalidTransition(entity, from, to string) error {
	return &InvalidTransitionError{Entity: entity, From: from, To: to}
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var t *InvalidTransitionError
	return errors.As(err, &t)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsNotEntitled reports whether err wraps ErrNotEntitled.
func IsNotEntitled(err error) bool { return errors.Is(err, ErrNotEntitled) }

// IsConflict reports whether err wraps ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsTransient reports whether err wraps ErrTransient.
func IsTransient(err error) bool { return errors.Is(err, ErrTransient) }
