package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTaskSpec marks a task that breaks the type, frequency or
	// scheduling rules at creation time.
	ErrInvalidTaskSpec = fmt.Errorf("%w: invalid task specification", ErrValidation)

	// ErrAlreadyCompleted is returned when completing a task that is already done.
	ErrAlreadyCompleted = errors.New("task already completed")

	// ErrUnauthorized is returned when a caller cannot be identified.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrForbidden is returned when an identified caller lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries a human-readable reason for a rejected entity.
// It unwraps to its Kind, so errors.Is(err, ErrValidation) holds for every
// ValidationError and errors.Is(err, ErrInvalidTaskSpec) holds for task ones.
type ValidationError struct {
	Field  string
	Reason string
	Kind   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap returns the error kind.
func (e *ValidationError) Unwrap() error {
	if e.Kind == nil {
		return ErrValidation
	}
	return e.Kind
}

// NewValidationError creates a generic validation error for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Kind: ErrValidation}
}

func invalidTask(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Kind: ErrInvalidTaskSpec}
}
