// Package proto holds the domain errors shared by the backend and its
// transports.
package proto

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every not found error.
	ErrNotFound = errors.New("not found")
	// ErrConflict is matched by every error caused by the current state of an
	// attendance or organization.
	ErrConflict = errors.New("conflict")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = newError("user not found", ErrNotFound)
	// ErrEventNotFound is returned when an event is not found.
	ErrEventNotFound = newError("event not found", ErrNotFound)
	// ErrOrganizationNotFound is returned when an organization is not found.
	ErrOrganizationNotFound = newError("organization not found", ErrNotFound)
	// ErrNoEventsOnDate is returned when no event starts on a given date.
	ErrNoEventsOnDate = newError("no events found on this date", ErrNotFound)

	// ErrAlreadyAttending is returned when the user already attends the event.
	ErrAlreadyAttending = newError("user is already attending this event", ErrConflict)
	// ErrNotAttending is returned when the user does not attend the event.
	ErrNotAttending = newError("user is not attending this event", ErrConflict)
	// ErrOrganizationExists is returned when an organization name is taken.
	ErrOrganizationExists = newError("organization already exists", ErrConflict)
)

type kindError struct {
	msg  string
	kind error
}

func newError(msg string, kind error) error {
	return &kindError{msg: msg, kind: kind}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// ValidationError is returned when a request carries missing or malformed
// fields.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError returns a *ValidationError for field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
