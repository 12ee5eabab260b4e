package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAccessToken is returned when the user has no access token. No call
	// is made to the provider.
	ErrNoAccessToken = errors.New("user has no calendar access token")
	// ErrTransient is matched by provider failures that may succeed on retry.
	ErrTransient = errors.New("transient calendar provider failure")
	// ErrPermanent is matched by provider failures that will not succeed on
	// retry.
	ErrPermanent = errors.New("permanent calendar provider failure")
)

// ProviderError is a failed call to the calendar provider.
type ProviderError struct {
	// Op is the operation that failed, "create", "delete" or "refresh".
	Op string
	// Code is the HTTP status returned by the provider, or zero when no
	// response was received.
	Code int
	// Temporary reports whether retrying may succeed.
	Temporary bool
	Err       error
}

// Error implements error.
func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Temporary {
		kind = "transient"
	}
	if e.Code != 0 {
		return fmt.Sprintf("calendar %s: %s failure (status %d): %v", e.Op, kind, e.Code, e.Err)
	}
	return fmt.Sprintf("calendar %s: %s failure: %v", e.Op, kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransient or ErrPermanent according to e.Temporary.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrTransient:
		return e.Temporary
	case ErrPermanent:
		return !e.Temporary
	}
	return false
}

func transient(op string, code int, err error) *ProviderError {
	return &ProviderError{Op: op, Code: code, Temporary: true, Err: err}
}

func permanent(op string, code int, err error) *ProviderError {
	return &ProviderError{Op: op, Code: code, Err: err}
}
