// Package errs holds the error kinds shared across services. Services wrap
// them with context and callers match with errors.Is / errors.As.
package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionConflict = errors.New("session already active")
	ErrNoSession       = errors.New("no active session")
	ErrWrongStep       = errors.New("action not expected at this step")
	ErrSuspended       = errors.New("user is suspended")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrStaleReference  = errors.New("record already resolved or missing")
	ErrDeliveryFailure = errors.New("delivery failed")
)

// SuspendedError carries the end of the active suspension.
type SuspendedError struct {
	Until time.Time
}

func (e *SuspendedError) Error() string {
	return fmt.Sprintf("user is suspended until %s", e.Until.UTC().Format(time.RFC3339))
}

func (e *SuspendedError) Is(target error) bool {
	return target == ErrSuspended
}

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
