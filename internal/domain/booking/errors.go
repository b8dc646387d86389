package booking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange      = errors.New("invalid date range")
	ErrConflict          = errors.New("date range unavailable")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrTerminalState     = errors.New("booking is in a terminal state")
	ErrMissingReason     = errors.New("cancellation reason is required")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrSelfBooking       = errors.New("owner cannot book their own car")
)

// TransitionError names the rejected from/to pair. It unwraps to
// ErrIllegalTransition or ErrTerminalState.
type TransitionError struct {
	From Status
	To   Status
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", e.Err.Error(), e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// RangeError describes why a date range was rejected. It unwraps to ErrInvalidRange.
type RangeError struct {
	Reason string
}

func (e *RangeError) Error() string {
	return ErrInvalidRange.Error() + ": " + e.Reason
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}
