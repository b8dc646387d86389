package booking

import (
	"errors"
	"strings"
)

const MaxReasonLength = 500

type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativePrice
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Times(n int) Money {
	return Money{cents: m.cents * int64(n)}
}

// Reason is a trimmed, non-empty cancellation reason.
type Reason struct {
	value string
}

var ErrReasonTooLong = errors.New("cancellation reason is too long")

func NewReason(value string) (Reason, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Reason{}, ErrMissingReason
	}
	if len(trimmed) > MaxReasonLength {
		return Reason{}, ErrReasonTooLong
	}
	return Reason{value: trimmed}, nil
}

func (r Reason) String() string {
	return r.value
}
