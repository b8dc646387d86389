package availability

import (
	"fmt"
	"strings"

	"car-rental-booking/internal/domain/booking"

	"github.com/google/uuid"
)

// ConflictError reports the bookings that already hold part of a range.
type ConflictError struct {
	CarID       uuid.UUID
	Range       booking.DateRange
	Conflicting []uuid.UUID
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicting))
	for _, id := range e.Conflicting {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("%s: car %s %s held by [%s]", booking.ErrConflict, e.CarID, e.Range, strings.Join(ids, ","))
}

func (e *ConflictError) Unwrap() error {
	return booking.ErrConflict
}
