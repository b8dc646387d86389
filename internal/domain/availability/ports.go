package availability

import (
	"context"

	"car-rental-booking/internal/domain/booking"

	"github.com/google/uuid"
)

// Entry is the calendar's view of one booking.
type Entry struct {
	BookingID uuid.UUID
	Range     booking.DateRange
	Status    booking.Status
}

func (e Entry) Holds() bool {
	return e.Status.HoldsReservation()
}

// Loader rebuilds a car's calendar from the system of record.
type Loader interface {
	ListBookingsForCar(ctx context.Context, carID uuid.UUID) ([]Entry, error)
}

// Versioner tracks a per-car change counter shared between instances.
// A calendar whose version lags the shared counter is reloaded.
type Versioner interface {
	Current(ctx context.Context, carID uuid.UUID) (int64, error)
	Bump(ctx context.Context, carID uuid.UUID) (int64, error)
}

// NopVersioner is used when the index is the only writer.
type NopVersioner struct{}

func (NopVersioner) Current(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (NopVersioner) Bump(context.Context, uuid.UUID) (int64, error)    { return 0, nil }
