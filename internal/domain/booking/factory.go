package booking

import (
	"time"

	"car-rental-booking/internal/domain/car"
	"car-rental-booking/internal/pkg/clock"

	"github.com/google/uuid"
)

type Factory struct {
	Clock           clock.Clock
	PriceCalculator PriceCalculator
	Location        *time.Location
}

func NewFactory(clock clock.Clock, priceCalculator PriceCalculator, loc *time.Location) *Factory {
	if loc == nil {
		loc = time.UTC
	}
	return &Factory{
		Clock:           clock,
		PriceCalculator: priceCalculator,
		Location:        loc,
	}
}

func (f *Factory) Today() time.Time {
	return clock.Today(f.Clock, f.Location)
}

// NewRange validates a range for a new booking; past pickup dates are rejected.
func (f *Factory) NewRange(start, end time.Time) (DateRange, error) {
	return NewDateRange(start, end, f.Today(), false)
}

// CreateBooking builds a pending booking. Reserving the dates is the
// caller's responsibility.
func (f *Factory) CreateBooking(carEntity *car.Car, customerID uuid.UUID, r DateRange) (*Booking, error) {
	if r.IsZero() {
		return nil, &RangeError{Reason: "date range is required"}
	}
	if carEntity.IsOwnedBy(customerID) {
		return nil, ErrSelfBooking
	}

	price, err := NewMoney(f.PriceCalculator.CalculatePriceCents(carEntity, r))
	if err != nil {
		return nil, err
	}

	now := f.Clock.Now()
	return &Booking{
		id:         uuid.New(),
		carID:      carEntity.ID(),
		customerID: customerID,
		ownerID:    carEntity.OwnerID(),
		dateRange:  r,
		status:     Creation.To,
		price:      price,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}
