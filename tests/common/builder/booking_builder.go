//go:build unit || e2e

package builder

import (
	"time"

	"car-rental-booking/internal/domain/booking"
	reqdto "car-rental-booking/internal/handler/dto/request"
	"car-rental-booking/internal/usecase/queries"
	"car-rental-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// Fixed reference date so tests do not depend on the wall clock.
var Today = time.Date(2030, time.March, 10, 0, 0, 0, 0, time.UTC)

type BookingBuilder struct {
	ID                 uuid.UUID
	CarID              uuid.UUID
	CarName            string
	CustomerID         uuid.UUID
	OwnerID            uuid.UUID
	PickupDate         time.Time
	ReturnDate         time.Time
	Status             booking.Status
	PricePerDayCents   int64
	CancellationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewBookingBuilder() *BookingBuilder {
	created := Today.Add(9 * time.Hour)
	return &BookingBuilder{
		ID:               uuid.New(),
		CarID:            uuid.New(),
		CarName:          "Toyota Corolla",
		CustomerID:       uuid.New(),
		OwnerID:          uuid.New(),
		PickupDate:       Today.AddDate(0, 0, 5),
		ReturnDate:       Today.AddDate(0, 0, 8),
		Status:           booking.StatusPending,
		PricePerDayCents: 4500,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) WithDates(pickup, ret time.Time) *BookingBuilder {
	b.PickupDate = pickup
	b.ReturnDate = ret
	return b
}

func (b *BookingBuilder) WithStatus(status booking.Status) *BookingBuilder {
	b.Status = status
	return b
}

func (b *BookingBuilder) Range() booking.DateRange {
	return booking.ReconstructDateRange(b.PickupDate, b.ReturnDate)
}

func (b *BookingBuilder) PriceCents() int64 {
	return b.PricePerDayCents * int64(b.Range().Nights())
}

// Build methods
func (b *BookingBuilder) BuildSnapshot() *shared.BookingSnapshot {
	return &shared.BookingSnapshot{
		ID:                 b.ID,
		CarID:              b.CarID,
		CustomerID:         b.CustomerID,
		OwnerID:            b.OwnerID,
		PickupDate:         b.PickupDate,
		ReturnDate:         b.ReturnDate,
		Status:             b.Status.String(),
		PriceCents:         b.PriceCents(),
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func (b *BookingBuilder) BuildCarSnapshot() *shared.CarSnapshot {
	return &shared.CarSnapshot{
		ID:               b.CarID,
		OwnerID:          b.OwnerID,
		Name:             b.CarName,
		PricePerDayCents: b.PricePerDayCents,
	}
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	return &queries.BookingView{
		ID:                 b.ID,
		CarID:              b.CarID,
		CarName:            b.CarName,
		CustomerID:         b.CustomerID,
		OwnerID:            b.OwnerID,
		PickupDate:         b.PickupDate,
		ReturnDate:         b.ReturnDate,
		Status:             b.Status.String(),
		PriceCents:         b.PriceCents(),
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		CarID:      b.CarID,
		PickupDate: b.PickupDate.Format(booking.DateLayout),
		ReturnDate: b.ReturnDate.Format(booking.DateLayout),
	}
}

func (b *BookingBuilder) BuildCheckRequestDTO() reqdto.CheckAvailabilityRequest {
	return reqdto.CheckAvailabilityRequest{
		CarID:      b.CarID,
		PickupDate: b.PickupDate.Format(booking.DateLayout),
		ReturnDate: b.ReturnDate.Format(booking.DateLayout),
	}
}
