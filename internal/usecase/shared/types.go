package shared

import (
	"time"

	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/domain/car"

	"github.com/google/uuid"
)

// Write-side snapshots keep commands independent of read-side view types.
type CarSnapshot struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	Name             string
	PricePerDayCents int64
}

func (s *CarSnapshot) ToDomain() (*car.Car, error) {
	return car.NewCar(s.ID, s.OwnerID, s.Name, s.PricePerDayCents)
}

type BookingSnapshot struct {
	ID                 uuid.UUID
	CarID              uuid.UUID
	CustomerID         uuid.UUID
	OwnerID            uuid.UUID
	PickupDate         time.Time
	ReturnDate         time.Time
	Status             string
	PriceCents         int64
	CancellationReason *string
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (s *BookingSnapshot) ToDomain() (*booking.Booking, error) {
	status, err := booking.ParseStatus(s.Status)
	if err != nil {
		return nil, err
	}
	price, err := booking.NewMoney(s.PriceCents)
	if err != nil {
		return nil, err
	}
	return booking.ReconstructBooking(
		s.ID, s.CarID, s.CustomerID, s.OwnerID,
		booking.ReconstructDateRange(s.PickupDate, s.ReturnDate),
		status,
		price,
		s.CancellationReason,
		s.CompletedAt,
		s.CreatedAt, s.UpdatedAt,
	), nil
}

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key             uuid.UUID
	UserID          uuid.UUID
	Status          string
	RequestHash     string
	ResultBookingID *uuid.UUID
	ExpiresAt       time.Time
}
