package request

import (
	"time"

	"car-rental-booking/internal/domain/booking"

	"github.com/google/uuid"
)

type CheckAvailabilityRequest struct {
	CarID      uuid.UUID `json:"carId" binding:"required"`
	PickupDate string    `json:"pickupDate" binding:"required"`
	ReturnDate string    `json:"returnDate" binding:"required"`
}

func (r CheckAvailabilityRequest) Dates() (time.Time, time.Time, error) {
	return parseDates(r.PickupDate, r.ReturnDate)
}

type CreateBookingRequest struct {
	CarID      uuid.UUID  `json:"carId" binding:"required"`
	OwnerID    *uuid.UUID `json:"ownerId,omitempty"`
	PickupDate string     `json:"pickupDate" binding:"required"`
	ReturnDate string     `json:"returnDate" binding:"required"`
}

func (r CreateBookingRequest) Dates() (time.Time, time.Time, error) {
	return parseDates(r.PickupDate, r.ReturnDate)
}

type ChangeStatusRequest struct {
	BookingID          uuid.UUID `json:"bookingId" binding:"required"`
	Status             string    `json:"status" binding:"required"`
	CancellationReason string    `json:"cancellationReason,omitempty" binding:"max=500"`
}

// TargetStatus accepts the canonical names and legacy aliases such as "confirmed".
func (r ChangeStatusRequest) TargetStatus() (booking.Status, error) {
	return booking.ParseStatus(r.Status)
}

func parseDates(pickup, ret string) (time.Time, time.Time, error) {
	start, err := booking.ParseDate(pickup)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := booking.ParseDate(ret)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
