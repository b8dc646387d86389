package response

import (
	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type AvailabilityResponse struct {
	CarID      uuid.UUID `json:"carId"`
	PickupDate string    `json:"pickupDate"`
	ReturnDate string    `json:"returnDate"`
	Nights     int       `json:"nights"`
	Available  bool      `json:"available"`
}

func FromAvailabilityView(v *queries.AvailabilityView) *AvailabilityResponse {
	return &AvailabilityResponse{
		CarID:      v.CarID,
		PickupDate: v.Range.Start().Format(booking.DateLayout),
		ReturnDate: v.Range.End().Format(booking.DateLayout),
		Nights:     v.Range.Nights(),
		Available:  v.Available,
	}
}

type BlockedDatesResponse struct {
	CarID uuid.UUID `json:"carId"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	Dates []string  `json:"dates"`
}

func FromBlockedDatesView(v *queries.BlockedDatesView) *BlockedDatesResponse {
	dates := make([]string, len(v.Dates))
	for i, d := range v.Dates {
		dates[i] = d.Format(booking.DateLayout)
	}
	return &BlockedDatesResponse{
		CarID: v.CarID,
		From:  v.From.Format(booking.DateLayout),
		To:    v.To.Format(booking.DateLayout),
		Dates: dates,
	}
}
