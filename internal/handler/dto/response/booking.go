package response

import (
	"time"

	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

// statusLabels are display strings only; clients send and match on Status.
var statusLabels = map[string]string{
	booking.StatusPending.String():   "Awaiting owner approval",
	booking.StatusBooked.String():    "Booked",
	booking.StatusOnRent.String():    "On rent",
	booking.StatusCompleted.String(): "Completed",
	booking.StatusCancelled.String(): "Cancelled",
}

func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

type BookingResponse struct {
	ID                 uuid.UUID  `json:"id"`
	CarID              uuid.UUID  `json:"carId"`
	CarName            string     `json:"carName"`
	CustomerID         uuid.UUID  `json:"customerId"`
	OwnerID            uuid.UUID  `json:"ownerId"`
	PickupDate         string     `json:"pickupDate"`
	ReturnDate         string     `json:"returnDate"`
	Nights             int        `json:"nights"`
	Status             string     `json:"status"`
	StatusLabel        string     `json:"statusLabel"`
	PriceCents         int64      `json:"priceCents"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

type BookingListResponse struct {
	Items      []*BookingResponse `json:"items"`
	NextCursor *string            `json:"nextCursor,omitempty"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	return &BookingResponse{
		ID:                 v.ID,
		CarID:              v.CarID,
		CarName:            v.CarName,
		CustomerID:         v.CustomerID,
		OwnerID:            v.OwnerID,
		PickupDate:         v.PickupDate.Format(booking.DateLayout),
		ReturnDate:         v.ReturnDate.Format(booking.DateLayout),
		Nights:             booking.ReconstructDateRange(v.PickupDate, v.ReturnDate).Nights(),
		Status:             v.Status,
		StatusLabel:        StatusLabel(v.Status),
		PriceCents:         v.PriceCents,
		CancellationReason: v.CancellationReason,
		CompletedAt:        v.CompletedAt,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

func FromBookingViews(views []*queries.BookingView, next *queries.Cursor) *BookingListResponse {
	items := make([]*BookingResponse, len(views))
	for i, v := range views {
		items[i] = FromBookingView(v)
	}
	resp := &BookingListResponse{Items: items}
	if next != nil {
		resp.NextCursor = &next.After
	}
	return resp
}

type TransitionResponse struct {
	Status         string `json:"status"`
	StatusLabel    string `json:"statusLabel"`
	RequiresReason bool   `json:"requiresReason"`
}

func FromTransitionViews(views []queries.TransitionView) []TransitionResponse {
	out := make([]TransitionResponse, len(views))
	for i, v := range views {
		out[i] = TransitionResponse{Status: v.To, StatusLabel: StatusLabel(v.To), RequiresReason: v.RequiresReason}
	}
	return out
}
