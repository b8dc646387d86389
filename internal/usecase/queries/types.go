package queries

import (
	"time"

	"car-rental-booking/internal/domain/booking"

	"github.com/google/uuid"
)

// BookingView represents read-optimized booking data
type BookingView struct {
	ID                 uuid.UUID  `json:"id"`
	CarID              uuid.UUID  `json:"car_id"`
	CarName            string     `json:"car_name"`
	CustomerID         uuid.UUID  `json:"customer_id"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	PickupDate         time.Time  `json:"pickup_date"`
	ReturnDate         time.Time  `json:"return_date"`
	Status             string     `json:"status"`
	PriceCents         int64      `json:"price_cents"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CarView represents read-optimized car data
type CarView struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	Name             string    `json:"name"`
	PricePerDayCents int64     `json:"price_per_day_cents"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AvailabilityView is the answer to a pre-booking availability check
type AvailabilityView struct {
	CarID     uuid.UUID         `json:"car_id"`
	Range     booking.DateRange `json:"range"`
	Available bool              `json:"available"`
}

// BlockedDatesView lists the unavailable dates of a car inside [From, To]
type BlockedDatesView struct {
	CarID uuid.UUID   `json:"car_id"`
	From  time.Time   `json:"from"`
	To    time.Time   `json:"to"`
	Dates []time.Time `json:"dates"`
}

// TransitionView describes a status change the caller may trigger now
type TransitionView struct {
	To             string `json:"to"`
	RequiresReason bool   `json:"requires_reason"`
}

// NotificationJobView represents read-optimized notification job data
type NotificationJobView struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Topic     string    `json:"topic"`
	Payload   []byte    `json:"payload"`
	RunAt     time.Time `json:"run_at"`
	Attempts  int32     `json:"attempts"`
	Status    string    `json:"status"`
	LastError *string   `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
