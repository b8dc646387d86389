package commands

import (
	"context"
	"encoding/json"
	"time"

	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"

	// NotificationTopic groups booking events in the outbox.
	NotificationTopic = "bookings"
)

// BookingEvent is the outbox payload relayed to subscribers.
type BookingEvent struct {
	Event              string    `json:"event"`
	BookingID          uuid.UUID `json:"booking_id"`
	CarID              uuid.UUID `json:"car_id"`
	CustomerID         uuid.UUID `json:"customer_id"`
	OwnerID            uuid.UUID `json:"owner_id"`
	PickupDate         string    `json:"pickup_date"`
	ReturnDate         string    `json:"return_date"`
	From               string    `json:"from,omitempty"`
	To                 string    `json:"to"`
	Actor              string    `json:"actor,omitempty"`
	PriceCents         int64     `json:"price_cents"`
	CancellationReason *string   `json:"cancellation_reason,omitempty"`
	OccurredAt         time.Time `json:"occurred_at"`
}

func newCreatedEvent(b *booking.Booking, now time.Time) BookingEvent {
	ev := baseEvent(b, now)
	ev.Event = EventBookingCreated
	ev.Actor = booking.ActorCustomer.String()
	return ev
}

func newStatusChangedEvent(b *booking.Booking, from booking.Status, actor booking.Actor, now time.Time) BookingEvent {
	ev := baseEvent(b, now)
	ev.Event = EventBookingStatusChanged
	ev.From = from.String()
	ev.Actor = actor.String()
	return ev
}

func baseEvent(b *booking.Booking, now time.Time) BookingEvent {
	return BookingEvent{
		BookingID:          b.ID(),
		CarID:              b.CarID(),
		CustomerID:         b.CustomerID(),
		OwnerID:            b.OwnerID(),
		PickupDate:         b.DateRange().Start().Format(booking.DateLayout),
		ReturnDate:         b.DateRange().End().Format(booking.DateLayout),
		To:                 b.Status().String(),
		PriceCents:         b.Price().Cents(),
		CancellationReason: b.CancellationReason(),
		OccurredAt:         now.UTC(),
	}
}

func (uc *bookingCommandsImpl) enqueueEvent(ctx context.Context, tx shared.Tx, ev BookingEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), ev.Event, NotificationTopic, payload, uc.clock.Now())
}
