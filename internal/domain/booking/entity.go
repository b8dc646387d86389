package booking

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	id                 uuid.UUID
	carID              uuid.UUID
	customerID         uuid.UUID
	ownerID            uuid.UUID
	dateRange          DateRange
	status             Status
	price              Money
	cancellationReason *string
	completedAt        *time.Time
	createdAt          time.Time
	updatedAt          time.Time
}

func ReconstructBooking(
	id, carID, customerID, ownerID uuid.UUID,
	dateRange DateRange,
	status Status,
	price Money,
	cancellationReason *string,
	completedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		carID:              carID,
		customerID:         customerID,
		ownerID:            ownerID,
		dateRange:          dateRange,
		status:             status,
		price:              price,
		cancellationReason: cancellationReason,
		completedAt:        completedAt,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// TransitionTo moves the booking to status to. The booking is left
// untouched when the move is rejected.
func (b *Booking) TransitionTo(to Status, reason string, now time.Time) (Transition, error) {
	t, err := LookupTransition(b.status, to)
	if err != nil {
		return Transition{}, err
	}

	var r Reason
	if t.RequireReason {
		r, err = NewReason(reason)
		if err != nil {
			return Transition{}, err
		}
	}

	b.status = to
	b.updatedAt = now
	switch to {
	case StatusCancelled:
		s := r.String()
		b.cancellationReason = &s
	case StatusCompleted:
		at := now
		b.completedAt = &at
	}
	return t, nil
}

func (b *Booking) Accept(now time.Time) error {
	_, err := b.TransitionTo(StatusBooked, "", now)
	return err
}

func (b *Booking) StartRental(now time.Time) error {
	_, err := b.TransitionTo(StatusOnRent, "", now)
	return err
}

func (b *Booking) Complete(now time.Time) error {
	_, err := b.TransitionTo(StatusCompleted, "", now)
	return err
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	_, err := b.TransitionTo(StatusCancelled, reason, now)
	return err
}

// ActorFor resolves which party userID is for this booking.
func (b *Booking) ActorFor(userID uuid.UUID) (Actor, bool) {
	switch userID {
	case b.ownerID:
		return ActorOwner, true
	case b.customerID:
		return ActorCustomer, true
	default:
		return "", false
	}
}

func (b *Booking) HoldsReservation() bool {
	return b.status.HoldsReservation()
}

func (b *Booking) ID() uuid.UUID               { return b.id }
func (b *Booking) CarID() uuid.UUID            { return b.carID }
func (b *Booking) CustomerID() uuid.UUID       { return b.customerID }
func (b *Booking) OwnerID() uuid.UUID          { return b.ownerID }
func (b *Booking) DateRange() DateRange        { return b.dateRange }
func (b *Booking) Status() Status              { return b.status }
func (b *Booking) Price() Money                { return b.price }
func (b *Booking) CancellationReason() *string { return b.cancellationReason }
func (b *Booking) CompletedAt() *time.Time     { return b.completedAt }
func (b *Booking) CreatedAt() time.Time        { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time        { return b.updatedAt }
