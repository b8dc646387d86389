package queries

import (
	"context"
	"time"

	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrInvalidCursor = errs.New("invalid cursor")

// ListFilter narrows a booking list; AfterCreatedAt/AfterID are the keyset position.
type ListFilter struct {
	Status         *booking.Status
	AfterCreatedAt *time.Time
	AfterID        *uuid.UUID
	Limit          int
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, filter ListFilter) ([]*BookingView, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]*BookingView, error)
}

type BookingQueries interface {
	// GetByID hides bookings the actor is not a party to.
	GetByID(ctx context.Context, actorID, id uuid.UUID) (*BookingView, error)
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, status *booking.Status, after *Cursor, limit int) ([]*BookingView, *Cursor, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, status *booking.Status, after *Cursor, limit int) ([]*BookingView, *Cursor, error)
	AllowedTransitions(ctx context.Context, actorID, id uuid.UUID) ([]TransitionView, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actorID, id uuid.UUID) (*BookingView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.CustomerID != actorID && view.OwnerID != actorID {
		return nil, errs.ErrBookingNotFound
	}
	return view, nil
}

func (q *bookingQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByCustomer(ctx context.Context, customerID uuid.UUID, status *booking.Status, after *Cursor, limit int) ([]*BookingView, *Cursor, error) {
	return q.list(ctx, func(f ListFilter) ([]*BookingView, error) {
		return q.store.ListByCustomer(ctx, customerID, f)
	}, status, after, limit)
}

func (q *bookingQueriesImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID, status *booking.Status, after *Cursor, limit int) ([]*BookingView, *Cursor, error) {
	return q.list(ctx, func(f ListFilter) ([]*BookingView, error) {
		return q.store.ListByOwner(ctx, ownerID, f)
	}, status, after, limit)
}

func (q *bookingQueriesImpl) list(
	_ context.Context,
	fetch func(ListFilter) ([]*BookingView, error),
	status *booking.Status,
	after *Cursor,
	limit int,
) ([]*BookingView, *Cursor, error) {
	limit = ValidateLimit(limit)
	filter := ListFilter{Status: status, Limit: limit + 1}

	if after != nil && after.After != "" {
		t, id, err := DecodeAfterCursor(after.After)
		if err != nil {
			return nil, nil, errs.Mark(err, ErrInvalidCursor)
		}
		filter.AfterCreatedAt = &t
		filter.AfterID = &id
	}

	rows, err := fetch(filter)
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if len(rows) <= limit {
		return rows, nil, nil
	}
	rows = rows[:limit]
	last := rows[len(rows)-1]
	return rows, &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}, nil
}

func (q *bookingQueriesImpl) AllowedTransitions(ctx context.Context, actorID, id uuid.UUID) ([]TransitionView, error) {
	view, err := q.GetByID(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	status, err := booking.ParseStatus(view.Status)
	if err != nil {
		return nil, err
	}

	actor := booking.ActorCustomer
	if view.OwnerID == actorID {
		actor = booking.ActorOwner
	}

	out := []TransitionView{}
	for _, t := range booking.AllowedFrom(status) {
		if t.Permits(actor) {
			out = append(out, TransitionView{To: t.To.String(), RequiresReason: t.RequireReason})
		}
	}
	return out, nil
}
