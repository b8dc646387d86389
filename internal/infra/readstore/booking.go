package readstore

import (
	"context"

	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/pgconv"
	"car-rental-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookingViewSelect = `
SELECT b.id, b.car_id, c.name, b.customer_id, b.owner_id,
       b.pickup_date, b.return_date, b.status, b.price_cents,
       b.cancellation_reason, b.completed_at, b.created_at, b.updated_at
FROM bookings b
JOIN cars c ON c.id = b.car_id`

const (
	getBookingViewByID = bookingViewSelect + `
WHERE b.id = $1`

	// $2 status filter, ($3, $4) keyset position; NULL disables each.
	listBookingsByCustomer = bookingViewSelect + `
WHERE b.customer_id = $1
  AND ($2::text IS NULL OR b.status = $2)
  AND ($3::timestamptz IS NULL OR (b.created_at, b.id) < ($3, $4::uuid))
ORDER BY b.created_at DESC, b.id DESC
LIMIT $5`

	listBookingsByOwner = bookingViewSelect + `
WHERE b.owner_id = $1
  AND ($2::text IS NULL OR b.status = $2)
  AND ($3::timestamptz IS NULL OR (b.created_at, b.id) < ($3, $4::uuid))
ORDER BY b.created_at DESC, b.id DESC
LIMIT $5`
)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(db db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: db}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	view, err := scanBookingView(r.db.QueryRow(ctx, getBookingViewByID, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return view, nil
}

func (r *BookingReadStore) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter queries.ListFilter) ([]*queries.BookingView, error) {
	return r.list(ctx, listBookingsByCustomer, customerID, filter)
}

func (r *BookingReadStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter queries.ListFilter) ([]*queries.BookingView, error) {
	return r.list(ctx, listBookingsByOwner, ownerID, filter)
}

func (r *BookingReadStore) list(ctx context.Context, sql string, partyID uuid.UUID, filter queries.ListFilter) ([]*queries.BookingView, error) {
	var status *string
	if filter.Status != nil {
		s := filter.Status.String()
		status = &s
	}

	rows, err := r.db.Query(ctx, sql, partyID, status, filter.AfterCreatedAt, filter.AfterID, filter.Limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	result := make([]*queries.BookingView, 0, filter.Limit)
	for rows.Next() {
		view, err := scanBookingView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	return result, nil
}

func scanBookingView(row pgx.Row) (*queries.BookingView, error) {
	var (
		v                    queries.BookingView
		pickup, ret          pgtype.Date
		reason               pgtype.Text
		completedAt          pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&v.ID, &v.CarID, &v.CarName, &v.CustomerID, &v.OwnerID,
		&pickup, &ret, &v.Status, &v.PriceCents,
		&reason, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.PickupDate = pgconv.DateFromPgtype(pickup)
	v.ReturnDate = pgconv.DateFromPgtype(ret)
	v.CancellationReason = pgconv.StringPtrFromPgtype(reason)
	v.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	v.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return &v, nil
}
