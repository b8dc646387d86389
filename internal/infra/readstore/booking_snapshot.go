package readstore

import (
	"context"
	"time"

	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/pgconv"
	"car-rental-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookingSnapshotSelect = `
SELECT id, car_id, customer_id, owner_id, pickup_date, return_date, status,
       price_cents, cancellation_reason, completed_at, created_at, updated_at
FROM bookings`

const (
	getBookingSnapshot          = bookingSnapshotSelect + ` WHERE id = $1`
	getBookingSnapshotForUpdate = bookingSnapshotSelect + ` WHERE id = $1 FOR UPDATE`

	listPendingStale = bookingSnapshotSelect + `
WHERE status = 'pending' AND (created_at < $1 OR pickup_date < $2)
ORDER BY created_at
LIMIT $3`

	listBookedDueForPickup = bookingSnapshotSelect + `
WHERE status = 'booked' AND pickup_date <= $1
ORDER BY pickup_date
LIMIT $2`
)

// BookingSnapshotReadStore serves the write side; every method takes the
// DBTX so reads can join the caller's transaction.
type BookingSnapshotReadStore struct{}

func NewBookingSnapshotReadStore() *BookingSnapshotReadStore {
	return &BookingSnapshotReadStore{}
}

func (s *BookingSnapshotReadStore) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID, forUpdate bool) (*shared.BookingSnapshot, error) {
	sql := getBookingSnapshot
	if forUpdate {
		sql = getBookingSnapshotForUpdate
	}
	snap, err := scanBookingSnapshot(dbtx.QueryRow(ctx, sql, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking snapshot", err)
	}
	return snap, nil
}

func (s *BookingSnapshotReadStore) PendingStale(ctx context.Context, dbtx db.DBTX, createdBefore, pickupBefore time.Time, limit int) ([]shared.BookingSnapshot, error) {
	return s.list(ctx, dbtx, listPendingStale, pgconv.TimeToPgtype(createdBefore), pgconv.DateToPgtype(pickupBefore), limit)
}

func (s *BookingSnapshotReadStore) BookedDueForPickup(ctx context.Context, dbtx db.DBTX, today time.Time, limit int) ([]shared.BookingSnapshot, error) {
	return s.list(ctx, dbtx, listBookedDueForPickup, pgconv.DateToPgtype(today), limit)
}

func (s *BookingSnapshotReadStore) list(ctx context.Context, dbtx db.DBTX, sql string, args ...any) ([]shared.BookingSnapshot, error) {
	rows, err := dbtx.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list booking snapshots", err)
	}
	defer rows.Close()

	var result []shared.BookingSnapshot
	for rows.Next() {
		snap, err := scanBookingSnapshot(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking snapshot", err)
		}
		result = append(result, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to list booking snapshots", err)
	}
	return result, nil
}

func scanBookingSnapshot(row pgx.Row) (*shared.BookingSnapshot, error) {
	var (
		s                    shared.BookingSnapshot
		pickup, ret          pgtype.Date
		reason               pgtype.Text
		completedAt          pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&s.ID, &s.CarID, &s.CustomerID, &s.OwnerID, &pickup, &ret, &s.Status,
		&s.PriceCents, &reason, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.PickupDate = pgconv.DateFromPgtype(pickup)
	s.ReturnDate = pgconv.DateFromPgtype(ret)
	s.CancellationReason = pgconv.StringPtrFromPgtype(reason)
	s.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)
	s.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	s.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return &s, nil
}
