package repository

import (
	"context"

	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/pgconv"
)

const (
	insertBooking = `
INSERT INTO bookings (
    id, car_id, customer_id, owner_id, pickup_date, return_date,
    status, price_cents, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateBookingStatus = `
UPDATE bookings
SET status = $2, cancellation_reason = $3, completed_at = $4, updated_at = $5
WHERE id = $1`
)

type BookingRepository struct{}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

// Create inserts a booking. An overlapping holding booking of the same car
// fails with KindConflict via the bookings_no_overlap exclusion constraint.
func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	_, err := tx.Exec(ctx, insertBooking,
		b.ID(),
		b.CarID(),
		b.CustomerID(),
		b.OwnerID(),
		pgconv.DateToPgtype(b.DateRange().Start()),
		pgconv.DateToPgtype(b.DateRange().End()),
		b.Status().String(),
		b.Price().Cents(),
		pgconv.TimeToPgtype(b.CreatedAt()),
		pgconv.TimeToPgtype(b.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	tag, err := tx.Exec(ctx, updateBookingStatus,
		b.ID(),
		b.Status().String(),
		pgconv.StringPtrToPgtype(b.CancellationReason()),
		pgconv.TimePtrToPgtype(b.CompletedAt()),
		pgconv.TimeToPgtype(b.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}
