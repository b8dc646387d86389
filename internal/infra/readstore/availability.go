package readstore

import (
	"context"

	"car-rental-booking/internal/domain/availability"
	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Cancelled bookings never affect availability and are not loaded.
const listCalendarEntries = `
SELECT id, pickup_date, return_date, status
FROM bookings
WHERE car_id = $1 AND status <> 'cancelled'
ORDER BY pickup_date`

// AvailabilityLoader rebuilds calendars from the bookings table.
type AvailabilityLoader struct {
	db db.DBTX
}

func NewAvailabilityLoader(db db.DBTX) *AvailabilityLoader {
	return &AvailabilityLoader{db: db}
}

func (l *AvailabilityLoader) ListBookingsForCar(ctx context.Context, carID uuid.UUID) ([]availability.Entry, error) {
	rows, err := l.db.Query(ctx, listCalendarEntries, carID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load car calendar", err)
	}
	defer rows.Close()

	var entries []availability.Entry
	for rows.Next() {
		var (
			id          uuid.UUID
			pickup, ret pgtype.Date
			status      string
		)
		if err := rows.Scan(&id, &pickup, &ret, &status); err != nil {
			return nil, infra.WrapRepoErr("failed to scan calendar entry", err)
		}
		st, err := booking.ParseStatus(status)
		if err != nil {
			return nil, infra.WrapRepoErr("unknown booking status "+status, err, infra.KindConstraintViolated)
		}
		entries = append(entries, availability.Entry{
			BookingID: id,
			Range:     booking.ReconstructDateRange(pgconv.DateFromPgtype(pickup), pgconv.DateFromPgtype(ret)),
			Status:    st,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to load car calendar", err)
	}
	return entries, nil
}
