package queries

import (
	"context"
	"time"

	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	// MonthGridDays covers six calendar weeks.
	MonthGridDays = 42
	// MaxHorizonDays bounds a single blocked-dates request.
	MaxHorizonDays = 366
)

type CarReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CarView, error)
}

type AvailabilityIndex interface {
	IsFree(ctx context.Context, carID uuid.UUID, r booking.DateRange) (bool, error)
	BlockedDates(ctx context.Context, carID uuid.UUID, horizon booking.DateRange) ([]time.Time, error)
}

// RangeValidator applies the creation rules to a requested range.
type RangeValidator interface {
	NewRange(start, end time.Time) (booking.DateRange, error)
}

type AvailabilityQueries interface {
	// Check validates pickup/return like a new booking would and reports
	// whether the car is free for it.
	Check(ctx context.Context, carID uuid.UUID, pickup, ret time.Time) (*AvailabilityView, error)
	IsFree(ctx context.Context, carID uuid.UUID, r booking.DateRange) (bool, error)
	BlockedDates(ctx context.Context, carID uuid.UUID, horizon booking.DateRange) (*BlockedDatesView, error)
	// MonthGrid covers the 42 days starting on the Sunday on or before the 1st.
	MonthGrid(ctx context.Context, carID uuid.UUID, year int, month time.Month) (*BlockedDatesView, error)
}

type availabilityQueriesImpl struct {
	cars   CarReadStore
	index  AvailabilityIndex
	ranges RangeValidator
}

func NewAvailabilityQueries(cars CarReadStore, index AvailabilityIndex, ranges RangeValidator) AvailabilityQueries {
	return &availabilityQueriesImpl{cars: cars, index: index, ranges: ranges}
}

func (q *availabilityQueriesImpl) Check(ctx context.Context, carID uuid.UUID, pickup, ret time.Time) (*AvailabilityView, error) {
	r, err := q.ranges.NewRange(pickup, ret)
	if err != nil {
		return nil, err
	}
	free, err := q.IsFree(ctx, carID, r)
	if err != nil {
		return nil, err
	}
	return &AvailabilityView{CarID: carID, Range: r, Available: free}, nil
}

func (q *availabilityQueriesImpl) IsFree(ctx context.Context, carID uuid.UUID, r booking.DateRange) (bool, error) {
	if err := q.ensureCar(ctx, carID); err != nil {
		return false, err
	}
	free, err := q.index.IsFree(ctx, carID, r)
	if err != nil {
		return false, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return free, nil
}

func (q *availabilityQueriesImpl) BlockedDates(ctx context.Context, carID uuid.UUID, horizon booking.DateRange) (*BlockedDatesView, error) {
	if horizon.Days() > MaxHorizonDays {
		return nil, &booking.RangeError{Reason: "horizon exceeds one year"}
	}
	if err := q.ensureCar(ctx, carID); err != nil {
		return nil, err
	}

	dates, err := q.index.BlockedDates(ctx, carID, horizon)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return &BlockedDatesView{
		CarID: carID,
		From:  horizon.Start(),
		To:    horizon.End(),
		Dates: dates,
	}, nil
}

func (q *availabilityQueriesImpl) MonthGrid(ctx context.Context, carID uuid.UUID, year int, month time.Month) (*BlockedDatesView, error) {
	return q.BlockedDates(ctx, carID, MonthGridRange(year, month))
}

// MonthGridRange returns the six-week window displayed for a month.
func MonthGridRange(year int, month time.Month) booking.DateRange {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	return booking.ReconstructDateRange(start, start.AddDate(0, 0, MonthGridDays-1))
}

func (q *availabilityQueriesImpl) ensureCar(ctx context.Context, carID uuid.UUID) error {
	if _, err := q.cars.FindByID(ctx, carID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrCarNotFound
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}
