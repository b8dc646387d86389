package request

import (
	"time"

	"car-rental-booking/internal/domain/booking"
)

const MonthLayout = "2006-01"

// BlockedDatesQuery selects either a month grid or an explicit from/to window.
type BlockedDatesQuery struct {
	Month string `form:"month"`
	From  string `form:"from"`
	To    string `form:"to"`
}

func (q BlockedDatesQuery) IsMonth() bool {
	return q.Month != ""
}

func (q BlockedDatesQuery) ParseMonth() (int, time.Month, error) {
	t, err := time.Parse(MonthLayout, q.Month)
	if err != nil {
		return 0, 0, &booking.RangeError{Reason: "month must be formatted as YYYY-MM"}
	}
	return t.Year(), t.Month(), nil
}

// Horizon parses from/to; past dates are allowed so history can be shown.
func (q BlockedDatesQuery) Horizon() (booking.DateRange, error) {
	if q.From == "" || q.To == "" {
		return booking.DateRange{}, &booking.RangeError{Reason: "either month or from and to are required"}
	}
	start, end, err := parseDates(q.From, q.To)
	if err != nil {
		return booking.DateRange{}, err
	}
	return booking.NewDateRange(start, end, start, true)
}

type ListBookingsQuery struct {
	Status string `form:"status"`
	After  string `form:"after"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (q ListBookingsQuery) StatusFilter() (*booking.Status, error) {
	if q.Status == "" {
		return nil, nil
	}
	s, err := booking.ParseStatus(q.Status)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
