package booking

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateRange is an inclusive interval of calendar dates. Both ends are kept
// as midnight UTC so that comparisons never depend on time of day.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange validates start <= end and, unless allowPast is set, that
// start is not before today.
func NewDateRange(start, end, today time.Time, allowPast bool) (DateRange, error) {
	s, e := Day(start), Day(end)
	if s.After(e) {
		return DateRange{}, &RangeError{Reason: "pickup date must not be after return date"}
	}
	if !allowPast && s.Before(Day(today)) {
		return DateRange{}, &RangeError{Reason: "pickup date cannot be in the past"}
	}
	return DateRange{start: s, end: e}, nil
}

// ReconstructDateRange rebuilds a range read from storage without validation.
func ReconstructDateRange(start, end time.Time) DateRange {
	return DateRange{start: Day(start), end: Day(end)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &RangeError{Reason: fmt.Sprintf("malformed date %q", s)}
	}
	return t, nil
}

// Day truncates t to its calendar date, as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r DateRange) Start() time.Time { return r.start }
func (r DateRange) End() time.Time   { return r.end }

func (r DateRange) IsZero() bool {
	return r.start.IsZero() && r.end.IsZero()
}

// Overlaps is inclusive on both ends: a return date equal to another
// range's pickup date is a conflict.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.start.After(other.end) && !r.end.Before(other.start)
}

func (r DateRange) Contains(date time.Time) bool {
	d := Day(date)
	return !d.Before(r.start) && !d.After(r.end)
}

const secondsPerDay = 24 * 60 * 60

// Days is the number of calendar dates covered, ends included. It counts in
// Unix seconds because time.Duration saturates after about 292 years.
func (r DateRange) Days() int {
	return int((r.end.Unix()-r.start.Unix())/secondsPerDay) + 1
}

// Nights counts day boundaries between pickup and return; a same-day
// rental is billed as one.
func (r DateRange) Nights() int {
	n := r.Days() - 1
	if n < 1 {
		return 1
	}
	return n
}

// Intersect returns the shared dates and whether there are any.
func (r DateRange) Intersect(other DateRange) (DateRange, bool) {
	if !r.Overlaps(other) {
		return DateRange{}, false
	}
	s, e := r.start, r.end
	if other.start.After(s) {
		s = other.start
	}
	if other.end.Before(e) {
		e = other.end
	}
	return DateRange{start: s, end: e}, true
}

// Dates enumerates every calendar date in the range.
func (r DateRange) Dates() []time.Time {
	out := make([]time.Time, 0, r.Days())
	for d := r.start; !d.After(r.end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s,%s]", r.start.Format(DateLayout), r.end.Format(DateLayout))
}

// ToDaterange renders the range as a Postgres daterange literal.
func (r DateRange) ToDaterange() string {
	return r.String()
}
