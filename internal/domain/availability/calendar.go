package availability

import (
	"slices"
	"sort"
	"sync"
	"time"

	"car-rental-booking/internal/domain/booking"

	"github.com/google/uuid"
)

type slot struct {
	Entry
	// provisional marks a hold reserved in memory whose booking row has not
	// been committed yet; it survives reloads until committed or released.
	provisional bool
}

// calendar is one car's bookings. holds is sorted by start date and
// maxEnd[i] is the latest end among holds[:i+1], so the holds touching a
// range are found with two binary searches instead of walking dates.
type calendar struct {
	mu      sync.RWMutex
	loaded  bool
	version int64
	slots   map[uuid.UUID]slot
	holds   []slot
	maxEnd  []time.Time
}

func newCalendar() *calendar {
	return &calendar{slots: make(map[uuid.UUID]slot)}
}

// replace swaps in a freshly loaded set of entries, keeping provisional holds.
func (c *calendar) replace(entries []Entry, version int64) {
	next := make(map[uuid.UUID]slot, len(entries))
	for _, e := range entries {
		next[e.BookingID] = slot{Entry: e}
	}
	for id, s := range c.slots {
		if !s.provisional {
			continue
		}
		if _, ok := next[id]; !ok {
			next[id] = s
		}
	}
	c.slots = next
	c.loaded = true
	c.version = version
	c.reindex()
}

func (c *calendar) reindex() {
	holds := make([]slot, 0, len(c.slots))
	for _, s := range c.slots {
		if s.Holds() {
			holds = append(holds, s)
		}
	}
	sort.Slice(holds, func(i, j int) bool {
		a, b := holds[i].Range, holds[j].Range
		if !a.Start().Equal(b.Start()) {
			return a.Start().Before(b.Start())
		}
		return holds[i].BookingID.String() < holds[j].BookingID.String()
	})

	maxEnd := make([]time.Time, len(holds))
	for i, h := range holds {
		maxEnd[i] = h.Range.End()
		if i > 0 && maxEnd[i-1].After(maxEnd[i]) {
			maxEnd[i] = maxEnd[i-1]
		}
	}
	c.holds = holds
	c.maxEnd = maxEnd
}

// overlapping returns the holds sharing at least one date with r.
func (c *calendar) overlapping(r booking.DateRange) []slot {
	// holds[:hi] start on or before r.End.
	hi := sort.Search(len(c.holds), func(i int) bool {
		return c.holds[i].Range.Start().After(r.End())
	})
	// holds before lo all end before r.Start.
	lo := sort.Search(hi, func(i int) bool {
		return !c.maxEnd[i].Before(r.Start())
	})

	var out []slot
	for _, h := range c.holds[lo:hi] {
		if !h.Range.End().Before(r.Start()) {
			out = append(out, h)
		}
	}
	return out
}

func (c *calendar) conflicts(bookingID uuid.UUID, r booking.DateRange) []uuid.UUID {
	var ids []uuid.UUID
	for _, h := range c.overlapping(r) {
		if h.BookingID != bookingID {
			ids = append(ids, h.BookingID)
		}
	}
	return ids
}

func (c *calendar) put(s slot) {
	c.slots[s.BookingID] = s
	c.reindex()
}

func (c *calendar) remove(bookingID uuid.UUID) {
	if _, ok := c.slots[bookingID]; !ok {
		return
	}
	delete(c.slots, bookingID)
	c.reindex()
}

// blocked paints the held dates inside horizon, ascending and unique.
func (c *calendar) blocked(horizon booking.DateRange) []time.Time {
	marks := make([]bool, horizon.Days())
	for _, h := range c.overlapping(horizon) {
		part, ok := h.Range.Intersect(horizon)
		if !ok {
			continue
		}
		from := booking.ReconstructDateRange(horizon.Start(), part.Start()).Days() - 1
		for i := 0; i < part.Days(); i++ {
			marks[from+i] = true
		}
	}

	out := make([]time.Time, 0, len(marks))
	for i, m := range marks {
		if m {
			out = append(out, horizon.Start().AddDate(0, 0, i))
		}
	}
	return out
}

func (c *calendar) entries() []Entry {
	out := make([]Entry, 0, len(c.slots))
	for _, s := range c.slots {
		out = append(out, s.Entry)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return a.Range.Start().Compare(b.Range.Start())
	})
	return out
}
