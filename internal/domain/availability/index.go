package availability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"car-rental-booking/internal/domain/booking"

	"github.com/google/uuid"
)

// Index answers availability questions per car. Readers of one car run
// concurrently; writers of one car are serialized; different cars never
// contend beyond the registry lookup. It is a derived view: any calendar
// can be dropped and rebuilt through the Loader.
type Index struct {
	mu        sync.Mutex
	calendars map[uuid.UUID]*calendar
	loader    Loader
	versions  Versioner
	logger    *slog.Logger
}

func NewIndex(loader Loader, versions Versioner, logger *slog.Logger) *Index {
	if versions == nil {
		versions = NopVersioner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		calendars: make(map[uuid.UUID]*calendar),
		loader:    loader,
		versions:  versions,
		logger:    logger,
	}
}

func (idx *Index) calendar(carID uuid.UUID) *calendar {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	c, ok := idx.calendars[carID]
	if !ok {
		c = newCalendar()
		idx.calendars[carID] = c
	}
	return c
}

// sharedVersion reads the cross-instance counter. When the counter is
// unreachable the local view is kept and the database constraint remains
// the final arbiter.
func (idx *Index) sharedVersion(ctx context.Context, carID uuid.UUID) (int64, bool) {
	v, err := idx.versions.Current(ctx, carID)
	if err != nil {
		idx.logger.Warn("calendar version unavailable",
			slog.String("car_id", carID.String()),
			slog.String("error", err.Error()))
		return 0, false
	}
	return v, true
}

// refresh loads c if it is empty or behind the shared version. Callers hold c.mu.
func (idx *Index) refresh(ctx context.Context, carID uuid.UUID, c *calendar, version int64, known bool) error {
	if c.loaded && (!known || c.version == version) {
		return nil
	}
	entries, err := idx.loader.ListBookingsForCar(ctx, carID)
	if err != nil {
		return err
	}
	if !known {
		version = c.version
	}
	c.replace(entries, version)
	idx.logger.Debug("calendar loaded",
		slog.String("car_id", carID.String()),
		slog.Int("entries", len(entries)),
		slog.Int64("version", version))
	return nil
}

// read runs fn under the calendar's read lock, loading it first if needed.
func (idx *Index) read(ctx context.Context, carID uuid.UUID, fn func(c *calendar)) error {
	version, known := idx.sharedVersion(ctx, carID)
	c := idx.calendar(carID)

	c.mu.RLock()
	if c.loaded && (!known || c.version == version) {
		fn(c)
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := idx.refresh(ctx, carID, c, version, known); err != nil {
		return err
	}
	fn(c)
	return nil
}

func (idx *Index) write(ctx context.Context, carID uuid.UUID, fn func(c *calendar) error) error {
	version, known := idx.sharedVersion(ctx, carID)
	c := idx.calendar(carID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := idx.refresh(ctx, carID, c, version, known); err != nil {
		return err
	}
	return fn(c)
}

// IsFree reports whether no holding booking of the car shares a date with r.
func (idx *Index) IsFree(ctx context.Context, carID uuid.UUID, r booking.DateRange) (bool, error) {
	if r.IsZero() {
		return false, &booking.RangeError{Reason: "date range is required"}
	}
	free := false
	err := idx.read(ctx, carID, func(c *calendar) {
		free = len(c.overlapping(r)) == 0
	})
	return free, err
}

// Conflicts lists the holding bookings that share a date with r.
func (idx *Index) Conflicts(ctx context.Context, carID uuid.UUID, r booking.DateRange) ([]Entry, error) {
	var out []Entry
	err := idx.read(ctx, carID, func(c *calendar) {
		for _, h := range c.overlapping(r) {
			out = append(out, h.Entry)
		}
	})
	return out, err
}

// BlockedDates returns every held date inside horizon in ascending order.
func (idx *Index) BlockedDates(ctx context.Context, carID uuid.UUID, horizon booking.DateRange) ([]time.Time, error) {
	if horizon.IsZero() {
		return nil, &booking.RangeError{Reason: "horizon is required"}
	}
	var out []time.Time
	err := idx.read(ctx, carID, func(c *calendar) {
		out = c.blocked(horizon)
	})
	return out, err
}

// Entries returns every booking the calendar knows about, holding or not.
func (idx *Index) Entries(ctx context.Context, carID uuid.UUID) ([]Entry, error) {
	var out []Entry
	err := idx.read(ctx, carID, func(c *calendar) {
		out = c.entries()
	})
	return out, err
}

// Reserve checks r against the car's holds and records a provisional hold
// for bookingID in the same critical section. Reserving the same booking
// again replaces its range.
func (idx *Index) Reserve(ctx context.Context, carID, bookingID uuid.UUID, r booking.DateRange) error {
	if r.IsZero() {
		return &booking.RangeError{Reason: "date range is required"}
	}
	return idx.write(ctx, carID, func(c *calendar) error {
		if ids := c.conflicts(bookingID, r); len(ids) > 0 {
			return &ConflictError{CarID: carID, Range: r, Conflicting: ids}
		}
		c.put(slot{
			Entry:       Entry{BookingID: bookingID, Range: r, Status: booking.StatusPending},
			provisional: true,
		})
		return nil
	})
}

// Commit marks a reserved hold as persisted and publishes the change to
// other instances.
func (idx *Index) Commit(ctx context.Context, carID, bookingID uuid.UUID) {
	c := idx.calendar(carID)
	c.mu.Lock()
	if s, ok := c.slots[bookingID]; ok && s.provisional {
		s.provisional = false
		c.slots[bookingID] = s
	}
	c.mu.Unlock()
	idx.publish(ctx, carID)
}

// Release frees bookingID's dates. Releasing an unknown or already
// released booking is a no-op.
func (idx *Index) Release(ctx context.Context, carID, bookingID uuid.UUID) {
	c := idx.calendar(carID)
	c.mu.Lock()
	c.remove(bookingID)
	c.mu.Unlock()
	idx.publish(ctx, carID)
}

// SetStatus records a status change that keeps the booking in the
// calendar. A status that no longer holds dates stops blocking them.
func (idx *Index) SetStatus(ctx context.Context, carID, bookingID uuid.UUID, status booking.Status) {
	c := idx.calendar(carID)
	c.mu.Lock()
	if s, ok := c.slots[bookingID]; ok {
		s.Status = status
		c.put(s)
	}
	c.mu.Unlock()
	idx.publish(ctx, carID)
}

// Invalidate drops the car's calendar; the next access reloads it.
func (idx *Index) Invalidate(carID uuid.UUID) {
	c := idx.calendar(carID)
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

// publish bumps the shared version. The local calendar adopts the new
// version only when no other instance changed the car in between;
// otherwise it is marked for reload.
func (idx *Index) publish(ctx context.Context, carID uuid.UUID) {
	v, err := idx.versions.Bump(ctx, carID)
	if err != nil {
		idx.logger.Warn("failed to publish calendar version",
			slog.String("car_id", carID.String()),
			slog.String("error", err.Error()))
		return
	}

	c := idx.calendar(carID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version == v-1 || v == 0 {
		c.version = v
		return
	}
	c.loaded = false
}
