//go:build unit

package commands_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"car-rental-booking/internal/domain/availability"
	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/clock"
	"car-rental-booking/internal/usecase/queries"
	"car-rental-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memoryStore is an in-process stand-in for the bookings schema. Transactions
// are serialized and staged, and the bookings_no_overlap exclusion constraint
// is enforced on insert.
type memoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	clock    clock.Clock
	cars     map[uuid.UUID]shared.CarSnapshot
	bookings map[uuid.UUID]shared.BookingSnapshot
	keys     map[keyOwner]shared.IdempotencyRecord
	jobs     []memoryJob

	// failWithin makes the next transaction fail after its callback ran.
	failWithin error
}

type keyOwner struct {
	key  uuid.UUID
	user uuid.UUID
}

type memoryJob struct {
	Kind    string
	Topic   string
	Payload []byte
}

func newMemoryStore(clk clock.Clock) *memoryStore {
	return &memoryStore{
		clock:    clk,
		cars:     make(map[uuid.UUID]shared.CarSnapshot),
		bookings: make(map[uuid.UUID]shared.BookingSnapshot),
		keys:     make(map[keyOwner]shared.IdempotencyRecord),
	}
}

func (s *memoryStore) addCar(c shared.CarSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cars[c.ID] = c
}

// insertBooking writes a row directly, bypassing any index, the way another
// instance would.
func (s *memoryStore) insertBooking(b shared.BookingSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

func (s *memoryStore) booking(id uuid.UUID) (shared.BookingSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return b, ok
}

func (s *memoryStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *memoryStore) key(key, user uuid.UUID) (shared.IdempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.keys[keyOwner{key, user}]
	return rec, ok
}

func (s *memoryStore) setKey(rec shared.IdempotencyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[keyOwner{rec.Key, rec.UserID}] = rec
}

func (s *memoryStore) jobKinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Kind)
	}
	return out
}

func (s *memoryStore) lastJob() (memoryJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.jobs) == 0 {
		return memoryJob{}, false
	}
	return s.jobs[len(s.jobs)-1], true
}

// ---- shared.UnitOfWork ----

func (s *memoryStore) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memoryTx{
		store:  s,
		staged: make(map[uuid.UUID]shared.BookingSnapshot),
		keys:   make(map[keyOwner]*shared.IdempotencyRecord),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWithin != nil {
		err := s.failWithin
		s.failWithin = nil
		return err
	}
	for id, b := range tx.staged {
		s.bookings[id] = b
	}
	for k, rec := range tx.keys {
		if rec == nil {
			delete(s.keys, k)
			continue
		}
		s.keys[k] = *rec
	}
	s.jobs = append(s.jobs, tx.jobs...)
	return nil
}

func (s *memoryStore) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

func (s *memoryStore) CommandReads() shared.CommandReads {
	return &memoryReads{store: s}
}

func (s *memoryStore) Idempotency() shared.IdempotencyRepository {
	return &memoryIdempotency{store: s}
}

// ---- shared.Tx ----

type memoryTx struct {
	store  *memoryStore
	staged map[uuid.UUID]shared.BookingSnapshot
	// keys holds idempotency writes until commit; nil marks a delete.
	keys map[keyOwner]*shared.IdempotencyRecord
	jobs []memoryJob
}

func (tx *memoryTx) Bookings() shared.BookingRepository           { return &memoryBookings{tx: tx} }
func (tx *memoryTx) Idempotency() shared.IdempotencyRepository    { return &memoryIdempotency{store: tx.store, tx: tx} }
func (tx *memoryTx) Notifications() shared.NotificationRepository { return &memoryNotifications{tx: tx} }
func (tx *memoryTx) Reads() shared.CommandReads                   { return &memoryReads{store: tx.store, tx: tx} }
func (tx *memoryTx) DB() db.DBTX                                  { return nil }

type memoryBookings struct {
	tx *memoryTx
}

func (r *memoryBookings) Create(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	snap := snapshotOf(b)

	r.tx.store.mu.Lock()
	defer r.tx.store.mu.Unlock()

	rows := make([]shared.BookingSnapshot, 0, len(r.tx.store.bookings)+len(r.tx.staged))
	for _, existing := range r.tx.store.bookings {
		rows = append(rows, existing)
	}
	for _, existing := range r.tx.staged {
		rows = append(rows, existing)
	}
	for _, existing := range rows {
		if existing.CarID == snap.CarID && holds(existing) && overlaps(existing, snap) {
			return infra.WrapRepoErr("failed to create booking", &pgconn.PgError{
				Code:           pgerrcode.ExclusionViolation,
				ConstraintName: "bookings_no_overlap",
			})
		}
	}
	r.tx.staged[snap.ID] = snap
	return nil
}

func (r *memoryBookings) UpdateStatus(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	if _, err := (&memoryReads{store: r.tx.store, tx: r.tx}).BookingByID(context.Background(), b.ID()); err != nil {
		return err
	}
	r.tx.staged[b.ID()] = snapshotOf(b)
	return nil
}

type memoryNotifications struct {
	tx *memoryTx
}

func (n *memoryNotifications) CreateJob(_ context.Context, _ db.DBTX, kind, topic string, payload []byte, _ time.Time) error {
	n.tx.jobs = append(n.tx.jobs, memoryJob{Kind: kind, Topic: topic, Payload: payload})
	return nil
}

// memoryIdempotency writes straight to the store outside a transaction and
// stages into the transaction otherwise.
type memoryIdempotency struct {
	store *memoryStore
	tx    *memoryTx
}

// lookup must be called with store.mu held.
func (r *memoryIdempotency) lookup(k keyOwner) (shared.IdempotencyRecord, bool) {
	if r.tx != nil {
		if rec, staged := r.tx.keys[k]; staged {
			if rec == nil {
				return shared.IdempotencyRecord{}, false
			}
			return *rec, true
		}
	}
	rec, ok := r.store.keys[k]
	return rec, ok
}

// put must be called with store.mu held.
func (r *memoryIdempotency) put(k keyOwner, rec shared.IdempotencyRecord) {
	if r.tx != nil {
		r.tx.keys[k] = &rec
		return
	}
	r.store.keys[k] = rec
}

// remove must be called with store.mu held.
func (r *memoryIdempotency) remove(k keyOwner) {
	if r.tx != nil {
		r.tx.keys[k] = nil
		return
	}
	delete(r.store.keys, k)
}

func (r *memoryIdempotency) TryInsert(_ context.Context, _ db.DBTX, key, userID uuid.UUID, _ string, requestHash string, expiresAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := keyOwner{key, userID}
	if _, ok := r.lookup(k); ok {
		return false, nil
	}
	r.put(k, shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	})
	return true, nil
}

func (r *memoryIdempotency) UpdateStatusCompleted(_ context.Context, _ db.DBTX, key, userID uuid.UUID, _ string, bookingID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := keyOwner{key, userID}
	rec, ok := r.lookup(k)
	if !ok {
		return nil
	}
	rec.Status = shared.IdempotencyStatusCompleted
	rec.ResultBookingID = &bookingID
	r.put(k, rec)
	return nil
}

func (r *memoryIdempotency) ClaimExpired(_ context.Context, _ db.DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := keyOwner{key, userID}
	rec, ok := r.lookup(k)
	if !ok || !rec.ExpiresAt.Before(r.store.clock.Now()) {
		return false, nil
	}
	rec.Status = shared.IdempotencyStatusProcessing
	rec.RequestHash = requestHash
	rec.ExpiresAt = expiresAt
	rec.ResultBookingID = nil
	r.put(k, rec)
	return true, nil
}

func (r *memoryIdempotency) Delete(_ context.Context, _ db.DBTX, key, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	k := keyOwner{key, userID}
	if rec, ok := r.lookup(k); ok && rec.Status == shared.IdempotencyStatusProcessing {
		r.remove(k)
	}
	return nil
}

// ---- shared.CommandReads ----

type memoryReads struct {
	store *memoryStore
	tx    *memoryTx
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, pgx.ErrNoRows)
}

func (r *memoryReads) CarByID(_ context.Context, id uuid.UUID) (*shared.CarSnapshot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.cars[id]
	if !ok {
		return nil, notFound("car not found")
	}
	return &c, nil
}

func (r *memoryReads) BookingByID(_ context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	if r.tx != nil {
		if b, ok := r.tx.staged[id]; ok {
			return &b, nil
		}
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, notFound("booking not found")
	}
	return &b, nil
}

func (r *memoryReads) BookingForUpdate(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	return r.BookingByID(ctx, id)
}

func (r *memoryReads) IdempotencyByKey(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := (&memoryIdempotency{store: r.store, tx: r.tx}).lookup(keyOwner{key, userID})
	if !ok {
		return nil, notFound("idempotency key not found")
	}
	return &rec, nil
}

func (r *memoryReads) PendingStale(_ context.Context, createdBefore, pickupBefore time.Time, limit int) ([]shared.BookingSnapshot, error) {
	return r.selectBookings(limit, func(b shared.BookingSnapshot) bool {
		return b.Status == booking.StatusPending.String() &&
			(b.CreatedAt.Before(createdBefore) || b.PickupDate.Before(pickupBefore))
	}), nil
}

func (r *memoryReads) BookedDueForPickup(_ context.Context, today time.Time, limit int) ([]shared.BookingSnapshot, error) {
	return r.selectBookings(limit, func(b shared.BookingSnapshot) bool {
		return b.Status == booking.StatusBooked.String() && !b.PickupDate.After(today)
	}), nil
}

func (r *memoryReads) selectBookings(limit int, match func(shared.BookingSnapshot) bool) []shared.BookingSnapshot {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []shared.BookingSnapshot
	for _, b := range r.store.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b shared.BookingSnapshot) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ---- availability.Loader ----

type memoryLoader struct {
	store *memoryStore
}

func (l *memoryLoader) ListBookingsForCar(_ context.Context, carID uuid.UUID) ([]availability.Entry, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	var out []availability.Entry
	for _, b := range l.store.bookings {
		if b.CarID != carID || b.Status == booking.StatusCancelled.String() {
			continue
		}
		status, err := booking.ParseStatus(b.Status)
		if err != nil {
			return nil, err
		}
		out = append(out, availability.Entry{
			BookingID: b.ID,
			Range:     booking.ReconstructDateRange(b.PickupDate, b.ReturnDate),
			Status:    status,
		})
	}
	return out, nil
}

// ---- queries.BookingReadStore ----

type memoryReadStore struct {
	store *memoryStore
}

func (r *memoryReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, notFound("booking not found")
	}
	return &queries.BookingView{
		ID:                 b.ID,
		CarID:              b.CarID,
		CarName:            r.store.cars[b.CarID].Name,
		CustomerID:         b.CustomerID,
		OwnerID:            b.OwnerID,
		PickupDate:         b.PickupDate,
		ReturnDate:         b.ReturnDate,
		Status:             b.Status,
		PriceCents:         b.PriceCents,
		CancellationReason: b.CancellationReason,
		CompletedAt:        b.CompletedAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}, nil
}

func (r *memoryReadStore) ListByCustomer(context.Context, uuid.UUID, queries.ListFilter) ([]*queries.BookingView, error) {
	return nil, nil
}

func (r *memoryReadStore) ListByOwner(context.Context, uuid.UUID, queries.ListFilter) ([]*queries.BookingView, error) {
	return nil, nil
}

func snapshotOf(b *booking.Booking) shared.BookingSnapshot {
	return shared.BookingSnapshot{
		ID:                 b.ID(),
		CarID:              b.CarID(),
		CustomerID:         b.CustomerID(),
		OwnerID:            b.OwnerID(),
		PickupDate:         b.DateRange().Start(),
		ReturnDate:         b.DateRange().End(),
		Status:             b.Status().String(),
		PriceCents:         b.Price().Cents(),
		CancellationReason: b.CancellationReason(),
		CompletedAt:        b.CompletedAt(),
		CreatedAt:          b.CreatedAt(),
		UpdatedAt:          b.UpdatedAt(),
	}
}

func holds(b shared.BookingSnapshot) bool {
	status, err := booking.ParseStatus(b.Status)
	return err == nil && status.HoldsReservation()
}

func overlaps(a, b shared.BookingSnapshot) bool {
	return !a.PickupDate.After(b.ReturnDate) && !b.PickupDate.After(a.ReturnDate)
}
