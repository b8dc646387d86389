//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"car-rental-booking/internal/domain/availability"
	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/pkg/clock"
	"car-rental-booking/internal/pkg/errs"
	"car-rental-booking/internal/usecase/commands"
	"car-rental-booking/internal/usecase/queries"
	"car-rental-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2030, time.March, 10, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return today.AddDate(0, 0, n)
}

type harness struct {
	store    *memoryStore
	clock    *clock.MockClock
	index    *availability.Index
	commands commands.BookingCommands
	car      shared.CarSnapshot
	owner    uuid.UUID
	customer uuid.UUID
}

func newHarness(t *testing.T, policy commands.LifecyclePolicy) *harness {
	t.Helper()

	clk := clock.NewMockClock(today.Add(9 * time.Hour))
	store := newMemoryStore(clk)
	owner := uuid.New()
	c := shared.CarSnapshot{ID: uuid.New(), OwnerID: owner, Name: "Toyota Aqua", PricePerDayCents: 4500}
	store.addCar(c)

	index := availability.NewIndex(&memoryLoader{store: store}, nil, nil)
	factory := booking.NewFactory(clk, booking.NewDailyRateCalculator(), time.UTC)
	bookingQueries := queries.NewBookingQueries(&memoryReadStore{store: store})

	return &harness{
		store:    store,
		clock:    clk,
		index:    index,
		commands: commands.NewBookingCommands(store, index, factory, bookingQueries, clk, policy),
		car:      c,
		owner:    owner,
		customer: uuid.New(),
	}
}

func (h *harness) input(from, to int) commands.RequestBookingInput {
	return commands.RequestBookingInput{
		CarID:      h.car.ID,
		CustomerID: h.customer,
		PickupDate: day(from),
		ReturnDate: day(to),
	}
}

func (h *harness) book(t *testing.T, from, to int) *queries.BookingView {
	t.Helper()
	res, err := h.commands.RequestBooking(context.Background(), h.input(from, to), uuid.New())
	require.NoError(t, err)
	return res.Booking
}

func (h *harness) isFree(t *testing.T, from, to int) bool {
	t.Helper()
	free, err := h.index.IsFree(context.Background(), h.car.ID, booking.ReconstructDateRange(day(from), day(to)))
	require.NoError(t, err)
	return free
}

// =============================================================================
// RequestBooking Tests
// =============================================================================

func TestRequestBooking_Success(t *testing.T) {
	h := newHarness(t, commands.LifecyclePolicy{})
	key := uuid.New()

	res, err := h.commands.RequestBooking(context.Background(), h.input(1, 4), key)
	require.NoError(t, err)

	assert.False(t, res.IsReplayed)
	view := res.Booking
	assert.Equal(t, booking.StatusPending.String(), view.Status)
	assert.Equal(t, h.car.ID, view.CarID)
	assert.Equal(t, "Toyota Aqua", view.CarName)
	assert.Equal(t, h.customer, view.CustomerID)
	assert.Equal(t, h.owner, view.OwnerID)
	assert.Equal(t, day(1), view.PickupDate)
	assert.Equal(t, day(4), view.ReturnDate)
	assert.Equal(t, int64(3*4500), view.PriceCents)

	assert.False(t, h.isFree(t, 2, 2), "requested dates must be held")
	assert.True(t, h.isFree(t, 5, 6))

	rec, ok := h.store.key(key, h.customer)
	require.True(t, ok)
	assert.Equal(t, shared.IdempotencyStatusCompleted, rec.Status)
	require.NotNil(t, rec.ResultBookingID)
	assert.Equal(t, view.ID, *rec.ResultBookingID)

	job, ok := h.store.lastJob()
	require.True(t, ok)
	assert.Equal(t, commands.EventBookingCreated, job.Kind)
	assert.Equal(t, commands.NotificationTopic, job.Topic)

	var ev commands.BookingEvent
	require.NoError(t, json.Unmarshal(job.Payload, &ev))
	assert.Equal(t, view.ID, ev.BookingID)
	assert.Equal(t, "2030-03-11", ev.PickupDate)
	assert.Equal(t, "2030-03-14", ev.ReturnDate)
	assert.Equal(t, "pending", ev.To)
	assert.Equal(t, "customer", ev.Actor)
}

func TestRequestBooking_SameDayIsOneNight(t *testing.T) {
	h := newHarness(t, commands.LifecyclePolicy{})

	view := h.book(t, 0, 0)

	assert.Equal(t, int64(4500), view.PriceCents)
}

func TestRequestBooking_Rejected(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(h *harness, in *commands.RequestBookingInput)
		expectedErr error
	}{
		{
			name: "error: pickup date in the past",
			mutate: func(_ *harness, in *commands.RequestBookingInput) {
				in.PickupDate = day(-1)
			},
			expectedErr: booking.ErrInvalidRange,
		},
		{
			name: "error: return date before pickup date",
			mutate: func(_ *harness, in *commands.RequestBookingInput) {
				in.PickupDate, in.ReturnDate = day(5), day(3)
			},
			expectedErr: booking.ErrInvalidRange,
		},
		{
			name: "error: owner books own car",
			mutate: func(h *harness, in *commands.RequestBookingInput) {
				in.CustomerID = h.owner
			},
			expectedErr: booking.ErrSelfBooking,
		},
		{
			name: "error: unknown car",
			mutate: func(_ *harness, in *commands.RequestBookingInput) {
				in.CarID = uuid.New()
			},
			expectedErr: errs.ErrCarNotFound,
		},
		{
			name: "error: owner does not own the car",
			mutate: func(_ *harness, in *commands.RequestBookingInput) {
				other := uuid.New()
				in.OwnerID = &other
			},
			expectedErr: commands.ErrCarOwnerMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, commands.LifecyclePolicy{})
			in := h.input(1, 3)
			tc.mutate(h, &in)
			key := uuid.New()

			res, err := h.commands.RequestBooking(context.Background(), in, key)

			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Nil(t, res)
			assert.Zero(t, h.store.bookingCount())
			assert.Empty(t, h.store.jobKinds())
			_, kept := h.store.key(key, in.CustomerID)
			assert.False(t, kept, "failed requests must release their idempotency key")
		})
	}
}

func TestRequestBooking_MatchingOwnerIsAccepted(t *testing.T) {
	h := newHarness(t, commands.LifecyclePolicy{})
	in := h.input(1, 2)
	in.OwnerID = &h.owner

	res, err := h.commands.RequestBooking(context.Background(), in, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, h.owner, res.Booking.OwnerID)
}

func TestRequestBooking_Overlap(t *testing.T) {
	testCases := []struct {
		name     string
		from, to int
		conflict bool
	}{
		{name: "same range", from: 3, to: 6, conflict: true},
		{name: "inside", from: 4, to: 5, conflict: true},
		{name: "covering", from: 1, to: 9, conflict: true},
		{name: "pickup on existing return date", from: 6, to: 8, conflict: true},
		{name: "return on existing pickup date", from: 1, to: 3, conflict: true},
		{name: "day after return", from: 7, to: 8, conflict: false},
		{name: "day before pickup", from: 1, to: 2, conflict: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, commands.LifecyclePolicy{})
			first := h.book(t, 3, 6)

			in := h.input(tc.from, tc.to)
			in.CustomerID = uuid.New()
			res, err := h.commands.RequestBooking(context.Background(), in, uuid.New())

			if !tc.conflict {
				require.NoError(t, err)
				assert.Equal(t, 2, h.store.bookingCount())
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, booking.ErrConflict)
			assert.Nil(t, res)

			var conflict *availability.ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, []uuid.UUID{first.ID}, conflict.Conflicting)
			assert.Equal(t, 1, h.store.bookingCount())
		})
	}
}

func TestRequestBooking_DatabaseConflict(t *testing.T) {
	h := newHarness(t, commands.LifecyclePolicy{})
	// Load the calendar before another instance writes behind its back.
	require.True(t, h.isFree(t, 1, 4))

	h.store.insertBooking(shared.BookingSnapshot{
		ID:         uuid.New(),
		CarID:      h.car.ID,
		CustomerID: uuid.New(),
		OwnerID:    h.owner,
		PickupDate: day(1),
		ReturnDate: day(4),
		Status:     booking.StatusBooked.String(),
		PriceCents: 13500,
		CreatedAt:  h.clock.Now(),
		UpdatedAt:  h.clock.Now(),
	})
	require.True(t, h.isFree(t, 1, 4), "the calendar is stale until invalidated")

	key := uuid.New()
	res, err := h.commands.RequestBooking(context.Background(), h.input(2, 3), key)

	require.Error(t, err)
	assert.Nil(t, res)
	var conflict *availability.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, h.car.ID, conflict.CarID)
	assert.Equal(t, 1, h.store.bookingCount())

	_, kept := h.store.key(key, h.customer)
	assert.False(t, kept)
	assert.False(t, h.isFree(t, 2, 3), "the calendar must be reloaded after a database conflict")
}

func TestRequestBooking_TransactionFailureReleasesDates(t *testing.T) {
	h := newHarness(t, commands.LifecyclePolicy{})
	h.store.failWithin = errors.New("connection reset by peer")
	key := uuid.New()

	res, err := h.commands.RequestBooking(context.Background(), h.input(1, 3), key)

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errs.Is(err, errs.ErrDatabaseOperationFailed), "got %v", err)
	assert.True(t, h.isFree(t, 1, 3))
	assert.Zero(t, h.store.bookingCount())
	_, kept := h.store.key(key, h.customer)
	assert.False(t, kept)

	// The same key can be retried once the failure is gone.
	res, err = h.commands.RequestBooking(context.Background(), h.input(1, 3), key)
	require.NoError(t, err)
	assert.False(t, res.IsReplayed)
}

func TestRequestBooking_ConcurrentOverlappingRequests(t *testing.T) {
	h := newHarness(t, commands.LifecyclePolicy{})
	const workers = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := h.input(2, 5)
			in.CustomerID = uuid.New()
			_, err := h.commands.RequestBooking(context.Background(), in, uuid.New())

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, booking.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, 1, h.store.bookingCount())
}

// =============================================================================
// Idempotency Tests
// =============================================================================

func TestRequestBooking_Idempotency(t *testing.T) {
	t.Run("success: replay returns the stored booking", func(t *testing.T) {
		h := newHarness(t, commands.LifecyclePolicy{})
		key := uuid.New()

		first, err := h.commands.RequestBooking(context.Background(), h.input(1, 3), key)
		require.NoError(t, err)
		second, err := h.commands.RequestBooking(context.Background(), h.input(1, 3), key)
		require.NoError(t, err)

		assert.True(t, second.IsReplayed)
		assert.Equal(t, first.Booking.ID, second.Booking.ID)
		assert.Equal(t, 1, h.store.bookingCount())
		assert.Equal(t, []string{commands.EventBookingCreated}, h.store.jobKinds())
	})

	t.Run("error: key reused with different dates", func(t *testing.T) {
		h := newHarness(t, commands.LifecyclePolicy{})
		key := uuid.New()

		_, err := h.commands.RequestBooking(context.Background(), h.input(1, 3), key)
		require.NoError(t, err)
		_, err = h.commands.RequestBooking(context.Background(), h.input(1, 4), key)

		assert.ErrorIs(t, err, errs.ErrDuplicateRequest)
		assert.Equal(t, 1, h.store.bookingCount())
	})

	t.Run("success: keys are scoped per user", func(t *testing.T) {
		h := newHarness(t, commands.LifecyclePolicy{})
		key := uuid.New()

		_, err := h.commands.RequestBooking(context.Background(), h.input(1, 3), key)
		require.NoError(t, err)

		in := h.input(5, 6)
		in.CustomerID = uuid.New()
		res, err := h.commands.RequestBooking(context.Background(), in, key)
		require.NoError(t, err)
		assert.False(t, res.IsReplayed)
	})

	t.Run("error: live claim is still in progress", func(t *testing.T) {
		h := newHarness(t, commands.LifecyclePolicy{})
		key := uuid.New()
		_, err := h.commands.RequestBooking(context.Background(), h.input(1, 3), key)
		require.NoError(t, err)

		rec, _ := h.store.key(key, h.customer)
		rec.Status = shared.IdempotencyStatusProcessing
		rec.ResultBookingID = nil
		rec.ExpiresAt = h.clock.Now().Add(time.Minute)
		h.store.setKey(rec)

		_, err = h.commands.RequestBooking(context.Background(), h.input(1, 3), key)
		assert.ErrorIs(t, err, errs.ErrIdempotencyInProgress)
	})

	t.Run("success: expired claim is taken over", func(t *testing.T) {
		h := newHarness(t, commands.LifecyclePolicy{})
		key := uuid.New()
		first, err := h.commands.RequestBooking(context.Background(), h.input(1, 3), key)
		require.NoError(t, err)
		_, err = h.commands.ChangeStatus(context.Background(), commands.ChangeStatusInput{
			BookingID: first.Booking.ID,
			ActorID:   h.customer,
			To:        booking.StatusCancelled,
			Reason:    "plans changed",
		})
		require.NoError(t, err)

		rec, _ := h.store.key(key, h.customer)
		rec.Status = shared.IdempotencyStatusProcessing
		rec.ResultBookingID = nil
		rec.ExpiresAt = h.clock.Now().Add(-time.Minute)
		h.store.setKey(rec)

		res, err := h.commands.RequestBooking(context.Background(), h.input(1, 3), key)
		require.NoError(t, err)
		assert.False(t, res.IsReplayed)
		assert.NotEqual(t, first.Booking.ID, res.Booking.ID)
		assert.Equal(t, 2, h.store.bookingCount())
	})

	t.Run("success: nil key disables replay", func(t *testing.T) {
		h := newHarness(t, commands.LifecyclePolicy{})

		_, err := h.commands.RequestBooking(context.Background(), h.input(1, 3), uuid.Nil)
		require.NoError(t, err)
		_, err = h.commands.RequestBooking(context.Background(), h.input(1, 3), uuid.Nil)

		assert.ErrorIs(t, err, booking.ErrConflict)
	})
}
