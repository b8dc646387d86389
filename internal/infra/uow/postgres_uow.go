package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/infra/readstore"
	"car-rental-booking/internal/infra/repository"
	"car-rental-booking/internal/pkg/errs"
	"car-rental-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

// PostgresUoW hands out per-transaction repositories. The repositories
// and read stores are stateless, so one instance of each is shared.
type PostgresUoW struct {
	pool          *pgxpool.Pool
	maxRetries    int
	bookings      *repository.BookingRepository
	idempotency   *repository.IdempotencyRepository
	notifications *repository.NotificationRepository
	cars          *readstore.CarReadStore
	snapshots     *readstore.BookingSnapshotReadStore
	idemStore     *readstore.IdempotencyReadStore
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{
		pool:          pool,
		maxRetries:    3,
		bookings:      repository.NewBookingRepository(),
		idempotency:   repository.NewIdempotencyRepository(),
		notifications: repository.NewNotificationRepository(),
		cars:          readstore.NewCarReadStore(pool),
		snapshots:     readstore.NewBookingSnapshotReadStore(),
		idemStore:     readstore.NewIdempotencyReadStore(),
	}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, u.pool)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{uow: u, dbtx: u.pool}
}

func (u *PostgresUoW) Idempotency() shared.IdempotencyRepository {
	return u.idempotency
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	maxRetries := u.maxRetries
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{
			dbtx: pgxTx,
			uow:  u,
		}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries && isRetryableError(err) {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fallback to a simple calculation if crypto/rand fails
		return 0
	}
	// Safe conversion: mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX
	uow  *PostgresUoW

	commandReads shared.CommandReads
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Bookings() shared.BookingRepository {
	return t.uow.bookings
}

func (t *pgTx) Idempotency() shared.IdempotencyRepository {
	return t.uow.idempotency
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	return t.uow.notifications
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{
			uow:  t.uow,
			dbtx: t.dbtx,
		}
	}
	return t.commandReads
}

type commandReads struct {
	uow  *PostgresUoW
	dbtx db.DBTX
}

func (r *commandReads) CarByID(ctx context.Context, id uuid.UUID) (*shared.CarSnapshot, error) {
	car, err := r.uow.cars.FindByIDWith(ctx, r.dbtx, id)
	if err != nil {
		return nil, err
	}

	snapshot := &shared.CarSnapshot{
		ID:               car.ID,
		OwnerID:          car.OwnerID,
		Name:             car.Name,
		PricePerDayCents: car.PricePerDayCents,
	}
	return snapshot, nil
}

func (r *commandReads) BookingByID(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	return r.uow.snapshots.FindByID(ctx, r.dbtx, id, false)
}

func (r *commandReads) BookingForUpdate(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	return r.uow.snapshots.FindByID(ctx, r.dbtx, id, true)
}

func (r *commandReads) IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	return r.uow.idemStore.Get(ctx, r.dbtx, key, userID)
}

func (r *commandReads) PendingStale(ctx context.Context, createdBefore, pickupBefore time.Time, limit int) ([]shared.BookingSnapshot, error) {
	return r.uow.snapshots.PendingStale(ctx, r.dbtx, createdBefore, pickupBefore, limit)
}

func (r *commandReads) BookedDueForPickup(ctx context.Context, today time.Time, limit int) ([]shared.BookingSnapshot, error) {
	return r.uow.snapshots.BookedDueForPickup(ctx, r.dbtx, today, limit)
}
