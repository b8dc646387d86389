package shared

import (
	"context"
	"time"

	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single statements outside a transaction (idempotency claims)
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
	// Idempotency: key claims run on the pool so concurrent duplicates see them
	Idempotency() IdempotencyRepository
}

type Tx interface {
	Bookings() BookingRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	CarByID(ctx context.Context, id uuid.UUID) (*CarSnapshot, error)
	BookingByID(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
	// BookingForUpdate locks the row until the surrounding transaction ends.
	BookingForUpdate(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	PendingStale(ctx context.Context, createdBefore, pickupBefore time.Time, limit int) ([]BookingSnapshot, error)
	BookedDueForPickup(ctx context.Context, today time.Time, limit int) ([]BookingSnapshot, error)
}

type BookingRepository interface {
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	UpdateStatus(ctx context.Context, tx db.DBTX, b *booking.Booking) error
}

type IdempotencyRepository interface {
	// TryInsert claims key for userID; false means the key already exists.
	TryInsert(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, responseHash string, bookingID uuid.UUID) error
	// ClaimExpired takes over an expired key; false means it is still live.
	ClaimExpired(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (bool, error)
	Delete(ctx context.Context, tx db.DBTX, key, userID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}
