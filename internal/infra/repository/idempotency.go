package repository

import (
	"context"
	"time"

	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	tryInsertIdempotencyKey = `
INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)
ON CONFLICT (key, user_id) DO NOTHING`

	updateIdempotencyKeyCompleted = `
UPDATE idempotency_keys
SET status = 'completed', response_body_hash = $3, result_booking_id = $4, updated_at = now()
WHERE key = $1 AND user_id = $2`

	claimExpiredIdempotencyKey = `
UPDATE idempotency_keys
SET status = 'processing', request_hash = $3, expires_at = $4,
    response_body_hash = NULL, result_booking_id = NULL, updated_at = now()
WHERE key = $1 AND user_id = $2 AND expires_at < now()`

	deleteIdempotencyKey = `
DELETE FROM idempotency_keys
WHERE key = $1 AND user_id = $2 AND status = 'processing'`

	deleteExpiredIdempotencyKeys = `
DELETE FROM idempotency_keys
WHERE expires_at < now()`
)

type IdempotencyRepository struct{}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, tx db.DBTX, key uuid.UUID, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, tryInsertIdempotencyKey, key, userID, endpoint, requestHash, pgconv.TimeToPgtype(expiresAt))
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key uuid.UUID, userID uuid.UUID, responseBodyHash string, bookingID uuid.UUID) error {
	_, err := tx.Exec(ctx, updateIdempotencyKeyCompleted, key, userID, responseBodyHash, pgconv.UUIDToPgtype(bookingID))
	if err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	return nil
}

func (r *IdempotencyRepository) ClaimExpired(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, claimExpiredIdempotencyKey, key, userID, requestHash, pgconv.TimeToPgtype(expiresAt))
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim expired idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Delete(ctx context.Context, tx db.DBTX, key, userID uuid.UUID) error {
	if _, err := tx.Exec(ctx, deleteIdempotencyKey, key, userID); err != nil {
		return infra.WrapRepoErr("failed to delete idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, tx db.DBTX) (int64, error) {
	tag, err := tx.Exec(ctx, deleteExpiredIdempotencyKeys)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
