package readstore

import (
	"context"

	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/pgconv"
	"car-rental-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getIdempotencyKey = `
SELECT key, user_id, status, request_hash, result_booking_id, expires_at
FROM idempotency_keys
WHERE key = $1 AND user_id = $2`

type IdempotencyReadStore struct{}

func NewIdempotencyReadStore() *IdempotencyReadStore {
	return &IdempotencyReadStore{}
}

// Get returns the record even when expired; callers decide whether to reclaim it.
func (r *IdempotencyReadStore) Get(ctx context.Context, dbtx db.DBTX, key uuid.UUID, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var (
		record    shared.IdempotencyRecord
		resultID  pgtype.UUID
		expiresAt pgtype.Timestamptz
	)
	err := dbtx.QueryRow(ctx, getIdempotencyKey, key, userID).Scan(
		&record.Key, &record.UserID, &record.Status, &record.RequestHash, &resultID, &expiresAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	record.ResultBookingID = pgconv.UUIDPtrFromPgtype(resultID)
	record.ExpiresAt = pgconv.TimeFromPgtype(expiresAt)
	return &record, nil
}
