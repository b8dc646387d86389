package readstore

import (
	"context"

	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/pgconv"
	"car-rental-booking/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgtype"
)

// Rows stay locked until the caller's transaction ends; concurrent relays skip them.
const claimQueuedNotificationJobs = `
SELECT id, kind, topic, payload, run_at, attempts, status, last_error, created_at, updated_at
FROM notification_jobs
WHERE status = 'queued' AND run_at <= now()
ORDER BY run_at
LIMIT $1
FOR UPDATE SKIP LOCKED`

type NotificationReadStore struct{}

func NewNotificationReadStore() *NotificationReadStore {
	return &NotificationReadStore{}
}

func (s *NotificationReadStore) ClaimQueued(ctx context.Context, tx db.DBTX, limit int) ([]*queries.NotificationJobView, error) {
	rows, err := tx.Query(ctx, claimQueuedNotificationJobs, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get pending notification jobs", err)
	}
	defer rows.Close()

	var result []*queries.NotificationJobView
	for rows.Next() {
		var (
			v                           queries.NotificationJobView
			runAt, createdAt, updatedAt pgtype.Timestamptz
			lastError                   pgtype.Text
		)
		err := rows.Scan(&v.ID, &v.Kind, &v.Topic, &v.Payload, &runAt, &v.Attempts, &v.Status, &lastError, &createdAt, &updatedAt)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		v.RunAt = pgconv.TimeFromPgtype(runAt)
		v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
		v.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
		v.LastError = pgconv.StringPtrFromPgtype(lastError)
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to get pending notification jobs", err)
	}
	return result, nil
}
