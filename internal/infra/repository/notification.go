package repository

import (
	"context"
	"time"

	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	NotificationStatusQueued = "queued"
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

const (
	createNotificationJob = `
INSERT INTO notification_jobs (kind, topic, payload, run_at, status)
VALUES ($1, $2, $3, $4, $5)`

	markNotificationJobSent = `
UPDATE notification_jobs
SET status = 'sent', attempts = attempts + 1, last_error = NULL, updated_at = now()
WHERE id = $1`

	// Retries back off linearly; the job fails for good after $3 attempts.
	markNotificationJobFailed = `
UPDATE notification_jobs
SET attempts = attempts + 1,
    last_error = $2,
    status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE 'queued' END,
    run_at = now() + make_interval(secs => (attempts + 1) * 30),
    updated_at = now()
WHERE id = $1`
)

type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := tx.Exec(ctx, createNotificationJob, kind, topic, payload, pgconv.TimeToPgtype(runAt), NotificationStatusQueued)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, tx db.DBTX, jobID uuid.UUID) error {
	if _, err := tx.Exec(ctx, markNotificationJobSent, jobID); err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}
	return nil
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, tx db.DBTX, jobID uuid.UUID, lastError string, maxAttempts int32) error {
	_, err := tx.Exec(ctx, markNotificationJobFailed, jobID, pgtype.Text{String: lastError, Valid: true}, maxAttempts)
	if err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}
	return nil
}
