package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/config"
	"car-rental-booking/internal/pkg/errs"
	"car-rental-booking/internal/pkg/metrics"
	"car-rental-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type JobStore interface {
	ClaimQueued(ctx context.Context, tx db.DBTX, limit int) ([]*queries.NotificationJobView, error)
}

type JobRepository interface {
	MarkSent(ctx context.Context, tx db.DBTX, jobID uuid.UUID) error
	MarkFailed(ctx context.Context, tx db.DBTX, jobID uuid.UUID, lastError string, maxAttempts int32) error
}

func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// Relay publishes queued notification jobs to Kafka. Jobs are claimed with
// FOR UPDATE SKIP LOCKED, so several instances can relay concurrently.
type Relay struct {
	db     TxBeginner
	store  JobStore
	repo   JobRepository
	writer MessageWriter
	cfg    config.KafkaConfig
}

func NewRelay(db TxBeginner, store JobStore, repo JobRepository, writer MessageWriter, cfg config.KafkaConfig) *Relay {
	return &Relay{db: db, store: store, repo: repo, writer: writer, cfg: cfg}
}

// Run relays until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.RelayInterval)
	defer ticker.Stop()

	slog.Info("outbox relay started", "topic", r.cfg.Topic, "interval", r.cfg.RelayInterval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("outbox relay batch failed", "error", err.Error())
			}
		}
	}
}

// RunOnce relays one batch and returns the number of jobs published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback relay transaction", "error", rollbackErr.Error())
		}
	}()

	jobs, err := r.store.ClaimQueued(ctx, tx, r.cfg.RelayBatch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, job := range jobs {
		if err := r.writer.WriteMessages(ctx, ToMessage(job)); err != nil {
			metrics.IncOutbox("failed")
			slog.Warn("failed to publish notification job",
				"job_id", job.ID.String(),
				"kind", job.Kind,
				"attempts", job.Attempts+1,
				"error", err.Error())
			if markErr := r.repo.MarkFailed(ctx, tx, job.ID, err.Error(), r.cfg.MaxAttempts); markErr != nil {
				return sent, markErr
			}
			continue
		}
		if err := r.repo.MarkSent(ctx, tx, job.ID); err != nil {
			return sent, err
		}
		metrics.IncOutbox("sent")
		sent++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return sent, nil
}

// ToMessage keys the message by booking so one booking's events stay ordered.
func ToMessage(job *queries.NotificationJobView) kafka.Message {
	key := job.ID.String()
	var ref struct {
		BookingID string `json:"booking_id"`
	}
	if err := json.Unmarshal(job.Payload, &ref); err == nil && ref.BookingID != "" {
		key = ref.BookingID
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: job.Payload,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(job.Kind)},
			{Key: "topic", Value: []byte(job.Topic)},
			{Key: "job_id", Value: []byte(job.ID.String())},
		},
		Time: job.RunAt,
	}
}
