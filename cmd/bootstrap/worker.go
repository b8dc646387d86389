package bootstrap

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"car-rental-booking/internal/infra/events"
	"car-rental-booking/internal/infra/readstore"
	"car-rental-booking/internal/infra/repository"
	"car-rental-booking/internal/pkg/config"
	"car-rental-booking/internal/usecase/commands"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Invoke(
		startOutboxRelay,
		startLifecycleSweeper,
	),
)

// runInBackground ties a loop to the fx lifecycle: it starts with the app
// and is cancelled and awaited on stop.
func runInBackground(lc fx.Lifecycle, run func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func startOutboxRelay(lc fx.Lifecycle, cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) {
	if !cfg.Kafka.Enabled() {
		logger.Info("kafka not configured, notification jobs stay queued")
		return
	}

	writer := events.NewKafkaWriter(cfg.Kafka)
	relay := events.NewRelay(
		pool,
		readstore.NewNotificationReadStore(),
		repository.NewNotificationRepository(),
		writer,
		cfg.Kafka,
	)

	runInBackground(lc, relay.Run)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return writer.Close()
		},
	})
}

func startLifecycleSweeper(lc fx.Lifecycle, cfg config.Config, bookingCommands commands.BookingCommands, logger *slog.Logger) {
	if !cfg.Booking.SweepEnabled() {
		return
	}

	runInBackground(lc, func(ctx context.Context) {
		ticker := time.NewTicker(cfg.Booking.SweepInterval)
		defer ticker.Stop()

		logger.Info("lifecycle sweeper started",
			"interval", cfg.Booking.SweepInterval.String(),
			"pending_ttl", cfg.Booking.PendingTTL.String(),
			"auto_pickup", cfg.Booking.AutoPickup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				result, err := bookingCommands.SweepLifecycle(ctx)
				if err != nil {
					logger.Error("lifecycle sweep failed", "error", err.Error())
					continue
				}
				if result.Expired+result.PickedUp+result.Failed > 0 {
					logger.Info("lifecycle sweep finished",
						"expired", result.Expired,
						"picked_up", result.PickedUp,
						"skipped", result.Skipped,
						"failed", result.Failed)
				}
			}
		}
	})
}
