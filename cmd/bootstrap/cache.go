package bootstrap

import (
	"context"
	"log/slog"

	"car-rental-booking/internal/domain/availability"
	"car-rental-booking/internal/infra/cache"
	"car-rental-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var CacheModule = fx.Module("cache",
	fx.Provide(
		NewCalendarVersioner,
	),
)

// NewCalendarVersioner shares calendar versions through Redis when it is
// configured. A single instance runs without it.
func NewCalendarVersioner(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) availability.Versioner {
	if !cfg.Redis.Enabled() {
		logger.Info("redis not configured, calendar versions stay local")
		return availability.NopVersioner{}
	}

	client := cache.NewRedisClient(cfg.Redis)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := cache.Ping(ctx, client); err != nil {
				// The exclusion constraint still rejects overlaps; stale calendars only cost a retry.
				logger.Warn("redis unreachable at startup", "addr", cfg.Redis.Addr, "error", err.Error())
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return cache.NewCalendarVersioner(client)
}
