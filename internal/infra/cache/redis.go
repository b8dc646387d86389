package cache

import (
	"context"
	"time"

	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/pkg/config"
	"car-rental-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return errs.Wrap(err, "failed to ping Redis")
	}
	return nil
}

const calendarVersionPrefix = "car-rental:calendar-version:"

// CalendarVersioner keeps one counter per car in Redis. Every instance
// bumps it after changing a car's bookings and compares it before serving
// from its in-memory calendar.
type CalendarVersioner struct {
	client redis.Cmdable
}

func NewCalendarVersioner(client redis.Cmdable) *CalendarVersioner {
	return &CalendarVersioner{client: client}
}

func calendarKey(carID uuid.UUID) string {
	return calendarVersionPrefix + carID.String()
}

func (v *CalendarVersioner) Current(ctx context.Context, carID uuid.UUID) (int64, error) {
	n, err := v.client.Get(ctx, calendarKey(carID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, infra.WrapRepoErr("failed to read calendar version", err, infra.KindCacheFailure)
	}
	return n, nil
}

func (v *CalendarVersioner) Bump(ctx context.Context, carID uuid.UUID) (int64, error) {
	n, err := v.client.Incr(ctx, calendarKey(carID)).Result()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to bump calendar version", err, infra.KindCacheFailure)
	}
	return n, nil
}
