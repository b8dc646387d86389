package commands

import (
	"context"
	"log/slog"
	"time"

	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/pkg/errs"
	"car-rental-booking/internal/pkg/metrics"
	"car-rental-booking/internal/usecase/shared"
)

const (
	ReasonPendingExpired = "request expired without owner confirmation"
	sweepBatchSize       = 100
)

// LifecyclePolicy configures the automatic transitions run by the sweeper.
// A zero PendingTTL keeps pending bookings until a party acts on them.
type LifecyclePolicy struct {
	PendingTTL time.Duration
	AutoPickup bool
}

type SweepResult struct {
	Expired  int
	PickedUp int
	Skipped  int
	Failed   int
}

// SweepLifecycle runs the system-actor transitions: expiring stale pending
// requests and starting rentals whose pickup date has arrived.
func (uc *bookingCommandsImpl) SweepLifecycle(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	today := uc.factory.Today()
	reads := uc.uow.CommandReads()

	if uc.lifecycle.PendingTTL > 0 {
		createdBefore := uc.clock.Now().Add(-uc.lifecycle.PendingTTL)
		stale, err := reads.PendingStale(ctx, createdBefore, today, sweepBatchSize)
		if err != nil {
			return result, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		uc.sweep(ctx, stale, booking.StatusCancelled, ReasonPendingExpired, &result.Expired, result)
	}

	if uc.lifecycle.AutoPickup {
		due, err := reads.BookedDueForPickup(ctx, today, sweepBatchSize)
		if err != nil {
			return result, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		uc.sweep(ctx, due, booking.StatusOnRent, "", &result.PickedUp, result)
	}

	return result, nil
}

func (uc *bookingCommandsImpl) sweep(
	ctx context.Context,
	snaps []shared.BookingSnapshot,
	to booking.Status,
	reason string,
	done *int,
	result *SweepResult,
) {
	for _, s := range snaps {
		if ctx.Err() != nil {
			return
		}
		err := uc.transition(ctx, s.ID, to, reason, systemActor)
		switch {
		case err == nil:
			*done++
		case errs.Is(err, booking.ErrIllegalTransition), errs.Is(err, booking.ErrTerminalState):
			// A party moved the booking after it was selected.
			result.Skipped++
		default:
			result.Failed++
			slog.Error("lifecycle transition failed",
				slog.String("booking_id", s.ID.String()),
				slog.String("to", to.String()),
				slog.String("error", err.Error()))
		}
	}
	metrics.IncSweep(to.String(), *done)
}
