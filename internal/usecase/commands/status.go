package commands

import (
	"context"
	"log/slog"

	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/pkg/errs"
	"car-rental-booking/internal/pkg/metrics"
	"car-rental-booking/internal/usecase/queries"
	"car-rental-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// actorResolver decides who is acting on a loaded booking.
type actorResolver func(b *booking.Booking) (booking.Actor, error)

func userActor(userID uuid.UUID) actorResolver {
	return func(b *booking.Booking) (booking.Actor, error) {
		actor, ok := b.ActorFor(userID)
		if !ok {
			// Bookings of other parties are not disclosed.
			return "", errs.ErrBookingNotFound
		}
		return actor, nil
	}
}

func systemActor(*booking.Booking) (booking.Actor, error) {
	return booking.ActorSystem, nil
}

func (uc *bookingCommandsImpl) ChangeStatus(ctx context.Context, in ChangeStatusInput) (*queries.BookingView, error) {
	if !in.To.IsValid() {
		return nil, booking.ErrInvalidStatus
	}
	if err := uc.transition(ctx, in.BookingID, in.To, in.Reason, userActor(in.ActorID)); err != nil {
		return nil, err
	}

	view, err := uc.bookingQueries.GetByIDSystem(ctx, in.BookingID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

// transition applies from -> to under a row lock and, once committed,
// mirrors the availability effect into the index.
func (uc *bookingCommandsImpl) transition(
	ctx context.Context,
	bookingID uuid.UUID,
	to booking.Status,
	reason string,
	resolve actorResolver,
) error {
	var (
		b     *booking.Booking
		from  booking.Status
		actor booking.Actor
		tr    booking.Transition
	)

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().BookingForUpdate(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrBookingNotFound
			}
			return err
		}
		b, err = snap.ToDomain()
		if err != nil {
			return errs.Wrap(err, "invalid booking record")
		}
		from = b.Status()

		actor, err = resolve(b)
		if err != nil {
			return err
		}

		candidate, err := booking.LookupTransition(from, to)
		if err != nil {
			return err
		}
		if !candidate.Permits(actor) {
			return errs.Wrapf(errs.ErrActorNotPermitted, "%s may not move booking %s -> %s", actor, from, to)
		}

		tr, err = b.TransitionTo(to, reason, uc.clock.Now())
		if err != nil {
			return err
		}

		if err := tx.Bookings().UpdateStatus(ctx, tx.DB(), b); err != nil {
			return err
		}
		return uc.enqueueEvent(ctx, tx, newStatusChangedEvent(b, from, actor, uc.clock.Now()))
	})
	if err != nil {
		return uc.transitionFailed(bookingID, from, to, actor, err)
	}

	switch tr.Effect {
	case booking.EffectRelease:
		uc.index.Release(ctx, b.CarID(), b.ID())
	default:
		uc.index.SetStatus(ctx, b.CarID(), b.ID(), b.Status())
	}

	metrics.IncTransition(from.String(), to.String())
	slog.Info("booking status changed",
		slog.String("booking_id", bookingID.String()),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.String("actor", actor.String()),
		slog.String("effect", tr.Effect.String()))
	return nil
}

func (uc *bookingCommandsImpl) transitionFailed(bookingID uuid.UUID, from, to booking.Status, actor booking.Actor, err error) error {
	switch {
	case errs.Is(err, booking.ErrIllegalTransition),
		errs.Is(err, booking.ErrTerminalState),
		errs.Is(err, errs.ErrActorNotPermitted):
		slog.Warn("booking transition rejected",
			slog.String("booking_id", bookingID.String()),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
			slog.String("actor", actor.String()),
			slog.String("error", err.Error()))
		return err
	case errs.Is(err, errs.ErrBookingNotFound),
		errs.Is(err, booking.ErrMissingReason),
		errs.Is(err, booking.ErrReasonTooLong):
		return err
	default:
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
}
