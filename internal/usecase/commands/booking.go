package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"car-rental-booking/internal/domain/availability"
	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/clock"
	"car-rental-booking/internal/pkg/errs"
	"car-rental-booking/internal/pkg/metrics"
	"car-rental-booking/internal/usecase/queries"
	"car-rental-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrCarOwnerMismatch = errs.New("car is not owned by the given owner")

const (
	createBookingEndpoint = "POST /api/bookings/create"
	idempotencyTTL        = 24 * time.Hour
)

// AvailabilityIndex is the part of availability.Index the commands drive.
type AvailabilityIndex interface {
	Reserve(ctx context.Context, carID, bookingID uuid.UUID, r booking.DateRange) error
	Commit(ctx context.Context, carID, bookingID uuid.UUID)
	Release(ctx context.Context, carID, bookingID uuid.UUID)
	SetStatus(ctx context.Context, carID, bookingID uuid.UUID, status booking.Status)
	Invalidate(carID uuid.UUID)
}

type RequestBookingInput struct {
	CarID      uuid.UUID
	CustomerID uuid.UUID
	// OwnerID, when set, must match the car's owner.
	OwnerID    *uuid.UUID
	PickupDate time.Time
	ReturnDate time.Time
}

type RequestBookingResult struct {
	Booking    *queries.BookingView
	IsReplayed bool
}

type ChangeStatusInput struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
	To        booking.Status
	Reason    string
}

type BookingCommands interface {
	// RequestBooking validates the range, reserves it and persists a pending
	// booking. A uuid.Nil idempotency key disables replay protection.
	RequestBooking(ctx context.Context, in RequestBookingInput, idempotencyKey uuid.UUID) (*RequestBookingResult, error)
	ChangeStatus(ctx context.Context, in ChangeStatusInput) (*queries.BookingView, error)
	SweepLifecycle(ctx context.Context) (*SweepResult, error)
}

type bookingCommandsImpl struct {
	uow            shared.UnitOfWork
	index          AvailabilityIndex
	factory        *booking.Factory
	bookingQueries queries.BookingQueries
	clock          clock.Clock
	lifecycle      LifecyclePolicy
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	index AvailabilityIndex,
	factory *booking.Factory,
	bookingQueries queries.BookingQueries,
	clk clock.Clock,
	lifecycle LifecyclePolicy,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:            uow,
		index:          index,
		factory:        factory,
		bookingQueries: bookingQueries,
		clock:          clk,
		lifecycle:      lifecycle,
	}
}

func (uc *bookingCommandsImpl) RequestBooking(ctx context.Context, in RequestBookingInput, idempotencyKey uuid.UUID) (*RequestBookingResult, error) {
	rng, err := uc.factory.NewRange(in.PickupDate, in.ReturnDate)
	if err != nil {
		metrics.IncBookingRequest(metrics.ResultInvalid)
		return nil, err
	}

	if idempotencyKey != uuid.Nil {
		replayed, err := uc.claimIdempotencyKey(ctx, idempotencyKey, in, rng)
		if err != nil {
			return nil, err
		}
		if replayed != nil {
			metrics.IncBookingRequest(metrics.ResultReplayed)
			return &RequestBookingResult{Booking: replayed, IsReplayed: true}, nil
		}
	}

	view, err := uc.createBooking(ctx, in, rng, idempotencyKey)
	if err != nil {
		if idempotencyKey != uuid.Nil {
			uc.releaseIdempotencyKey(ctx, idempotencyKey, in.CustomerID)
		}
		metrics.IncBookingRequest(resultFor(err))
		return nil, err
	}

	metrics.IncBookingRequest(metrics.ResultCreated)
	return &RequestBookingResult{Booking: view}, nil
}

func (uc *bookingCommandsImpl) createBooking(
	ctx context.Context,
	in RequestBookingInput,
	rng booking.DateRange,
	idempotencyKey uuid.UUID,
) (*queries.BookingView, error) {
	carSnap, err := uc.uow.CommandReads().CarByID(ctx, in.CarID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrCarNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if in.OwnerID != nil && *in.OwnerID != carSnap.OwnerID {
		return nil, ErrCarOwnerMismatch
	}

	carEntity, err := carSnap.ToDomain()
	if err != nil {
		return nil, errs.Wrap(err, "invalid car record")
	}

	b, err := uc.factory.CreateBooking(carEntity, in.CustomerID, rng)
	if err != nil {
		return nil, err
	}

	if err := uc.index.Reserve(ctx, b.CarID(), b.ID(), rng); err != nil {
		if errs.Is(err, booking.ErrConflict) {
			metrics.IncConflict(metrics.SourceIndex)
			slog.Info("booking rejected by availability index",
				slog.String("car_id", b.CarID().String()),
				slog.String("range", rng.String()))
		}
		return nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Bookings().Create(ctx, tx.DB(), b); err != nil {
			return err
		}
		if err := uc.enqueueEvent(ctx, tx, newCreatedEvent(b, uc.clock.Now())); err != nil {
			return err
		}
		if idempotencyKey == uuid.Nil {
			return nil
		}
		return tx.Idempotency().UpdateStatusCompleted(ctx, tx.DB(), idempotencyKey, in.CustomerID, hashID(b.ID()), b.ID())
	})
	if err != nil {
		uc.index.Release(ctx, b.CarID(), b.ID())
		if infra.IsKind(err, infra.KindConflict) {
			// Another instance holds the dates; rebuild this calendar from the database.
			uc.index.Invalidate(b.CarID())
			metrics.IncConflict(metrics.SourceDatabase)
			return nil, &availability.ConflictError{CarID: b.CarID(), Range: rng}
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	uc.index.Commit(ctx, b.CarID(), b.ID())

	slog.Info("booking requested",
		slog.String("booking_id", b.ID().String()),
		slog.String("car_id", b.CarID().String()),
		slog.String("range", rng.String()),
		slog.Int64("price_cents", b.Price().Cents()))

	view, err := uc.bookingQueries.GetByIDSystem(ctx, b.ID())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}

// claimIdempotencyKey returns the stored booking when the request is a replay.
func (uc *bookingCommandsImpl) claimIdempotencyKey(
	ctx context.Context,
	key uuid.UUID,
	in RequestBookingInput,
	rng booking.DateRange,
) (*queries.BookingView, error) {
	requestHash := requestHash(in, rng)
	expiresAt := uc.clock.Now().Add(idempotencyTTL)

	var inserted bool
	err := uc.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		var err error
		inserted, err = uc.idempotency().TryInsert(ctx, dbtx, key, in.CustomerID, createBookingEndpoint, requestHash, expiresAt)
		return err
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
	}
	if inserted {
		return nil, nil
	}

	existing, err := uc.uow.CommandReads().IdempotencyByKey(ctx, key, in.CustomerID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
	}
	if existing.RequestHash != requestHash {
		return nil, errs.ErrDuplicateRequest
	}

	switch existing.Status {
	case shared.IdempotencyStatusCompleted:
		if existing.ResultBookingID == nil {
			return nil, errs.Mark(errs.New("completed request missing result booking ID"), errs.ErrIdempotencyCheckFailed)
		}
		return uc.bookingQueries.GetByIDSystem(ctx, *existing.ResultBookingID)

	case shared.IdempotencyStatusProcessing:
		if uc.clock.Now().Before(existing.ExpiresAt) {
			return nil, errs.ErrIdempotencyInProgress
		}
		var claimed bool
		err := uc.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
			var err error
			claimed, err = uc.idempotency().ClaimExpired(ctx, dbtx, key, in.CustomerID, requestHash, expiresAt)
			return err
		})
		if err != nil {
			return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
		}
		if !claimed {
			return nil, errs.ErrIdempotencyInProgress
		}
		return nil, nil

	default:
		return nil, errs.Mark(errs.Newf("invalid idempotency key status %q", existing.Status), errs.ErrIdempotencyCheckFailed)
	}
}

// releaseIdempotencyKey frees a claim whose request failed so the client can retry.
func (uc *bookingCommandsImpl) releaseIdempotencyKey(ctx context.Context, key, userID uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	err := uc.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		return uc.idempotency().Delete(ctx, dbtx, key, userID)
	})
	if err != nil {
		slog.Warn("failed to release idempotency key",
			slog.String("key", key.String()),
			slog.String("error", err.Error()))
	}
}

func (uc *bookingCommandsImpl) idempotency() shared.IdempotencyRepository {
	return uc.uow.Idempotency()
}

func requestHash(in RequestBookingInput, rng booking.DateRange) string {
	h := sha256.New()
	h.Write([]byte(in.CarID.String()))
	h.Write([]byte(rng.String()))
	if in.OwnerID != nil {
		h.Write([]byte(in.OwnerID.String()))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func hashID(id uuid.UUID) string {
	hash := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(hash[:])
}

func resultFor(err error) string {
	switch {
	case errs.Is(err, booking.ErrConflict):
		return metrics.ResultConflict
	case errs.Is(err, booking.ErrInvalidRange),
		errs.Is(err, booking.ErrSelfBooking),
		errs.Is(err, errs.ErrCarNotFound),
		errs.Is(err, ErrCarOwnerMismatch):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
