package api

import (
	"net/http"

	"car-rental-booking/internal/domain/availability"
	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/handler/httperr"
	"car-rental-booking/internal/pkg/errs"
	"car-rental-booking/internal/usecase/commands"
	"car-rental-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidBookingID      = errs.New("invalid booking ID format")
	errInvalidCarID          = errs.New("invalid car ID format")
	errInvalidIdempotencyKey = errs.New("invalid idempotency key format")
	errMissingUser           = errs.New("user id missing from context")
)

// abortWithUseCaseError maps use case errors onto HTTP statuses.
func abortWithUseCaseError(c *gin.Context, err error) {
	var conflict *availability.ConflictError
	var rangeErr *booking.RangeError
	var transitionErr *booking.TransitionError

	switch {
	case errs.As(err, &rangeErr):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date range", gin.H{"reason": rangeErr.Reason})
	case errs.Is(err, booking.ErrInvalidRange):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date range", nil)
	case errs.Is(err, booking.ErrInvalidStatus):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking status", nil)
	case errs.Is(err, booking.ErrMissingReason):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Cancellation reason is required", nil)
	case errs.Is(err, booking.ErrReasonTooLong):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Cancellation reason is too long", nil)
	case errs.Is(err, queries.ErrInvalidCursor):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)

	case errs.Is(err, errs.ErrActorNotPermitted):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Not allowed to perform this status change", nil)

	case errs.Is(err, errs.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	case errs.Is(err, errs.ErrCarNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Car not found", nil)

	case errs.As(err, &conflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Car is not available for the selected dates", gin.H{
			"carId":      conflict.CarID,
			"pickupDate": conflict.Range.Start().Format(booking.DateLayout),
			"returnDate": conflict.Range.End().Format(booking.DateLayout),
		})
	case errs.Is(err, booking.ErrConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Car is not available for the selected dates", nil)
	case errs.Is(err, errs.ErrDuplicateRequest):
		httperr.AbortWithError(c, http.StatusConflict, err, "Duplicate booking request with different parameters", nil)
	case errs.Is(err, errs.ErrIdempotencyInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking request is currently being processed", nil)

	case errs.As(err, &transitionErr):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Status change not allowed", gin.H{
			"from": transitionErr.From.String(),
			"to":   transitionErr.To.String(),
		})
	case errs.Is(err, booking.ErrSelfBooking):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Owners cannot book their own car", nil)
	case errs.Is(err, commands.ErrCarOwnerMismatch):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Car is not owned by the given owner", nil)

	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
