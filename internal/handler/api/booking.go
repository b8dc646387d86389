package api

import (
	"context"
	"net/http"

	"car-rental-booking/internal/domain/booking"
	reqdto "car-rental-booking/internal/handler/dto/request"
	resdto "car-rental-booking/internal/handler/dto/response"
	"car-rental-booking/internal/handler/httperr"
	"car-rental-booking/internal/handler/middleware"
	"car-rental-booking/internal/pkg/errs"
	"car-rental-booking/internal/usecase/commands"
	"car-rental-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const idempotencyKeyHeader = "Idempotency-Key"

type BookingHandler struct {
	commands commands.BookingCommands
	queries  queries.BookingQueries
}

func NewBookingHandler(bookingCommands commands.BookingCommands, bookingQueries queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		commands: bookingCommands,
		queries:  bookingQueries,
	}
}

// @Summary Create booking
// @Description Request a car for a date range. The booking starts as pending until the owner accepts it.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.BookingResponse
// @Success 200 {object} resdto.BookingResponse "Replayed request"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings/create [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingUser, "Internal server error", nil)
		return
	}

	idempotencyKey, err := getIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	pickup, ret, err := req.Dates()
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	result, err := h.commands.RequestBooking(c.Request.Context(), commands.RequestBookingInput{
		CarID:      req.CarID,
		CustomerID: userID,
		OwnerID:    req.OwnerID,
		PickupDate: pickup,
		ReturnDate: ret,
	}, idempotencyKey)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromBookingView(result.Booking))
}

// @Summary Change booking status
// @Description Move a booking along its lifecycle. Cancellation requires a reason.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ChangeStatusRequest true "Status change"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings/change-status [post]
func (h *BookingHandler) ChangeStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingUser, "Internal server error", nil)
		return
	}

	var req reqdto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	to, err := req.TargetStatus()
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	view, err := h.commands.ChangeStatus(c.Request.Context(), commands.ChangeStatusInput{
		BookingID: req.BookingID,
		ActorID:   userID,
		To:        to,
		Reason:    req.CancellationReason,
	})
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Get booking
// @Description Get a booking the caller is a party to
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingUser, "Internal server error", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidBookingID, "Invalid booking ID format", nil)
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List transitions
// @Description Status changes the caller may trigger on the booking right now
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {array} resdto.TransitionResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id}/transitions [get]
func (h *BookingHandler) GetTransitions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingUser, "Internal server error", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidBookingID, "Invalid booking ID format", nil)
		return
	}

	views, err := h.queries.AllowedTransitions(c.Request.Context(), userID, id)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTransitionViews(views))
}

// @Summary List my bookings
// @Description Bookings the caller made as a customer, newest first
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param after query string false "Cursor from a previous page"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	h.list(c, h.queries.ListByCustomer)
}

// @Summary List bookings of my cars
// @Description Bookings made on cars the caller owns, newest first
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param after query string false "Cursor from a previous page"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /owner/bookings [get]
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	h.list(c, h.queries.ListByOwner)
}

type listFunc func(ctx context.Context, userID uuid.UUID, status *booking.Status, after *queries.Cursor, limit int) ([]*queries.BookingView, *queries.Cursor, error)

func (h *BookingHandler) list(c *gin.Context, fetch listFunc) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingUser, "Internal server error", nil)
		return
	}

	var q reqdto.ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	status, err := q.StatusFilter()
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	var after *queries.Cursor
	if q.After != "" {
		after = &queries.Cursor{After: q.After}
	}

	views, next, err := fetch(c.Request.Context(), userID, status, after, q.Limit)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingViews(views, next))
}

func getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(idempotencyKeyHeader)
	if raw == "" {
		return uuid.Nil, errs.ErrIdempotencyKeyRequired
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidIdempotencyKey
	}
	return key, nil
}
