//go:build unit

package api_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"car-rental-booking/internal/domain/availability"
	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/handler/api"
	resdto "car-rental-booking/internal/handler/dto/response"
	"car-rental-booking/internal/pkg/errs"
	"car-rental-booking/internal/usecase/commands"
	"car-rental-booking/internal/usecase/queries"
	"car-rental-booking/tests/common/builder"
	"car-rental-booking/tests/common/httptest"
	"car-rental-booking/tests/common/testutil"
	commandsmock "car-rental-booking/tests/mock/commands"
	queriesmock "car-rental-booking/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	handler      *api.BookingHandler
	userID       uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockQueries)
	s.userID = uuid.New()

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.userID)
		c.Next()
	}

	s.router.POST("/bookings/create", authMiddleware, s.handler.CreateBooking)
	s.router.POST("/bookings/change-status", authMiddleware, s.handler.ChangeStatus)
	s.router.GET("/bookings", authMiddleware, s.handler.ListMyBookings)
	s.router.GET("/bookings/:id", authMiddleware, s.handler.GetBooking)
	s.router.GET("/bookings/:id/transitions", authMiddleware, s.handler.GetTransitions)
	s.router.GET("/owner/bookings", authMiddleware, s.handler.ListOwnerBookings)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (s *BookingHandlerTestSuite) keyHeader() map[string]string {
	return map[string]string{"Idempotency-Key": uuid.NewString()}
}

// ================================================================================
// TestCreateBooking
// ================================================================================

func (s *BookingHandlerTestSuite) TestCreateBooking() {
	url := "/bookings/create"
	b := builder.NewBookingBuilder()
	reqBody := b.BuildCreateRequestDTO()
	view := b.BuildView()

	s.Run("success: returns 201 Created with the pending booking", func() {
		key := uuid.New()
		s.mockCommands.EXPECT().RequestBooking(gomock.Any(), gomock.Any(), key).
			DoAndReturn(func(_ context.Context, in commands.RequestBookingInput, _ uuid.UUID) (*commands.RequestBookingResult, error) {
				s.Equal(s.userID, in.CustomerID)
				s.Equal(b.CarID, in.CarID)
				s.Equal(b.PickupDate, in.PickupDate)
				s.Equal(b.ReturnDate, in.ReturnDate)
				s.Nil(in.OwnerID)
				return &commands.RequestBookingResult{Booking: view}, nil
			})

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token",
			map[string]string{"Idempotency-Key": key.String()})

		var body resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(view.ID, body.ID)
		s.Equal("2030-03-15", body.PickupDate)
		s.Equal("2030-03-18", body.ReturnDate)
		s.Equal(3, body.Nights)
		s.Equal("pending", body.Status)
		s.Equal("Awaiting owner approval", body.StatusLabel)
		s.Equal(int64(13500), body.PriceCents)
	})

	s.Run("success: replayed request returns 200 OK", func() {
		s.mockCommands.EXPECT().RequestBooking(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&commands.RequestBookingResult{Booking: view, IsReplayed: true}, nil)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token", s.keyHeader())

		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("success: owner id is forwarded when given", func() {
		owner := uuid.New()
		s.mockCommands.EXPECT().RequestBooking(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in commands.RequestBookingInput, _ uuid.UUID) (*commands.RequestBookingResult, error) {
				s.Require().NotNil(in.OwnerID)
				s.Equal(owner, *in.OwnerID)
				return &commands.RequestBookingResult{Booking: view}, nil
			})

		requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field("ownerId", owner.String()))
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token", s.keyHeader())

		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, nil)
	})

	s.Run("error: 401 Unauthorized without token", func() {
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "", s.keyHeader())

		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: 400 Bad Request on idempotency key problems", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "idempotency key required")

		rec = httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token",
			map[string]string{"Idempotency-Key": "not-a-uuid"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "invalid idempotency key format")
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		testCases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "missing field: carId (required)", mutate: testutil.Field("carId", nil)},
			{name: "missing field: pickupDate (required)", mutate: testutil.Field("pickupDate", nil)},
			{name: "missing field: returnDate (required)", mutate: testutil.Field("returnDate", nil)},
			{name: "malformed pickupDate", mutate: testutil.Field("pickupDate", "15/03/2030")},
			{name: "malformed returnDate", mutate: testutil.Field("returnDate", "2030-02-30")},
			{name: "malformed carId", mutate: testutil.Field("carId", "car-1")},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token", s.keyHeader())
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: use case errors map to HTTP statuses", func() {
		testCases := []struct {
			name       string
			err        error
			expectCode int
			expectMsg  string
		}{
			{
				name:       "past dates",
				err:        &booking.RangeError{Reason: "pickup date is in the past"},
				expectCode: http.StatusBadRequest,
				expectMsg:  "Invalid date range",
			},
			{
				name:       "unknown car",
				err:        errs.ErrCarNotFound,
				expectCode: http.StatusNotFound,
				expectMsg:  "Car not found",
			},
			{
				name:       "dates taken",
				err:        &availability.ConflictError{CarID: b.CarID, Range: b.Range()},
				expectCode: http.StatusConflict,
				expectMsg:  "Car is not available for the selected dates",
			},
			{
				name:       "key reused",
				err:        errs.ErrDuplicateRequest,
				expectCode: http.StatusConflict,
				expectMsg:  "Duplicate booking request",
			},
			{
				name:       "key in flight",
				err:        errs.ErrIdempotencyInProgress,
				expectCode: http.StatusConflict,
				expectMsg:  "currently being processed",
			},
			{
				name:       "self booking",
				err:        booking.ErrSelfBooking,
				expectCode: http.StatusUnprocessableEntity,
				expectMsg:  "Owners cannot book their own car",
			},
			{
				name:       "owner mismatch",
				err:        commands.ErrCarOwnerMismatch,
				expectCode: http.StatusUnprocessableEntity,
				expectMsg:  "Car is not owned by the given owner",
			},
			{
				name:       "database down",
				err:        errs.Mark(errs.New("connection refused"), errs.ErrDatabaseOperationFailed),
				expectCode: http.StatusInternalServerError,
				expectMsg:  "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().RequestBooking(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err)

				rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token", s.keyHeader())

				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, tc.expectMsg)
			})
		}
	})
}

// ================================================================================
// TestChangeStatus
// ================================================================================

func (s *BookingHandlerTestSuite) TestChangeStatus() {
	url := "/bookings/change-status"
	b := builder.NewBookingBuilder().WithStatus(booking.StatusBooked)
	view := b.BuildView()

	s.Run("success: accepts a legacy status alias", func() {
		s.mockCommands.EXPECT().ChangeStatus(gomock.Any(), commands.ChangeStatusInput{
			BookingID: b.ID,
			ActorID:   s.userID,
			To:        booking.StatusBooked,
		}).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"bookingId": b.ID, "status": "confirmed"}, "bearer-token")

		var body resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("booked", body.Status)
		s.Equal("Booked", body.StatusLabel)
	})

	s.Run("success: forwards the cancellation reason", func() {
		s.mockCommands.EXPECT().ChangeStatus(gomock.Any(), commands.ChangeStatusInput{
			BookingID: b.ID,
			ActorID:   s.userID,
			To:        booking.StatusCancelled,
			Reason:    "flight cancelled",
		}).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"bookingId": b.ID, "status": "cancelled", "cancellationReason": "flight cancelled"}, "bearer-token")

		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 Bad Request on invalid input", func() {
		testCases := []struct {
			name string
			body map[string]any
			msg  string
		}{
			{name: "unknown status", body: map[string]any{"bookingId": b.ID, "status": "lost"}, msg: "Invalid booking status"},
			{name: "missing status", body: map[string]any{"bookingId": b.ID}, msg: "Invalid request format"},
			{name: "missing booking id", body: map[string]any{"status": "booked"}, msg: "Invalid request format"},
			{name: "reason too long", body: map[string]any{"bookingId": b.ID, "status": "cancelled", "cancellationReason": strings.Repeat("a", 501)}, msg: "Invalid request format"},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, tc.body, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, tc.msg)
			})
		}
	})

	s.Run("error: use case errors map to HTTP statuses", func() {
		testCases := []struct {
			name       string
			err        error
			expectCode int
			expectMsg  string
		}{
			{name: "missing reason", err: booking.ErrMissingReason, expectCode: http.StatusBadRequest, expectMsg: "Cancellation reason is required"},
			{name: "wrong party", err: errs.Wrap(errs.ErrActorNotPermitted, "customer may not accept"), expectCode: http.StatusForbidden, expectMsg: "Not allowed"},
			{name: "not a party", err: errs.ErrBookingNotFound, expectCode: http.StatusNotFound, expectMsg: "Booking not found"},
			{name: "illegal move", err: &booking.TransitionError{From: booking.StatusPending, To: booking.StatusOnRent, Err: booking.ErrIllegalTransition}, expectCode: http.StatusUnprocessableEntity, expectMsg: "Status change not allowed"},
			{name: "terminal", err: &booking.TransitionError{From: booking.StatusCompleted, To: booking.StatusCancelled, Err: booking.ErrTerminalState}, expectCode: http.StatusUnprocessableEntity, expectMsg: "Status change not allowed"},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().ChangeStatus(gomock.Any(), gomock.Any()).Return(nil, tc.err)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
					map[string]any{"bookingId": b.ID, "status": "cancelled", "cancellationReason": "x"}, "bearer-token")

				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, tc.expectMsg)
			})
		}
	})
}

// ================================================================================
// TestGetBooking / TestGetTransitions
// ================================================================================

func (s *BookingHandlerTestSuite) TestGetBooking() {
	view := builder.NewBookingBuilder().BuildView()

	s.Run("success: returns the booking", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.userID, view.ID).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+view.ID.String(), nil, "bearer-token")

		var body resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.ID, body.ID)
		s.Equal(view.CarName, body.CarName)
	})

	s.Run("error: 400 Bad Request on malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/not-a-uuid", nil, "bearer-token")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid booking ID format")
	})

	s.Run("error: 404 Not Found for other parties", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.userID, view.ID).Return(nil, errs.ErrBookingNotFound)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+view.ID.String(), nil, "bearer-token")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Booking not found")
	})
}

func (s *BookingHandlerTestSuite) TestGetTransitions() {
	id := uuid.New()

	s.Run("success: lists the allowed moves", func() {
		s.mockQueries.EXPECT().AllowedTransitions(gomock.Any(), s.userID, id).Return([]queries.TransitionView{
			{To: "booked"},
			{To: "cancelled", RequiresReason: true},
		}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+id.String()+"/transitions", nil, "bearer-token")

		var body []resdto.TransitionResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().Len(body, 2)
		s.Equal("booked", body[0].Status)
		s.False(body[0].RequiresReason)
		s.Equal("Cancelled", body[1].StatusLabel)
		s.True(body[1].RequiresReason)
	})
}

// ================================================================================
// TestListBookings
// ================================================================================

func (s *BookingHandlerTestSuite) TestListBookings() {
	views := []*queries.BookingView{
		builder.NewBookingBuilder().BuildView(),
		builder.NewBookingBuilder().WithStatus(booking.StatusBooked).BuildView(),
	}

	s.Run("success: customer list with status filter and next cursor", func() {
		status := booking.StatusBooked
		s.mockQueries.EXPECT().ListByCustomer(gomock.Any(), s.userID, &status, &queries.Cursor{After: "abc"}, 2).
			Return(views, &queries.Cursor{After: "next"}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?status=confirmed&after=abc&limit=2", nil, "bearer-token")

		var body resdto.BookingListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body.Items, 2)
		s.Require().NotNil(body.NextCursor)
		s.Equal("next", *body.NextCursor)
	})

	s.Run("success: owner list without filters", func() {
		s.mockQueries.EXPECT().ListByOwner(gomock.Any(), s.userID, (*booking.Status)(nil), (*queries.Cursor)(nil), 0).
			Return(views[:1], nil, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/owner/bookings", nil, "bearer-token")

		var body resdto.BookingListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body.Items, 1)
		s.Nil(body.NextCursor)
	})

	s.Run("error: 400 Bad Request on invalid parameters", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?status=lost", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid booking status")

		rec = httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?limit=500", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid query parameters")
	})

	s.Run("error: 400 Bad Request on bad cursor", func() {
		s.mockQueries.EXPECT().ListByCustomer(gomock.Any(), s.userID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil, errs.Mark(errs.New("invalid cursor encoding"), queries.ErrInvalidCursor))

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?after=zzz", nil, "bearer-token")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid cursor")
	})
}
