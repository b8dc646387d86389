package api

import (
	"net/http"

	reqdto "car-rental-booking/internal/handler/dto/request"
	resdto "car-rental-booking/internal/handler/dto/response"
	"car-rental-booking/internal/handler/httperr"
	"car-rental-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	queries queries.AvailabilityQueries
}

func NewAvailabilityHandler(availabilityQueries queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{queries: availabilityQueries}
}

// @Summary Check availability
// @Description Report whether a car is free for the requested dates. Both dates are inclusive.
// @Tags availability
// @Accept json
// @Produce json
// @Param request body reqdto.CheckAvailabilityRequest true "Requested dates"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/check-availability [post]
func (h *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	var req reqdto.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	pickup, ret, err := req.Dates()
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	view, err := h.queries.Check(c.Request.Context(), req.CarID, pickup, ret)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

// @Summary Blocked dates
// @Description Dates on which the car is held by a pending, booked or on-rent booking.
// @Description Pass month=YYYY-MM for a six-week calendar grid, or from and to for an explicit window.
// @Tags availability
// @Produce json
// @Param id path string true "Car ID"
// @Param month query string false "Month as YYYY-MM"
// @Param from query string false "First date as YYYY-MM-DD"
// @Param to query string false "Last date as YYYY-MM-DD"
// @Success 200 {object} resdto.BlockedDatesResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /cars/{id}/blocked-dates [get]
func (h *AvailabilityHandler) GetBlockedDates(c *gin.Context) {
	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidCarID, "Invalid car ID format", nil)
		return
	}

	var q reqdto.BlockedDatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	var view *queries.BlockedDatesView
	if q.IsMonth() {
		year, month, perr := q.ParseMonth()
		if perr != nil {
			abortWithUseCaseError(c, perr)
			return
		}
		view, err = h.queries.MonthGrid(c.Request.Context(), carID, year, month)
	} else {
		horizon, herr := q.Horizon()
		if herr != nil {
			abortWithUseCaseError(c, herr)
			return
		}
		view, err = h.queries.BlockedDates(c.Request.Context(), carID, horizon)
	}
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBlockedDatesView(view))
}
