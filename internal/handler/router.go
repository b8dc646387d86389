package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"car-rental-booking/internal/handler/api"
	"car-rental-booking/internal/handler/middleware"
	"car-rental-booking/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	bookingHandler *api.BookingHandler,
	availabilityHandler *api.AvailabilityHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, bookingHandler, availabilityHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.Metrics())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	bookingHandler *api.BookingHandler,
	availabilityHandler *api.AvailabilityHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/bookings/check-availability", Handler: availabilityHandler.CheckAvailability},
			{Method: http.MethodGet, Path: "/cars/:id/blocked-dates", Handler: availabilityHandler.GetBlockedDates},
		})

		requireAuth := authMiddleware.RequireAuth()

		bookings := apiGroup.Group("/bookings")
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "/create", Handler: bookingHandler.CreateBooking, Mw: []gin.HandlerFunc{requireAuth}},
				{Method: http.MethodPost, Path: "/change-status", Handler: bookingHandler.ChangeStatus, Mw: []gin.HandlerFunc{requireAuth}},
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListMyBookings, Mw: []gin.HandlerFunc{requireAuth}},
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetBooking, Mw: []gin.HandlerFunc{requireAuth}},
				{Method: http.MethodGet, Path: "/:id/transitions", Handler: bookingHandler.GetTransitions, Mw: []gin.HandlerFunc{requireAuth}},
			})
		}

		owner := apiGroup.Group("/owner")
		owner.Use(requireAuth)
		{
			addRoutes(owner, []route{
				{Method: http.MethodGet, Path: "/bookings", Handler: bookingHandler.ListOwnerBookings},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
