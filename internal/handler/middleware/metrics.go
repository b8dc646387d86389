package middleware

import (
	"strconv"
	"time"

	"car-rental-booking/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request latency labelled by the matched route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
