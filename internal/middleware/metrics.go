package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cronograma-api/internal/service"
)

// Metrics records request count and latency per route into the service registry.
// Routes are labelled by template (/students/:id/...) and unknown paths as "unmatched".
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
