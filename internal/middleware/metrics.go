package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saberpro-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records latency and status per route template. Unmatched paths share one label.
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
			path = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
