package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/prometheus"
)

// unmatchedRoute labels requests that hit no route so that arbitrary paths
// cannot inflate label cardinality.
const unmatchedRoute = "unmatched"

// Metrics records request counts and latencies per route template.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		prometheus.RecordHTTPRequest(m, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

//Personal.AI order the ending
