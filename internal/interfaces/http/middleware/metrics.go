package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPRecorder receives one observation per served request
type HTTPRecorder interface {
	RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration)
}

// HTTPMetrics records method, route pattern, status and latency of every
// request. Unmatched routes are recorded as "unmatched" to bound cardinality.
func HTTPMetrics(recorder HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.RecordHTTPRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
