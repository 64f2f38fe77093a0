package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling label names
const (
	ProfilingLabelRoute  = "route"
	ProfilingLabelMethod = "method"
)

// Profiling tags CPU samples taken while serving a request with its route
// pattern and method, so profiles can be filtered per endpoint.
func Profiling(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if !enabled || route == "" {
			c.Next()
			return
		}
		labels := pyroscope.Labels(ProfilingLabelRoute, route, ProfilingLabelMethod, c.Request.Method)
		pyroscope.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
