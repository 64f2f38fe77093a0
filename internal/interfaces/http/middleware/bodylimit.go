package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/avocado/teamhub/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimits caps request bodies. Routes raises the cap for individual
// routes, keyed by RouteKey, such as the multipart assignment uploads.
type BodyLimits struct {
	Default int64
	Routes  map[string]int64
}

// RouteKey names a route the way gin matched it, e.g. "PUT /assignments/:id"
func RouteKey(method, fullPath string) string {
	return method + " " + fullPath
}

// For returns the cap for a matched route; zero means unlimited
func (l BodyLimits) For(method, fullPath string) int64 {
	if n, ok := l.Routes[RouteKey(method, fullPath)]; ok {
		return n
	}
	return l.Default
}

// BodyLimit rejects bodies whose declared length is over the route's cap
// and cuts off streamed bodies at the cap. Handlers see the cut as an
// *http.MaxBytesError from their read, which BodyTooLarge reports.
func BodyLimit(limits BodyLimits) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := limits.For(c.Request.Method, c.FullPath())
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			abortTooLarge(c, limit)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// BodyTooLarge answers 413 when err came from a body cut off by BodyLimit
func BodyTooLarge(c *gin.Context, err error) bool {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return false
	}
	abortTooLarge(c, maxErr.Limit)
	return true
}

func abortTooLarge(c *gin.Context, limit int64) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewFailResponse(
		dto.ErrCodeRequestTooLarge,
		"Request body exceeds the "+strconv.FormatInt(limit, 10)+" byte limit",
	))
}
