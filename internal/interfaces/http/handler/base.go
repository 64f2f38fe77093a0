// Package handler holds the gin handlers of the API and chat servers.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/interfaces/http/dto"
	"github.com/avocado/teamhub/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 success envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 success envelope
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Message sends a 200 success envelope that only carries a message
func (h *BaseHandler) Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(message))
}

// Fail sends a fail envelope with an explicit status code
func (h *BaseHandler) Fail(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewFailResponse(code, message))
}

// BadRequest sends a 400 INVALID_INPUT response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Fail(c, http.StatusBadRequest, shared.CodeInvalidInput, message)
}

// MissingFields sends a 400 MISSING_FIELDS response naming the fields
func (h *BaseHandler) MissingFields(c *gin.Context, fields ...string) {
	h.Fail(c, http.StatusBadRequest, shared.CodeMissingFields, "Missing required fields: "+strings.Join(fields, ", "))
}

// Forbidden sends a 403 response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Fail(c, http.StatusForbidden, shared.CodeForbidden, message)
}

// HandleError converts domain errors to their status and code. Anything
// else is reported as an opaque 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code), dto.NewFailResponse(domainErr.Code, domainErr.Message))
		return
	}

	_ = c.Error(err)
	h.Fail(c, http.StatusInternalServerError, shared.CodeUnknown, "Internal server error")
}

// BindJSON binds the body into req and writes the validation failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// Bind binds a form or multipart body into req and writes the validation failure
func (h *BaseHandler) Bind(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds the query string into req and writes the validation failure
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// Session returns the authenticated caller, answering 401 when there is none
func (h *BaseHandler) Session(c *gin.Context) (identity.Session, bool) {
	session, ok := middleware.GetSession(c)
	if !ok {
		h.Fail(c, http.StatusUnauthorized, shared.CodeUnauthorized, "Authentication required")
		return identity.Session{}, false
	}
	return session, true
}

// ActingAs resolves the zid a request acts for. An empty claimed zid means the
// caller; only staff may act for someone else.
func (h *BaseHandler) ActingAs(c *gin.Context, claimed string) (string, bool) {
	session, ok := h.Session(c)
	if !ok {
		return "", false
	}
	if claimed == "" || claimed == session.Zid {
		return session.Zid, true
	}
	if !session.IsStaff() {
		h.Forbidden(c, "Cannot act on behalf of another user")
		return "", false
	}
	return claimed, true
}

// OptionalDate parses an RFC 3339 timestamp or a plain date. Empty is nil.
func (h *BaseHandler) OptionalDate(c *gin.Context, field, raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	h.BadRequest(c, "Invalid value for "+field)
	return nil, false
}

// ParamID parses a positive integer path parameter
func (h *BaseHandler) ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
