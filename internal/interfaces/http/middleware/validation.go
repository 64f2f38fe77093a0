package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Request id keys. The gin key is the one the request logger reads.
const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// SetupValidator makes validation errors report json field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// FormatValidationErrors turns a binding error into a fail response.
// Missing required fields become MISSING_FIELDS naming every absent field;
// any other rule violation or an unreadable body is INVALID_INPUT.
func FormatValidationErrors(err error) dto.Response {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return dto.NewFailResponse(shared.CodeInvalidInput, bodyErrorMessage(err))
	}

	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	var missing []string
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: getValidationMessage(e),
		})
		if strings.HasPrefix(e.Tag(), "required") {
			missing = append(missing, e.Field())
		}
	}

	if len(missing) > 0 {
		return dto.NewValidationFailResponse(shared.CodeMissingFields,
			"Missing required fields: "+strings.Join(missing, ", "), details)
	}
	return dto.NewValidationFailResponse(shared.CodeInvalidInput, "Request validation failed", details)
}

// HandleValidationError aborts with a 400 describing the binding error, or
// a 413 when the body was cut off at its size limit
func HandleValidationError(c *gin.Context, err error) {
	if BodyTooLarge(c, err) {
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err))
}

func bodyErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	var numErr *strconv.NumError
	switch {
	case errors.Is(err, io.EOF):
		return "Request body is empty"
	case errors.As(err, &typeErr):
		return "Invalid value for " + typeErr.Field
	case errors.As(err, &numErr):
		return "Invalid number: " + numErr.Num
	default:
		return "Invalid request body"
	}
}

// getRequestIDFromContext extracts request ID from gin context
func getRequestIDFromContext(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if", "required_without":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Type().Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " items"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gtfield":
		return "Must be after " + e.Param()
	case "alphanum":
		return "Must be alphanumeric"
	default:
		return "Invalid value"
	}
}
