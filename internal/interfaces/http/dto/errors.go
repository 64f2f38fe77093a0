package dto

import (
	"net/http"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// Transport-level codes that never originate in the domain
const (
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeMissingFields: http.StatusBadRequest,
	shared.CodeGroupMismatch: http.StatusBadRequest,
	shared.CodeInvalidInput:  http.StatusBadRequest,
	shared.CodeInvalidState:  http.StatusBadRequest,

	shared.CodeInvalidCredentials: http.StatusUnauthorized,
	shared.CodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeTokenExpired:           http.StatusUnauthorized,
	ErrCodeTokenRevoked:           http.StatusUnauthorized,

	shared.CodeForbidden: http.StatusForbidden,

	shared.CodeNotFound: http.StatusNotFound,

	shared.CodeAlreadyExists: http.StatusConflict,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	shared.CodeGroupJoinFail:  http.StatusInternalServerError,
	shared.CodeUnknown:        http.StatusInternalServerError,
	shared.CodeAnalysisFailed: http.StatusInternalServerError,

	shared.CodeStorageUnavailable: http.StatusServiceUnavailable,
	shared.CodeServiceUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unmapped codes are treated as internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
