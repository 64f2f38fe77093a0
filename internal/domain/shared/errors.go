package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so a sentinel matches
// the more specific errors built from it with WithMessage.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e with a different message
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes returned to clients
const (
	CodeMissingFields      = "MISSING_FIELDS"
	CodeGroupMismatch      = "GROUP_MISMATCH"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeGroupJoinFail      = "GROUP_JOIN_FAIL"
	CodeUnknown            = "UNKNOWN"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidState       = "INVALID_STATE"
	CodeAnalysisFailed     = "ANALYSIS_FAILED"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Common domain errors
var (
	ErrMissingFields      = NewDomainError(CodeMissingFields, "Missing required fields")
	ErrGroupMismatch      = NewDomainError(CodeGroupMismatch, "Group does not belong to the course")
	ErrAlreadyExists      = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrGroupJoinFail      = NewDomainError(CodeGroupJoinFail, "Failed to join group")
	ErrUnknown            = NewDomainError(CodeUnknown, "Internal server error")
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput       = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidCredentials = NewDomainError(CodeInvalidCredentials, "Invalid credentials")
	ErrUnauthorized       = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden          = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState       = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrAnalysisFailed     = NewDomainError(CodeAnalysisFailed, "Contribution analysis failed")
	ErrStorageUnavailable = NewDomainError(CodeStorageUnavailable, "File storage is not configured")
	ErrServiceUnavailable = NewDomainError(CodeServiceUnavailable, "Service unavailable")
)
