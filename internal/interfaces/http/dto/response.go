package dto

// Response statuses
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Response is the envelope of every JSON reply
type Response struct {
	Status  string             `json:"status"`
	Message string             `json:"message,omitempty"`
	Code    string             `json:"code,omitempty"`
	Data    any                `json:"data,omitempty"`
	Details []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail names one field that failed validation
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Status: StatusSuccess,
		Data:   data,
	}
}

// NewMessageResponse creates a success response that only carries a message
func NewMessageResponse(message string) Response {
	return Response{
		Status:  StatusSuccess,
		Message: message,
	}
}

// NewFailResponse creates a failure response
func NewFailResponse(code, message string) Response {
	return Response{
		Status:  StatusFail,
		Code:    code,
		Message: message,
	}
}

// NewValidationFailResponse creates a failure response listing the offending fields
func NewValidationFailResponse(code, message string, details []ValidationDetail) Response {
	return Response{
		Status:  StatusFail,
		Code:    code,
		Message: message,
		Details: details,
	}
}
