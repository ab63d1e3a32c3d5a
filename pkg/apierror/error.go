package apierror

import (
	"encoding/json"
	"net/http"
)

// Error represents a structured API error response.
type Error struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Upstream   interface{} `json:"-"` // decoded upstream body, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// WithUpstream attaches the decoded upstream response body for diagnostics.
func (e *Error) WithUpstream(body interface{}) *Error {
	e.Upstream = body
	return e
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	inner := map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
	}
	if e.Upstream != nil {
		inner["upstream"] = e.Upstream
	}

	response := map[string]interface{}{
		"success": false,
		"error":   inner,
	}

	data, _ := json.Marshal(response)
	return data
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
	}
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    message,
	}
}

// UpstreamRejected creates an error that passes through an upstream 4xx
// status other than 404 and 401/403.
func UpstreamRejected(statusCode int, message string) *Error {
	return &Error{
		StatusCode: statusCode,
		Code:       "UPSTREAM_REJECTED",
		Message:    message,
	}
}

// BadGateway creates a 502 error for upstream 5xx responses and transport
// failures. The upstream's own status is carried in the message, not the
// response code.
func BadGateway(message string) *Error {
	if message == "" {
		message = "Upstream unavailable"
	}
	return &Error{
		StatusCode: http.StatusBadGateway,
		Code:       "UPSTREAM_UNAVAILABLE",
		Message:    message,
	}
}

// AuthenticationFailed creates a 500 error for a 401/403 that persists
// after the single refresh-and-retry cycle.
func AuthenticationFailed(message string) *Error {
	if message == "" {
		message = "Upstream authentication failed"
	}
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       "AUTH_FAILED",
		Message:    message,
	}
}

// NoCredential creates a 500 error for the case where no session token
// could be resolved from any source.
func NoCredential(message string) *Error {
	if message == "" {
		message = "No session credential available"
	}
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       "NO_CREDENTIAL",
		Message:    message,
	}
}

// PriceIndexUnavailable creates a 502 error for a failed price-index fetch.
func PriceIndexUnavailable(message string) *Error {
	if message == "" {
		message = "Price index unavailable"
	}
	return &Error{
		StatusCode: http.StatusBadGateway,
		Code:       "PRICE_INDEX_UNAVAILABLE",
		Message:    message,
	}
}

// InternalError creates a 500 Internal Server Error.
func InternalError(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
	}
}
