package errors

import "fmt"

// ErrorType represents different types of errors that can occur
// during an acquisition run
type ErrorType string

const (
	// ErrorTypeInvalidCoordinate means a candidate had an out-of-range
	// latitude or longitude and was rejected before any network call
	ErrorTypeInvalidCoordinate ErrorType = "invalid_coordinate"
	// ErrorTypeUnavailable means the upstream reported no imagery at the location
	ErrorTypeUnavailable ErrorType = "unavailable_imagery"
	// ErrorTypeTransport covers network and HTTP failures
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeRenderTimeout means the rendering surface never became usable in time
	ErrorTypeRenderTimeout ErrorType = "render_timeout"
	// ErrorTypeCodec means post-processing was given undecodable bytes
	ErrorTypeCodec ErrorType = "codec"
	// ErrorTypeConfig covers fatal configuration problems, reported before any attempt
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeUnknown is the catch-all
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error represents a pipeline error with type information.
// Code carries the HTTP status for transport errors and is zero otherwise.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Is makes errors of the same type match for errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates a typed error
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf creates a typed error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// NewTransport creates a transport error carrying an HTTP status code
func NewTransport(message string, code int) *Error {
	return &Error{Type: ErrorTypeTransport, Message: message, Code: code}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeTransport:
		return true
	case ErrorTypeInvalidCoordinate, ErrorTypeUnavailable, ErrorTypeRenderTimeout, ErrorTypeCodec, ErrorTypeConfig:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
