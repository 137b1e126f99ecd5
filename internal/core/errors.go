package core

import (
	"fmt"
	"net/http"
)

// ErrorType classifies why an upstream fetch failed.
type ErrorType string

const (
	// ErrorTypeTransport indicates the request never produced a response.
	ErrorTypeTransport ErrorType = "transport_error"
	// ErrorTypeStatus indicates a non-2xx response.
	ErrorTypeStatus ErrorType = "status_error"
	// ErrorTypeParse indicates the response body was not the expected shape.
	ErrorTypeParse ErrorType = "parse_error"
	// ErrorTypeAuthentication indicates a rejected ops API credential.
	ErrorTypeAuthentication ErrorType = "authentication_error"
)

// UpstreamError is returned by the upstream fetcher for every failure.
type UpstreamError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code,omitempty"`
	// Original error for debugging
	Err error `json:"-"`
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Type, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a later attempt may succeed.
// Transport failures, throttling and 5xx responses are retryable.
func (e *UpstreamError) Retryable() bool {
	switch e.Type {
	case ErrorTypeTransport:
		return true
	case ErrorTypeStatus:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	default:
		return false
	}
}

// NewTransportError wraps a failure to reach the upstream.
func NewTransportError(message string, err error) *UpstreamError {
	return &UpstreamError{Type: ErrorTypeTransport, Message: message, Err: err}
}

// NewStatusError reports a non-2xx upstream response.
func NewStatusError(statusCode int, message string) *UpstreamError {
	return &UpstreamError{Type: ErrorTypeStatus, Message: message, StatusCode: statusCode}
}

// NewParseError reports a malformed upstream response.
func NewParseError(message string, err error) *UpstreamError {
	return &UpstreamError{Type: ErrorTypeParse, Message: message, Err: err}
}

// ErrorJSON renders the ops API error envelope.
func ErrorJSON(t ErrorType, message string) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    t,
			"message": message,
		},
	}
}
