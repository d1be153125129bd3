package agro

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrMissingAPIKey indicates the client was created without an API key
	ErrMissingAPIKey = errors.New("agro API key is required")
	// ErrMissingID indicates a PUT or DELETE without a polygon id
	ErrMissingID = errors.New("polygon id is required")
	// ErrUnexpectedID indicates a POST with a polygon id
	ErrUnexpectedID = errors.New("polygon id is not allowed for this request")
	// ErrInvalidURL indicates the request inputs do not form a valid URL
	ErrInvalidURL = errors.New("invalid request URL")
	// ErrInvalidPolygon indicates a polygon geometry with an open or short ring
	ErrInvalidPolygon = errors.New("invalid polygon geometry")
)

// ErrorKind classifies a failed request
type ErrorKind int

const (
	// KindUnknown is an unclassifiable failure
	KindUnknown ErrorKind = iota
	// KindAPI is an HTTP-level rejection
	KindAPI
	// KindParser is a response body that could not be decoded
	KindParser
	// KindNetwork is a transport failure (DNS, TLS, reset, timeout)
	KindNetwork
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindParser:
		return "parser"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error represents a failed Agro API request
type Error struct {
	Kind       ErrorKind
	Reason     string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindAPI, KindParser:
		return e.Reason
	case KindNetwork:
		if e.Err != nil {
			return "network error: " + e.Err.Error()
		}
		return "network error"
	default:
		return "Unknown error"
	}
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates a not found response
func (e *Error) IsNotFound() bool {
	return e.Kind == KindAPI && e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *Error) IsUnauthorized() bool {
	return e.Kind == KindAPI && (e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

func apiError(status int, reason string) *Error {
	return &Error{Kind: KindAPI, Reason: reason, StatusCode: status}
}

func parserError(err error) *Error {
	return &Error{Kind: KindParser, Reason: fmt.Sprintf("failed to decode response: %v", err), Err: err}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

func unknownError(err error) *Error {
	return &Error{Kind: KindUnknown, Err: err}
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// classifyStatus maps an HTTP status code to an error, or nil for success.
// The checks run in a fixed order; 400 itself is not rejected.
func classifyStatus(code int) error {
	switch {
	case code <= 0:
		return &Error{Kind: KindUnknown}
	case code == http.StatusUnauthorized:
		return apiError(code, "Unauthorized")
	case code == http.StatusForbidden:
		return apiError(code, "Resource forbidden")
	case code == http.StatusNotFound:
		return apiError(code, "Resource not found")
	case code >= 405 && code < 500:
		return apiError(code, "client error")
	case code >= 500 && code < 600:
		return apiError(code, "server error")
	}
	return nil
}
