// Package errors provides custom error types for the chat service client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure kinds of a chat round trip
var (
	ErrNetworkFailure    = errors.New("network failure")
	ErrServerError       = errors.New("server error")
	ErrMalformedResponse = errors.New("malformed response")
)

// ErrorKind classifies a failed round trip
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindServer
	KindMalformed
)

// String returns a short name for the kind
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// NetworkError represents a request that never produced an HTTP response
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	msg := "network error"
	if e.Operation != "" {
		msg = fmt.Sprintf("network error during %s", e.Operation)
	}
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s at %s", msg, e.Endpoint)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	if target == ErrNetworkFailure {
		return true
	}
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// TimeoutError represents a request that exceeded its deadline.
// It is a network failure for classification purposes.
type TimeoutError struct {
	Endpoint string
	Err      error
}

func (e *TimeoutError) Error() string {
	if e.Endpoint == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request to %s timed out", e.Endpoint)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *TimeoutError) Is(target error) bool {
	if target == ErrNetworkFailure {
		return true
	}
	_, ok := target.(*TimeoutError)
	return ok
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(endpoint string, err error) *TimeoutError {
	return &TimeoutError{Endpoint: endpoint, Err: err}
}

// ServerError represents a non-success HTTP status from the chat service
type ServerError struct {
	StatusCode int
	Endpoint   string
	Detail     string // Message extracted from the error body, if any
	Body       string // Raw error body, truncated
}

func (e *ServerError) Error() string {
	msg := fmt.Sprintf("server returned HTTP %d", e.StatusCode)
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s at %s", msg, e.Endpoint)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

// Is allows comparison with sentinel errors
func (e *ServerError) Is(target error) bool {
	if target == ErrServerError {
		return true
	}
	_, ok := target.(*ServerError)
	return ok
}

// NewServerError creates a new ServerError
func NewServerError(statusCode int, endpoint, detail, body string) *ServerError {
	return &ServerError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Detail:     detail,
		Body:       body,
	}
}

// ParseError represents a response body that could not be read as a reply
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error: %s (path %q)", e.Message, e.Path)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrMalformedResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Kind classifies err. Wrapped errors are unwrapped.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNetworkFailure):
		return KindNetwork
	case errors.Is(err, ErrServerError):
		return KindServer
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformed
	default:
		return KindUnknown
	}
}

// IsNetworkError reports whether err is a connection-level failure (timeouts included)
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetworkFailure)
}

// IsTimeoutError reports whether err is a deadline failure
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsServerError reports whether err is a non-success HTTP status
func IsServerError(err error) bool {
	return errors.Is(err, ErrServerError)
}

// IsMalformedResponse reports whether err is a response parsing failure
func IsMalformedResponse(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Endpoint
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Endpoint
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return te.Endpoint
	}
	return ""
}

// GetResponseBody returns the raw error body carried by err, or ""
func GetResponseBody(err error) string {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Body
	}
	return ""
}
