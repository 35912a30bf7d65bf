// Package apierr defines the error taxonomy shared by both manager transports.
package apierr

import "fmt"

// Request describes the originating request attached to failures for diagnostics.
type Request struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

// UnknownMethodError is returned when a method name is not present in the
// method registry. No network call is made.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown method %q", e.Method)
}

// RequestTimeoutError indicates the transport did not complete within its
// timeout budget.
type RequestTimeoutError struct {
	Msg     string
	Request Request
}

func (e *RequestTimeoutError) Error() string {
	return fmt.Sprintf("request timeout: %s", e.Msg)
}

// RequestFailedError indicates a well-formed response with "success": false.
// The full response is kept so callers can inspect partial results.
type RequestFailedError struct {
	Request  Request
	Response map[string]any
}

func (e *RequestFailedError) Error() string {
	msg := ""
	if e.Response != nil {
		if m, ok := e.Response["msg"].(string); ok {
			msg = m
		}
	}
	if msg == "" {
		msg = "(no error message)"
	}
	return fmt.Sprintf("request failed: %s", msg)
}

// RequestError indicates connection-level breakage unrelated to a specific
// request/response cycle (DNS failure, connection reset, malformed reply).
type RequestError struct {
	Err     error
	Request Request
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request error: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ClientError indicates an HTTP status error from the REST transport.
// For statuses below 500 the decoded detail message and request URL are
// included; server errors (>= 500) are opaque.
type ClientError struct {
	StatusCode int
	Detail     string
	URL        string
	Request    Request
}

func (e *ClientError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d: %s %s", e.StatusCode, e.Detail, e.URL)
	}
	return fmt.Sprintf("HTTP status error %d: %s", e.StatusCode, e.URL)
}

// WaitTimeoutError indicates a wait operation reached its deadline with the
// condition still false.
type WaitTimeoutError struct {
	Msg string
}

func (e *WaitTimeoutError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("wait timeout: %s", e.Msg)
	}
	return "wait for the condition timed out"
}

// WaitCancelError indicates a wait operation was cancelled, either through
// the wait monitor or through context cancellation.
type WaitCancelError struct{}

func (e *WaitCancelError) Error() string {
	return "wait for the condition was cancelled"
}
