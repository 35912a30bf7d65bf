// Package transport implements the wire transports used by the manager client.
//
// A Transport performs exactly one request and returns either a decoded
// response mapping or a raw failure. Raw failures carry the category the
// classifier in pkg/dispatch needs (timeout, connection error, HTTP status
// error); they are not part of the public error taxonomy.
package transport

import (
	"context"
	"fmt"

	"github.com/beamtime/remclient/pkg/methods"
)

// Transport performs one request against the manager.
type Transport interface {
	Call(ctx context.Context, inv methods.Invocation, params map[string]any) (map[string]any, error)
	Close() error
}

// TimeoutError is the raw signal that the transport did not complete within
// its timeout budget.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("transport timeout: %v", e.Err) }

func (e *TimeoutError) Unwrap() error { return e.Err }

// ConnError is the raw signal for connection-level breakage: DNS failure,
// connection reset, undecodable reply.
type ConnError struct {
	Err error
}

func (e *ConnError) Error() string { return fmt.Sprintf("transport error: %v", e.Err) }

func (e *ConnError) Unwrap() error { return e.Err }

// StatusError is the raw signal for a non-2xx HTTP status (REST only).
// Detail is the decoded body detail for statuses below 500, empty otherwise.
type StatusError struct {
	StatusCode int
	Detail     string
	URL        string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d (%s): %s", e.StatusCode, e.Detail, e.URL)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}
