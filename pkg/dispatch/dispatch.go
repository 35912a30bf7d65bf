// Package dispatch orchestrates method resolution, transport calls and error
// classification into a single Send operation.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/beamtime/remclient/pkg/apierr"
	"github.com/beamtime/remclient/pkg/methods"
	"github.com/beamtime/remclient/pkg/transport"
)

const logPrefix = "dispatch:send"

// Settings is the mutable per-client configuration read by the dispatcher.
// It is owned by the client facade and shared by reference.
type Settings struct {
	mu             sync.Mutex
	failExceptions bool
}

// NewSettings creates dispatcher settings with the fail-exceptions toggle.
func NewSettings(failExceptions bool) *Settings {
	return &Settings{failExceptions: failExceptions}
}

// RequestFailExceptionsEnabled reports whether "success": false responses are
// surfaced as RequestFailedError.
func (s *Settings) RequestFailExceptionsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failExceptions
}

// SetRequestFailExceptionsEnabled toggles RequestFailedError reporting.
// Timeout and transport errors are not affected.
func (s *Settings) SetRequestFailExceptionsEnabled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failExceptions = v
}

// Dispatcher sends requests through a registry/transport pair. It never
// retries; every failure propagates to the caller with the originating
// request attached.
type Dispatcher struct {
	registry methods.Registry
	tr       transport.Transport
	settings *Settings
}

// NewDispatcherParams holds parameters for NewDispatcher.
type NewDispatcherParams struct {
	Registry  methods.Registry
	Transport transport.Transport
	Settings  *Settings
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(p NewDispatcherParams) *Dispatcher {
	settings := p.Settings
	if settings == nil {
		settings = NewSettings(true)
	}
	return &Dispatcher{registry: p.Registry, tr: p.Transport, settings: settings}
}

// Send resolves the method, performs one transport call and classifies the
// outcome. Unknown methods fail before any I/O.
func (d *Dispatcher) Send(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	inv, err := d.registry.Resolve(method)
	if err != nil {
		return nil, err
	}

	req := apierr.Request{Method: method, Params: params}

	slog.Debug(fmt.Sprintf("%s - method=%s", logPrefix, method))
	resp, err := d.tr.Call(ctx, inv, params)
	if err != nil {
		return nil, Classify(err, req)
	}

	// A response without a "success" field is successful (status-style calls).
	if d.settings.RequestFailExceptionsEnabled() && !responseOK(resp) {
		return nil, &apierr.RequestFailedError{Request: req, Response: resp}
	}
	return resp, nil
}

func responseOK(resp map[string]any) bool {
	v, ok := resp["success"]
	if !ok {
		return true
	}
	b, ok := v.(bool)
	return ok && b
}
