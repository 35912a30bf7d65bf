// Package commsutil provides COMMS connection helpers for the manager client.
package commsutil

import (
	"fmt"
	"log/slog"
	"time"

	comms "github.com/nats-io/nats.go"
)

const logPrefix = "commsutil:connect"

// ConnectParams holds parameters for Connect.
type ConnectParams struct {
	URL  string
	Name string
	// CredsFile authenticates the session; empty leaves the channel
	// unauthenticated.
	CredsFile string
	// Timeout bounds connection establishment and flush (the send budget).
	Timeout time.Duration
}

// Connect creates a COMMS connection to the manager.
func Connect(p ConnectParams) (*comms.Conn, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	opts := []comms.Option{
		comms.Name(p.Name),
		comms.Timeout(timeout),
		comms.FlusherTimeout(timeout),
		comms.ReconnectWait(2 * time.Second),
		comms.MaxReconnects(60),
		comms.DisconnectErrHandler(func(_ *comms.Conn, err error) {
			slog.Warn(fmt.Sprintf("%s - COMMS disconnected: %v", logPrefix, err))
		}),
		comms.ReconnectHandler(func(nc *comms.Conn) {
			slog.Info(fmt.Sprintf("%s - COMMS reconnected to %s", logPrefix, nc.ConnectedUrl()))
		}),
		comms.ClosedHandler(func(nc *comms.Conn) {
			slog.Info(fmt.Sprintf("%s - COMMS connection closed", logPrefix))
		}),
	}
	if p.CredsFile != "" {
		opts = append(opts, comms.UserCredentials(p.CredsFile))
	}

	nc, err := comms.Connect(p.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
	}

	slog.Debug(fmt.Sprintf("%s - Connected to COMMS at %s as %s", logPrefix, nc.ConnectedUrl(), p.Name))
	return nc, nil
}
