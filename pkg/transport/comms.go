package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/beamtime/remclient/pkg/commsutil"
	"github.com/beamtime/remclient/pkg/methods"
)

const commsLogPrefix = "transport:comms"

// CommsTransport talks to the manager over the request/reply control subject.
// The channel carries one outstanding request at a time; concurrent callers
// serialize on the transport mutex.
type CommsTransport struct {
	nc          *comms.Conn
	subject     string
	timeoutRecv time.Duration
	ownsConn    bool

	mu sync.Mutex
}

// CommsParams holds parameters for NewCommsTransport.
type CommsParams struct {
	URL     string
	Name    string
	Subject string
	// CredsFile authenticates the session; empty means unauthenticated.
	CredsFile string
	// TimeoutSend bounds connection establishment and flush.
	TimeoutSend time.Duration
	// TimeoutRecv bounds the request/reply round trip.
	TimeoutRecv time.Duration
}

// NewCommsTransport opens a persistent connection to the manager's control
// channel.
func NewCommsTransport(p CommsParams) (*CommsTransport, error) {
	subject := p.Subject
	if subject == "" {
		subject = commsutil.SubjectControl
	}

	nc, err := commsutil.Connect(commsutil.ConnectParams{
		URL:       p.URL,
		Name:      p.Name,
		CredsFile: p.CredsFile,
		Timeout:   p.TimeoutSend,
	})
	if err != nil {
		return nil, err
	}

	return &CommsTransport{
		nc:          nc,
		subject:     subject,
		timeoutRecv: p.TimeoutRecv,
		ownsConn:    true,
	}, nil
}

// NewCommsTransportWithConn wraps an existing connection (used by tests and
// by callers that share one connection between the client and the console
// monitor). Close does not close a borrowed connection.
func NewCommsTransportWithConn(nc *comms.Conn, subject string, timeoutRecv time.Duration) *CommsTransport {
	if subject == "" {
		subject = commsutil.SubjectControl
	}
	return &CommsTransport{nc: nc, subject: subject, timeoutRecv: timeoutRecv}
}

// Conn exposes the underlying connection so the console monitor can share it.
func (t *CommsTransport) Conn() *comms.Conn { return t.nc }

// Call sends one {method, params} envelope and waits for the reply.
func (t *CommsTransport) Call(ctx context.Context, inv methods.Invocation, params map[string]any) (map[string]any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := commsutil.EncodeRequest(inv.Method, params)
	if err != nil {
		return nil, &ConnError{Err: fmt.Errorf("encode request: %w", err)}
	}

	callCtx := ctx
	if t.timeoutRecv > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, t.timeoutRecv)
		defer cancel()
	}

	slog.Debug(fmt.Sprintf("%s - request method=%s subject=%s", commsLogPrefix, inv.Method, t.subject))
	msg, err := t.nc.RequestWithContext(callCtx, t.subject, data)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, comms.ErrTimeout) ||
			errors.Is(err, comms.ErrNoResponders) {
			return nil, &TimeoutError{Err: err}
		}
		return nil, &ConnError{Err: err}
	}

	resp, err := commsutil.DecodeResponse(msg.Data)
	if err != nil {
		return nil, &ConnError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp, nil
}

// Close closes the connection if this transport opened it.
func (t *CommsTransport) Close() error {
	if t.ownsConn && t.nc != nil {
		t.nc.Close()
	}
	return nil
}
