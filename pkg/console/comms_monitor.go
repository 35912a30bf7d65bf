package console

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	comms "github.com/nats-io/nats.go"

	"github.com/beamtime/remclient/pkg/commsutil"
)

const commsLogPrefix = "console:comms"

// CommsMonitor collects console messages published on the manager's console
// subject. Collection runs only between Enable and Disable; messages that
// arrive while disabled are lost.
type CommsMonitor struct {
	nc      *comms.Conn
	subject string

	mu      sync.Mutex
	sub     *comms.Subscription
	enabled bool

	queue *msgQueue
	text  *textBuffer
}

// CommsMonitorParams holds parameters for NewCommsMonitor.
type CommsMonitorParams struct {
	// Conn is a shared connection, typically the one the control transport
	// uses. The monitor never closes it.
	Conn    *comms.Conn
	Subject string
	// MaxMsgs caps the message buffer; the oldest message is dropped on
	// overflow.
	MaxMsgs int
	// MaxLines caps the accumulated text buffer.
	MaxLines int
}

// NewCommsMonitor creates a disabled console monitor on a shared connection.
func NewCommsMonitor(p CommsMonitorParams) *CommsMonitor {
	subject := p.Subject
	if subject == "" {
		subject = commsutil.SubjectConsole
	}
	return &CommsMonitor{
		nc:      p.Conn,
		subject: subject,
		queue:   newMsgQueue(p.MaxMsgs),
		text:    newTextBuffer(p.MaxLines),
	}
}

// Enable subscribes to the console subject and starts buffering messages.
func (m *CommsMonitor) Enable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled {
		return nil
	}

	sub, err := m.nc.Subscribe(m.subject, func(msg *comms.Msg) {
		var payload map[string]any
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			slog.Warn(fmt.Sprintf("%s - discarding undecodable console message: %v", commsLogPrefix, err))
			return
		}
		m.queue.push(payload)
		m.text.add(msgText(payload))
	})
	if err != nil {
		return fmt.Errorf("%s - failed to subscribe to %s: %w", commsLogPrefix, m.subject, err)
	}

	m.sub = sub
	m.enabled = true
	slog.Debug(fmt.Sprintf("%s - console monitoring enabled on %s", commsLogPrefix, m.subject))
	return nil
}

// Disable stops collection. Buffered messages remain readable.
func (m *CommsMonitor) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	if err := m.sub.Unsubscribe(); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to unsubscribe: %v", commsLogPrefix, err))
	}
	m.sub = nil
	m.enabled = false
}

// Enabled reports whether collection is running.
func (m *CommsMonitor) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Clear discards buffered messages and accumulated text.
func (m *CommsMonitor) Clear() {
	m.queue.clear()
	m.text.clear()
}

// NextMsg returns the next buffered console message.
func (m *CommsMonitor) NextMsg(ctx context.Context) (map[string]any, error) {
	return m.queue.pop(ctx)
}

// Text returns the accumulated console text.
func (m *CommsMonitor) Text() string {
	return m.text.text()
}
