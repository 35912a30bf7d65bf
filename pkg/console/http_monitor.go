package console

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const httpLogPrefix = "console:http"

// FetchFunc requests accumulated console output starting after lastUID. The
// response carries "console_output_msgs" and "last_msg_uid".
type FetchFunc func(ctx context.Context, lastUID string) (map[string]any, error)

// HTTPMonitor polls the manager's console output endpoint and buffers the
// returned messages. The server keeps a cursor per client via the last
// message UID.
type HTTPMonitor struct {
	fetch  FetchFunc
	period time.Duration

	mu      sync.Mutex
	enabled bool
	stopCh  chan struct{}
	done    chan struct{}
	lastUID string

	queue *msgQueue
	text  *textBuffer
}

// HTTPMonitorParams holds parameters for NewHTTPMonitor.
type HTTPMonitorParams struct {
	Fetch FetchFunc
	// PollPeriod is the delay between polls; defaults to one second.
	PollPeriod time.Duration
	// MaxMsgs caps the message buffer; the oldest message is dropped on
	// overflow.
	MaxMsgs int
	// MaxLines caps the accumulated text buffer.
	MaxLines int
}

// NewHTTPMonitor creates a disabled polling console monitor.
func NewHTTPMonitor(p HTTPMonitorParams) *HTTPMonitor {
	period := p.PollPeriod
	if period <= 0 {
		period = time.Second
	}
	return &HTTPMonitor{
		fetch:  p.Fetch,
		period: period,
		queue:  newMsgQueue(p.MaxMsgs),
		text:   newTextBuffer(p.MaxLines),
	}
}

// Enable starts the polling loop.
func (m *HTTPMonitor) Enable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled {
		return nil
	}
	m.stopCh = make(chan struct{})
	m.done = make(chan struct{})
	m.enabled = true
	go m.pollLoop(m.stopCh, m.done)
	slog.Debug(fmt.Sprintf("%s - console polling enabled, period=%s", httpLogPrefix, m.period))
	return nil
}

// Disable stops the polling loop and waits for it to exit. Buffered messages
// remain readable.
func (m *HTTPMonitor) Disable() {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	close(m.stopCh)
	done := m.done
	m.enabled = false
	m.mu.Unlock()

	<-done
}

// Enabled reports whether the polling loop is running.
func (m *HTTPMonitor) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Clear discards buffered messages and accumulated text.
func (m *HTTPMonitor) Clear() {
	m.queue.clear()
	m.text.clear()
}

// NextMsg returns the next buffered console message.
func (m *HTTPMonitor) NextMsg(ctx context.Context) (map[string]any, error) {
	return m.queue.pop(ctx)
}

// Text returns the accumulated console text.
func (m *HTTPMonitor) Text() string {
	return m.text.text()
}

func (m *HTTPMonitor) pollLoop(stopCh, done chan struct{}) {
	defer close(done)
	for {
		m.pollOnce()
		select {
		case <-stopCh:
			return
		case <-time.After(m.period):
		}
	}
}

func (m *HTTPMonitor) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), m.period)
	defer cancel()

	m.mu.Lock()
	lastUID := m.lastUID
	m.mu.Unlock()

	resp, err := m.fetch(ctx, lastUID)
	if err != nil {
		// Poll failures are transient; the next cycle retries.
		slog.Debug(fmt.Sprintf("%s - console poll failed: %v", httpLogPrefix, err))
		return
	}

	if uid, ok := resp["last_msg_uid"].(string); ok && uid != "" {
		m.mu.Lock()
		m.lastUID = uid
		m.mu.Unlock()
	}

	msgs, _ := resp["console_output_msgs"].([]any)
	for _, raw := range msgs {
		msg, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		m.queue.push(msg)
		m.text.add(msgText(msg))
	}
}
