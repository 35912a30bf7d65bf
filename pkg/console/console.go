// Package console consumes the manager's console output stream.
//
// The monitor contract is enable/disable/clear/next-message; everything else
// about console output is external to the client core. Two variants exist:
// a comms subscription and a REST polling loop.
package console

import (
	"context"
	"sync"

	"github.com/beamtime/remclient/pkg/apierr"
)

// Monitor is the console monitor contract shared by both variants.
type Monitor interface {
	// Enable starts collecting console messages.
	Enable() error
	// Disable stops collection. Buffered messages remain readable.
	Disable()
	// Enabled reports whether collection is running.
	Enabled() bool
	// Clear discards all buffered messages and text.
	Clear()
	// NextMsg returns the next buffered message, blocking until one arrives
	// or the context expires.
	NextMsg(ctx context.Context) (map[string]any, error)
	// Text returns the accumulated console text, capped at the configured
	// number of lines.
	Text() string
}

// msgQueue is a bounded FIFO of console messages. When full, the oldest
// message is dropped.
type msgQueue struct {
	mu    sync.Mutex
	msgs  []map[string]any
	max   int
	ready chan struct{}
}

func newMsgQueue(max int) *msgQueue {
	if max <= 0 {
		max = 10000
	}
	return &msgQueue{max: max, ready: make(chan struct{}, 1)}
}

func (q *msgQueue) push(msg map[string]any) {
	q.mu.Lock()
	q.msgs = append(q.msgs, msg)
	if len(q.msgs) > q.max {
		q.msgs = q.msgs[1:]
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *msgQueue) pop(ctx context.Context) (map[string]any, error) {
	for {
		q.mu.Lock()
		if len(q.msgs) > 0 {
			msg := q.msgs[0]
			q.msgs = q.msgs[1:]
			q.mu.Unlock()
			return msg, nil
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-ctx.Done():
			return nil, &apierr.RequestTimeoutError{
				Msg:     "no console messages received",
				Request: apierr.Request{Method: "console_monitor_next_msg"},
			}
		}
	}
}

func (q *msgQueue) clear() {
	q.mu.Lock()
	q.msgs = nil
	q.mu.Unlock()
}

// textBuffer accumulates console text lines up to a cap.
type textBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func newTextBuffer(max int) *textBuffer {
	if max <= 0 {
		max = 1000
	}
	return &textBuffer{max: max}
}

func (b *textBuffer) add(text string) {
	if text == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			if i > start || i < len(text) {
				b.lines = append(b.lines, text[start:i])
			}
			start = i + 1
		}
	}
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
}

func (b *textBuffer) text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := ""
	for i, line := range b.lines {
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	return out
}

func (b *textBuffer) clear() {
	b.mu.Lock()
	b.lines = nil
	b.mu.Unlock()
}

// msgText extracts the text payload of one console message.
func msgText(msg map[string]any) string {
	v, _ := msg["msg"].(string)
	return v
}
