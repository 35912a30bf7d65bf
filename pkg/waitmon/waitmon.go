// Package waitmon implements the cancellable, shareable monitor used by
// wait-for-condition operations.
//
// A monitor may be shared by reference between concurrent holders: one
// goroutine runs the polling loop while another observes progress or cancels
// the wait. All state is mutex-guarded; cancellation is cooperative and takes
// effect on the next poll tick, never mid-request.
package waitmon

import (
	"sync"
	"time"

	"github.com/beamtime/remclient/pkg/status"
)

// State is the monitor lifecycle state.
type State int

const (
	StateIdle State = iota
	StateWaiting
	StateCompleted
	StateTimedOut
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed_out"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Monitor tracks one wait operation. The polling loop is owned by the caller
// of WaitForCondition, not by the monitor itself.
type Monitor struct {
	mu              sync.Mutex
	state           State
	timeStart       time.Time
	timeout         time.Duration
	cancelled       bool
	lastStatus      *status.Snapshot
	cancelCallbacks []func()

	cancelCh   chan struct{}
	cancelOnce sync.Once
}

// New creates an idle monitor.
func New() *Monitor {
	return &Monitor{cancelCh: make(chan struct{})}
}

// Start transitions the monitor to Waiting and records the deadline.
// A monitor that was cancelled stays cancelled across restarts.
func (m *Monitor) Start(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateWaiting
	m.timeStart = time.Now()
	m.timeout = timeout
}

// SetTimeout modifies the timeout of the current operation. The deadline is
// recomputed from the original start time.
func (m *Monitor) SetTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
}

// Timeout returns the current timeout.
func (m *Monitor) Timeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeout
}

// TimeStart is when the operation started.
func (m *Monitor) TimeStart() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeStart
}

// TimeElapsed is the time since the operation started.
func (m *Monitor) TimeElapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timeStart.IsZero() {
		return 0
	}
	return time.Since(m.timeStart)
}

// Deadline returns the absolute deadline of the current operation.
func (m *Monitor) Deadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeStart.Add(m.timeout)
}

// Expired reports whether the deadline has passed.
func (m *Monitor) Expired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.timeStart.IsZero() && time.Since(m.timeStart) >= m.timeout
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Finish records a terminal state. Only a Waiting monitor transitions.
func (m *Monitor) Finish(terminal State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateWaiting {
		return
	}
	m.state = terminal
}

// Cancel requests cancellation of the in-flight wait. It may be called from
// any holder and is idempotent; the polling loop observes it on the next
// tick. Callbacks registered with AddCancelCallback run once.
func (m *Monitor) Cancel() {
	m.cancelOnce.Do(func() {
		m.mu.Lock()
		callbacks := m.cancelCallbacks
		m.cancelCallbacks = nil
		m.cancelled = true
		m.mu.Unlock()

		for _, cb := range callbacks {
			func() {
				defer func() { recover() }()
				cb()
			}()
		}
		close(m.cancelCh)
	})
}

// IsCancelled reports whether Cancel was invoked.
func (m *Monitor) IsCancelled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelled
}

// Cancelled returns a channel closed when the monitor is cancelled, so the
// polling loop can interrupt its sleep.
func (m *Monitor) Cancelled() <-chan struct{} {
	return m.cancelCh
}

// AddCancelCallback registers a callback invoked once before cancellation
// completes. Callbacks take no parameters; panics are swallowed.
func (m *Monitor) AddCancelCallback(cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCallbacks = append(m.cancelCallbacks, cb)
}

// RecordStatus shares the freshest snapshot with all holders of the monitor,
// so co-holders observe polling progress without issuing their own requests.
func (m *Monitor) RecordStatus(s *status.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastStatus = s
}

// LastStatus returns the most recent snapshot recorded by the polling loop,
// or nil before the first poll.
func (m *Monitor) LastStatus() *status.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastStatus
}
