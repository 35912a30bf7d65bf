package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beamtime/remclient/pkg/apierr"
	"github.com/beamtime/remclient/pkg/methods"
	"github.com/beamtime/remclient/pkg/status"
	"github.com/beamtime/remclient/pkg/waitmon"
)

// sequenceTransport serves status responses from a fixed sequence, repeating
// the last entry once exhausted.
func sequenceTransport(states []string) *fakeTransport {
	var mu sync.Mutex
	i := 0
	return &fakeTransport{handler: func(inv methods.Invocation, _ map[string]any) (map[string]any, error) {
		mu.Lock()
		defer mu.Unlock()
		state := states[i]
		if i < len(states)-1 {
			i++
		}
		return map[string]any{"manager_state": state}, nil
	}}
}

func TestWaitForIdle_CompletesWhenConditionFlips(t *testing.T) {
	tr := sequenceTransport([]string{"executing_queue", "executing_queue", "idle"})
	c := newTestClient(ProtocolHTTP, tr)

	monitor := waitmon.New()
	err := c.WaitForIdle(context.Background(), WaitParams{
		Timeout: time.Second,
		Monitor: monitor,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if monitor.State() != waitmon.StateCompleted {
		t.Errorf("monitor state = %s", monitor.State())
	}
	if tr.callCount() != 3 {
		t.Errorf("expected three polls, got %d", tr.callCount())
	}
	if last := monitor.LastStatus(); last == nil || last.ManagerState() != "idle" {
		t.Errorf("last status not shared with monitor: %v", last)
	}
}

func TestWaitForCondition_Timeout(t *testing.T) {
	tr := sequenceTransport([]string{"executing_queue"})
	c := newTestClient(ProtocolHTTP, tr)

	monitor := waitmon.New()
	err := c.WaitForIdle(context.Background(), WaitParams{
		Timeout: 50 * time.Millisecond,
		Monitor: monitor,
	})
	var timeoutErr *apierr.WaitTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected WaitTimeoutError, got %v", err)
	}
	if monitor.State() != waitmon.StateTimedOut {
		t.Errorf("monitor state = %s", monitor.State())
	}
}

func TestWaitForCondition_ConditionWinsOverDeadline(t *testing.T) {
	// The condition holds on the very first poll; the wait must complete even
	// with a deadline that has effectively already passed.
	tr := sequenceTransport([]string{"idle"})
	c := newTestClient(ProtocolHTTP, tr)

	err := c.WaitForIdle(context.Background(), WaitParams{Timeout: time.Nanosecond})
	if err != nil {
		t.Fatalf("expected completion, got %v", err)
	}
}

func TestWaitForCondition_CancelledByCoHolder(t *testing.T) {
	tr := sequenceTransport([]string{"executing_queue"})
	c := newTestClient(ProtocolHTTP, tr)

	monitor := waitmon.New()
	go func() {
		time.Sleep(30 * time.Millisecond)
		monitor.Cancel()
	}()

	err := c.WaitForIdle(context.Background(), WaitParams{
		Timeout: 5 * time.Second,
		Monitor: monitor,
	})
	var cancelErr *apierr.WaitCancelError
	if !errors.As(err, &cancelErr) {
		t.Fatalf("expected WaitCancelError, got %v", err)
	}
	if monitor.State() != waitmon.StateCancelled {
		t.Errorf("monitor state = %s", monitor.State())
	}
}

func TestWaitForCondition_PreCancelledMonitor(t *testing.T) {
	tr := sequenceTransport([]string{"idle"})
	c := newTestClient(ProtocolHTTP, tr)

	monitor := waitmon.New()
	monitor.Cancel()

	err := c.WaitForIdle(context.Background(), WaitParams{Monitor: monitor})
	var cancelErr *apierr.WaitCancelError
	if !errors.As(err, &cancelErr) {
		t.Fatalf("expected WaitCancelError, got %v", err)
	}
	if tr.callCount() != 0 {
		t.Errorf("expected zero polls for a cancelled monitor, got %d", tr.callCount())
	}
}

func TestWaitForCondition_ContextCancel(t *testing.T) {
	tr := sequenceTransport([]string{"executing_queue"})
	c := newTestClient(ProtocolHTTP, tr)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := c.WaitForIdle(ctx, WaitParams{Timeout: 5 * time.Second})
	var cancelErr *apierr.WaitCancelError
	if !errors.As(err, &cancelErr) {
		t.Fatalf("expected WaitCancelError, got %v", err)
	}
}

func TestWaitForCondition_SurvivesPollErrors(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	tr := &fakeTransport{handler: func(_ methods.Invocation, _ map[string]any) (map[string]any, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return nil, errors.New("manager unavailable")
		}
		return map[string]any{"manager_state": "idle"}, nil
	}}
	c := newTestClient(ProtocolHTTP, tr)

	err := c.WaitForIdle(context.Background(), WaitParams{Timeout: time.Second})
	if err != nil {
		t.Fatalf("expected completion after transient failure, got %v", err)
	}
}

func TestWaitForCondition_RequiresPredicate(t *testing.T) {
	tr := sequenceTransport([]string{"idle"})
	c := newTestClient(ProtocolHTTP, tr)

	if err := c.WaitForCondition(context.Background(), WaitParams{}); err == nil {
		t.Fatal("expected error for missing predicate")
	}
}

func TestWaitForEnvironmentOpen(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	tr := &fakeTransport{handler: func(_ methods.Invocation, _ map[string]any) (map[string]any, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 2 {
			return map[string]any{"manager_state": "creating_environment", "worker_environment_exists": false}, nil
		}
		return map[string]any{"manager_state": "idle", "worker_environment_exists": true}, nil
	}}
	c := newTestClient(ProtocolHTTP, tr)

	if err := c.WaitForEnvironmentOpen(context.Background(), WaitParams{Timeout: time.Second}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForCondition_CustomPredicate(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	tr := &fakeTransport{handler: func(_ methods.Invocation, _ map[string]any) (map[string]any, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return map[string]any{"manager_state": "idle", "items_in_queue": float64(calls)}, nil
	}}
	c := newTestClient(ProtocolHTTP, tr)

	err := c.WaitForCondition(context.Background(), WaitParams{
		Predicate: func(s *status.Snapshot) bool { return s.ItemsInQueue() >= 3 },
		Timeout:   time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
