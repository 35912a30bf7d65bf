package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/beamtime/remclient/pkg/apierr"
	"github.com/beamtime/remclient/pkg/status"
	"github.com/beamtime/remclient/pkg/waitmon"
)

const waitLogPrefix = "client:wait"

// DefaultWaitTimeout bounds wait operations when no timeout is given.
const DefaultWaitTimeout = 600 * time.Second

// WaitParams holds parameters for WaitForCondition.
type WaitParams struct {
	// Predicate is evaluated against each polled status snapshot; the wait
	// completes when it returns true.
	Predicate func(*status.Snapshot) bool
	// Timeout bounds the wait; 0 uses DefaultWaitTimeout.
	Timeout time.Duration
	// Monitor is an optional shared monitor. Co-holders may observe progress
	// through it or cancel the wait; nil creates a private one.
	Monitor *waitmon.Monitor
	// PollingPeriod overrides the client's polling period for this wait.
	PollingPeriod time.Duration
}

// WaitForCondition polls the manager status until the predicate holds.
//
// The condition is evaluated after every poll and takes precedence over the
// deadline: a wait whose condition becomes true on the final poll completes
// even if the deadline passes during that poll. Poll failures are tolerated
// and retried on the next tick. Cancellation, through the monitor or the
// context, takes effect within one polling period and never interrupts an
// in-flight request.
func (c *Client) WaitForCondition(ctx context.Context, p WaitParams) error {
	if p.Predicate == nil {
		return fmt.Errorf("%s - predicate is required", waitLogPrefix)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	period := p.PollingPeriod
	if period <= 0 {
		period = c.PollingPeriod()
	}

	monitor := p.Monitor
	if monitor == nil {
		monitor = waitmon.New()
	}
	if monitor.IsCancelled() {
		return &apierr.WaitCancelError{}
	}
	monitor.Start(timeout)

	for {
		snap, err := c.Status(ctx, true)
		if err == nil {
			monitor.RecordStatus(snap)
			if p.Predicate(snap) {
				monitor.Finish(waitmon.StateCompleted)
				return nil
			}
		} else {
			slog.Debug(fmt.Sprintf("%s - status poll failed: %v", waitLogPrefix, err))
		}

		if monitor.IsCancelled() {
			monitor.Finish(waitmon.StateCancelled)
			return &apierr.WaitCancelError{}
		}
		if monitor.Expired() {
			monitor.Finish(waitmon.StateTimedOut)
			return &apierr.WaitTimeoutError{
				Msg: fmt.Sprintf("condition not satisfied after %s", monitor.Timeout()),
			}
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				monitor.Finish(waitmon.StateTimedOut)
				return &apierr.WaitTimeoutError{Msg: "context deadline exceeded"}
			}
			monitor.Finish(waitmon.StateCancelled)
			return &apierr.WaitCancelError{}
		case <-monitor.Cancelled():
			monitor.Finish(waitmon.StateCancelled)
			return &apierr.WaitCancelError{}
		case <-time.After(period):
		}
	}
}

// WaitForIdle blocks until the manager state is "idle".
func (c *Client) WaitForIdle(ctx context.Context, p WaitParams) error {
	p.Predicate = func(s *status.Snapshot) bool {
		return s.ManagerState() == "idle"
	}
	return c.WaitForCondition(ctx, p)
}

// WaitForIdleOrPaused blocks until the manager state is "idle" or "paused".
func (c *Client) WaitForIdleOrPaused(ctx context.Context, p WaitParams) error {
	p.Predicate = func(s *status.Snapshot) bool {
		state := s.ManagerState()
		return state == "idle" || state == "paused"
	}
	return c.WaitForCondition(ctx, p)
}

// WaitForEnvironmentOpen blocks until the worker environment is open and the
// manager is idle again.
func (c *Client) WaitForEnvironmentOpen(ctx context.Context, p WaitParams) error {
	p.Predicate = func(s *status.Snapshot) bool {
		return s.WorkerEnvironmentExists() && s.ManagerState() == "idle"
	}
	return c.WaitForCondition(ctx, p)
}

// WaitForEnvironmentClose blocks until the worker environment is closed.
func (c *Client) WaitForEnvironmentClose(ctx context.Context, p WaitParams) error {
	p.Predicate = func(s *status.Snapshot) bool {
		return !s.WorkerEnvironmentExists() && s.ManagerState() == "idle"
	}
	return c.WaitForCondition(ctx, p)
}
