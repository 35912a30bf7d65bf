package client

import "context"

// Pause options for RePause.
const (
	PauseDeferred  = "deferred"
	PauseImmediate = "immediate"
)

// RePause pauses the running plan. Option is "deferred" (pause at the next
// checkpoint) or "immediate"; empty defaults to deferred on the server.
func (c *Client) RePause(ctx context.Context, option string) (map[string]any, error) {
	params := map[string]any{}
	addParam(params, "option", option)
	return c.sendOp(ctx, "re_pause", params)
}

// ReResume resumes a paused plan.
func (c *Client) ReResume(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "re_resume", nil)
}

// ReStop stops a paused plan, marking it successful.
func (c *Client) ReStop(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "re_stop", nil)
}

// ReAbort aborts a paused plan, marking it failed.
func (c *Client) ReAbort(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "re_abort", nil)
}

// ReHalt halts a paused plan without orderly cleanup.
func (c *Client) ReHalt(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "re_halt", nil)
}

// Run list options for ReRuns.
const (
	RunsActive = "active"
	RunsOpen   = "open"
	RunsClosed = "closed"
)

// ReRuns returns the list of active, open or closed runs of the executing
// plan. Empty option defaults to active on the server.
func (c *Client) ReRuns(ctx context.Context, option string) (map[string]any, error) {
	params := map[string]any{}
	addParam(params, "option", option)
	return c.sendOp(ctx, "re_runs", params)
}
