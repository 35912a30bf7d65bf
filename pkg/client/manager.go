package client

import "context"

// Manager stop options.
const (
	StopSafeOn  = "safe_on"
	StopSafeOff = "safe_off"
)

// ManagerStop requests an orderly shutdown of the manager process. Option
// "safe_on" (default on the server) waits for the manager to become idle
// first; "safe_off" stops unconditionally.
func (c *Client) ManagerStop(ctx context.Context, option string) (map[string]any, error) {
	params := map[string]any{}
	addParam(params, "option", option)
	return c.sendOp(ctx, "manager_stop", params)
}

// ManagerKill asks the manager event loop to lock up. Test-only; exists to
// exercise watchdog recovery and is never used in production.
func (c *Client) ManagerKill(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "manager_kill", nil)
}
