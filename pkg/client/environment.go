package client

import "context"

// EnvironmentOpen requests the worker environment to open. The operation is
// asynchronous; use WaitForEnvironmentOpen to block until it completes.
func (c *Client) EnvironmentOpen(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "environment_open", nil)
}

// EnvironmentClose requests an orderly shutdown of the worker environment.
func (c *Client) EnvironmentClose(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "environment_close", nil)
}

// EnvironmentDestroy forcefully terminates the worker environment. Intended
// for recovery from an unresponsive worker.
func (c *Client) EnvironmentDestroy(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "environment_destroy", nil)
}
