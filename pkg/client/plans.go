package client

import "context"

// PlansAllowed returns the plans allowed for the client's user group.
func (c *Client) PlansAllowed(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "plans_allowed", nil)
}

// DevicesAllowed returns the devices allowed for the client's user group.
func (c *Client) DevicesAllowed(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "devices_allowed", nil)
}

// PlansExisting returns all plans existing in the worker environment.
func (c *Client) PlansExisting(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "plans_existing", nil)
}

// DevicesExisting returns all devices existing in the worker environment.
func (c *Client) DevicesExisting(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "devices_existing", nil)
}
