package client

import "context"

// HistoryGet returns the list of completed items.
func (c *Client) HistoryGet(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "history_get", nil)
}

// HistoryClear removes all items from the history.
func (c *Client) HistoryClear(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "history_clear", nil)
}
