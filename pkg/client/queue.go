package client

import (
	"context"

	"github.com/beamtime/remclient/pkg/item"
)

// QueueGet returns the queue contents and the running item.
func (c *Client) QueueGet(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "queue_get", nil)
}

// QueueStart starts execution of the queue.
func (c *Client) QueueStart(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "queue_start", nil)
}

// QueueStop requests the queue to stop after the current item completes.
func (c *Client) QueueStop(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "queue_stop", nil)
}

// QueueStopCancel cancels a pending queue stop request.
func (c *Client) QueueStopCancel(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "queue_stop_cancel", nil)
}

// QueueClear removes all items from the queue.
func (c *Client) QueueClear(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "queue_clear", nil)
}

// QueueModeSet changes queue mode flags (e.g. {"loop": true}).
func (c *Client) QueueModeSet(ctx context.Context, mode map[string]any) (map[string]any, error) {
	return c.sendOp(ctx, "queue_mode_set", map[string]any{"mode": mode})
}

// AddItemParams holds placement options for QueueItemAdd. At most one of
// Pos, BeforeUID and AfterUID may be set; all empty appends to the back.
type AddItemParams struct {
	// Pos is an integer index or the string "front"/"back".
	Pos       any
	BeforeUID string
	AfterUID  string
}

// QueueItemAdd validates and submits one item to the queue.
func (c *Client) QueueItemAdd(ctx context.Context, it *item.Item, p AddItemParams) (map[string]any, error) {
	if err := it.Validate(); err != nil {
		return nil, err
	}
	params := map[string]any{"item": it.ToMap()}
	addParam(params, "pos", p.Pos)
	addParam(params, "before_uid", p.BeforeUID)
	addParam(params, "after_uid", p.AfterUID)
	return c.sendOp(ctx, "queue_item_add", params)
}

// QueueItemAddBatch validates and submits a batch of items.
func (c *Client) QueueItemAddBatch(ctx context.Context, items []*item.Item, p AddItemParams) (map[string]any, error) {
	wire := make([]any, 0, len(items))
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, err
		}
		wire = append(wire, it.ToMap())
	}
	params := map[string]any{"items": wire}
	addParam(params, "pos", p.Pos)
	addParam(params, "before_uid", p.BeforeUID)
	addParam(params, "after_uid", p.AfterUID)
	return c.sendOp(ctx, "queue_item_add_batch", params)
}

// GetItemParams selects the item for QueueItemGet and QueueItemRemove.
// Empty selects the item at the back of the queue.
type GetItemParams struct {
	// Pos is an integer index or the string "front"/"back".
	Pos any
	UID string
}

// QueueItemGet returns one queue item without removing it.
func (c *Client) QueueItemGet(ctx context.Context, p GetItemParams) (map[string]any, error) {
	params := map[string]any{}
	addParam(params, "pos", p.Pos)
	addParam(params, "uid", p.UID)
	return c.sendOp(ctx, "queue_item_get", params)
}

// UpdateItemParams holds options for QueueItemUpdate.
type UpdateItemParams struct {
	// Replace generates a new item UID instead of keeping the existing one.
	Replace *bool
}

// QueueItemUpdate replaces an existing queue item, matched by its UID.
func (c *Client) QueueItemUpdate(ctx context.Context, it *item.Item, p UpdateItemParams) (map[string]any, error) {
	if err := it.Validate(); err != nil {
		return nil, err
	}
	params := map[string]any{"item": it.ToMap()}
	addParam(params, "replace", p.Replace)
	return c.sendOp(ctx, "queue_item_update", params)
}

// QueueItemRemove removes one queue item.
func (c *Client) QueueItemRemove(ctx context.Context, p GetItemParams) (map[string]any, error) {
	params := map[string]any{}
	addParam(params, "pos", p.Pos)
	addParam(params, "uid", p.UID)
	return c.sendOp(ctx, "queue_item_remove", params)
}

// RemoveBatchParams holds options for QueueItemRemoveBatch.
type RemoveBatchParams struct {
	UIDs []string
	// IgnoreMissing suppresses the failure when some UIDs are not found.
	IgnoreMissing *bool
}

// QueueItemRemoveBatch removes a batch of queue items by UID.
func (c *Client) QueueItemRemoveBatch(ctx context.Context, p RemoveBatchParams) (map[string]any, error) {
	params := map[string]any{"uids": p.UIDs}
	addParam(params, "ignore_missing", p.IgnoreMissing)
	return c.sendOp(ctx, "queue_item_remove_batch", params)
}

// MoveItemParams selects the source and destination for QueueItemMove.
// Exactly one of Pos and UID selects the source; exactly one of DestPos,
// BeforeUID and AfterUID selects the destination.
type MoveItemParams struct {
	Pos       any
	UID       string
	DestPos   any
	BeforeUID string
	AfterUID  string
}

// QueueItemMove moves one queue item to a new position.
func (c *Client) QueueItemMove(ctx context.Context, p MoveItemParams) (map[string]any, error) {
	params := map[string]any{}
	addParam(params, "pos", p.Pos)
	addParam(params, "uid", p.UID)
	addParam(params, "pos_dest", p.DestPos)
	addParam(params, "before_uid", p.BeforeUID)
	addParam(params, "after_uid", p.AfterUID)
	return c.sendOp(ctx, "queue_item_move", params)
}

// MoveBatchParams selects the items and destination for QueueItemMoveBatch.
type MoveBatchParams struct {
	UIDs      []string
	DestPos   any
	BeforeUID string
	AfterUID  string
	// Reorder keeps the batch in queue order instead of UID-list order.
	Reorder *bool
}

// QueueItemMoveBatch moves a batch of queue items to a new position.
func (c *Client) QueueItemMoveBatch(ctx context.Context, p MoveBatchParams) (map[string]any, error) {
	params := map[string]any{"uids": p.UIDs}
	addParam(params, "pos_dest", p.DestPos)
	addParam(params, "before_uid", p.BeforeUID)
	addParam(params, "after_uid", p.AfterUID)
	addParam(params, "reorder", p.Reorder)
	return c.sendOp(ctx, "queue_item_move_batch", params)
}

// QueueItemExecute runs one item immediately, bypassing the queue. The queue
// must be idle and the environment open.
func (c *Client) QueueItemExecute(ctx context.Context, it *item.Item) (map[string]any, error) {
	if err := it.Validate(); err != nil {
		return nil, err
	}
	return c.sendOp(ctx, "queue_item_execute", map[string]any{"item": it.ToMap()})
}
