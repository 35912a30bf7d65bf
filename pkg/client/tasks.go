package client

import (
	"context"
	"fmt"
	"time"

	"github.com/beamtime/remclient/pkg/apierr"
	"github.com/beamtime/remclient/pkg/item"
)

// UploadScriptParams holds options for ScriptUpload.
type UploadScriptParams struct {
	Script string
	// UpdateLists recomputes the plan and device lists after the upload.
	UpdateLists *bool
	// UpdateRe replaces the RE and db objects if the script redefines them.
	UpdateRe *bool
	// RunInBackground executes the script in a background thread.
	RunInBackground *bool
}

// ScriptUpload uploads a script into the worker environment. The returned
// response carries the task UID of the upload.
func (c *Client) ScriptUpload(ctx context.Context, p UploadScriptParams) (map[string]any, error) {
	params := map[string]any{"script": p.Script}
	addParam(params, "update_lists", p.UpdateLists)
	addParam(params, "update_re", p.UpdateRe)
	addParam(params, "run_in_background", p.RunInBackground)
	return c.sendOp(ctx, "script_upload", params)
}

// FunctionExecute starts execution of a function item in the worker
// environment. The returned response carries the task UID.
func (c *Client) FunctionExecute(ctx context.Context, it *item.Item, runInBackground *bool) (map[string]any, error) {
	if err := it.Validate(); err != nil {
		return nil, err
	}
	params := map[string]any{"item": it.ToMap()}
	addParam(params, "run_in_background", runInBackground)
	return c.sendOp(ctx, "function_execute", params)
}

// TaskStatus returns the status of one or more tasks started by script
// upload or function execution.
func (c *Client) TaskStatus(ctx context.Context, taskUID string) (map[string]any, error) {
	return c.sendOp(ctx, "task_status", map[string]any{"task_uid": taskUID})
}

// TaskResult returns the result of a completed task.
func (c *Client) TaskResult(ctx context.Context, taskUID string) (map[string]any, error) {
	return c.sendOp(ctx, "task_result", map[string]any{"task_uid": taskUID})
}

// WaitForCompletedTask polls task status until the task completes and then
// returns its result. Timeout 0 uses the default wait timeout; the polling
// period is the client's wait polling period.
func (c *Client) WaitForCompletedTask(ctx context.Context, taskUID string, timeout time.Duration) (map[string]any, error) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	deadline := time.Now().Add(timeout)

	for {
		resp, err := c.TaskStatus(ctx, taskUID)
		if err == nil {
			if state, ok := resp["status"].(string); ok && state == "completed" {
				return c.TaskResult(ctx, taskUID)
			}
		}

		if time.Now().After(deadline) {
			return nil, &apierr.WaitTimeoutError{
				Msg: fmt.Sprintf("task %s did not complete", taskUID),
			}
		}
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, &apierr.WaitTimeoutError{Msg: fmt.Sprintf("task %s did not complete", taskUID)}
			}
			return nil, &apierr.WaitCancelError{}
		case <-time.After(c.PollingPeriod()):
		}
	}
}
