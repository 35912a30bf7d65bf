package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beamtime/remclient/pkg/apierr"
	"github.com/beamtime/remclient/pkg/item"
	"github.com/beamtime/remclient/pkg/methods"
)

// fakeTransport records calls and answers from a scripted handler.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []methods.Invocation
	params  []map[string]any
	handler func(inv methods.Invocation, params map[string]any) (map[string]any, error)
}

func (f *fakeTransport) Call(_ context.Context, inv methods.Invocation, params map[string]any) (map[string]any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.params = append(f.params, params)
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		return handler(inv, params)
	}
	return map[string]any{"success": true, "msg": ""}, nil
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) lastParams() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.params) == 0 {
		return nil
	}
	return f.params[len(f.params)-1]
}

func newTestClient(protocol Protocol, tr *fakeTransport) *Client {
	var registry methods.Registry
	if protocol == ProtocolComms {
		registry = methods.NewCommsRegistry()
	} else {
		registry = methods.NewRESTRegistry()
	}
	return NewClient(NewClientParams{
		Protocol:         protocol,
		Registry:         registry,
		Transport:        tr,
		StatusExpiration: 100 * time.Millisecond,
		PollingPeriod:    10 * time.Millisecond,
	})
}

func statusHandler(fields map[string]any) func(methods.Invocation, map[string]any) (map[string]any, error) {
	return func(inv methods.Invocation, _ map[string]any) (map[string]any, error) {
		if inv.Method == "status" {
			return fields, nil
		}
		return map[string]any{"success": true, "msg": ""}, nil
	}
}

func TestStatus_ServedFromCache(t *testing.T) {
	tr := &fakeTransport{handler: statusHandler(map[string]any{"manager_state": "idle"})}
	c := newTestClient(ProtocolHTTP, tr)

	ctx := context.Background()
	if _, err := c.Status(ctx, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := c.Status(ctx, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.callCount() != 1 {
		t.Errorf("expected one transport call, got %d", tr.callCount())
	}
	if snap.ManagerState() != "idle" {
		t.Errorf("manager_state = %q", snap.ManagerState())
	}

	if _, err := c.Status(ctx, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.callCount() != 2 {
		t.Errorf("expected forced reload to fetch, got %d calls", tr.callCount())
	}
}

func TestSendOp_AttachesUserInfoOnComms(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(ProtocolComms, tr)

	it := item.NewPlan("count", "det1")
	if _, err := c.QueueItemAdd(context.Background(), it, AddItemParams{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := tr.lastParams()
	if params["user"] != DefaultUser {
		t.Errorf("user = %v", params["user"])
	}
	if params["user_group"] != DefaultUserGroup {
		t.Errorf("user_group = %v", params["user_group"])
	}
	if _, ok := params["item"]; !ok {
		t.Error("item payload missing")
	}
}

func TestSendOp_UserGroupOnlyForAllowedLists(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(ProtocolComms, tr)
	c.SetUserGroup("beamline")

	if _, err := c.PlansAllowed(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := tr.lastParams()
	if params["user_group"] != "beamline" {
		t.Errorf("user_group = %v", params["user_group"])
	}
	if _, ok := params["user"]; ok {
		t.Error("user must not be attached to plans_allowed")
	}
}

func TestSendOp_NoUserInfoOnHTTP(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(ProtocolHTTP, tr)

	it := item.NewPlan("count")
	if _, err := c.QueueItemAdd(context.Background(), it, AddItemParams{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := tr.lastParams()
	if _, ok := params["user"]; ok {
		t.Error("http transport must not attach user info")
	}
	if _, ok := params["user_group"]; ok {
		t.Error("http transport must not attach user group")
	}
}

func TestQueueItemAdd_InvalidItemMakesNoCall(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(ProtocolHTTP, tr)

	if _, err := c.QueueItemAdd(context.Background(), item.NewPlan(""), AddItemParams{}); err == nil {
		t.Fatal("expected validation error")
	}
	if tr.callCount() != 0 {
		t.Errorf("expected zero transport calls, got %d", tr.callCount())
	}
}

func TestQueueItemMove_PlacementParams(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(ProtocolHTTP, tr)

	_, err := c.QueueItemMove(context.Background(), MoveItemParams{UID: "uid-1", DestPos: "front"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := tr.lastParams()
	if params["uid"] != "uid-1" || params["pos_dest"] != "front" {
		t.Errorf("params = %v", params)
	}
	if _, ok := params["pos"]; ok {
		t.Error("unset pos must be omitted")
	}
	if _, ok := params["before_uid"]; ok {
		t.Error("unset before_uid must be omitted")
	}
}

func TestSend_UnknownMethod(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(ProtocolHTTP, tr)

	_, err := c.Send(context.Background(), "queue_item_add", nil)
	var unknownErr *apierr.UnknownMethodError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownMethodError, got %v", err)
	}
	if tr.callCount() != 0 {
		t.Errorf("expected zero transport calls, got %d", tr.callCount())
	}
}

func TestSetRequestFailExceptionsEnabled(t *testing.T) {
	tr := &fakeTransport{handler: func(_ methods.Invocation, _ map[string]any) (map[string]any, error) {
		return map[string]any{"success": false, "msg": "the queue is empty"}, nil
	}}
	c := newTestClient(ProtocolHTTP, tr)

	_, err := c.QueueStart(context.Background())
	var failedErr *apierr.RequestFailedError
	if !errors.As(err, &failedErr) {
		t.Fatalf("expected RequestFailedError, got %v", err)
	}

	c.SetRequestFailExceptionsEnabled(false)
	resp, err := c.QueueStart(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp["success"] != false {
		t.Errorf("expected rejection response returned as data, got %v", resp)
	}
}

func TestCheckServerVersion(t *testing.T) {
	tr := &fakeTransport{handler: statusHandler(map[string]any{
		"manager_state": "idle",
		"msg":           "RE Manager v0.0.20",
	})}
	c := newTestClient(ProtocolHTTP, tr)

	if err := c.CheckServerVersion(context.Background(), ">=0.0.18"); err != nil {
		t.Errorf("expected version check to pass: %v", err)
	}
	if err := c.CheckServerVersion(context.Background(), ">=1.0.0"); err == nil {
		t.Error("expected version check to fail")
	}
}

func TestWaitForCompletedTask(t *testing.T) {
	var mu sync.Mutex
	statusCalls := 0
	tr := &fakeTransport{handler: func(inv methods.Invocation, _ map[string]any) (map[string]any, error) {
		mu.Lock()
		defer mu.Unlock()
		switch inv.Method {
		case "task_status":
			statusCalls++
			if statusCalls < 2 {
				return map[string]any{"success": true, "status": "running"}, nil
			}
			return map[string]any{"success": true, "status": "completed"}, nil
		case "task_result":
			return map[string]any{"success": true, "result": map[string]any{"return_value": 42.0}}, nil
		}
		return map[string]any{"success": true}, nil
	}}
	c := newTestClient(ProtocolHTTP, tr)

	resp, err := c.WaitForCompletedTask(context.Background(), "task-1", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := resp["result"]; !ok {
		t.Errorf("expected task result, got %v", resp)
	}
}

func TestWaitForCompletedTask_Timeout(t *testing.T) {
	tr := &fakeTransport{handler: func(inv methods.Invocation, _ map[string]any) (map[string]any, error) {
		return map[string]any{"success": true, "status": "running"}, nil
	}}
	c := newTestClient(ProtocolHTTP, tr)

	_, err := c.WaitForCompletedTask(context.Background(), "task-1", 50*time.Millisecond)
	var timeoutErr *apierr.WaitTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected WaitTimeoutError, got %v", err)
	}
}

func TestClose_DisablesConsoleMonitor(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(ProtocolHTTP, tr)
	if err := c.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
