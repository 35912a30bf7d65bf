// Package methods maps logical manager operations to transport invocations.
package methods

import (
	"sort"

	"github.com/beamtime/remclient/pkg/apierr"
)

// Invocation is the resolved, transport-specific shape of a request.
// The comms transport uses only Method; the REST transport uses Verb and Path.
type Invocation struct {
	Method string
	Verb   string
	Path   string
}

// Registry resolves a logical method name into a transport invocation.
type Registry interface {
	Resolve(method string) (Invocation, error)
}

type restRoute struct {
	verb string
	path string
}

// restMethodMap is the versioned wire contract with the HTTP server. It must
// match the server route table exactly, including the test-only manager_kill.
var restMethodMap = map[string]restRoute{
	"ping":                    {"GET", "/api/ping"},
	"status":                  {"GET", "/api/status"},
	"queue_start":             {"POST", "/api/queue/start"},
	"queue_stop":              {"POST", "/api/queue/stop"},
	"queue_stop_cancel":       {"POST", "/api/queue/stop/cancel"},
	"queue_get":               {"GET", "/api/queue/get"},
	"queue_clear":             {"POST", "/api/queue/clear"},
	"queue_mode_set":          {"POST", "/api/queue/mode/set"},
	"queue_item_add":          {"POST", "/api/queue/item/add"},
	"queue_item_add_batch":    {"POST", "/api/queue/item/add/batch"},
	"queue_item_get":          {"GET", "/api/queue/item/get"},
	"queue_item_update":       {"POST", "/api/queue/item/update"},
	"queue_item_remove":       {"POST", "/api/queue/item/remove"},
	"queue_item_remove_batch": {"POST", "/api/queue/item/remove/batch"},
	"queue_item_move":         {"POST", "/api/queue/item/move"},
	"queue_item_move_batch":   {"POST", "/api/queue/item/move/batch"},
	"queue_item_execute":      {"POST", "/api/queue/item/execute"},
	"history_get":             {"GET", "/api/history/get"},
	"history_clear":           {"POST", "/api/history/clear"},
	"environment_open":        {"POST", "/api/environment/open"},
	"environment_close":       {"POST", "/api/environment/close"},
	"environment_destroy":     {"POST", "/api/environment/destroy"},
	"re_pause":                {"POST", "/api/re/pause"},
	"re_resume":               {"POST", "/api/re/resume"},
	"re_stop":                 {"POST", "/api/re/stop"},
	"re_abort":                {"POST", "/api/re/abort"},
	"re_halt":                 {"POST", "/api/re/halt"},
	"re_runs":                 {"POST", "/api/re/runs"},
	"plans_allowed":           {"GET", "/api/plans/allowed"},
	"devices_allowed":         {"GET", "/api/devices/allowed"},
	"plans_existing":          {"GET", "/api/plans/existing"},
	"devices_existing":        {"GET", "/api/devices/existing"},
	"permissions_reload":      {"POST", "/api/permissions/reload"},
	"permissions_get":         {"GET", "/api/permissions/get"},
	"permissions_set":         {"POST", "/api/permissions/set"},
	"script_upload":           {"POST", "/api/script/upload"},
	"function_execute":        {"POST", "/api/function/execute"},
	"task_status":             {"GET", "/api/task/status"},
	"task_result":             {"GET", "/api/task/result"},
	"manager_stop":            {"POST", "/api/manager/stop"},
	"manager_kill":            {"POST", "/api/test/manager/kill"},
}

// RESTRegistry resolves methods into HTTP verb/path pairs.
type RESTRegistry struct{}

// NewRESTRegistry creates a registry for the REST transport.
func NewRESTRegistry() *RESTRegistry { return &RESTRegistry{} }

// Resolve returns the HTTP invocation for a logical method name.
func (r *RESTRegistry) Resolve(method string) (Invocation, error) {
	route, ok := restMethodMap[method]
	if !ok {
		return Invocation{}, &apierr.UnknownMethodError{Method: method}
	}
	return Invocation{Method: method, Verb: route.verb, Path: route.path}, nil
}

// CommsRegistry is an allow-list over the same logical names. The comms wire
// shape has no path concept, so resolution is a no-op mapping.
type CommsRegistry struct{}

// NewCommsRegistry creates a registry for the comms transport.
func NewCommsRegistry() *CommsRegistry { return &CommsRegistry{} }

// Resolve checks the method against the allow-list and returns it unchanged.
func (r *CommsRegistry) Resolve(method string) (Invocation, error) {
	if _, ok := restMethodMap[method]; !ok {
		return Invocation{}, &apierr.UnknownMethodError{Method: method}
	}
	return Invocation{Method: method}, nil
}

// Names returns all known logical method names, sorted.
func Names() []string {
	names := make([]string, 0, len(restMethodMap))
	for name := range restMethodMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
