// Package client provides the high-level manager client facades.
//
// A Client binds a transport, the method registry, the dispatcher, the status
// cache and a console monitor into one object. Two constructors exist, one
// per protocol; everything above the transport is shared.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/beamtime/remclient/internal/config"
	"github.com/beamtime/remclient/pkg/console"
	"github.com/beamtime/remclient/pkg/dispatch"
	"github.com/beamtime/remclient/pkg/methods"
	"github.com/beamtime/remclient/pkg/status"
	"github.com/beamtime/remclient/pkg/transport"
	"github.com/beamtime/remclient/pkg/version"
)

const logPrefix = "client:core"

// Protocol selects the wire protocol a client speaks.
type Protocol string

const (
	ProtocolComms Protocol = "comms"
	ProtocolHTTP  Protocol = "http"
)

// Default identity attached to submitted items on the comms protocol. The
// HTTP server derives identity from the authenticated session instead.
const (
	DefaultUser      = "remclient user"
	DefaultUserGroup = "primary"
)

// userInfoMethods lists operations that carry the submitting user identity
// on the comms protocol.
var userInfoMethods = map[string]bool{
	"queue_item_add":       true,
	"queue_item_add_batch": true,
	"queue_item_update":    true,
	"queue_item_execute":   true,
	"function_execute":     true,
	"script_upload":        true,
}

// userGroupMethods lists operations that carry only the user group.
var userGroupMethods = map[string]bool{
	"plans_allowed":   true,
	"devices_allowed": true,
}

// Client is a manager client over one transport.
type Client struct {
	protocol   Protocol
	dispatcher *dispatch.Dispatcher
	settings   *dispatch.Settings
	tr         transport.Transport
	cache      *status.Cache
	console    console.Monitor

	mu            sync.Mutex
	user          string
	userGroup     string
	pollingPeriod time.Duration
}

// NewClientParams wires a client from preconstructed parts. The public
// constructors use it internally; tests use it to substitute transports.
type NewClientParams struct {
	Protocol  Protocol
	Registry  methods.Registry
	Transport transport.Transport
	Console   console.Monitor
	// StatusExpiration is the status cache expiration period.
	StatusExpiration time.Duration
	// PollingPeriod is the default wait polling period.
	PollingPeriod time.Duration
	User          string
	UserGroup     string
}

// NewClient assembles a client from parts.
func NewClient(p NewClientParams) *Client {
	settings := dispatch.NewSettings(true)
	user := p.User
	if user == "" {
		user = DefaultUser
	}
	userGroup := p.UserGroup
	if userGroup == "" {
		userGroup = DefaultUserGroup
	}
	expiration := p.StatusExpiration
	if expiration <= 0 {
		expiration = 500 * time.Millisecond
	}
	pollingPeriod := p.PollingPeriod
	if pollingPeriod <= 0 {
		pollingPeriod = time.Second
	}
	return &Client{
		protocol: p.Protocol,
		dispatcher: dispatch.NewDispatcher(dispatch.NewDispatcherParams{
			Registry:  p.Registry,
			Transport: p.Transport,
			Settings:  settings,
		}),
		settings:      settings,
		tr:            p.Transport,
		cache:         status.NewCache(expiration),
		console:       p.Console,
		user:          user,
		userGroup:     userGroup,
		pollingPeriod: pollingPeriod,
	}
}

// CommsClientParams holds parameters for NewCommsClient.
type CommsClientParams struct {
	// Config overrides the environment-loaded configuration.
	Config    *config.Config
	User      string
	UserGroup string
}

// NewCommsClient connects to the manager's control channel and returns a
// ready client. The console monitor shares the control connection and starts
// disabled.
func NewCommsClient(p CommsClientParams) (*Client, error) {
	cfg := p.Config
	if cfg == nil {
		loaded, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ValidateForComms(); err != nil {
		return nil, err
	}

	tr, err := transport.NewCommsTransport(transport.CommsParams{
		URL:         cfg.COMMSURL,
		Name:        cfg.COMMSName,
		Subject:     cfg.ControlSubject,
		CredsFile:   cfg.CredsFile,
		TimeoutSend: cfg.TimeoutSend,
		TimeoutRecv: cfg.TimeoutRecv,
	})
	if err != nil {
		return nil, err
	}

	mon := console.NewCommsMonitor(console.CommsMonitorParams{
		Conn:     tr.Conn(),
		Subject:  cfg.ConsoleSubject,
		MaxMsgs:  cfg.ConsoleMaxMsgs,
		MaxLines: cfg.ConsoleMaxLines,
	})

	slog.Info(fmt.Sprintf("%s - comms client ready, url=%s subject=%s", logPrefix, cfg.COMMSURL, cfg.ControlSubject))
	return NewClient(NewClientParams{
		Protocol:         ProtocolComms,
		Registry:         methods.NewCommsRegistry(),
		Transport:        tr,
		Console:          mon,
		StatusExpiration: cfg.StatusExpirationPeriod,
		PollingPeriod:    cfg.StatusPollingPeriod,
		User:             p.User,
		UserGroup:        p.UserGroup,
	}), nil
}

// HTTPClientParams holds parameters for NewHTTPClient.
type HTTPClientParams struct {
	// Config overrides the environment-loaded configuration.
	Config    *config.Config
	User      string
	UserGroup string
}

// NewHTTPClient returns a client for the manager's HTTP server. The console
// monitor polls the console output endpoint and starts disabled.
func NewHTTPClient(p HTTPClientParams) (*Client, error) {
	cfg := p.Config
	if cfg == nil {
		loaded, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ValidateForHTTP(); err != nil {
		return nil, err
	}

	tr := transport.NewRESTTransport(transport.RESTParams{
		BaseURI: cfg.HTTPServerURI,
		Timeout: cfg.HTTPRequestTimeout,
	})

	// Console output retrieval is outside the method registry; it belongs to
	// the monitor, not to the request contract.
	consoleInv := methods.Invocation{
		Method: "console_output_update",
		Verb:   "GET",
		Path:   "/api/console_output_update",
	}
	fetch := func(ctx context.Context, lastUID string) (map[string]any, error) {
		params := map[string]any{}
		if lastUID != "" {
			params["last_msg_uid"] = lastUID
		}
		return tr.Call(ctx, consoleInv, params)
	}
	mon := console.NewHTTPMonitor(console.HTTPMonitorParams{
		Fetch:      fetch,
		PollPeriod: cfg.ConsolePollPeriod,
		MaxMsgs:    cfg.ConsoleMaxMsgs,
		MaxLines:   cfg.ConsoleMaxLines,
	})

	slog.Info(fmt.Sprintf("%s - http client ready, uri=%s", logPrefix, cfg.HTTPServerURI))
	return NewClient(NewClientParams{
		Protocol:         ProtocolHTTP,
		Registry:         methods.NewRESTRegistry(),
		Transport:        tr,
		Console:          mon,
		StatusExpiration: cfg.StatusExpirationPeriod,
		PollingPeriod:    cfg.StatusPollingPeriod,
		User:             p.User,
		UserGroup:        p.UserGroup,
	}), nil
}

// Protocol returns the wire protocol this client speaks.
func (c *Client) Protocol() Protocol { return c.protocol }

// ConsoleMonitor returns the console monitor, disabled until enabled by the
// caller. Nil when the client was assembled without one.
func (c *Client) ConsoleMonitor() console.Monitor { return c.console }

// Send issues a raw request. Params pass through unmodified; typed methods
// are preferred for normal use.
func (c *Client) Send(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	return c.dispatcher.Send(ctx, method, params)
}

// sendOp issues a typed-method request, attaching user identity where the
// protocol requires it.
func (c *Client) sendOp(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	if c.protocol == ProtocolComms && (userInfoMethods[method] || userGroupMethods[method]) {
		if params == nil {
			params = map[string]any{}
		}
		c.mu.Lock()
		if userInfoMethods[method] {
			params["user"] = c.user
		}
		params["user_group"] = c.userGroup
		c.mu.Unlock()
	}
	return c.dispatcher.Send(ctx, method, params)
}

// Status returns the manager status, served from the cache unless reload is
// set or the cached snapshot expired.
func (c *Client) Status(ctx context.Context, reload bool) (*status.Snapshot, error) {
	return c.cache.Get(ctx, reload, func(ctx context.Context) (map[string]any, error) {
		return c.dispatcher.Send(ctx, "status", nil)
	})
}

// StatusCache exposes the cache for expiration tuning and invalidation.
func (c *Client) StatusCache() *status.Cache { return c.cache }

// Ping checks manager availability.
func (c *Client) Ping(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "ping", nil)
}

// CheckServerVersion fetches the manager status and verifies the reported
// version against a SemVer constraint (e.g. ">=0.0.18").
func (c *Client) CheckServerVersion(ctx context.Context, constraint string) error {
	snap, err := c.Status(ctx, true)
	if err != nil {
		return err
	}
	return version.CheckManagerVersion(snap.Msg(), constraint)
}

// RequestFailExceptionsEnabled reports whether "success": false responses are
// surfaced as RequestFailedError.
func (c *Client) RequestFailExceptionsEnabled() bool {
	return c.settings.RequestFailExceptionsEnabled()
}

// SetRequestFailExceptionsEnabled toggles RequestFailedError reporting for
// subsequent requests.
func (c *Client) SetRequestFailExceptionsEnabled(v bool) {
	c.settings.SetRequestFailExceptionsEnabled(v)
}

// User returns the user name attached to submitted items.
func (c *Client) User() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// SetUser changes the user name attached to submitted items.
func (c *Client) SetUser(user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
}

// UserGroup returns the user group attached to submitted items.
func (c *Client) UserGroup() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userGroup
}

// SetUserGroup changes the user group attached to submitted items.
func (c *Client) SetUserGroup(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userGroup = group
}

// PollingPeriod returns the default wait polling period.
func (c *Client) PollingPeriod() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pollingPeriod
}

// SetPollingPeriod changes the default wait polling period.
func (c *Client) SetPollingPeriod(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollingPeriod = d
}

// Close disables the console monitor and releases the transport.
func (c *Client) Close() error {
	if c.console != nil {
		c.console.Disable()
	}
	if c.tr != nil {
		return c.tr.Close()
	}
	return nil
}

// Bool returns a pointer to v, for optional boolean request parameters.
func Bool(v bool) *bool { return &v }

// addParam sets a request parameter, skipping nil and empty-string values.
func addParam(params map[string]any, key string, v any) {
	switch val := v.(type) {
	case nil:
		return
	case string:
		if val == "" {
			return
		}
	case *bool:
		if val == nil {
			return
		}
		params[key] = *val
		return
	}
	params[key] = v
}
