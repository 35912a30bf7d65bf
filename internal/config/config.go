// Package config provides client configuration loaded from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// Config holds remclient configuration. All values are resolved once at
// client construction; the facades keep their own mutable copies of the
// per-instance knobs (polling periods, fail-exceptions toggle).
type Config struct {
	// COMMS: connect to the manager's request/reply channel at COMMSURL.
	COMMSURL  string `envconfig:"REM_COMMS_URL" default:"nats://127.0.0.1:4222"`
	COMMSName string `envconfig:"REM_CLIENT_NAME" default:"remclient"`
	// CredsFile authenticates the comms channel; empty means unauthenticated.
	CredsFile string `envconfig:"REM_CREDS_FILE"`

	// Subjects for the control (request/reply) and console (stream) channels.
	ControlSubject string `envconfig:"REM_CONTROL_SUBJECT" default:"rem.manager.control"`
	ConsoleSubject string `envconfig:"REM_CONSOLE_SUBJECT" default:"rem.manager.console"`

	// HTTP server base URI for the REST transport.
	HTTPServerURI string `envconfig:"REM_HTTP_SERVER_URI" default:"http://localhost:60610"`

	// Timeouts. TimeoutSend bounds comms connect/flush, TimeoutRecv the
	// request/reply round trip; HTTPRequestTimeout is the single overall
	// budget for one REST call.
	TimeoutSend        time.Duration `envconfig:"REM_REQUEST_TIMEOUT_SEND" default:"500ms"`
	TimeoutRecv        time.Duration `envconfig:"REM_REQUEST_TIMEOUT_RECV" default:"2s"`
	HTTPRequestTimeout time.Duration `envconfig:"REM_HTTP_REQUEST_TIMEOUT" default:"5s"`

	// Status cache and wait polling.
	StatusExpirationPeriod time.Duration `envconfig:"REM_STATUS_EXPIRATION_PERIOD" default:"500ms"`
	StatusPollingPeriod    time.Duration `envconfig:"REM_STATUS_POLLING_PERIOD" default:"1s"`

	// Console monitor.
	ConsolePollPeriod time.Duration `envconfig:"REM_CONSOLE_POLL_PERIOD" default:"1s"`
	ConsoleMaxMsgs    int           `envconfig:"REM_CONSOLE_MAX_MSGS" default:"10000"`
	ConsoleMaxLines   int           `envconfig:"REM_CONSOLE_MAX_LINES" default:"1000"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ValidateForComms checks required config for the comms client.
func (c *Config) ValidateForComms() error {
	if c.COMMSURL == "" {
		return fmt.Errorf("%s - REM_COMMS_URL is required", logPrefix)
	}
	if c.ControlSubject == "" {
		return fmt.Errorf("%s - REM_CONTROL_SUBJECT is required", logPrefix)
	}
	if c.TimeoutRecv <= 0 {
		return fmt.Errorf("%s - REM_REQUEST_TIMEOUT_RECV must be positive", logPrefix)
	}
	return c.validatePeriods()
}

// ValidateForHTTP checks required config for the REST client.
func (c *Config) ValidateForHTTP() error {
	if c.HTTPServerURI == "" {
		return fmt.Errorf("%s - REM_HTTP_SERVER_URI is required", logPrefix)
	}
	if c.HTTPRequestTimeout <= 0 {
		return fmt.Errorf("%s - REM_HTTP_REQUEST_TIMEOUT must be positive", logPrefix)
	}
	return c.validatePeriods()
}

func (c *Config) validatePeriods() error {
	if c.StatusExpirationPeriod <= 0 {
		return fmt.Errorf("%s - REM_STATUS_EXPIRATION_PERIOD must be positive", logPrefix)
	}
	if c.StatusPollingPeriod <= 0 {
		return fmt.Errorf("%s - REM_STATUS_POLLING_PERIOD must be positive", logPrefix)
	}
	return nil
}
