package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beamtime/remclient/pkg/methods"
)

// RESTTransport issues one HTTP call per request with a single overall
// timeout. Unlike the comms transport it has no outstanding-request
// restriction; concurrent calls are fine.
type RESTTransport struct {
	baseURI string
	client  *http.Client
}

// RESTParams holds parameters for NewRESTTransport.
type RESTParams struct {
	BaseURI string
	Timeout time.Duration
	// Client overrides the HTTP client (tests). Timeout is ignored when set.
	Client *http.Client
}

// NewRESTTransport creates a transport for the manager's HTTP server.
func NewRESTTransport(p RESTParams) *RESTTransport {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: p.Timeout}
	}
	return &RESTTransport{
		baseURI: strings.TrimRight(p.BaseURI, "/"),
		client:  client,
	}
}

// Call performs one HTTP request and decodes the JSON body. Params are sent
// as a JSON body for both GET and POST, matching the server contract.
func (t *RESTTransport) Call(ctx context.Context, inv methods.Invocation, params map[string]any) (map[string]any, error) {
	var body io.Reader
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, &ConnError{Err: fmt.Errorf("encode params: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	reqURL := t.baseURI + inv.Path
	req, err := http.NewRequestWithContext(ctx, inv.Verb, reqURL, body)
	if err != nil {
		return nil, &ConnError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Err: err}
		}
		return nil, &ConnError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Err: err}
		}
		return nil, &ConnError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{StatusCode: resp.StatusCode, URL: reqURL}
		// Client-caused rejections carry a decodable detail; server errors
		// stay opaque.
		if resp.StatusCode < 500 && len(data) > 0 {
			var detail struct {
				Detail string `json:"detail"`
			}
			if json.Unmarshal(data, &detail) == nil {
				se.Detail = detail.Detail
			}
		}
		return nil, se
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, &ConnError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return decoded, nil
}

// Close releases idle connections.
func (t *RESTTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
