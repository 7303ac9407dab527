// Package apiclient wraps the EduMetric JSON HTTP API.
//
// Every call serializes its body, performs exactly one HTTP round trip and
// parses the response as JSON. Failures are reported as one of
// EncodingError, NetworkError, DecodingError or ApplicationError. Status
// codes are not inspected and nothing is retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"

	"github.com/edumetric-labs/edumetric/pkg/core"
)

// DefaultTimeout bounds a single call when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// Config holds client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Client calls the EduMetric server.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
	flight  singleflight.Group
}

// New creates a client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		hc = &http.Client{Jar: jar}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		base:    base,
		http:    hc,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string { return c.base.String() }

// Response is a parsed JSON response body.
type Response struct {
	Path   string
	Status int
	Body   []byte
}

// Envelope reads the success and message fields. A missing success field
// reads as false.
func (r *Response) Envelope() core.Envelope {
	return core.Envelope{
		Success: gjson.GetBytes(r.Body, "success").Bool(),
		Message: gjson.GetBytes(r.Body, "message").String(),
	}
}

// HasEnvelope reports whether the body carries a success field at all.
func (r *Response) HasEnvelope() bool {
	return gjson.GetBytes(r.Body, "success").Exists()
}

// HasField reports whether a top-level field is present and not null.
func (r *Response) HasField(name string) bool {
	v := gjson.GetBytes(r.Body, name)
	return v.Exists() && v.Type != gjson.Null
}

// Err returns an ApplicationError when the envelope reports failure.
func (r *Response) Err() error {
	env := r.Envelope()
	if env.Success {
		return nil
	}
	return &ApplicationError{Path: r.Path, Message: env.Message}
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &DecodingError{Path: r.Path, Body: truncate(string(r.Body), 200), Err: err}
	}
	return nil
}

// Field decodes a single top-level field into v.
func (r *Response) Field(name string, v any) error {
	raw := gjson.GetBytes(r.Body, name)
	if !raw.Exists() {
		return &DecodingError{Path: r.Path, Err: fmt.Errorf("missing field %q", name)}
	}
	if err := json.Unmarshal([]byte(raw.Raw), v); err != nil {
		return &DecodingError{Path: r.Path, Body: truncate(raw.Raw, 200), Err: err}
	}
	return nil
}

// Call performs one request. A nil body sends no payload. Identical
// concurrent GETs share a single round trip; the shared trip is detached
// from every caller's cancellation, so one caller giving up never fails
// another. A caller whose own ctx ends first gets a NetworkError.
func (c *Client) Call(ctx context.Context, method, path string, body any) (*Response, error) {
	if method != http.MethodGet || body != nil {
		return c.do(ctx, method, path, body)
	}

	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(path, func() (any, error) {
		return c.do(shared, method, path, nil)
	})
	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("shared in-flight request", "path", path)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Response), nil
	case <-ctx.Done():
		return nil, &NetworkError{Method: method, Path: path, Err: ctx.Err()}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &EncodingError{Err: err}
		}
		payload = bytes.NewReader(b)
	}
	return c.send(ctx, method, path, payload, "application/json")
}

// send issues the request and parses the response as JSON.
func (c *Client) send(ctx context.Context, method, path string, payload io.Reader, contentType string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), payload)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}

	c.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start),
	)

	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if !gjson.ValidBytes(raw) {
		return nil, &DecodingError{Path: path, Body: truncate(string(raw), 200), Err: fmt.Errorf("body is not valid JSON")}
	}

	return &Response{Path: path, Status: resp.StatusCode, Body: raw}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
