package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/enlyst/pkg/domain"
	"golang.org/x/time/rate"
)

// Observer receives one call per API request. Implemented by the metrics collector.
type Observer interface {
	ObserveRequest(ctx context.Context, operation string, status int, duration time.Duration, err error)
}

// Client talks to a single Enlyst instance.
type Client struct {
	creds        Credentials
	http         *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
	observer     Observer
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithRateLimit caps outgoing requests to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver registers a request observer (metrics).
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithPollInterval overrides the default WaitForEnrichment interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithPollTimeout overrides the default WaitForEnrichment timeout.
func WithPollTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.pollTimeout = d
	}
}

// New creates a client for the given credentials.
func New(creds Credentials, opts ...Option) (*Client, error) {
	if creds.BaseURL == "" {
		creds.BaseURL = DefaultBaseURL
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	creds.BaseURL = strings.TrimRight(creds.BaseURL, "/")

	c := &Client{
		creds:        creds,
		http:         &http.Client{Timeout: 60 * time.Second},
		logger:       slog.New(slog.DiscardHandler),
		pollInterval: DefaultPollInterval,
		pollTimeout:  DefaultPollTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised base URL (no trailing slash).
func (c *Client) BaseURL() string {
	return c.creds.BaseURL
}

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        any
	raw         io.Reader
	contentType string
}

// call performs the request and decodes the response for passthrough.
// An empty body decodes to an empty object; a non-JSON body is wrapped as {"data": "..."}.
func (c *Client) call(ctx context.Context, req request) (any, error) {
	body, header, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.Object{}, nil
	}
	if !isJSON(header.Get("Content-Type"), body) {
		return domain.Object{"data": string(body)}, nil
	}

	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("enlyst: decode %s response: %w", req.op, err)
	}
	return out, nil
}

// callInto performs the request and decodes the JSON response into out.
func (c *Client) callInto(ctx context.Context, req request, out any) error {
	body, _, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("enlyst: decode %s response: %w", req.op, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req request) ([]byte, http.Header, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}

	target := c.creds.BaseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var reader io.Reader
	contentType := "application/json"
	switch {
	case req.raw != nil:
		reader = req.raw
		contentType = req.contentType
	case req.body != nil:
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, nil, fmt.Errorf("enlyst: encode %s body: %w", req.op, err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("enlyst: build %s request: %w", req.op, err)
	}
	httpReq.Header.Set("Authorization", c.creds.AuthorizationHeader())
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(ctx, req.op, 0, start, err)
		return nil, nil, fmt.Errorf("enlyst: %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(ctx, req.op, resp.StatusCode, start, err)
		return nil, nil, fmt.Errorf("enlyst: read %s response: %w", req.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(req.method, req.path, resp.StatusCode, body)
		c.observe(ctx, req.op, resp.StatusCode, start, apiErr)
		c.logger.Warn("Enlyst API request failed", "op", req.op, "status", resp.StatusCode, "error", apiErr.Message)
		return nil, nil, apiErr
	}

	c.observe(ctx, req.op, resp.StatusCode, start, nil)
	c.logger.Debug("Enlyst API request", "op", req.op, "method", req.method, "path", req.path, "status", resp.StatusCode)
	return body, resp.Header, nil
}

func (c *Client) observe(ctx context.Context, op string, status int, start time.Time, err error) {
	if c.observer != nil {
		c.observer.ObserveRequest(ctx, op, status, time.Since(start), err)
	}
}

// isJSON reports whether body should be decoded as JSON. A valid JSON body is
// decoded whatever the declared content type; a body declared as JSON but
// malformed is decoded too, so the caller reports the error.
func isJSON(contentType string, body []byte) bool {
	if json.Valid(body) {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

func projectPath(projectID string, suffix ...string) string {
	return "/projects/" + url.PathEscape(projectID) + strings.Join(suffix, "")
}
