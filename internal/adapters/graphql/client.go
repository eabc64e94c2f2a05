// Package graphql is the shared HTTP transport for the ledger and the
// activity providers. Every call is rate limited, retried on transient
// failures, and sent with the caller's captured session headers.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/credentials"
)

const (
	maxResponseBytes = 32 << 20
	errorBodyLimit   = 200
)

// ErrStatus marks a non-2xx HTTP response.
var ErrStatus = errors.New("unexpected HTTP status")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Service    credentials.Service
	StatusCode int
	Body       string // first 200 bytes
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s HTTP %d", e.Service.DisplayName(), e.StatusCode)
	}
	return fmt.Sprintf("%s HTTP %d: %s", e.Service.DisplayName(), e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrStatus) match.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Unauthorized reports whether the session was rejected.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ResponseError carries the first error of a GraphQL response.
type ResponseError struct {
	Message string
	Path    []any
}

func (e *ResponseError) Error() string {
	return e.Message
}

// Request is a GraphQL POST body.
type Request struct {
	OperationName string `json:"operationName"`
	Variables     any    `json:"variables"`
	Query         string `json:"query"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Path    []any  `json:"path"`
	} `json:"errors"`
}

// Client posts JSON to a single endpoint on behalf of one service.
type Client struct {
	endpoint string
	service  credentials.Service
	creds    credentials.Provider
	http     *retryablehttp.Client
	limiter  *rate.Limiter
	headers  http.Header
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithInterval sets the minimum gap between requests. Zero disables limiting.
func WithInterval(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithRetry sets the retry budget and backoff bounds.
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = max
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// WithHeader adds a fixed header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithLogger sets the logger used for request and retry logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient swaps the underlying http.Client, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http.HTTPClient = hc
	}
}

// NewClient creates a client for endpoint.
func NewClient(endpoint string, service credentials.Service, creds credentials.Provider, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		endpoint: endpoint,
		service:  service,
		creds:    creds,
		http:     rc,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		headers:  make(http.Header),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Logger = c.logger.With(slog.String("service", string(service)))
	return c
}

// Service returns the service this client authenticates as.
func (c *Client) Service() credentials.Service {
	return c.service
}

// Do sends a GraphQL request and decodes the data field into out.
// A response carrying errors returns the first one as a *ResponseError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var env envelope
	if err := c.PostJSON(ctx, req, &env); err != nil {
		return fmt.Errorf("%s: %w", req.OperationName, err)
	}
	if len(env.Errors) > 0 {
		return &ResponseError{Message: env.Errors[0].Message, Path: env.Errors[0].Path}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", req.OperationName, err)
	}
	return nil
}

// PostJSON sends body as JSON and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, body any, out any) error {
	headers, err := c.creds.Headers(ctx, c.service)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", c.service.DisplayName(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s read response: %w", c.service.DisplayName(), err)
	}
	c.logger.Debug("request complete",
		slog.String("service", string(c.service)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(data)
		if len(snippet) > errorBodyLimit {
			snippet = snippet[:errorBodyLimit]
		}
		return &StatusError{Service: c.service, StatusCode: resp.StatusCode, Body: snippet}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s decode response: %w", c.service.DisplayName(), err)
	}
	return nil
}
