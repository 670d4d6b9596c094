// Package httpclient is the JSON REST client every backend repository
// goes through.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ramyeon-storefront/internal/apperr"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBodyBytes caps how much of a backend response is read.
	DefaultMaxBodyBytes int64 = 4 << 20
)

// TokenSource supplies the bearer token for a request. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (s StaticToken) Token(context.Context) string { return string(s) }

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	maxBody    int64
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithRateLimit throttles outbound requests to rps with a burst of twice
// that, rounded up.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps*2 + 0.5)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes. n <= 0 keeps the default.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxBody:    DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Do sends a JSON request and decodes a 2xx response into out (when non-nil).
// Every failure is an apperr network error carrying the remote status.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "httpclient"),
		zap.String("http_method", method),
		zap.String("path", path),
	)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperr.Network(0, "", err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	timer := metrics.StartTimer()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveBackend(method, 0, timer.Duration())
		log.Warn("backend request failed", zap.Error(err))
		return apperr.Network(0, "", err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveBackend(method, resp.StatusCode, timer.Duration())

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return apperr.Network(resp.StatusCode, "failed to read backend response", err)
	}
	if int64(len(respBody)) > c.maxBody {
		log.Error("backend response too large", zap.Int64("limit", c.maxBody))
		return apperr.Network(resp.StatusCode, "backend response too large", nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("backend returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", truncate(respBody, 512)),
		)
		return apperr.Network(resp.StatusCode, errorMessage(respBody), nil)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		log.Error("failed decoding backend response", zap.Error(err))
		return apperr.Network(resp.StatusCode, "invalid backend response", err)
	}
	return nil
}

// errorMessage pulls a human message out of an error body, if it has one.
func errorMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "detail"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
