// Package fetch provides the resilient HTTP client shared by every source
// adapter: per-call timeout, bounded retry with exponential backoff, and an
// optional egress proxy for upstreams that rate-limit by origin IP.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/oddscope/oddscope/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// ClientConfig holds fetch-layer parameters.
type ClientConfig struct {
	Timeout    time.Duration // per-attempt timeout
	MaxRetries int           // retries after the first attempt
	Backoff    time.Duration // base backoff, doubled per retry
	ProxyURL   string        // optional egress proxy, e.g. "http://127.0.0.1:7897"
	UserAgent  string
}

// Client is a thin wrapper around http.Client that retries transient
// failures. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	userAgent  string
	logger     *slog.Logger
}

// Request describes one outbound call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// New creates a fetch Client. A zero Timeout defaults to 15s, a zero Backoff
// to 500ms. An invalid proxy URL is an error rather than a silent direct
// connection.
func New(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("fetch: parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		userAgent:  cfg.UserAgent,
		logger:     logger.With(slog.String("component", "fetch")),
	}, nil
}

// Do sends the request, retrying transport errors, 429s, and 5xx responses
// until the retry budget is exhausted. It returns the response body on any
// 2xx status. 404 maps to domain.ErrNotFound so adapters can distinguish
// zero-match from outage.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, attempt); err != nil {
				return nil, err
			}
			c.logger.DebugContext(ctx, "retrying request",
				slog.String("url", req.URL),
				slog.Int("attempt", attempt),
			)
		}

		body, retryable, err := c.attempt(ctx, req)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("fetch: retries exhausted: %w", lastErr)
}

// GetJSON is a convenience for the common unauthenticated GET.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	h := map[string]string{"Accept": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	return c.Do(ctx, Request{Method: http.MethodGet, URL: rawURL, Headers: h})
}

// attempt performs a single request. The second return reports whether a
// failure is worth retrying.
func (c *Client) attempt(ctx context.Context, req Request) ([]byte, bool, error) {
	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, false, fmt.Errorf("fetch: create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Transport failure (timeout, reset): retryable unless ctx is done.
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("fetch: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("fetch: read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("fetch: %s: %w", req.URL, domain.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("fetch: %s: %w", req.URL, domain.ErrRateLimited)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("fetch: HTTP %d from %s", resp.StatusCode, req.URL)
	default:
		return nil, false, fmt.Errorf("fetch: HTTP %d from %s: %s", resp.StatusCode, req.URL, truncate(respBody, 200))
	}
}

// sleep waits out the backoff for the given attempt, honoring cancellation.
// Jitter avoids retry lockstep across the concurrent adapter fan-out.
func (c *Client) sleep(ctx context.Context, attempt int) error {
	d := c.backoff << (attempt - 1)
	if half := int64(c.backoff) / 2; half > 0 {
		d += time.Duration(rand.Int63n(half))
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
