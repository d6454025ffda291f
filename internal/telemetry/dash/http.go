package dash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/ratelimit"
)

const maxResponseBytes = 8 << 20

// ErrHTTPStatus is returned for non-2xx upstream responses.
var ErrHTTPStatus = errors.New("unexpected http status")

// HTTPOptions configures a public API client.
type HTTPOptions struct {
	Timeout   time.Duration
	UserAgent string
	// RPS caps outgoing requests; zero disables limiting.
	RPS int
}

// HTTPClient issues rate-limited JSON GET requests against one public API.
type HTTPClient struct {
	name      string
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   ratelimit.Limiter
	metrics   HTTPMetrics
}

// NewHTTPClient creates a client for the API rooted at baseURL.
func NewHTTPClient(name, baseURL string, opts HTTPOptions, metrics HTTPMetrics) *HTTPClient {
	limiter := ratelimit.NewUnlimited()
	if opts.RPS > 0 {
		limiter = ratelimit.New(opts.RPS)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &HTTPClient{
		name:      name,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: opts.UserAgent,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
		metrics: metrics,
	}
}

// Name identifies the upstream in logs and metrics.
func (c *HTTPClient) Name() string {
	return c.name
}

func (c *HTTPClient) getJSON(ctx context.Context, operation, path string, out any) (err error) {
	started := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.Observe(c.name, operation, err, started)
		}
	}()

	c.limiter.Take()
	if err = ctx.Err(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.name, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", c.name, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s returned %d", ErrHTTPStatus, c.name, path, resp.StatusCode)
	}
	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", c.name, path, err)
	}
	return nil
}
