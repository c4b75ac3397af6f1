// Package httpx wraps outbound requests with shared defaults: a bounded
// timeout, TLS verification, a referer header, and a single fallback attempt
// with IPv4 resolution forced. Some resolvers hand back broken IPv6 routes
// for googleapis hosts; retrying once over tcp4 recovers those calls.
package httpx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Config holds client defaults merged into every request.
type Config struct {
	Timeout   time.Duration
	Referer   string
	UserAgent string
}

// Client issues GET requests with the shared defaults applied.
type Client struct {
	base   *http.Client
	ipv4   *http.Client
	cfg    Config
	logger *slog.Logger
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// New creates a Client. The second transport dials over tcp4 only.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "videosync/1.0"
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	ipv4Transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp4", addr)
		},
	}

	return &Client{
		base: &http.Client{Timeout: cfg.Timeout},
		ipv4: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: ipv4Transport,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Get performs a GET request. Caller headers override the client defaults.
// On a transport failure the request is retried exactly once with IPv4
// resolution forced; whatever that attempt yields is final. A non-2xx
// status is returned as a Response, not an error — callers decide whether
// that fails their call.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	resp, err := c.do(ctx, c.base, url, headers)
	if err == nil {
		return resp, nil
	}

	if ctx.Err() != nil {
		return nil, err
	}

	c.logger.Debug("request failed, retrying over ipv4", "url", url, "error", err)

	resp, retryErr := c.do(ctx, c.ipv4, url, headers)
	if retryErr != nil {
		return nil, fmt.Errorf("after ipv4 retry: %w", retryErr)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, client *http.Client, url string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.cfg.Referer != "" {
		req.Header.Set("Referer", c.cfg.Referer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
