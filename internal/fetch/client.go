// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/frontlinehq/frontline/internal/logging"
	"github.com/frontlinehq/frontline/internal/metrics"
)

// DefaultTimeout bounds every upstream fetch, proxy or direct.
const DefaultTimeout = 15 * time.Second

// maxResponseBytes caps how much of an upstream body we will buffer.
// Alert and feed payloads are small; anything larger is misbehaving.
const maxResponseBytes = 10 << 20

// Config controls how the client reaches upstream sources.
//
// When ProxyURL is set, requests are routed through a forwarding proxy:
// the target URL travels in the "url" query parameter and ProxyToken is
// sent as a Bearer credential. When ProxyURL is empty, the client fetches
// the target directly.
type Config struct {
	ProxyURL   string
	ProxyToken string
	Timeout    time.Duration
	UserAgent  string

	// RequestsPerSecond limits outbound request rate across all callers
	// of this client. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// Response is the upstream reply with only the fields the adapters need.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client fetches upstream source payloads, optionally through a
// forwarding proxy, with a shared outbound rate limit.
type Client struct {
	httpClient *http.Client
	proxyURL   string
	proxyToken string
	userAgent  string
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewClient creates a fetch client. A zero Timeout uses DefaultTimeout.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "frontline/1.0"
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		proxyURL:   cfg.ProxyURL,
		proxyToken: cfg.ProxyToken,
		userAgent:  userAgent,
		limiter:    limiter,
		log:        logging.With().Str("component", "fetch").Logger(),
	}
}

// Mode reports whether fetches are proxied or direct, for logs and metrics.
func (c *Client) Mode() string {
	if c.proxyURL != "" {
		return "proxy"
	}
	return "direct"
}

// Get fetches target and returns the upstream status, content type and body
// unmodified. Non-2xx upstream statuses are returned in the Response, not as
// errors; callers decide how to treat them.
func (c *Client) Get(ctx context.Context, target string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := c.buildRequest(ctx, target)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordFetch(c.Mode(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", target, err)
	}

	c.log.Debug().
		Str("target", target).
		Str("mode", c.Mode()).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Upstream fetch complete")

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, target string) (*http.Request, error) {
	requestURL := target
	if c.proxyURL != "" {
		u, err := url.Parse(c.proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy URL: %w", err)
		}
		q := u.Query()
		q.Set("url", target)
		u.RawQuery = q.Encode()
		requestURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", target, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	if c.proxyURL != "" && c.proxyToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.proxyToken)
	}

	return req, nil
}
