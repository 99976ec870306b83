// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML config file, and environment variables (highest priority).
//
// Configuration Categories:
//
//  1. Data Sources:
//     - Alerts: Official air-raid alert authority polling
//     - Feeds: Curated RSS/Telegram feed list (optional, requires API key)
//
//  2. Infrastructure:
//     - Database: DuckDB configuration (path, memory, threads)
//     - Fetch: Outbound HTTP behaviour, optional CORS-bypass proxy
//     - Server: HTTP server bind address and timeouts
//
//  3. Intelligence:
//     - AI: Periodic situation summaries via Anthropic (optional)
//
//  4. Observability:
//     - Logging: Log level and output format
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Database DatabaseConfig `koanf:"database"`
	Fetch    FetchConfig    `koanf:"fetch"`
	Alerts   AlertsConfig   `koanf:"alerts"`
	Feeds    FeedsConfig    `koanf:"feeds"`
	AI       AIConfig       `koanf:"ai"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 8080)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns the host:port string for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds log output settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path (default: /data/frontline.duckdb)
//   - DUCKDB_MAX_MEMORY: Memory limit (default: 512MB)
//   - DUCKDB_THREADS: Worker threads, 0 = runtime.NumCPU() (default: 0)
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// FetchConfig holds outbound HTTP settings shared by all upstream adapters.
// When ProxyURL is set all requests are routed through the proxy with the
// target passed as a query parameter; ProxyToken is sent as a Bearer token.
//
// Environment Variables:
//   - FETCH_PROXY_URL: Optional CORS-bypass proxy endpoint
//   - FETCH_PROXY_TOKEN: Bearer token for the proxy
//   - FETCH_TIMEOUT: Per-request timeout (default: 15s)
//   - FETCH_RATE_LIMIT: Requests per second across all adapters (default: 5)
//   - FETCH_USER_AGENT: User-Agent header (default: frontline/1.0)
type FetchConfig struct {
	ProxyURL          string        `koanf:"proxy_url"`
	ProxyToken        string        `koanf:"proxy_token"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"rate_limit"`
	UserAgent         string        `koanf:"user_agent"`
}

// AlertsConfig holds official alert authority polling settings.
//
// Environment Variables:
//   - ALERTS_ENABLED: Enable authority polling (default: true)
//   - ALERTS_URL: Active-alerts endpoint
//   - ALERTS_INTERVAL: Poll interval (default: 5s)
//   - ALERTS_AUTHORITY: Source name attached to generated events
//   - ALERTS_MAX_AGE: Age after which active alerts are expired (default: 10m)
//   - ALERTS_EXPIRY_INTERVAL: How often expiry runs (default: 1m)
type AlertsConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	Interval       time.Duration `koanf:"interval"`
	Authority      string        `koanf:"authority"`
	MaxAge         time.Duration `koanf:"max_age"`
	ExpiryInterval time.Duration `koanf:"expiry_interval"`
}

// FeedsConfig holds the curated feed list settings. The feed list API
// returns the set of RSS feeds to poll; without an API key the source is
// disabled and the rest of the pipeline runs unaffected.
//
// Environment Variables:
//   - FEEDS_URL: Feed list API endpoint
//   - FEEDS_API_KEY: API key for the feed list service
//   - FEEDS_INTERVAL: Poll interval (default: 45s)
type FeedsConfig struct {
	URL      string        `koanf:"url"`
	APIKey   string        `koanf:"api_key"`
	Interval time.Duration `koanf:"interval"`
}

// AIConfig holds AI summarization settings. Without an API key the
// summarizer is not started.
//
// Environment Variables:
//   - ANTHROPIC_API_KEY: Anthropic API key
//   - AI_SUMMARY_INTERVAL: Summary generation interval (default: 5m)
type AIConfig struct {
	APIKey   string        `koanf:"api_key"`
	Interval time.Duration `koanf:"interval"`
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateAlerts(); err != nil {
		return err
	}
	if err := c.validateFeeds(); err != nil {
		return err
	}
	if err := c.validateAI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.ProxyURL != "" {
		if err := validateHTTPURL(c.Fetch.ProxyURL, "FETCH_PROXY_URL"); err != nil {
			return err
		}
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.Fetch.Timeout)
	}
	if c.Fetch.RequestsPerSecond <= 0 {
		return fmt.Errorf("FETCH_RATE_LIMIT must be positive, got %g", c.Fetch.RequestsPerSecond)
	}
	return nil
}

func (c *Config) validateAlerts() error {
	if !c.Alerts.Enabled {
		return nil
	}
	if c.Alerts.URL == "" {
		return fmt.Errorf("ALERTS_URL is required when ALERTS_ENABLED=true")
	}
	if err := validateHTTPURL(c.Alerts.URL, "ALERTS_URL"); err != nil {
		return err
	}
	if c.Alerts.Interval <= 0 {
		return fmt.Errorf("ALERTS_INTERVAL must be positive, got %s", c.Alerts.Interval)
	}
	if c.Alerts.MaxAge <= 0 {
		return fmt.Errorf("ALERTS_MAX_AGE must be positive, got %s", c.Alerts.MaxAge)
	}
	return nil
}

func (c *Config) validateFeeds() error {
	// Feeds are optional: no API key means the source stays disabled.
	if c.Feeds.APIKey == "" {
		return nil
	}
	if c.Feeds.URL == "" {
		return fmt.Errorf("FEEDS_URL is required when FEEDS_API_KEY is set")
	}
	if err := validateHTTPURL(c.Feeds.URL, "FEEDS_URL"); err != nil {
		return err
	}
	if c.Feeds.Interval <= 0 {
		return fmt.Errorf("FEEDS_INTERVAL must be positive, got %s", c.Feeds.Interval)
	}
	return nil
}

func (c *Config) validateAI() error {
	if c.AI.APIKey == "" {
		return nil
	}
	if c.AI.Interval <= 0 {
		return fmt.Errorf("AI_SUMMARY_INTERVAL must be positive, got %s", c.AI.Interval)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL verifies the value parses as an absolute http(s) URL.
func validateHTTPURL(raw, name string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", name)
	}
	return nil
}
