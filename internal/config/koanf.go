// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/frontline/config.yaml",
	"/etc/frontline/config.yml",
}

// ConfigPathEnvVar is the environment variable that overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. Defaults load
// first and are overridden by the config file and then environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:      "/data/frontline.duckdb",
			MaxMemory: "512MB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Fetch: FetchConfig{
			ProxyURL:          "",
			ProxyToken:        "",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 5,
			UserAgent:         "frontline/1.0",
		},
		Alerts: AlertsConfig{
			Enabled:        true,
			URL:            "",
			Interval:       5 * time.Second,
			Authority:      "Home Front Command",
			MaxAge:         10 * time.Minute,
			ExpiryInterval: time.Minute,
		},
		Feeds: FeedsConfig{
			URL:      "",
			APIKey:   "", // No key = source disabled
			Interval: 45 * time.Second,
		},
		AI: AIConfig{
			APIKey:   "", // No key = summarizer not started
			Interval: 5 * time.Minute,
		},
	}
}

// Load builds configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config File: optional YAML file (if present)
//  3. Environment Variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// ALERTS_URL -> alerts.url, DUCKDB_PATH -> database.path, etc.
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never pollute the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Database
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Fetch
		"fetch_proxy_url":   "fetch.proxy_url",
		"fetch_proxy_token": "fetch.proxy_token",
		"fetch_timeout":     "fetch.timeout",
		"fetch_rate_limit":  "fetch.rate_limit",
		"fetch_user_agent":  "fetch.user_agent",

		// Alerts
		"alerts_enabled":         "alerts.enabled",
		"alerts_url":             "alerts.url",
		"alerts_interval":        "alerts.interval",
		"alerts_authority":       "alerts.authority",
		"alerts_max_age":         "alerts.max_age",
		"alerts_expiry_interval": "alerts.expiry_interval",

		// Feeds
		"feeds_url":      "feeds.url",
		"feeds_api_key":  "feeds.api_key",
		"feeds_interval": "feeds.interval",

		// AI
		"anthropic_api_key":   "ai.api_key",
		"ai_summary_interval": "ai.interval",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
