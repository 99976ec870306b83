// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

// Package main is the entry point for the Frontline server.
//
// Frontline ingests war-related events from official alert authorities,
// curated RSS feeds, and pushed webhooks, deduplicates them, persists them
// to DuckDB, and streams them to dashboard clients over WebSocket. An
// optional AI summarizer produces periodic situation assessments.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered config (defaults, YAML file, env vars)
//  2. Database: DuckDB with bounded per-table retention
//  3. WebSocket Hub + Notifier: real-time delivery to dashboard clients
//  4. Ingest Pipeline: alert polling, feed polling, webhook intake
//  5. AI Summarizer: only when ANTHROPIC_API_KEY is set
//  6. HTTP Server: REST API, WebSocket upgrade, Prometheus metrics
//
// All long-lived components run under a suture supervision tree and shut
// down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/frontlinehq/frontline/internal/api"
	"github.com/frontlinehq/frontline/internal/broadcast"
	"github.com/frontlinehq/frontline/internal/config"
	"github.com/frontlinehq/frontline/internal/fetch"
	"github.com/frontlinehq/frontline/internal/ingest"
	"github.com/frontlinehq/frontline/internal/logging"
	"github.com/frontlinehq/frontline/internal/store"
	"github.com/frontlinehq/frontline/internal/summarize"
	"github.com/frontlinehq/frontline/internal/supervisor"
	"github.com/frontlinehq/frontline/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("alerts_enabled", cfg.Alerts.Enabled).
		Bool("feeds_enabled", cfg.Feeds.APIKey != "").
		Msg("Starting Frontline")

	db, err := store.New(store.Config{
		Path:      cfg.Database.Path,
		MaxMemory: cfg.Database.MaxMemory,
		Threads:   cfg.Database.Threads,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// All upstream requests share one rate-limited client behind a circuit
	// breaker; a misbehaving upstream trips the breaker instead of piling
	// up goroutines.
	fetcher := fetch.NewBreakerClient(fetch.Config{
		ProxyURL:          cfg.Fetch.ProxyURL,
		ProxyToken:        cfg.Fetch.ProxyToken,
		Timeout:           cfg.Fetch.Timeout,
		UserAgent:         cfg.Fetch.UserAgent,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
	})

	hub := broadcast.NewHub()
	notifier := broadcast.NewNotifier(hub)
	defer func() {
		if err := notifier.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing notifier")
		}
	}()

	pipeline := ingest.New(ingest.Config{
		AlertsURL:           cfg.Alerts.URL,
		AlertsEnabled:       cfg.Alerts.Enabled,
		AlertsInterval:      cfg.Alerts.Interval,
		AuthorityName:       cfg.Alerts.Authority,
		FeedsURL:            cfg.Feeds.URL,
		FeedsAPIKey:         cfg.Feeds.APIKey,
		FeedsInterval:       cfg.Feeds.Interval,
		AlertMaxAge:         cfg.Alerts.MaxAge,
		AlertExpiryInterval: cfg.Alerts.ExpiryInterval,
	}, db, fetcher, notifier)

	router := api.New(api.Config{}, db, pipeline, hub)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddMessagingService(notifier)
	tree.AddIngestService(pipeline)
	tree.AddAPIService(services.NewHTTPServerService(server, supervisor.DefaultTreeConfig().ShutdownTimeout))

	if cfg.AI.APIKey != "" {
		completer := summarize.NewAnthropicCompleter(cfg.AI.APIKey)
		summarizer := summarize.New(db, completer, hub, cfg.AI.Interval)
		tree.AddIngestService(summarizer)
		logging.Info().Dur("interval", cfg.AI.Interval).Msg("AI summarizer enabled")
	} else {
		logging.Info().Msg("AI summarizer disabled (ANTHROPIC_API_KEY not set)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Frontline running")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("Supervisor tree failed")
	}

	logging.Info().Msg("Frontline stopped")
}
