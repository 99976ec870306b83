// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frontlinehq/frontline/internal/broadcast"
	"github.com/frontlinehq/frontline/internal/models"
)

// Store is the read surface the API serves from.
type Store interface {
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	GetRecentNews(ctx context.Context, limit int) ([]models.NewsItem, error)
	GetRecentAlerts(ctx context.Context, limit int, activeOnly bool) ([]models.Alert, error)
	GetLatestSummary(ctx context.Context) (*models.AISummary, error)
}

// Ingestor accepts pushed payloads and exposes source monitoring.
type Ingestor interface {
	IngestWebhook(ctx context.Context, body []byte) (int, error)
	SourceHealth() []models.SourceStatus
	DedupStats() (entries int, hits int64)
}

// Config holds API behaviour settings.
type Config struct {
	// RateLimitRequests per RateLimitWindow, keyed by client IP.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSOrigins       []string
}

func (c *Config) applyDefaults() {
	if c.RateLimitRequests == 0 {
		c.RateLimitRequests = 100
	}
	if c.RateLimitWindow == 0 {
		c.RateLimitWindow = time.Minute
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
}

// Router wires HTTP routes to the store, ingest pipeline, and WebSocket hub.
type Router struct {
	cfg     Config
	store   Store
	ingest  Ingestor
	hub     *broadcast.Hub
	started time.Time
}

// New creates a Router. hub may be nil, in which case the WebSocket
// endpoint responds 503.
func New(cfg Config, store Store, ingest Ingestor, hub *broadcast.Hub) *Router {
	cfg.applyDefaults()
	return &Router{
		cfg:     cfg,
		store:   store,
		ingest:  ingest,
		hub:     hub,
		started: time.Now(),
	}
}

// Setup configures all HTTP routes using the Chi router.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rt.cfg.RateLimitRequests, rt.cfg.RateLimitWindow))
		r.Use(prometheusMetrics)

		r.Get("/health", rt.Health)
		r.Get("/events", rt.Events)
		r.Get("/news", rt.News)
		r.Get("/alerts", rt.Alerts)
		r.Get("/summary", rt.Summary)
		r.Get("/sources", rt.Sources)
		r.Post("/webhook/feed", rt.WebhookFeed)

		// WebSocket upgrade bypasses the standard response wrapper.
		r.Get("/ws", rt.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
