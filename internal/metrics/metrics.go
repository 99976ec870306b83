// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Adapter Metrics
	AdapterRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontline_adapter_runs_total",
			Help: "Total number of adapter poll cycles",
		},
		[]string{"adapter"},
	)

	AdapterErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontline_adapter_errors_total",
			Help: "Total number of failed adapter poll cycles",
		},
		[]string{"adapter"},
	)

	AdapterRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frontline_adapter_run_duration_seconds",
			Help:    "Duration of adapter poll cycles in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"adapter"},
	)

	// Ingestion Metrics
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontline_events_ingested_total",
			Help: "Total number of events accepted into the pipeline",
		},
		[]string{"source"},
	)

	NewsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontline_news_ingested_total",
			Help: "Total number of news items accepted into the pipeline",
		},
		[]string{"source"},
	)

	AlertsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "frontline_alerts_ingested_total",
			Help: "Total number of air-raid alerts accepted into the pipeline",
		},
	)

	DedupHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "frontline_dedup_hits_total",
			Help: "Total number of items dropped as duplicates",
		},
	)

	// Fetch Metrics
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frontline_fetch_duration_seconds",
			Help:    "Duration of upstream fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"mode"}, // "direct" or "proxy"
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontline_fetch_errors_total",
			Help: "Total number of failed upstream fetches",
		},
		[]string{"mode"},
	)

	CircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frontline_fetch_circuit_breaker_state",
			Help: "Circuit breaker state for the fetch client (0=closed, 1=half-open, 2=open)",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frontline_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontline_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	RetentionEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontline_retention_evictions_total",
			Help: "Total number of rows evicted by retention caps",
		},
		[]string{"table"},
	)

	// Broadcast Metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frontline_websocket_connections",
			Help: "Current number of connected WebSocket clients",
		},
	)

	BroadcastsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "frontline_broadcasts_sent_total",
			Help: "Total number of event messages delivered to WebSocket clients",
		},
	)

	BroadcastsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "frontline_broadcasts_dropped_total",
			Help: "Total number of event messages dropped for slow WebSocket clients",
		},
	)

	// Summarizer Metrics
	SummaryGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontline_summary_generations_total",
			Help: "Total number of AI summary generation attempts",
		},
		[]string{"result"}, // "ok", "skipped", "error"
	)

	SummaryGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "frontline_summary_generation_duration_seconds",
			Help:    "Duration of AI summary generation in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontline_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frontline_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAdapterRun records one adapter poll cycle.
func RecordAdapterRun(adapter string, duration time.Duration, err error) {
	AdapterRuns.WithLabelValues(adapter).Inc()
	AdapterRunDuration.WithLabelValues(adapter).Observe(duration.Seconds())
	if err != nil {
		AdapterErrors.WithLabelValues(adapter).Inc()
	}
}

// RecordFetch records one upstream fetch.
func RecordFetch(mode string, duration time.Duration, err error) {
	FetchDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if err != nil {
		FetchErrors.WithLabelValues(mode).Inc()
	}
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
