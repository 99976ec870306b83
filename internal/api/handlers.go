// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frontlinehq/frontline/internal/broadcast"
	"github.com/frontlinehq/frontline/internal/logging"
)

// maxWebhookBytes caps inbound webhook payloads.
const maxWebhookBytes = 1 << 20 // 1MB

// defaultListLimit applies when no ?limit= is given. Store-side caps still
// bound the maximum.
const defaultListLimit = 100

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS policy is enforced by the router middleware; the dashboard is
	// served from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Health reports process liveness and basic runtime counters.
func (rt *Router) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	clients := 0
	if rt.hub != nil {
		clients = rt.hub.GetClientCount()
	}

	rw.Success(map[string]interface{}{
		"status":        "ok",
		"uptimeSeconds": int64(time.Since(rt.started).Seconds()),
		"wsClients":     clients,
	})
}

// Events returns the most recent events, newest first.
func (rt *Router) Events(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, ok := parseLimit(rw, r)
	if !ok {
		return
	}

	events, err := rt.store.GetRecentEvents(r.Context(), limit)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load events")
		rw.InternalError("failed to load events")
		return
	}

	rw.SuccessWithMeta(events, &APIMeta{Count: len(events)})
}

// News returns the most recent news items, newest first.
func (rt *Router) News(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, ok := parseLimit(rw, r)
	if !ok {
		return
	}

	news, err := rt.store.GetRecentNews(r.Context(), limit)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load news")
		rw.InternalError("failed to load news")
		return
	}

	rw.SuccessWithMeta(news, &APIMeta{Count: len(news)})
}

// Alerts returns recent alerts. ?active=true restricts to active alerts.
func (rt *Router) Alerts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, ok := parseLimit(rw, r)
	if !ok {
		return
	}

	activeOnly := false
	if raw := r.URL.Query().Get("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			rw.BadRequest("active must be a boolean")
			return
		}
		activeOnly = v
	}

	alerts, err := rt.store.GetRecentAlerts(r.Context(), limit, activeOnly)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load alerts")
		rw.InternalError("failed to load alerts")
		return
	}

	rw.SuccessWithMeta(alerts, &APIMeta{Count: len(alerts)})
}

// Summary returns the latest AI situation summary, or 404 if none has been
// generated yet.
func (rt *Router) Summary(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	summary, err := rt.store.GetLatestSummary(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load summary")
		rw.InternalError("failed to load summary")
		return
	}
	if summary == nil {
		rw.NotFound("no summary generated yet")
		return
	}

	rw.Success(summary)
}

// Sources returns the operational status of every ingestion source plus
// deduplication cache counters.
func (rt *Router) Sources(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	entries, hits := rt.ingest.DedupStats()
	rw.Success(map[string]interface{}{
		"sources": rt.ingest.SourceHealth(),
		"dedup": map[string]interface{}{
			"entries": entries,
			"hits":    hits,
		},
	})
}

// WebhookFeed accepts pushed feed items. The payload may be a JSON array,
// an envelope object, a single item, or a JSON-encoded string wrapping any
// of those; empty payloads are a successful no-op.
func (rt *Router) WebhookFeed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		rw.BadRequest("failed to read request body")
		return
	}

	ingested, err := rt.ingest.IngestWebhook(r.Context(), body)
	if err != nil {
		logging.Error().Err(err).Int("body_bytes", len(body)).Msg("Webhook ingestion failed")
		rw.InternalError("webhook ingestion failed")
		return
	}

	rw.Success(map[string]int{"ingested": ingested})
}

// WebSocket upgrades the connection and attaches it to the broadcast hub.
func (rt *Router) WebSocket(w http.ResponseWriter, r *http.Request) {
	if rt.hub == nil {
		NewResponseWriter(w, r).ServiceUnavailable("websocket hub not running")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		logging.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	client := broadcast.NewClient(rt.hub, conn)
	rt.hub.Register <- client
	client.Start()
}

// parseLimit reads ?limit= and writes a 400 on invalid input. Returns
// (limit, true) on success.
func parseLimit(rw *ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		rw.BadRequest("limit must be a positive integer")
		return 0, false
	}
	return limit, true
}
