// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/frontlinehq/frontline/internal/metrics"
	"github.com/frontlinehq/frontline/internal/models"
)

// GetRecentEvents returns the newest events, most recent first.
func (db *DB) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 || limit > MaxEvents {
		limit = MaxEvents
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, type, title, description, location, country, lat, lng, source, timestamp, threat_level, verified
		 FROM events ORDER BY timestamp DESC LIMIT ?`, limit)
	metrics.RecordDBQuery("select", "events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]models.Event, 0, limit)
	for rows.Next() {
		var (
			e           models.Event
			eventType   string
			threatLevel string
		)
		if err := rows.Scan(&e.ID, &eventType, &e.Title, &e.Description,
			&e.Location, &e.Country, &e.Lat, &e.Lng,
			&e.Source, &e.Timestamp, &threatLevel, &e.Verified); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = models.EventType(eventType)
		e.ThreatLevel = models.ThreatLevel(threatLevel)
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetRecentNews returns the newest news items, most recent first.
func (db *DB) GetRecentNews(ctx context.Context, limit int) ([]models.NewsItem, error) {
	if limit <= 0 || limit > MaxNews {
		limit = MaxNews
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, source, title, url, category, timestamp, breaking, sentiment
		 FROM news ORDER BY timestamp DESC LIMIT ?`, limit)
	metrics.RecordDBQuery("select", "news", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]models.NewsItem, 0, limit)
	for rows.Next() {
		var n models.NewsItem
		if err := rows.Scan(&n.ID, &n.Source, &n.Title, &n.URL,
			&n.Category, &n.Timestamp, &n.Breaking, &n.Sentiment); err != nil {
			return nil, fmt.Errorf("scan news item: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// GetRecentAlerts returns the newest alerts, most recent first. When
// activeOnly is set, expired alerts are excluded.
func (db *DB) GetRecentAlerts(ctx context.Context, limit int, activeOnly bool) ([]models.Alert, error) {
	if limit <= 0 || limit > MaxAlerts {
		limit = MaxAlerts
	}

	query := `SELECT id, area, threat, timestamp, active, lat, lng
		 FROM alerts ORDER BY timestamp DESC LIMIT ?`
	if activeOnly {
		query = `SELECT id, area, threat, timestamp, active, lat, lng
		 FROM alerts WHERE active = true ORDER BY timestamp DESC LIMIT ?`
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, limit)
	metrics.RecordDBQuery("select", "alerts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	alerts := make([]models.Alert, 0, limit)
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.Area, &a.Threat, &a.Timestamp,
			&a.Active, &a.Lat, &a.Lng); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// GetLatestSummary returns the most recent AI summary, or nil when no
// summary has been generated yet.
func (db *DB) GetLatestSummary(ctx context.Context) (*models.AISummary, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, summary, threat_assessment, key_points, recommendation, last_updated
		 FROM ai_summaries ORDER BY last_updated DESC LIMIT 1`)

	var (
		s         models.AISummary
		keyPoints string
	)
	err := row.Scan(&s.ID, &s.Summary, &s.ThreatAssessment, &keyPoints,
		&s.Recommendation, &s.LastUpdated)
	metrics.RecordDBQuery("select", "ai_summaries", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest summary: %w", err)
	}

	if err := json.Unmarshal([]byte(keyPoints), &s.KeyPoints); err != nil {
		return nil, fmt.Errorf("unmarshal key points: %w", err)
	}
	return &s, nil
}

// CountRows returns the current row count of a table. Used by tests and
// the health endpoint.
func (db *DB) CountRows(ctx context.Context, table string) (int, error) {
	switch table {
	case "events", "news", "alerts", "ai_summaries":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}

	var n int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
