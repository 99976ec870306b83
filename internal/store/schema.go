// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package store

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// createTables creates the core tables and indexes.
//
// All four tables use TEXT primary keys supplied by the ingestion pipeline.
// Inserts use ON CONFLICT DO NOTHING so replayed payloads (webhook retries,
// poller/webhook races, restarts with a cold dedup cache) are idempotent.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			location TEXT,
			country TEXT,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			source TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			threat_level TEXT NOT NULL,
			verified BOOLEAN NOT NULL DEFAULT false
		)`,

		`CREATE TABLE IF NOT EXISTS news (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT,
			category TEXT,
			timestamp TIMESTAMP NOT NULL,
			breaking BOOLEAN NOT NULL DEFAULT false,
			sentiment DOUBLE
		)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			area TEXT NOT NULL,
			threat TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS ai_summaries (
			id TEXT PRIMARY KEY,
			summary TEXT NOT NULL,
			threat_assessment TEXT NOT NULL,
			key_points TEXT NOT NULL,
			recommendation TEXT,
			last_updated TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_news_timestamp ON news(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_timestamp ON alerts(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts(active)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_updated ON ai_summaries(last_updated)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}
