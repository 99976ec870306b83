// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package store

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/frontlinehq/frontline/internal/logging"
	"github.com/frontlinehq/frontline/internal/metrics"
	"github.com/frontlinehq/frontline/internal/models"
)

// InsertEvent inserts a single war event.
//
// Uses INSERT ... ON CONFLICT DO NOTHING so the same event ID arriving twice
// (webhook retry, cold dedup cache after restart) is silently ignored.
func (db *DB) InsertEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO events (id, type, title, description, location, country, lat, lng, source, timestamp, threat_level, verified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		event.ID, string(event.Type), event.Title, event.Description,
		event.Location, event.Country, event.Lat, event.Lng,
		event.Source, event.Timestamp, string(event.ThreatLevel), event.Verified,
	)
	metrics.RecordDBQuery("insert", "events", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", event.ID, err)
	}

	return db.enforceRetention(ctx, "events", MaxEvents)
}

// InsertEventsBatch inserts events in a single transaction.
func (db *DB) InsertEventsBatch(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	start := time.Now()
	err := db.withTx(ctx, func(tx txExecer) error {
		for i := range events {
			e := &events[i]
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if e.Timestamp.IsZero() {
				e.Timestamp = time.Now().UTC()
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO events (id, type, title, description, location, country, lat, lng, source, timestamp, threat_level, verified)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT DO NOTHING`,
				e.ID, string(e.Type), e.Title, e.Description,
				e.Location, e.Country, e.Lat, e.Lng,
				e.Source, e.Timestamp, string(e.ThreatLevel), e.Verified,
			); err != nil {
				return fmt.Errorf("insert event %s: %w", e.ID, err)
			}
		}
		return nil
	})
	metrics.RecordDBQuery("insert_batch", "events", time.Since(start), err)
	if err != nil {
		return err
	}

	return db.enforceRetention(ctx, "events", MaxEvents)
}

// InsertNewsBatch inserts news items in a single transaction.
func (db *DB) InsertNewsBatch(ctx context.Context, items []models.NewsItem) error {
	if len(items) == 0 {
		return nil
	}

	start := time.Now()
	err := db.withTx(ctx, func(tx txExecer) error {
		for i := range items {
			n := &items[i]
			if n.ID == "" {
				n.ID = uuid.NewString()
			}
			if n.Timestamp.IsZero() {
				n.Timestamp = time.Now().UTC()
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO news (id, source, title, url, category, timestamp, breaking, sentiment)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT DO NOTHING`,
				n.ID, n.Source, n.Title, n.URL, n.Category,
				n.Timestamp, n.Breaking, n.Sentiment,
			); err != nil {
				return fmt.Errorf("insert news item %s: %w", n.ID, err)
			}
		}
		return nil
	})
	metrics.RecordDBQuery("insert_batch", "news", time.Since(start), err)
	if err != nil {
		return err
	}

	return db.enforceRetention(ctx, "news", MaxNews)
}

// InsertAlertsBatch inserts air-raid alerts in a single transaction.
func (db *DB) InsertAlertsBatch(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	start := time.Now()
	err := db.withTx(ctx, func(tx txExecer) error {
		for i := range alerts {
			a := &alerts[i]
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			if a.Timestamp.IsZero() {
				a.Timestamp = time.Now().UTC()
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO alerts (id, area, threat, timestamp, active, lat, lng)
				 VALUES (?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT DO NOTHING`,
				a.ID, a.Area, a.Threat, a.Timestamp, a.Active, a.Lat, a.Lng,
			); err != nil {
				return fmt.Errorf("insert alert %s: %w", a.ID, err)
			}
		}
		return nil
	})
	metrics.RecordDBQuery("insert_batch", "alerts", time.Since(start), err)
	if err != nil {
		return err
	}

	return db.enforceRetention(ctx, "alerts", MaxAlerts)
}

// InsertAISummary inserts a generated situation summary. KeyPoints are
// stored as a JSON array in a TEXT column.
func (db *DB) InsertAISummary(ctx context.Context, s *models.AISummary) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.LastUpdated.IsZero() {
		s.LastUpdated = time.Now().UTC()
	}

	keyPoints, err := json.Marshal(s.KeyPoints)
	if err != nil {
		return fmt.Errorf("marshal key points: %w", err)
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO ai_summaries (id, summary, threat_assessment, key_points, recommendation, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		s.ID, s.Summary, s.ThreatAssessment, string(keyPoints),
		s.Recommendation, s.LastUpdated,
	)
	metrics.RecordDBQuery("insert", "ai_summaries", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert summary %s: %w", s.ID, err)
	}

	return db.enforceRetentionByColumn(ctx, "ai_summaries", "last_updated", MaxSummaries)
}

// ExpireAlerts marks active alerts older than cutoff as inactive and
// returns the number of alerts expired.
func (db *DB) ExpireAlerts(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE alerts SET active = false WHERE active = true AND timestamp < ?`, cutoff)
	metrics.RecordDBQuery("update", "alerts", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("expire alerts: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	if n > 0 {
		logging.Debug().Int64("expired", n).Msg("Expired stale alerts")
	}
	return n, nil
}
