// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/frontlinehq/frontline/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testEvent(id string, ts time.Time) models.Event {
	return models.Event{
		ID:          id,
		Type:        models.EventMissileLaunch,
		Title:       "Missile launch detected",
		Location:    "Tel Aviv",
		Country:     "Israel",
		Lat:         32.0853,
		Lng:         34.7818,
		Source:      "test",
		Timestamp:   ts,
		ThreatLevel: models.ThreatHigh,
	}
}

func TestInsertEventIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	e := testEvent("evt-1", time.Now().UTC())
	if err := db.InsertEvent(ctx, &e); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := db.InsertEvent(ctx, &e); err != nil {
		t.Fatalf("duplicate insert should be a no-op, got: %v", err)
	}

	n, err := db.CountRows(ctx, "events")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 event after duplicate insert, got %d", n)
	}
}

func TestInsertEventAssignsIDAndTimestamp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	e := testEvent("", time.Time{})
	if err := db.InsertEvent(ctx, &e); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if e.ID == "" {
		t.Error("expected generated ID")
	}
	if e.Timestamp.IsZero() {
		t.Error("expected assigned timestamp")
	}
}

func TestEventRetentionEvictsOldestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	events := make([]models.Event, 0, MaxEvents+10)
	for i := 0; i < MaxEvents+10; i++ {
		events = append(events, testEvent(fmt.Sprintf("evt-%d", i), base.Add(time.Duration(i)*time.Minute)))
	}
	if err := db.InsertEventsBatch(ctx, events); err != nil {
		t.Fatalf("batch insert failed: %v", err)
	}

	n, err := db.CountRows(ctx, "events")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != MaxEvents {
		t.Fatalf("expected %d events after retention, got %d", MaxEvents, n)
	}

	got, err := db.GetRecentEvents(ctx, MaxEvents)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	// Newest survive; the 10 oldest are gone.
	if got[0].ID != fmt.Sprintf("evt-%d", MaxEvents+9) {
		t.Errorf("newest event = %s", got[0].ID)
	}
	if got[len(got)-1].ID != "evt-10" {
		t.Errorf("oldest surviving event = %s, want evt-10", got[len(got)-1].ID)
	}
}

func TestNewsBatchAndSentiment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sentiment := -0.4
	items := []models.NewsItem{
		{ID: "n-1", Source: "Kan News", Title: "Sirens in the north", Category: "telegram", Timestamp: time.Now().UTC(), Breaking: true},
		{ID: "n-2", Source: "Kan News", Title: "Markets steady", Category: "telegram", Timestamp: time.Now().UTC(), Sentiment: &sentiment},
	}
	if err := db.InsertNewsBatch(ctx, items); err != nil {
		t.Fatalf("batch insert failed: %v", err)
	}

	got, err := db.GetRecentNews(ctx, 10)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 news items, got %d", len(got))
	}

	byID := make(map[string]models.NewsItem)
	for _, n := range got {
		byID[n.ID] = n
	}
	if byID["n-1"].Sentiment != nil {
		t.Error("expected nil sentiment for n-1")
	}
	if s := byID["n-2"].Sentiment; s == nil || *s != -0.4 {
		t.Errorf("sentiment for n-2 = %v, want -0.4", s)
	}
	if !byID["n-1"].Breaking {
		t.Error("expected n-1 to be breaking")
	}
}

func TestExpireAlerts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	alerts := []models.Alert{
		{ID: "a-old", Area: "חיפה", Threat: "ירי רקטות", Timestamp: now.Add(-2 * time.Hour), Active: true, Lat: 32.794, Lng: 34.9896},
		{ID: "a-new", Area: "תל אביב", Threat: "ירי רקטות", Timestamp: now, Active: true, Lat: 32.0853, Lng: 34.7818},
	}
	if err := db.InsertAlertsBatch(ctx, alerts); err != nil {
		t.Fatalf("batch insert failed: %v", err)
	}

	expired, err := db.ExpireAlerts(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if expired != 1 {
		t.Errorf("expected 1 expired alert, got %d", expired)
	}

	active, err := db.GetRecentAlerts(ctx, 10, true)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != "a-new" {
		t.Errorf("active alerts = %+v, want only a-new", active)
	}

	all, err := db.GetRecentAlerts(ctx, 10, false)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected both alerts retained, got %d", len(all))
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	none, err := db.GetLatestSummary(ctx)
	if err != nil {
		t.Fatalf("query on empty table failed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil summary on empty table, got %+v", none)
	}

	s := &models.AISummary{
		Summary:          "Elevated missile activity across the northern border.",
		ThreatAssessment: "high",
		KeyPoints:        []string{"Sirens in Haifa", "Iron Dome intercepts reported"},
		Recommendation:   "Stay near shelters in affected areas.",
	}
	if err := db.InsertAISummary(ctx, s); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := db.GetLatestSummary(ctx)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a summary")
	}
	if got.ThreatAssessment != "high" {
		t.Errorf("threat assessment = %q", got.ThreatAssessment)
	}
	if len(got.KeyPoints) != 2 || got.KeyPoints[0] != "Sirens in Haifa" {
		t.Errorf("key points = %v", got.KeyPoints)
	}
}
