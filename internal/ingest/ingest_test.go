// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frontlinehq/frontline/internal/fetch"
	"github.com/frontlinehq/frontline/internal/geo"
	"github.com/frontlinehq/frontline/internal/models"
)

// fakeStore records writes in memory, mimicking the store's idempotency.
type fakeStore struct {
	mu      sync.Mutex
	events  []models.Event
	news    []models.NewsItem
	alerts  []models.Alert
	expired int
}

func (s *fakeStore) InsertEvent(ctx context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.events {
		if existing.ID == e.ID {
			return nil
		}
	}
	s.events = append(s.events, *e)
	return nil
}

func (s *fakeStore) InsertEventsBatch(ctx context.Context, events []models.Event) error {
	for i := range events {
		if err := s.InsertEvent(ctx, &events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStore) InsertNewsBatch(ctx context.Context, items []models.NewsItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.news = append(s.news, items...)
	return nil
}

func (s *fakeStore) InsertAlertsBatch(ctx context.Context, alerts []models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alerts...)
	return nil
}

func (s *fakeStore) ExpireAlerts(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired++
	return 0, nil
}

func (s *fakeStore) newsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.news)
}

// fakeNotifier counts published events.
type fakeNotifier struct {
	mu     sync.Mutex
	events []models.Event
}

func (n *fakeNotifier) PublishEvent(e *models.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, *e)
	return nil
}

// fakeFetcher serves canned responses by URL prefix.
type fakeFetcher struct {
	responses map[string]*fetch.Response
	errs      map[string]error
}

func (f *fakeFetcher) Get(ctx context.Context, target string) (*fetch.Response, error) {
	for prefix, err := range f.errs {
		if strings.HasPrefix(target, prefix) {
			return nil, err
		}
	}
	for prefix, resp := range f.responses {
		if strings.HasPrefix(target, prefix) {
			return resp, nil
		}
	}
	return &fetch.Response{StatusCode: http.StatusNotFound}, nil
}

func okResponse(body string) *fetch.Response {
	return &fetch.Response{StatusCode: http.StatusOK, Body: []byte(body)}
}

func newTestPipeline(fetcher Fetcher, cfg Config) (*Pipeline, *fakeStore, *fakeNotifier) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	if cfg.AlertsURL == "" {
		cfg.AlertsURL = "https://alerts.test/active"
	}
	p := New(cfg, store, fetcher, notifier)
	return p, store, notifier
}

func TestIsBreaking(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"BREAKING: missile intercepted over Tel Aviv", true},
		{"breaking news from the north", true},
		{"מבזק: אזעקות בצפון", true},
		{"عاجل: انفجار في المنطقة", true},
		{"Weekly summary of regional news", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsBreaking(tt.title); got != tt.want {
			t.Errorf("IsBreaking(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestAlertAdapterEmptyBodyIsNoOp(t *testing.T) {
	for _, body := range []string{"", "[]", `""`} {
		fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
			"https://alerts.test": okResponse(body),
		}}
		p, store, notifier := newTestPipeline(fetcher, Config{AlertsEnabled: true})

		if err := p.alerts.Run(context.Background()); err != nil {
			t.Errorf("body %q: expected no-op, got error: %v", body, err)
		}
		if len(store.alerts) != 0 || len(store.events) != 0 || len(notifier.events) != 0 {
			t.Errorf("body %q: expected zero writes", body)
		}
	}
}

func TestAlertAdapterPairsAlertsAndEvents(t *testing.T) {
	payload := `{"id":"100","title":"ירי רקטות","data":["תל אביב","חיפה"]}`
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		"https://alerts.test": okResponse(payload),
	}}
	p, store, notifier := newTestPipeline(fetcher, Config{AlertsEnabled: true})

	if err := p.alerts.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(store.alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(store.alerts))
	}
	if len(store.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(store.events))
	}
	if len(notifier.events) != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", len(notifier.events))
	}

	for i, area := range []string{"תל אביב", "חיפה"} {
		alert := store.alerts[i]
		event := store.events[i]
		coords := geo.Lookup(area)

		if alert.Area != area || !alert.Active {
			t.Errorf("alert[%d] = %+v", i, alert)
		}
		if alert.Lat != coords.Lat || alert.Lng != coords.Lng {
			t.Errorf("alert[%d] coords = (%f,%f), want (%f,%f)", i, alert.Lat, alert.Lng, coords.Lat, coords.Lng)
		}
		if event.Type != models.EventAirRaidAlert {
			t.Errorf("event[%d] type = %q", i, event.Type)
		}
		if event.ThreatLevel != models.ThreatCritical {
			t.Errorf("event[%d] threat = %q", i, event.ThreatLevel)
		}
		if !event.Verified {
			t.Errorf("event[%d] not verified", i)
		}
		if event.Lat != coords.Lat || event.Lng != coords.Lng {
			t.Errorf("event[%d] coords mismatch", i)
		}
	}
}

func TestAlertAdapterDoesNotRebroadcastActiveAlert(t *testing.T) {
	payload := `{"id":"200","title":"ירי רקטות","data":["תל אביב"]}`
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		"https://alerts.test": okResponse(payload),
	}}
	p, store, notifier := newTestPipeline(fetcher, Config{AlertsEnabled: true})

	// The siren system re-reports the same alert on every poll.
	for i := 0; i < 3; i++ {
		if err := p.alerts.Run(context.Background()); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}

	if len(store.alerts) != 1 {
		t.Errorf("expected 1 alert after repeated polls, got %d", len(store.alerts))
	}
	if len(notifier.events) != 1 {
		t.Errorf("expected 1 broadcast after repeated polls, got %d", len(notifier.events))
	}
}

func TestAlertAdapterUnknownAreaFallsBack(t *testing.T) {
	payload := `{"id":"300","title":"ירי רקטות","data":["עיר לא קיימת כלל"]}`
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		"https://alerts.test": okResponse(payload),
	}}
	p, store, _ := newTestPipeline(fetcher, Config{AlertsEnabled: true})

	if err := p.alerts.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(store.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(store.alerts))
	}
	if store.alerts[0].Lat != geo.DefaultCenter.Lat || store.alerts[0].Lng != geo.DefaultCenter.Lng {
		t.Errorf("expected default centroid for unknown area, got (%f,%f)",
			store.alerts[0].Lat, store.alerts[0].Lng)
	}
}

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>OSINT Aggregate</title>
<item><guid>item-1</guid><title>BREAKING: missile intercepted over Tel Aviv</title><link>https://t.me/x/1</link></item>
<item><guid>item-2</guid><title>Weekly summary of regional news</title><link>https://t.me/x/2</link></item>
</channel></rss>`

func feedFetcher() *fakeFetcher {
	return &fakeFetcher{responses: map[string]*fetch.Response{
		"https://api.feeds.test/feeds": okResponse(`{"data":[{"id":"f1","title":"Kan News","rss_feed_url":"https://rss.test/f1"}]}`),
		"https://rss.test/f1":          okResponse(testRSS),
	}}
}

func TestFeedAdapterIngestsAndFlagsBreaking(t *testing.T) {
	p, store, _ := newTestPipeline(feedFetcher(), Config{
		FeedsURL:    "https://api.feeds.test/feeds",
		FeedsAPIKey: "k",
	})

	if err := p.feeds.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if store.newsCount() != 2 {
		t.Fatalf("expected 2 news items, got %d", store.newsCount())
	}

	byTitle := make(map[string]models.NewsItem)
	for _, n := range store.news {
		byTitle[n.Title] = n
	}
	if !byTitle["BREAKING: missile intercepted over Tel Aviv"].Breaking {
		t.Error("expected breaking=true for keyword title")
	}
	if byTitle["Weekly summary of regional news"].Breaking {
		t.Error("expected breaking=false for plain title")
	}
	for _, n := range store.news {
		if n.Category != "telegram" {
			t.Errorf("category = %q, want telegram", n.Category)
		}
		if n.Source != "Kan News" {
			t.Errorf("source = %q, want Kan News", n.Source)
		}
	}
}

func TestFeedAdapterIdempotent(t *testing.T) {
	p, store, _ := newTestPipeline(feedFetcher(), Config{
		FeedsURL:    "https://api.feeds.test/feeds",
		FeedsAPIKey: "k",
	})

	for i := 0; i < 2; i++ {
		if err := p.feeds.Run(context.Background()); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}
	if store.newsCount() != 2 {
		t.Errorf("expected 2 news items after replayed fetch, got %d", store.newsCount())
	}
}

func TestFeedAdapterNoOpWithoutCredentials(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{
		"https://": fmt.Errorf("should not be called"),
	}}
	p, store, _ := newTestPipeline(fetcher, Config{
		FeedsURL: "https://api.feeds.test/feeds",
	})

	if err := p.feeds.Run(context.Background()); err != nil {
		t.Fatalf("expected silent no-op, got: %v", err)
	}
	if store.newsCount() != 0 {
		t.Errorf("expected no writes, got %d", store.newsCount())
	}
}

func TestFeedAdapterIsolatesFailingFeed(t *testing.T) {
	fetcher := &fakeFetcher{
		responses: map[string]*fetch.Response{
			"https://api.feeds.test/feeds": okResponse(`{"data":[
				{"id":"f1","title":"Broken","rss_feed_url":"https://rss.test/broken"},
				{"id":"f2","title":"Kan News","rss_feed_url":"https://rss.test/f2"}]}`),
			"https://rss.test/f2": okResponse(testRSS),
		},
		errs: map[string]error{
			"https://rss.test/broken": fmt.Errorf("connection refused"),
		},
	}
	p, store, _ := newTestPipeline(fetcher, Config{
		FeedsURL:    "https://api.feeds.test/feeds",
		FeedsAPIKey: "k",
	})

	if err := p.feeds.Run(context.Background()); err != nil {
		t.Fatalf("one broken feed must not fail the cycle: %v", err)
	}
	if store.newsCount() != 2 {
		t.Errorf("expected 2 items from the healthy feed, got %d", store.newsCount())
	}
}

func TestWebhookPayloadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"array", `[{"guid":"w1","title":"Explosion reported"},{"guid":"w2","title":"Second item"}]`, 2},
		{"items envelope", `{"items":[{"guid":"w3","title":"Item three"}]}`, 1},
		{"data envelope", `{"data":[{"guid":"w4","title":"Item four"}]}`, 1},
		{"single object", `{"guid":"w5","title":"Item five"}`, 1},
		{"text-wrapped JSON", `"[{\"guid\":\"w6\",\"title\":\"Item six\"}]"`, 1},
		{"form payload field", "payload=" + url.QueryEscape(`[{"guid":"w7","title":"Item seven"},{"guid":"w8","title":"Item eight"}]`), 2},
		{"form data field", "data=" + url.QueryEscape(`{"items":[{"guid":"w9","title":"Item nine"}]}`), 1},
		{"empty body", ``, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, store, _ := newTestPipeline(&fakeFetcher{}, Config{})
			n, err := p.IngestWebhook(context.Background(), []byte(tt.body))
			if err != nil {
				t.Fatalf("ingest failed: %v", err)
			}
			if n != tt.want {
				t.Errorf("ingested = %d, want %d", n, tt.want)
			}
			if store.newsCount() != tt.want {
				t.Errorf("stored = %d, want %d", store.newsCount(), tt.want)
			}
		})
	}
}

func TestWebhookRejectsGarbage(t *testing.T) {
	p, _, _ := newTestPipeline(&fakeFetcher{}, Config{})
	if _, err := p.IngestWebhook(context.Background(), []byte("<<<not json>>>")); err == nil {
		t.Fatal("expected error for unparseable body")
	}
}

func TestCrossPathDedup(t *testing.T) {
	p, store, _ := newTestPipeline(feedFetcher(), Config{
		FeedsURL:    "https://api.feeds.test/feeds",
		FeedsAPIKey: "k",
	})

	// Pushed first via webhook, then re-delivered by the scheduled fetch.
	n, err := p.IngestWebhook(context.Background(),
		[]byte(`[{"guid":"item-1","title":"BREAKING: missile intercepted over Tel Aviv"}]`))
	if err != nil {
		t.Fatalf("webhook ingest failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("webhook ingested = %d, want 1", n)
	}

	if err := p.feeds.Run(context.Background()); err != nil {
		t.Fatalf("feed run failed: %v", err)
	}

	// item-1 arrived on both paths but is ingested once; item-2 only via feed.
	if store.newsCount() != 2 {
		t.Errorf("expected 2 total items across both paths, got %d", store.newsCount())
	}
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	p, store, _ := newTestPipeline(&fakeFetcher{}, Config{})
	body := []byte(`[{"guid":"dup-1","title":"Explosion reported"}]`)

	n1, err := p.IngestWebhook(context.Background(), body)
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	n2, err := p.IngestWebhook(context.Background(), body)
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}

	if n1 != 1 || n2 != 0 {
		t.Errorf("ingested counts = (%d,%d), want (1,0)", n1, n2)
	}
	if store.newsCount() != 1 {
		t.Errorf("stored = %d, want 1", store.newsCount())
	}
}

func TestSourceHealthSurface(t *testing.T) {
	p, _, _ := newTestPipeline(&fakeFetcher{}, Config{AlertsEnabled: true})

	if _, err := p.IngestWebhook(context.Background(), []byte(`[]`)); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	snap := p.SourceHealth()
	names := make(map[string]models.SourceStatus)
	for _, s := range snap {
		names[s.Name] = s
	}
	for _, want := range []string{sourceAlerts, sourceFeeds, sourceWebhook, sourceAlertExpiry} {
		if _, ok := names[want]; !ok {
			t.Errorf("missing %q in health snapshot", want)
		}
	}
	if names[sourceWebhook].RunCount != 1 {
		t.Errorf("webhook runCount = %d, want 1", names[sourceWebhook].RunCount)
	}
	if names[sourceFeeds].Status != "disabled" {
		t.Errorf("feeds status = %q, want disabled (no API key)", names[sourceFeeds].Status)
	}
}
