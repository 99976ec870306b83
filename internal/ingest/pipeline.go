// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package ingest

import (
	"context"
	"time"

	"github.com/frontlinehq/frontline/internal/dedup"
	"github.com/frontlinehq/frontline/internal/fetch"
	"github.com/frontlinehq/frontline/internal/logging"
	"github.com/frontlinehq/frontline/internal/models"
	"github.com/frontlinehq/frontline/internal/scheduler"
	"github.com/frontlinehq/frontline/internal/sourcehealth"
)

// Job and source names as reported by the health surface.
const (
	sourceAlerts      = "alerts"
	sourceFeeds       = "feeds"
	sourceWebhook     = "webhook"
	sourceAlertExpiry = "alert-expiry"
)

// Store is the persistence contract the pipeline relies on. All inserts
// must be idempotent on primary key: a duplicate id is a silent no-op.
type Store interface {
	InsertEvent(ctx context.Context, event *models.Event) error
	InsertEventsBatch(ctx context.Context, events []models.Event) error
	InsertNewsBatch(ctx context.Context, items []models.NewsItem) error
	InsertAlertsBatch(ctx context.Context, alerts []models.Alert) error
	ExpireAlerts(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventNotifier receives each newly created event exactly once, from the
// adapter that created it.
type EventNotifier interface {
	PublishEvent(event *models.Event) error
}

// Fetcher is the outbound fetch contract, satisfied by both fetch.Client
// and fetch.BreakerClient.
type Fetcher interface {
	Get(ctx context.Context, target string) (*fetch.Response, error)
}

// Config holds the pipeline's source settings.
type Config struct {
	// Alert-polling source (national siren system).
	AlertsURL      string
	AlertsEnabled  bool
	AlertsInterval time.Duration
	AuthorityName  string

	// Feed aggregation API. An empty API key disables the feed poller.
	FeedsURL      string
	FeedsAPIKey   string
	FeedsInterval time.Duration

	// Active alerts older than AlertMaxAge are swept to inactive.
	AlertMaxAge         time.Duration
	AlertExpiryInterval time.Duration
}

func (c *Config) applyDefaults() {
	if c.AlertsInterval <= 0 {
		c.AlertsInterval = 5 * time.Second
	}
	if c.FeedsInterval <= 0 {
		c.FeedsInterval = 45 * time.Second
	}
	if c.AlertMaxAge <= 0 {
		c.AlertMaxAge = 10 * time.Minute
	}
	if c.AlertExpiryInterval <= 0 {
		c.AlertExpiryInterval = time.Minute
	}
	if c.AuthorityName == "" {
		c.AuthorityName = "Home Front Command"
	}
}

// Pipeline is the shared context for all source adapters: one dedup cache,
// one health tracker, one scheduler. Constructed once at startup and passed
// by handle; there is no package-level mutable state.
type Pipeline struct {
	cfg    Config
	store  Store
	cache  *dedup.Cache
	health *sourcehealth.Tracker
	sched  *scheduler.Scheduler
	alerts *AlertAdapter
	feeds  *FeedAdapter
}

// New wires the pipeline. Adapters share the cache and tracker; the
// scheduler owns their tickers.
func New(cfg Config, store Store, fetcher Fetcher, notifier EventNotifier) *Pipeline {
	cfg.applyDefaults()

	cache := dedup.NewCache(dedup.DefaultCapacity)
	health := sourcehealth.NewTracker()
	sched := scheduler.New(health)

	p := &Pipeline{
		cfg:    cfg,
		store:  store,
		cache:  cache,
		health: health,
		sched:  sched,
		alerts: NewAlertAdapter(fetcher, store, notifier, cache, cfg.AlertsURL, cfg.AuthorityName),
		feeds:  NewFeedAdapter(fetcher, store, cache, cfg.FeedsURL, cfg.FeedsAPIKey),
	}

	sched.Register(scheduler.Job{
		Name:     sourceAlerts,
		Interval: cfg.AlertsInterval,
		Enabled:  cfg.AlertsEnabled && cfg.AlertsURL != "",
		Run:      p.alerts.Run,
	})
	sched.Register(scheduler.Job{
		Name:     sourceFeeds,
		Interval: cfg.FeedsInterval,
		Enabled:  p.feeds.Enabled(),
		Run:      p.feeds.Run,
	})
	sched.Register(scheduler.Job{
		Name:     sourceAlertExpiry,
		Interval: cfg.AlertExpiryInterval,
		Enabled:  true,
		Run:      p.expireAlerts,
	})

	// The webhook path is push-driven, not scheduled; registered so it
	// still shows up on the health surface.
	health.Register(sourceWebhook, 0, true)

	if !p.feeds.Enabled() {
		logging.Info().Msg("Feed poller disabled: no API key configured")
	}

	return p
}

// Start launches the adapter tickers.
func (p *Pipeline) Start(ctx context.Context) error {
	return p.sched.Start(ctx)
}

// Stop halts all adapters. Safe to call more than once.
func (p *Pipeline) Stop() error {
	return p.sched.Stop()
}

// Serve implements suture.Service by delegating to the scheduler.
func (p *Pipeline) Serve(ctx context.Context) error {
	return p.sched.Serve(ctx)
}

// String implements fmt.Stringer for supervisor logging.
func (p *Pipeline) String() string {
	return "ingest-pipeline"
}

// SourceHealth returns the per-source operational counters.
func (p *Pipeline) SourceHealth() []models.SourceStatus {
	return p.health.Snapshot()
}

// DedupStats reports cache occupancy and duplicate hits for the health
// endpoint.
func (p *Pipeline) DedupStats() (entries int, hits int64) {
	return p.cache.Len(), p.cache.Hits()
}

// expireAlerts sweeps stale active alerts to inactive.
func (p *Pipeline) expireAlerts(ctx context.Context) error {
	_, err := p.store.ExpireAlerts(ctx, time.Now().UTC().Add(-p.cfg.AlertMaxAge))
	return err
}
