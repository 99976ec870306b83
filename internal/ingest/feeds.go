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
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/frontlinehq/frontline/internal/dedup"
	"github.com/frontlinehq/frontline/internal/logging"
	"github.com/frontlinehq/frontline/internal/metrics"
	"github.com/frontlinehq/frontline/internal/models"
)

// FeedAdapter polls the OSINT feed aggregation API: one call lists the
// configured feeds, then each feed's RSS is fetched and parsed.
//
// Missing credentials disable the adapter entirely. That is a configuration
// precondition, not a failure, so the pipeline registers the job disabled
// rather than letting it fail health checks forever.
type FeedAdapter struct {
	fetcher Fetcher
	store   Store
	cache   *dedup.Cache
	apiURL  string
	apiKey  string
	parser  *gofeed.Parser
	log     zerolog.Logger
}

// NewFeedAdapter creates the feed-polling adapter.
func NewFeedAdapter(fetcher Fetcher, store Store, cache *dedup.Cache, apiURL, apiKey string) *FeedAdapter {
	return &FeedAdapter{
		fetcher: fetcher,
		store:   store,
		cache:   cache,
		apiURL:  apiURL,
		apiKey:  apiKey,
		parser:  gofeed.NewParser(),
		log:     logging.With().Str("adapter", "feeds").Logger(),
	}
}

// Enabled reports whether the adapter has the credentials it needs.
func (a *FeedAdapter) Enabled() bool {
	return a.apiKey != "" && a.apiURL != ""
}

// feedInfo is one entry in the aggregation API's feed list.
type feedInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"rss_feed_url"`
}

// Run performs one polling cycle across all configured feeds. A failure on
// one feed is logged and the rest of the cycle continues; only a failure to
// list the feeds at all fails the run.
func (a *FeedAdapter) Run(ctx context.Context) error {
	if !a.Enabled() {
		return nil
	}

	feeds, err := a.listFeeds(ctx)
	if err != nil {
		return fmt.Errorf("list feeds: %w", err)
	}

	var failed int
	for _, feed := range feeds {
		if err := a.ingestFeed(ctx, feed); err != nil {
			failed++
			a.log.Warn().Err(err).Str("feed", feed.Title).Msg("Feed cycle failed, continuing with remaining feeds")
		}
	}

	if failed > 0 && failed == len(feeds) {
		return fmt.Errorf("all %d feeds failed", failed)
	}
	return nil
}

func (a *FeedAdapter) listFeeds(ctx context.Context) ([]feedInfo, error) {
	u, err := url.Parse(a.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed API URL: %w", err)
	}
	q := u.Query()
	q.Set("key", a.apiKey)
	u.RawQuery = q.Encode()

	resp, err := a.fetcher.Get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed list returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Data []feedInfo `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("decode feed list: %w", err)
	}
	return envelope.Data, nil
}

// ingestFeed fetches and normalizes one feed, writing new items as a batch.
func (a *FeedAdapter) ingestFeed(ctx context.Context, feed feedInfo) error {
	resp, err := a.fetcher.Get(ctx, feed.URL)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	parsed, err := a.parser.ParseString(string(resp.Body))
	if err != nil {
		return fmt.Errorf("parse feed: %w", err)
	}

	source := feed.Title
	if source == "" {
		source = parsed.Title
	}

	items := make([]models.NewsItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		key := dedup.Key(item.GUID, item.Link, item.Title)
		if key == "" {
			continue
		}
		if a.cache.CheckAndMark(key) {
			metrics.DedupHits.Inc()
			continue
		}
		items = append(items, newsFromFeedItem(item, source))
	}

	if len(items) == 0 {
		return nil
	}
	if err := a.store.InsertNewsBatch(ctx, items); err != nil {
		return fmt.Errorf("write news batch: %w", err)
	}
	metrics.NewsIngested.WithLabelValues("feeds").Add(float64(len(items)))

	a.log.Debug().Str("feed", source).Int("new_items", len(items)).Msg("Ingested feed items")
	return nil
}

// newsFromFeedItem normalizes one RSS item into a canonical news item.
// Category is fixed to "telegram": the aggregated feeds mirror Telegram
// OSINT channels.
func newsFromFeedItem(item *gofeed.Item, source string) models.NewsItem {
	ts := time.Now().UTC()
	if item.PublishedParsed != nil {
		ts = item.PublishedParsed.UTC()
	}

	title := strings.TrimSpace(item.Title)
	return models.NewsItem{
		ID:        uuid.NewString(),
		Source:    source,
		Title:     title,
		URL:       item.Link,
		Category:  "telegram",
		Timestamp: ts,
		Breaking:  IsBreaking(title),
	}
}
