// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/frontlinehq/frontline/internal/dedup"
	"github.com/frontlinehq/frontline/internal/metrics"
	"github.com/frontlinehq/frontline/internal/models"
)

// webhookItem is one pushed feed item. Producers are inconsistent about
// field names, so both id/guid and url/link spellings are accepted.
type webhookItem struct {
	ID     string `json:"id"`
	GUID   string `json:"guid"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Link   string `json:"link"`
	Source string `json:"source"`
	Date   string `json:"date"`
}

func (w webhookItem) dedupKey() string {
	guid := w.GUID
	if guid == "" {
		guid = w.ID
	}
	link := w.URL
	if link == "" {
		link = w.Link
	}
	return dedup.Key(guid, link, w.Title)
}

// IngestWebhook ingests a pushed payload synchronously and returns the
// number of newly created news items.
//
// It shares the dedup cache with the feed poller, so an item pushed here
// and later re-fetched by the scheduled poll (or vice versa) is ingested
// exactly once.
func (p *Pipeline) IngestWebhook(ctx context.Context, body []byte) (int, error) {
	items, err := parseWebhookPayload(body)
	if err != nil {
		p.health.RecordError(sourceWebhook, err)
		return 0, err
	}

	fresh := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		key := item.dedupKey()
		if key == "" {
			continue
		}
		if p.cache.CheckAndMark(key) {
			metrics.DedupHits.Inc()
			continue
		}
		fresh = append(fresh, newsFromWebhookItem(item))
	}

	if len(fresh) > 0 {
		if err := p.store.InsertNewsBatch(ctx, fresh); err != nil {
			p.health.RecordError(sourceWebhook, err)
			return 0, fmt.Errorf("write webhook batch: %w", err)
		}
		metrics.NewsIngested.WithLabelValues(sourceWebhook).Add(float64(len(fresh)))
	}

	p.health.RecordSuccess(sourceWebhook)
	return len(fresh), nil
}

func newsFromWebhookItem(item webhookItem) models.NewsItem {
	ts := time.Now().UTC()
	if item.Date != "" {
		if parsed, err := time.Parse(time.RFC3339, item.Date); err == nil {
			ts = parsed.UTC()
		}
	}

	source := item.Source
	if source == "" {
		source = sourceWebhook
	}

	url := item.URL
	if url == "" {
		url = item.Link
	}

	title := strings.TrimSpace(item.Title)
	return models.NewsItem{
		ID:        uuid.NewString(),
		Source:    source,
		Title:     title,
		URL:       url,
		Category:  "telegram",
		Timestamp: ts,
		Breaking:  IsBreaking(title),
	}
}

// formCarrierFields are the form field names producers use to carry the
// JSON payload in form-encoded deliveries, in preference order.
var formCarrierFields = []string{"payload", "data", "items", "body"}

// parseWebhookPayload normalizes the shapes push producers actually send:
// a bare array, an object with an items or data field, a single item
// object, any of those wrapped in a JSON string, or a form-encoded body
// carrying the JSON in a payload/data field. Anything else is an error for
// the HTTP layer to report.
func parseWebhookPayload(body []byte) ([]webhookItem, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, nil
	}

	// Text-wrapped JSON: a JSON string whose content is the real payload.
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
			return parseWebhookPayload([]byte(inner))
		}
	}

	var arr []webhookItem
	if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
		return arr, nil
	}

	var envelope struct {
		Items []webhookItem `json:"items"`
		Data  []webhookItem `json:"data"`
	}
	if err := json.Unmarshal([]byte(trimmed), &envelope); err == nil {
		if len(envelope.Items) > 0 {
			return envelope.Items, nil
		}
		if len(envelope.Data) > 0 {
			return envelope.Data, nil
		}
	}

	var single webhookItem
	if err := json.Unmarshal([]byte(trimmed), &single); err == nil && single.Title != "" {
		return []webhookItem{single}, nil
	}

	// Form-encoded delivery: the JSON travels URL-encoded in a form field.
	// ParseQuery accepts almost anything, so only a recognized carrier
	// field counts as a form body.
	if vals, err := url.ParseQuery(trimmed); err == nil {
		for _, field := range formCarrierFields {
			if v := vals.Get(field); v != "" {
				return parseWebhookPayload([]byte(v))
			}
		}
	}

	return nil, fmt.Errorf("unrecognized webhook payload %q", truncate(trimmed, 120))
}
