// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/frontlinehq/frontline/internal/dedup"
	"github.com/frontlinehq/frontline/internal/geo"
	"github.com/frontlinehq/frontline/internal/logging"
	"github.com/frontlinehq/frontline/internal/metrics"
	"github.com/frontlinehq/frontline/internal/models"
)

// AlertAdapter polls the national siren system. The endpoint is
// geo-restricted, so the fetch client is normally configured in proxy mode.
//
// Every alert-triggering poll produces exactly one Alert and one
// air_raid_alert event per affected area, both with coordinates from the
// gazetteer. The source is authoritative: every synthesized event is
// verified and critical.
type AlertAdapter struct {
	fetcher   Fetcher
	store     Store
	notifier  EventNotifier
	cache     *dedup.Cache
	url       string
	authority string
	log       zerolog.Logger
}

// NewAlertAdapter creates the alert-polling adapter.
func NewAlertAdapter(fetcher Fetcher, store Store, notifier EventNotifier, cache *dedup.Cache, url, authority string) *AlertAdapter {
	return &AlertAdapter{
		fetcher:   fetcher,
		store:     store,
		notifier:  notifier,
		cache:     cache,
		url:       url,
		authority: authority,
		log:       logging.With().Str("adapter", "alerts").Logger(),
	}
}

// alertPayload is the upstream alert shape: a threat headline plus the
// list of affected areas. The body may be a single payload or an array.
type alertPayload struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"desc"`
	Areas       []string `json:"data"`
}

// Run performs one polling cycle.
//
// An empty body or "[]" means no active alerts and is a successful no-op,
// not an error. The siren system re-reports active alerts on every poll,
// so each (alert id, area) pair passes through the dedup cache; without
// that, a 10-minute alert polled every 5 seconds would broadcast 120 times.
func (a *AlertAdapter) Run(ctx context.Context) error {
	resp, err := a.fetcher.Get(ctx, a.url)
	if err != nil {
		return fmt.Errorf("alert fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alert endpoint returned status %d", resp.StatusCode)
	}

	payloads, err := parseAlertPayloads(resp.Body)
	if err != nil {
		return fmt.Errorf("alert parse: %w", err)
	}
	if len(payloads) == 0 {
		return nil
	}

	now := time.Now().UTC()
	var alerts []models.Alert
	var events []models.Event

	for _, p := range payloads {
		threat := strings.TrimSpace(p.Title)
		if threat == "" {
			threat = "התרעה"
		}

		for _, area := range p.Areas {
			area = strings.TrimSpace(area)
			if area == "" {
				continue
			}

			key := alertDedupKey(p, area)
			if a.cache.CheckAndMark(key) {
				metrics.DedupHits.Inc()
				continue
			}

			coords := geo.Lookup(area)
			alerts = append(alerts, models.Alert{
				ID:        uuid.NewString(),
				Area:      area,
				Threat:    threat,
				Timestamp: now,
				Active:    true,
				Lat:       coords.Lat,
				Lng:       coords.Lng,
			})
			events = append(events, models.Event{
				ID:          uuid.NewString(),
				Type:        models.EventAirRaidAlert,
				Title:       fmt.Sprintf("%s - %s", threat, area),
				Description: p.Description,
				Location:    area,
				Country:     "Israel",
				Lat:         coords.Lat,
				Lng:         coords.Lng,
				Source:      a.authority,
				Timestamp:   now,
				ThreatLevel: models.ThreatCritical,
				Verified:    true,
			})
		}
	}

	if len(alerts) == 0 {
		return nil
	}

	if err := a.store.InsertAlertsBatch(ctx, alerts); err != nil {
		return fmt.Errorf("write alerts: %w", err)
	}
	metrics.AlertsIngested.Add(float64(len(alerts)))

	// Events are written individually so one bad row never drops the rest,
	// and each is broadcast exactly once by this adapter.
	for i := range events {
		event := &events[i]
		if err := a.store.InsertEvent(ctx, event); err != nil {
			a.log.Warn().Err(err).Str("area", event.Location).Msg("Failed to write alert event")
			continue
		}
		metrics.EventsIngested.WithLabelValues(a.authority).Inc()
		if err := a.notifier.PublishEvent(event); err != nil {
			a.log.Warn().Err(err).Str("event_id", event.ID).Msg("Failed to broadcast alert event")
		}
	}

	a.log.Info().Int("alerts", len(alerts)).Msg("Ingested active alerts")
	return nil
}

// alertDedupKey identifies one (alert, area) pair across polling cycles.
func alertDedupKey(p alertPayload, area string) string {
	id := p.ID
	if id == "" {
		id = p.Title
	}
	return "alert:" + id + "|" + area
}

// parseAlertPayloads accepts an empty body, "" (quoted empty string), "[]",
// a single payload object, or an array of payloads.
func parseAlertPayloads(body []byte) ([]alertPayload, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == `""` || trimmed == "[]" || trimmed == "null" {
		return nil, nil
	}

	var many []alertPayload
	if err := json.Unmarshal([]byte(trimmed), &many); err == nil {
		return many, nil
	}

	var one alertPayload
	if err := json.Unmarshal([]byte(trimmed), &one); err == nil {
		if len(one.Areas) == 0 && one.Title == "" {
			return nil, nil
		}
		return []alertPayload{one}, nil
	}

	return nil, fmt.Errorf("unrecognized alert body %q", truncate(trimmed, 120))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
