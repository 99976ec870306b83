// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

// Package models defines the canonical record types shared across the
// ingestion pipeline, the store and the API layer. Records are normalized
// here once, at ingestion time, so that every downstream consumer (map UI,
// ticker, summarizer) sees a single schema regardless of source format.
package models

import "time"

// EventType classifies a canonical event. The set is closed: adapters must
// map whatever their source reports onto one of these values, falling back
// to EventOther. The frontend keys map icons and threat defaults off it.
type EventType string

const (
	EventMissileLaunch    EventType = "missile_launch"
	EventMissileIntercept EventType = "missile_intercept"
	EventAirRaidAlert     EventType = "air_raid_alert"
	EventDroneAttack      EventType = "drone_attack"
	EventAirstrike        EventType = "airstrike"
	EventArtillery        EventType = "artillery"
	EventGroundOperation  EventType = "ground_operation"
	EventCyberAttack      EventType = "cyber_attack"
	EventExplosion        EventType = "explosion"
	EventOther            EventType = "other"
)

// eventTypes is the membership set for Valid.
var eventTypes = map[EventType]bool{
	EventMissileLaunch:    true,
	EventMissileIntercept: true,
	EventAirRaidAlert:     true,
	EventDroneAttack:      true,
	EventAirstrike:        true,
	EventArtillery:        true,
	EventGroundOperation:  true,
	EventCyberAttack:      true,
	EventExplosion:        true,
	EventOther:            true,
}

// Valid reports whether t is a member of the closed event type set.
func (t EventType) Valid() bool {
	return eventTypes[t]
}

// ThreatLevel is the closed 4-level threat classification.
type ThreatLevel string

const (
	ThreatLow      ThreatLevel = "low"
	ThreatMedium   ThreatLevel = "medium"
	ThreatHigh     ThreatLevel = "high"
	ThreatCritical ThreatLevel = "critical"
)

// Valid reports whether l is one of the four defined levels.
func (l ThreatLevel) Valid() bool {
	switch l {
	case ThreatLow, ThreatMedium, ThreatHigh, ThreatCritical:
		return true
	}
	return false
}

// Event is an observed real-world occurrence, created exactly once by an
// adapter at ingestion time and immutable afterwards. Lat/Lng are always
// populated; the geo package supplies a default centroid when the location
// cannot be resolved.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Country     string      `json:"country"`
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	Source      string      `json:"source"`
	Timestamp   time.Time   `json:"timestamp"`
	ThreatLevel ThreatLevel `json:"threatLevel"`
	Verified    bool        `json:"verified"`
}

// NewsItem is an external news or social post. Breaking is computed once at
// ingestion from the title and never revisited. Sentiment is filled in by a
// separate enrichment step and stays nil until then.
type NewsItem struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Breaking  bool      `json:"breaking"`
	Sentiment *float64  `json:"sentiment,omitempty"`
}

// Alert is an active or expired siren warning for a named area. Every
// alert-producing ingestion also produces exactly one paired Event of type
// air_raid_alert; the pairing happens in the alert adapter, not here.
type Alert struct {
	ID        string    `json:"id"`
	Area      string    `json:"area"`
	Threat    string    `json:"threat"`
	Timestamp time.Time `json:"timestamp"`
	Active    bool      `json:"active"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
}

// AISummary is a derived threat summary recomputed periodically from recent
// events and news. A new row is appended on every successful recomputation;
// only the most recent row is current.
type AISummary struct {
	ID               string      `json:"id"`
	Summary          string      `json:"summary"`
	ThreatAssessment ThreatLevel `json:"threatAssessment"`
	KeyPoints        []string    `json:"keyPoints"`
	Recommendation   string      `json:"recommendation"`
	LastUpdated      time.Time   `json:"lastUpdated"`
}

// SourceStatus is the operational snapshot of one adapter, exposed on the
// monitoring surface. Counters accumulate for the process lifetime.
type SourceStatus struct {
	Name          string     `json:"name"`
	Enabled       bool       `json:"enabled"`
	IntervalMs    int64      `json:"intervalMs"`
	Status        string     `json:"status"`
	LastRunAt     *time.Time `json:"lastRunAt,omitempty"`
	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
	RunCount      int64      `json:"runCount"`
	ErrorCount    int64      `json:"errorCount"`
}
