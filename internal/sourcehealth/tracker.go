// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

// Package sourcehealth tracks per-adapter run and error counters for the
// operational dashboard. Counters accumulate for the process lifetime and
// are never reset.
package sourcehealth

import (
	"sort"
	"sync"
	"time"

	"github.com/frontlinehq/frontline/internal/models"
)

// sourceState holds the mutable counters for one registered source.
type sourceState struct {
	name          string
	enabled       bool
	interval      time.Duration
	runCount      int64
	errorCount    int64
	lastRunAt     time.Time
	lastSuccessAt time.Time
	lastError     string
}

// Tracker records adapter health across concurrent invocations.
// All methods are safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	sources map[string]*sourceState
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{sources: make(map[string]*sourceState)}
}

// Register declares a source before its first run so the health surface
// lists it even if it never ticks (e.g. disabled by configuration).
func (t *Tracker) Register(name string, interval time.Duration, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sources[name]; ok {
		s.interval = interval
		s.enabled = enabled
		return
	}
	t.sources[name] = &sourceState{name: name, interval: interval, enabled: enabled}
}

// RecordSuccess marks a completed run for name.
func (t *Tracker) RecordSuccess(name string) {
	now := time.Now().UTC()
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.get(name)
	s.runCount++
	s.lastRunAt = now
	s.lastSuccessAt = now
}

// RecordError marks a failed run for name, keeping the most recent error text.
func (t *Tracker) RecordError(name string, err error) {
	now := time.Now().UTC()
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.get(name)
	s.runCount++
	s.errorCount++
	s.lastRunAt = now
	if err != nil {
		s.lastError = err.Error()
	}
}

// get returns the state for name, creating it on first reference.
// Caller must hold mu.
func (t *Tracker) get(name string) *sourceState {
	s, ok := t.sources[name]
	if !ok {
		s = &sourceState{name: name}
		t.sources[name] = s
	}
	return s
}

// Snapshot returns the current status of every registered source, sorted by
// name for a stable monitoring surface.
func (t *Tracker) Snapshot() []models.SourceStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.SourceStatus, 0, len(t.sources))
	for _, s := range t.sources {
		st := models.SourceStatus{
			Name:       s.name,
			Enabled:    s.enabled,
			IntervalMs: s.interval.Milliseconds(),
			Status:     statusFor(s),
			LastError:  s.lastError,
			RunCount:   s.runCount,
			ErrorCount: s.errorCount,
		}
		if !s.lastRunAt.IsZero() {
			rt := s.lastRunAt
			st.LastRunAt = &rt
		}
		if !s.lastSuccessAt.IsZero() {
			ok := s.lastSuccessAt
			st.LastSuccessAt = &ok
		}
		out = append(out, st)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// statusFor derives a coarse status string from the counters.
func statusFor(s *sourceState) string {
	switch {
	case !s.enabled:
		return "disabled"
	case s.runCount == 0:
		return "pending"
	case s.lastSuccessAt.IsZero(), s.lastRunAt.After(s.lastSuccessAt):
		return "failing"
	default:
		return "healthy"
	}
}
