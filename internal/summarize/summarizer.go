// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/frontlinehq/frontline/internal/logging"
	"github.com/frontlinehq/frontline/internal/metrics"
	"github.com/frontlinehq/frontline/internal/models"
)

const (
	// How much recent context feeds each recomputation.
	recentEventCount = 30
	recentNewsCount  = 20

	defaultInterval = 5 * time.Minute
)

const systemPrompt = `You are a military situation analyst for a real-time war events dashboard covering the Middle East.
Given recent events and news, produce a concise situational assessment.
Respond with ONLY a JSON object, no prose, with exactly these fields:
{"summary": "<2-3 sentence prose assessment>",
 "threatAssessment": "<one of: low, medium, high, critical>",
 "keyPoints": ["<short bullet>", ...],
 "recommendation": "<one sentence of civilian guidance>"}`

// ReadStore is the store surface the summarizer needs.
type ReadStore interface {
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	GetRecentNews(ctx context.Context, limit int) ([]models.NewsItem, error)
	InsertAISummary(ctx context.Context, s *models.AISummary) error
}

// SummarySink receives each freshly persisted summary for live fan-out.
type SummarySink interface {
	BroadcastSummary(summary *models.AISummary)
}

// aiResponse is the shape the model must return. All four fields are
// required; a response missing any of them skips the tick entirely so a
// partial summary is never persisted.
type aiResponse struct {
	Summary          string   `json:"summary" validate:"required"`
	ThreatAssessment string   `json:"threatAssessment" validate:"required"`
	KeyPoints        []string `json:"keyPoints" validate:"required,min=1,dive,required"`
	Recommendation   string   `json:"recommendation" validate:"required"`
}

// Summarizer periodically recomputes a structured threat summary from the
// most recent canonical records.
type Summarizer struct {
	store     ReadStore
	completer Completer
	sink      SummarySink
	validate  *validator.Validate
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a summarizer. sink may be nil. A zero interval uses the
// 5-minute default.
func New(store ReadStore, completer Completer, sink SummarySink, interval time.Duration) *Summarizer {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Summarizer{
		store:     store,
		completer: completer,
		sink:      sink,
		validate:  validator.New(),
		interval:  interval,
		log:       logging.With().Str("component", "summarizer").Logger(),
	}
}

// Serve implements suture.Service: one recomputation per interval tick
// until the context is canceled. A failed tick is logged and skipped, never
// fatal.
func (s *Summarizer) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Warn().Err(err).Msg("Summary tick skipped")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *Summarizer) String() string {
	return "ai-summarizer"
}

// RunOnce performs a single recomputation. Any failure (fetch, model call,
// parse, validation) skips the tick without writing; the previous summary
// remains current.
func (s *Summarizer) RunOnce(ctx context.Context) error {
	start := time.Now()

	events, err := s.store.GetRecentEvents(ctx, recentEventCount)
	if err != nil {
		metrics.SummaryGenerations.WithLabelValues("error").Inc()
		return fmt.Errorf("load recent events: %w", err)
	}
	news, err := s.store.GetRecentNews(ctx, recentNewsCount)
	if err != nil {
		metrics.SummaryGenerations.WithLabelValues("error").Inc()
		return fmt.Errorf("load recent news: %w", err)
	}

	if len(events) == 0 && len(news) == 0 {
		metrics.SummaryGenerations.WithLabelValues("skipped").Inc()
		s.log.Debug().Msg("No recent records, skipping summary")
		return nil
	}

	raw, err := s.completer.Complete(ctx, systemPrompt, buildUserPrompt(events, news))
	if err != nil {
		metrics.SummaryGenerations.WithLabelValues("error").Inc()
		return fmt.Errorf("completion: %w", err)
	}

	summary, err := s.parseResponse(raw)
	if err != nil {
		metrics.SummaryGenerations.WithLabelValues("error").Inc()
		return err
	}

	if err := s.store.InsertAISummary(ctx, summary); err != nil {
		metrics.SummaryGenerations.WithLabelValues("error").Inc()
		return fmt.Errorf("persist summary: %w", err)
	}

	metrics.SummaryGenerations.WithLabelValues("ok").Inc()
	metrics.SummaryGenerationDuration.Observe(time.Since(start).Seconds())

	if s.sink != nil {
		s.sink.BroadcastSummary(summary)
	}

	s.log.Info().
		Str("threat", string(summary.ThreatAssessment)).
		Int("key_points", len(summary.KeyPoints)).
		Msg("Summary updated")
	return nil
}

// parseResponse validates the untrusted model output. A missing field is a
// skip; an out-of-range threatAssessment is coerced to medium rather than
// rejected.
func (s *Summarizer) parseResponse(raw string) (*models.AISummary, error) {
	cleaned := cleanJSONResponse(raw)

	var resp aiResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	if err := s.validate.Struct(&resp); err != nil {
		return nil, fmt.Errorf("model response failed validation: %w", err)
	}

	threat := models.ThreatLevel(strings.ToLower(strings.TrimSpace(resp.ThreatAssessment)))
	if !threat.Valid() {
		s.log.Warn().Str("value", resp.ThreatAssessment).Msg("Invalid threat assessment, coercing to medium")
		threat = models.ThreatMedium
	}

	return &models.AISummary{
		Summary:          resp.Summary,
		ThreatAssessment: threat,
		KeyPoints:        resp.KeyPoints,
		Recommendation:   resp.Recommendation,
		LastUpdated:      time.Now().UTC(),
	}, nil
}

// buildUserPrompt renders recent records into the fixed prompt shape.
func buildUserPrompt(events []models.Event, news []models.NewsItem) string {
	var b strings.Builder

	b.WriteString("Recent events (newest first):\n")
	if len(events) == 0 {
		b.WriteString("- none\n")
	}
	for _, e := range events {
		fmt.Fprintf(&b, "- [%s] %s (%s, threat=%s, verified=%t)\n",
			e.Timestamp.Format(time.RFC3339), e.Title, e.Type, e.ThreatLevel, e.Verified)
	}

	b.WriteString("\nRecent news (newest first):\n")
	if len(news) == 0 {
		b.WriteString("- none\n")
	}
	for _, n := range news {
		marker := ""
		if n.Breaking {
			marker = " [BREAKING]"
		}
		fmt.Fprintf(&b, "- [%s] %s%s (%s)\n",
			n.Timestamp.Format(time.RFC3339), n.Title, marker, n.Source)
	}

	return b.String()
}

// cleanJSONResponse strips markdown code fences and surrounding prose that
// models sometimes wrap around JSON output.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
