// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package fetch

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/frontlinehq/frontline/internal/logging"
	"github.com/frontlinehq/frontline/internal/metrics"
)

// BreakerClient wraps Client with a circuit breaker so that a flapping
// upstream (or a dead proxy) stops consuming adapter cycles instead of
// timing out on every tick.
//
// The breaker uses real time for its interval and timeout calculations.
// That is intentional: the timing governs recovery, not data integrity.
// Unit tests should exercise the wrapped Client directly.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[*Response]
}

// NewBreakerClient creates a fetch client with circuit breaker protection.
// The circuit opens after a 60% failure rate over at least 10 requests,
// stays open for 2 minutes, and admits 3 probes in half-open state.
func NewBreakerClient(cfg Config) *BreakerClient {
	client := NewClient(cfg)

	metrics.CircuitBreakerState.Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "upstream-fetch",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.Set(stateToFloat(to))
		},
	})

	return &BreakerClient{
		client: client,
		cb:     cb,
	}
}

// Get fetches target with circuit breaker protection. While the circuit
// is open, requests fail fast with gobreaker.ErrOpenState.
func (bc *BreakerClient) Get(ctx context.Context, target string) (*Response, error) {
	return bc.cb.Execute(func() (*Response, error) {
		return bc.client.Get(ctx, target)
	})
}

// Mode reports the wrapped client's fetch mode.
func (bc *BreakerClient) Mode() string {
	return bc.client.Mode()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
