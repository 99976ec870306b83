// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package supervisor

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingService struct {
	name  string
	runs  atomic.Int64
	block chan struct{}
}

func (s *countingService) Serve(ctx context.Context) error {
	s.runs.Add(1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.block:
		return nil
	}
}

func (s *countingService) String() string { return s.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTreeRunsServicesInAllLayers(t *testing.T) {
	tree := NewTree(testLogger(), DefaultTreeConfig())

	svcs := []*countingService{
		{name: "ingest-svc", block: make(chan struct{})},
		{name: "messaging-svc", block: make(chan struct{})},
		{name: "api-svc", block: make(chan struct{})},
	}
	tree.AddIngestService(svcs[0])
	tree.AddMessagingService(svcs[1])
	tree.AddAPIService(svcs[2])

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for {
		running := 0
		for _, svc := range svcs {
			if svc.runs.Load() > 0 {
				running++
			}
		}
		if running == len(svcs) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d services started", running, len(svcs))
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancellation")
	}
}

func TestTreeRestartsFailedService(t *testing.T) {
	cfg := DefaultTreeConfig()
	cfg.FailureBackoff = 10 * time.Millisecond
	tree := NewTree(testLogger(), cfg)

	// Closing block makes Serve return nil, which suture treats as a
	// completed service to restart.
	svc := &countingService{name: "flaky", block: make(chan struct{})}
	close(svc.block)
	tree.AddIngestService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for svc.runs.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("service restarted %d times, want >= 2", svc.runs.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-errCh
}

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 || cfg.FailureDecay != 30.0 {
		t.Errorf("unexpected failure params: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %s, want 10s", cfg.ShutdownTimeout)
	}
}
