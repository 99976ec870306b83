// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/frontlinehq/frontline/internal/logging"
	"github.com/frontlinehq/frontline/internal/metrics"
	"github.com/frontlinehq/frontline/internal/sourcehealth"
)

// Job is a named periodic task. Enabled=false registers the job for
// health reporting but never runs it.
type Job struct {
	Name     string
	Interval time.Duration
	Enabled  bool
	Run      func(ctx context.Context) error
}

// Scheduler runs each registered job on its own ticker goroutine.
//
// Jobs are isolated from each other: one job failing (or panicking) never
// stops the others. A slow run simply delays that job's next tick; runs of
// the same job never overlap.
type Scheduler struct {
	mu       sync.Mutex
	jobs     []Job
	health   *sourcehealth.Tracker
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// New creates a scheduler that reports run results to health.
func New(health *sourcehealth.Tracker) *Scheduler {
	return &Scheduler{
		health:   health,
		stopChan: make(chan struct{}),
	}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	s.health.Register(job.Name, job.Interval, job.Enabled)
}

// Start launches one goroutine per enabled job. Each job runs once
// immediately, then on every interval tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	stop := s.stopChan
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, job := range jobs {
		if !job.Enabled {
			logging.Info().Str("job", job.Name).Msg("Job disabled, skipping")
			continue
		}
		s.wg.Add(1)
		go s.jobLoop(ctx, job, stop)
	}

	logging.Info().Int("jobs", len(jobs)).Msg("Scheduler started")
	return nil
}

// Stop halts all job goroutines and waits for in-flight runs to finish.
// Safe to call more than once, and the scheduler can be started again
// afterwards — suture restarts the owning service through Serve.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stop := s.stopChan
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	close(stop)
	s.wg.Wait()
	logging.Info().Msg("Scheduler stopped")
	return nil
}

// Serve implements suture.Service: it starts the job goroutines, blocks
// until the context is canceled, then stops them.
func (s *Scheduler) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	if err := s.Stop(); err != nil {
		return fmt.Errorf("scheduler stop failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (s *Scheduler) String() string {
	return "scheduler"
}

func (s *Scheduler) jobLoop(ctx context.Context, job Job, stop <-chan struct{}) {
	defer s.wg.Done()

	s.runOnce(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx, job)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// runOnce executes a single job run with panic recovery. A panicking
// adapter is recorded as a failed run, not a crashed scheduler.
func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	start := time.Now()
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panic: %v", r)
				logging.Error().
					Str("job", job.Name).
					Interface("panic", r).
					Msg("Recovered from job panic")
			}
		}()
		err = job.Run(ctx)
	}()

	metrics.RecordAdapterRun(job.Name, time.Since(start), err)
	if err != nil {
		s.health.RecordError(job.Name, err)
		logging.Warn().Err(err).Str("job", job.Name).Msg("Job run failed")
		return
	}
	s.health.RecordSuccess(job.Name)
}
