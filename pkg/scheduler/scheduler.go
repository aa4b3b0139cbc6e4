/*
 * Copyright 2025 Vantage MSP Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package scheduler evaluates which jobs are due and enqueues them. It only
// ever enqueues; executing jobs is the worker's concern, and the queue's
// single-in-flight consumers keep runs per integration from overlapping.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vantagemsp/vantage/pkg/db"
	"github.com/vantagemsp/vantage/pkg/engine"
	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
	"github.com/vantagemsp/vantage/pkg/registry"
)

// Publisher enqueues one message on an integration's queue.
type Publisher interface {
	Publish(ctx context.Context, integrationID string, msg *models.QueueMessage) error
}

// Scheduler walks the job catalog on a fixed interval and publishes a queue
// message for every (job, scope instance) pair whose schedule has elapsed and
// whose dependency data is fresher than its last run.
type Scheduler struct {
	config    Config
	store     db.Service
	registry  *registry.Registry
	jobs      []engine.Job
	publisher Publisher
	clock     Clock
	logger    logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a scheduler over the given catalog.
func New(config Config, store db.Service, reg *registry.Registry, jobs []engine.Job, pub Publisher, log logger.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Scheduler{
		config:    config,
		store:     store,
		registry:  reg,
		jobs:      jobs,
		publisher: pub,
		clock:     realClock{},
		logger:    log,
	}, nil
}

// Start launches the tick loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(runCtx)

	return nil
}

// Stop halts the tick loop and waits for the in-flight tick to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	interval := time.Duration(s.config.Interval)
	s.logger.Info().Dur("interval", interval).Msg("Scheduler started")

	// Evaluate once up front so a fresh deployment does not idle a full
	// interval before the first jobs enqueue.
	s.Tick(ctx)

	ticker := s.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Scheduler stopped")
			return
		case <-ticker.Chan():
			s.Tick(ctx)
		}
	}
}

// candidate is one enqueueable (job, scope instance) pair.
type candidate struct {
	job      engine.Job
	instance models.ScopeInstance
	priority int
}

// Tick evaluates every job once and publishes the eligible pairs. Errors on
// individual pairs are logged and skipped so one bad scope cannot starve the
// rest of the catalog.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now()

	byIntegration := make(map[string][]candidate)

	for _, job := range s.jobs {
		cfg, ok := s.registry.Get(job.IntegrationID())
		if !ok {
			s.logger.Error().
				Str("job", job.Name()).
				Str("integration", job.IntegrationID()).
				Msg("Job references unknown integration, skipping")

			continue
		}

		instances, err := s.store.ListScopeInstances(ctx, job.IntegrationID(), job.Scope())
		if err != nil {
			s.logger.Error().Err(err).
				Str("job", job.Name()).
				Msg("Failed to list scope instances")

			continue
		}

		for _, instance := range instances {
			eligible, err := s.eligible(ctx, job, instance, now)
			if err != nil {
				s.logger.Error().Err(err).
					Str("job", job.Name()).
					Str("tenant_id", instance.TenantID).
					Str("scope_id", instance.ScopeID()).
					Msg("Eligibility check failed")

				continue
			}

			if !eligible {
				continue
			}

			byIntegration[job.IntegrationID()] = append(byIntegration[job.IntegrationID()], candidate{
				job:      job,
				instance: instance,
				priority: cfg.TypePriority(job.DependsOn()[0]),
			})
		}
	}

	for integrationID, candidates := range byIntegration {
		// Lower-priority types (the integration's primary data) drain first.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].priority < candidates[j].priority
		})

		for _, c := range candidates {
			msg := &models.QueueMessage{
				MessageID:    uuid.NewString(),
				JobID:        c.job.Name(),
				TenantID:     c.instance.TenantID,
				ConnectionID: c.instance.ConnectionID,
				SiteID:       c.instance.SiteID,
			}

			if err := s.publisher.Publish(ctx, integrationID, msg); err != nil {
				s.logger.Error().Err(err).
					Str("job", c.job.Name()).
					Str("tenant_id", c.instance.TenantID).
					Msg("Failed to enqueue job")

				continue
			}

			s.logger.Debug().
				Str("message_id", msg.MessageID).
				Str("job", c.job.Name()).
				Str("tenant_id", c.instance.TenantID).
				Str("scope_id", c.instance.ScopeID()).
				Msg("Enqueued job")
		}
	}
}

// eligible reports whether the job is due for this scope instance. Due means
// the schedule interval has elapsed since its last run, and every entity type
// it depends on completed a sync pass after that run, so re-running would see
// data the previous run did not.
func (s *Scheduler) eligible(ctx context.Context, job engine.Job, instance models.ScopeInstance, now time.Time) (bool, error) {
	lastRun, err := s.store.LastJobRun(ctx, job.Name(), instance.TenantID, instance.ScopeID())
	if err != nil {
		return false, err
	}

	schedule := time.Duration(job.ScheduleHours()) * time.Hour
	if !lastRun.IsZero() && now.Sub(lastRun) < schedule {
		return false, nil
	}

	for _, entityType := range job.DependsOn() {
		lastPass, err := s.store.LastSyncPass(ctx, instance.TenantID, job.IntegrationID(), entityType)
		if err != nil {
			return false, err
		}

		// No sync pass recorded yet means there is no data to evaluate.
		if lastPass.IsZero() || !lastPass.After(lastRun) {
			return false, nil
		}
	}

	return true, nil
}
