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

// Package worker executes queued jobs. One consumer per integration, each
// limited to a single in-flight message, keeps executions within an
// integration strictly sequential while integrations run in parallel.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/vantagemsp/vantage/pkg/db"
	"github.com/vantagemsp/vantage/pkg/engine"
	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/natsutil"
	"github.com/vantagemsp/vantage/pkg/registry"
)

// Service owns the full consumer fleet: one goroutine per integration in the
// catalog, all sharing one processor.
type Service struct {
	config    Config
	js        jetstream.JetStream
	registry  *registry.Registry
	processor *Processor
	metrics   Metrics
	logger    logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService wires a worker fleet over the given job index and datastore.
func NewService(config Config, js jetstream.JetStream, reg *registry.Registry, jobs map[string]engine.Job, store db.Service, metrics Metrics, log logger.Logger) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	breaker := NewCircuitBreaker("job-persistence", DefaultCircuitBreakerConfig(), metrics, log)
	processor := NewProcessor(jobs, store, breaker, metrics, time.Duration(config.JobTimeout), log)

	return &Service{
		config:    config,
		js:        js,
		registry:  reg,
		processor: processor,
		metrics:   metrics,
		logger:    log,
	}, nil
}

// Start provisions one consumer per catalog integration and launches its
// drain loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, cfg := range s.registry.All() {
		jsConsumer, err := natsutil.CreateQueueConsumer(ctx, s.js, cfg.ID)
		if err != nil {
			cancel()
			return fmt.Errorf("failed to provision consumer for %s: %w", cfg.ID, err)
		}

		consumer := NewConsumer(cfg.ID, jsConsumer, s.processor, s.config, s.metrics, s.logger)

		s.wg.Add(1)

		go func() {
			defer s.wg.Done()
			consumer.Run(runCtx)
		}()
	}

	s.logger.Info().
		Int("consumers", len(s.registry.All())).
		Msg("Worker service started")

	return nil
}

// Stop halts every consumer and waits for in-flight jobs to drain.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info().Msg("Worker service stopped")

	return nil
}
