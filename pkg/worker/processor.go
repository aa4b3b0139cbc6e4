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

package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vantagemsp/vantage/pkg/db"
	"github.com/vantagemsp/vantage/pkg/engine"
	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
)

// ErrUnknownJob marks a queue message naming a job this build does not ship.
// It is terminal: redelivery cannot fix it.
var ErrUnknownJob = errors.New("unknown job")

// Processor runs one queue message end to end: build the per-run cache,
// execute the job, persist the result. Reruns are safe because every write in
// persistence is an idempotent upsert.
type Processor struct {
	jobs    map[string]engine.Job
	store   db.Service
	breaker *CircuitBreaker
	metrics Metrics
	timeout time.Duration
	logger  logger.Logger

	now func() time.Time
}

// NewProcessor builds a processor over the given job index.
func NewProcessor(jobs map[string]engine.Job, store db.Service, breaker *CircuitBreaker, metrics Metrics, timeout time.Duration, log logger.Logger) *Processor {
	return &Processor{
		jobs:    jobs,
		store:   store,
		breaker: breaker,
		metrics: metrics,
		timeout: timeout,
		logger:  log,
		now:     time.Now,
	}
}

// Process executes the job named by msg for its scope instance. A returned
// error means the message should be redelivered, except ErrUnknownJob which
// the consumer terminates.
func (p *Processor) Process(ctx context.Context, msg *models.QueueMessage) error {
	job, ok := p.jobs[msg.JobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, msg.JobID)
	}

	p.metrics.RecordJobAttempt(job.Name())
	start := p.now()

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	sc := engine.NewSyncContext(p.store, msg.TenantID, job.IntegrationID(), msg.SiteID)

	result, err := job.Execute(runCtx, sc)
	if err != nil {
		p.metrics.RecordJobFailure(job.Name(), err, p.now().Sub(start))
		return fmt.Errorf("job %s execution failed: %w", job.Name(), err)
	}

	run := &db.JobRun{
		JobID:         job.Name(),
		TenantID:      msg.TenantID,
		IntegrationID: job.IntegrationID(),
		ConnectionID:  msg.ConnectionID,
		SiteID:        msg.SiteID,
		AlertTypes:    job.AlertTypes(),
		CompletedAt:   p.now(),
	}

	err = p.breaker.Execute(runCtx, func() error {
		return p.store.PersistJobResult(runCtx, run, result)
	})
	if err != nil {
		p.metrics.RecordJobFailure(job.Name(), err, p.now().Sub(start))
		return fmt.Errorf("job %s persistence failed: %w", job.Name(), err)
	}

	p.metrics.RecordJobSuccess(job.Name(), len(result.Alerts), p.now().Sub(start))

	return nil
}
