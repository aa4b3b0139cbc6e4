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

// Package engine defines the job contract and the shared machinery every
// rule builds on: result helpers, the state priority merger, and the
// per-run entity cache.
package engine

import (
	"context"

	"github.com/vantagemsp/vantage/pkg/models"
)

// Job is the uniform shape every rule implements. A job inspects the cached
// entity graph for one scope instance and returns the alerts, tags, and
// states it wants asserted.
type Job interface {
	// Name is the stable job identifier carried in queue messages.
	Name() string
	// IntegrationID names the integration whose queue serializes this job.
	IntegrationID() string
	// ScheduleHours is how often the job is eligible to run.
	ScheduleHours() int
	// Scope is the granularity one execution operates at.
	Scope() models.JobScope
	// DependsOn lists entity types that must have completed a sync pass more
	// recent than the job's last run before the job may run again. The first
	// entry is the job's primary type and breaks scheduling ties.
	DependsOn() []string
	// AlertTypes is the closed set of alert kinds the job can emit. Used for
	// static validation and for resolving stale alerts of those kinds.
	AlertTypes() []string
	// Execute runs the rule against the cached graph. Errors propagate to the
	// worker, which leaves the queue message unacknowledged for retry.
	Execute(ctx context.Context, sc *SyncContext) (*models.JobResult, error)
}
