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

package models

// JobScope is the granularity at which one job execution operates.
type JobScope string

const (
	// ScopeConnection scans everything under one external-system connection.
	ScopeConnection JobScope = "connection"
	// ScopeSite scans one site's subset.
	ScopeSite JobScope = "site"
)

// JobResult is the unit a job returns: alerts to upsert, tags to append, and
// the single state each touched entity should be raised to. The merger
// consumes this.
type JobResult struct {
	Alerts []Alert                `json:"alerts"`
	Tags   map[string][]EntityTag `json:"tags"`
	States map[string]EntityState `json:"states"`
}

// NewJobResult returns an empty result ready for the helper functions.
func NewJobResult() *JobResult {
	return &JobResult{
		Tags:   make(map[string][]EntityTag),
		States: make(map[string]EntityState),
	}
}

// QueueMessage is the payload the scheduler enqueues for one eligible
// (job, scope instance) pair. It is opaque to the queue transport. MessageID
// correlates scheduler and worker log lines across redeliveries.
type QueueMessage struct {
	MessageID    string `json:"message_id"`
	JobID        string `json:"job_id"`
	TenantID     string `json:"tenant_id"`
	ConnectionID string `json:"connection_id,omitempty"`
	SiteID       string `json:"site_id,omitempty"`
}

// IntegrationConfig is the static per-integration catalog entry consumed by
// the scheduler. It is read-only at run time; changing it is a deployment
// concern.
type IntegrationConfig struct {
	Name           string          `json:"name"`
	ID             string          `json:"id"`
	SupportedTypes []SupportedType `json:"supported_types"`
}

// SupportedType describes one entity type an integration syncs.
type SupportedType struct {
	Type        string `json:"type"`
	RateMinutes int    `json:"rate_minutes"` // how often the type may resync
	Priority    int    `json:"priority"`     // lower runs first
}

// TypePriority returns the priority of the named entity type, or the highest
// possible value when the type is unknown so unknowns sort last.
func (c *IntegrationConfig) TypePriority(entityType string) int {
	for _, t := range c.SupportedTypes {
		if t.Type == entityType {
			return t.Priority
		}
	}

	return int(^uint(0) >> 1)
}

// Supports reports whether the integration syncs the named entity type.
func (c *IntegrationConfig) Supports(entityType string) bool {
	for _, t := range c.SupportedTypes {
		if t.Type == entityType {
			return true
		}
	}

	return false
}
