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

// AlertSeverity grades how urgent an alert is.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is one finding a job emits against an entity. Fingerprint is the
// idempotency key: re-running a job that still detects the same condition
// upserts the existing row instead of creating a duplicate.
type Alert struct {
	EntityID     string                 `json:"entity_id"`
	AlertType    string                 `json:"alert_type"`
	Severity     AlertSeverity          `json:"severity"`
	Message      string                 `json:"message"`
	Fingerprint  string                 `json:"fingerprint"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	SiteID       string                 `json:"site_id,omitempty"`
	ConnectionID string                 `json:"connection_id,omitempty"`
}

// AlertFingerprint builds the deterministic dedup key for an alert.
func AlertFingerprint(alertType, entityID string) string {
	return alertType + ":" + entityID
}

// EntityTag is a free-form classification attached to an entity by a job.
// Tags accumulate append-only; duplicates from re-runs are tolerated by
// downstream dedup.
type EntityTag struct {
	EntityID string `json:"entity_id"`
	Tag      string `json:"tag"`
	Category string `json:"category,omitempty"`
	Source   string `json:"source"`
}
