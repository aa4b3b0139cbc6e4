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

package engine

import (
	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
)

// CreateAlert builds a fingerprinted alert for an entity. The fingerprint is
// the idempotency key the datastore upserts on.
func CreateAlert(entity *models.Entity, alertType string, severity models.AlertSeverity, message string, metadata map[string]interface{}) models.Alert {
	return models.Alert{
		EntityID:     entity.ID,
		AlertType:    alertType,
		Severity:     severity,
		Message:      message,
		Fingerprint:  models.AlertFingerprint(alertType, entity.ID),
		Metadata:     metadata,
		SiteID:       entity.SiteID,
		ConnectionID: entity.ConnectionID,
	}
}

// AddTags appends tags for an entity, preserving insertion order.
func AddTags(result *models.JobResult, entityID string, tags ...models.EntityTag) {
	result.Tags[entityID] = append(result.Tags[entityID], tags...)
}

// SetState asserts a health state for an entity within one result. A lower
// priority state never overwrites a higher one already recorded (self-merge);
// merging across jobs happens at persistence.
func SetState(result *models.JobResult, entityID string, state models.EntityState) {
	if current, ok := result.States[entityID]; ok && current.Priority() >= state.Priority() {
		return
	}

	result.States[entityID] = state
}

// MergeStates combines competing state writes: the effective state is the
// maximum by priority. Commutative and idempotent, so replaying the same set
// in any order converges on one answer.
func MergeStates(states ...models.EntityState) models.EntityState {
	merged := models.StateNormal

	for _, state := range states {
		if state.Priority() > merged.Priority() {
			merged = state
		}
	}

	return merged
}

// EachEntity runs fn for every entity, guarding each evaluation so one
// malformed record cannot abort the whole scan. A panicking or erroring
// entity is logged and skipped.
func EachEntity(entities []*models.Entity, log logger.Logger, fn func(*models.Entity) error) {
	for _, entity := range entities {
		evaluateEntity(entity, log, fn)
	}
}

func evaluateEntity(entity *models.Entity, log logger.Logger, fn func(*models.Entity) error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("entity_id", entity.ID).
				Interface("panic", r).
				Msg("entity evaluation panicked, skipping")
		}
	}()

	if err := fn(entity); err != nil {
		log.Warn().
			Err(err).
			Str("entity_id", entity.ID).
			Msg("entity evaluation failed, skipping")
	}
}
