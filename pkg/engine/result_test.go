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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
)

func TestCreateAlert(t *testing.T) {
	entity := &models.Entity{
		ID:           "ent-1",
		SiteID:       "site-1",
		ConnectionID: "conn-1",
		DisplayName:  "srv-01",
	}

	alert := CreateAlert(entity, "device-offline", models.SeverityMedium, "offline too long", map[string]interface{}{"days": 35})

	assert.Equal(t, "ent-1", alert.EntityID)
	assert.Equal(t, "device-offline", alert.AlertType)
	assert.Equal(t, models.SeverityMedium, alert.Severity)
	assert.Equal(t, "device-offline:ent-1", alert.Fingerprint)
	assert.Equal(t, "site-1", alert.SiteID)
	assert.Equal(t, "conn-1", alert.ConnectionID)
	assert.Equal(t, 35, alert.Metadata["days"])
}

func TestSetStateKeepsHigherPriority(t *testing.T) {
	tests := []struct {
		name     string
		first    models.EntityState
		second   models.EntityState
		expected models.EntityState
	}{
		{name: "higher overwrites lower", first: models.StateLow, second: models.StateCritical, expected: models.StateCritical},
		{name: "lower never overwrites higher", first: models.StateCritical, second: models.StateLow, expected: models.StateCritical},
		{name: "equal keeps existing", first: models.StateWarn, second: models.StateWarn, expected: models.StateWarn},
		{name: "normal never downgrades warn", first: models.StateWarn, second: models.StateNormal, expected: models.StateWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := models.NewJobResult()
			SetState(result, "ent-1", tt.first)
			SetState(result, "ent-1", tt.second)

			assert.Equal(t, tt.expected, result.States["ent-1"])
		})
	}
}

func TestMergeStates(t *testing.T) {
	tests := []struct {
		name     string
		states   []models.EntityState
		expected models.EntityState
	}{
		{name: "empty merges to normal", states: nil, expected: models.StateNormal},
		{name: "single state", states: []models.EntityState{models.StateWarn}, expected: models.StateWarn},
		{name: "max wins", states: []models.EntityState{models.StateLow, models.StateCritical, models.StateWarn}, expected: models.StateCritical},
		{name: "order independent", states: []models.EntityState{models.StateCritical, models.StateLow}, expected: models.StateCritical},
		{name: "idempotent", states: []models.EntityState{models.StateWarn, models.StateWarn, models.StateWarn}, expected: models.StateWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeStates(tt.states...))
		})
	}
}

func TestAddTagsPreservesOrder(t *testing.T) {
	result := models.NewJobResult()

	AddTags(result, "ent-1", models.EntityTag{Tag: "first"}, models.EntityTag{Tag: "second"})
	AddTags(result, "ent-1", models.EntityTag{Tag: "third"})

	require.Len(t, result.Tags["ent-1"], 3)
	assert.Equal(t, "first", result.Tags["ent-1"][0].Tag)
	assert.Equal(t, "second", result.Tags["ent-1"][1].Tag)
	assert.Equal(t, "third", result.Tags["ent-1"][2].Tag)
}

func TestEachEntityIsolatesFaults(t *testing.T) {
	entities := []*models.Entity{
		{ID: "good-1"},
		{ID: "panics"},
		{ID: "errors"},
		{ID: "good-2"},
	}

	var visited []string

	EachEntity(entities, logger.NewTestLogger(), func(entity *models.Entity) error {
		visited = append(visited, entity.ID)

		switch entity.ID {
		case "panics":
			panic("malformed record")
		case "errors":
			return errors.New("bad payload")
		}

		return nil
	})

	// Every entity is still visited; the panic and error do not abort the scan.
	assert.Equal(t, []string{"good-1", "panics", "errors", "good-2"}, visited)
}
