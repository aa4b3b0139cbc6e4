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

package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagemsp/vantage/pkg/engine"
	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
)

// fakeStore serves a fixed graph to a SyncContext.
type fakeStore struct {
	entities      []*models.Entity
	relationships []*models.Relationship
	relErr        error
}

func (s *fakeStore) GetEntities(_ context.Context, _, _, _ string) ([]*models.Entity, error) {
	return s.entities, nil
}

func (s *fakeStore) GetRelationships(_ context.Context, _, _, _ string) ([]*models.Relationship, error) {
	if s.relErr != nil {
		return nil, s.relErr
	}

	return s.relationships, nil
}

func newContext(store *fakeStore) *engine.SyncContext {
	return engine.NewSyncContext(store, "t1", "rmm", "")
}

var testNow = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func daysAgo(days int) string {
	return testNow.Add(-time.Duration(days) * 24 * time.Hour).Format(time.RFC3339)
}

func TestDeviceOffline(t *testing.T) {
	tests := []struct {
		name        string
		raw         models.RawData
		expectAlert bool
	}{
		{
			name:        "offline beyond threshold alerts",
			raw:         models.RawData{"online": false, "lastSeen": daysAgo(35)},
			expectAlert: true,
		},
		{
			name:        "offline within threshold stays quiet",
			raw:         models.RawData{"online": false, "lastSeen": daysAgo(29)},
			expectAlert: false,
		},
		{
			name:        "online device stays quiet",
			raw:         models.RawData{"online": true, "lastSeen": daysAgo(90)},
			expectAlert: false,
		},
		{
			name:        "missing online flag stays quiet",
			raw:         models.RawData{"lastSeen": daysAgo(90)},
			expectAlert: false,
		},
		{
			name:        "missing lastSeen stays quiet",
			raw:         models.RawData{"online": false},
			expectAlert: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{entities: []*models.Entity{
				{ID: "dev-1", EntityType: "endpoint", DisplayName: "srv-01", RawData: tt.raw},
			}}

			job := NewDeviceOffline(logger.NewTestLogger())
			job.now = func() time.Time { return testNow }

			result, err := job.Execute(context.Background(), newContext(store))
			require.NoError(t, err)

			if !tt.expectAlert {
				assert.Empty(t, result.Alerts)
				assert.Empty(t, result.States)

				return
			}

			require.Len(t, result.Alerts, 1)
			assert.Equal(t, "device-offline:dev-1", result.Alerts[0].Fingerprint)
			assert.Equal(t, models.SeverityMedium, result.Alerts[0].Severity)
			assert.Equal(t, models.StateWarn, result.States["dev-1"])
		})
	}
}

func TestSiteEmpty(t *testing.T) {
	store := &fakeStore{
		entities: []*models.Entity{
			{ID: "site-empty", EntityType: "site", DisplayName: "Ghost Town"},
			{ID: "site-busy", EntityType: "site", DisplayName: "HQ"},
			{ID: "dev-1", EntityType: "endpoint"},
		},
		relationships: []*models.Relationship{
			{ParentID: "site-busy", ChildID: "dev-1"},
		},
	}

	job := NewSiteEmpty(logger.NewTestLogger())

	result, err := job.Execute(context.Background(), newContext(store))
	require.NoError(t, err)

	// Only the childless site alerts; one device is enough to stay quiet.
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "site-empty", result.Alerts[0].EntityID)
	assert.Equal(t, models.SeverityLow, result.Alerts[0].Severity)
	assert.Equal(t, models.StateLow, result.States["site-empty"])
	assert.NotContains(t, result.States, "site-busy")
}

func TestSiteEmptyFailsWhenRelationshipsUnavailable(t *testing.T) {
	store := &fakeStore{
		entities: []*models.Entity{
			{ID: "site-busy", EntityType: "site", DisplayName: "HQ"},
		},
		relErr: errors.New("connection refused"),
	}

	job := NewSiteEmpty(logger.NewTestLogger())

	// A failed relationship load must abort the run, not read as a tenant
	// full of empty sites.
	result, err := job.Execute(context.Background(), newContext(store))
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestLicenseWaste(t *testing.T) {
	tests := []struct {
		name        string
		raw         models.RawData
		expectAlert bool
	}{
		{
			name:        "disabled with licenses alerts",
			raw:         models.RawData{"accountEnabled": false, "assignedLicenses": []interface{}{"E3", "EMS"}},
			expectAlert: true,
		},
		{
			name:        "enabled with licenses stays quiet",
			raw:         models.RawData{"accountEnabled": true, "assignedLicenses": []interface{}{"E3"}},
			expectAlert: false,
		},
		{
			name:        "disabled without licenses stays quiet",
			raw:         models.RawData{"accountEnabled": false, "assignedLicenses": []interface{}{}},
			expectAlert: false,
		},
		{
			name:        "missing enabled flag stays quiet",
			raw:         models.RawData{"assignedLicenses": []interface{}{"E3"}},
			expectAlert: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{entities: []*models.Entity{
				{ID: "usr-1", EntityType: "identity", DisplayName: "j.doe", RawData: tt.raw},
			}}

			job := NewLicenseWaste(logger.NewTestLogger())

			result, err := job.Execute(context.Background(), newContext(store))
			require.NoError(t, err)

			if !tt.expectAlert {
				assert.Empty(t, result.Alerts)
				return
			}

			require.Len(t, result.Alerts, 1)
			assert.Equal(t, models.SeverityHigh, result.Alerts[0].Severity)
			assert.Equal(t, 2, result.Alerts[0].Metadata["license_count"])
			assert.Equal(t, models.StateWarn, result.States["usr-1"])

			require.Len(t, result.Tags["usr-1"], 2)
			assert.Equal(t, "license-waste", result.Tags["usr-1"][0].Tag)
			assert.Equal(t, "disabled", result.Tags["usr-1"][1].Tag)
		})
	}
}

func TestBackupStale(t *testing.T) {
	tests := []struct {
		name        string
		raw         models.RawData
		expectAlert bool
	}{
		{
			name:        "stale success alerts",
			raw:         models.RawData{"lastSuccess": daysAgo(10)},
			expectAlert: true,
		},
		{
			name:        "never succeeded alerts",
			raw:         models.RawData{},
			expectAlert: true,
		},
		{
			name:        "recent success stays quiet",
			raw:         models.RawData{"lastSuccess": daysAgo(2)},
			expectAlert: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{entities: []*models.Entity{
				{ID: "bkp-1", EntityType: "backup_job", DisplayName: "nightly-sql", RawData: tt.raw},
			}}

			job := NewBackupStale(logger.NewTestLogger())
			job.now = func() time.Time { return testNow }

			result, err := job.Execute(context.Background(), newContext(store))
			require.NoError(t, err)

			if !tt.expectAlert {
				assert.Empty(t, result.Alerts)
				return
			}

			require.Len(t, result.Alerts, 1)
			assert.Equal(t, models.SeverityHigh, result.Alerts[0].Severity)
			assert.Equal(t, models.StateCritical, result.States["bkp-1"])
		})
	}
}

func TestCatalogWiring(t *testing.T) {
	all := All(logger.NewTestLogger())
	require.Len(t, all, 4)

	index := Index(all)
	assert.Len(t, index, 4)

	for _, job := range all {
		assert.Equal(t, job, index[job.Name()])
		assert.NotEmpty(t, job.DependsOn())
		assert.NotEmpty(t, job.AlertTypes())
		assert.Positive(t, job.ScheduleHours())
	}

	grouped := ByIntegration(all)
	assert.Len(t, grouped["rmm"], 2)
	assert.Len(t, grouped["identity"], 1)
	assert.Len(t, grouped["backup"], 1)
}
