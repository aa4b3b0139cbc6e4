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

package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagemsp/vantage/pkg/db"
	"github.com/vantagemsp/vantage/pkg/engine"
	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
	"github.com/vantagemsp/vantage/pkg/registry"
)

var schedNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

// fakeStore implements db.Service with canned scheduler bookkeeping.
type fakeStore struct {
	instances map[string][]models.ScopeInstance // keyed by integration id
	lastRuns  map[string]time.Time              // keyed by jobID|tenant|scope
	syncs     map[string]time.Time              // keyed by tenant|integration|type
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		instances: make(map[string][]models.ScopeInstance),
		lastRuns:  make(map[string]time.Time),
		syncs:     make(map[string]time.Time),
	}
}

func (s *fakeStore) GetEntities(_ context.Context, _, _, _ string) ([]*models.Entity, error) {
	return nil, nil
}

func (s *fakeStore) GetRelationships(_ context.Context, _, _, _ string) ([]*models.Relationship, error) {
	return nil, nil
}

func (s *fakeStore) ListScopeInstances(_ context.Context, integrationID string, _ models.JobScope) ([]models.ScopeInstance, error) {
	return s.instances[integrationID], nil
}

func (s *fakeStore) LastJobRun(_ context.Context, jobID, tenantID, scopeID string) (time.Time, error) {
	return s.lastRuns[jobID+"|"+tenantID+"|"+scopeID], nil
}

func (s *fakeStore) LastSyncPass(_ context.Context, tenantID, integrationID, entityType string) (time.Time, error) {
	return s.syncs[tenantID+"|"+integrationID+"|"+entityType], nil
}

func (s *fakeStore) RecordSyncPass(_ context.Context, tenantID, integrationID, entityType string, completedAt time.Time) error {
	s.syncs[tenantID+"|"+integrationID+"|"+entityType] = completedAt
	return nil
}

func (s *fakeStore) PersistJobResult(_ context.Context, _ *db.JobRun, _ *models.JobResult) error {
	return nil
}

func (s *fakeStore) Close() {}

// fakePublisher records enqueued messages in order.
type fakePublisher struct {
	mu       sync.Mutex
	messages []*models.QueueMessage
}

func (p *fakePublisher) Publish(_ context.Context, _ string, msg *models.QueueMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)

	return nil
}

// fakeClock pins Now for deterministic eligibility checks.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Ticker(_ time.Duration) Ticker { return &fakeTicker{ch: make(chan time.Time)} }

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) Chan() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()                  {}

// schedJob is a configurable stub rule.
type schedJob struct {
	name        string
	integration string
	hours       int
	dependsOn   []string
}

func (j *schedJob) Name() string           { return j.name }
func (j *schedJob) IntegrationID() string  { return j.integration }
func (j *schedJob) ScheduleHours() int     { return j.hours }
func (j *schedJob) Scope() models.JobScope { return models.ScopeConnection }
func (j *schedJob) DependsOn() []string    { return j.dependsOn }
func (j *schedJob) AlertTypes() []string   { return []string{j.name} }

func (j *schedJob) Execute(_ context.Context, _ *engine.SyncContext) (*models.JobResult, error) {
	return models.NewJobResult(), nil
}

func newScheduler(t *testing.T, store *fakeStore, pub *fakePublisher, jobs ...engine.Job) *Scheduler {
	t.Helper()

	s, err := New(Config{}, store, registry.Default(), jobs, pub, logger.NewTestLogger())
	require.NoError(t, err)

	s.clock = &fakeClock{now: schedNow}

	return s
}

func TestTickEnqueuesDueJob(t *testing.T) {
	store := newFakeStore()
	store.instances["rmm"] = []models.ScopeInstance{{TenantID: "t1", ConnectionID: "conn-1"}}
	// Never run before, and endpoint data has synced.
	store.syncs["t1|rmm|endpoint"] = schedNow.Add(-time.Hour)

	pub := &fakePublisher{}
	job := &schedJob{name: "device-offline", integration: "rmm", hours: 24, dependsOn: []string{"endpoint"}}

	s := newScheduler(t, store, pub, job)
	s.Tick(context.Background())

	require.Len(t, pub.messages, 1)
	assert.Equal(t, "device-offline", pub.messages[0].JobID)
	assert.Equal(t, "t1", pub.messages[0].TenantID)
	assert.Equal(t, "conn-1", pub.messages[0].ConnectionID)
	assert.NotEmpty(t, pub.messages[0].MessageID)
}

func TestTickSkipsRecentlyRunJob(t *testing.T) {
	store := newFakeStore()
	store.instances["rmm"] = []models.ScopeInstance{{TenantID: "t1", ConnectionID: "conn-1"}}
	store.lastRuns["device-offline|t1|conn-1"] = schedNow.Add(-2 * time.Hour)
	store.syncs["t1|rmm|endpoint"] = schedNow.Add(-time.Hour)

	pub := &fakePublisher{}
	job := &schedJob{name: "device-offline", integration: "rmm", hours: 24, dependsOn: []string{"endpoint"}}

	s := newScheduler(t, store, pub, job)
	s.Tick(context.Background())

	assert.Empty(t, pub.messages)
}

func TestTickGatesOnDependencyFreshness(t *testing.T) {
	tests := []struct {
		name       string
		lastRun    time.Time
		lastSync   time.Time
		expectRuns bool
	}{
		{
			name:       "sync newer than last run is eligible",
			lastRun:    schedNow.Add(-48 * time.Hour),
			lastSync:   schedNow.Add(-time.Hour),
			expectRuns: true,
		},
		{
			name:       "sync older than last run is gated",
			lastRun:    schedNow.Add(-48 * time.Hour),
			lastSync:   schedNow.Add(-72 * time.Hour),
			expectRuns: false,
		},
		{
			name:       "no sync pass yet is gated",
			lastRun:    schedNow.Add(-48 * time.Hour),
			expectRuns: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.instances["rmm"] = []models.ScopeInstance{{TenantID: "t1", ConnectionID: "conn-1"}}
			store.lastRuns["device-offline|t1|conn-1"] = tt.lastRun

			if !tt.lastSync.IsZero() {
				store.syncs["t1|rmm|endpoint"] = tt.lastSync
			}

			pub := &fakePublisher{}
			job := &schedJob{name: "device-offline", integration: "rmm", hours: 24, dependsOn: []string{"endpoint"}}

			s := newScheduler(t, store, pub, job)
			s.Tick(context.Background())

			if tt.expectRuns {
				assert.Len(t, pub.messages, 1)
			} else {
				assert.Empty(t, pub.messages)
			}
		})
	}
}

func TestTickRequiresEveryDependencyFresh(t *testing.T) {
	store := newFakeStore()
	store.instances["rmm"] = []models.ScopeInstance{{TenantID: "t1", ConnectionID: "conn-1"}}
	// Only one of the two dependencies has synced.
	store.syncs["t1|rmm|site"] = schedNow.Add(-time.Hour)

	pub := &fakePublisher{}
	job := &schedJob{name: "site-empty", integration: "rmm", hours: 24, dependsOn: []string{"site", "endpoint"}}

	s := newScheduler(t, store, pub, job)
	s.Tick(context.Background())

	assert.Empty(t, pub.messages)
}

func TestTickOrdersByPrimaryTypePriority(t *testing.T) {
	store := newFakeStore()
	store.instances["rmm"] = []models.ScopeInstance{{TenantID: "t1", ConnectionID: "conn-1"}}
	store.syncs["t1|rmm|endpoint"] = schedNow.Add(-time.Hour)
	store.syncs["t1|rmm|site"] = schedNow.Add(-time.Hour)

	pub := &fakePublisher{}
	// site has catalog priority 2, endpoint priority 1. Registration order is
	// deliberately reversed to prove sorting does the work.
	siteJob := &schedJob{name: "site-audit", integration: "rmm", hours: 24, dependsOn: []string{"site"}}
	endpointJob := &schedJob{name: "endpoint-audit", integration: "rmm", hours: 24, dependsOn: []string{"endpoint"}}

	s := newScheduler(t, store, pub, siteJob, endpointJob)
	s.Tick(context.Background())

	require.Len(t, pub.messages, 2)
	assert.Equal(t, "endpoint-audit", pub.messages[0].JobID)
	assert.Equal(t, "site-audit", pub.messages[1].JobID)
}

func TestTickFansOutAcrossScopeInstances(t *testing.T) {
	store := newFakeStore()
	store.instances["rmm"] = []models.ScopeInstance{
		{TenantID: "t1", ConnectionID: "conn-1"},
		{TenantID: "t2", ConnectionID: "conn-2"},
	}
	store.syncs["t1|rmm|endpoint"] = schedNow.Add(-time.Hour)
	store.syncs["t2|rmm|endpoint"] = schedNow.Add(-time.Hour)

	pub := &fakePublisher{}
	job := &schedJob{name: "device-offline", integration: "rmm", hours: 24, dependsOn: []string{"endpoint"}}

	s := newScheduler(t, store, pub, job)
	s.Tick(context.Background())

	require.Len(t, pub.messages, 2)

	tenants := []string{pub.messages[0].TenantID, pub.messages[1].TenantID}
	assert.ElementsMatch(t, []string{"t1", "t2"}, tenants)
}
