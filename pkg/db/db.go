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

// Package db provides Postgres-backed storage for the entity graph and job
// outputs.
package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
)

// Service is the storage surface the engine depends on. Reads feed the
// SyncContext and scheduler; writes persist job results. All writes are
// idempotent upserts so queue retries are safe to repeat.
type Service interface {
	// Entity graph reads.
	GetEntities(ctx context.Context, tenantID, integrationID, siteID string) ([]*models.Entity, error)
	GetRelationships(ctx context.Context, tenantID, integrationID, siteID string) ([]*models.Relationship, error)
	ListScopeInstances(ctx context.Context, integrationID string, scope models.JobScope) ([]models.ScopeInstance, error)

	// Scheduler bookkeeping.
	LastJobRun(ctx context.Context, jobID, tenantID, scopeID string) (time.Time, error)
	LastSyncPass(ctx context.Context, tenantID, integrationID, entityType string) (time.Time, error)
	RecordSyncPass(ctx context.Context, tenantID, integrationID, entityType string, completedAt time.Time) error

	// Job output persistence. All-or-nothing per invocation.
	PersistJobResult(ctx context.Context, run *JobRun, result *models.JobResult) error

	Close()
}

// JobRun identifies one job invocation for persistence purposes.
type JobRun struct {
	JobID         string
	TenantID      string
	IntegrationID string
	ConnectionID  string
	SiteID        string
	// AlertTypes is the closed set of alert kinds the job can emit; alerts of
	// these kinds not re-emitted this run are resolved as stale.
	AlertTypes  []string
	CompletedAt time.Time
}

// ScopeID returns the scope identifier recorded with the run.
func (r *JobRun) ScopeID() string {
	if r.SiteID != "" {
		return r.SiteID
	}

	return r.ConnectionID
}

// DB implements Service on a pgx connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// New connects to the configured cluster, applies pending schema migrations,
// and returns a ready Service.
func New(ctx context.Context, cfg *models.DatabaseConfig, log logger.Logger) (*DB, error) {
	pool, err := NewPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{pool: pool, logger: log}, nil
}

// NewWithPool wraps an existing pool; used by tests.
func NewWithPool(pool *pgxpool.Pool, log logger.Logger) *DB {
	return &DB{pool: pool, logger: log}
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}
