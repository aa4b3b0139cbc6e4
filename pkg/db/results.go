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

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vantagemsp/vantage/pkg/models"
)

const (
	upsertAlertSQL = `
INSERT INTO alerts (
	fingerprint,
	entity_id,
	tenant_id,
	integration_id,
	alert_type,
	severity,
	message,
	metadata,
	site_id,
	connection_id,
	status,
	first_seen,
	last_seen
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'open',$11,$11
)
ON CONFLICT (fingerprint) DO UPDATE SET
	severity = EXCLUDED.severity,
	message = EXCLUDED.message,
	metadata = EXCLUDED.metadata,
	status = 'open',
	last_seen = EXCLUDED.last_seen`

	resolveStaleAlertsSQL = `
UPDATE alerts SET
	status = 'resolved',
	resolved_at = $1
WHERE tenant_id = $2
  AND integration_id = $3
  AND alert_type = ANY($4)
  AND ($5 = '' OR connection_id = $5)
  AND ($6 = '' OR site_id = $6)
  AND status = 'open'
  AND NOT (fingerprint = ANY($7))`

	insertTagSQL = `
INSERT INTO entity_tags (
	entity_id,
	tenant_id,
	tag,
	category,
	source,
	created_at
) VALUES ($1,$2,$3,$4,$5,$6)`

	upsertEntityStateSQL = `
INSERT INTO entity_states (
	entity_id,
	tenant_id,
	state,
	priority,
	updated_at
) VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (entity_id) DO UPDATE SET
	state = EXCLUDED.state,
	priority = EXCLUDED.priority,
	updated_at = EXCLUDED.updated_at
WHERE EXCLUDED.priority >= entity_states.priority`

	upsertJobRunSQL = `
INSERT INTO job_runs (
	job_id,
	tenant_id,
	scope_id,
	completed_at
) VALUES ($1,$2,$3,$4)
ON CONFLICT (job_id, tenant_id, scope_id) DO UPDATE SET
	completed_at = EXCLUDED.completed_at`

	selectLastJobRunSQL = `
SELECT completed_at FROM job_runs
WHERE job_id = $1 AND tenant_id = $2 AND scope_id = $3`

	selectLastSyncPassSQL = `
SELECT completed_at FROM sync_passes
WHERE tenant_id = $1 AND integration_id = $2 AND entity_type = $3`

	upsertSyncPassSQL = `
INSERT INTO sync_passes (
	tenant_id,
	integration_id,
	entity_type,
	completed_at
) VALUES ($1,$2,$3,$4)
ON CONFLICT (tenant_id, integration_id, entity_type) DO UPDATE SET
	completed_at = EXCLUDED.completed_at`
)

// PersistJobResult writes one job's output in a single batch: alerts upserted
// by fingerprint, stale alerts of the job's declared kinds resolved, tags
// appended, states merged by priority, and the run recorded. Every statement
// is an idempotent upsert, so a retried message repeats safely.
func (db *DB) PersistJobResult(ctx context.Context, run *JobRun, result *models.JobResult) error {
	if run == nil || result == nil {
		return errNilJobResult
	}

	completedAt := run.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	batch := &pgx.Batch{}

	fingerprints := make([]string, 0, len(result.Alerts))

	for i := range result.Alerts {
		alert := &result.Alerts[i]

		metadata, err := encodeMetadata(alert.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode alert metadata for %s: %w", alert.Fingerprint, err)
		}

		batch.Queue(upsertAlertSQL,
			alert.Fingerprint,
			alert.EntityID,
			run.TenantID,
			run.IntegrationID,
			alert.AlertType,
			string(alert.Severity),
			alert.Message,
			metadata,
			alert.SiteID,
			alert.ConnectionID,
			completedAt,
		)

		fingerprints = append(fingerprints, alert.Fingerprint)
	}

	if len(run.AlertTypes) > 0 {
		batch.Queue(resolveStaleAlertsSQL,
			completedAt,
			run.TenantID,
			run.IntegrationID,
			run.AlertTypes,
			run.ConnectionID,
			run.SiteID,
			fingerprints,
		)
	}

	for entityID, tags := range result.Tags {
		for _, tag := range tags {
			batch.Queue(insertTagSQL,
				entityID,
				run.TenantID,
				tag.Tag,
				tag.Category,
				tag.Source,
				completedAt,
			)
		}
	}

	for entityID, state := range result.States {
		batch.Queue(upsertEntityStateSQL,
			entityID,
			run.TenantID,
			string(state),
			state.Priority(),
			completedAt,
		)
	}

	batch.Queue(upsertJobRunSQL, run.JobID, run.TenantID, run.ScopeID(), completedAt)

	results := db.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to persist job result (statement %d): %w", i, err)
		}
	}

	db.logger.Debug().
		Str("job_id", run.JobID).
		Str("tenant_id", run.TenantID).
		Int("alerts", len(result.Alerts)).
		Int("states", len(result.States)).
		Msg("persisted job result")

	return nil
}

// LastJobRun returns the completion time of the job's most recent successful
// run for the given scope instance, or the zero time when it never ran.
func (db *DB) LastJobRun(ctx context.Context, jobID, tenantID, scopeID string) (time.Time, error) {
	var completedAt time.Time

	err := db.pool.QueryRow(ctx, selectLastJobRunSQL, jobID, tenantID, scopeID).Scan(&completedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}

	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last job run: %w", err)
	}

	return completedAt, nil
}

// LastSyncPass returns when the named entity type last completed a sync for
// the tenant, or the zero time when it never has.
func (db *DB) LastSyncPass(ctx context.Context, tenantID, integrationID, entityType string) (time.Time, error) {
	var completedAt time.Time

	err := db.pool.QueryRow(ctx, selectLastSyncPassSQL, tenantID, integrationID, entityType).Scan(&completedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}

	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last sync pass: %w", err)
	}

	return completedAt, nil
}

// RecordSyncPass marks an entity type as freshly synced. The sync layer calls
// this after each completed pull; the scheduler reads it for dependency gating.
func (db *DB) RecordSyncPass(ctx context.Context, tenantID, integrationID, entityType string, completedAt time.Time) error {
	if _, err := db.pool.Exec(ctx, upsertSyncPassSQL, tenantID, integrationID, entityType, completedAt); err != nil {
		return fmt.Errorf("failed to record sync pass: %w", err)
	}

	return nil
}

func encodeMetadata(metadata map[string]interface{}) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}

	data, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
