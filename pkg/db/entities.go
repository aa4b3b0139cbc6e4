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
	"fmt"

	"github.com/vantagemsp/vantage/pkg/models"
)

const (
	selectEntitiesSQL = `
SELECT
	id,
	tenant_id,
	integration_id,
	entity_type,
	COALESCE(site_id, ''),
	COALESCE(connection_id, ''),
	display_name,
	external_id,
	COALESCE(raw_data, '{}'::jsonb)
FROM entities
WHERE tenant_id = $1
  AND integration_id = $2
  AND ($3 = '' OR site_id = $3)
ORDER BY id`

	selectRelationshipsSQL = `
SELECT
	parent_id,
	child_id,
	tenant_id,
	integration_id
FROM relationships
WHERE tenant_id = $1
  AND integration_id = $2
  AND ($3 = '' OR parent_id IN (SELECT id FROM entities WHERE site_id = $3))
ORDER BY parent_id, child_id`

	selectConnectionScopesSQL = `
SELECT DISTINCT tenant_id, connection_id
FROM entities
WHERE integration_id = $1
  AND connection_id IS NOT NULL
  AND connection_id <> ''
ORDER BY tenant_id, connection_id`

	selectSiteScopesSQL = `
SELECT DISTINCT tenant_id, site_id
FROM entities
WHERE integration_id = $1
  AND site_id IS NOT NULL
  AND site_id <> ''
ORDER BY tenant_id, site_id`
)

// GetEntities returns the full entity snapshot for one tenant+integration,
// optionally narrowed to a site.
func (db *DB) GetEntities(ctx context.Context, tenantID, integrationID, siteID string) ([]*models.Entity, error) {
	rows, err := db.pool.Query(ctx, selectEntitiesSQL, tenantID, integrationID, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entities []*models.Entity

	for rows.Next() {
		var (
			e       models.Entity
			rawData []byte
		)

		if err := rows.Scan(
			&e.ID,
			&e.TenantID,
			&e.IntegrationID,
			&e.EntityType,
			&e.SiteID,
			&e.ConnectionID,
			&e.DisplayName,
			&e.ExternalID,
			&rawData,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}

		if len(rawData) > 0 {
			if err := json.Unmarshal(rawData, &e.RawData); err != nil {
				db.logger.Warn().
					Err(err).
					Str("entity_id", e.ID).
					Msg("skipping malformed raw_data payload")

				e.RawData = models.RawData{}
			}
		}

		entities = append(entities, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entity row iteration failed: %w", err)
	}

	return entities, nil
}

// GetRelationships returns the relationship edges for one tenant+integration.
func (db *DB) GetRelationships(ctx context.Context, tenantID, integrationID, siteID string) ([]*models.Relationship, error) {
	rows, err := db.pool.Query(ctx, selectRelationshipsSQL, tenantID, integrationID, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	var relationships []*models.Relationship

	for rows.Next() {
		var r models.Relationship

		if err := rows.Scan(&r.ParentID, &r.ChildID, &r.TenantID, &r.IntegrationID); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}

		relationships = append(relationships, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("relationship row iteration failed: %w", err)
	}

	return relationships, nil
}

// ListScopeInstances enumerates the distinct (tenant, connection) or
// (tenant, site) pairs present in the entity graph for one integration. The
// scheduler uses this to fan out eligible jobs.
func (db *DB) ListScopeInstances(ctx context.Context, integrationID string, scope models.JobScope) ([]models.ScopeInstance, error) {
	query := selectConnectionScopesSQL
	if scope == models.ScopeSite {
		query = selectSiteScopesSQL
	}

	rows, err := db.pool.Query(ctx, query, integrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scope instances: %w", err)
	}
	defer rows.Close()

	var instances []models.ScopeInstance

	for rows.Next() {
		var (
			tenantID string
			scopeID  string
		)

		if err := rows.Scan(&tenantID, &scopeID); err != nil {
			return nil, fmt.Errorf("failed to scan scope instance: %w", err)
		}

		instance := models.ScopeInstance{TenantID: tenantID}
		if scope == models.ScopeSite {
			instance.SiteID = scopeID
		} else {
			instance.ConnectionID = scopeID
		}

		instances = append(instances, instance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scope instance row iteration failed: %w", err)
	}

	return instances, nil
}
