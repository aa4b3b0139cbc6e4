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
	"context"
	"fmt"

	"github.com/vantagemsp/vantage/pkg/models"
)

// EntityStore is the narrow read surface the cache needs from the datastore.
type EntityStore interface {
	GetEntities(ctx context.Context, tenantID, integrationID, siteID string) ([]*models.Entity, error)
	GetRelationships(ctx context.Context, tenantID, integrationID, siteID string) ([]*models.Relationship, error)
}

// SyncContext is the per-run cache of one scope's entities and relationships.
// Each kind is loaded at most once per context instance, so every job in a
// run sees one consistent snapshot and read amplification stays at one query
// per kind. A context is exclusively owned by one job invocation and never
// shared across worker executions.
type SyncContext struct {
	store         EntityStore
	tenantID      string
	integrationID string
	siteID        string

	entities      []*models.Entity
	entitiesSet   bool
	relationships []*models.Relationship
	relsSet       bool
}

// NewSyncContext builds an empty cache for one (tenant, integration, site)
// scope. siteID is empty for connection-scoped runs.
func NewSyncContext(store EntityStore, tenantID, integrationID, siteID string) *SyncContext {
	return &SyncContext{
		store:         store,
		tenantID:      tenantID,
		integrationID: integrationID,
		siteID:        siteID,
	}
}

// TenantID returns the tenant this context is scoped to.
func (sc *SyncContext) TenantID() string { return sc.tenantID }

// IntegrationID returns the integration this context is scoped to.
func (sc *SyncContext) IntegrationID() string { return sc.integrationID }

// Entities returns the cached entity snapshot, loading it on first use.
func (sc *SyncContext) Entities(ctx context.Context) ([]*models.Entity, error) {
	if sc.entitiesSet {
		return sc.entities, nil
	}

	entities, err := sc.store.GetEntities(ctx, sc.tenantID, sc.integrationID, sc.siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}

	sc.entities = entities
	sc.entitiesSet = true

	return sc.entities, nil
}

// Relationships returns the cached relationship edges, loading on first use.
func (sc *SyncContext) Relationships(ctx context.Context) ([]*models.Relationship, error) {
	if sc.relsSet {
		return sc.relationships, nil
	}

	relationships, err := sc.store.GetRelationships(ctx, sc.tenantID, sc.integrationID, sc.siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationships: %w", err)
	}

	sc.relationships = relationships
	sc.relsSet = true

	return sc.relationships, nil
}

// ChildEntities returns the entities related to parentID as children. Pure
// in-memory filter over the cached lists; no I/O beyond the initial loads.
func (sc *SyncContext) ChildEntities(ctx context.Context, parentID string) ([]*models.Entity, error) {
	relationships, err := sc.Relationships(ctx)
	if err != nil {
		return nil, err
	}

	entities, err := sc.Entities(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Entity, len(entities))
	for _, entity := range entities {
		byID[entity.ID] = entity
	}

	var children []*models.Entity

	for _, rel := range relationships {
		if rel.ParentID != parentID {
			continue
		}

		if child, ok := byID[rel.ChildID]; ok {
			children = append(children, child)
		}
	}

	return children, nil
}

// EntitiesOfType filters the cached snapshot by entity type.
func (sc *SyncContext) EntitiesOfType(ctx context.Context, entityType string) ([]*models.Entity, error) {
	entities, err := sc.Entities(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []*models.Entity

	for _, entity := range entities {
		if entity.EntityType == entityType {
			filtered = append(filtered, entity)
		}
	}

	return filtered, nil
}
