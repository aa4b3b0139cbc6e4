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

// Package models defines the shared data types for the Vantage engine.
package models

// Entity is one normalized external object (device, site, identity, license,
// policy, ticket) synced from a source integration. Entities are immutable
// snapshots replaced wholesale on each sync; the engine never patches one.
type Entity struct {
	ID            string  `json:"id"`
	TenantID      string  `json:"tenant_id"`
	IntegrationID string  `json:"integration_id"`
	EntityType    string  `json:"entity_type"`
	SiteID        string  `json:"site_id,omitempty"`
	ConnectionID  string  `json:"connection_id,omitempty"`
	DisplayName   string  `json:"display_name"`
	ExternalID    string  `json:"external_id"`
	RawData       RawData `json:"raw_data"`
}

// Relationship is a directed edge expressing hierarchy between two entities,
// e.g. site -> device.
type Relationship struct {
	ParentID      string `json:"parent_id"`
	ChildID       string `json:"child_id"`
	TenantID      string `json:"tenant_id"`
	IntegrationID string `json:"integration_id"`
}
