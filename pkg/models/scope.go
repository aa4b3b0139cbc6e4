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

// ScopeInstance identifies one concrete unit of job execution: a tenant's
// connection to an external system, or one of that tenant's sites.
type ScopeInstance struct {
	TenantID     string `json:"tenant_id"`
	ConnectionID string `json:"connection_id,omitempty"`
	SiteID       string `json:"site_id,omitempty"`
}

// ScopeID returns the identifier that distinguishes this instance within its
// tenant: the site for site-scoped runs, the connection otherwise.
func (s ScopeInstance) ScopeID() string {
	if s.SiteID != "" {
		return s.SiteID
	}

	return s.ConnectionID
}
