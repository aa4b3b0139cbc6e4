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

// Package registry holds the static catalog of supported integrations. The
// catalog is read-only at run time; changing it is a deployment-time
// configuration change.
package registry

import (
	"sort"

	"github.com/vantagemsp/vantage/pkg/models"
)

// Registry maps integration ids to their static configuration.
type Registry struct {
	integrations map[string]*models.IntegrationConfig
}

// New builds a registry from the given configs.
func New(configs ...*models.IntegrationConfig) *Registry {
	r := &Registry{integrations: make(map[string]*models.IntegrationConfig, len(configs))}

	for _, cfg := range configs {
		r.integrations[cfg.ID] = cfg
	}

	return r
}

// Default returns the catalog of integrations this build supports.
func Default() *Registry {
	return New(
		&models.IntegrationConfig{
			Name: "RMM",
			ID:   "rmm",
			SupportedTypes: []models.SupportedType{
				{Type: "endpoint", RateMinutes: 60, Priority: 1},
				{Type: "site", RateMinutes: 1440, Priority: 2},
			},
		},
		&models.IntegrationConfig{
			Name: "PSA",
			ID:   "psa",
			SupportedTypes: []models.SupportedType{
				{Type: "ticket", RateMinutes: 30, Priority: 1},
				{Type: "company", RateMinutes: 1440, Priority: 2},
			},
		},
		&models.IntegrationConfig{
			Name: "Identity",
			ID:   "identity",
			SupportedTypes: []models.SupportedType{
				{Type: "identity", RateMinutes: 720, Priority: 1},
				{Type: "license", RateMinutes: 720, Priority: 2},
			},
		},
		&models.IntegrationConfig{
			Name: "Backup",
			ID:   "backup",
			SupportedTypes: []models.SupportedType{
				{Type: "backup_job", RateMinutes: 360, Priority: 1},
				{Type: "vault", RateMinutes: 1440, Priority: 2},
			},
		},
	)
}

// Get returns the configuration for one integration.
func (r *Registry) Get(integrationID string) (*models.IntegrationConfig, bool) {
	cfg, ok := r.integrations[integrationID]
	return cfg, ok
}

// All returns the catalog ordered by integration id.
func (r *Registry) All() []*models.IntegrationConfig {
	configs := make([]*models.IntegrationConfig, 0, len(r.integrations))

	for _, cfg := range r.integrations {
		configs = append(configs, cfg)
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ID < configs[j].ID })

	return configs
}
