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
	"fmt"

	"github.com/vantagemsp/vantage/pkg/engine"
	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
)

const alertTypeLicenseWaste = "license-waste"

// LicenseWaste flags disabled identities that still hold paid license
// assignments.
type LicenseWaste struct {
	logger logger.Logger
}

func NewLicenseWaste(log logger.Logger) *LicenseWaste {
	return &LicenseWaste{logger: log}
}

func (*LicenseWaste) Name() string           { return "license-waste" }
func (*LicenseWaste) IntegrationID() string  { return "identity" }
func (*LicenseWaste) ScheduleHours() int     { return 24 }
func (*LicenseWaste) Scope() models.JobScope { return models.ScopeConnection }
func (*LicenseWaste) DependsOn() []string    { return []string{"identity"} }
func (*LicenseWaste) AlertTypes() []string   { return []string{alertTypeLicenseWaste} }

func (j *LicenseWaste) Execute(ctx context.Context, sc *engine.SyncContext) (*models.JobResult, error) {
	identities, err := sc.EntitiesOfType(ctx, "identity")
	if err != nil {
		return nil, err
	}

	result := models.NewJobResult()

	engine.EachEntity(identities, j.logger, func(entity *models.Entity) error {
		enabled, hasEnabled := entity.RawData.Bool("accountEnabled")
		if !hasEnabled || enabled {
			return nil
		}

		licenses := entity.RawData.Slice("assignedLicenses")
		if len(licenses) == 0 {
			return nil
		}

		result.Alerts = append(result.Alerts, engine.CreateAlert(
			entity,
			alertTypeLicenseWaste,
			models.SeverityHigh,
			fmt.Sprintf("Disabled account %s still holds %d licenses", entity.DisplayName, len(licenses)),
			map[string]interface{}{"license_count": len(licenses)},
		))
		engine.AddTags(result, entity.ID,
			models.EntityTag{EntityID: entity.ID, Tag: "license-waste", Category: "licensing", Source: j.Name()},
			models.EntityTag{EntityID: entity.ID, Tag: "disabled", Category: "licensing", Source: j.Name()},
		)
		engine.SetState(result, entity.ID, models.StateWarn)

		return nil
	})

	return result, nil
}
