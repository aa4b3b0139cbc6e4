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

const alertTypeSiteEmpty = "site-empty"

// SiteEmpty flags sites with no child entities, which usually means a dead
// connection or a decommissioned location still being billed.
type SiteEmpty struct {
	logger logger.Logger
}

func NewSiteEmpty(log logger.Logger) *SiteEmpty {
	return &SiteEmpty{logger: log}
}

func (*SiteEmpty) Name() string           { return "site-empty" }
func (*SiteEmpty) IntegrationID() string  { return "rmm" }
func (*SiteEmpty) ScheduleHours() int     { return 24 }
func (*SiteEmpty) Scope() models.JobScope { return models.ScopeConnection }
func (*SiteEmpty) DependsOn() []string    { return []string{"site", "endpoint"} }
func (*SiteEmpty) AlertTypes() []string   { return []string{alertTypeSiteEmpty} }

func (j *SiteEmpty) Execute(ctx context.Context, sc *engine.SyncContext) (*models.JobResult, error) {
	sites, err := sc.EntitiesOfType(ctx, "site")
	if err != nil {
		return nil, err
	}

	// Load the edges up front so a datastore failure aborts the run. Inside
	// the scan a failed load would read as "no children" and resolve every
	// open alert for the scope.
	if _, err := sc.Relationships(ctx); err != nil {
		return nil, err
	}

	result := models.NewJobResult()

	engine.EachEntity(sites, j.logger, func(entity *models.Entity) error {
		children, err := sc.ChildEntities(ctx, entity.ID)
		if err != nil {
			return err
		}

		if len(children) > 0 {
			return nil
		}

		result.Alerts = append(result.Alerts, engine.CreateAlert(
			entity,
			alertTypeSiteEmpty,
			models.SeverityLow,
			fmt.Sprintf("Site %s has no devices", entity.DisplayName),
			nil,
		))
		engine.SetState(result, entity.ID, models.StateLow)

		return nil
	})

	return result, nil
}
