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
	"time"

	"github.com/vantagemsp/vantage/pkg/engine"
	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
)

const (
	alertTypeBackupStale = "backup-stale"

	backupStaleThreshold = 7 * 24 * time.Hour
)

// BackupStale flags backup jobs without a successful run in the last week.
// A job that has never succeeded counts as stale.
type BackupStale struct {
	logger logger.Logger
	now    func() time.Time
}

func NewBackupStale(log logger.Logger) *BackupStale {
	return &BackupStale{logger: log, now: time.Now}
}

func (*BackupStale) Name() string           { return "backup-stale" }
func (*BackupStale) IntegrationID() string  { return "backup" }
func (*BackupStale) ScheduleHours() int     { return 12 }
func (*BackupStale) Scope() models.JobScope { return models.ScopeSite }
func (*BackupStale) DependsOn() []string    { return []string{"backup_job"} }
func (*BackupStale) AlertTypes() []string   { return []string{alertTypeBackupStale} }

func (j *BackupStale) Execute(ctx context.Context, sc *engine.SyncContext) (*models.JobResult, error) {
	backups, err := sc.EntitiesOfType(ctx, "backup_job")
	if err != nil {
		return nil, err
	}

	result := models.NewJobResult()
	now := j.now()

	engine.EachEntity(backups, j.logger, func(entity *models.Entity) error {
		lastSuccess, hasSuccess := entity.RawData.Time("lastSuccess")
		if hasSuccess && now.Sub(lastSuccess) <= backupStaleThreshold {
			return nil
		}

		message := fmt.Sprintf("Backup job %s has never completed successfully", entity.DisplayName)
		metadata := map[string]interface{}{}

		if hasSuccess {
			days := int(now.Sub(lastSuccess).Hours() / 24)
			message = fmt.Sprintf("Backup job %s last succeeded %d days ago", entity.DisplayName, days)
			metadata["last_success"] = lastSuccess.Format(time.RFC3339)
		}

		result.Alerts = append(result.Alerts, engine.CreateAlert(
			entity,
			alertTypeBackupStale,
			models.SeverityHigh,
			message,
			metadata,
		))
		engine.SetState(result, entity.ID, models.StateCritical)

		return nil
	})

	return result, nil
}
