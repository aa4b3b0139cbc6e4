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

// Package jobs holds the concrete rules the engine schedules.
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
	alertTypeDeviceOffline = "device-offline"

	offlineThreshold = 30 * 24 * time.Hour
)

// DeviceOffline flags endpoints that report offline and have not been seen
// for over thirty days.
type DeviceOffline struct {
	logger logger.Logger
	now    func() time.Time
}

func NewDeviceOffline(log logger.Logger) *DeviceOffline {
	return &DeviceOffline{logger: log, now: time.Now}
}

func (*DeviceOffline) Name() string           { return "device-offline" }
func (*DeviceOffline) IntegrationID() string  { return "rmm" }
func (*DeviceOffline) ScheduleHours() int     { return 24 }
func (*DeviceOffline) Scope() models.JobScope { return models.ScopeConnection }
func (*DeviceOffline) DependsOn() []string    { return []string{"endpoint"} }
func (*DeviceOffline) AlertTypes() []string   { return []string{alertTypeDeviceOffline} }

func (j *DeviceOffline) Execute(ctx context.Context, sc *engine.SyncContext) (*models.JobResult, error) {
	endpoints, err := sc.EntitiesOfType(ctx, "endpoint")
	if err != nil {
		return nil, err
	}

	result := models.NewJobResult()
	now := j.now()

	engine.EachEntity(endpoints, j.logger, func(entity *models.Entity) error {
		online, hasOnline := entity.RawData.Bool("online")
		if !hasOnline || online {
			return nil
		}

		lastSeen, hasLastSeen := entity.RawData.Time("lastSeen")
		if !hasLastSeen {
			return nil
		}

		offlineFor := now.Sub(lastSeen)
		if offlineFor <= offlineThreshold {
			return nil
		}

		days := int(offlineFor.Hours() / 24)

		result.Alerts = append(result.Alerts, engine.CreateAlert(
			entity,
			alertTypeDeviceOffline,
			models.SeverityMedium,
			fmt.Sprintf("Device %s has been offline for %d days", entity.DisplayName, days),
			map[string]interface{}{"last_seen": lastSeen.Format(time.RFC3339), "days_offline": days},
		))
		engine.SetState(result, entity.ID, models.StateWarn)

		return nil
	})

	return result, nil
}
