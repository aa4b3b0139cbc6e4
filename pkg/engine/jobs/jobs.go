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
	"github.com/vantagemsp/vantage/pkg/engine"
	"github.com/vantagemsp/vantage/pkg/logger"
)

// All returns every rule this build ships.
func All(log logger.Logger) []engine.Job {
	return []engine.Job{
		NewDeviceOffline(log),
		NewSiteEmpty(log),
		NewLicenseWaste(log),
		NewBackupStale(log),
	}
}

// Index maps jobs by name for queue message dispatch.
func Index(all []engine.Job) map[string]engine.Job {
	index := make(map[string]engine.Job, len(all))

	for _, job := range all {
		index[job.Name()] = job
	}

	return index
}

// ByIntegration groups jobs by the integration whose queue serializes them.
func ByIntegration(all []engine.Job) map[string][]engine.Job {
	grouped := make(map[string][]engine.Job)

	for _, job := range all {
		grouped[job.IntegrationID()] = append(grouped[job.IntegrationID()], job)
	}

	return grouped
}
