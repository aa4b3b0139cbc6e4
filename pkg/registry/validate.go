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

package registry

import (
	"errors"
	"fmt"

	"github.com/vantagemsp/vantage/pkg/engine"
)

var (
	errUnknownIntegration = errors.New("job references unknown integration")
	errUnknownEntityType  = errors.New("job depends on entity type its integration does not sync")
	errNoDependencies     = errors.New("job declares no entity-type dependencies")
	errNoAlertTypes       = errors.New("job declares no alert types")
)

// ValidateJobs checks every job's declarations against the catalog at
// startup. A job depending on an entity type its integration never syncs
// would be scheduled but never become eligible, so the process refuses to
// start instead.
func (r *Registry) ValidateJobs(jobs []engine.Job) error {
	for _, job := range jobs {
		cfg, ok := r.Get(job.IntegrationID())
		if !ok {
			return fmt.Errorf("%w: job %q, integration %q", errUnknownIntegration, job.Name(), job.IntegrationID())
		}

		deps := job.DependsOn()
		if len(deps) == 0 {
			return fmt.Errorf("%w: job %q", errNoDependencies, job.Name())
		}

		for _, entityType := range deps {
			if !cfg.Supports(entityType) {
				return fmt.Errorf("%w: job %q, type %q", errUnknownEntityType, job.Name(), entityType)
			}
		}

		if len(job.AlertTypes()) == 0 {
			return fmt.Errorf("%w: job %q", errNoAlertTypes, job.Name())
		}
	}

	return nil
}
