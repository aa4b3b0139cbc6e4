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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagemsp/vantage/pkg/engine"
	"github.com/vantagemsp/vantage/pkg/models"
)

// stubJob lets each test declare arbitrary job metadata.
type stubJob struct {
	name        string
	integration string
	dependsOn   []string
	alertTypes  []string
}

func (j *stubJob) Name() string           { return j.name }
func (j *stubJob) IntegrationID() string  { return j.integration }
func (j *stubJob) ScheduleHours() int     { return 24 }
func (j *stubJob) Scope() models.JobScope { return models.ScopeConnection }
func (j *stubJob) DependsOn() []string    { return j.dependsOn }
func (j *stubJob) AlertTypes() []string   { return j.alertTypes }

func (j *stubJob) Execute(_ context.Context, _ *engine.SyncContext) (*models.JobResult, error) {
	return models.NewJobResult(), nil
}

func TestDefaultCatalog(t *testing.T) {
	reg := Default()

	all := reg.All()
	require.Len(t, all, 4)

	// All() is ordered by id for deterministic iteration.
	assert.Equal(t, "backup", all[0].ID)
	assert.Equal(t, "identity", all[1].ID)
	assert.Equal(t, "psa", all[2].ID)
	assert.Equal(t, "rmm", all[3].ID)

	rmm, ok := reg.Get("rmm")
	require.True(t, ok)
	assert.True(t, rmm.Supports("endpoint"))
	assert.True(t, rmm.Supports("site"))

	_, ok = reg.Get("unknown")
	assert.False(t, ok)
}

func TestValidateJobs(t *testing.T) {
	reg := Default()

	tests := []struct {
		name    string
		job     *stubJob
		wantErr string
	}{
		{
			name: "valid job passes",
			job: &stubJob{
				name:        "ok",
				integration: "rmm",
				dependsOn:   []string{"endpoint"},
				alertTypes:  []string{"ok-alert"},
			},
		},
		{
			name: "unknown integration rejected",
			job: &stubJob{
				name:        "bad-integration",
				integration: "crm",
				dependsOn:   []string{"endpoint"},
				alertTypes:  []string{"a"},
			},
			wantErr: "unknown integration",
		},
		{
			name: "unsupported entity type rejected",
			job: &stubJob{
				name:        "bad-type",
				integration: "rmm",
				dependsOn:   []string{"ticket"},
				alertTypes:  []string{"a"},
			},
			wantErr: "does not sync",
		},
		{
			name: "no dependencies rejected",
			job: &stubJob{
				name:        "no-deps",
				integration: "rmm",
				alertTypes:  []string{"a"},
			},
			wantErr: "no entity-type dependencies",
		},
		{
			name: "no alert types rejected",
			job: &stubJob{
				name:        "no-alerts",
				integration: "rmm",
				dependsOn:   []string{"endpoint"},
			},
			wantErr: "no alert types",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.ValidateJobs([]engine.Job{tt.job})

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
