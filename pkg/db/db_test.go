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

package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
)

func TestJobRunScopeID(t *testing.T) {
	conn := &JobRun{ConnectionID: "conn-1"}
	assert.Equal(t, "conn-1", conn.ScopeID())

	site := &JobRun{ConnectionID: "conn-1", SiteID: "site-9"}
	assert.Equal(t, "site-9", site.ScopeID())
}

func TestPersistJobResultRejectsNilInputs(t *testing.T) {
	store := NewWithPool(nil, logger.NewTestLogger())

	err := store.PersistJobResult(context.Background(), nil, models.NewJobResult())
	require.ErrorIs(t, err, errNilJobResult)

	err = store.PersistJobResult(context.Background(), &JobRun{}, nil)
	require.ErrorIs(t, err, errNilJobResult)
}

func TestEncodeMetadata(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]interface{}
		expected string
	}{
		{name: "nil encodes to empty object", metadata: nil, expected: "{}"},
		{name: "empty encodes to empty object", metadata: map[string]interface{}{}, expected: "{}"},
		{name: "values serialize as json", metadata: map[string]interface{}{"days": 35}, expected: `{"days":35}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := encodeMetadata(tt.metadata)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, encoded)
		})
	}
}
