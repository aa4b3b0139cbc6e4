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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name     string `json:"name"`
	Interval string `json:"interval"`

	validateErr error
}

func (c *testConfig) Validate() error {
	if c.validateErr != nil {
		return c.validateErr
	}

	if c.Name == "" {
		c.Name = "default"
	}

	return nil
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("loads and applies defaults", func(t *testing.T) {
		path := writeTempConfig(t, `{"interval": "30s"}`)

		var cfg testConfig

		require.NoError(t, NewConfig().LoadAndValidate(ctx, path, &cfg))
		assert.Equal(t, "default", cfg.Name)
		assert.Equal(t, "30s", cfg.Interval)
	})

	t.Run("rejects non-pointer destination", func(t *testing.T) {
		path := writeTempConfig(t, `{}`)

		err := NewConfig().LoadAndValidate(ctx, path, testConfig{})
		require.ErrorIs(t, err, errInvalidConfigPtr)
	})

	t.Run("missing file", func(t *testing.T) {
		var cfg testConfig

		err := NewConfig().LoadAndValidate(ctx, "/nonexistent/config.json", &cfg)
		require.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := writeTempConfig(t, `{not json`)

		var cfg testConfig

		err := NewConfig().LoadAndValidate(ctx, path, &cfg)
		require.Error(t, err)
	})

	t.Run("validation failure propagates", func(t *testing.T) {
		path := writeTempConfig(t, `{"name": "x"}`)

		cfg := testConfig{validateErr: errors.New("bad config")}

		err := NewConfig().LoadAndValidate(ctx, path, &cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad config")
	})
}
