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

package natsutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagemsp/vantage/pkg/models"
)

func TestTLSConfigRequiresMaterial(t *testing.T) {
	tests := []struct {
		name string
		sec  *models.SecurityConfig
	}{
		{name: "nil config"},
		{
			name: "missing cert",
			sec:  &models.SecurityConfig{TLS: models.TLSConfig{KeyFile: "key.pem"}},
		},
		{
			name: "missing key",
			sec:  &models.SecurityConfig{TLS: models.TLSConfig{CertFile: "cert.pem"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TLSConfig(tt.sec)
			require.ErrorIs(t, err, ErrSecurityRequired)
		})
	}
}

func TestTLSConfigUnreadableCert(t *testing.T) {
	sec := &models.SecurityConfig{
		CertDir: t.TempDir(),
		TLS:     models.TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"},
	}

	_, err := TLSConfig(sec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client certificate")
}
