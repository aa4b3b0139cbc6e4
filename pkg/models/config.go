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

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var errInvalidDuration = errors.New("invalid duration")

// Duration wraps time.Duration so configs can say "30s" or "6h".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// numeric values are nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// TLSConfig holds mTLS material for NATS and datastore connections.
type TLSConfig struct {
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
	CAFile   string `json:"ca_file,omitempty"`
}

// SecurityConfig wraps TLS settings plus the directory relative cert paths
// resolve against.
type SecurityConfig struct {
	CertDir string    `json:"cert_dir,omitempty"`
	TLS     TLSConfig `json:"tls"`
}

// DatabaseConfig describes the Postgres cluster holding the entity graph and
// job outputs.
type DatabaseConfig struct {
	Host            string     `json:"host"`
	Port            int        `json:"port"`
	Database        string     `json:"database"`
	Username        string     `json:"username"`
	Password        string     `json:"password,omitempty"`
	SSLMode         string     `json:"ssl_mode,omitempty"`
	ApplicationName string     `json:"application_name,omitempty"`
	MaxConnections  int32      `json:"max_connections,omitempty"`
	MinConnections  int32      `json:"min_connections,omitempty"`
	MaxConnLifetime Duration   `json:"max_conn_lifetime,omitempty"`
	TLS             *TLSConfig `json:"tls,omitempty"`
	CertDir         string     `json:"cert_dir,omitempty"`
}
