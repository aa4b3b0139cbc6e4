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
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vantagemsp/vantage/pkg/models"
)

var (
	// ErrSecurityRequired is returned when TLS material is missing.
	ErrSecurityRequired = errors.New("tls security required")
	// ErrCAParsingFailed is returned when the CA certificate cannot be parsed.
	ErrCAParsingFailed = errors.New("failed to parse CA certificate")
)

// TLSConfig builds a tls.Config for connecting to NATS using mTLS.
func TLSConfig(sec *models.SecurityConfig) (*tls.Config, error) {
	if sec == nil || sec.TLS.CertFile == "" || sec.TLS.KeyFile == "" {
		return nil, ErrSecurityRequired
	}

	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) || sec.CertDir == "" {
			return path
		}

		return filepath.Join(sec.CertDir, path)
	}

	cert, err := tls.LoadX509KeyPair(resolve(sec.TLS.CertFile), resolve(sec.TLS.KeyFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	config := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
	}

	if sec.TLS.CAFile != "" {
		caCert, err := os.ReadFile(resolve(sec.TLS.CAFile))
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}

		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, ErrCAParsingFailed
		}

		config.RootCAs = caPool
	}

	return config, nil
}
