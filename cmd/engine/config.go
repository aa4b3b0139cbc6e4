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

package main

import (
	"errors"

	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/models"
	"github.com/vantagemsp/vantage/pkg/scheduler"
	"github.com/vantagemsp/vantage/pkg/worker"
)

var errDatabaseRequired = errors.New("database host and name are required")

const defaultNATSURL = "nats://localhost:4222"

// Config is the full engine configuration file.
type Config struct {
	Logging   *logger.Config         `json:"logging,omitempty"`
	Database  models.DatabaseConfig  `json:"database"`
	NATS      NATSConfig             `json:"nats"`
	Scheduler scheduler.Config       `json:"scheduler"`
	Worker    worker.Config          `json:"worker"`
	Security  *models.SecurityConfig `json:"security,omitempty"`
}

// NATSConfig locates the JetStream cluster backing the job queues.
type NATSConfig struct {
	URL string `json:"url"`
}

// Validate applies defaults and checks required fields.
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.Database == "" {
		return errDatabaseRequired
	}

	if c.NATS.URL == "" {
		c.NATS.URL = defaultNATSURL
	}

	if err := c.Scheduler.Validate(); err != nil {
		return err
	}

	return c.Worker.Validate()
}
