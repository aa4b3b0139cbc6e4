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

package worker

import (
	"time"

	"github.com/vantagemsp/vantage/pkg/models"
)

const (
	defaultJobTimeout = 10 * time.Minute
	defaultFetchWait  = 30 * time.Second
	defaultMaxDeliver = 3
)

// Config controls the queue workers.
type Config struct {
	// JobTimeout bounds one job execution including persistence.
	JobTimeout models.Duration `json:"job_timeout"`
	// FetchWait is how long one pull waits for a message before retrying.
	FetchWait models.Duration `json:"fetch_wait"`
	// MaxDeliver is how many deliveries a message gets before it is dropped.
	MaxDeliver int `json:"max_deliver"`
}

// Validate fills defaults.
func (c *Config) Validate() error {
	if c.JobTimeout == 0 {
		c.JobTimeout = models.Duration(defaultJobTimeout)
	}

	if c.FetchWait == 0 {
		c.FetchWait = models.Duration(defaultFetchWait)
	}

	if c.MaxDeliver == 0 {
		c.MaxDeliver = defaultMaxDeliver
	}

	return nil
}
