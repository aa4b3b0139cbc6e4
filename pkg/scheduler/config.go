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

package scheduler

import (
	"time"

	"github.com/vantagemsp/vantage/pkg/models"
)

const defaultInterval = 5 * time.Minute

// Config controls the scheduler loop.
type Config struct {
	// Interval is how often eligibility is re-evaluated.
	Interval models.Duration `json:"interval"`
}

// Validate fills defaults.
func (c *Config) Validate() error {
	if c.Interval == 0 {
		c.Interval = models.Duration(defaultInterval)
	}

	return nil
}
