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

// EntityState is the worst-known health of an entity after all jobs have run.
type EntityState string

const (
	StateNormal   EntityState = "normal"
	StateLow      EntityState = "low"
	StateWarn     EntityState = "warn"
	StateCritical EntityState = "critical"
)

const (
	priorityNormal = 0
	priorityLow    = 1
	priorityWarn   = 2
	// The jump from warn to critical leaves room for an intermediate level.
	// Other code compares against these literals, so the spacing stays.
	priorityCritical = 4
)

// Priority returns the numeric rank used to merge competing state writes.
// Higher wins. Unknown states rank as normal.
func (s EntityState) Priority() int {
	switch s {
	case StateLow:
		return priorityLow
	case StateWarn:
		return priorityWarn
	case StateCritical:
		return priorityCritical
	case StateNormal:
		return priorityNormal
	default:
		return priorityNormal
	}
}

// Valid reports whether s is one of the known health states.
func (s EntityState) Valid() bool {
	switch s {
	case StateNormal, StateLow, StateWarn, StateCritical:
		return true
	default:
		return false
	}
}
