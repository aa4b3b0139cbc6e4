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
	"time"
)

// RawData is the opaque structured payload an entity carries from its source
// system. Payloads are heterogeneous across integrations, so every field is
// optional; rules must tolerate missing or mistyped keys.
type RawData map[string]interface{}

// String returns the string value for key, or "" when absent or not a string.
func (r RawData) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}

	return ""
}

// Bool returns the boolean value for key. The second return reports whether
// the key was present and boolean.
func (r RawData) Bool(key string) (value, ok bool) {
	value, ok = r[key].(bool)
	return value, ok
}

// Int returns the numeric value for key as an int. JSON numbers decode as
// float64, so both representations are accepted.
func (r RawData) Int(key string) (int, bool) {
	switch v := r[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}

		return int(n), true
	default:
		return 0, false
	}
}

// Time parses the value for key as an RFC3339 timestamp.
func (r RawData) Time(key string) (time.Time, bool) {
	s, ok := r[key].(string)
	if !ok {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// Slice returns the list value for key, or nil when absent or not a list.
func (r RawData) Slice(key string) []interface{} {
	if v, ok := r[key].([]interface{}); ok {
		return v
	}

	return nil
}
