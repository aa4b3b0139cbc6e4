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
	"sync"
	"time"

	"github.com/vantagemsp/vantage/pkg/logger"
)

// Metrics defines the interface for collecting worker metrics
type Metrics interface {
	// Job execution metrics
	RecordJobAttempt(job string)
	RecordJobSuccess(job string, alertCount int, duration time.Duration)
	RecordJobFailure(job string, err error, duration time.Duration)

	// Queue metrics
	RecordMessageDropped(integration, job string, deliveries int)

	// Circuit breaker metrics
	RecordCircuitBreakerStateChange(name string, oldState, newState CircuitBreakerState)

	// Export metrics for monitoring systems
	GetMetrics() map[string]interface{}
}

// NoOpMetrics provides a no-op implementation of the Metrics interface
type NoOpMetrics struct{}

func (n *NoOpMetrics) RecordJobAttempt(job string)                                     {}
func (n *NoOpMetrics) RecordJobSuccess(job string, alertCount int, d time.Duration)    {}
func (n *NoOpMetrics) RecordJobFailure(job string, err error, d time.Duration)         {}
func (n *NoOpMetrics) RecordMessageDropped(integration, job string, deliveries int)    {}
func (n *NoOpMetrics) RecordCircuitBreakerStateChange(string, CircuitBreakerState, CircuitBreakerState) {
}
func (n *NoOpMetrics) GetMetrics() map[string]interface{} { return map[string]interface{}{} }

// InMemoryMetrics provides an in-memory implementation of the Metrics interface
type InMemoryMetrics struct {
	mu     sync.RWMutex
	logger logger.Logger

	jobAttempts  map[string]int
	jobSuccesses map[string]int
	jobFailures  map[string]int
	jobDurations map[string]time.Duration
	jobAlerts    map[string]int

	droppedMessages map[string]int

	circuitBreakerStates map[string]string

	lastUpdated time.Time
}

// NewInMemoryMetrics creates a new in-memory metrics collector
func NewInMemoryMetrics(log logger.Logger) *InMemoryMetrics {
	return &InMemoryMetrics{
		logger:               log,
		jobAttempts:          make(map[string]int),
		jobSuccesses:         make(map[string]int),
		jobFailures:          make(map[string]int),
		jobDurations:         make(map[string]time.Duration),
		jobAlerts:            make(map[string]int),
		droppedMessages:      make(map[string]int),
		circuitBreakerStates: make(map[string]string),
		lastUpdated:          time.Now(),
	}
}

func (m *InMemoryMetrics) RecordJobAttempt(job string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobAttempts[job]++
	m.lastUpdated = time.Now()
}

func (m *InMemoryMetrics) RecordJobSuccess(job string, alertCount int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobSuccesses[job]++
	m.jobDurations[job] = duration
	m.jobAlerts[job] = alertCount
	m.lastUpdated = time.Now()

	m.logger.Info().
		Str("job", job).
		Int("alert_count", alertCount).
		Dur("duration", duration).
		Msg("Job completed successfully")
}

func (m *InMemoryMetrics) RecordJobFailure(job string, err error, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobFailures[job]++
	m.jobDurations[job] = duration
	m.lastUpdated = time.Now()

	m.logger.Error().
		Str("job", job).
		Err(err).
		Dur("duration", duration).
		Msg("Job failed")
}

func (m *InMemoryMetrics) RecordMessageDropped(integration, job string, deliveries int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.droppedMessages[integration]++
	m.lastUpdated = time.Now()

	m.logger.Error().
		Str("integration", integration).
		Str("job", job).
		Int("deliveries", deliveries).
		Msg("Message dropped after exhausting redeliveries")
}

func (m *InMemoryMetrics) RecordCircuitBreakerStateChange(name string, oldState, newState CircuitBreakerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.circuitBreakerStates[name] = newState.String()
	m.lastUpdated = time.Now()

	m.logger.Info().
		Str("circuit_breaker", name).
		Str("old_state", oldState.String()).
		Str("new_state", newState.String()).
		Msg("Circuit breaker state changed")
}

func (m *InMemoryMetrics) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"jobs": map[string]interface{}{
			"attempts":  m.jobAttempts,
			"successes": m.jobSuccesses,
			"failures":  m.jobFailures,
			"durations": m.jobDurations,
			"alerts":    m.jobAlerts,
		},
		"queue": map[string]interface{}{
			"dropped": m.droppedMessages,
		},
		"circuit_breakers": m.circuitBreakerStates,
		"service": map[string]interface{}{
			"last_updated": m.lastUpdated,
		},
	}
}
