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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagemsp/vantage/pkg/logger"
)

var errPersist = errors.New("persist failed")

func newTestBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return NewCircuitBreaker("test", config, &NoOpMetrics{}, logger.NewTestLogger())
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := newTestBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          time.Minute,
		ResetTimeout:     time.Minute,
	})

	ctx := context.Background()
	fail := func() error { return errPersist }

	for i := 0; i < 3; i++ {
		assert.Equal(t, StateClosed, cb.GetState())
		err := cb.Execute(ctx, fail)
		require.ErrorIs(t, err, errPersist)
	}

	assert.Equal(t, StateOpen, cb.GetState())

	// Open circuit rejects without invoking the function.
	called := false

	err := cb.Execute(ctx, func() error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is open")
	assert.False(t, called)
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := newTestBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          time.Millisecond,
		ResetTimeout:     time.Minute,
	})

	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, func() error { return errPersist }))
	assert.Equal(t, StateOpen, cb.GetState())

	time.Sleep(5 * time.Millisecond)

	// First success after the timeout moves through half-open.
	require.NoError(t, cb.Execute(ctx, func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.GetState())

	require.NoError(t, cb.Execute(ctx, func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := newTestBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          time.Millisecond,
		ResetTimeout:     time.Minute,
	})

	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, func() error { return errPersist }))
	time.Sleep(5 * time.Millisecond)

	require.Error(t, cb.Execute(ctx, func() error { return errPersist }))
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreakerStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", CircuitBreakerState(99).String())
}
