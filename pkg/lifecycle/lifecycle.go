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

// Package lifecycle runs a set of services until shutdown is requested.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vantagemsp/vantage/pkg/logger"
)

const defaultShutdownTimeout = 30 * time.Second

// Service is one long-running component. Start must return promptly, leaving
// its work to background goroutines; Stop blocks until the component drains
// or the context expires.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Run starts every service in order and blocks until the context is canceled
// or SIGINT/SIGTERM arrives, then stops them in reverse order. Stop errors
// are collected rather than aborting the remaining shutdowns.
func Run(ctx context.Context, log logger.Logger, services ...Service) error {
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := make([]Service, 0, len(services))

	for _, svc := range services {
		if err := svc.Start(runCtx); err != nil {
			stopServices(log, started)
			return fmt.Errorf("failed to start service: %w", err)
		}

		started = append(started, svc)
	}

	log.Info().Int("services", len(started)).Msg("All services started")

	<-runCtx.Done()

	log.Info().Msg("Shutdown requested")

	return stopServices(log, started)
}

func stopServices(log logger.Logger, started []Service) error {
	stopCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	var errs []error

	for i := len(started) - 1; i >= 0; i-- {
		if err := started[i].Stop(stopCtx); err != nil {
			log.Error().Err(err).Msg("Service shutdown failed")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
