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
	"context"
	"flag"
	"log"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/vantagemsp/vantage/pkg/config"
	"github.com/vantagemsp/vantage/pkg/db"
	"github.com/vantagemsp/vantage/pkg/engine/jobs"
	"github.com/vantagemsp/vantage/pkg/lifecycle"
	"github.com/vantagemsp/vantage/pkg/logger"
	"github.com/vantagemsp/vantage/pkg/natsutil"
	"github.com/vantagemsp/vantage/pkg/registry"
	"github.com/vantagemsp/vantage/pkg/scheduler"
	"github.com/vantagemsp/vantage/pkg/version"
	"github.com/vantagemsp/vantage/pkg/worker"
)

func main() {
	configPath := flag.String("config", "/etc/vantage/engine.json", "Path to config file")
	flag.Parse()

	ctx := context.Background()
	cfgLoader := config.NewConfig()

	var cfg Config

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	mainLogger, err := logger.NewWithComponent(ctx, "engine", cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	mainLogger.Info().Str("version", version.GetFullVersion()).Msg("Starting Vantage engine")

	reg := registry.Default()

	jobLogger, err := logger.NewWithComponent(ctx, "jobs", cfg.Logging)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to create job logger")
	}

	catalog := jobs.All(jobLogger)
	if err := reg.ValidateJobs(catalog); err != nil {
		mainLogger.Fatal().Err(err).Msg("Job catalog failed validation")
	}

	dbLogger, err := logger.NewWithComponent(ctx, "db", cfg.Logging)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to create db logger")
	}

	store, err := db.New(ctx, &cfg.Database, dbLogger)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer store.Close()

	nc, err := natsutil.Connect(cfg.NATS.URL, cfg.Security)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to create JetStream context")
	}

	if _, err := natsutil.EnsureQueryStream(ctx, js); err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to ensure queue stream")
	}

	schedLogger, err := logger.NewWithComponent(ctx, "scheduler", cfg.Logging)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to create scheduler logger")
	}

	sched, err := scheduler.New(cfg.Scheduler, store, reg, catalog, natsutil.NewQueuePublisher(js), schedLogger)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to create scheduler")
	}

	workerLogger, err := logger.NewWithComponent(ctx, "worker", cfg.Logging)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to create worker logger")
	}

	metrics := worker.NewInMemoryMetrics(workerLogger)

	workers, err := worker.NewService(cfg.Worker, js, reg, jobs.Index(catalog), store, metrics, workerLogger)
	if err != nil {
		mainLogger.Fatal().Err(err).Msg("Failed to create worker service")
	}

	if err := lifecycle.Run(ctx, mainLogger, workers, sched); err != nil {
		mainLogger.Fatal().Err(err).Msg("Engine exited with error")
	}
}
