// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package main runs the Sentinel fraud detector.
//
// The detector consumes transaction events from the input topic, runs the
// velocity and anomaly rules against each one, and publishes an alert for
// every flagged transaction on the alerts topic. With API_ENABLED=true the
// same process also serves the ingest API that accepts transactions over
// HTTP and queues them on the input topic.
//
// # Startup
//
//  1. Load .env (optional) and the layered configuration (koanf)
//  2. Initialise logging
//  3. Open the state store and ping it; an unreachable store is fatal
//  4. Load the anomaly scorer
//  5. Open the transport (Kafka, NATS JetStream or in-memory)
//  6. Build the engine, the alert publisher and the pipeline
//  7. Build the ingest API
//  8. Run everything under the suture supervisor tree until SIGINT/SIGTERM
//
// # Examples
//
// Local development with everything in process:
//
//	TRANSPORT=memory STATE_BACKEND=memory ./sentinel
//
// Kafka and Redis, as deployed next to the original ingest service:
//
//	KAFKA_BROKER=kafka:9092 REDIS_HOST=redis ./sentinel
//
// Single binary with an embedded NATS broker and BadgerDB state:
//
//	TRANSPORT=nats NATS_EMBEDDED=true STATE_BACKEND=badger BADGER_DIR=/data/badger ./sentinel
package main

import (
	"context"
	"errors"
	"io/fs"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/logging"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(loggingConfig(cfg))

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logging.Warn().Err(envErr).Msg("Ignoring unreadable .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		logging.Fatal().Err(err).Msg("Sentinel detector failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	return a.run(ctx)
}
