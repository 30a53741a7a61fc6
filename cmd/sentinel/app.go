// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/sentinel/internal/api"
	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/eventprocessor"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/scoring"
	"github.com/tomtom215/sentinel/internal/statestore"
	"github.com/tomtom215/sentinel/internal/supervisor"
	"github.com/tomtom215/sentinel/internal/supervisor/services"
)

// startupPingTimeout bounds the state store check at startup.
const startupPingTimeout = 5 * time.Second

// app holds every long-lived component of the detector process.
type app struct {
	cfg       *config.Config
	store     statestore.Store
	transport *eventprocessor.Transport
	engine    *detection.Engine
	pipeline  *eventprocessor.Pipeline
	server    *http.Server
	tree      *supervisor.SupervisorTree
}

// newApp builds the components in dependency order. Whatever was opened
// before a failure is closed again.
func newApp(ctx context.Context, cfg *config.Config) (a *app, err error) {
	a = &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.close(context.WithoutCancel(ctx))
			a = nil
		}
	}()

	a.store, err = statestore.New(storeConfig(cfg))
	if err != nil {
		return a, fmt.Errorf("open state store: %w", err)
	}
	if err = statestore.PingWithTimeout(ctx, a.store, startupPingTimeout); err != nil {
		return a, fmt.Errorf("state store unreachable: %w", err)
	}

	scorer, err := scoring.New(scorerConfig(cfg))
	if err != nil {
		return a, fmt.Errorf("load scorer: %w", err)
	}

	a.transport, err = eventprocessor.OpenTransport(ctx, transportConfig(cfg))
	if err != nil {
		return a, fmt.Errorf("open transport: %w", err)
	}

	policy, err := detection.ParseStoreFailurePolicy(cfg.StateStore.FailurePolicy)
	if err != nil {
		return a, err
	}
	anomaly := detection.NewAnomalyRule(scorer, cfg.Scorer.Threshold)
	a.engine = detection.NewEngine(
		detection.NewVelocityRule(a.store, velocityConfig(cfg)),
		anomaly,
		policy,
	)
	logging.Info().
		Str("scorer", cfg.Scorer.Kind).
		Float64("threshold", anomaly.Threshold()).
		Str("failure_policy", string(policy)).
		Msg("Detection engine ready")

	sink := eventprocessor.NewRetrySink(
		eventprocessor.NewTopicSink(a.transport.Producer, cfg.Transport.Topics.Alerts),
		retryConfig(cfg),
	)
	a.pipeline = eventprocessor.NewPipeline(
		a.transport.Consumer,
		a.engine,
		detection.NewPublisher(sink),
		pipelineConfig(cfg),
	)

	if cfg.API.Enabled {
		handler, herr := api.NewHandler(a.transport.Producer, cfg.Transport.Topics.Input)
		if herr != nil {
			return a, herr
		}
		handler.WithPublishTimeout(cfg.API.PublishTimeout)

		router := api.NewRouter(handler, middlewareConfig(cfg))
		a.server = &http.Server{
			Addr:              cfg.API.Addr,
			Handler:           router.SetupChi(),
			ReadTimeout:       cfg.API.ReadTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      cfg.API.WriteTimeout,
			IdleTimeout:       cfg.API.IdleTimeout,
		}
	}

	a.tree = a.buildTree()
	return a, nil
}

// buildTree places each service in its supervisor layer.
func (a *app) buildTree() *supervisor.SupervisorTree {
	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeConfig(a.cfg))

	if gc, ok := a.store.(*statestore.BadgerStore); ok {
		tree.AddStateService(gc)
	}
	if a.transport.Server != nil {
		tree.AddMessagingService(services.NewNATSServerService(a.transport.Server, 0, a.cfg.Supervisor.ShutdownTimeout))
	}
	tree.AddMessagingService(services.NewPipelineService(a.pipeline, eventprocessor.ErrClosed))
	if a.server != nil {
		tree.AddAPIService(services.NewHTTPService(a.server, a.cfg.Supervisor.ShutdownTimeout))
	}
	return tree
}

// run serves the tree until ctx ends or a service terminates it.
func (a *app) run(ctx context.Context) error {
	logging.Info().
		Str("transport", a.transport.Kind).
		Str("state_backend", a.cfg.StateStore.Backend).
		Str("failure_policy", string(a.engine.Policy())).
		Str("log_level", logging.GetLevel().String()).
		Bool("api", a.server != nil).
		Msg("Sentinel detector online")

	err := <-a.tree.ServeBackground(ctx)
	if n := a.tree.LogUnstopped(); n > 0 {
		logging.Warn().Int("count", n).Msg("Services failed to stop within timeout")
	}

	stats := a.engine.Stats()
	logging.Info().
		Int64("processed", a.pipeline.Processed()).
		Int64("decisions", stats.Decisions).
		Int64("velocity_flags", stats.VelocityFlags).
		Int64("anomaly_flags", stats.AnomalyFlags).
		Msg("Sentinel detector stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// close releases the transport and the store.
func (a *app) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Supervisor.ShutdownTimeout)
	defer cancel()

	if a.transport != nil {
		if err := a.transport.Close(ctx); err != nil {
			logging.Warn().Err(err).Msg("Error closing transport")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing state store")
		}
	}
}
