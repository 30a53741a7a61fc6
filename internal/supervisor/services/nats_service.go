// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/sentinel/internal/logging"
)

// DefaultHealthInterval is how often the embedded server is checked.
const DefaultHealthInterval = 5 * time.Second

// ErrBrokerStopped is returned when the embedded server exits on its own.
var ErrBrokerStopped = errors.New("embedded NATS server stopped")

// EmbeddedBroker is satisfied by *eventprocessor.EmbeddedServer.
type EmbeddedBroker interface {
	IsRunning() bool
	Shutdown(ctx context.Context) error
}

// NATSServerService owns an already started embedded NATS server.
//
// The server cannot be restarted in place, since clients hold its URL and
// JetStream state, so an unexpected exit terminates the supervisor tree.
type NATSServerService struct {
	broker          EmbeddedBroker
	interval        time.Duration
	shutdownTimeout time.Duration
}

// NewNATSServerService wraps broker. Non-positive durations take defaults.
func NewNATSServerService(broker EmbeddedBroker, interval, shutdownTimeout time.Duration) *NATSServerService {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &NATSServerService{
		broker:          broker,
		interval:        interval,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve watches the server until ctx ends, then shuts it down.
func (s *NATSServerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
			defer cancel()
			if err := s.broker.Shutdown(shutdownCtx); err != nil {
				logging.Warn().Err(err).Msg("Embedded NATS server shutdown incomplete")
			}
			return ctx.Err()
		case <-ticker.C:
			if !s.broker.IsRunning() {
				logging.Error().Msg("Embedded NATS server is no longer running")
				return fmt.Errorf("%w: %w", suture.ErrTerminateSupervisorTree, ErrBrokerStopped)
			}
		}
	}
}

// String implements fmt.Stringer.
func (s *NATSServerService) String() string {
	return "nats-server"
}
