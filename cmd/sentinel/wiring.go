// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package main

import (
	"time"

	"github.com/tomtom215/sentinel/internal/api"
	"github.com/tomtom215/sentinel/internal/breaker"
	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/eventprocessor"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/scoring"
	"github.com/tomtom215/sentinel/internal/statestore"
	"github.com/tomtom215/sentinel/internal/supervisor"
)

// The functions below translate the loaded configuration into the option
// structs of each package. config stays free of imports from the rest of
// the module.

func loggingConfig(cfg *config.Config) logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Format = cfg.Logging.Format
	lc.Caller = cfg.Logging.Caller
	return lc
}

// breakerConfig returns nil when circuit breaking is disabled.
func breakerConfig(cfg *config.Config, name string) *breaker.Config {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}
	return &breaker.Config{
		Name:             name,
		MaxRequests:      cfg.CircuitBreaker.MaxRequests,
		Interval:         cfg.CircuitBreaker.Interval,
		Timeout:          cfg.CircuitBreaker.Timeout,
		FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
	}
}

func transportConfig(cfg *config.Config) eventprocessor.TransportConfig {
	tc := eventprocessor.TransportConfig{
		Kind:        cfg.Transport.Kind,
		InputTopic:  cfg.Transport.Topics.Input,
		AlertsTopic: cfg.Transport.Topics.Alerts,
		Kafka: eventprocessor.KafkaConfig{
			Brokers:         cfg.Kafka.Brokers,
			Group:           cfg.Kafka.Group,
			ClientID:        cfg.Kafka.ClientID,
			MaxRedeliveries: cfg.Kafka.MaxRedeliveries,
			StartAtEnd:      cfg.Kafka.StartAtEnd,
		},
		Breaker: breakerConfig(cfg, "alert-producer"),
	}

	nc := eventprocessor.DefaultNATSConfig()
	nc.URL = cfg.NATS.URL
	nc.Embedded = cfg.NATS.Embedded
	nc.Server.Host = cfg.NATS.Host
	nc.Server.Port = cfg.NATS.Port
	nc.Server.StoreDir = cfg.NATS.StoreDir
	// Subjects are filled from the topics when the stream is ensured.
	nc.Stream = eventprocessor.DefaultStreamConfig()
	nc.Stream.Name = cfg.NATS.StreamName
	nc.DurableName = cfg.NATS.Durable
	nc.QueueGroup = cfg.NATS.QueueGroup
	nc.MaxDeliver = cfg.NATS.MaxDeliver
	nc.AckWait = cfg.NATS.AckWait
	tc.NATS = nc

	return tc
}

func storeConfig(cfg *config.Config) statestore.Config {
	redis := statestore.DefaultRedisConfig()
	redis.Addr = cfg.Redis.Address()
	redis.Password = cfg.Redis.Password
	redis.DB = cfg.Redis.DB
	redis.PoolSize = cfg.Redis.PoolSize

	return statestore.Config{
		Backend: cfg.StateStore.Backend,
		Redis:   redis,
		Badger: statestore.BadgerConfig{
			Dir:        cfg.Badger.Dir,
			InMemory:   cfg.Badger.InMemory,
			GCInterval: cfg.Badger.GCInterval,
		},
		Memory: statestore.MemoryConfig{Capacity: cfg.StateStore.MemoryCapacity},
	}
}

func velocityConfig(cfg *config.Config) detection.VelocityConfig {
	return detection.VelocityConfig{
		TTL:     cfg.StateStore.TTL,
		Timeout: cfg.StateStore.Timeout,
	}
}

func scorerConfig(cfg *config.Config) scoring.Config {
	sc := scoring.Config{
		Kind:      cfg.Scorer.Kind,
		ModelPath: cfg.Scorer.ModelPath,
		RemoteURL: cfg.Scorer.RemoteURL,
		Timeout:   cfg.Scorer.Timeout,
	}
	if bc := breakerConfig(cfg, "remote-scorer"); bc != nil {
		sc.Breaker = *bc
	}
	return sc
}

func retryConfig(cfg *config.Config) eventprocessor.RetryConfig {
	return eventprocessor.RetryConfig{
		MaxAttempts:     cfg.Publish.MaxAttempts,
		InitialInterval: cfg.Publish.InitialInterval,
		MaxInterval:     cfg.Publish.MaxInterval,
		MaxElapsedTime:  cfg.Publish.MaxElapsed,
		AttemptTimeout:  cfg.Publish.Timeout,
	}
}

func pipelineConfig(cfg *config.Config) eventprocessor.PipelineConfig {
	return eventprocessor.PipelineConfig{RequeueDelay: cfg.Publish.RequeueDelay}
}

func middlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	mc := api.DefaultChiMiddlewareConfig()
	mc.CORSAllowedOrigins = cfg.API.CORSOrigins
	mc.RateLimitRequests = cfg.API.RateLimitRequests
	mc.RateLimitWindow = cfg.API.RateLimitWindow
	mc.RateLimitDisabled = cfg.API.RateLimitDisabled
	return mc
}

func treeConfig(cfg *config.Config) supervisor.TreeConfig {
	return supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	}
}

// readHeaderTimeout bounds slow-loris style header writes.
const readHeaderTimeout = 5 * time.Second
