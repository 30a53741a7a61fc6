// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/tomtom215/sentinel/internal/validation"
)

// Validate checks field constraints and the rules that span fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateTransport(); err != nil {
		return err
	}

	if err := c.validateStateStore(); err != nil {
		return err
	}

	if err := c.validateScorer(); err != nil {
		return err
	}

	if err := c.validatePublish(); err != nil {
		return err
	}

	return c.validateAPI()
}

func (c *Config) validateTransport() error {
	if c.Transport.Topics.Input == c.Transport.Topics.Alerts {
		return fmt.Errorf("input and alerts topics must differ (both %q)", c.Transport.Topics.Input)
	}

	switch c.Transport.Kind {
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("KAFKA_BROKER is required when TRANSPORT=kafka")
		}
		if c.Kafka.Group == "" {
			return fmt.Errorf("kafka.group is required when TRANSPORT=kafka")
		}
	case "nats":
		if c.NATS.Embedded {
			if c.NATS.StoreDir == "" {
				return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
			}
		} else if c.NATS.URL == "" {
			return fmt.Errorf("NATS_URL is required when TRANSPORT=nats")
		}
	}
	return nil
}

func (c *Config) validateStateStore() error {
	switch c.StateStore.Backend {
	case "redis":
		if c.Redis.Addr == "" && c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST or REDIS_ADDR is required when STATE_BACKEND=redis")
		}
	case "badger":
		if !c.Badger.InMemory && c.Badger.Dir == "" {
			return fmt.Errorf("BADGER_DIR is required unless badger.in_memory is set")
		}
	}
	return nil
}

func (c *Config) validateScorer() error {
	switch c.Scorer.Kind {
	case "forest":
		if c.Scorer.ModelPath == "" {
			return fmt.Errorf("MODEL_PATH is required when SCORER=forest")
		}
	case "remote":
		if c.Scorer.RemoteURL == "" {
			return fmt.Errorf("SCORER_URL is required when SCORER=remote")
		}
		u, err := url.Parse(c.Scorer.RemoteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("SCORER_URL must be an http(s) URL, got %q", c.Scorer.RemoteURL)
		}
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.Enabled && c.API.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required when API_ENABLED=true")
	}
	return nil
}

func (c *Config) validatePublish() error {
	if c.Publish.MaxInterval < c.Publish.InitialInterval {
		return fmt.Errorf("publish.max_interval (%v) must not be below publish.initial_interval (%v)",
			c.Publish.MaxInterval, c.Publish.InitialInterval)
	}

	// An alert still retrying at shutdown must finish before the tree stops.
	budget := c.Publish.MaxElapsed + c.Publish.Timeout
	if c.Publish.MaxElapsed == 0 {
		budget = time.Duration(c.Publish.MaxAttempts) * (c.Publish.Timeout + c.Publish.MaxInterval)
	}
	if c.Supervisor.ShutdownTimeout <= budget {
		return fmt.Errorf("supervisor.shutdown_timeout (%v) must exceed the publish retry budget (%v)",
			c.Supervisor.ShutdownTimeout, budget)
	}
	return nil
}
