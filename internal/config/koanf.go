// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sentinel/config.yaml",
	"/etc/sentinel/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Transport: TransportConfig{
			Kind: "kafka",
			Topics: TopicsConfig{
				Input:  "transaction-stream",
				Alerts: "fraud-alerts",
			},
		},
		Kafka: KafkaConfig{
			Brokers:         []string{"localhost:9092"},
			Group:           "sentinel-detector",
			ClientID:        "sentinel",
			MaxRedeliveries: 5,
			StartAtEnd:      true,
		},
		NATS: NATSConfig{
			URL:        "nats://127.0.0.1:4222",
			Embedded:   false,
			Host:       "127.0.0.1",
			Port:       4222,
			StoreDir:   "/data/nats",
			StreamName: "SENTINEL",
			Durable:    "sentinel-detector",
			QueueGroup: "sentinel",
			MaxDeliver: 5,
			AckWait:    30 * time.Second,
		},
		StateStore: StateStoreConfig{
			Backend:        "redis",
			TTL:            300 * time.Second,
			Timeout:        250 * time.Millisecond,
			FailurePolicy:  "anomaly",
			MemoryCapacity: 100_000,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			DB:       0,
			PoolSize: 10,
		},
		Badger: BadgerConfig{
			Dir:        "/data/badger",
			GCInterval: 10 * time.Minute,
		},
		Scorer: ScorerConfig{
			Kind:      "forest",
			ModelPath: "models/isolation_forest.json",
			Timeout:   500 * time.Millisecond,
			Threshold: -0.15,
		},
		Publish: PublishConfig{
			MaxAttempts:     5,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			MaxElapsed:      10 * time.Second,
			Timeout:         2 * time.Second,
			RequeueDelay:    time.Second,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
		API: APIConfig{
			Enabled:           true,
			Addr:              ":8080",
			RateLimitRequests: 1000,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{},
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
			PublishTimeout:    5 * time.Second,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  15 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using koanf with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"kafka.brokers",
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"transport":    "transport.kind",
	"topic_input":  "transport.topics.input",
	"topic_alerts": "transport.topics.alerts",

	"kafka_broker":           "kafka.brokers",
	"kafka_group":            "kafka.group",
	"kafka_client_id":        "kafka.client_id",
	"kafka_max_redeliveries": "kafka.max_redeliveries",

	"nats_url":         "nats.url",
	"nats_embedded":    "nats.embedded",
	"nats_store_dir":   "nats.store_dir",
	"nats_stream":      "nats.stream_name",
	"nats_durable":     "nats.durable",
	"nats_max_deliver": "nats.max_deliver",

	"state_backend":        "statestore.backend",
	"state_ttl":            "statestore.ttl",
	"state_timeout":        "statestore.timeout",
	"store_failure_policy": "statestore.failure_policy",

	"redis_addr":     "redis.addr",
	"redis_host":     "redis.host",
	"redis_port":     "redis.port",
	"redis_password": "redis.password",
	"redis_db":       "redis.db",

	"badger_dir":       "badger.dir",
	"badger_in_memory": "badger.in_memory",

	"scorer":            "scorer.kind",
	"model_path":        "scorer.model_path",
	"scorer_url":        "scorer.remote_url",
	"scorer_timeout":    "scorer.timeout",
	"anomaly_threshold": "scorer.threshold",

	"publish_max_attempts": "publish.max_attempts",
	"publish_max_elapsed":  "publish.max_elapsed",
	"publish_timeout":      "publish.timeout",

	"circuit_breaker_enabled": "circuit_breaker.enabled",

	"api_enabled":         "api.enabled",
	"http_addr":           "api.addr",
	"rate_limit_requests": "api.rate_limit_requests",
	"rate_limit_window":   "api.rate_limit_window",
	"rate_limit_disabled": "api.rate_limit_disabled",
	"cors_origins":        "api.cors_origins",

	"shutdown_timeout": "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - KAFKA_BROKER -> kafka.brokers
//   - REDIS_HOST -> redis.host
//   - STORE_FAILURE_POLICY -> statestore.failure_policy
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	return ""
}
