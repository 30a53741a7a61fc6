// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Logging        LoggingConfig        `koanf:"logging"`
	Transport      TransportConfig      `koanf:"transport"`
	Kafka          KafkaConfig          `koanf:"kafka"`
	NATS           NATSConfig           `koanf:"nats"`
	StateStore     StateStoreConfig     `koanf:"statestore"`
	Redis          RedisConfig          `koanf:"redis"`
	Badger         BadgerConfig         `koanf:"badger"`
	Scorer         ScorerConfig         `koanf:"scorer"`
	Publish        PublishConfig        `koanf:"publish"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	API            APIConfig            `koanf:"api"`
	Supervisor     SupervisorConfig     `koanf:"supervisor"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// TransportConfig selects the event transport.
type TransportConfig struct {
	Kind   string       `koanf:"kind" validate:"oneof=kafka nats memory"`
	Topics TopicsConfig `koanf:"topics"`
}

// TopicsConfig names the input and alert channels.
type TopicsConfig struct {
	Input  string `koanf:"input" validate:"required"`
	Alerts string `koanf:"alerts" validate:"required"`
}

// KafkaConfig holds Kafka client settings.
type KafkaConfig struct {
	Brokers         []string `koanf:"brokers"`
	Group           string   `koanf:"group"`
	ClientID        string   `koanf:"client_id"`
	MaxRedeliveries int      `koanf:"max_redeliveries" validate:"gte=1"`
	StartAtEnd      bool     `koanf:"start_at_end"`
}

// NATSConfig holds NATS JetStream settings.
type NATSConfig struct {
	URL        string        `koanf:"url"`
	Embedded   bool          `koanf:"embedded"`
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port" validate:"gte=-1,lte=65535"`
	StoreDir   string        `koanf:"store_dir"`
	StreamName string        `koanf:"stream_name" validate:"required"`
	Durable    string        `koanf:"durable" validate:"required"`
	QueueGroup string        `koanf:"queue_group"`
	MaxDeliver int           `koanf:"max_deliver" validate:"gte=1"`
	AckWait    time.Duration `koanf:"ack_wait" validate:"gt=0"`
}

// StateStoreConfig configures the location store and the velocity rule.
type StateStoreConfig struct {
	Backend        string        `koanf:"backend" validate:"oneof=redis badger memory"`
	TTL            time.Duration `koanf:"ttl" validate:"gt=0"`
	Timeout        time.Duration `koanf:"timeout" validate:"gte=0"`
	FailurePolicy  string        `koanf:"failure_policy" validate:"oneof=anomaly reprocess block"`
	MemoryCapacity int           `koanf:"memory_capacity" validate:"gte=1"`
}

// RedisConfig holds Redis connection settings. Addr wins over Host and Port.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"gte=1,lte=65535"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
	PoolSize int    `koanf:"pool_size" validate:"gte=1"`
}

// Address returns the host:port to dial.
func (c RedisConfig) Address() string {
	if c.Addr != "" {
		return c.Addr
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// BadgerConfig holds embedded store settings.
type BadgerConfig struct {
	Dir        string        `koanf:"dir"`
	InMemory   bool          `koanf:"in_memory"`
	GCInterval time.Duration `koanf:"gc_interval" validate:"gt=0"`
}

// ScorerConfig selects and tunes the anomaly scorer.
type ScorerConfig struct {
	Kind      string        `koanf:"kind" validate:"oneof=forest remote"`
	ModelPath string        `koanf:"model_path"`
	RemoteURL string        `koanf:"remote_url"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	Threshold float64       `koanf:"threshold"`
}

// PublishConfig bounds alert delivery retries.
type PublishConfig struct {
	MaxAttempts     int           `koanf:"max_attempts" validate:"gte=1"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"gt=0"`
	MaxInterval     time.Duration `koanf:"max_interval" validate:"gt=0"`
	MaxElapsed      time.Duration `koanf:"max_elapsed" validate:"gte=0"`
	Timeout         time.Duration `koanf:"timeout" validate:"gte=0"`
	RequeueDelay    time.Duration `koanf:"requeue_delay" validate:"gte=0"`
}

// CircuitBreakerConfig configures the breakers around the alert producer
// and the remote scorer.
type CircuitBreakerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	MaxRequests      uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval         time.Duration `koanf:"interval" validate:"gte=0"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gte=1"`
}

// APIConfig configures the HTTP ingest API.
type APIConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Addr              string        `koanf:"addr"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	PublishTimeout    time.Duration `koanf:"publish_timeout" validate:"gt=0"`
}

// SupervisorConfig tunes the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gt=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gt=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gt=0"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}
