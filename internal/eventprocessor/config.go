// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"time"

	"github.com/tomtom215/sentinel/internal/breaker"
)

// Transport kinds.
const (
	TransportKafka  = "kafka"
	TransportNATS   = "nats"
	TransportMemory = "memory"
)

// Default topic names shared with the ingest service.
const (
	DefaultInputTopic  = "transaction-stream"
	DefaultAlertsTopic = "fraud-alerts"
)

// TransportConfig selects a transport and carries the settings of each kind.
type TransportConfig struct {
	Kind        string
	InputTopic  string
	AlertsTopic string

	Kafka KafkaConfig
	NATS  NATSConfig

	// Breaker guards the producer when non-nil.
	Breaker *breaker.Config
}

// KafkaConfig holds franz-go client settings.
type KafkaConfig struct {
	Brokers         []string
	Group           string
	ClientID        string
	MaxRedeliveries int
	// StartAtEnd consumes only records produced after the group first joins.
	StartAtEnd bool
}

// DefaultKafkaConfig returns production defaults for Kafka.
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:         []string{"localhost:9092"},
		Group:           "sentinel-detector",
		ClientID:        "sentinel",
		MaxRedeliveries: 5,
		StartAtEnd:      true,
	}
}

// NATSConfig holds NATS JetStream settings.
type NATSConfig struct {
	URL      string
	Embedded bool
	Server   ServerConfig
	Stream   StreamConfig

	DurableName   string
	QueueGroup    string
	MaxDeliver    int
	AckWait       time.Duration
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns production defaults for NATS.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://127.0.0.1:4222",
		Embedded:      false,
		Server:        DefaultServerConfig(),
		Stream:        DefaultStreamConfig(DefaultInputTopic, DefaultAlertsTopic),
		DurableName:   "sentinel-detector",
		QueueGroup:    "sentinel",
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		MaxReconnects: -1, // Unlimited
		ReconnectWait: 2 * time.Second,
	}
}

// ServerConfig holds embedded NATS server configuration.
type ServerConfig struct {
	Host              string
	Port              int
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
}

// DefaultServerConfig returns production defaults for the embedded server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "127.0.0.1",
		Port:              4222,
		StoreDir:          "/data/nats",
		JetStreamMaxMem:   256 << 20, // 256MB
		JetStreamMaxStore: 4 << 30,   // 4GB
	}
}

// PublisherConfig holds publisher configuration.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool // nolint:revive // ID is correct per Go conventions
}

// DefaultPublisherConfig returns production defaults for publisher.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:              url,
		MaxReconnects:    -1, // Unlimited
		ReconnectWait:    2 * time.Second,
		ReconnectBuffer:  8 * 1024 * 1024, // 8MB
		EnableTrackMsgID: true,
	}
}

// SubscriberConfig holds subscriber configuration.
type SubscriberConfig struct {
	URL            string
	DurableName    string
	QueueGroup     string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	CloseTimeout   time.Duration
	MaxReconnects  int
	ReconnectWait  time.Duration
	// StreamName binds the subscriber to an existing stream.
	StreamName string
}

// DefaultSubscriberConfig returns production defaults for subscriber.
func DefaultSubscriberConfig(url string) SubscriberConfig {
	return SubscriberConfig{
		URL:            url,
		DurableName:    "sentinel-detector",
		QueueGroup:     "sentinel",
		AckWaitTimeout: 30 * time.Second,
		MaxDeliver:     5,
		CloseTimeout:   30 * time.Second,
		MaxReconnects:  -1,
		ReconnectWait:  2 * time.Second,
	}
}

// StreamConfig defines the JetStream stream holding both topics.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	MaxMsgs         int64
	DuplicateWindow time.Duration
	Replicas        int
}

// DefaultStreamConfig returns the stream configuration for the given subjects.
func DefaultStreamConfig(subjects ...string) StreamConfig {
	return StreamConfig{
		Name:            "SENTINEL",
		Subjects:        subjects,
		MaxAge:          24 * time.Hour,
		MaxBytes:        1 << 30, // 1GB
		MaxMsgs:         -1,      // Unlimited
		DuplicateWindow: 2 * time.Minute,
		Replicas:        1,
	}
}
