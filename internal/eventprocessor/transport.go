// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"context"
	"errors"
	"fmt"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sentinel/internal/breaker"
	"github.com/tomtom215/sentinel/internal/logging"
)

// Transport bundles the consumer and producer of the configured kind.
type Transport struct {
	Kind     string
	Consumer Consumer
	Producer Producer

	// Server is the embedded NATS server, when one was started.
	Server *EmbeddedServer
	// Bus is the in-process bus of the memory transport.
	Bus *MemoryBus
}

// OpenTransport builds the transport described by cfg. For NATS it starts
// the embedded server when configured and ensures the stream exists; for
// Kafka it checks that a broker is reachable.
func OpenTransport(ctx context.Context, cfg TransportConfig) (*Transport, error) {
	if cfg.InputTopic == "" || cfg.AlertsTopic == "" {
		return nil, fmt.Errorf("%w: input and alerts topics required", ErrInvalidConfig)
	}

	var cb *gobreaker.CircuitBreaker[struct{}]
	if cfg.Breaker != nil {
		cb = breaker.New[struct{}](*cfg.Breaker)
	}

	switch cfg.Kind {
	case TransportMemory:
		return openMemory(cfg)
	case TransportNATS:
		return openNATS(ctx, cfg, cb)
	case TransportKafka:
		return openKafka(ctx, cfg, cb)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Kind)
	}
}

func openMemory(cfg TransportConfig) (*Transport, error) {
	bus := NewMemoryBus(cfg.InputTopic, cfg.AlertsTopic, nil)
	consumer, err := bus.Consumer()
	if err != nil {
		_ = bus.Close()
		return nil, err
	}

	logging.Info().Str("input", cfg.InputTopic).Str("alerts", cfg.AlertsTopic).Msg("In-memory transport ready")
	return &Transport{
		Kind:     TransportMemory,
		Consumer: consumer,
		Producer: bus.Producer(),
		Bus:      bus,
	}, nil
}

func openNATS(ctx context.Context, cfg TransportConfig, cb *gobreaker.CircuitBreaker[struct{}]) (*Transport, error) {
	t := &Transport{Kind: TransportNATS}
	url := cfg.NATS.URL

	if cfg.NATS.Embedded {
		srv, err := NewEmbeddedServer(&cfg.NATS.Server)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		t.Server = srv
		url = srv.ClientURL()
		logging.Info().Str("url", url).Str("store_dir", cfg.NATS.Server.StoreDir).Msg("Embedded NATS server started")
	}

	streamCfg := cfg.NATS.Stream
	if len(streamCfg.Subjects) == 0 {
		streamCfg.Subjects = []string{cfg.InputTopic, cfg.AlertsTopic}
	}
	if err := ensureStream(ctx, url, &streamCfg); err != nil {
		return nil, t.closeOnError(err)
	}

	pubCfg := DefaultPublisherConfig(url)
	pubCfg.MaxReconnects = cfg.NATS.MaxReconnects
	pubCfg.ReconnectWait = cfg.NATS.ReconnectWait
	pub, err := NewNATSPublisher(pubCfg, logging.NewWatermillAdapter())
	if err != nil {
		return nil, t.closeOnError(err)
	}
	t.Producer = NewWatermillProducer(pub, cb)

	subCfg := DefaultSubscriberConfig(url)
	subCfg.DurableName = cfg.NATS.DurableName
	subCfg.QueueGroup = cfg.NATS.QueueGroup
	subCfg.MaxDeliver = cfg.NATS.MaxDeliver
	subCfg.AckWaitTimeout = cfg.NATS.AckWait
	subCfg.MaxReconnects = cfg.NATS.MaxReconnects
	subCfg.ReconnectWait = cfg.NATS.ReconnectWait
	subCfg.StreamName = streamCfg.Name
	sub, err := NewNATSSubscriber(subCfg, logging.NewWatermillAdapter())
	if err != nil {
		return nil, t.closeOnError(err)
	}
	consumer, err := NewWatermillConsumer(sub, cfg.InputTopic, TransportNATS)
	if err != nil {
		_ = sub.Close()
		return nil, t.closeOnError(err)
	}
	t.Consumer = consumer

	logging.Info().
		Str("url", url).
		Str("stream", streamCfg.Name).
		Str("durable", subCfg.DurableName).
		Msg("NATS transport ready")
	return t, nil
}

// ensureStream connects once to create or update the stream.
func ensureStream(ctx context.Context, url string, cfg *StreamConfig) error {
	nc, err := natsgo.Connect(url, natsgo.Name("sentinel-stream-init"))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	initializer, err := NewStreamInitializer(js, cfg)
	if err != nil {
		return err
	}
	if _, err := initializer.EnsureStream(ctx); err != nil {
		return err
	}
	return nil
}

func openKafka(ctx context.Context, cfg TransportConfig, cb *gobreaker.CircuitBreaker[struct{}]) (*Transport, error) {
	producer, err := NewKafkaProducer(cfg.Kafka, cb)
	if err != nil {
		return nil, err
	}
	if err := producer.Ping(ctx); err != nil {
		_ = producer.Close()
		return nil, fmt.Errorf("kafka brokers unreachable: %w", err)
	}

	consumer, err := NewKafkaConsumer(cfg.Kafka, cfg.InputTopic)
	if err != nil {
		_ = producer.Close()
		return nil, err
	}

	logging.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("group", cfg.Kafka.Group).
		Str("input", cfg.InputTopic).
		Msg("Kafka transport ready")
	return &Transport{
		Kind:     TransportKafka,
		Consumer: consumer,
		Producer: producer,
	}, nil
}

func (t *Transport) closeOnError(err error) error {
	if closeErr := t.Close(context.Background()); closeErr != nil {
		logging.Warn().Err(closeErr).Msg("Error closing partially opened transport")
	}
	return err
}

// Close closes the consumer, the producer and the embedded server.
func (t *Transport) Close(ctx context.Context) error {
	var errs []error
	if t.Consumer != nil {
		errs = append(errs, t.Consumer.Close())
	}
	if t.Producer != nil {
		errs = append(errs, t.Producer.Close())
	}
	if t.Server != nil && t.Server.IsRunning() {
		errs = append(errs, t.Server.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
