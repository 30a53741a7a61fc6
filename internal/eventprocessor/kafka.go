// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
)

// kafkaRecord is a fetched record and how often it has been handed out.
type kafkaRecord struct {
	record   *kgo.Record
	attempts int
}

// KafkaConsumer consumes one topic through a consumer group with manual
// offset commits. Records are handed out one at a time in partition order.
// A nacked record is handed out again before anything else until
// MaxRedeliveries is reached, after which it is logged and committed.
type KafkaConsumer struct {
	client          *kgo.Client
	maxRedeliveries int

	mu      sync.Mutex
	pending []kafkaRecord
	closed  bool
}

// NewKafkaConsumer creates a consumer group member for topic.
func NewKafkaConsumer(cfg KafkaConfig, topic string) (*KafkaConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: kafka brokers required", ErrInvalidConfig)
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
	}
	if cfg.StartAtEnd {
		opts = append(opts, kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	return newKafkaConsumer(client, cfg.MaxRedeliveries), nil
}

func newKafkaConsumer(client *kgo.Client, maxRedeliveries int) *KafkaConsumer {
	if maxRedeliveries < 1 {
		maxRedeliveries = DefaultKafkaConfig().MaxRedeliveries
	}
	return &KafkaConsumer{
		client:          client,
		maxRedeliveries: maxRedeliveries,
	}
}

// Receive returns the next record, polling the brokers when nothing is buffered.
func (c *KafkaConsumer) Receive(ctx context.Context) (*Delivery, error) {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, ErrClosed
		}
		if len(c.pending) > 0 {
			next := c.pending[0]
			c.pending = c.pending[1:]
			c.mu.Unlock()
			return c.delivery(next), nil
		}
		c.mu.Unlock()

		if err := c.poll(ctx); err != nil {
			return nil, err
		}
	}
}

func (c *KafkaConsumer) poll(ctx context.Context) error {
	fetches := c.client.PollFetches(ctx)
	if fetches.IsClientClosed() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fetches.EachError(func(topic string, partition int32, err error) {
		logging.Warn().Err(err).Str("topic", topic).Int32("partition", partition).Msg("Kafka fetch error")
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	fetches.EachRecord(func(r *kgo.Record) {
		c.pending = append(c.pending, kafkaRecord{record: r})
	})
	return nil
}

func (c *KafkaConsumer) delivery(kr kafkaRecord) *Delivery {
	kr.attempts++
	metrics.RecordMessageConsumed(TransportKafka)

	commit := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.client.CommitRecords(ctx, kr.record); err != nil {
			return fmt.Errorf("commit offset %d on %s/%d: %w", kr.record.Offset, kr.record.Topic, kr.record.Partition, err)
		}
		return nil
	}

	nack := func() error {
		if kr.attempts >= c.maxRedeliveries {
			logging.Error().
				Str("topic", kr.record.Topic).
				Int32("partition", kr.record.Partition).
				Int64("offset", kr.record.Offset).
				Int("attempts", kr.attempts).
				Bytes("payload", kr.record.Value).
				Msg("Redelivery limit reached, skipping record")
			return commit()
		}
		metrics.RecordMessageRedelivered(TransportKafka)
		c.mu.Lock()
		c.pending = append([]kafkaRecord{kr}, c.pending...)
		c.mu.Unlock()
		return nil
	}

	return NewDelivery(kr.record.Value, string(kr.record.Key), commit, nack)
}

// Close leaves the group and closes the client.
func (c *KafkaConsumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.pending = nil
	c.mu.Unlock()

	c.client.Close()
	return nil
}

// KafkaProducer writes records synchronously.
type KafkaProducer struct {
	client         *kgo.Client
	circuitBreaker *gobreaker.CircuitBreaker[struct{}]
}

// NewKafkaProducer creates a producer client. cb may be nil.
func NewKafkaProducer(cfg KafkaConfig, cb *gobreaker.CircuitBreaker[struct{}]) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: kafka brokers required", ErrInvalidConfig)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &KafkaProducer{client: client, circuitBreaker: cb}, nil
}

// Produce writes one record keyed by key and waits for the broker ack.
func (p *KafkaProducer) Produce(ctx context.Context, topic, key string, payload []byte) error {
	record := &kgo.Record{
		Topic:     topic,
		Key:       []byte(key),
		Value:     payload,
		Timestamp: time.Now(),
	}

	produce := func() error {
		if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			if errors.Is(err, kgo.ErrClientClosed) {
				return ErrClosed
			}
			return fmt.Errorf("produce to %s: %w", topic, err)
		}
		return nil
	}

	if p.circuitBreaker == nil {
		return produce()
	}
	_, err := p.circuitBreaker.Execute(func() (struct{}, error) {
		return struct{}{}, produce()
	})
	return err
}

// Ping checks that at least one broker is reachable.
func (p *KafkaProducer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes and closes the client.
func (p *KafkaProducer) Close() error {
	p.client.Close()
	return nil
}
