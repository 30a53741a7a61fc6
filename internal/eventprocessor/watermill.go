// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sentinel/internal/metrics"
)

// KeyMetadata carries the partition key of a message.
const KeyMetadata = "key"

// WatermillConsumer adapts a Watermill subscriber to Consumer. It subscribes
// when created so no message published afterwards is missed.
type WatermillConsumer struct {
	subscriber message.Subscriber
	transport  string
	messages   <-chan *message.Message
	cancel     context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewWatermillConsumer subscribes to topic. transport labels metrics.
func NewWatermillConsumer(sub message.Subscriber, topic, transport string) (*WatermillConsumer, error) {
	ctx, cancel := context.WithCancel(context.Background())
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	return &WatermillConsumer{
		subscriber: sub,
		transport:  transport,
		messages:   messages,
		cancel:     cancel,
	}, nil
}

// Receive returns the next message. The message must be acked or nacked
// before the next one is delivered.
func (c *WatermillConsumer) Receive(ctx context.Context) (*Delivery, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-c.messages:
		if !ok {
			return nil, ErrClosed
		}
		metrics.RecordMessageConsumed(c.transport)
		return NewDelivery(
			msg.Payload,
			msg.Metadata.Get(KeyMetadata),
			func() error {
				msg.Ack()
				return nil
			},
			func() error {
				metrics.RecordMessageRedelivered(c.transport)
				msg.Nack()
				return nil
			},
		), nil
	}
}

// Close stops the subscription and closes the subscriber.
func (c *WatermillConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()
	return c.subscriber.Close()
}

// WatermillProducer adapts a Watermill publisher to Producer.
type WatermillProducer struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[struct{}]

	mu     sync.RWMutex
	closed bool
}

// NewWatermillProducer wraps pub. cb may be nil.
func NewWatermillProducer(pub message.Publisher, cb *gobreaker.CircuitBreaker[struct{}]) *WatermillProducer {
	return &WatermillProducer{
		publisher:      pub,
		circuitBreaker: cb,
	}
}

// Produce publishes payload to topic. Each message gets a fresh UUID that is
// also used as the Nats-Msg-Id for JetStream deduplication.
func (p *WatermillProducer) Produce(ctx context.Context, topic, key string, payload []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(KeyMetadata, key)
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)

	if p.circuitBreaker == nil {
		return p.publisher.Publish(topic, msg)
	}
	_, err := p.circuitBreaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(topic, msg)
	})
	return err
}

// Close closes the underlying publisher.
func (p *WatermillProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
