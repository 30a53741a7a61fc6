// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/statestore"
)

// recordingProducer captures produced messages and can fail a number of
// initial calls.
type recordingProducer struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
	messages []producedMessage
	closed   bool
}

type producedMessage struct {
	topic   string
	key     string
	payload []byte
}

func (p *recordingProducer) Produce(_ context.Context, topic, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.closed {
		return ErrClosed
	}
	if p.failures != 0 {
		if p.failures > 0 {
			p.failures--
		}
		if p.err != nil {
			return p.err
		}
		return errors.New("broker unavailable")
	}
	p.messages = append(p.messages, producedMessage{topic: topic, key: key, payload: payload})
	return nil
}

func (p *recordingProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *recordingProducer) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *recordingProducer) Messages() []producedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]producedMessage(nil), p.messages...)
}

// sliceConsumer hands out a fixed list of payloads and records how each
// delivery was settled. Nacked deliveries are handed out again.
type sliceConsumer struct {
	mu       sync.Mutex
	queue    [][]byte
	settled  []string
	closed   bool
	released chan struct{}
}

func newSliceConsumer(payloads ...string) *sliceConsumer {
	c := &sliceConsumer{released: make(chan struct{})}
	for _, p := range payloads {
		c.queue = append(c.queue, []byte(p))
	}
	return c
}

func (c *sliceConsumer) Receive(ctx context.Context) (*Delivery, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if len(c.queue) == 0 {
		c.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	payload := c.queue[0]
	c.queue = c.queue[1:]
	c.mu.Unlock()

	return NewDelivery(payload, "",
		func() error { c.settle("ack", nil); return nil },
		func() error { c.settle("nack", payload); return nil },
	), nil
}

func (c *sliceConsumer) settle(kind string, requeue []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settled = append(c.settled, kind)
	if requeue != nil {
		c.queue = append([][]byte{requeue}, c.queue...)
	}
}

func (c *sliceConsumer) Settled() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.settled...)
}

func (c *sliceConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// amountScorer returns the anomaly score for a transaction amount.
func amountScorer(scores map[float64]float64, fallback float64) detection.Scorer {
	return detection.ScorerFunc(func(_ context.Context, features []float64) (float64, error) {
		if s, ok := scores[features[0]*detection.AmountScale]; ok {
			return s, nil
		}
		return fallback, nil
	})
}

// failingStore fails every call.
type failingStore struct{}

func (failingStore) GetLocation(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (failingStore) SetLocation(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}

var fixedNow = time.Unix(1767225600, 0)

type engineParts struct {
	store     detection.LocationStore
	scorer    detection.Scorer
	policy    detection.StoreFailurePolicy
	sink      detection.AlertSink
	consumer  Consumer
	pipeline  PipelineConfig
	threshold float64
}

func newTestPipeline(p engineParts) *Pipeline {
	if p.store == nil {
		p.store = statestore.NewMemoryStore(statestore.DefaultMemoryConfig())
	}
	if p.scorer == nil {
		p.scorer = amountScorer(nil, 0.05)
	}
	if p.threshold == 0 {
		p.threshold = detection.DefaultAnomalyThreshold
	}
	engine := detection.NewEngine(
		detection.NewVelocityRule(p.store, detection.DefaultVelocityConfig()),
		detection.NewAnomalyRule(p.scorer, p.threshold),
		p.policy,
	)
	publisher := detection.NewPublisher(p.sink).WithClock(func() time.Time { return fixedNow })
	return NewPipeline(p.consumer, engine, publisher, p.pipeline)
}
