// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"context"
	"sync"
)

// Delivery is one inbound message. Exactly one of Ack or Nack takes effect;
// later calls are no-ops.
type Delivery struct {
	Payload []byte
	Key     string

	once sync.Once
	ack  func() error
	nack func() error
}

// NewDelivery creates a delivery with the given settle functions. Nil
// functions are treated as no-ops.
func NewDelivery(payload []byte, key string, ack, nack func() error) *Delivery {
	return &Delivery{Payload: payload, Key: key, ack: ack, nack: nack}
}

// Ack marks the message as processed.
func (d *Delivery) Ack() error {
	return d.settle(d.ack)
}

// Nack hands the message back to the transport for redelivery.
func (d *Delivery) Nack() error {
	return d.settle(d.nack)
}

func (d *Delivery) settle(fn func() error) error {
	var err error
	d.once.Do(func() {
		if fn != nil {
			err = fn()
		}
	})
	return err
}

// Consumer yields inbound messages in arrival order.
type Consumer interface {
	// Receive blocks until a message is available or ctx is done.
	Receive(ctx context.Context) (*Delivery, error)
	Close() error
}

// Producer writes messages to a topic.
type Producer interface {
	Produce(ctx context.Context, topic, key string, payload []byte) error
	Close() error
}
