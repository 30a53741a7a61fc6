// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/sentinel/internal/logging"
)

// MemoryBus is the in-process transport. The input channel blocks each
// publish until the pipeline acks it, which keeps arrival order. The alerts
// channel does not block, so the pipeline never waits on alert readers.
type MemoryBus struct {
	Input       *gochannel.GoChannel
	Alerts      *gochannel.GoChannel
	inputTopic  string
	alertsTopic string
}

// NewMemoryBus creates the gochannel pair for the given topics.
func NewMemoryBus(inputTopic, alertsTopic string, logger watermill.LoggerAdapter) *MemoryBus {
	if logger == nil {
		logger = logging.NewWatermillAdapter()
	}
	return &MemoryBus{
		Input: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: true,
		}, logger),
		Alerts: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, logger),
		inputTopic:  inputTopic,
		alertsTopic: alertsTopic,
	}
}

// Publish routes messages for the alerts topic to the alerts channel and
// everything else to the input channel.
func (b *MemoryBus) Publish(topic string, messages ...*message.Message) error {
	if topic == b.alertsTopic {
		return b.Alerts.Publish(topic, messages...)
	}
	return b.Input.Publish(topic, messages...)
}

// Close closes both channels.
func (b *MemoryBus) Close() error {
	return errors.Join(b.Input.Close(), b.Alerts.Close())
}

// Consumer subscribes to the input topic.
func (b *MemoryBus) Consumer() (*WatermillConsumer, error) {
	return NewWatermillConsumer(b.Input, b.inputTopic, TransportMemory)
}

// AlertsConsumer subscribes to the alerts topic.
func (b *MemoryBus) AlertsConsumer() (*WatermillConsumer, error) {
	return NewWatermillConsumer(b.Alerts, b.alertsTopic, TransportMemory)
}

// Producer publishes to either topic.
func (b *MemoryBus) Producer() *WatermillProducer {
	return NewWatermillProducer(b, nil)
}
