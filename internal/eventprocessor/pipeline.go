// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
)

// DefaultRequeueDelay is the pause before a failed message is handed back
// for redelivery.
const DefaultRequeueDelay = time.Second

// PipelineConfig holds pipeline settings.
type PipelineConfig struct {
	RequeueDelay time.Duration
}

// DefaultPipelineConfig returns production defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{RequeueDelay: DefaultRequeueDelay}
}

// Pipeline runs the detection loop over a consumer.
type Pipeline struct {
	consumer  Consumer
	codec     *Codec
	engine    *detection.Engine
	publisher *detection.Publisher
	cfg       PipelineConfig

	processed atomic.Int64
	running   atomic.Bool
}

// NewPipeline creates a pipeline.
func NewPipeline(consumer Consumer, engine *detection.Engine, publisher *detection.Publisher, cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		consumer:  consumer,
		codec:     NewCodec(),
		engine:    engine,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Run processes messages one at a time until ctx is canceled or the
// consumer is closed. It returns ctx.Err() on cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	p.running.Store(true)
	defer p.running.Store(false)

	logging.Info().Msg("Detection pipeline started")
	defer logging.Info().Int64("processed", p.processed.Load()).Msg("Detection pipeline stopped")

	for {
		delivery, err := p.consumer.Receive(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("receive: %w", err)
		}

		p.Process(ctx, delivery)
		p.processed.Add(1)
	}
}

// Serve implements suture.Service.
func (p *Pipeline) Serve(ctx context.Context) error {
	return p.Run(ctx)
}

// String implements fmt.Stringer for suture logging.
func (p *Pipeline) String() string {
	return "detection-pipeline"
}

// IsRunning reports whether the loop is active.
func (p *Pipeline) IsRunning() bool {
	return p.running.Load()
}

// Processed returns the number of messages handled since start.
func (p *Pipeline) Processed() int64 {
	return p.processed.Load()
}

// Process handles one delivery and settles it. It returns the result label
// recorded in metrics. Decision and publish run without ctx's cancellation,
// so shutdown never aborts a transaction midway; ctx only shortens the
// requeue pause.
func (p *Pipeline) Process(ctx context.Context, d *Delivery) string {
	start := time.Now()
	work := logging.ContextWithNewCorrelationID(context.WithoutCancel(ctx))
	result := p.process(ctx, work, d)
	metrics.RecordTransaction(result, time.Since(start))
	return result
}

func (p *Pipeline) process(ctx, work context.Context, d *Delivery) string {
	tx, err := p.codec.Decode(d.Payload)
	if err != nil {
		logging.Ctx(work).Warn().Err(err).Int("payload_bytes", len(d.Payload)).Msg("Skipping malformed event")
		p.ack(work, d)
		return metrics.ResultMalformed
	}

	work = logging.ContextWithTraceID(work, tx.TraceID)
	log := logging.Ctx(work)

	verdict, err := p.engine.Decide(work, tx)
	if err != nil {
		log.Warn().Err(err).Str("user_id", tx.UserID).Msg("Decision deferred, requeueing event")
		p.requeue(ctx, work, d)
		return metrics.ResultRequeued
	}

	if !verdict.IsFraud {
		event := log.Debug().Str("user_id", tx.UserID)
		if verdict.Score != nil {
			event = event.Float64("score", *verdict.Score)
		}
		event.Bool("degraded", verdict.Degraded()).Msg("clean transaction")
		p.ack(work, d)
		return metrics.ResultClean
	}

	log.Warn().
		Str("user_id", tx.UserID).
		Str("rule", string(verdict.Rule)).
		Str("reason", verdict.Reason).
		Float64("amount", tx.Amount).
		Msg("FRAUD DETECTED")

	if err := p.publisher.Publish(work, tx, verdict); err != nil {
		event := log.Error().Err(err).Str("user_id", tx.UserID)
		var perr *detection.PublishError
		if errors.As(err, &perr) {
			event = event.Interface("alert", perr.Alert)
		}
		event.Msg("Alert delivery exhausted, alert dropped; requeueing event")
		metrics.RecordAlertDropped()
		p.requeue(ctx, work, d)
		return metrics.ResultError
	}

	p.ack(work, d)
	return metrics.ResultFraud
}

func (p *Pipeline) ack(work context.Context, d *Delivery) {
	if err := d.Ack(); err != nil {
		logging.Ctx(work).Error().Err(err).Msg("Failed to ack event")
	}
}

func (p *Pipeline) requeue(ctx, work context.Context, d *Delivery) {
	if p.cfg.RequeueDelay > 0 {
		timer := time.NewTimer(p.cfg.RequeueDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	if err := d.Nack(); err != nil {
		logging.Ctx(work).Error().Err(err).Msg("Failed to nack event")
	}
}
