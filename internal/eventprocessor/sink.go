// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
)

// TopicSink produces encoded alerts to the alerts topic, keyed by user id.
type TopicSink struct {
	producer Producer
	topic    string
	codec    *Codec
}

// NewTopicSink creates a sink that writes to topic.
func NewTopicSink(producer Producer, topic string) *TopicSink {
	return &TopicSink{producer: producer, topic: topic, codec: NewCodec()}
}

// Send implements detection.AlertSink with a single produce attempt.
func (s *TopicSink) Send(ctx context.Context, alert *detection.Alert) error {
	payload, err := s.codec.Encode(alert)
	if err != nil {
		return backoff.Permanent(err)
	}

	err = s.producer.Produce(ctx, s.topic, alert.UserID, payload)
	metrics.RecordAlertPublish(err == nil)
	return err
}

// RetryConfig bounds alert delivery retries.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	// AttemptTimeout bounds each individual attempt.
	AttemptTimeout time.Duration
}

// DefaultRetryConfig returns 5 attempts from 100ms up to 2s, at most 10s in total.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  10 * time.Second,
		AttemptTimeout:  2 * time.Second,
	}
}

// RetrySink retries a sink with bounded exponential backoff.
type RetrySink struct {
	next detection.AlertSink
	cfg  RetryConfig
}

// NewRetrySink wraps next.
func NewRetrySink(next detection.AlertSink, cfg RetryConfig) *RetrySink {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetrySink{next: next, cfg: cfg}
}

func (s *RetrySink) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialInterval
	b.MaxInterval = s.cfg.MaxInterval
	b.MaxElapsedTime = s.cfg.MaxElapsedTime
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.MaxAttempts-1)), ctx)
}

// Send implements detection.AlertSink. It returns the last attempt's error
// once the attempts, the elapsed-time budget or ctx run out. ErrClosed and
// errors marked backoff.Permanent are not retried.
func (s *RetrySink) Send(ctx context.Context, alert *detection.Alert) error {
	attempt := 0
	operation := func() error {
		attempt++
		if attempt > 1 {
			metrics.RecordAlertRetry()
		}

		attemptCtx := ctx
		if s.cfg.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, s.cfg.AttemptTimeout)
			defer cancel()
		}

		err := s.next.Send(attemptCtx, alert)
		if errors.Is(err, ErrClosed) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("trace_id", alert.TraceID).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("Alert publish failed, retrying")
	}

	if err := backoff.RetryNotify(operation, s.backOff(ctx), notify); err != nil {
		return fmt.Errorf("after %d attempts: %w", attempt, err)
	}
	return nil
}
