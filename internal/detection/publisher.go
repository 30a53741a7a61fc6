// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"time"

	"github.com/tomtom215/sentinel/internal/logging"
)

// Publisher turns fraud verdicts into alerts and hands each one to the sink
// exactly once. Retrying is the sink's concern.
type Publisher struct {
	sink AlertSink
	now  func() time.Time
}

// NewPublisher creates a publisher that sends alerts to sink.
func NewPublisher(sink AlertSink) *Publisher {
	return &Publisher{sink: sink, now: time.Now}
}

// WithClock returns a copy of p that stamps alerts with now.
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	cp := *p
	cp.now = now
	return &cp
}

// Publish builds the alert for tx and sends it. It returns ErrNotFraud for
// a clean verdict and a *PublishError when the sink fails.
func (p *Publisher) Publish(ctx context.Context, tx Transaction, verdict Verdict) error {
	if !verdict.IsFraud {
		return ErrNotFraud
	}

	alert := NewAlert(tx, verdict, p.now())
	if err := p.sink.Send(ctx, alert); err != nil {
		return &PublishError{Alert: alert, Err: err}
	}

	logging.Ctx(ctx).Debug().
		Str("trace_id", alert.TraceID).
		Str("user_id", alert.UserID).
		Msg("Alert published")
	return nil
}
