// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPublisher_RejectsCleanVerdict(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	err := NewPublisher(sink).Publish(context.Background(), Transaction{UserID: "u1"}, Verdict{})
	if !errors.Is(err, ErrNotFraud) {
		t.Errorf("Publish(clean) error = %v, want ErrNotFraud", err)
	}
	if len(sink.Alerts()) != 0 {
		t.Errorf("alerts = %d, want 0", len(sink.Alerts()))
	}
}

func TestPublisher_BuildsAlert(t *testing.T) {
	t.Parallel()

	at := time.Unix(1767225600, 250_000_000)
	sink := &recordingSink{}
	pub := NewPublisher(sink).WithClock(func() time.Time { return at })

	verdict := Verdict{IsFraud: true, Reason: "AI_ANOMALY_SCORE: -0.4000", Rule: RuleAnomaly}
	if err := pub.Publish(context.Background(), Transaction{UserID: "u9", Amount: 1}, verdict); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	alerts := sink.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want exactly 1", len(alerts))
	}
	want := Alert{
		TraceID:   "N/A",
		Reason:    "AI_ANOMALY_SCORE: -0.4000",
		UserID:    "u9",
		Status:    "BLOCKED",
		Timestamp: 1767225600.25,
	}
	if *alerts[0] != want {
		t.Errorf("alert = %+v, want %+v", *alerts[0], want)
	}
}

func TestPublisher_SinkFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	sink := &recordingSink{err: boom}

	err := NewPublisher(sink).Publish(context.Background(),
		Transaction{TraceID: "t1", UserID: "u1"},
		Verdict{IsFraud: true, Reason: "VELOCITY_VIOLATION: JUMPED FROM A TO B"})

	if !errors.Is(err, ErrPublishFailure) {
		t.Errorf("error = %v, want ErrPublishFailure", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped sink error", err)
	}
	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("error %T is not *PublishError", err)
	}
	if pubErr.Alert.TraceID != "t1" || pubErr.Alert.Status != StatusBlocked {
		t.Errorf("PublishError.Alert = %+v", pubErr.Alert)
	}
}

func TestTransaction_Normalize(t *testing.T) {
	t.Parallel()

	got := Transaction{UserID: "u1", Amount: 5}.Normalize()
	if got.TraceID != "N/A" || got.Location != "UNKNOWN" {
		t.Errorf("Normalize() = %+v", got)
	}

	empty := Transaction{TraceID: "", UserID: "u1", Location: ""}.Normalize()
	if empty.TraceID != DefaultTraceID || empty.Location != DefaultLocation {
		t.Errorf("Normalize() of explicit empty fields = %+v, want %q and %q", empty, DefaultTraceID, DefaultLocation)
	}

	kept := Transaction{TraceID: "t", UserID: "u1", Location: "NYC"}.Normalize()
	if kept.TraceID != "t" || kept.Location != "NYC" {
		t.Errorf("Normalize() overwrote present fields: %+v", kept)
	}
}
