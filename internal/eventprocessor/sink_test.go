// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/metrics"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsedTime:  time.Second,
		AttemptTimeout:  time.Second,
	}
}

func testAlert() *detection.Alert {
	return &detection.Alert{
		TraceID:   "t-1",
		Reason:    "VELOCITY_VIOLATION: JUMPED FROM NYC TO LONDON",
		UserID:    "u1",
		Status:    detection.StatusBlocked,
		Timestamp: 1767225600,
	}
}

func TestTopicSink_Send(t *testing.T) {
	producer := &recordingProducer{}
	sink := NewTopicSink(producer, "fraud-alerts")

	successBefore := testutil.ToFloat64(metrics.AlertsPublished.WithLabelValues("success"))
	if err := sink.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	msgs := producer.Messages()
	if len(msgs) != 1 {
		t.Fatalf("produced %d messages, want 1", len(msgs))
	}
	if msgs[0].topic != "fraud-alerts" {
		t.Errorf("topic = %q, want fraud-alerts", msgs[0].topic)
	}
	if msgs[0].key != "u1" {
		t.Errorf("key = %q, want u1", msgs[0].key)
	}

	var got detection.Alert
	if err := json.Unmarshal(msgs[0].payload, &got); err != nil {
		t.Fatalf("payload is not an alert: %v", err)
	}
	if got != *testAlert() {
		t.Errorf("payload = %+v, want %+v", got, *testAlert())
	}

	if delta := testutil.ToFloat64(metrics.AlertsPublished.WithLabelValues("success")) - successBefore; delta != 1 {
		t.Errorf("success publishes delta = %v, want 1", delta)
	}
}

func TestTopicSink_SendFailure(t *testing.T) {
	producer := &recordingProducer{failures: 1}
	sink := NewTopicSink(producer, "fraud-alerts")

	failureBefore := testutil.ToFloat64(metrics.AlertsPublished.WithLabelValues("failure"))
	if err := sink.Send(context.Background(), testAlert()); err == nil {
		t.Fatal("Send() error = nil, want error")
	}
	if delta := testutil.ToFloat64(metrics.AlertsPublished.WithLabelValues("failure")) - failureBefore; delta != 1 {
		t.Errorf("failure publishes delta = %v, want 1", delta)
	}
}

func TestRetrySink_RecoversAfterFailures(t *testing.T) {
	producer := &recordingProducer{failures: 2}
	sink := NewRetrySink(NewTopicSink(producer, "fraud-alerts"), fastRetry(5))

	retriesBefore := testutil.ToFloat64(metrics.AlertPublishRetries)
	if err := sink.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if producer.Calls() != 3 {
		t.Errorf("produce calls = %d, want 3", producer.Calls())
	}
	if len(producer.Messages()) != 1 {
		t.Errorf("delivered %d alerts, want 1", len(producer.Messages()))
	}
	if delta := testutil.ToFloat64(metrics.AlertPublishRetries) - retriesBefore; delta != 2 {
		t.Errorf("retries delta = %v, want 2", delta)
	}
}

func TestRetrySink_Exhausted(t *testing.T) {
	brokerDown := errors.New("broker down")
	producer := &recordingProducer{failures: -1, err: brokerDown}
	sink := NewRetrySink(NewTopicSink(producer, "fraud-alerts"), fastRetry(3))

	err := sink.Send(context.Background(), testAlert())
	if !errors.Is(err, brokerDown) {
		t.Fatalf("Send() error = %v, want %v", err, brokerDown)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error = %q, want attempt count", err.Error())
	}
	if producer.Calls() != 3 {
		t.Errorf("produce calls = %d, want 3", producer.Calls())
	}
}

func TestRetrySink_ClosedIsNotRetried(t *testing.T) {
	producer := &recordingProducer{}
	_ = producer.Close()
	sink := NewRetrySink(NewTopicSink(producer, "fraud-alerts"), fastRetry(5))

	err := sink.Send(context.Background(), testAlert())
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Send() error = %v, want ErrClosed", err)
	}
	if producer.Calls() != 1 {
		t.Errorf("produce calls = %d, want 1", producer.Calls())
	}
}

func TestRetrySink_ContextCanceled(t *testing.T) {
	producer := &recordingProducer{failures: -1}
	cfg := fastRetry(100)
	cfg.InitialInterval = 50 * time.Millisecond
	cfg.MaxInterval = 50 * time.Millisecond
	sink := NewRetrySink(NewTopicSink(producer, "fraud-alerts"), cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := sink.Send(ctx, testAlert()); err == nil {
		t.Fatal("Send() error = nil, want error")
	}
	if producer.Calls() >= 100 {
		t.Errorf("produce calls = %d, want retries cut short by context", producer.Calls())
	}
}

func TestNewRetrySink_MinimumOneAttempt(t *testing.T) {
	producer := &recordingProducer{failures: -1}
	sink := NewRetrySink(NewTopicSink(producer, "fraud-alerts"), RetryConfig{})

	if err := sink.Send(context.Background(), testAlert()); err == nil {
		t.Fatal("Send() error = nil, want error")
	}
	if producer.Calls() != 1 {
		t.Errorf("produce calls = %d, want 1", producer.Calls())
	}
}
