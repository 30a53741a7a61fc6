// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/metrics"
	"github.com/tomtom215/sentinel/internal/statestore"
)

const (
	testInputTopic  = "transaction-stream"
	testAlertsTopic = "fraud-alerts"
)

// busHarness runs a pipeline over a MemoryBus.
type busHarness struct {
	bus      *MemoryBus
	producer *WatermillProducer
	alerts   *WatermillConsumer
	store    *statestore.MemoryStore
	pipeline *Pipeline
	codec    *Codec
	done     chan error
}

func metricsDropped() float64 {
	return testutil.ToFloat64(metrics.AlertsDropped)
}

func newBusHarness(t *testing.T) *busHarness {
	t.Helper()

	bus := NewMemoryBus(testInputTopic, testAlertsTopic, nil)
	consumer, err := bus.Consumer()
	if err != nil {
		t.Fatalf("Consumer() error = %v", err)
	}
	alerts, err := bus.AlertsConsumer()
	if err != nil {
		t.Fatalf("AlertsConsumer() error = %v", err)
	}

	producer := bus.Producer()
	store := statestore.NewMemoryStore(statestore.DefaultMemoryConfig())
	pipeline := newTestPipeline(engineParts{
		store:    store,
		scorer:   amountScorer(map[float64]float64{50000: -0.20}, 0.05),
		sink:     NewTopicSink(producer, testAlertsTopic),
		consumer: consumer,
	})

	ctx, cancel := context.WithCancel(context.Background())
	h := &busHarness{
		bus:      bus,
		producer: producer,
		alerts:   alerts,
		store:    store,
		pipeline: pipeline,
		codec:    NewCodec(),
		done:     make(chan error, 1),
	}
	go func() { h.done <- pipeline.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(5 * time.Second):
			t.Error("pipeline did not stop")
		}
		_ = bus.Close()
		_ = store.Close()
	})
	return h
}

// send publishes tx and returns once the pipeline has acked it.
func (h *busHarness) send(t *testing.T, tx detection.Transaction) {
	t.Helper()
	payload, err := h.codec.EncodeTransaction(tx)
	if err != nil {
		t.Fatalf("EncodeTransaction() error = %v", err)
	}
	h.sendRaw(t, tx.UserID, payload)
}

func (h *busHarness) sendRaw(t *testing.T, key string, payload []byte) {
	t.Helper()
	if err := h.producer.Produce(context.Background(), testInputTopic, key, payload); err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
}

// nextAlert waits for one alert and acks it.
func (h *busHarness) nextAlert(t *testing.T) detection.Alert {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d, err := h.alerts.Receive(ctx)
	if err != nil {
		t.Fatalf("no alert received: %v", err)
	}
	_ = d.Ack()

	var alert detection.Alert
	if err := json.Unmarshal(d.Payload, &alert); err != nil {
		t.Fatalf("alert payload: %v", err)
	}
	if d.Key != alert.UserID {
		t.Errorf("alert key = %q, want %q", d.Key, alert.UserID)
	}
	return alert
}

func (h *busHarness) expectNoAlert(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if d, err := h.alerts.Receive(ctx); err == nil {
		_ = d.Ack()
		t.Errorf("unexpected alert: %s", d.Payload)
	}
}

func TestPipeline_EndToEndScenarios(t *testing.T) {
	h := newBusHarness(t)
	ctx := context.Background()

	// First sighting of u1 is clean and records the location.
	h.send(t, detection.Transaction{TraceID: "t-1", UserID: "u1", Location: "NYC", Amount: 100})
	loc, found, err := h.store.GetLocation(ctx, "u1")
	if err != nil || !found || loc != "NYC" {
		t.Fatalf("GetLocation(u1) = %q, %v, %v, want NYC, true, nil", loc, found, err)
	}

	// A location change for u1 is a velocity violation.
	h.send(t, detection.Transaction{TraceID: "t-2", UserID: "u1", Location: "LONDON", Amount: 100})
	alert := h.nextAlert(t)
	want := detection.Alert{
		TraceID:   "t-2",
		Reason:    "VELOCITY_VIOLATION: JUMPED FROM NYC TO LONDON",
		UserID:    "u1",
		Status:    "BLOCKED",
		Timestamp: detection.EpochSeconds(fixedNow),
	}
	if alert != want {
		t.Errorf("alert = %+v, want %+v", alert, want)
	}
	if loc, _, _ := h.store.GetLocation(ctx, "u1"); loc != "NYC" {
		t.Errorf("record after violation = %q, want NYC", loc)
	}

	// A fresh user with an outlier score is flagged by the anomaly rule.
	h.send(t, detection.Transaction{TraceID: "t-3", UserID: "u2", Location: "NYC", Amount: 50000})
	alert = h.nextAlert(t)
	if alert.Reason != "AI_ANOMALY_SCORE: -0.2000" {
		t.Errorf("reason = %q, want AI_ANOMALY_SCORE: -0.2000", alert.Reason)
	}
	if alert.UserID != "u2" || alert.TraceID != "t-3" {
		t.Errorf("alert = %+v, want u2/t-3", alert)
	}

	// A fresh user with an inlier score produces nothing.
	h.send(t, detection.Transaction{TraceID: "t-4", UserID: "u3", Location: "PARIS", Amount: 20})
	h.expectNoAlert(t)

	if got := h.pipeline.Processed(); got != 4 {
		t.Errorf("Processed() = %d, want 4", got)
	}
}

func TestPipeline_MalformedEventsAreSkipped(t *testing.T) {
	h := newBusHarness(t)

	h.sendRaw(t, "", []byte(`{"userId":"u1"}`))
	h.sendRaw(t, "", []byte(`not json`))
	h.send(t, detection.Transaction{UserID: "u1", Location: "NYC", Amount: 100})
	h.send(t, detection.Transaction{UserID: "u1", Location: "ROME", Amount: 100})

	alert := h.nextAlert(t)
	if alert.Reason != "VELOCITY_VIOLATION: JUMPED FROM NYC TO ROME" {
		t.Errorf("reason = %q", alert.Reason)
	}
	if alert.TraceID != detection.DefaultTraceID {
		t.Errorf("traceId = %q, want %q", alert.TraceID, detection.DefaultTraceID)
	}
	h.expectNoAlert(t)
}

func TestPipeline_Process(t *testing.T) {
	tests := []struct {
		name        string
		parts       engineParts
		payload     string
		wantResult  string
		wantSettled []string
		wantSent    int
	}{
		{
			name:        "clean",
			payload:     `{"userId":"u1","amount":10,"location":"NYC"}`,
			wantResult:  metrics.ResultClean,
			wantSettled: []string{"ack"},
		},
		{
			name:        "anomaly",
			parts:       engineParts{scorer: amountScorer(nil, -0.5)},
			payload:     `{"userId":"u1","amount":10,"location":"NYC"}`,
			wantResult:  metrics.ResultFraud,
			wantSettled: []string{"ack"},
			wantSent:    1,
		},
		{
			name:        "malformed",
			payload:     `{"amount":10}`,
			wantResult:  metrics.ResultMalformed,
			wantSettled: []string{"ack"},
		},
		{
			name:        "store down under reprocess",
			parts:       engineParts{store: failingStore{}, policy: detection.PolicyReprocess},
			payload:     `{"userId":"u1","amount":10,"location":"NYC"}`,
			wantResult:  metrics.ResultRequeued,
			wantSettled: []string{"nack"},
		},
		{
			name:        "store down under anomaly",
			parts:       engineParts{store: failingStore{}, policy: detection.PolicyAnomaly},
			payload:     `{"userId":"u1","amount":10,"location":"NYC"}`,
			wantResult:  metrics.ResultClean,
			wantSettled: []string{"ack"},
		},
		{
			name:        "store down under block",
			parts:       engineParts{store: failingStore{}, policy: detection.PolicyBlock},
			payload:     `{"userId":"u1","amount":10,"location":"NYC"}`,
			wantResult:  metrics.ResultFraud,
			wantSettled: []string{"ack"},
			wantSent:    1,
		},
		{
			name: "scorer failure",
			parts: engineParts{scorer: detection.ScorerFunc(func(context.Context, []float64) (float64, error) {
				return 0, errors.New("model unavailable")
			})},
			payload:     `{"userId":"u1","amount":10,"location":"NYC"}`,
			wantResult:  metrics.ResultClean,
			wantSettled: []string{"ack"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer := newSliceConsumer(tt.payload)
			sent := 0
			parts := tt.parts
			parts.consumer = consumer
			parts.sink = detection.AlertSinkFunc(func(context.Context, *detection.Alert) error {
				sent++
				return nil
			})
			p := newTestPipeline(parts)

			d, err := consumer.Receive(context.Background())
			if err != nil {
				t.Fatalf("Receive() error = %v", err)
			}
			if got := p.Process(context.Background(), d); got != tt.wantResult {
				t.Errorf("Process() = %q, want %q", got, tt.wantResult)
			}
			if got := consumer.Settled(); !reflect.DeepEqual(got, tt.wantSettled) {
				t.Errorf("settled = %v, want %v", got, tt.wantSettled)
			}
			if sent != tt.wantSent {
				t.Errorf("alerts sent = %d, want %d", sent, tt.wantSent)
			}
		})
	}
}

func TestPipeline_PublishExhaustedRequeues(t *testing.T) {
	consumer := newSliceConsumer(`{"userId":"u1","amount":10,"location":"NYC"}`)
	producer := &recordingProducer{failures: -1}
	p := newTestPipeline(engineParts{
		consumer: consumer,
		scorer:   amountScorer(nil, -0.9),
		sink:     NewRetrySink(NewTopicSink(producer, testAlertsTopic), fastRetry(2)),
	})

	droppedBefore := metricsDropped()
	d, _ := consumer.Receive(context.Background())
	if got := p.Process(context.Background(), d); got != metrics.ResultError {
		t.Errorf("Process() = %q, want %q", got, metrics.ResultError)
	}
	if got := consumer.Settled(); !reflect.DeepEqual(got, []string{"nack"}) {
		t.Errorf("settled = %v, want [nack]", got)
	}
	if producer.Calls() != 2 {
		t.Errorf("produce calls = %d, want 2", producer.Calls())
	}
	if delta := metricsDropped() - droppedBefore; delta != 1 {
		t.Errorf("dropped delta = %v, want 1", delta)
	}
}

func TestPipeline_RequeueDelayHonoursContext(t *testing.T) {
	consumer := newSliceConsumer(`{"userId":"u1","amount":10,"location":"NYC"}`)
	p := newTestPipeline(engineParts{
		consumer: consumer,
		store:    failingStore{},
		policy:   detection.PolicyReprocess,
		pipeline: PipelineConfig{RequeueDelay: time.Hour},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, _ := consumer.Receive(context.Background())
	start := time.Now()
	if got := p.Process(ctx, d); got != metrics.ResultRequeued {
		t.Errorf("Process() = %q, want %q", got, metrics.ResultRequeued)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Process() took %v with a canceled context", elapsed)
	}
}

func TestPipeline_RunStopsOnCancel(t *testing.T) {
	consumer := newSliceConsumer(
		`{"userId":"u1","amount":10,"location":"NYC"}`,
		`{"userId":"u2","amount":10,"location":"NYC"}`,
	)
	p := newTestPipeline(engineParts{consumer: consumer})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for p.Processed() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !p.IsRunning() {
		t.Error("IsRunning() = false while serving")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if p.IsRunning() {
		t.Error("IsRunning() = true after stop")
	}
	if p.Processed() != 2 {
		t.Errorf("Processed() = %d, want 2", p.Processed())
	}
	if p.String() != "detection-pipeline" {
		t.Errorf("String() = %q", p.String())
	}
}

func TestPipeline_RunReturnsConsumerError(t *testing.T) {
	consumer := newSliceConsumer()
	_ = consumer.Close()
	p := newTestPipeline(engineParts{consumer: consumer})

	if err := p.Run(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Run() error = %v, want ErrClosed", err)
	}
}
