// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// histogramCount extracts the sample count from a Prometheus histogram.
func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordTransaction(t *testing.T) {
	results := []string{ResultClean, ResultFraud, ResultMalformed, ResultError, ResultRequeued}

	for _, result := range results {
		t.Run(result, func(t *testing.T) {
			before := testutil.ToFloat64(TransactionsProcessed.WithLabelValues(result))
			RecordTransaction(result, 3*time.Millisecond)
			after := testutil.ToFloat64(TransactionsProcessed.WithLabelValues(result))

			if after-before != 1 {
				t.Errorf("TransactionsProcessed{result=%q} delta = %v, want 1", result, after-before)
			}
		})
	}
}

func TestRecordVelocityCheck(t *testing.T) {
	outcomes := []string{VelocityFirstSeen, VelocityMatch, VelocityViolation, VelocityUnavailable}

	for _, outcome := range outcomes {
		before := testutil.ToFloat64(VelocityChecks.WithLabelValues(outcome))
		RecordVelocityCheck(outcome)
		if got := testutil.ToFloat64(VelocityChecks.WithLabelValues(outcome)) - before; got != 1 {
			t.Errorf("VelocityChecks{outcome=%q} delta = %v, want 1", outcome, got)
		}
	}
}

func TestRecordAlertPublish(t *testing.T) {
	tests := []struct {
		name    string
		success bool
		label   string
	}{
		{"success", true, "success"},
		{"failure", false, "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(AlertsPublished.WithLabelValues(tt.label))
			RecordAlertPublish(tt.success)
			if got := testutil.ToFloat64(AlertsPublished.WithLabelValues(tt.label)) - before; got != 1 {
				t.Errorf("AlertsPublished{status=%q} delta = %v, want 1", tt.label, got)
			}
		})
	}
}

func TestAlertFailureCounters(t *testing.T) {
	retries := testutil.ToFloat64(AlertPublishRetries)
	dropped := testutil.ToFloat64(AlertsDropped)
	scoring := testutil.ToFloat64(ScoringFailures)

	RecordAlertRetry()
	RecordAlertRetry()
	RecordAlertDropped()
	RecordScoringFailure()

	if got := testutil.ToFloat64(AlertPublishRetries) - retries; got != 2 {
		t.Errorf("AlertPublishRetries delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(AlertsDropped) - dropped; got != 1 {
		t.Errorf("AlertsDropped delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ScoringFailures) - scoring; got != 1 {
		t.Errorf("ScoringFailures delta = %v, want 1", got)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     float64
	}{
		{"closed", "open", 2},
		{"open", "half-open", 1},
		{"half-open", "closed", 0},
	}

	for _, tt := range tests {
		RecordCircuitBreakerTransition("alerts", tt.from, tt.to)
		if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("alerts")); got != tt.want {
			t.Errorf("after %s->%s state = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRecordIngestRequest(t *testing.T) {
	before := testutil.ToFloat64(IngestRequests.WithLabelValues("202"))
	RecordIngestRequest(202, time.Millisecond)
	if got := testutil.ToFloat64(IngestRequests.WithLabelValues("202")) - before; got != 1 {
		t.Errorf("IngestRequests{status=202} delta = %v, want 1", got)
	}
}

func TestHistogramsObserve(t *testing.T) {
	tests := []struct {
		name    string
		hist    prometheus.Histogram
		observe func()
	}{
		{"pipeline duration", PipelineDuration, func() { RecordTransaction(ResultClean, 3*time.Millisecond) }},
		{"anomaly score", AnomalyScore, func() { RecordAnomalyScore(0.12) }},
		{"ingest duration", IngestDuration, func() { RecordIngestRequest(400, time.Millisecond) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := histogramCount(t, tt.hist)
			tt.observe()
			if got := histogramCount(t, tt.hist) - before; got != 1 {
				t.Errorf("sample count delta = %d, want 1", got)
			}
		})
	}
}

func TestMetricLint(t *testing.T) {
	RecordAnomalyScore(-0.2)
	RecordFraud("anomaly")
	RecordStateStoreError("get")
	RecordMessageConsumed("memory")
	RecordMessageRedelivered("memory")

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer,
		"sentinel_transactions_processed_total",
		"sentinel_fraud_detected_total",
		"sentinel_anomaly_score",
		"sentinel_state_store_errors_total",
	)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric lint problem: %s: %s", p.Metric, p.Text)
	}
}
