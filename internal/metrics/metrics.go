// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transaction outcome labels for TransactionsProcessed.
const (
	ResultClean     = "clean"
	ResultFraud     = "fraud"
	ResultMalformed = "malformed"
	ResultError     = "error"
	ResultRequeued  = "requeued"
)

// Velocity check outcome labels for VelocityChecks.
const (
	VelocityFirstSeen   = "first_seen"
	VelocityMatch       = "match"
	VelocityViolation   = "violation"
	VelocityUnavailable = "unavailable"
)

var (
	// Pipeline Metrics
	TransactionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_transactions_processed_total",
			Help: "Total number of transactions processed by outcome",
		},
		[]string{"result"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_pipeline_duration_seconds",
			Help:    "End-to-end processing time of a single transaction",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// Detection Metrics
	FraudDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_fraud_detected_total",
			Help: "Total number of transactions flagged as fraud by the rule that fired",
		},
		[]string{"rule"},
	)

	VelocityChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_velocity_checks_total",
			Help: "Total number of velocity checks by outcome",
		},
		[]string{"outcome"},
	)

	StateStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_state_store_errors_total",
			Help: "Total number of state store failures by operation",
		},
		[]string{"op"},
	)

	AnomalyScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_anomaly_score",
			Help:    "Distribution of anomaly scores returned by the scorer",
			Buckets: prometheus.LinearBuckets(-0.5, 0.05, 21),
		},
	)

	ScoringFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_scoring_failures_total",
			Help: "Total number of scorer errors treated as non-fraud",
		},
	)

	// Alert Metrics
	AlertsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_alerts_published_total",
			Help: "Total number of alert publish attempts by status",
		},
		[]string{"status"},
	)

	AlertPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_alert_publish_retries_total",
			Help: "Total number of alert publish retries after a failed attempt",
		},
	)

	AlertsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_alerts_dropped_total",
			Help: "Total number of alerts that could not be published after all retries",
		},
	)

	// Ingest API Metrics
	IngestRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_ingest_requests_total",
			Help: "Total number of ingest API requests by HTTP status code",
		},
		[]string{"status"},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_ingest_duration_seconds",
			Help:    "Duration of ingest API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentinel_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Transport Metrics
	MessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_messages_consumed_total",
			Help: "Total number of messages received from the transport",
		},
		[]string{"transport"},
	)

	MessagesRedelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_messages_redelivered_total",
			Help: "Total number of messages handed back to the transport for redelivery",
		},
		[]string{"transport"},
	)
)

// RecordTransaction records the outcome and duration of one pipeline pass.
func RecordTransaction(result string, duration time.Duration) {
	TransactionsProcessed.WithLabelValues(result).Inc()
	PipelineDuration.Observe(duration.Seconds())
}

// RecordFraud records a fraud verdict attributed to rule.
func RecordFraud(rule string) {
	FraudDetected.WithLabelValues(rule).Inc()
}

// RecordVelocityCheck records the outcome of a velocity check.
func RecordVelocityCheck(outcome string) {
	VelocityChecks.WithLabelValues(outcome).Inc()
}

// RecordStateStoreError records a failed state store operation.
func RecordStateStoreError(op string) {
	StateStoreErrors.WithLabelValues(op).Inc()
}

// RecordAnomalyScore records a successfully computed anomaly score.
func RecordAnomalyScore(score float64) {
	AnomalyScore.Observe(score)
}

// RecordScoringFailure records a scorer error.
func RecordScoringFailure() {
	ScoringFailures.Inc()
}

// RecordAlertPublish records a single publish attempt.
func RecordAlertPublish(success bool) {
	if success {
		AlertsPublished.WithLabelValues("success").Inc()
	} else {
		AlertsPublished.WithLabelValues("failure").Inc()
	}
}

// RecordAlertRetry records a publish retry.
func RecordAlertRetry() {
	AlertPublishRetries.Inc()
}

// RecordAlertDropped records an alert whose publication was abandoned.
func RecordAlertDropped() {
	AlertsDropped.Inc()
}

// RecordIngestRequest records an ingest API request.
func RecordIngestRequest(statusCode int, duration time.Duration) {
	IngestRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	IngestDuration.Observe(duration.Seconds())
}

// RecordCircuitBreakerTransition records a breaker state change. States are
// the gobreaker names: closed, half-open, open.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordMessageConsumed records a message received from transport.
func RecordMessageConsumed(transport string) {
	MessagesConsumed.WithLabelValues(transport).Inc()
}

// RecordMessageRedelivered records a message nacked back to transport.
func RecordMessageRedelivered(transport string) {
	MessagesRedelivered.WithLabelValues(transport).Inc()
}
