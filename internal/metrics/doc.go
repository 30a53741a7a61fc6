// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package metrics provides Prometheus metrics for the fraud detection pipeline.

Collectors are registered with the default registry through promauto and
are updated through the Record* helpers, so call sites never touch label
values directly:

	metrics.RecordVelocityCheck(metrics.VelocityViolation)
	metrics.RecordFraud("velocity")
	metrics.RecordTransaction(metrics.ResultFraud, time.Since(start))

# Metrics Endpoint

Metrics are exposed at /metrics on the ingest API listener:

	curl http://localhost:8080/metrics

# Available Metrics

Pipeline:
  - sentinel_transactions_processed_total{result}
  - sentinel_pipeline_duration_seconds

Detection:
  - sentinel_fraud_detected_total{rule}
  - sentinel_velocity_checks_total{outcome}
  - sentinel_state_store_errors_total{op}
  - sentinel_anomaly_score
  - sentinel_scoring_failures_total

Alerts:
  - sentinel_alerts_published_total{status}
  - sentinel_alert_publish_retries_total
  - sentinel_alerts_dropped_total

Ingest, transport and resilience:
  - sentinel_ingest_requests_total{status}
  - sentinel_ingest_duration_seconds
  - sentinel_messages_consumed_total{transport}
  - sentinel_messages_redelivered_total{transport}
  - sentinel_circuit_breaker_state{name}
  - sentinel_circuit_breaker_transitions_total{name,from,to}
*/
package metrics
