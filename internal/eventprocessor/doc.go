// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package eventprocessor connects the detection engine to the message
// transports.
//
// # Transports
//
// Three transports implement the Consumer and Producer interfaces:
//
//   - kafka: franz-go consumer group with manual commits. Acked records are
//     committed; nacked records are redelivered locally up to a limit.
//   - nats: Watermill over NATS JetStream with a durable consumer, optionally
//     backed by an embedded nats-server. Nacked messages are redelivered by
//     JetStream up to MaxDeliver.
//   - memory: Watermill gochannel for single-process runs and tests.
//
// # Pipeline
//
// Pipeline is a single ordered loop: receive, decode, decide, publish, ack.
// Malformed events are acked and skipped. An exhausted alert publish is
// logged with the full alert and the event is nacked for redelivery; a
// redelivered event re-flags because velocity violations never overwrite
// the stored location.
//
// On shutdown the loop stops receiving. The transaction in flight finishes
// under context.WithoutCancel, bounded by the per-call timeouts of the
// store and the sink.
//
// # Alert Delivery
//
// TopicSink encodes alerts and produces them to the alerts topic keyed by
// user id. RetrySink wraps any sink with bounded exponential backoff
// (cenkalti/backoff). Producers may carry a gobreaker circuit breaker.
package eventprocessor
