// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package scoring provides the anomaly scorers used by the detection engine.
//
// Two implementations satisfy detection.Scorer:
//
//   - Forest evaluates a pre-trained isolation forest loaded from JSON.
//     Scores follow the usual isolation-forest decision function: negative
//     values are anomalous, positive values are normal.
//   - RemoteScorer asks an HTTP model server for the score and guards the
//     call with a timeout and a circuit breaker.
//
// Fit trains a Forest from samples. It is used by cmd/forestgen to produce
// the bundled model and by tests.
package scoring
