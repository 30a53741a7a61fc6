// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package api provides the HTTP ingest surface of Sentinel.

Clients submit transactions over HTTP; the handler assigns a trace id,
publishes the event to the input topic keyed by user id and answers
202 Accepted without waiting for a verdict. Detection happens
asynchronously in the event pipeline.

Endpoints:

  - POST /api/v1/transaction: validate and enqueue a transaction
  - GET /health: liveness probe
  - GET /metrics: Prometheus metrics

Middleware Stack:

Every route runs behind RequestIDWithLogging (request id bound to the
logging correlation id), chi RealIP and Recoverer, and APISecurityHeaders.
The ingest route adds per-IP rate limiting via go-chi/httprate and the
RequestMetrics recorder.

Usage:

	handler := api.NewHandler(producer, "transaction-stream")
	router := api.NewRouter(handler, api.DefaultChiMiddlewareConfig())
	srv := &http.Server{Addr: ":8080", Handler: router.SetupChi()}
*/
package api
