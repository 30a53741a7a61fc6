// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package services adapts Sentinel components to suture.Service.

  - PipelineService runs the detection pipeline. A closed transport ends
    the whole tree instead of looping on restarts.
  - HTTPService runs the ingest API's http.Server and shuts it down
    gracefully when its context ends.
  - NATSServerService owns the embedded NATS server: it watches that the
    server stays up and shuts it down on exit.

Every service implements fmt.Stringer so suture log lines name it.
*/
package services
