// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package supervisor runs Sentinel's long-lived services under a suture v4
supervisor tree.

# Layout

	sentinel
	├── state-layer
	│   └── badger-gc            (STATE_BACKEND=badger)
	├── messaging-layer
	│   ├── nats-server          (NATS_EMBEDDED=true)
	│   └── detection-pipeline
	└── api-layer
	    └── http-server          (API_ENABLED=true)

Each layer is its own supervisor with its own failure counter, so a crash
loop in the ingest API does not interrupt detection.

# Usage

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewPipelineService(pipeline))
	tree.AddAPIService(services.NewHTTPService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh
	tree.LogUnstopped()

# Restart behaviour

A service returning an error is restarted. Suture keeps a decaying failure
count per supervisor; once it passes FailureThreshold, restarts wait for
FailureBackoff. Returning suture.ErrDoNotRestart stops a service for good and
suture.ErrTerminateSupervisorTree stops the whole tree.

Supervisor events are logged through sutureslog into the zerolog logger via
logging.NewSlogLogger.
*/
package supervisor
