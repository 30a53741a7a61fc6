// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package detection implements per-transaction fraud decisions.

Two rules are evaluated in a fixed order by the Engine:

  - VelocityRule: flags a transaction whose location differs from the
    user's last recorded location within the record TTL (300s by default).
    A violation leaves the stored location untouched; any other outcome
    refreshes it.
  - AnomalyRule: scores the feature vector [amount/1000, 1.0] with an
    injected Scorer and flags when the score is strictly below the
    threshold (-0.15 by default).

The anomaly rule only runs when the velocity rule did not flag. The first
positive signal wins and there is no score weighting.

# Dependencies

Nothing in this package opens connections. The location store, the scorer
and the alert sink are passed in by the caller:

	velocity := detection.NewVelocityRule(store, detection.DefaultVelocityConfig())
	anomaly := detection.NewAnomalyRule(scorer, detection.DefaultAnomalyThreshold)
	engine := detection.NewEngine(velocity, anomaly, detection.PolicyAnomaly)
	publisher := detection.NewPublisher(sink)

	verdict, err := engine.Decide(ctx, tx)
	if err == nil && verdict.IsFraud {
		err = publisher.Publish(ctx, tx, verdict)
	}

# Failure Handling

Failures are reported through the sentinel errors in errors.go. A state
store failure is never reported as "no prior record"; the engine applies
its StoreFailurePolicy instead. A scorer failure yields a non-fraud
verdict with ScoringErr set. A sink failure is returned as *PublishError,
which carries the alert so the caller can log it in full.
*/
package detection
