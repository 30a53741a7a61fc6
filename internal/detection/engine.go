// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
)

// StoreFailurePolicy decides what the engine does when the velocity check
// cannot reach the state store.
type StoreFailurePolicy string

const (
	// PolicyAnomaly continues to the anomaly check. The verdict keeps
	// VelocityErr set so the velocity result is reported as indeterminate.
	PolicyAnomaly StoreFailurePolicy = "anomaly"

	// PolicyReprocess aborts the decision and returns the store error so the
	// caller can hand the event back to its transport.
	PolicyReprocess StoreFailurePolicy = "reprocess"

	// PolicyBlock fails closed and flags the transaction.
	PolicyBlock StoreFailurePolicy = "block"
)

// StoreUnavailableReason is the verdict reason under PolicyBlock.
const StoreUnavailableReason = "VELOCITY_UNAVAILABLE: STATE STORE UNREACHABLE"

// ParseStoreFailurePolicy converts a configured name into a policy.
func ParseStoreFailurePolicy(name string) (StoreFailurePolicy, error) {
	switch p := StoreFailurePolicy(strings.ToLower(strings.TrimSpace(name))); p {
	case PolicyAnomaly, PolicyReprocess, PolicyBlock:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (want anomaly, reprocess or block)", ErrInvalidPolicy, name)
	}
}

// EngineStats tracks decision counts since the engine was created.
type EngineStats struct {
	Decisions       int64
	VelocityFlags   int64
	AnomalyFlags    int64
	BlockedOnStore  int64
	StoreFailures   int64
	ScoringFailures int64
	LastDecisionAt  time.Time
}

// Engine fuses the velocity and anomaly rules into a single verdict.
type Engine struct {
	velocity *VelocityRule
	anomaly  *AnomalyRule
	policy   StoreFailurePolicy

	mu    sync.Mutex
	stats EngineStats
}

// NewEngine creates a decision engine. An empty policy defaults to
// PolicyAnomaly.
func NewEngine(velocity *VelocityRule, anomaly *AnomalyRule, policy StoreFailurePolicy) *Engine {
	if policy == "" {
		policy = PolicyAnomaly
	}
	return &Engine{
		velocity: velocity,
		anomaly:  anomaly,
		policy:   policy,
	}
}

// Policy returns the configured store failure policy.
func (e *Engine) Policy() StoreFailurePolicy {
	return e.policy
}

// Decide produces the verdict for tx.
//
// The velocity rule runs first. When it flags, the verdict is returned at
// once and the scorer is never called. Otherwise the anomaly rule decides.
// A scorer failure produces a non-fraud verdict with ScoringErr set. A
// store failure is handled per the engine's StoreFailurePolicy; only
// PolicyReprocess makes Decide return an error.
func (e *Engine) Decide(ctx context.Context, tx Transaction) (Verdict, error) {
	tx = tx.Normalize()
	log := logging.Ctx(ctx)
	defer e.record(func(s *EngineStats) {
		s.Decisions++
		s.LastDecisionAt = time.Now()
	})

	var verdict Verdict

	finding, err := e.velocity.Evaluate(ctx, tx)
	switch {
	case err != nil:
		e.record(func(s *EngineStats) { s.StoreFailures++ })
		switch e.policy {
		case PolicyReprocess:
			log.Warn().Err(err).Str("user_id", tx.UserID).Str("policy", string(e.policy)).
				Msg("Velocity check unavailable, requesting reprocess")
			return Verdict{VelocityErr: err}, err
		case PolicyBlock:
			log.Warn().Err(err).Str("user_id", tx.UserID).Str("policy", string(e.policy)).
				Msg("Velocity check unavailable, blocking transaction")
			e.record(func(s *EngineStats) { s.BlockedOnStore++ })
			metrics.RecordFraud(string(RuleStoreUnavailable))
			return Verdict{
				IsFraud:     true,
				Reason:      StoreUnavailableReason,
				Rule:        RuleStoreUnavailable,
				VelocityErr: err,
			}, nil
		default:
			log.Warn().Err(err).Str("user_id", tx.UserID).Str("policy", string(e.policy)).
				Msg("Velocity check unavailable, continuing with anomaly check")
			verdict.VelocityErr = err
		}
	case finding.Flagged:
		e.record(func(s *EngineStats) { s.VelocityFlags++ })
		metrics.RecordFraud(string(RuleVelocity))
		return Verdict{IsFraud: true, Reason: finding.Reason, Rule: RuleVelocity}, nil
	}

	finding, score, err := e.anomaly.Evaluate(ctx, tx)
	if err != nil {
		e.record(func(s *EngineStats) { s.ScoringFailures++ })
		metrics.RecordScoringFailure()
		log.Warn().Err(err).Str("user_id", tx.UserID).Msg("Anomaly scoring failed, treating as non-fraud")
		verdict.ScoringErr = err
		return verdict, nil
	}

	verdict.Score = &score
	if finding.Flagged {
		e.record(func(s *EngineStats) { s.AnomalyFlags++ })
		metrics.RecordFraud(string(RuleAnomaly))
		verdict.IsFraud = true
		verdict.Reason = finding.Reason
		verdict.Rule = RuleAnomaly
		return verdict, nil
	}

	return verdict, nil
}

// record applies update to the stats under the engine lock.
func (e *Engine) record(update func(*EngineStats)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	update(&e.stats)
}

// Stats returns a copy of the engine statistics.
func (e *Engine) Stats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}
