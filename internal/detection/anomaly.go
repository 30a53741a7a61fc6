// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"fmt"
	"math"

	"github.com/tomtom215/sentinel/internal/metrics"
)

const (
	// DefaultAnomalyThreshold is the score below which a transaction is flagged.
	DefaultAnomalyThreshold = -0.15

	// AmountScale normalizes the amount feature.
	AmountScale = 1000.0
)

// Features derives the scorer input for tx: [amount/1000, 1.0].
func Features(tx Transaction) []float64 {
	return []float64{tx.Amount / AmountScale, 1.0}
}

// AnomalyRule flags transactions whose anomaly score is strictly below a
// threshold.
type AnomalyRule struct {
	scorer    Scorer
	threshold float64
}

// NewAnomalyRule creates an anomaly rule over scorer.
func NewAnomalyRule(scorer Scorer, threshold float64) *AnomalyRule {
	return &AnomalyRule{scorer: scorer, threshold: threshold}
}

// Threshold returns the flagging threshold.
func (r *AnomalyRule) Threshold() float64 {
	return r.threshold
}

// Score returns the anomaly score for tx. Scorer errors and non-finite
// scores are wrapped in ErrScoringFailure.
func (r *AnomalyRule) Score(ctx context.Context, tx Transaction) (float64, error) {
	score, err := r.scorer.Score(ctx, Features(tx))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrScoringFailure, err)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: non-finite score %v", ErrScoringFailure, score)
	}
	metrics.RecordAnomalyScore(score)
	return score, nil
}

// Evaluate scores tx and flags it when score < threshold. A score equal to
// the threshold does not flag.
func (r *AnomalyRule) Evaluate(ctx context.Context, tx Transaction) (Finding, float64, error) {
	score, err := r.Score(ctx, tx)
	if err != nil {
		return Finding{}, 0, err
	}
	if score < r.threshold {
		return Finding{
			Flagged: true,
			Reason:  fmt.Sprintf("AI_ANOMALY_SCORE: %.4f", score),
		}, score, nil
	}
	return Finding{}, score, nil
}
