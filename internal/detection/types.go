// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"time"
)

const (
	// DefaultTraceID replaces an absent traceId.
	DefaultTraceID = "N/A"

	// DefaultLocation replaces an absent location.
	DefaultLocation = "UNKNOWN"

	// StatusBlocked is the status of every alert this pipeline emits.
	StatusBlocked = "BLOCKED"
)

// RuleType identifies which check produced a fraud verdict.
type RuleType string

const (
	// RuleVelocity flags a location change within the record TTL.
	RuleVelocity RuleType = "velocity"

	// RuleAnomaly flags a transaction the scorer considers an outlier.
	RuleAnomaly RuleType = "anomaly"

	// RuleStoreUnavailable flags a transaction blocked because the velocity
	// check could not run under PolicyBlock.
	RuleStoreUnavailable RuleType = "store_unavailable"
)

// Transaction is an inbound financial transaction event.
type Transaction struct {
	TraceID  string  `json:"traceId"`
	UserID   string  `json:"userId"`
	Amount   float64 `json:"amount"`
	Location string  `json:"location"`
}

// Normalize returns a copy with empty optional fields replaced by their
// defaults.
func (tx Transaction) Normalize() Transaction {
	if tx.TraceID == "" {
		tx.TraceID = DefaultTraceID
	}
	if tx.Location == "" {
		tx.Location = DefaultLocation
	}
	return tx
}

// Verdict is the outcome of Engine.Decide for one transaction.
// Reason is non-empty if and only if IsFraud is true.
type Verdict struct {
	IsFraud bool
	Reason  string

	// Rule is the check that flagged the transaction; empty when clean.
	Rule RuleType

	// Score is the anomaly score when the scorer ran.
	Score *float64

	// VelocityErr is set when the velocity check was indeterminate because
	// the state store failed.
	VelocityErr error

	// ScoringErr is set when the scorer failed and the anomaly check was
	// treated as non-fraud.
	ScoringErr error
}

// Degraded reports whether any check failed while producing the verdict.
func (v Verdict) Degraded() bool {
	return v.VelocityErr != nil || v.ScoringErr != nil
}

// Alert is the outbound record for a transaction judged fraudulent.
type Alert struct {
	TraceID   string  `json:"traceId"`
	Reason    string  `json:"reason"`
	UserID    string  `json:"userId"`
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
}

// NewAlert builds the alert for a flagged transaction detected at the given time.
func NewAlert(tx Transaction, verdict Verdict, detectedAt time.Time) *Alert {
	tx = tx.Normalize()
	return &Alert{
		TraceID:   tx.TraceID,
		Reason:    verdict.Reason,
		UserID:    tx.UserID,
		Status:    StatusBlocked,
		Timestamp: EpochSeconds(detectedAt),
	}
}

// EpochSeconds converts t to fractional Unix seconds.
func EpochSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}

// LocationStore holds the last-seen location per user with a per-key TTL.
// An expired record must be reported as not found. Implementations return
// raw errors; the velocity rule classifies them.
type LocationStore interface {
	GetLocation(ctx context.Context, userID string) (location string, found bool, err error)
	SetLocation(ctx context.Context, userID, location string, ttl time.Duration) error
}

// Scorer is a pure anomaly decision function. Lower scores are more
// anomalous; negative scores indicate outliers.
type Scorer interface {
	Score(ctx context.Context, features []float64) (float64, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, features []float64) (float64, error)

// Score calls f.
func (f ScorerFunc) Score(ctx context.Context, features []float64) (float64, error) {
	return f(ctx, features)
}

// AlertSink receives alerts for flagged transactions.
type AlertSink interface {
	Send(ctx context.Context, alert *Alert) error
}

// AlertSinkFunc adapts a function to the AlertSink interface.
type AlertSinkFunc func(ctx context.Context, alert *Alert) error

// Send calls f.
func (f AlertSinkFunc) Send(ctx context.Context, alert *Alert) error {
	return f(ctx, alert)
}
