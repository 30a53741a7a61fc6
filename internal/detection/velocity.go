// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sentinel/internal/metrics"
)

// DefaultLocationTTL is how long a user's last-seen location is remembered.
const DefaultLocationTTL = 300 * time.Second

// DefaultStoreTimeout bounds each state store round trip.
const DefaultStoreTimeout = 250 * time.Millisecond

// VelocityConfig configures the velocity rule.
type VelocityConfig struct {
	// TTL is the lifetime of a location record from its last write.
	TTL time.Duration

	// Timeout bounds each store Get and Set call. Zero disables the bound.
	Timeout time.Duration
}

// DefaultVelocityConfig returns the default velocity rule configuration.
func DefaultVelocityConfig() VelocityConfig {
	return VelocityConfig{
		TTL:     DefaultLocationTTL,
		Timeout: DefaultStoreTimeout,
	}
}

// Finding is the result of a single rule evaluation.
type Finding struct {
	Flagged bool
	Reason  string
}

// VelocityRule flags a transaction whose location differs from the
// location recorded for the same user within the TTL window.
//
// The comparison is exact string inequality with no notion of distance or
// elapsed time.
type VelocityRule struct {
	store   LocationStore
	ttl     time.Duration
	timeout time.Duration
}

// NewVelocityRule creates a velocity rule over store.
func NewVelocityRule(store LocationStore, cfg VelocityConfig) *VelocityRule {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultLocationTTL
	}
	return &VelocityRule{
		store:   store,
		ttl:     cfg.TTL,
		timeout: cfg.Timeout,
	}
}

// Evaluate checks tx against the stored location for tx.UserID.
//
// On a violation the stored record is left as is so the jump stays visible
// for the rest of its TTL. Otherwise the record is written with tx's
// location and a fresh TTL. Store failures return an error wrapping
// ErrStateStoreUnavailable and never a clean Finding.
func (r *VelocityRule) Evaluate(ctx context.Context, tx Transaction) (Finding, error) {
	tx = tx.Normalize()

	last, found, err := r.get(ctx, tx.UserID)
	if err != nil {
		metrics.RecordStateStoreError("get")
		metrics.RecordVelocityCheck(metrics.VelocityUnavailable)
		return Finding{}, fmt.Errorf("%w: get location for user %s: %w", ErrStateStoreUnavailable, tx.UserID, err)
	}

	if found && last != tx.Location {
		metrics.RecordVelocityCheck(metrics.VelocityViolation)
		return Finding{
			Flagged: true,
			Reason:  fmt.Sprintf("VELOCITY_VIOLATION: JUMPED FROM %s TO %s", last, tx.Location),
		}, nil
	}

	if err := r.set(ctx, tx.UserID, tx.Location); err != nil {
		metrics.RecordStateStoreError("set")
		metrics.RecordVelocityCheck(metrics.VelocityUnavailable)
		return Finding{}, fmt.Errorf("%w: set location for user %s: %w", ErrStateStoreUnavailable, tx.UserID, err)
	}

	if found {
		metrics.RecordVelocityCheck(metrics.VelocityMatch)
	} else {
		metrics.RecordVelocityCheck(metrics.VelocityFirstSeen)
	}
	return Finding{}, nil
}

func (r *VelocityRule) get(ctx context.Context, userID string) (string, bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.store.GetLocation(ctx, userID)
}

func (r *VelocityRule) set(ctx context.Context, userID, location string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.store.SetLocation(ctx, userID, location, r.ttl)
}

func (r *VelocityRule) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
