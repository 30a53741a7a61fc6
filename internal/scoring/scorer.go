// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package scoring

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/sentinel/internal/breaker"
	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/logging"
)

// Scorer kinds.
const (
	KindForest = "forest"
	KindRemote = "remote"
)

// ErrUnknownKind is returned for an unrecognized scorer kind.
var ErrUnknownKind = errors.New("unknown scorer kind")

// Config selects and configures a scorer.
type Config struct {
	Kind      string
	ModelPath string
	RemoteURL string
	Timeout   time.Duration
	Breaker   breaker.Config
}

// New builds the configured scorer.
func New(cfg Config) (detection.Scorer, error) {
	switch cfg.Kind {
	case KindForest, "":
		forest, err := LoadForest(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		logging.Info().
			Str("model_path", cfg.ModelPath).
			Int("trees", len(forest.Trees)).
			Int("max_samples", forest.MaxSamples).
			Msg("Isolation forest loaded")
		return forest, nil
	case KindRemote:
		scorer, err := NewRemoteScorer(RemoteConfig{
			URL:     cfg.RemoteURL,
			Timeout: cfg.Timeout,
			Breaker: cfg.Breaker,
		})
		if err != nil {
			return nil, err
		}
		logging.Info().Str("url", cfg.RemoteURL).Dur("timeout", scorer.timeout).Msg("Remote scorer configured")
		return scorer, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
