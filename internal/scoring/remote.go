// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package scoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sentinel/internal/breaker"
)

// DefaultRemoteTimeout bounds a single remote scoring call.
const DefaultRemoteTimeout = 500 * time.Millisecond

// maxResponseBytes caps how much of a scoring response is read.
const maxResponseBytes = 64 << 10

// RemoteConfig configures a RemoteScorer.
type RemoteConfig struct {
	URL     string
	Timeout time.Duration
	Breaker breaker.Config
}

type scoreRequest struct {
	Features []float64 `json:"features"`
}

type scoreResponse struct {
	Score *float64 `json:"score"`
}

// RemoteScorer requests scores from an HTTP model server.
type RemoteScorer struct {
	url     string
	timeout time.Duration
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[float64]
}

// NewRemoteScorer validates cfg and creates a scorer.
func NewRemoteScorer(cfg RemoteConfig) (*RemoteScorer, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("remote scorer: invalid url %q", cfg.URL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRemoteTimeout
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = breaker.DefaultConfig("remote-scorer")
	}

	return &RemoteScorer{
		url:     u.String(),
		timeout: cfg.Timeout,
		client:  &http.Client{Timeout: cfg.Timeout},
		cb:      breaker.New[float64](cfg.Breaker),
	}, nil
}

// Score implements detection.Scorer.
func (r *RemoteScorer) Score(ctx context.Context, features []float64) (float64, error) {
	return r.cb.Execute(func() (float64, error) {
		return r.call(ctx, features)
	})
}

// State returns the circuit breaker state.
func (r *RemoteScorer) State() gobreaker.State {
	return r.cb.State()
}

func (r *RemoteScorer) call(ctx context.Context, features []float64) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := json.Marshal(scoreRequest{Features: features})
	if err != nil {
		return 0, fmt.Errorf("encode score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("score request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, fmt.Errorf("read score response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("score request: unexpected status %d", resp.StatusCode)
	}

	var out scoreResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("decode score response: %w", err)
	}
	if out.Score == nil {
		return 0, errors.New("decode score response: missing score")
	}
	return *out.Score, nil
}
