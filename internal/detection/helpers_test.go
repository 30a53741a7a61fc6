// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"sync"
	"time"
)

type storedLocation struct {
	location  string
	expiresAt time.Time
}

// fakeStore is an in-memory LocationStore with a controllable clock.
type fakeStore struct {
	mu      sync.Mutex
	now     time.Time
	records map[string]storedLocation
	getErr  error
	setErr  error
	block   bool
	gets    int
	sets    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		records: make(map[string]storedLocation),
	}
}

func (s *fakeStore) GetLocation(ctx context.Context, userID string) (string, bool, error) {
	s.mu.Lock()
	s.gets++
	block, err := s.block, s.getErr
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", false, ctx.Err()
	}
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok || !s.now.Before(rec.expiresAt) {
		return "", false, nil
	}
	return rec.location, true, nil
}

func (s *fakeStore) SetLocation(_ context.Context, userID, location string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.records[userID] = storedLocation{location: location, expiresAt: s.now.Add(ttl)}
	return nil
}

func (s *fakeStore) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func (s *fakeStore) record(userID string) (storedLocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	return rec, ok
}

// countingScorer returns a fixed score and counts calls.
type countingScorer struct {
	mu       sync.Mutex
	score    float64
	err      error
	calls    int
	features [][]float64
}

func (c *countingScorer) Score(_ context.Context, features []float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.features = append(c.features, append([]float64(nil), features...))
	return c.score, c.err
}

func (c *countingScorer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// recordingSink collects alerts.
type recordingSink struct {
	mu     sync.Mutex
	alerts []*Alert
	err    error
}

func (r *recordingSink) Send(_ context.Context, alert *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *recordingSink) Alerts() []*Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Alert(nil), r.alerts...)
}
