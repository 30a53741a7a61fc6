// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package scoring

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/goccy/go-json"
)

// FitConfig controls forest training.
type FitConfig struct {
	Trees      int
	MaxSamples int
	Seed       uint64
}

// DefaultFitConfig returns 100 trees of up to 256 samples.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		Trees:      100,
		MaxSamples: 256,
		Seed:       42,
	}
}

// Fit trains an isolation forest on samples. Each tree sees a random
// subsample of at most cfg.MaxSamples rows and grows until every row is
// isolated or the height limit log2(subsample) is reached.
func Fit(samples [][]float64, cfg FitConfig) (*Forest, error) {
	if len(samples) < 2 {
		return nil, errors.New("fit: need at least 2 samples")
	}
	numFeatures := len(samples[0])
	if numFeatures == 0 {
		return nil, errors.New("fit: samples have no features")
	}
	for i, row := range samples {
		if len(row) != numFeatures {
			return nil, fmt.Errorf("fit: row %d has %d features, want %d", i, len(row), numFeatures)
		}
	}
	if cfg.Trees < 1 {
		cfg.Trees = DefaultFitConfig().Trees
	}
	maxSamples := cfg.MaxSamples
	if maxSamples < 2 || maxSamples > len(samples) {
		maxSamples = len(samples)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	heightLimit := int(math.Ceil(math.Log2(float64(maxSamples))))

	forest := &Forest{
		NumFeatures: numFeatures,
		MaxSamples:  maxSamples,
		Offset:      DefaultOffset,
		Trees:       make([]Tree, 0, cfg.Trees),
	}
	for i := 0; i < cfg.Trees; i++ {
		perm := rng.Perm(len(samples))[:maxSamples]
		rows := make([][]float64, maxSamples)
		for j, idx := range perm {
			rows[j] = samples[idx]
		}
		b := &treeBuilder{rng: rng, numFeatures: numFeatures, heightLimit: heightLimit}
		b.grow(rows, 0)
		forest.Trees = append(forest.Trees, b.tree)
	}

	if err := forest.init(); err != nil {
		return nil, err
	}
	return forest, nil
}

type treeBuilder struct {
	rng         *rand.Rand
	numFeatures int
	heightLimit int
	tree        Tree
}

// grow appends the subtree for rows in pre-order and returns its node index.
func (b *treeBuilder) grow(rows [][]float64, depth int) int {
	node := b.addNode(len(rows))
	if depth >= b.heightLimit || len(rows) <= 1 {
		return node
	}

	feature := b.rng.IntN(b.numFeatures)
	lo, hi := rows[0][feature], rows[0][feature]
	for _, r := range rows[1:] {
		lo = math.Min(lo, r[feature])
		hi = math.Max(hi, r[feature])
	}
	if lo == hi {
		return node
	}

	threshold := lo + b.rng.Float64()*(hi-lo)
	if threshold >= hi {
		threshold = lo
	}
	var left, right [][]float64
	for _, r := range rows {
		if r[feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	b.tree.Feature[node] = feature
	b.tree.Threshold[node] = threshold
	b.tree.ChildrenLeft[node] = b.grow(left, depth+1)
	b.tree.ChildrenRight[node] = b.grow(right, depth+1)
	return node
}

func (b *treeBuilder) addNode(samples int) int {
	b.tree.ChildrenLeft = append(b.tree.ChildrenLeft, LeafNode)
	b.tree.ChildrenRight = append(b.tree.ChildrenRight, LeafNode)
	b.tree.Feature = append(b.tree.Feature, LeafNode)
	b.tree.Threshold = append(b.tree.Threshold, 0)
	b.tree.NodeSamples = append(b.tree.NodeSamples, samples)
	return len(b.tree.NodeSamples) - 1
}

// WriteForest encodes f as JSON.
func WriteForest(w io.Writer, f *Forest) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode forest: %w", err)
	}
	return nil
}
