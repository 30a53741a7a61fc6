// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
)

// LeafNode marks a missing child in the node arrays.
const LeafNode = -1

// DefaultOffset is the decision offset for an uncontaminated forest.
const DefaultOffset = -0.5

const eulerGamma = 0.5772156649

// ErrInvalidModel is returned when a forest fails structural validation.
var ErrInvalidModel = errors.New("invalid isolation forest model")

// Tree is one isolation tree stored as parallel node arrays in pre-order.
// A node is a leaf when both children are LeafNode.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	NodeSamples   []int     `json:"n_node_samples"`
}

// Forest is an isolation forest.
type Forest struct {
	NumFeatures int     `json:"n_features"`
	MaxSamples  int     `json:"max_samples"`
	Offset      float64 `json:"offset"`
	Trees       []Tree  `json:"trees"`

	norm float64
}

// LoadForest reads and validates a forest from a JSON file.
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return ParseForest(data)
}

// ParseForest decodes and validates a forest from JSON.
func ParseForest(data []byte) (*Forest, error) {
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidModel, err)
	}
	if err := f.init(); err != nil {
		return nil, err
	}
	return &f, nil
}

// init validates the structure and precomputes the normalizer.
func (f *Forest) init() error {
	if f.NumFeatures < 1 {
		return fmt.Errorf("%w: n_features must be positive", ErrInvalidModel)
	}
	if f.MaxSamples < 2 {
		return fmt.Errorf("%w: max_samples must be at least 2", ErrInvalidModel)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("%w: no trees", ErrInvalidModel)
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NumFeatures); err != nil {
			return fmt.Errorf("%w: tree %d: %w", ErrInvalidModel, i, err)
		}
	}
	f.norm = averagePathLength(f.MaxSamples)
	return nil
}

func (t *Tree) validate(numFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.NodeSamples) != n {
		return errors.New("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == LeafNode && right == LeafNode {
			if t.NodeSamples[i] < 1 {
				return fmt.Errorf("leaf %d has no samples", i)
			}
			continue
		}
		// Pre-order storage puts children after their parent, which also
		// rules out cycles.
		if left <= i || right <= i || left >= n || right >= n {
			return fmt.Errorf("node %d has invalid children %d, %d", i, left, right)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= numFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, t.Feature[i], numFeatures)
		}
		if math.IsNaN(t.Threshold[i]) {
			return fmt.Errorf("node %d has NaN threshold", i)
		}
	}
	return nil
}

// pathLength returns the isolation depth of x, corrected by the expected
// remaining depth of the samples left in the terminal node.
func (t *Tree) pathLength(x []float64) float64 {
	node, depth := 0, 0
	for t.ChildrenLeft[node] != LeafNode {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
		depth++
	}
	return float64(depth) + averagePathLength(t.NodeSamples[node])
}

// ScoreSamples returns the raw anomaly score in [-1, 0]. Lower is more
// anomalous.
func (f *Forest) ScoreSamples(x []float64) (float64, error) {
	if len(x) != f.NumFeatures {
		return 0, fmt.Errorf("got %d features, model expects %d", len(x), f.NumFeatures)
	}
	var total float64
	for i := range f.Trees {
		total += f.Trees[i].pathLength(x)
	}
	mean := total / float64(len(f.Trees))
	return -math.Pow(2, -mean/f.norm), nil
}

// Score returns the decision function value: ScoreSamples minus Offset.
// It implements detection.Scorer.
func (f *Forest) Score(_ context.Context, features []float64) (float64, error) {
	s, err := f.ScoreSamples(features)
	if err != nil {
		return 0, err
	}
	return s - f.Offset, nil
}

// averagePathLength is the average path length of an unsuccessful search in
// a binary search tree of n nodes.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		fn := float64(n)
		return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
	}
}
