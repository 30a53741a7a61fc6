// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package main trains an isolation forest and writes it as JSON for the
// forest scorer.
//
// Without -input the forest is trained on the reference distribution: two
// Gaussian clusters (sigma 0.3) centred on (2, 2) and (-2, -2), 100 points
// each, in the detector's feature space [amount/1000, 1.0]. With -input,
// each line of the file is a comma-separated feature row.
//
// Usage:
//
//	go run ./cmd/forestgen -out models/isolation_forest.json
//	go run ./cmd/forestgen -input features.csv -trees 200 -max-samples 256
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/scoring"
)

func main() {
	out := flag.String("out", "models/isolation_forest.json", "output path")
	input := flag.String("input", "", "CSV of feature rows (default: reference distribution)")
	trees := flag.Int("trees", 100, "number of trees")
	maxSamples := flag.Int("max-samples", 100, "subsample size per tree")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	logging.Init(logging.DefaultConfig())

	var samples [][]float64
	var err error
	if *input != "" {
		samples, err = readSamples(*input)
		if err != nil {
			logging.Fatal().Err(err).Str("input", *input).Msg("Failed to read samples")
		}
	} else {
		samples = referenceSamples(100, *seed)
	}

	forest, err := scoring.Fit(samples, scoring.FitConfig{
		Trees:      *trees,
		MaxSamples: *maxSamples,
		Seed:       *seed,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to fit forest")
	}

	f, err := os.Create(*out)
	if err != nil {
		logging.Fatal().Err(err).Str("out", *out).Msg("Failed to create output")
	}
	if err := scoring.WriteForest(f, forest); err != nil {
		f.Close()
		logging.Fatal().Err(err).Msg("Failed to write forest")
	}
	if err := f.Close(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to close output")
	}

	logging.Info().
		Str("out", *out).
		Int("samples", len(samples)).
		Int("trees", len(forest.Trees)).
		Int("max_samples", forest.MaxSamples).
		Msg("Isolation forest written")
}

func referenceSamples(perCluster int, seed uint64) [][]float64 {
	rng := rand.New(rand.NewPCG(seed, seed))
	samples := make([][]float64, 0, 2*perCluster)
	for i := 0; i < perCluster; i++ {
		dx, dy := 0.3*rng.NormFloat64(), 0.3*rng.NormFloat64()
		samples = append(samples, []float64{dx + 2, dy + 2}, []float64{dx - 2, dy - 2})
	}
	return samples
}

func readSamples(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var samples [][]float64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, ",")
		row := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			row[i] = v
		}
		samples = append(samples, row)
	}
	return samples, scanner.Err()
}
