// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/sentinel/internal/config"
)

// bundledModel is the absolute path of the shipped isolation forest.
func bundledModel(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "models", "isolation_forest.json"))
	if err != nil {
		t.Fatalf("resolve model path: %v", err)
	}
	return path
}

// loadConfig loads the layered configuration with body as the YAML file,
// from an otherwise empty working directory.
func loadConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Chdir(dir)
	t.Setenv(config.ConfigPathEnvVar, path)

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	return cfg
}
