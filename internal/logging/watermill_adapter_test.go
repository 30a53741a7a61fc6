// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestWatermillAdapter(t *testing.T) {
	setGlobalLevel(t, zerolog.TraceLevel)

	var buf bytes.Buffer
	adapter := NewWatermillAdapterWithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

	adapter.With(watermill.LogFields{"topic": "fraud-alerts"}).
		Error("publish failed", errors.New("nats: timeout"), watermill.LogFields{"attempt": 2})

	output := buf.String()
	for _, want := range []string{
		`"level":"error"`,
		`"topic":"fraud-alerts"`,
		`"attempt":2`,
		`"error":"nats: timeout"`,
		`"message":"publish failed"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestWatermillAdapter_Levels(t *testing.T) {
	setGlobalLevel(t, zerolog.TraceLevel)

	var buf bytes.Buffer
	adapter := NewWatermillAdapterWithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	adapter.Trace("trace line", nil)
	adapter.Debug("debug line", nil)
	adapter.Info("info line", watermill.LogFields{"subscriber": "sentinel"})

	output := buf.String()
	if strings.Contains(output, "trace line") || strings.Contains(output, "debug line") {
		t.Errorf("below-level messages written: %s", output)
	}
	if !strings.Contains(output, "info line") {
		t.Errorf("info message missing: %s", output)
	}
}
