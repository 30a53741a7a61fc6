// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/sentinel/internal/logging"
)

// PipelineRunner is satisfied by *eventprocessor.Pipeline.
type PipelineRunner interface {
	Run(ctx context.Context) error
}

// PipelineService runs the detection pipeline under supervision.
type PipelineService struct {
	pipeline PipelineRunner
	fatal    []error
	starts   atomic.Int64
}

// NewPipelineService wraps pipeline. When Run fails with an error matching
// one of fatal (for example a closed consumer), the service terminates the
// supervisor tree rather than being restarted.
func NewPipelineService(pipeline PipelineRunner, fatal ...error) *PipelineService {
	return &PipelineService{pipeline: pipeline, fatal: fatal}
}

// Serve implements suture.Service.
func (s *PipelineService) Serve(ctx context.Context) error {
	if n := s.starts.Add(1); n > 1 {
		logging.Warn().Int64("attempt", n).Msg("Restarting detection pipeline")
	}

	err := s.pipeline.Run(ctx)
	if err == nil || ctx.Err() != nil {
		return ctx.Err()
	}

	for _, target := range s.fatal {
		if errors.Is(err, target) {
			logging.Error().Err(err).Msg("Detection pipeline cannot continue")
			return fmt.Errorf("%w: %w", suture.ErrTerminateSupervisorTree, err)
		}
	}
	logging.Error().Err(err).Msg("Detection pipeline failed")
	return err
}

// Starts returns how many times Serve has been called.
func (s *PipelineService) Starts() int64 {
	return s.starts.Load()
}

// String implements fmt.Stringer.
func (s *PipelineService) String() string {
	return "detection-pipeline"
}
