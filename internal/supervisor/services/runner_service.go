// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ErrRunnerExited is returned when a runner stops while its context is
// still live. Suture treats it as a failure and restarts the runner.
var ErrRunnerExited = errors.New("runner exited before shutdown")

// Runner is a context-bound loop such as *websocket.Hub.
type Runner interface {
	RunWithContext(ctx context.Context) error
}

// RunnerService adapts a Runner to suture.Service.
//
//	hub := websocket.NewHub(logger)
//	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub, logger))
type RunnerService struct {
	name   string
	runner Runner
	logger zerolog.Logger
	starts atomic.Int64
}

// NewRunnerService wraps runner under the given supervisor name.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRunnerService(name string, runner Runner, logger zerolog.Logger) *RunnerService {
	return &RunnerService{
		name:   name,
		runner: runner,
		logger: logger.With().Str("service", name).Logger(),
	}
}

// Serve implements suture.Service. Shutdown yields the context error;
// any other return is reported as a failure carrying the service name.
func (s *RunnerService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n > 1 {
		s.logger.Info().Int64("start", n).Msg("runner restarting")
	}

	err := s.runner.RunWithContext(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err == nil {
		err = ErrRunnerExited
	}
	s.logger.Warn().Err(err).Msg("runner stopped")
	return fmt.Errorf("%s: %w", s.name, err)
}

// Starts reports how many times Serve has been entered.
func (s *RunnerService) Starts() int64 {
	return s.starts.Load()
}

func (s *RunnerService) String() string {
	return s.name
}
