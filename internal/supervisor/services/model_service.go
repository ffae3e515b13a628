// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/predict"
)

// Training triggers recorded on runs started by the model service.
const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
)

// ModelEngine is the part of *predict.Engine the model service drives.
type ModelEngine interface {
	Ready() bool
	Reload(ctx context.Context, version int) (*models.ModelInfo, error)
	Train(ctx context.Context, opts predict.TrainingOptions) (*models.TrainingRun, error)
}

// ModelServiceConfig holds configuration for the model lifecycle service.
type ModelServiceConfig struct {
	// TrainOnStartup bootstraps a model from synthetic data when storage
	// holds none.
	TrainOnStartup bool

	// RetrainInterval schedules periodic retraining. 0 disables it.
	RetrainInterval time.Duration

	// Options are the training options for bootstrap and scheduled runs.
	Options predict.TrainingOptions
}

// ModelService owns the serving model's lifecycle: it loads the latest
// stored version at startup, bootstraps one when none exists, and retrains
// on a schedule.
type ModelService struct {
	engine       ModelEngine
	config       ModelServiceConfig
	logger       zerolog.Logger
	name         string
	bootstrapped bool
}

// NewModelService creates a new model lifecycle service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModelService(engine ModelEngine, cfg ModelServiceConfig, logger zerolog.Logger) *ModelService {
	return &ModelService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "model").Logger(),
		name:   "model-service",
	}
}

// Serve implements the suture.Service interface.
//
// Startup work runs once per process; a restart after a failure goes
// straight to the retraining loop. Without a retrain interval the service
// exits with suture.ErrDoNotRestart once startup is done.
func (s *ModelService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("retrain_interval", s.config.RetrainInterval).
		Msg("model service starting")

	if !s.bootstrapped {
		s.bootstrap(ctx)
		s.bootstrapped = true
	}

	if s.config.RetrainInterval <= 0 {
		s.logger.Debug().Msg("periodic retraining disabled")
		return suture.ErrDoNotRestart
	}

	ticker := time.NewTicker(s.config.RetrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("model service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled retraining triggered")
			if err := s.train(ctx, TriggerSchedule); err != nil {
				if errors.Is(err, predict.ErrTrainingInProgress) {
					s.logger.Info().Msg("skipping scheduled retraining, a run is already in progress")
					continue
				}
				s.logger.Warn().Err(err).Msg("scheduled retraining failed, keeping current model")
			}
		}
	}
}

// bootstrap installs the latest stored model, or trains one when storage is
// empty and bootstrap training is enabled.
func (s *ModelService) bootstrap(ctx context.Context) {
	if s.engine.Ready() {
		return
	}

	info, err := s.engine.Reload(ctx, 0)
	if err == nil {
		s.logger.Info().
			Str("model", info.ModelName).
			Str("version", info.ModelVersion).
			Int("generation", info.Generation).
			Msg("loaded stored model")
		return
	}

	switch {
	case errors.Is(err, predict.ErrModelNotFound), errors.Is(err, predict.ErrNoStore):
		s.logger.Info().Err(err).Msg("no stored model available")
	default:
		s.logger.Warn().Err(err).Msg("failed to load stored model")
	}

	if !s.config.TrainOnStartup {
		s.logger.Warn().Msg("serving without a model until training is requested")
		return
	}

	if err := s.train(ctx, TriggerStartup); err != nil {
		s.logger.Error().Err(err).Msg("bootstrap training failed")
	}
}

func (s *ModelService) train(ctx context.Context, trigger string) error {
	opts := s.config.Options
	opts.Trigger = trigger

	start := time.Now()
	s.logger.Info().Str("trigger", trigger).Msg("starting model training")

	run, err := s.engine.Train(ctx, opts)
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("run_id", run.RunID).
		Dur("duration", time.Since(start)).
		Msg("model training complete")
	return nil
}

// String returns the service name for logging.
func (s *ModelService) String() string {
	return s.name
}
