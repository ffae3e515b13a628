// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/synthetic"
	"github.com/tomtom215/eventpulse/internal/training"
)

// Stages reported by the engine in addition to the pipeline stages.
const (
	StageGenerate = "generate"
	StagePersist  = "persist"
)

// StartTraining begins a background training run and returns immediately.
// A concurrent request is rejected with ErrTrainingInProgress, never queued.
// The run cannot be cancelled; it completes, fails, or hits the configured
// timeout.
func (e *Engine) StartTraining(opts TrainingOptions) (*models.TrainingRun, error) {
	if err := checkSamples(opts.Samples); err != nil {
		return nil, err
	}
	if err := e.acquireTrainingLock(); err != nil {
		return nil, err
	}

	run := e.beginRun(opts)
	snapshot := *run

	e.runs.Add(1)
	go func() {
		defer e.runs.Done()
		defer e.releaseTrainingLock()
		_ = e.executeRun(context.Background(), run) //nolint:errcheck // outcome is recorded in the run status
	}()

	return &snapshot, nil
}

// Train runs training synchronously under the same single-flight guard as
// StartTraining. Cancellation of ctx does not stop the run.
func (e *Engine) Train(ctx context.Context, opts TrainingOptions) (*models.TrainingRun, error) {
	if err := checkSamples(opts.Samples); err != nil {
		return nil, err
	}
	if err := e.acquireTrainingLock(); err != nil {
		return nil, err
	}
	defer e.releaseTrainingLock()

	run := e.beginRun(opts)
	err := e.executeRun(context.WithoutCancel(ctx), run)

	e.statusMu.RLock()
	out := *run
	e.statusMu.RUnlock()
	return &out, err
}

// Wait blocks until every background run has finished.
func (e *Engine) Wait() {
	e.runs.Wait()
}

// acquireTrainingLock attempts to acquire the training lock.
func (e *Engine) acquireTrainingLock() error {
	if !e.trainMu.TryLock() {
		metrics.RecordTrainingRun("rejected", 0)
		return ErrTrainingInProgress
	}
	e.training.Store(true)
	return nil
}

func (e *Engine) releaseTrainingLock() {
	e.training.Store(false)
	e.trainMu.Unlock()
}

// beginRun records a new running run as the latest and announces it.
func (e *Engine) beginRun(opts TrainingOptions) *models.TrainingRun {
	cfg := e.config.Training
	seed := cfg.Params.Seed
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	samples := opts.Samples
	if samples == 0 {
		samples = e.config.DefaultSamples
	}

	run := &models.TrainingRun{
		RunID:              uuid.New().String(),
		Status:             models.RunRunning,
		Trigger:            opts.Trigger,
		StartedAt:          time.Now().UTC(),
		Samples:            samples,
		Seed:               seed,
		Tuned:              opts.Tune,
		FeatureEngineering: opts.FeatureEngineering,
		ModelName:          cfg.Name,
		ModelVersion:       cfg.Version,
	}

	e.statusMu.Lock()
	e.lastRun = run
	e.statusMu.Unlock()

	snapshot := *run
	e.publish(&models.LifecycleEvent{
		Type:         models.EventTrainingStarted,
		ModelName:    run.ModelName,
		ModelVersion: run.ModelVersion,
		Run:          &snapshot,
	})
	return run
}

// executeRun generates data, trains, persists and swaps in the new model.
// The serving model is only replaced when every step succeeds.
func (e *Engine) executeRun(ctx context.Context, run *models.TrainingRun) error {
	logger := e.logger.With().Str("run_id", run.RunID).Str("trigger", run.Trigger).Logger()
	logger.Info().
		Int("samples", run.Samples).
		Uint64("seed", run.Seed).
		Bool("tune", run.Tuned).
		Bool("feature_engineering", run.FeatureEngineering).
		Msg("starting model training")

	ctx, cancel := context.WithTimeout(ctx, e.config.TrainingTimeout)
	defer cancel()

	m, err := e.trainModel(ctx, run)
	if err != nil {
		e.finishRun(run, nil, err)
		logger.Error().Err(err).Msg("model training failed")
		return err
	}

	storageVersion := 0
	if e.deps.Store != nil {
		meta, err := e.deps.Store.Save(ctx, m)
		if err != nil {
			err = &models.TrainingFailure{Stage: StagePersist, Err: err}
			e.finishRun(run, nil, err)
			logger.Error().Err(err).Msg("model training failed")
			return err
		}
		storageVersion = meta.Version
		e.prune(ctx, m.Name)
	}

	installed := e.Install(m)

	e.statusMu.Lock()
	run.StorageVersion = storageVersion
	e.statusMu.Unlock()
	e.finishRun(run, installed, nil)

	logger.Info().
		Int("generation", installed.Generation).
		Int("storage_version", storageVersion).
		Float64("test_roc_auc", installed.Metrics.TestROCAUC).
		Float64("duration_seconds", run.DurationSeconds).
		Msg("model training complete")
	return nil
}

// trainModel generates the synthetic dataset and runs the pipeline.
func (e *Engine) trainModel(ctx context.Context, run *models.TrainingRun) (*training.TrainedModel, error) {
	events, err := synthetic.Generate(run.Samples, run.Seed)
	if err != nil {
		return nil, &models.TrainingFailure{Stage: StageGenerate, Err: err}
	}

	cfg := e.config.Training
	cfg.Params.Seed = run.Seed
	cfg.FeatureEngineering = run.FeatureEngineering
	cfg.Tune = run.Tuned
	cfg.RunID = run.RunID

	return e.pipeline.Train(ctx, events, cfg)
}

func (e *Engine) prune(ctx context.Context, name string) {
	if e.config.KeepVersions == 0 {
		return
	}
	removed, err := e.deps.Store.Prune(ctx, name, e.config.KeepVersions)
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to prune stored models")
		return
	}
	if removed > 0 {
		e.logger.Debug().Int("removed", removed).Msg("pruned stored models")
	}
}

// finishRun finalizes run status, history, metrics and events.
func (e *Engine) finishRun(run *models.TrainingRun, m *training.TrainedModel, runErr error) {
	finished := time.Now().UTC()
	duration := finished.Sub(run.StartedAt)

	e.statusMu.Lock()
	run.FinishedAt = &finished
	run.DurationSeconds = duration.Seconds()
	if runErr != nil {
		run.Status = models.RunFailed
		run.Error = runErr.Error()
		var failure *models.TrainingFailure
		if errors.As(runErr, &failure) {
			run.Stage = failure.Stage
			run.Error = failure.Err.Error()
		}
	} else {
		run.Status = models.RunCompleted
		run.Generation = m.Generation
		run.TestROCAUC = m.Metrics.TestROCAUC
		run.TestAccuracy = m.Metrics.Test.Accuracy
	}
	snapshot := *run
	e.statusMu.Unlock()

	metrics.RecordTrainingRun(snapshot.Status, duration)

	if e.deps.History != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := e.deps.History.RecordTrainingRun(ctx, &snapshot); err != nil {
			e.logger.Warn().Err(err).Str("run_id", run.RunID).Msg("failed to record training run")
		}
		cancel()
	}

	event := &models.LifecycleEvent{
		Type:         models.EventTrainingCompleted,
		ModelName:    snapshot.ModelName,
		ModelVersion: snapshot.ModelVersion,
		Generation:   snapshot.Generation,
		Run:          &snapshot,
	}
	if runErr != nil {
		event.Type = models.EventTrainingFailed
	}
	e.publish(event)
}

// TrainingStatus reports whether a run is active and the latest run record.
func (e *Engine) TrainingStatus() models.TrainingStatus {
	status := models.TrainingStatus{
		InProgress:      e.training.Load(),
		ModelGeneration: e.currentGeneration(),
	}

	e.statusMu.RLock()
	if e.lastRun != nil {
		run := *e.lastRun
		status.LastRun = &run
	}
	e.statusMu.RUnlock()
	return status
}

// NextModelPath is the artifact path the next saved model will use, or ""
// without storage.
func (e *Engine) NextModelPath() string {
	if e.deps.Store == nil {
		return ""
	}
	name := e.config.Training.Name
	v, _ := e.deps.Store.LatestVersion(name)
	return e.deps.Store.ModelPath(name, v+1)
}

func (e *Engine) currentGeneration() int {
	if m := e.model.Load(); m != nil {
		return m.Generation
	}
	return 0
}

// checkSamples validates a caller-supplied sample count.
func checkSamples(n int) error {
	if n != 0 && (n < MinTrainingSamples || n > MaxTrainingSamples) {
		return &models.ValidationError{Index: -1, Fields: []models.FieldError{{
			Field:   "n_samples",
			Tag:     "range",
			Value:   n,
			Message: fmt.Sprintf("n_samples must be in [%d, %d]", MinTrainingSamples, MaxTrainingSamples),
		}}}
	}
	return nil
}
