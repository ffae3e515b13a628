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

	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/predict/storage"
	"github.com/tomtom215/eventpulse/internal/training"
)

// DefaultTopImportances is the number of ranked features in ModelInfo.
const DefaultTopImportances = 10

// Reload loads a stored model (version 0 means latest) and swaps it in.
// The serving model is untouched when loading fails.
func (e *Engine) Reload(ctx context.Context, version int) (*models.ModelInfo, error) {
	if e.deps.Store == nil {
		return nil, ErrNoStore
	}

	m, meta, err := e.deps.Store.Load(ctx, e.config.Training.Name, version)
	metrics.RecordModelReload(err)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrModelNotFound, err)
		}
		return nil, fmt.Errorf("load model: %w", err)
	}

	installed := e.Install(m)
	e.logger.Info().
		Str("model", installed.String()).
		Int("storage_version", meta.Version).
		Str("run_id", installed.RunID).
		Msg("model reloaded from storage")

	e.publish(&models.LifecycleEvent{
		Type:         models.EventModelReloaded,
		ModelName:    installed.Name,
		ModelVersion: installed.Version,
		Generation:   installed.Generation,
	})

	return describe(installed, DefaultTopImportances), nil
}

// Versions lists stored versions of the configured model, newest first.
func (e *Engine) Versions(ctx context.Context) ([]storage.ModelMetadata, error) {
	if e.deps.Store == nil {
		return nil, ErrNoStore
	}
	return e.deps.Store.List(ctx, e.config.Training.Name)
}

// ModelInfo describes the serving model with its top n importances.
// n <= 0 uses DefaultTopImportances.
func (e *Engine) ModelInfo(n int) (*models.ModelInfo, error) {
	m := e.model.Load()
	if m == nil {
		return nil, &models.UntrainedModelError{Op: "model info"}
	}
	if n <= 0 {
		n = DefaultTopImportances
	}
	return describe(m, n), nil
}

func describe(m *training.TrainedModel, n int) *models.ModelInfo {
	top := m.TopImportances(n)
	imps := make([]models.FeatureImportance, len(top))
	for i, imp := range top {
		imps[i] = models.FeatureImportance{Feature: imp.Feature, Importance: imp.Importance}
	}

	return &models.ModelInfo{
		ModelName:          m.Name,
		ModelVersion:       m.Version,
		Generation:         m.Generation,
		RunID:              m.RunID,
		TrainedAt:          m.TrainedAt,
		FeaturesCount:      len(m.Columns),
		Samples:            m.Samples,
		Metrics:            m.Metrics,
		FeatureImportances: imps,
		Config: models.ModelConfigInfo{
			NEstimators:        m.Params.NEstimators,
			MaxDepth:           m.Params.MaxDepth,
			MinSamplesSplit:    m.Params.MinSamplesSplit,
			MinSamplesLeaf:     m.Params.MinSamplesLeaf,
			FeatureEngineering: m.Config.FeatureEngineering,
		},
	}
}

// Health reports liveness and model readiness. The service is "healthy" with
// a model and "degraded" without one.
func (e *Engine) Health() models.HealthResponse {
	resp := models.HealthResponse{
		Status:        "degraded",
		UptimeSeconds: time.Since(e.started).Seconds(),
	}
	if m := e.model.Load(); m != nil {
		name, version := m.Name, m.Version
		resp.Status = "healthy"
		resp.ModelLoaded = true
		resp.ModelName = &name
		resp.ModelVersion = &version
	}
	return resp
}

// Stats reports request counters and, when history is enabled, the stored
// prediction summary.
func (e *Engine) Stats(ctx context.Context) models.ServiceStats {
	uptime := time.Since(e.started)
	total := e.predictions.Load()

	stats := models.ServiceStats{
		TotalPredictions:   total,
		CacheHits:          e.cacheHits.Load(),
		FailedPredictions:  e.failures.Load(),
		UptimeSeconds:      uptime.Seconds(),
		UptimeHours:        uptime.Hours(),
		ModelLoaded:        e.Ready(),
		TrainingInProgress: e.training.Load(),
		ModelGeneration:    e.currentGeneration(),
	}
	if hours := uptime.Hours(); hours > 0 {
		stats.PredictionsPerHour = float64(total) / hours
	}

	if e.deps.History != nil {
		summary, err := e.deps.History.Summary(ctx)
		if err != nil {
			e.logger.Warn().Err(err).Msg("failed to read history summary")
		} else {
			stats.History = summary
		}
	}
	return stats
}

// Uptime is the time since the engine was created.
func (e *Engine) Uptime() time.Duration {
	return time.Since(e.started)
}
