// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

// Package training runs the offline pipeline that produces a TrainedModel:
// leakage stripping, feature derivation, a stratified hold-out split, optional
// grid search with stratified k-fold ROC-AUC, fitting, evaluation and
// importance ranking.
//
// Every failure is returned as *models.TrainingFailure naming the stage.
// Nothing is retried.
package training

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/classifier"
	"github.com/tomtom215/eventpulse/internal/features"
	"github.com/tomtom215/eventpulse/internal/models"
)

// Stage names reported in TrainingFailure.
const (
	StageConfig    = "config"
	StagePrepare   = "prepare"
	StageTransform = "transform"
	StageSplit     = "split"
	StageSearch    = "grid_search"
	StageFit       = "fit"
	StageEvaluate  = "evaluate"
)

// Pipeline trains models. It is stateless apart from its logger and safe for
// concurrent use.
type Pipeline struct {
	logger zerolog.Logger
}

// NewPipeline creates a pipeline.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(logger zerolog.Logger) *Pipeline {
	return &Pipeline{logger: logger.With().Str("component", "training").Logger()}
}

func fail(stage string, err error) error {
	return &models.TrainingFailure{Stage: stage, Err: err}
}

// Train fits a model on labeled events. Outcome fields on the input
// (checked_in_count, revenue, attendance_rate) never reach the features.
//
//nolint:gocritic // cfg passed by value for immutability
func (p *Pipeline) Train(ctx context.Context, records []models.LabeledEvent, cfg Config) (*TrainedModel, error) {
	start := time.Now()
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	logger := p.logger.With().Str("run_id", runID).Logger()

	if err := cfg.Validate(); err != nil {
		return nil, fail(StageConfig, err)
	}

	raw, y := stripOutcomes(records)
	if len(raw) == 0 {
		return nil, fail(StagePrepare, classifier.ErrEmptyDataset)
	}
	if err := checkLabels(y); err != nil {
		return nil, fail(StagePrepare, err)
	}

	fitted, err := features.NewTransformer(cfg.FeatureEngineering).FitTransform(raw)
	if err != nil {
		return nil, fail(StageTransform, err)
	}

	trainIdx, testIdx, err := StratifiedSplit(y, cfg.TestSize, cfg.Params.Seed)
	if err != nil {
		return nil, fail(StageSplit, err)
	}
	xtr, ytr := subset(fitted.Matrix, y, trainIdx)
	xte, yte := subset(fitted.Matrix, y, testIdx)

	folds, err := StratifiedKFold(ytr, cfg.CVFolds, cfg.Params.Seed)
	if err != nil {
		return nil, fail(StageSplit, err)
	}

	logger.Info().
		Int("samples", len(raw)).
		Int("train", len(trainIdx)).
		Int("test", len(testIdx)).
		Int("features", len(fitted.Columns)).
		Bool("tune", cfg.Tune).
		Msg("training started")

	params := cfg.Params
	var search *SearchResult
	var cvScores []float64
	if cfg.Tune {
		search, err = GridSearch(ctx, xtr, ytr, cfg.Grid, cfg.Params, folds, searchWorkers(cfg.Workers))
		if err != nil {
			return nil, fail(StageSearch, err)
		}
		params = search.Best
		cvScores = search.Trials[search.BestIndex].FoldScores
		logger.Info().
			Int("combinations", len(search.Trials)).
			Float64("best_cv_auc", search.BestScore).
			Str("best_params", params.String()).
			Msg("grid search complete")
	} else {
		cvScores, err = crossValidate(ctx, xtr, ytr, folds, params, cfg.Workers)
		if err != nil {
			return nil, fail(StageEvaluate, err)
		}
	}

	forest, err := classifier.Fit(ctx, xtr, ytr, params, cfg.Workers)
	if err != nil {
		return nil, fail(StageFit, err)
	}

	metrics, err := evaluate(forest, xtr, ytr, xte, yte, cvScores)
	if err != nil {
		return nil, fail(StageEvaluate, err)
	}

	ranked, err := classifier.Rank(fitted.Columns, forest.FeatureImportances())
	if err != nil {
		return nil, fail(StageEvaluate, err)
	}

	model := &TrainedModel{
		Name:        cfg.Name,
		Version:     cfg.Version,
		RunID:       runID,
		TrainedAt:   time.Now().UTC(),
		Forest:      forest,
		Columns:     fitted.Columns,
		Stats:       fitted.Stats,
		Config:      cfg,
		Params:      params,
		Metrics:     *metrics,
		Importances: ranked,
		Search:      search,
		Samples:     len(raw),
	}

	ev := logger.Info().
		Dur("duration", time.Since(start)).
		Float64("test_accuracy", metrics.Test.Accuracy).
		Float64("test_roc_auc", metrics.TestROCAUC).
		Float64("cv_roc_auc_mean", metrics.CVROCAUCMean)
	for _, imp := range model.TopImportances(cfg.TopImportances) {
		ev = ev.Float64("importance_"+imp.Feature, imp.Importance)
	}
	ev.Msg("training complete")

	return model, nil
}

// stripOutcomes keeps only the pre-event fields and the label.
func stripOutcomes(records []models.LabeledEvent) ([]models.EventRecord, []int) {
	raw := make([]models.EventRecord, len(records))
	y := make([]int, len(records))
	for i := range records {
		raw[i] = records[i].Features()
		y[i] = records[i].Success
	}
	return raw, y
}

func searchWorkers(workers int) int {
	if workers <= 0 {
		return 1
	}
	return workers
}

func evaluate(forest *classifier.Forest, xtr [][]float64, ytr []int, xte [][]float64, yte []int, cvScores []float64) (*Metrics, error) {
	trainProba, err := forest.PredictProbaBatch(xtr)
	if err != nil {
		return nil, err
	}
	testProba, err := forest.PredictProbaBatch(xte)
	if err != nil {
		return nil, err
	}
	auc, err := ROCAUC(yte, testProba)
	if err != nil {
		return nil, err
	}
	mean, std := meanStd(cvScores)

	return &Metrics{
		Train:        Classification(ytr, trainProba),
		Test:         Classification(yte, testProba),
		TestROCAUC:   auc,
		CVROCAUCMean: mean,
		CVROCAUCStd:  std,
		CVScores:     cvScores,
		Confusion:    Confusion(yte, testProba),
		TrainSamples: len(ytr),
		TestSamples:  len(yte),
	}, nil
}
