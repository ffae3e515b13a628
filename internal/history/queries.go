// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/eventpulse/internal/models"
)

// DefaultRunLimit bounds RecentRuns when the caller passes no limit.
const DefaultRunLimit = 20

// Summary aggregates the stored predictions and training runs.
func (s *Store) Summary(ctx context.Context) (*models.HistorySummary, error) {
	summary := &models.HistorySummary{ByCategory: []models.CategoryStats{}}

	var last sql.NullTime
	err := s.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(AVG(label), 0),
			COALESCE(AVG(probability), 0),
			MAX(predicted_at)
		FROM predictions`).Scan(&summary.Predictions, &summary.PositiveRate, &summary.MeanProbability, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize predictions: %w", err)
	}
	if last.Valid {
		t := last.Time.UTC()
		summary.LastPredictionAt = &t
	}

	err = s.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM training_runs`).Scan(&summary.TrainingRuns, &summary.FailedRuns)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize training runs: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT category, COUNT(*), AVG(probability)
		FROM predictions
		GROUP BY category
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.CategoryStats
		if err := rows.Scan(&c.Category, &c.Predictions, &c.MeanProbability); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		summary.ByCategory = append(summary.ByCategory, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rows: %w", err)
	}

	return summary, nil
}

// RecentRuns returns up to limit training runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]models.TrainingRun, error) {
	if limit <= 0 {
		limit = DefaultRunLimit
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT
			run_id, status, COALESCE(trigger_source, ''), started_at, finished_at,
			COALESCE(duration_seconds, 0), samples, seed, tuned, feature_engineering,
			model_name, model_version, COALESCE(storage_version, 0), COALESCE(generation, 0),
			COALESCE(test_roc_auc, 0), COALESCE(test_accuracy, 0),
			COALESCE(stage, ''), COALESCE(error_message, '')
		FROM training_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer rows.Close()

	runs := []models.TrainingRun{}
	for rows.Next() {
		var (
			run      models.TrainingRun
			finished sql.NullTime
		)
		if err := rows.Scan(
			&run.RunID, &run.Status, &run.Trigger, &run.StartedAt, &finished,
			&run.DurationSeconds, &run.Samples, &run.Seed, &run.Tuned, &run.FeatureEngineering,
			&run.ModelName, &run.ModelVersion, &run.StorageVersion, &run.Generation,
			&run.TestROCAUC, &run.TestAccuracy, &run.Stage, &run.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		run.StartedAt = run.StartedAt.UTC()
		if finished.Valid {
			t := finished.Time.UTC()
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate training runs: %w", err)
	}
	return runs, nil
}

// CountPredictions returns the number of stored predictions.
func (s *Store) CountPredictions(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return n, nil
}
