// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/models"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config configures the history database.
type Config struct {
	Enabled   bool   `koanf:"enabled"`
	Path      string `koanf:"path"`
	Threads   int    `koanf:"threads"`
	MaxMemory string `koanf:"max_memory"`
}

// Store records predictions and training runs in DuckDB.
type Store struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// Open opens (or creates) the history database and its tables.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = MemoryPath
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
			}
		}
	}

	// Extensions are not needed; disabling autoload avoids network access.
	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, threads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{
		conn:   conn,
		logger: logger.With().Str("component", "history").Logger(),
	}
	if err := s.createTables(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}

	s.logger.Info().Str("path", path).Msg("history database opened")
	return s, nil
}

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func (s *Store) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			prediction_id TEXT PRIMARY KEY,
			event_id BIGINT,
			category TEXT NOT NULL,
			city TEXT NOT NULL,
			ticket_price DOUBLE NOT NULL,
			max_participants INTEGER NOT NULL,
			probability DOUBLE NOT NULL,
			label INTEGER NOT NULL,
			confidence TEXT NOT NULL,
			expected_attendance INTEGER NOT NULL,
			expected_revenue DOUBLE NOT NULL,
			model_name TEXT NOT NULL,
			model_version TEXT NOT NULL,
			model_generation INTEGER NOT NULL,
			cached BOOLEAN NOT NULL DEFAULT false,
			predicted_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS training_runs (
			run_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			trigger_source TEXT,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			duration_seconds DOUBLE,
			samples INTEGER NOT NULL,
			seed UBIGINT NOT NULL,
			tuned BOOLEAN NOT NULL,
			feature_engineering BOOLEAN NOT NULL,
			model_name TEXT NOT NULL,
			model_version TEXT NOT NULL,
			storage_version INTEGER,
			generation INTEGER,
			test_roc_auc DOUBLE,
			test_accuracy DOUBLE,
			stage TEXT,
			error_message TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_predicted_at ON predictions(predicted_at)`,
		`CREATE INDEX IF NOT EXISTS idx_training_runs_started_at ON training_runs(started_at)`,
	}

	for _, query := range queries {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// Close checkpoints and closes the database.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := s.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		s.logger.Warn().Err(err).Msg("failed to checkpoint history database before close")
	}
	cancel()
	return s.conn.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// RecordPredictions appends one row per result. records and results are
// parallel slices.
func (s *Store) RecordPredictions(ctx context.Context, records []models.EventRecord, results []models.PredictionResult) (err error) {
	if len(records) != len(results) {
		return fmt.Errorf("record/result count mismatch: %d != %d", len(records), len(results))
	}
	if len(results) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { metrics.RecordHistoryWrite("predictions", time.Since(start), err) }()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error().Err(rbErr).AnErr("original_error", err).Msg("transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO predictions (
		prediction_id, event_id, category, city, ticket_price, max_participants,
		probability, label, confidence, expected_attendance, expected_revenue,
		model_name, model_version, model_generation, cached, predicted_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range results {
		r, res := &records[i], &results[i]
		var eventID sql.NullInt64
		if res.EventID != nil {
			eventID = sql.NullInt64{Int64: *res.EventID, Valid: true}
		}
		if _, err = stmt.ExecContext(ctx,
			res.PredictionID, eventID, string(r.Category), string(r.City), r.TicketPrice, r.MaxParticipants,
			res.Probability, res.Label, string(res.Confidence), res.ExpectedAttendance, res.ExpectedRevenue,
			res.ModelName, res.ModelVersion, res.ModelGeneration, res.Cached, res.PredictedAt,
		); err != nil {
			return fmt.Errorf("failed to insert prediction %s: %w", res.PredictionID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecordTrainingRun inserts or replaces the row for run.RunID.
func (s *Store) RecordTrainingRun(ctx context.Context, run *models.TrainingRun) (err error) {
	start := time.Now()
	defer func() { metrics.RecordHistoryWrite("training_runs", time.Since(start), err) }()

	var finished sql.NullTime
	if run.FinishedAt != nil {
		finished = sql.NullTime{Time: *run.FinishedAt, Valid: true}
	}

	_, err = s.conn.ExecContext(ctx, `INSERT OR REPLACE INTO training_runs (
		run_id, status, trigger_source, started_at, finished_at, duration_seconds, samples, seed,
		tuned, feature_engineering, model_name, model_version, storage_version, generation,
		test_roc_auc, test_accuracy, stage, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Status, run.Trigger, run.StartedAt, finished, run.DurationSeconds, run.Samples, run.Seed,
		run.Tuned, run.FeatureEngineering, run.ModelName, run.ModelVersion, run.StorageVersion, run.Generation,
		run.TestROCAUC, run.TestAccuracy, run.Stage, run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record training run %s: %w", run.RunID, err)
	}
	return nil
}
