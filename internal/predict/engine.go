// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/predict/storage"
	"github.com/tomtom215/eventpulse/internal/recommend"
	"github.com/tomtom215/eventpulse/internal/training"
	"github.com/tomtom215/eventpulse/internal/validation"
)

var (
	// ErrTrainingInProgress is returned when a run is requested while another is active.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrModelNotFound is returned when a reload finds no stored model.
	ErrModelNotFound = errors.New("no stored model found")

	// ErrNoStore is returned by storage operations when persistence is disabled.
	ErrNoStore = errors.New("model storage is not configured")
)

// ModelStore persists trained models.
type ModelStore interface {
	Save(ctx context.Context, m *training.TrainedModel) (*storage.ModelMetadata, error)
	Load(ctx context.Context, name string, version int) (*training.TrainedModel, *storage.ModelMetadata, error)
	List(ctx context.Context, name string) ([]storage.ModelMetadata, error)
	Prune(ctx context.Context, name string, keep int) (int, error)
	LatestVersion(name string) (int, bool)
	ModelPath(name string, version int) string
}

// Cache stores prediction results keyed by the fitted model's run ID and the
// record. Run IDs are persisted with the model, so entries stay correct in
// stores that outlive the process or are shared between replicas; the
// generation number restarts at 1 and cannot serve as a key.
// Implementations swallow their own errors; a failed lookup is a miss.
type Cache interface {
	Get(ctx context.Context, modelRunID string, r *models.EventRecord) (*models.PredictionResult, bool)
	Set(ctx context.Context, modelRunID string, r *models.EventRecord, res *models.PredictionResult)
}

// History records predictions and training runs for analytics.
type History interface {
	RecordPredictions(ctx context.Context, records []models.EventRecord, results []models.PredictionResult) error
	RecordTrainingRun(ctx context.Context, run *models.TrainingRun) error
	Summary(ctx context.Context) (*models.HistorySummary, error)
}

// Publisher announces lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event *models.LifecycleEvent) error
}

// Dependencies are the optional collaborators of an Engine. Nil fields
// disable the corresponding feature.
type Dependencies struct {
	Store     ModelStore
	Cache     Cache
	History   History
	Publisher Publisher
}

// Engine owns the serving model and every piece of service state: the model
// snapshot, the training guard and the request counters. It is safe for
// concurrent use.
type Engine struct {
	// Configuration
	config   Config
	logger   zerolog.Logger
	pipeline *training.Pipeline
	deps     Dependencies

	// Serving model. Replaced by pointer swap; readers keep their snapshot.
	model      atomic.Pointer[training.TrainedModel]
	generation atomic.Int64

	// Training state
	trainMu  sync.Mutex
	training atomic.Bool
	statusMu sync.RWMutex
	lastRun  *models.TrainingRun
	runs     sync.WaitGroup

	// Counters
	started      time.Time
	predictions  atomic.Int64
	cacheHits    atomic.Int64
	failures     atomic.Int64
	requestCount atomic.Int64
}

// NewEngine creates a prediction engine with no model loaded.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "predict").Logger(),
		pipeline: training.NewPipeline(logger),
		deps:     deps,
		started:  time.Now(),
	}
	metrics.SetServingModel(false, 0, 0)
	return e, nil
}

// Model returns the current model snapshot, or nil.
func (e *Engine) Model() *training.TrainedModel {
	return e.model.Load()
}

// Ready reports whether a model is serving.
func (e *Engine) Ready() bool {
	return e.model.Load() != nil
}

// Install makes m the serving model under a new generation number and
// returns the installed snapshot.
func (e *Engine) Install(m *training.TrainedModel) *training.TrainedModel {
	gen := int(e.generation.Add(1))
	snapshot := m.WithGeneration(gen)
	e.model.Store(snapshot)
	metrics.SetServingModel(true, gen, snapshot.Metrics.TestROCAUC)
	return snapshot
}

// Predict validates, transforms and scores one record, then attaches the
// recommendations. A failed prediction never returns a probability.
func (e *Engine) Predict(ctx context.Context, r *models.EventRecord) (*models.PredictionResult, error) {
	e.requestCount.Add(1)

	if err := validation.ValidateEvent(r, -1); err != nil {
		e.recordFailure(err)
		return nil, err
	}

	m := e.model.Load()
	if m == nil {
		err := &models.UntrainedModelError{Op: "predict"}
		e.recordFailure(err)
		return nil, err
	}

	res, err := e.predictOne(ctx, m, r)
	if err != nil {
		e.recordFailure(err)
		return nil, err
	}

	e.recordHistory(ctx, []models.EventRecord{*r}, []models.PredictionResult{*res})
	return res, nil
}

// PredictBatch scores every record against one model snapshot and returns the
// results in input order. The whole batch is validated before any scoring;
// one invalid record rejects the batch.
func (e *Engine) PredictBatch(ctx context.Context, records []models.EventRecord) (*models.BatchPredictionResult, error) {
	e.requestCount.Add(1)

	if len(records) == 0 || len(records) > MaxBatchSize {
		err := &models.ValidationError{Index: -1, Fields: []models.FieldError{{
			Field:   "events",
			Tag:     "batch_size",
			Value:   len(records),
			Message: fmt.Sprintf("events must contain between 1 and %d items", MaxBatchSize),
		}}}
		e.recordFailure(err)
		return nil, err
	}
	if err := validation.ValidateEvents(records); err != nil {
		e.recordFailure(err)
		return nil, err
	}

	m := e.model.Load()
	if m == nil {
		err := &models.UntrainedModelError{Op: "predict batch"}
		e.recordFailure(err)
		return nil, err
	}

	metrics.RecordBatch(len(records))
	results := make([]models.PredictionResult, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.BatchWorkers)
	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.predictOne(gctx, m, &records[i])
			if err != nil {
				return fmt.Errorf("event %d: %w", i, err)
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.recordFailure(err)
		return nil, err
	}

	e.recordHistory(ctx, records, results)

	return &models.BatchPredictionResult{
		Predictions: results,
		TotalEvents: len(results),
		ProcessedAt: time.Now().UTC(),
	}, nil
}

// predictOne scores a validated record against a fixed snapshot, consulting
// the cache first.
func (e *Engine) predictOne(ctx context.Context, m *training.TrainedModel, r *models.EventRecord) (*models.PredictionResult, error) {
	start := time.Now()

	// Models without a run ID cannot be told apart across processes.
	useCache := e.deps.Cache != nil && m.RunID != ""
	if useCache {
		if cached, ok := e.deps.Cache.Get(ctx, m.RunID, r); ok {
			e.cacheHits.Add(1)
			e.predictions.Add(1)
			cached.Cached = true
			cached.ModelGeneration = m.Generation
			cached.EventID = r.EventID
			cached.PredictionID = uuid.New().String()
			cached.PredictedAt = time.Now().UTC()
			metrics.RecordPrediction(cached.Label, time.Since(start), nil)
			return cached, nil
		}
	}

	p, err := m.Score(r)
	if err != nil {
		return nil, err
	}

	res := assemble(m, r, p)
	if useCache {
		e.deps.Cache.Set(ctx, m.RunID, r, res)
	}

	e.predictions.Add(1)
	metrics.RecordPrediction(res.Label, time.Since(start), nil)
	return res, nil
}

// assemble derives the label, expectations and recommendations from p.
// The label and confidence follow the published four-place probability, so
// a raw 0.49996 is reported as 0.5 with label 1.
func assemble(m *training.TrainedModel, r *models.EventRecord, p float64) *models.PredictionResult {
	shown := roundProbability(p)
	label := 0
	if shown >= 0.5 {
		label = 1
	}
	attendance := int(math.Floor(p * float64(r.MaxParticipants)))
	revenue := math.Round(float64(attendance)*r.TicketPrice*100) / 100

	return &models.PredictionResult{
		Success:            label == 1,
		PredictionID:       uuid.New().String(),
		EventID:            r.EventID,
		Probability:        shown,
		Label:              label,
		Confidence:         models.ConfidenceFor(shown),
		ExpectedAttendance: attendance,
		ExpectedRevenue:    revenue,
		Recommendations:    recommend.Recommend(r, p),
		ModelName:          m.Name,
		ModelVersion:       m.Version,
		ModelGeneration:    m.Generation,
		ModelRunID:         m.RunID,
		PredictedAt:        time.Now().UTC(),
	}
}

func roundProbability(p float64) float64 {
	return math.Round(p*10000) / 10000
}

func (e *Engine) recordFailure(err error) {
	e.failures.Add(1)
	metrics.RecordPrediction(0, 0, err)
	e.logger.Debug().Err(err).Msg("prediction rejected")
}

func (e *Engine) recordHistory(ctx context.Context, records []models.EventRecord, results []models.PredictionResult) {
	if e.deps.History == nil {
		return
	}
	if err := e.deps.History.RecordPredictions(ctx, records, results); err != nil {
		e.logger.Warn().Err(err).Int("count", len(results)).Msg("failed to record prediction history")
	}
}

// publish sends a lifecycle event. Failures are logged and never affect the
// operation that produced the event.
func (e *Engine) publish(event *models.LifecycleEvent) {
	if e.deps.Publisher == nil {
		return
	}
	event.ID = uuid.New().String()
	event.Timestamp = time.Now().UTC()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := e.deps.Publisher.Publish(ctx, event)
	metrics.RecordEventPublished(event.Type, err)
	if err != nil {
		e.logger.Warn().Err(err).Str("event_type", event.Type).Msg("failed to publish lifecycle event")
	}
}
