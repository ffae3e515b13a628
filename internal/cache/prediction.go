// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/models"
)

// DefaultPredictionTTL matches the client-side prediction cache lifetime.
const DefaultPredictionTTL = 24 * time.Hour

const predictionNamespace = "prediction"

// predictionKey is hashed into the cache key. The event id is excluded so
// identical features share an entry.
type predictionKey struct {
	ModelRunID string             `json:"model_run_id"`
	Record     models.EventRecord `json:"record"`
}

// PredictionCache caches prediction results on a Store. It implements the
// prediction engine's cache contract: failures are logged and reported as a
// miss, never returned.
type PredictionCache struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewPredictionCache wraps store. ttl <= 0 uses DefaultPredictionTTL.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPredictionCache(store Store, ttl time.Duration, logger zerolog.Logger) *PredictionCache {
	if ttl <= 0 {
		ttl = DefaultPredictionTTL
	}
	return &PredictionCache{
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Str("backend", store.Name()).Logger(),
	}
}

// PredictionKey returns the cache key for a record scored by the model
// trained in run modelRunID.
func PredictionKey(modelRunID string, r *models.EventRecord) string {
	canonical := *r
	canonical.EventID = nil
	return GenerateKey(predictionNamespace, predictionKey{ModelRunID: modelRunID, Record: canonical})
}

// Get returns a cached result for r scored by the model from run modelRunID.
// The entry's ModelGeneration is whatever the writing process used; callers
// restamp it.
func (c *PredictionCache) Get(ctx context.Context, modelRunID string, r *models.EventRecord) (*models.PredictionResult, bool) {
	backend := c.store.Name()

	data, err := c.store.Get(ctx, PredictionKey(modelRunID, r))
	if errors.Is(err, ErrCacheMiss) {
		metrics.RecordCacheLookup(backend, "miss")
		return nil, false
	}
	if err != nil {
		metrics.RecordCacheLookup(backend, "error")
		c.logger.Warn().Err(err).Msg("cache lookup failed")
		return nil, false
	}

	var res models.PredictionResult
	if err := json.Unmarshal(data, &res); err != nil {
		metrics.RecordCacheLookup(backend, "error")
		c.logger.Warn().Err(err).Msg("discarding undecodable cache entry")
		return nil, false
	}
	if res.ModelRunID != modelRunID {
		metrics.RecordCacheLookup(backend, "miss")
		return nil, false
	}

	metrics.RecordCacheLookup(backend, "hit")
	return &res, true
}

// Set stores res for r under the model run that produced it.
func (c *PredictionCache) Set(ctx context.Context, modelRunID string, r *models.EventRecord, res *models.PredictionResult) {
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode prediction for cache")
		return
	}
	if err := c.store.Set(ctx, PredictionKey(modelRunID, r), data, c.ttl); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store prediction in cache")
	}
}

// Close closes the underlying store.
func (c *PredictionCache) Close() error {
	return c.store.Close()
}
