// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package cache provides the prediction result cache and its storage backends.

# Backends

Three byte-level Store implementations are available, selected by name:

  - memory: thread-safe TTL map with a background cleanup loop
  - badger: BadgerDB with native entry TTLs, on disk or in memory
  - redis: go-redis client with server-side expiry, for shared caches

All backends report a missing or expired key as ErrCacheMiss.

# Prediction Cache

PredictionCache sits on top of a Store and caches scored predictions. Keys
are derived from the run ID of the fitted model and the canonical JSON of the
event record with its event_id removed. Identical features share an entry,
and a model swap invalidates every entry without a flush. Run IDs are stored
with the model artifact, so badger and redis entries stay valid across
restarts and replicas serving the same model, and never match a different
one:

	store, err := cache.Open(cfg, logger)
	pc := cache.NewPredictionCache(store, cfg.TTL, logger)
	engine, err := predict.NewEngine(predictCfg, predict.Dependencies{Cache: pc}, logger)

Cache failures never fail a prediction. Errors are logged, counted in the
prediction_cache_lookups_total metric and treated as a miss.
*/
package cache
