// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics by promhttp:

	curl http://localhost:8000/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Requests in flight (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)

Prediction Metrics:
  - predictions_total: Predictions by outcome (counter)
    Labels: outcome (success, failure, error)
  - prediction_duration_seconds: Single transform-and-score latency (histogram)
  - prediction_batch_size: Events per batch request (histogram)
  - prediction_cache_lookups_total: Cache lookups (counter)
    Labels: backend, result (hit, miss, error)

Training and Model Metrics:
  - training_runs_total: Runs by status (counter)
    Labels: status (completed, failed, rejected)
  - training_duration_seconds: Completed run duration (histogram)
  - training_test_roc_auc: Held-out ROC AUC of the latest model (gauge)
  - model_generation: Generation of the serving model (gauge)
  - model_loaded: 1 when a model is serving (gauge)
  - model_reloads_total: Reloads from storage (counter)

Infrastructure Metrics:
  - history_write_duration_seconds, history_write_errors_total (DuckDB)
  - events_published_total: Lifecycle events (counter)
    Labels: topic, result (success, failure, rejected)
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total
  - websocket_connections, websocket_messages_sent_total, websocket_errors_total
  - app_info, app_uptime_seconds

# Usage

	start := time.Now()
	result, err := engine.Predict(ctx, record)
	metrics.RecordPrediction(result.Label, time.Since(start), err)

# Testing

Use prometheus/testutil to read collector values:

	before := testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues("success"))
*/
package metrics
