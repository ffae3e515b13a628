// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
)

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
}

func gauge(name, help string) prometheus.Gauge {
	return promauto.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
}

func gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
}

func histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets})
}

func histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
}

// HTTP surface.
var (
	APIRequestsTotal = counter("api_requests_total",
		"API requests by route pattern and status code", "method", "endpoint", "status_code")
	APIRequestDuration = histogramVec("api_request_duration_seconds",
		"API request latency", []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}, "method", "endpoint")
	APIActiveRequests = gauge("api_active_requests", "Requests currently being served")
	APIRateLimitHits  = counter("api_rate_limit_hits_total", "Requests rejected by the per-IP rate limiter", "endpoint")
)

// Scoring and caching. Outcomes: success (label 1), failure (label 0), error.
var (
	PredictionsTotal   = counter("predictions_total", "Predictions by outcome", "outcome")
	PredictionDuration = histogram("prediction_duration_seconds",
		"Feature transform plus forest scoring time per event", []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1})
	PredictionBatchSize = histogram("prediction_batch_size",
		"Events per /predict/batch request", []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000})
	CacheLookups = counter("prediction_cache_lookups_total",
		"Prediction cache lookups by backend and result (hit, miss, error)", "backend", "result")
)

// Training and the serving model.
var (
	TrainingRunsTotal = counter("training_runs_total", "Training runs by status (completed, failed, rejected)", "status")
	TrainingDuration  = histogram("training_duration_seconds",
		"Wall time of completed training runs", []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600})
	TrainingTestROCAUC = gauge("training_test_roc_auc", "Held-out ROC AUC of the latest trained model")
	ModelGeneration    = gauge("model_generation", "Generation of the serving model")
	ModelLoaded        = gauge("model_loaded", "1 while a trained model is serving")
	ModelReloads       = counter("model_reloads_total", "Model reloads from the artifact store", "result")
)

// Persistence, messaging and resilience.
var (
	HistoryWriteDuration = histogramVec("history_write_duration_seconds",
		"DuckDB history insert latency", prometheus.DefBuckets, "table")
	HistoryWriteErrors = counter("history_write_errors_total", "Failed DuckDB history inserts", "table")

	EventsPublished = counter("events_published_total", "Lifecycle event publishes by result", "topic", "result")

	WSConnections  = gauge("websocket_connections", "Connected dashboard clients")
	WSMessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_sent_total",
		Help: "Frames written to dashboard clients",
	})
	WSErrors = counter("websocket_errors_total", "WebSocket failures by kind", "error_type")

	CircuitBreakerState = gaugeVec("circuit_breaker_state",
		"Breaker state as gobreaker numbers it (0 closed, 1 half-open, 2 open)", "name")
	CircuitBreakerRequests = counter("circuit_breaker_requests_total",
		"Calls through a breaker by result (success, failure, rejected)", "name", "result")
	CircuitBreakerTransitions = counter("circuit_breaker_state_transitions_total",
		"Breaker state changes", "name", "from_state", "to_state")
)

// Access control and process.
var (
	AuthAttempts   = counter("auth_attempts_total", "Authentication attempts by mode and result", "mode", "result")
	AuthzDecisions = counter("authz_decisions_total", "Casbin decisions by object and action", "object", "action", "decision")
	AppInfo        = gaugeVec("app_info", "Build information, always 1", "version", "go_version")
	AppUptime      = gauge("app_uptime_seconds", "Seconds since process start")
)

// RecordAPIRequest counts a served request and observes its latency.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge up or down.
func TrackActiveRequest(inc bool) {
	delta := -1.0
	if inc {
		delta = 1
	}
	APIActiveRequests.Add(delta)
}

// RecordPrediction counts one scored event. Latency is only observed for
// successful scoring.
func RecordPrediction(label int, duration time.Duration, err error) {
	if err != nil {
		PredictionsTotal.WithLabelValues("error").Inc()
		return
	}
	outcome := "failure"
	if label == 1 {
		outcome = "success"
	}
	PredictionsTotal.WithLabelValues(outcome).Inc()
	PredictionDuration.Observe(duration.Seconds())
}

// RecordBatch observes a batch request size.
func RecordBatch(size int) { PredictionBatchSize.Observe(float64(size)) }

// RecordCacheLookup counts a cache lookup result.
func RecordCacheLookup(backend, result string) { CacheLookups.WithLabelValues(backend, result).Inc() }

// RecordTrainingRun counts a run; only completed runs feed the duration
// histogram.
func RecordTrainingRun(status string, duration time.Duration) {
	TrainingRunsTotal.WithLabelValues(status).Inc()
	if status == "completed" {
		TrainingDuration.Observe(duration.Seconds())
	}
}

// SetServingModel publishes the serving model. Generation and AUC keep
// their last values when no model is loaded.
func SetServingModel(loaded bool, generation int, testAUC float64) {
	if !loaded {
		ModelLoaded.Set(0)
		return
	}
	ModelLoaded.Set(1)
	ModelGeneration.Set(float64(generation))
	TrainingTestROCAUC.Set(testAUC)
}

// RecordModelReload counts a reload attempt.
func RecordModelReload(err error) { ModelReloads.WithLabelValues(successOr(err, "failure")).Inc() }

// RecordHistoryWrite observes a DuckDB insert.
func RecordHistoryWrite(table string, duration time.Duration, err error) {
	HistoryWriteDuration.WithLabelValues(table).Observe(duration.Seconds())
	if err != nil {
		HistoryWriteErrors.WithLabelValues(table).Inc()
	}
}

// RecordEventPublished counts a publish. Errors from an open or saturated
// breaker count as "rejected" rather than "failure".
func RecordEventPublished(topic string, err error) {
	result := successOr(err, "failure")
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		result = "rejected"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordCircuitBreakerTransition records a gobreaker state change.
func RecordCircuitBreakerTransition(name string, from, to int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	CircuitBreakerTransitions.WithLabelValues(name, strconv.Itoa(from), strconv.Itoa(to)).Inc()
}

// RecordCircuitBreakerRequest counts a call through a breaker.
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordAuthAttempt counts an authentication outcome.
func RecordAuthAttempt(mode, result string) { AuthAttempts.WithLabelValues(mode, result).Inc() }

// RecordAuthzDecision counts an allow or deny.
func RecordAuthzDecision(object, action string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AuthzDecisions.WithLabelValues(object, action, decision).Inc()
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) { AppInfo.WithLabelValues(version, goVersion).Set(1) }

// UpdateUptime sets app_uptime_seconds from the process start time.
func UpdateUptime(start time.Time) { AppUptime.Set(time.Since(start).Seconds()) }

func successOr(err error, failure string) string {
	if err != nil {
		return failure
	}
	return "success"
}
