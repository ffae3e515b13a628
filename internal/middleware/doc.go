// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package middleware provides HTTP middleware for the prediction API.

All middleware uses the chi signature func(http.Handler) http.Handler and is
installed on the router with r.Use:

  - RequestID: reuses or generates X-Request-ID and stores it for logging.Ctx
  - RequestLogger: one zerolog access line per request
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds and
    api_active_requests, labeled by chi route pattern
  - PerformanceMonitor: sliding-window latency percentiles served by /stats

Route patterns are read after the handler runs, so metrics and stats use
"/api/v1/model/versions" rather than raw paths, which keeps label
cardinality bounded. Requests that no route matched are labeled "unmatched".

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(monitor.Middleware)

Response compression uses chi's middleware.Compress.
*/
package middleware
