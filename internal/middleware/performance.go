// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package middleware

import (
	"cmp"
	"net/http"
	"slices"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// DefaultSlowRequestThreshold is the latency above which a request is logged
// as slow.
const DefaultSlowRequestThreshold = time.Second

// RequestMetrics is one observed request.
type RequestMetrics struct {
	Route      string    `json:"route"`
	Method     string    `json:"method"`
	DurationMS int64     `json:"duration_ms"`
	StatusCode int       `json:"status_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// EndpointStats summarizes the windowed requests of one "METHOD /route" pair.
// Only 5xx responses count as errors.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"request_count"`
	ErrorCount   int64   `json:"error_count"`
	AvgDuration  float64 `json:"avg_duration_ms"`
	P50Duration  int64   `json:"p50_duration_ms"`
	P95Duration  int64   `json:"p95_duration_ms"`
	P99Duration  int64   `json:"p99_duration_ms"`
	MinDuration  int64   `json:"min_duration_ms"`
	MaxDuration  int64   `json:"max_duration_ms"`
}

type endpoint struct{ method, route string }

func (e endpoint) String() string { return e.method + " " + e.route }

// PerformanceMonitor feeds the /stats endpoint. The ring holds the last
// maxMetrics requests; totals survive eviction.
type PerformanceMonitor struct {
	mu            sync.RWMutex
	ring          []RequestMetrics
	head          int // next write position once the ring is full
	maxMetrics    int
	totals        map[endpoint]int64
	slowThreshold time.Duration
	logger        zerolog.Logger
}

// NewPerformanceMonitor creates a monitor holding at most maxMetrics
// requests. A non-positive slowThreshold uses DefaultSlowRequestThreshold.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPerformanceMonitor(maxMetrics int, slowThreshold time.Duration, logger zerolog.Logger) *PerformanceMonitor {
	maxMetrics = max(maxMetrics, 1)
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowRequestThreshold
	}
	return &PerformanceMonitor{
		ring:          make([]RequestMetrics, 0, maxMetrics),
		maxMetrics:    maxMetrics,
		totals:        make(map[endpoint]int64),
		slowThreshold: slowThreshold,
		logger:        logger.With().Str("component", "performance").Logger(),
	}
}

// RecordRequest stores a request, overwriting the oldest one when full.
func (pm *PerformanceMonitor) RecordRequest(metric *RequestMetrics) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.ring) < pm.maxMetrics {
		pm.ring = append(pm.ring, *metric)
	} else {
		pm.ring[pm.head] = *metric
		pm.head = (pm.head + 1) % pm.maxMetrics
	}
	pm.totals[endpoint{metric.Method, metric.Route}]++
}

// TotalRequests returns the lifetime count for one endpoint.
func (pm *PerformanceMonitor) TotalRequests(method, route string) int64 {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.totals[endpoint{method, route}]
}

// chronological returns the ring oldest first. Callers hold mu.
func (pm *PerformanceMonitor) chronological() []RequestMetrics {
	out := make([]RequestMetrics, 0, len(pm.ring))
	out = append(out, pm.ring[pm.head:]...)
	return append(out, pm.ring[:pm.head]...)
}

// GetStats aggregates the window per endpoint, busiest first.
func (pm *PerformanceMonitor) GetStats() []EndpointStats {
	pm.mu.RLock()
	byEndpoint := make(map[endpoint][]RequestMetrics)
	for _, m := range pm.ring {
		key := endpoint{m.Method, m.Route}
		byEndpoint[key] = append(byEndpoint[key], m)
	}
	pm.mu.RUnlock()

	stats := make([]EndpointStats, 0, len(byEndpoint))
	for key, reqs := range byEndpoint {
		stats = append(stats, summarize(key, reqs))
	}
	slices.SortFunc(stats, func(a, b EndpointStats) int {
		if c := cmp.Compare(b.RequestCount, a.RequestCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Endpoint, b.Endpoint)
	})
	return stats
}

func summarize(key endpoint, reqs []RequestMetrics) EndpointStats {
	durations := make([]int64, len(reqs))
	st := EndpointStats{Endpoint: key.String(), RequestCount: int64(len(reqs))}
	var total int64
	for i, m := range reqs {
		durations[i] = m.DurationMS
		total += m.DurationMS
		if m.StatusCode >= http.StatusInternalServerError {
			st.ErrorCount++
		}
	}
	slices.Sort(durations)

	st.AvgDuration = float64(total) / float64(len(durations))
	st.MinDuration = durations[0]
	st.MaxDuration = durations[len(durations)-1]
	st.P50Duration = percentile(durations, 0.50)
	st.P95Duration = percentile(durations, 0.95)
	st.P99Duration = percentile(durations, 0.99)
	return st
}

// GetRecentMetrics returns up to n of the newest requests, oldest first.
func (pm *PerformanceMonitor) GetRecentMetrics(n int) []RequestMetrics {
	pm.mu.RLock()
	all := pm.chronological()
	pm.mu.RUnlock()

	n = min(max(n, 0), len(all))
	return all[len(all)-n:]
}

// Middleware records every request under its chi route pattern and warns
// about requests slower than the threshold.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		route := RoutePattern(r)
		pm.RecordRequest(&RequestMetrics{
			Route:      route,
			Method:     r.Method,
			DurationMS: elapsed.Milliseconds(),
			StatusCode: statusOf(ww),
			Timestamp:  start,
		})
		if elapsed <= pm.slowThreshold {
			return
		}
		pm.logger.Warn().
			Str("request_id", GetRequestID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Dur("duration", elapsed).
			Dur("threshold", pm.slowThreshold).
			Msg("slow request detected")
	})
}

// percentile uses the nearest-rank-below index into an ascending slice.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
