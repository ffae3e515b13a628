// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/eventpulse/internal/config"
	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/middleware"
)

// ChiMiddlewareConfig configures the cross-cutting guards wrapped around the
// API routes.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	RateLimitDisabled bool
	PredictLimit      RateLimitConfig // /predict and /predict/batch
	TrainLimit        RateLimitConfig // /train and /model/reload

	// MaxBodyBytes bounds request bodies. 0 disables the limit.
	MaxBodyBytes int64
}

// RateLimitConfig allows Requests per Window for each client IP.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// DefaultChiMiddlewareConfig allows no cross-origin callers until origins
// are configured.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	const day = 24 * 60 * 60
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: nil,
		CORSAllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		CORSAllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		CORSExposedHeaders: []string{middleware.RequestIDHeader},
		CORSMaxAge:         day,
		PredictLimit:       RateLimitConfig{600, time.Minute},
		TrainLimit:         RateLimitConfig{10, time.Minute},
		MaxBodyBytes:       1 << 20,
	}
}

// NewChiMiddlewareConfig overlays the security section onto the defaults.
func NewChiMiddlewareConfig(sec *config.SecurityConfig) *ChiMiddlewareConfig {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = sec.CORSOrigins
	cfg.RateLimitDisabled = sec.RateLimitDisabled
	cfg.PredictLimit = RateLimitConfig{sec.PredictRateLimit, sec.RateLimitWindow}
	cfg.TrainLimit = RateLimitConfig{sec.TrainRateLimit, sec.RateLimitWindow}
	cfg.MaxBodyBytes = sec.MaxBodyBytes
	return cfg
}

// ChiMiddleware hands out the configured guards as chi middleware.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware builds the guards. A nil cfg uses the defaults.
func NewChiMiddleware(cfg *ChiMiddlewareConfig) *ChiMiddleware {
	if cfg == nil {
		cfg = DefaultChiMiddlewareConfig()
	}
	opts := cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		ExposedHeaders:   cfg.CORSExposedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	}
	return &ChiMiddleware{config: cfg, cors: cors.Handler(opts)}
}

// CORS answers preflight requests and tags allowed origins.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler { return m.cors }

func passthrough(next http.Handler) http.Handler { return next }

// RateLimitCustom limits each client IP to limit.Requests per limit.Window.
// It is a no-op when limiting is disabled or limit.Requests is not positive.
func (m *ChiMiddleware) RateLimitCustom(limit RateLimitConfig) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled || limit.Requests <= 0 {
		return passthrough
	}
	return httprate.Limit(limit.Requests, limit.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rejectRateLimited),
	)
}

// RateLimitPredict guards the scoring endpoints.
func (m *ChiMiddleware) RateLimitPredict() func(http.Handler) http.Handler {
	return m.RateLimitCustom(m.config.PredictLimit)
}

// RateLimitTrain guards training and model reloads.
func (m *ChiMiddleware) RateLimitTrain() func(http.Handler) http.Handler {
	return m.RateLimitCustom(m.config.TrainLimit)
}

func rejectRateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(middleware.RoutePattern(r)).Inc()
	respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded", nil)
}

// MaxBodySize wraps request bodies in http.MaxBytesReader so oversized
// payloads fail decoding with *http.MaxBytesError.
func (m *ChiMiddleware) MaxBodySize() func(http.Handler) http.Handler {
	limit := m.config.MaxBodyBytes
	if limit <= 0 {
		return passthrough
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

var jsonAPIHeaders = [...][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
}

const hstsValue = "max-age=31536000; includeSubDomains"

// APISecurityHeaders sets response hardening headers. HSTS is only sent
// when the request arrived over TLS, directly or behind a proxy.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range jsonAPIHeaders {
				h.Set(kv[0], kv[1])
			}
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			next.ServeHTTP(w, r)
		})
	}
}
