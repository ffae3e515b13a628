// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/auth"
	"github.com/tomtom215/eventpulse/internal/authz"
	"github.com/tomtom215/eventpulse/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
	authz         *authz.Middleware
	logger        zerolog.Logger
}

// NewRouter creates a router. authzMiddleware may be nil, in which case
// authenticated callers may use every route.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authMiddleware *auth.Middleware, authzMiddleware *authz.Middleware, logger zerolog.Logger) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: chiMW,
		auth:          authMiddleware,
		authz:         authzMiddleware,
		logger:        logger,
	}
}

// authorize returns the casbin check for object and action, or a no-op
// without an authorizer.
func (router *Router) authorize(object, action string) func(http.Handler) http.Handler {
	if router.authz == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return router.authz.Authorize(object, action)
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(router.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.handler.PerformanceMonitor().Middleware)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, ErrCodeNotFound, "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	// ========================
	// Service Endpoints
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Root)
		r.Get("/health", router.handler.Health)
		r.With(router.auth.Authenticate, router.authorize(authz.ObjectStats, authz.ActionRead)).
			Get("/stats", router.handler.Stats)
	})
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Prediction API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(router.chiMiddleware.MaxBodySize())
		r.Use(router.auth.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitPredict())
			r.Use(router.authorize(authz.ObjectPredictions, authz.ActionWrite))
			r.Post("/predict", router.handler.Predict)
			r.Post("/predict/batch", router.handler.PredictBatch)
		})

		r.With(router.chiMiddleware.RateLimitTrain(), router.authorize(authz.ObjectTraining, authz.ActionWrite)).
			Post("/train", router.handler.Train)

		r.Route("/training", func(r chi.Router) {
			r.Use(router.authorize(authz.ObjectTraining, authz.ActionRead))
			r.Get("/status", router.handler.TrainingStatus)
			r.Get("/runs", router.handler.TrainingRuns)
		})

		r.Route("/model", func(r chi.Router) {
			r.With(router.authorize(authz.ObjectModel, authz.ActionRead)).Get("/info", router.handler.ModelInfo)
			r.With(router.authorize(authz.ObjectModel, authz.ActionRead)).Get("/versions", router.handler.ModelVersions)
			r.With(router.chiMiddleware.RateLimitTrain(), router.authorize(authz.ObjectModel, authz.ActionWrite)).
				Post("/reload", router.handler.ModelReload)
		})

		r.With(router.authorize(authz.ObjectModel, authz.ActionRead)).Get("/ws", router.handler.WebSocket)
	})

	return r
}
