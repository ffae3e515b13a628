// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/api"
	"github.com/tomtom215/eventpulse/internal/auth"
	"github.com/tomtom215/eventpulse/internal/authz"
	"github.com/tomtom215/eventpulse/internal/cache"
	"github.com/tomtom215/eventpulse/internal/config"
	"github.com/tomtom215/eventpulse/internal/events"
	"github.com/tomtom215/eventpulse/internal/history"
	"github.com/tomtom215/eventpulse/internal/logging"
	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/predict"
	"github.com/tomtom215/eventpulse/internal/predict/storage"
	"github.com/tomtom215/eventpulse/internal/supervisor"
	"github.com/tomtom215/eventpulse/internal/supervisor/services"
	ws "github.com/tomtom215/eventpulse/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Logger().Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

// components holds everything that must be closed on shutdown.
type components struct {
	closers []func() error
}

func (c *components) onClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// close runs closers in reverse order of registration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (c *components) close(logger zerolog.Logger) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			logger.Error().Err(err).Msg("error during shutdown")
		}
	}
}

//nolint:gocyclo // Sequential setup steps
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.Init(cfg.Logging)
	metrics.SetAppInfo(version, runtime.Version())

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("model", cfg.Model.Name).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("starting EventPulse")

	var comps components
	defer comps.close(logger)

	deps, hist, bus, err := openDependencies(cfg, logger, &comps)
	if err != nil {
		return err
	}

	engine, err := predict.NewEngine(cfg.EngineConfig(), deps, logging.WithComponent("engine"))
	if err != nil {
		return fmt.Errorf("create prediction engine: %w", err)
	}
	// Let a background training run finish before stores close.
	comps.onClose(func() error {
		engine.Wait()
		return nil
	})

	authMode, err := auth.ParseAuthMode(cfg.Security.AuthMode)
	if err != nil {
		return err
	}
	var jwtManager *auth.JWTManager
	if authMode == auth.AuthModeJWT {
		jwtManager, err = auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
		if err != nil {
			return fmt.Errorf("create JWT manager: %w", err)
		}
		logger.Info().Dur("token_ttl", cfg.Security.TokenTTL).Msg("JWT authentication enabled")
	} else {
		logger.Warn().Msg("authentication is disabled (AUTH_MODE=none); every caller is treated as admin")
	}

	var authzMW *authz.Middleware
	if authMode == auth.AuthModeJWT {
		enforcer, err := authz.NewEnforcer(cfg.Security.Authz)
		if err != nil {
			return fmt.Errorf("create authorization enforcer: %w", err)
		}
		comps.onClose(func() error {
			enforcer.Close()
			return nil
		})
		authzMW = authz.NewMiddleware(enforcer, logging.WithComponent("authz"))
	}

	if cfg.Security.RateLimitDisabled {
		logger.Warn().Msg("rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logger.Warn().Strs("cors_origins", cfg.Security.CORSOrigins).
			Msg("CORS allows any origin while authentication is enabled; set CORS_ORIGINS explicitly")
	}

	hub := ws.NewHub(logging.WithComponent("websocket"))

	handler := api.NewHandler(engine, cfg, hub, logging.WithComponent("api"))
	if hist != nil {
		handler.SetHistory(hist)
	}

	router := api.NewRouter(
		handler,
		api.NewChiMiddleware(api.NewChiMiddlewareConfig(&cfg.Security)),
		auth.NewMiddleware(authMode, jwtManager, logging.WithComponent("auth")),
		authzMW,
		logging.WithComponent("router"),
	)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.WithComponent("supervisor")), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(services.NewModelService(engine, services.ModelServiceConfig{
		TrainOnStartup:  cfg.Model.TrainOnStartup,
		RetrainInterval: cfg.Model.RetrainInterval,
		Options: predict.TrainingOptions{
			Tune:               cfg.Training.Tune,
			FeatureEngineering: cfg.Training.FeatureEngineering,
		},
	}, logger))

	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub, logger))
	if bus != nil {
		tree.AddMessagingService(ws.NewForwarder(bus, hub, logger))
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", server.Addr).Msg("starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	unstopped, _ := tree.UnstoppedServiceReport() //nolint:errcheck // best-effort diagnostics
	for _, svc := range unstopped {
		logger.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
	}

	logger.Info().Msg("EventPulse stopped gracefully")
	return nil
}

// openDependencies opens the optional engine collaborators selected by cfg.
// Disabled features leave their Dependencies field nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func openDependencies(cfg *config.Config, logger zerolog.Logger, comps *components) (predict.Dependencies, *history.Store, *events.Bus, error) {
	var deps predict.Dependencies

	if cfg.Model.StoragePath != "" {
		store, err := storage.NewStore(cfg.Model.StoragePath)
		if err != nil {
			return deps, nil, nil, fmt.Errorf("open model storage: %w", err)
		}
		deps.Store = store
		logger.Info().Str("path", cfg.Model.StoragePath).Msg("model storage ready")
	} else {
		logger.Warn().Msg("model storage disabled; trained models will not survive restarts")
	}

	if cfg.Cache.Enabled {
		backend, err := cache.Open(cfg.Cache, logging.WithComponent("cache"))
		if err != nil {
			return deps, nil, nil, fmt.Errorf("open prediction cache: %w", err)
		}
		predictionCache := cache.NewPredictionCache(backend, cfg.Cache.TTL, logging.WithComponent("cache"))
		comps.onClose(predictionCache.Close)
		deps.Cache = predictionCache
		logger.Info().Str("backend", backend.Name()).Dur("ttl", cfg.Cache.TTL).Msg("prediction cache ready")
	}

	var hist *history.Store
	if cfg.History.Enabled {
		var err error
		hist, err = history.Open(cfg.History, logging.WithComponent("history"))
		if err != nil {
			return deps, nil, nil, fmt.Errorf("open history database: %w", err)
		}
		comps.onClose(hist.Close)
		deps.History = hist
		logger.Info().Str("path", cfg.History.Path).Msg("history database ready")
	}

	var bus *events.Bus
	if cfg.Events.Enabled {
		var err error
		bus, err = events.NewBus(cfg.Events, logger)
		if err != nil {
			return deps, hist, nil, fmt.Errorf("create event bus: %w", err)
		}
		comps.onClose(bus.Close)
		deps.Publisher = bus
		logger.Info().Str("backend", bus.Backend()).Str("topic", bus.Topic()).Msg("event bus ready")
	}

	return deps, hist, bus, nil
}
