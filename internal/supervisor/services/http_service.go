// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultDrainTimeout bounds graceful shutdown when no timeout is given.
const DefaultDrainTimeout = 10 * time.Second

// ErrListenerStopped is returned when the listener closes without a
// shutdown request, for example after an external Shutdown call.
var ErrListenerStopped = errors.New("http listener stopped unexpectedly")

// HTTPServer is the lifecycle surface of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the prediction API under supervision and drains
// in-flight predictions on shutdown.
//
//	server := &http.Server{Addr: cfg.Addr(), Handler: router.SetupChi()}
//	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
type HTTPServerService struct {
	server       HTTPServer
	drainTimeout time.Duration
	logger       zerolog.Logger
}

// NewHTTPServerService wraps server. drainTimeout <= 0 selects
// DefaultDrainTimeout.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPServerService(server HTTPServer, drainTimeout time.Duration, logger zerolog.Logger) *HTTPServerService {
	if drainTimeout <= 0 {
		drainTimeout = DefaultDrainTimeout
	}
	l := logger.With().Str("service", "http")
	if srv, ok := server.(*http.Server); ok {
		l = l.Str("addr", srv.Addr)
	}
	return &HTTPServerService{
		server:       server,
		drainTimeout: drainTimeout,
		logger:       l.Logger(),
	}
}

// Serve implements suture.Service. The listener and the shutdown watcher
// share an errgroup: whichever finishes first with an error decides the
// result, and a requested shutdown ends with ctx.Err().
func (h *HTTPServerService) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h.logger.Info().Msg("http server listening")
		err := h.server.ListenAndServe()
		closed := err == nil || errors.Is(err, http.ErrServerClosed)
		switch {
		case closed && ctx.Err() != nil:
			return nil
		case closed:
			return ErrListenerStopped
		default:
			return fmt.Errorf("http listen: %w", err)
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() == nil {
			// The listener failed; nothing to drain.
			return nil
		}
		return h.drain()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (h *HTTPServerService) drain() error {
	h.logger.Info().Dur("timeout", h.drainTimeout).Msg("draining http server")

	// The Serve context is already done.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.drainTimeout)
	defer cancel()

	if err := h.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	h.logger.Info().Msg("http server drained")
	return nil
}

func (h *HTTPServerService) String() string {
	return "http-server"
}
