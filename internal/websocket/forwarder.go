// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package websocket

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/models"
)

// EventSource delivers lifecycle events until ctx is cancelled.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan *models.LifecycleEvent, error)
}

// Forwarder relays lifecycle events from the bus to the hub.
type Forwarder struct {
	source EventSource
	hub    *Hub
	logger zerolog.Logger
}

// NewForwarder creates a forwarder from source to hub.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewForwarder(source EventSource, hub *Hub, logger zerolog.Logger) *Forwarder {
	return &Forwarder{
		source: source,
		hub:    hub,
		logger: logger.With().Str("component", "websocket-forwarder").Logger(),
	}
}

// Serve subscribes and forwards until ctx is cancelled. A subscription that
// ends while ctx is still live returns an error so the supervisor restarts it.
func (f *Forwarder) Serve(ctx context.Context) error {
	events, err := f.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to lifecycle events: %w", err)
	}
	f.logger.Info().Msg("forwarding lifecycle events to websocket clients")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("lifecycle event subscription closed")
			}
			f.hub.BroadcastLifecycle(event)
		}
	}
}

// String names the service in supervisor logs.
func (f *Forwarder) String() string { return "websocket-forwarder" }
