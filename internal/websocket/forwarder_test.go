// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/events"
	"github.com/tomtom215/eventpulse/internal/models"
)

type chanSource struct {
	ch  chan *models.LifecycleEvent
	err error
}

func (s *chanSource) Subscribe(context.Context) (<-chan *models.LifecycleEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ch, nil
}

func TestForwarder_RelaysEvents(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	client := createTestClient(hub, 8)
	hub.Register <- client
	waitForCount(t, hub, 1)

	src := &chanSource{ch: make(chan *models.LifecycleEvent, 4)}
	fwd := NewForwarder(src, hub, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- fwd.Serve(ctx) }()

	src.ch <- lifecycleEvent(models.EventTrainingStarted)
	src.ch <- lifecycleEvent("unknown.type")
	src.ch <- lifecycleEvent(models.EventModelReloaded)

	if msg := receiveMessage(t, client); msg.Type != MessageTypeTrainingStarted {
		t.Errorf("first message = %q", msg.Type)
	}
	if msg := receiveMessage(t, client); msg.Type != MessageTypeModelReloaded {
		t.Errorf("second message = %q", msg.Type)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder did not stop")
	}
}

func TestForwarder_SubscriptionErrors(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop())

	t.Run("subscribe fails", func(t *testing.T) {
		t.Parallel()
		fwd := NewForwarder(&chanSource{err: events.ErrClosed}, hub, zerolog.Nop())
		if err := fwd.Serve(context.Background()); !errors.Is(err, events.ErrClosed) {
			t.Errorf("Serve error = %v, want ErrClosed", err)
		}
	})

	t.Run("subscription ends", func(t *testing.T) {
		t.Parallel()
		src := &chanSource{ch: make(chan *models.LifecycleEvent)}
		close(src.ch)
		fwd := NewForwarder(src, hub, zerolog.Nop())
		if err := fwd.Serve(context.Background()); err == nil {
			t.Error("Serve should fail when the subscription closes early")
		}
	})
}

func TestForwarder_WithMemoryBus(t *testing.T) {
	t.Parallel()

	bus, err := events.NewBus(events.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	hub := startHub(t)
	client := createTestClient(hub, 8)
	hub.Register <- client
	waitForCount(t, hub, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = NewForwarder(bus, hub, zerolog.Nop()).Serve(ctx) }()

	// The subscription is asynchronous; publish until the client sees one.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(3 * time.Second)
	for {
		if err := bus.Publish(ctx, lifecycleEvent(models.EventTrainingCompleted)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		select {
		case msg := <-client.send:
			if msg.Type != MessageTypeTrainingCompleted {
				t.Fatalf("message type = %q", msg.Type)
			}
			return
		case <-ticker.C:
		case <-deadline:
			t.Fatal("event never reached the websocket client")
		}
	}
}
