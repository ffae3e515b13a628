// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/eventpulse/internal/models"
)

func testEvent(id, eventType string) *models.LifecycleEvent {
	return &models.LifecycleEvent{
		ID:           id,
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		ModelName:    "event_success_v2",
		ModelVersion: "2.0.0",
		Generation:   3,
		Run: &models.TrainingRun{
			RunID:   "run-" + id,
			Status:  models.RunCompleted,
			Samples: 5000,
		},
	}
}

func receive(t *testing.T, ch <-chan *models.LifecycleEvent, timeout time.Duration) *models.LifecycleEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case <-time.After(timeout):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "nats with url", mutate: func(c *Config) { c.Backend = BackendNATS }},
		{name: "nats embedded without url", mutate: func(c *Config) {
			c.Backend = BackendNATS
			c.NATSURL = ""
			c.EmbeddedServer = true
		}},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "kafka" }, wantErr: "unknown event backend"},
		{name: "empty topic", mutate: func(c *Config) { c.Topic = "" }, wantErr: "topic"},
		{name: "nats without url", mutate: func(c *Config) {
			c.Backend = BackendNATS
			c.NATSURL = ""
		}, wantErr: "nats_url"},
		{name: "zero threshold", mutate: func(c *Config) { c.CircuitBreaker.FailureThreshold = 0 }, wantErr: "failure_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryBusPublishSubscribe(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	types := []string{models.EventTrainingStarted, models.EventTrainingCompleted, models.EventModelReloaded}
	for i, typ := range types {
		if err := bus.Publish(ctx, testEvent(string(rune('a'+i)), typ)); err != nil {
			t.Fatalf("Publish(%s): %v", typ, err)
		}
	}

	// gochannel does not preserve order across publishes.
	seen := make(map[string]bool)
	for range types {
		got := receive(t, ch, 2*time.Second)
		seen[got.Type] = true
		if got.Run == nil || got.Generation != 3 {
			t.Errorf("event payload not decoded: %+v", got)
		}
	}
	for _, want := range types {
		if !seen[want] {
			t.Errorf("event %s not received", want)
		}
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription channel not closed after cancel")
		}
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	if err := bus.Publish(context.Background(), testEvent("x", models.EventTrainingFailed)); err != nil {
		t.Fatalf("Publish without subscribers: %v", err)
	}
	if bus.BreakerState() != "closed" {
		t.Errorf("BreakerState = %s", bus.BreakerState())
	}
}

func TestClosedBus(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if err := bus.Publish(context.Background(), testEvent("x", models.EventTrainingStarted)); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish after close error = %v, want ErrClosed", err)
	}
	if _, err := bus.Subscribe(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe after close error = %v, want ErrClosed", err)
	}
}

type failingPublisher struct {
	calls int
}

func (p *failingPublisher) Publish(string, ...*message.Message) error {
	p.calls++
	return errors.New("broker unavailable")
}

func (p *failingPublisher) Close() error { return nil }

func TestCircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.CircuitBreaker.Name = "test-breaker-opens"
	cfg.CircuitBreaker.FailureThreshold = 3
	cfg.CircuitBreaker.Timeout = time.Hour

	pub := &failingPublisher{}
	sub := gochannel.NewGoChannel(gochannel.Config{}, NewLoggerAdapter(zerolog.Nop()))
	defer sub.Close()
	bus := newBus(pub, sub, cfg, zerolog.Nop())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := bus.Publish(ctx, testEvent("f", models.EventTrainingFailed))
		if err == nil || !strings.Contains(err.Error(), "broker unavailable") {
			t.Fatalf("attempt %d: error = %v", i, err)
		}
	}

	if bus.BreakerState() != "open" {
		t.Fatalf("BreakerState = %s, want open", bus.BreakerState())
	}

	err := bus.Publish(ctx, testEvent("f", models.EventTrainingFailed))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("error = %v, want ErrOpenState", err)
	}
	if pub.calls != 3 {
		t.Errorf("publisher called %d times, want 3", pub.calls)
	}
}

func TestNATSBusWithEmbeddedServer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendNATS
	cfg.EmbeddedServer = true
	cfg.EmbeddedPort = -1
	cfg.CircuitBreaker.Name = "test-nats"

	bus, err := NewBus(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	if bus.embedded == nil || !bus.embedded.IsRunning() {
		t.Fatal("embedded server not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// Core NATS drops messages published before the subscription reaches the
	// server, so publish until one arrives.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if err := bus.Publish(ctx, testEvent("n1", models.EventModelReloaded)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		select {
		case ev := <-ch:
			if ev == nil {
				t.Fatal("subscription closed")
			}
			if ev.Type != models.EventModelReloaded || ev.ModelName != "event_success_v2" {
				t.Fatalf("unexpected event: %+v", ev)
			}
			return
		case <-ticker.C:
		case <-ctx.Done():
			t.Fatal("timed out waiting for NATS delivery")
		}
	}
}

func TestBreakerOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"published", nil, "success"},
		{"open", gobreaker.ErrOpenState, "rejected"},
		{"half-open overflow", fmt.Errorf("wrapped: %w", gobreaker.ErrTooManyRequests), "rejected"},
		{"broker error", errors.New("connection refused"), "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := breakerOutcome(tt.err); got != tt.want {
				t.Errorf("breakerOutcome = %q, want %q", got, tt.want)
			}
		})
	}
}
