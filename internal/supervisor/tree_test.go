// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// countingService runs until canceled, optionally failing its first
// failFirst starts or exiting with exitErr.
type countingService struct {
	name      string
	starts    atomic.Int32
	failFirst int32
	exitErr   error
}

func (s *countingService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.failFirst {
		return errors.New("simulated failure")
	}
	if s.exitErr != nil {
		return s.exitErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewSupervisorTree(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   TreeConfig
		want TreeConfig
	}{
		{"zero config gets defaults", TreeConfig{}, DefaultTreeConfig()},
		{
			"explicit values kept",
			TreeConfig{FailureThreshold: 3, FailureDecay: 10, FailureBackoff: time.Second, ShutdownTimeout: 2 * time.Second},
			TreeConfig{FailureThreshold: 3, FailureDecay: 10, FailureBackoff: time.Second, ShutdownTimeout: 2 * time.Second},
		},
		{
			"partial config filled",
			TreeConfig{FailureBackoff: 100 * time.Millisecond},
			TreeConfig{FailureThreshold: 5, FailureDecay: 30, FailureBackoff: 100 * time.Millisecond, ShutdownTimeout: 10 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree, err := NewSupervisorTree(testLogger(), tt.in)
			if err != nil {
				t.Fatalf("NewSupervisorTree: %v", err)
			}
			if tree.Root() == nil {
				t.Fatal("root supervisor should not be nil")
			}
			if tree.config != tt.want {
				t.Errorf("config = %+v, want %+v", tree.config, tt.want)
			}
		})
	}
}

func TestSupervisorTreeStartsEveryLayer(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := &countingService{name: "model-service"}
	messaging := &countingService{name: "websocket-hub"}
	api := &countingService{name: "http-server"}
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool {
		return data.starts.Load() > 0 && messaging.starts.Load() > 0 && api.starts.Load() > 0
	})

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}

	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("unstopped services = %v, err = %v", report, err)
	}
}

func TestSupervisorTreeRestartsFailedService(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	forwarder := &countingService{name: "websocket-forwarder", failFirst: 2}
	server := &countingService{name: "http-server"}
	tree.AddMessagingService(forwarder)
	tree.AddAPIService(server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return forwarder.starts.Load() >= 3 })

	if got := server.starts.Load(); got != 1 {
		t.Errorf("http server starts = %d, want 1; failures must stay in their layer", got)
	}

	cancel()
	<-errCh
}

func TestSupervisorTreeHonorsDoNotRestart(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})

	oneShot := &countingService{name: "model-service", exitErr: suture.ErrDoNotRestart}
	tree.AddDataService(oneShot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return oneShot.starts.Load() >= 1 })
	time.Sleep(100 * time.Millisecond)

	if got := oneShot.starts.Load(); got != 1 {
		t.Errorf("starts = %d, want 1", got)
	}

	cancel()
	<-errCh
}

func TestDefaultTreeConfig(t *testing.T) {
	t.Parallel()

	config := DefaultTreeConfig()
	if config.FailureThreshold != 5.0 || config.FailureDecay != 30.0 {
		t.Errorf("failure settings = %v/%v", config.FailureThreshold, config.FailureDecay)
	}
	if config.FailureBackoff != 15*time.Second || config.ShutdownTimeout != 10*time.Second {
		t.Errorf("durations = %v/%v", config.FailureBackoff, config.ShutdownTimeout)
	}
}

func TestNewSupervisorTreeRejectsNegativeConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: -time.Second}); err == nil {
		t.Fatal("expected error for negative shutdown timeout")
	}
}

func TestSupervisorTreeAddUnknownLayer(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{})
	if _, err := tree.Add(Layer("cache-layer"), &countingService{name: "x"}); err == nil {
		t.Error("expected error for unknown layer")
	}
	if _, err := tree.Add(LayerAPI, &countingService{name: "http-server"}); err != nil {
		t.Errorf("Add(api) = %v", err)
	}
}
