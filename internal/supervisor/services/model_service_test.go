// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/predict"
)

// mockModelEngine is a mock implementation for testing.
type mockModelEngine struct {
	mu          sync.Mutex
	ready       bool
	reloadErr   error
	trainErr    error
	reloadCalls int
	triggers    []string
}

func (m *mockModelEngine) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *mockModelEngine) Reload(context.Context, int) (*models.ModelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloadCalls++
	if m.reloadErr != nil {
		return nil, m.reloadErr
	}
	m.ready = true
	return &models.ModelInfo{ModelName: "event_success_v2", ModelVersion: "2.0.0", Generation: 1}, nil
}

func (m *mockModelEngine) Train(_ context.Context, opts predict.TrainingOptions) (*models.TrainingRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers = append(m.triggers, opts.Trigger)
	if m.trainErr != nil {
		return nil, m.trainErr
	}
	m.ready = true
	return &models.TrainingRun{RunID: "run-1", Status: models.RunCompleted, Trigger: opts.Trigger}, nil
}

func (m *mockModelEngine) calls() (reloads int, triggers []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloadCalls, append([]string(nil), m.triggers...)
}

func TestModelService_String(t *testing.T) {
	t.Parallel()

	service := NewModelService(&mockModelEngine{}, ModelServiceConfig{}, zerolog.Nop())
	if got := service.String(); got != "model-service" {
		t.Errorf("String() = %q, want %q", got, "model-service")
	}
}

func TestModelService_Startup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		engine         *mockModelEngine
		trainOnStartup bool
		wantReloads    int
		wantTriggers   []string
	}{
		{
			name:        "loads stored model",
			engine:      &mockModelEngine{},
			wantReloads: 1,
		},
		{
			name:           "stored model skips bootstrap",
			engine:         &mockModelEngine{},
			trainOnStartup: true,
			wantReloads:    1,
		},
		{
			name:           "bootstraps when storage is empty",
			engine:         &mockModelEngine{reloadErr: predict.ErrModelNotFound},
			trainOnStartup: true,
			wantReloads:    1,
			wantTriggers:   []string{TriggerStartup},
		},
		{
			name:           "bootstraps without storage",
			engine:         &mockModelEngine{reloadErr: predict.ErrNoStore},
			trainOnStartup: true,
			wantReloads:    1,
			wantTriggers:   []string{TriggerStartup},
		},
		{
			name:           "bootstraps after a corrupt model",
			engine:         &mockModelEngine{reloadErr: errors.New("checksum mismatch")},
			trainOnStartup: true,
			wantReloads:    1,
			wantTriggers:   []string{TriggerStartup},
		},
		{
			name:        "no bootstrap when disabled",
			engine:      &mockModelEngine{reloadErr: predict.ErrModelNotFound},
			wantReloads: 1,
		},
		{
			name:        "ready engine is left alone",
			engine:      &mockModelEngine{ready: true},
			wantReloads: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := NewModelService(tt.engine, ModelServiceConfig{TrainOnStartup: tt.trainOnStartup}, zerolog.Nop())
			err := service.Serve(context.Background())
			if !errors.Is(err, suture.ErrDoNotRestart) {
				t.Fatalf("Serve() = %v, want ErrDoNotRestart without a retrain interval", err)
			}

			reloads, triggers := tt.engine.calls()
			if reloads != tt.wantReloads {
				t.Errorf("reloads = %d, want %d", reloads, tt.wantReloads)
			}
			if len(triggers) != len(tt.wantTriggers) {
				t.Fatalf("triggers = %v, want %v", triggers, tt.wantTriggers)
			}
			for i := range triggers {
				if triggers[i] != tt.wantTriggers[i] {
					t.Errorf("trigger[%d] = %q, want %q", i, triggers[i], tt.wantTriggers[i])
				}
			}
		})
	}
}

func TestModelService_BootstrapRunsOnce(t *testing.T) {
	t.Parallel()

	engine := &mockModelEngine{reloadErr: predict.ErrModelNotFound, trainErr: errors.New("fit failed")}
	service := NewModelService(engine, ModelServiceConfig{TrainOnStartup: true}, zerolog.Nop())

	_ = service.Serve(context.Background())
	_ = service.Serve(context.Background())

	reloads, triggers := engine.calls()
	if reloads != 1 || len(triggers) != 1 {
		t.Errorf("reloads = %d, triggers = %v, want a single startup attempt", reloads, triggers)
	}
}

func TestModelService_ScheduledRetraining(t *testing.T) {
	t.Parallel()

	engine := &mockModelEngine{ready: true}
	service := NewModelService(engine, ModelServiceConfig{
		RetrainInterval: 50 * time.Millisecond,
		Options:         predict.TrainingOptions{Samples: 500, FeatureEngineering: true},
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Millisecond)
	defer cancel()

	if err := service.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
	}

	_, triggers := engine.calls()
	if len(triggers) < 2 {
		t.Fatalf("scheduled runs = %d, want >= 2", len(triggers))
	}
	for _, trigger := range triggers {
		if trigger != TriggerSchedule {
			t.Errorf("trigger = %q, want %q", trigger, TriggerSchedule)
		}
	}
}

func TestModelService_RetrainingErrorsKeepRunning(t *testing.T) {
	t.Parallel()

	for _, trainErr := range []error{predict.ErrTrainingInProgress, errors.New("fit failed")} {
		engine := &mockModelEngine{ready: true, trainErr: trainErr}
		service := NewModelService(engine, ModelServiceConfig{RetrainInterval: 30 * time.Millisecond}, zerolog.Nop())

		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
		err := service.Serve(ctx)
		cancel()

		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("%v: Serve() = %v, want context.DeadlineExceeded", trainErr, err)
		}
		if _, triggers := engine.calls(); len(triggers) < 2 {
			t.Errorf("%v: runs = %d, want the loop to continue after errors", trainErr, len(triggers))
		}
	}
}

func TestModelService_GracefulShutdown(t *testing.T) {
	t.Parallel()

	service := NewModelService(&mockModelEngine{ready: true}, ModelServiceConfig{RetrainInterval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- service.Serve(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not complete in time")
	}
}
