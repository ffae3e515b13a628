// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/predict"
)

func TestRoot(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, newTestEngine(t, predict.Dependencies{}))
	rec := doRequest(t, server, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var desc ServiceDescriptor
	decodeEnvelope(t, rec, &desc)
	if desc.Service != serviceName || desc.ModelName != "event_success_v2" || desc.ModelLoaded {
		t.Errorf("descriptor = %+v", desc)
	}
	if desc.Endpoints["predict"] != "POST /api/v1/predict" {
		t.Errorf("endpoints = %v", desc.Endpoints)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		trained    bool
		wantStatus string
		wantLoaded bool
	}{
		{"degraded without model", false, "degraded", false},
		{"healthy with model", true, "healthy", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := newTestEngine(t, predict.Dependencies{})
			if tt.trained {
				engine = trainedEngine(t)
			}
			server, _ := newTestServer(t, engine)

			rec := doRequest(t, server, http.MethodGet, "/health", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 in every state", rec.Code)
			}

			var health models.HealthResponse
			decodeEnvelope(t, rec, &health)
			if health.Status != tt.wantStatus || health.ModelLoaded != tt.wantLoaded {
				t.Errorf("health = %+v", health)
			}
			if tt.wantLoaded && (health.ModelName == nil || *health.ModelName != "event_success_v2") {
				t.Errorf("model name = %v", health.ModelName)
			}
			if !tt.wantLoaded && health.ModelName != nil {
				t.Errorf("model name without model = %v", *health.ModelName)
			}
		})
	}
}

func TestStatsIncludesRouteStatistics(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, predict.Dependencies{})
	server, _ := newTestServer(t, engine)

	for i := 0; i < 3; i++ {
		doRequest(t, server, http.MethodPost, "/api/v1/predict", strongEvent())
	}
	doRequest(t, server, http.MethodGet, "/health", nil)

	rec := doRequest(t, server, http.MethodGet, "/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var stats StatsResponse
	decodeEnvelope(t, rec, &stats)
	if stats.ModelLoaded || stats.TrainingInProgress {
		t.Errorf("stats = %+v", stats.ServiceStats)
	}
	if stats.FailedPredictions != 3 || stats.TotalPredictions != 0 {
		t.Errorf("failed = %d, total = %d", stats.FailedPredictions, stats.TotalPredictions)
	}

	byEndpoint := make(map[string]int64)
	for _, e := range stats.Endpoints {
		byEndpoint[e.Endpoint] = e.RequestCount
	}
	if byEndpoint["POST /api/v1/predict"] != 3 {
		t.Errorf("predict route count = %d, endpoints = %+v", byEndpoint["POST /api/v1/predict"], stats.Endpoints)
	}
	if byEndpoint["GET /health"] != 1 {
		t.Errorf("health route count = %d", byEndpoint["GET /health"])
	}
}

func TestWebSocketWithoutHub(t *testing.T) {
	t.Parallel()

	handler := NewHandler(newTestEngine(t, predict.Dependencies{}), testConfig(), nil, zerolog.Nop())
	rec := httptest.NewRecorder()
	handler.WebSocket(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
