// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/predict"
	"github.com/tomtom215/eventpulse/internal/predict/storage"
)

func TestModelInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTop    int
	}{
		{"configured default", "", http.StatusOK, 5},
		{"explicit top", "?top=3", http.StatusOK, 3},
		{"negative top", "?top=-1", http.StatusBadRequest, 0},
		{"non-numeric top", "?top=many", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, _ := newTestServer(t, trainedEngine(t))
			rec := doRequest(t, server, http.MethodGet, "/api/v1/model/info"+tt.query, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Code != http.StatusOK {
				return
			}

			var info models.ModelInfo
			decodeEnvelope(t, rec, &info)
			if info.ModelName != "event_success_v2" || info.Generation != 1 || info.FeaturesCount == 0 {
				t.Errorf("info = %+v", info)
			}
			if len(info.FeatureImportances) != tt.wantTop {
				t.Errorf("importances = %d, want %d", len(info.FeatureImportances), tt.wantTop)
			}
			for i := 1; i < len(info.FeatureImportances); i++ {
				if info.FeatureImportances[i].Importance > info.FeatureImportances[i-1].Importance {
					t.Errorf("importances not ranked: %+v", info.FeatureImportances)
					break
				}
			}
			if info.Config.NEstimators != 15 || !info.Config.FeatureEngineering {
				t.Errorf("config = %+v", info.Config)
			}
		})
	}
}

func TestModelInfoWithoutModel(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, newTestEngine(t, predict.Dependencies{}))
	rec := doRequest(t, server, http.MethodGet, "/api/v1/model/info", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp := decodeEnvelope(t, rec, nil); resp.Error == nil || resp.Error.Code != ErrCodeModelNotReady {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestModelStorageEndpointsWithoutStore(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, newTestEngine(t, predict.Dependencies{}))

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/model/versions"},
		{http.MethodPost, "/api/v1/model/reload"},
	} {
		rec := doRequest(t, server, tc.method, tc.path, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s status = %d, want 503", tc.method, tc.path, rec.Code)
		}
	}
}

func TestModelReload(t *testing.T) {
	t.Parallel()

	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	trainer := newTestEngine(t, predict.Dependencies{Store: store})
	if _, err := trainer.Train(context.Background(), predict.DefaultTrainingOptions()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	fresh := newTestEngine(t, predict.Dependencies{Store: store})
	server, _ := newTestServer(t, fresh)

	rec := doRequest(t, server, http.MethodGet, "/api/v1/model/versions", nil)
	var versions []storage.ModelMetadata
	decodeEnvelope(t, rec, &versions)
	if rec.Code != http.StatusOK || len(versions) != 1 || versions[0].Version != 1 {
		t.Fatalf("versions: status = %d, %+v", rec.Code, versions)
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
	}{
		{"missing version", "?version=99", http.StatusNotFound, ErrCodeModelNotFound},
		{"bad version", "?version=latest", http.StatusBadRequest, ErrCodeValidation},
		{"negative version", "?version=-1", http.StatusBadRequest, ErrCodeValidation},
	}
	for _, tt := range tests {
		rec := doRequest(t, server, http.MethodPost, "/api/v1/model/reload"+tt.query, nil)
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.wantStatus)
			continue
		}
		if resp := decodeEnvelope(t, rec, nil); resp.Error == nil || resp.Error.Code != tt.wantCode {
			t.Errorf("%s: error = %+v", tt.name, resp.Error)
		}
	}
	if fresh.Ready() {
		t.Fatal("failed reloads must not install a model")
	}

	rec = doRequest(t, server, http.MethodPost, "/api/v1/model/reload", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reload status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var info models.ModelInfo
	decodeEnvelope(t, rec, &info)
	if info.RunID != trainer.Model().RunID {
		t.Errorf("reloaded run id = %q, want %q", info.RunID, trainer.Model().RunID)
	}
	if !fresh.Ready() {
		t.Error("engine should serve the reloaded model")
	}

	rec = doRequest(t, server, http.MethodPost, "/api/v1/predict", strongEvent())
	if rec.Code != http.StatusOK {
		t.Errorf("predict after reload status = %d", rec.Code)
	}
}
