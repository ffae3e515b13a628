// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/auth"
	"github.com/tomtom215/eventpulse/internal/authz"
	"github.com/tomtom215/eventpulse/internal/predict"
)

const testSecret = "router-test-secret-with-at-least-32-chars"

// newSecuredServer routes through JWT authentication and the embedded casbin
// policy.
func newSecuredServer(t *testing.T) (http.Handler, *auth.JWTManager) {
	t.Helper()

	jwtManager, err := auth.NewJWTManager(testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(enforcer.Close)

	cfg := testConfig()
	cfg.Security.AuthMode = string(auth.AuthModeJWT)
	handler := NewHandler(newTestEngine(t, predict.Dependencies{}), cfg, nil, zerolog.Nop())

	chiCfg := NewChiMiddlewareConfig(&cfg.Security)
	chiCfg.RateLimitDisabled = true
	router := NewRouter(handler, NewChiMiddleware(chiCfg),
		auth.NewMiddleware(auth.AuthModeJWT, jwtManager, zerolog.Nop()),
		authz.NewMiddleware(enforcer, zerolog.Nop()),
		zerolog.Nop())
	return router.SetupChi(), jwtManager
}

func TestRouterAuthorization(t *testing.T) {
	t.Parallel()

	server, jwtManager := newSecuredServer(t)

	tokens := make(map[string]string)
	for _, role := range []string{auth.RoleViewer, auth.RoleOperator, auth.RoleAdmin} {
		token, _, err := jwtManager.GenerateToken(role+"-user", role)
		if err != nil {
			t.Fatal(err)
		}
		tokens[role] = token
	}

	tests := []struct {
		name       string
		role       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"public health", "", http.MethodGet, "/health", "", http.StatusOK},
		{"public root", "", http.MethodGet, "/", "", http.StatusOK},
		{"stats requires token", "", http.MethodGet, "/stats", "", http.StatusUnauthorized},
		{"viewer reads stats", auth.RoleViewer, http.MethodGet, "/stats", "", http.StatusOK},
		{"predict requires token", "", http.MethodPost, "/api/v1/predict", "{}", http.StatusUnauthorized},
		{"viewer cannot predict", auth.RoleViewer, http.MethodPost, "/api/v1/predict", "{}", http.StatusForbidden},
		{"operator may predict", auth.RoleOperator, http.MethodPost, "/api/v1/predict", `{"category":"TECH"}`, http.StatusBadRequest},
		{"viewer reads training status", auth.RoleViewer, http.MethodGet, "/api/v1/training/status", "", http.StatusOK},
		{"viewer reads model info", auth.RoleViewer, http.MethodGet, "/api/v1/model/info", "", http.StatusServiceUnavailable},
		{"operator cannot train", auth.RoleOperator, http.MethodPost, "/api/v1/train", "", http.StatusForbidden},
		{"operator cannot reload", auth.RoleOperator, http.MethodPost, "/api/v1/model/reload", "", http.StatusForbidden},
		{"admin may reload", auth.RoleAdmin, http.MethodPost, "/api/v1/model/reload", "", http.StatusServiceUnavailable},
		{"admin may train with bad options", auth.RoleAdmin, http.MethodPost, "/api/v1/train", `{"n_samples":5}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.role != "" {
				req.Header.Set("Authorization", "Bearer "+tokens[tt.role])
			}
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s as %q: status = %d, want %d, body = %s",
					tt.method, tt.path, tt.role, rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRouterInvalidToken(t *testing.T) {
	t.Parallel()

	server, _ := newSecuredServer(t)

	other, err := auth.NewJWTManager("a-completely-different-secret-value-xyz", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	forged, _, err := other.GenerateToken("mallory", auth.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/training/status", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRouterFallbacks(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, newTestEngine(t, predict.Dependencies{}))

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"unknown route", http.MethodGet, "/api/v1/nothing", http.StatusNotFound, ErrCodeNotFound},
		{"wrong method", http.MethodGet, "/api/v1/predict", http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doRequest(t, server, tt.method, tt.path, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp := decodeEnvelope(t, rec, nil); resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v", resp.Error)
			}
		})
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, newTestEngine(t, predict.Dependencies{}))
	doRequest(t, server, http.MethodGet, "/health", nil)

	rec := doRequest(t, server, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("metrics output should contain api_requests_total")
	}
}

func TestRouterSecurityHeaders(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, newTestEngine(t, predict.Dependencies{}))
	rec := doRequest(t, server, http.MethodGet, "/api/v1/training/status", nil)

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Content-Type":           "application/json",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set")
	}
}
