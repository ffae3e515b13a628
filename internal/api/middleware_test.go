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
	"github.com/tomtom215/eventpulse/internal/config"
	"github.com/tomtom215/eventpulse/internal/predict"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewChiMiddlewareConfig(t *testing.T) {
	t.Parallel()

	sec := &config.SecurityConfig{
		CORSOrigins:       []string{"https://a.example"},
		RateLimitDisabled: true,
		PredictRateLimit:  50,
		TrainRateLimit:    2,
		RateLimitWindow:   30 * time.Second,
		MaxBodyBytes:      4096,
	}
	cfg := NewChiMiddlewareConfig(sec)

	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "https://a.example" {
		t.Errorf("origins = %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.RateLimitDisabled {
		t.Error("rate limit should be disabled")
	}
	if cfg.PredictLimit != (RateLimitConfig{Requests: 50, Window: 30 * time.Second}) {
		t.Errorf("predict limit = %+v", cfg.PredictLimit)
	}
	if cfg.TrainLimit != (RateLimitConfig{Requests: 2, Window: 30 * time.Second}) {
		t.Errorf("train limit = %+v", cfg.TrainLimit)
	}
	if cfg.MaxBodyBytes != 4096 {
		t.Errorf("max body = %d", cfg.MaxBodyBytes)
	}
}

func TestRateLimitCustom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		disabled bool
		limit    RateLimitConfig
		requests int
		wantLast int
	}{
		{"within limit", false, RateLimitConfig{Requests: 3, Window: time.Minute}, 3, http.StatusOK},
		{"over limit", false, RateLimitConfig{Requests: 2, Window: time.Minute}, 3, http.StatusTooManyRequests},
		{"disabled", true, RateLimitConfig{Requests: 1, Window: time.Minute}, 5, http.StatusOK},
		{"zero requests is no-op", false, RateLimitConfig{Requests: 0, Window: time.Minute}, 5, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultChiMiddlewareConfig()
			cfg.RateLimitDisabled = tt.disabled
			handler := NewChiMiddleware(cfg).RateLimitCustom(tt.limit)(okHandler())

			var last *httptest.ResponseRecorder
			for i := 0; i < tt.requests; i++ {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", nil)
				req.RemoteAddr = "192.0.2.10:1234"
				last = httptest.NewRecorder()
				handler.ServeHTTP(last, req)
			}
			if last.Code != tt.wantLast {
				t.Errorf("last status = %d, want %d", last.Code, tt.wantLast)
			}
			if tt.wantLast == http.StatusTooManyRequests {
				if resp := decodeEnvelope(t, last, nil); resp.Error == nil || resp.Error.Code != ErrCodeTooManyRequests {
					t.Errorf("error = %+v", resp.Error)
				}
			}
		})
	}
}

func TestRateLimitIsPerIP(t *testing.T) {
	t.Parallel()

	handler := NewChiMiddleware(nil).RateLimitCustom(RateLimitConfig{Requests: 1, Window: time.Minute})(okHandler())

	for _, addr := range []string{"192.0.2.1:1000", "192.0.2.2:1000"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("first request from %s: status = %d", addr, rec.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, newTestEngine(t, predict.Dependencies{}))

	tests := []struct {
		name      string
		origin    string
		wantAllow string
	}{
		{"allowed origin", "https://app.example.com", "https://app.example.com"},
		{"unknown origin", "https://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodOptions, "/api/v1/predict", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestMaxBodySize(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Security.MaxBodyBytes = 64
	handler := NewHandler(newTestEngine(t, predict.Dependencies{}), cfg, nil, zerolog.Nop())
	chiCfg := NewChiMiddlewareConfig(&cfg.Security)
	chiCfg.RateLimitDisabled = true
	server := NewRouter(handler, NewChiMiddleware(chiCfg), auth.NewMiddleware(auth.AuthModeNone, nil, zerolog.Nop()), nil, zerolog.Nop()).SetupChi()

	body := `{"category":"TECH","city":"large","tags_count":3,"posted_days_before_event":10,"max_participants":100}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestAPISecurityHeadersHSTS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		proto    string
		wantHSTS bool
	}{
		{"plain http", "", false},
		{"forwarded https", "https", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rec := httptest.NewRecorder()
			APISecurityHeaders()(okHandler()).ServeHTTP(rec, req)

			if got := rec.Header().Get("Strict-Transport-Security") != ""; got != tt.wantHSTS {
				t.Errorf("HSTS present = %v, want %v", got, tt.wantHSTS)
			}
		})
	}
}
