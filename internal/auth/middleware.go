// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/logging"
	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/models"
)

// Middleware authenticates requests according to the configured mode.
type Middleware struct {
	mode       AuthMode
	jwtManager *JWTManager
	logger     zerolog.Logger
}

// NewMiddleware creates the authentication middleware. jwtManager may be nil
// when mode is AuthModeNone.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMiddleware(mode AuthMode, jwtManager *JWTManager, logger zerolog.Logger) *Middleware {
	return &Middleware{
		mode:       mode,
		jwtManager: jwtManager,
		logger:     logger.With().Str("component", "auth").Logger(),
	}
}

// Mode returns the active authentication mode.
func (m *Middleware) Mode() AuthMode { return m.mode }

// Authenticate stores the caller's AuthSubject in the request context or
// rejects the request with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == AuthModeNone || m.jwtManager == nil {
			next.ServeHTTP(w, r.WithContext(WithAuthSubject(r.Context(), AnonymousSubject())))
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			metrics.RecordAuthAttempt(string(m.mode), "missing")
			writeUnauthorized(w, "Authorization bearer token required")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			metrics.RecordAuthAttempt(string(m.mode), "invalid")
			m.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected bearer token")
			writeUnauthorized(w, "Invalid or expired token")
			return
		}

		metrics.RecordAuthAttempt(string(m.mode), "success")
		ctx := WithAuthSubject(r.Context(), AuthSubjectFromClaims(claims))
		ctx = logging.ContextWithUser(ctx, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="eventpulse"`)
	w.WriteHeader(http.StatusUnauthorized)
	//nolint:errcheck // client may have disconnected
	json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: "UNAUTHORIZED", Message: message},
	})
}
