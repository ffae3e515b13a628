// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package authz

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/auth"
	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/models"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
	logger   zerolog.Logger
}

// NewMiddleware creates a new authorization middleware.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMiddleware(enforcer *Enforcer, logger zerolog.Logger) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		logger:   logger.With().Str("component", "authz").Logger(),
	}
}

// Authorize returns chi-compatible middleware requiring action on object.
// It must run after auth.Middleware.Authenticate.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := auth.GetAuthSubject(r.Context())
			if subject == nil {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "No authentication context")
				return
			}

			allowed, err := m.enforcer.EnforceWithRoles(subject.ID, subject.Roles, object, action)
			if err != nil {
				m.logger.Error().Err(err).Str("object", object).Str("action", action).Msg("authorization error")
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization failed")
				return
			}
			metrics.RecordAuthzDecision(object, action, allowed)

			if !allowed {
				m.logger.Debug().
					Str("subject", subject.ID).
					Strs("roles", subject.Roles).
					Str("object", object).
					Str("action", action).
					Msg("access denied")
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client may have disconnected
	json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}
