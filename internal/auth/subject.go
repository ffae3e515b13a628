// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package auth

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// AuthMode selects how API callers are identified.
type AuthMode string

const (
	// AuthModeNone treats every caller as the anonymous admin.
	AuthModeNone AuthMode = "none"

	// AuthModeJWT requires an HS256 bearer token.
	AuthModeJWT AuthMode = "jwt"
)

// ParseAuthMode accepts "none", "jwt" or the empty string (none), ignoring
// case and surrounding space.
func ParseAuthMode(s string) (AuthMode, error) {
	switch mode := AuthMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "", AuthModeNone:
		return AuthModeNone, nil
	case AuthModeJWT:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid auth mode %q: want none or jwt", s)
	}
}

func (m AuthMode) String() string {
	return string(m)
}

// Roles carried in tokens. Viewers read model, training and stats,
// operators also score events, admins also train and manage models.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

var knownRoles = []string{RoleAdmin, RoleOperator, RoleViewer}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	return slices.Contains(knownRoles, role)
}

// AuthSubject is the authenticated caller of one request.
type AuthSubject struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Roles      []string `json:"roles,omitempty"`
	AuthMethod AuthMode `json:"auth_method"`
	// ExpiresAt is the token expiry in Unix seconds, 0 when unauthenticated.
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// AnonymousSubject is attached to every request in AuthModeNone.
func AnonymousSubject() *AuthSubject {
	return &AuthSubject{
		ID:         "anonymous",
		Username:   "anonymous",
		Roles:      []string{RoleAdmin},
		AuthMethod: AuthModeNone,
	}
}

// HasRole reports whether the subject holds role.
func (s *AuthSubject) HasRole(role string) bool {
	return role != "" && slices.Contains(s.Roles, role)
}

// AuthSubjectFromClaims converts validated token claims. Nil claims give
// a nil subject.
func AuthSubjectFromClaims(claims *Claims) *AuthSubject {
	if claims == nil {
		return nil
	}
	s := &AuthSubject{
		ID:         claims.Username,
		Username:   claims.Username,
		AuthMethod: AuthModeJWT,
	}
	if claims.Role != "" {
		s.Roles = append(s.Roles, claims.Role)
	}
	if exp := claims.ExpiresAt; exp != nil {
		s.ExpiresAt = exp.Unix()
	}
	return s
}

type subjectKey struct{}

// WithAuthSubject returns a copy of ctx carrying subject.
func WithAuthSubject(ctx context.Context, subject *AuthSubject) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// GetAuthSubject returns the subject set by Middleware.Authenticate, or nil.
func GetAuthSubject(ctx context.Context) *AuthSubject {
	s, _ := ctx.Value(subjectKey{}).(*AuthSubject)
	return s
}
