// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package authz

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupEnforcer creates an enforcer with the embedded policy.
func setupEnforcer(t *testing.T, cfg EnforcerConfig) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(cfg)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEnforcer_DefaultPolicy(t *testing.T) {
	t.Parallel()

	e := setupEnforcer(t, DefaultEnforcerConfig())

	tests := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{"viewer", ObjectModel, ActionRead, true},
		{"viewer", ObjectStats, ActionRead, true},
		{"viewer", ObjectTraining, ActionRead, true},
		{"viewer", ObjectPredictions, ActionWrite, false},
		{"viewer", ObjectTraining, ActionWrite, false},
		{"operator", ObjectPredictions, ActionWrite, true},
		{"operator", ObjectModel, ActionRead, true},
		{"operator", ObjectTraining, ActionWrite, false},
		{"operator", ObjectModel, ActionWrite, false},
		{"admin", ObjectTraining, ActionWrite, true},
		{"admin", ObjectModel, ActionWrite, true},
		{"admin", ObjectPredictions, ActionWrite, true},
		{"admin", ObjectStats, ActionRead, true},
		{"guest", ObjectStats, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.object+"/"+tt.action, func(t *testing.T) {
			t.Parallel()
			got, err := e.Enforce(tt.role, tt.object, tt.action)
			if err != nil {
				t.Fatalf("Enforce: %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.role, tt.object, tt.action, got, tt.want)
			}
		})
	}
}

func TestEnforcer_EnforceWithRoles(t *testing.T) {
	t.Parallel()

	e := setupEnforcer(t, DefaultEnforcerConfig())

	tests := []struct {
		name  string
		roles []string
		want  bool
	}{
		{"no roles", nil, false},
		{"viewer", []string{"viewer"}, false},
		{"viewer and admin", []string{"viewer", "admin"}, true},
		{"admin", []string{"admin"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := e.EnforceWithRoles("alice", tt.roles, ObjectTraining, ActionWrite)
			if err != nil {
				t.Fatalf("EnforceWithRoles: %v", err)
			}
			if got != tt.want {
				t.Errorf("EnforceWithRoles(%v) = %v, want %v", tt.roles, got, tt.want)
			}
		})
	}
}

func TestEnforcer_AddRoleInvalidatesCache(t *testing.T) {
	t.Parallel()

	e := setupEnforcer(t, EnforcerConfig{CacheTTL: time.Hour})

	allowed, err := e.Enforce("bob", ObjectModel, ActionWrite)
	if err != nil || allowed {
		t.Fatalf("bob before role: allowed=%v err=%v", allowed, err)
	}
	if e.cache.size() != 1 {
		t.Fatalf("cache entries = %d, want 1", e.cache.size())
	}

	if _, err := e.AddRoleForUser("bob", "admin"); err != nil {
		t.Fatalf("AddRoleForUser: %v", err)
	}
	allowed, err = e.Enforce("bob", ObjectModel, ActionWrite)
	if err != nil || !allowed {
		t.Errorf("bob after admin role: allowed=%v err=%v", allowed, err)
	}

	roles, err := e.GetRolesForUser("bob")
	if err != nil || len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("GetRolesForUser = %v, %v", roles, err)
	}
}

func TestEnforcer_PolicyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(path, []byte("p, viewer, stats, read\n"), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}

	e := setupEnforcer(t, EnforcerConfig{PolicyPath: path})
	if ok, _ := e.Enforce("viewer", ObjectStats, ActionRead); !ok {
		t.Error("viewer should read stats from file policy")
	}
	if ok, _ := e.Enforce("admin", ObjectModel, ActionWrite); ok {
		t.Error("file policy does not grant admin model write")
	}

	if err := os.WriteFile(path, []byte("p, viewer, stats, read\np, admin, model, write\n"), 0o600); err != nil {
		t.Fatalf("rewrite policy: %v", err)
	}
	if err := e.LoadPolicy(); err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if ok, _ := e.Enforce("admin", ObjectModel, ActionWrite); !ok {
		t.Error("reloaded policy should grant admin model write")
	}
}

func TestEnforcer_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewEnforcer(EnforcerConfig{PolicyPath: filepath.Join(t.TempDir(), "missing.csv")}); err == nil {
		t.Error("expected error for missing policy file")
	}
	if _, err := NewEnforcer(EnforcerConfig{ModelPath: filepath.Join(t.TempDir(), "missing.conf")}); err == nil {
		t.Error("expected error for missing model file")
	}

	e := setupEnforcer(t, DefaultEnforcerConfig())
	if err := e.LoadPolicy(); !errors.Is(err, ErrNoAdapter) {
		t.Errorf("LoadPolicy error = %v, want ErrNoAdapter", err)
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		text          string
		wantRules     int
		wantGroupings int
		wantErr       bool
	}{
		{"built-in", builtinPolicy, 6, 2, false},
		{"comments and blanks", "# header\n\n p , viewer , stats , read \n", 1, 0, false},
		{"short rule", "p, viewer, stats\n", 0, 0, true},
		{"unknown section", "x, viewer, stats, read\n", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rules, groupings, err := parsePolicy(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePolicy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(rules) != tt.wantRules || len(groupings) != tt.wantGroupings {
				t.Errorf("rules=%d groupings=%d, want %d/%d", len(rules), len(groupings), tt.wantRules, tt.wantGroupings)
			}
		})
	}
}

func TestDecisionCacheExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newDecisionCache(time.Minute)
	c.now = func() time.Time { return now }

	c.set("alice", ObjectModel, ActionRead, true)
	if allowed, ok := c.get("alice", ObjectModel, ActionRead); !ok || !allowed {
		t.Fatalf("fresh entry: allowed=%v ok=%v", allowed, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.get("alice", ObjectModel, ActionRead); ok {
		t.Error("expired entry should miss")
	}
	if c.size() != 0 {
		t.Errorf("expired entry not evicted, size = %d", c.size())
	}

	c.set("bob", ObjectStats, ActionRead, false)
	c.forget("bob")
	if c.size() != 0 {
		t.Errorf("forget left %d entries", c.size())
	}
}
