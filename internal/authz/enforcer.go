// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

var (
	//go:embed model.conf
	builtinModel string

	//go:embed policy.csv
	builtinPolicy string
)

// Policy objects, one per API resource group.
const (
	ObjectPredictions = "predictions"
	ObjectTraining    = "training"
	ObjectModel       = "model"
	ObjectStats       = "stats"
)

// Policy actions.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// ErrNoAdapter is returned by LoadPolicy when the built-in policy is in use.
var ErrNoAdapter = errors.New("built-in policy has no file to reload")

// EnforcerConfig selects the RBAC model and policy.
type EnforcerConfig struct {
	// ModelPath replaces the built-in model.conf.
	ModelPath string `koanf:"model_path"`

	// PolicyPath replaces the built-in policy with a CSV file that
	// LoadPolicy can re-read.
	PolicyPath string `koanf:"policy_path"`

	// CacheTTL bounds how long a decision is reused. Zero disables caching.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// DefaultEnforcerConfig uses the built-in model and policy with a one
// minute decision cache.
func DefaultEnforcerConfig() EnforcerConfig {
	return EnforcerConfig{CacheTTL: time.Minute}
}

// Enforcer answers "may subject do action on object" from a Casbin policy.
type Enforcer struct {
	config   EnforcerConfig
	enforcer *casbin.SyncedEnforcer
	cache    *decisionCache
}

// NewEnforcer loads the model and policy named by config.
func NewEnforcer(config EnforcerConfig) (*Enforcer, error) {
	m, err := loadModel(config.ModelPath)
	if err != nil {
		return nil, err
	}

	var enforcer *casbin.SyncedEnforcer
	if config.PolicyPath != "" {
		if _, err := os.Stat(config.PolicyPath); err != nil {
			return nil, fmt.Errorf("casbin policy: %w", err)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(config.PolicyPath))
		if err != nil {
			return nil, fmt.Errorf("casbin enforcer: %w", err)
		}
	} else {
		if enforcer, err = casbin.NewSyncedEnforcer(m); err != nil {
			return nil, fmt.Errorf("casbin enforcer: %w", err)
		}
		if err := installPolicy(enforcer, builtinPolicy); err != nil {
			return nil, err
		}
	}

	e := &Enforcer{config: config, enforcer: enforcer}
	if config.CacheTTL > 0 {
		e.cache = newDecisionCache(config.CacheTTL)
	}
	return e, nil
}

func loadModel(path string) (model.Model, error) {
	var (
		m   model.Model
		err error
	)
	if path == "" {
		m, err = model.NewModelFromString(builtinModel)
	} else {
		m, err = model.NewModelFromFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}
	return m, nil
}

// parsePolicy splits CSV policy text into "p, sub, obj, act" rules and
// "g, member, role" groupings. Blank lines and # comments are skipped.
func parsePolicy(text string) (rules, groupings [][]string, err error) {
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		switch {
		case fields[0] == "p" && len(fields) == 4:
			rules = append(rules, fields[1:])
		case fields[0] == "g" && len(fields) == 3:
			groupings = append(groupings, fields[1:])
		default:
			return nil, nil, fmt.Errorf("policy line %d: malformed %q", n+1, line)
		}
	}
	return rules, groupings, nil
}

func installPolicy(enforcer *casbin.SyncedEnforcer, text string) error {
	rules, groupings, err := parsePolicy(text)
	if err != nil {
		return err
	}
	if len(rules) > 0 {
		if _, err := enforcer.AddPolicies(rules); err != nil {
			return fmt.Errorf("add policies: %w", err)
		}
	}
	if len(groupings) > 0 {
		if _, err := enforcer.AddGroupingPolicies(groupings); err != nil {
			return fmt.Errorf("add role groupings: %w", err)
		}
	}
	return nil
}

// Enforce reports whether subject may perform action on object.
func (e *Enforcer) Enforce(subject, object, action string) (bool, error) {
	if e.cache != nil {
		if allowed, ok := e.cache.get(subject, object, action); ok {
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("enforce %s %s %s: %w", subject, action, object, err)
	}
	if e.cache != nil {
		e.cache.set(subject, object, action, allowed)
	}
	return allowed, nil
}

// EnforceWithRoles allows the request when the subject itself or any of
// its token roles is permitted.
func (e *Enforcer) EnforceWithRoles(subject string, roles []string, object, action string) (bool, error) {
	for _, sub := range append([]string{subject}, roles...) {
		allowed, err := e.Enforce(sub, object, action)
		if err != nil || allowed {
			return allowed, err
		}
	}
	return false, nil
}

// AddRoleForUser grants role to user and forgets user's cached decisions.
func (e *Enforcer) AddRoleForUser(user, role string) (bool, error) {
	added, err := e.enforcer.AddGroupingPolicy(user, role)
	if err != nil {
		return false, fmt.Errorf("grant %s to %s: %w", role, user, err)
	}
	if e.cache != nil {
		e.cache.forget(user)
	}
	return added, nil
}

// GetRolesForUser returns the roles granted directly to user.
func (e *Enforcer) GetRolesForUser(user string) ([]string, error) {
	return e.enforcer.GetRolesForUser(user)
}

// LoadPolicy re-reads the policy file and drops cached decisions.
func (e *Enforcer) LoadPolicy() error {
	if e.config.PolicyPath == "" {
		return ErrNoAdapter
	}
	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("reload policy: %w", err)
	}
	if e.cache != nil {
		e.cache.reset()
	}
	return nil
}

// Close drops cached decisions.
func (e *Enforcer) Close() {
	if e.cache != nil {
		e.cache.reset()
	}
}
