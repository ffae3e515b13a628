// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/eventpulse/internal/auth"
	"github.com/tomtom215/eventpulse/internal/cache"
	"github.com/tomtom215/eventpulse/internal/events"
	"github.com/tomtom215/eventpulse/internal/logging"
)

// Bounds applied to the per-IP rate limits.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100_000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
	minMaxBodyBytes      = 1 << 10
)

// check returns an error built from format when ok is false.
func check(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	return fmt.Errorf(format, args...)
}

// firstErr returns the first non-nil error, in argument order.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate reports the first invalid setting, section by section. Messages
// name the environment variable to fix.
func (c *Config) Validate() error {
	return firstErr(
		c.validateServer(),
		c.validateLogging(),
		c.validateModel(),
		c.validateTraining(),
		c.validateCache(),
		c.validateEvents(),
		c.validateSecurity(),
	)
}

func (c *Config) validateServer() error {
	s := &c.Server
	return firstErr(
		check(s.Port >= 1 && s.Port <= 65535, "HTTP_PORT must be between 1 and 65535, got %d", s.Port),
		check(s.ReadTimeout > 0 && s.WriteTimeout > 0, "HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive"),
		check(s.ShutdownTimeout > 0, "SHUTDOWN_TIMEOUT must be positive"),
		check(s.StatsWindow >= 1, "STATS_WINDOW must be at least 1"),
	)
}

func (c *Config) validateLogging() error {
	format := c.Logging.Format
	return firstErr(
		check(logging.ValidLevel(c.Logging.Level), "LOG_LEVEL %q is not one of trace, debug, info, warn, error", c.Logging.Level),
		check(format == "" || format == "json" || format == "console", "LOG_FORMAT %q is not one of json, console", format),
	)
}

func (c *Config) validateModel() error {
	m := &c.Model
	interval := m.RetrainInterval
	return firstErr(
		check(strings.TrimSpace(m.Name) != "", "MODEL_NAME is required"),
		check(!strings.ContainsAny(m.Name, `/\ `), "MODEL_NAME %q must be a bare file stem without separators or spaces", m.Name),
		check(m.KeepVersions >= 0, "MODEL_KEEP_VERSIONS must be non-negative"),
		check(interval == 0 || interval >= time.Minute, "RETRAIN_INTERVAL must be 0 (off) or at least 1m, got %v", interval),
		check(m.ImportancesTopN >= 1, "MODEL_IMPORTANCES_TOP_N must be at least 1"),
	)
}

// validateTraining runs the engine's own checks so the service never starts
// with settings a training run would reject.
func (c *Config) validateTraining() error {
	ec := c.EngineConfig()
	if err := ec.Validate(); err != nil {
		return fmt.Errorf("training configuration: %w", err)
	}
	return nil
}

func (c *Config) validateCache() error {
	cc := &c.Cache
	if !cc.Enabled {
		return nil
	}

	var backendErr error
	switch cc.Backend {
	case "", cache.BackendMemory:
		backendErr = check(cc.MaxEntries >= 1, "PREDICTION_CACHE_MAX_ENTRIES must be at least 1")
	case cache.BackendBadger:
		backendErr = check(cc.BadgerPath != "", "PREDICTION_CACHE_BADGER_PATH is required for the badger backend")
	case cache.BackendRedis:
		if cc.RedisAddr == "" {
			backendErr = errors.New("REDIS_ADDR is required for the redis backend")
		} else if err := validateHostPort(cc.RedisAddr); err != nil {
			backendErr = fmt.Errorf("REDIS_ADDR: %w", err)
		}
	default:
		backendErr = fmt.Errorf("PREDICTION_CACHE_BACKEND %q is not one of memory, badger, redis", cc.Backend)
	}
	return firstErr(backendErr, check(cc.TTL > 0, "PREDICTION_CACHE_TTL must be positive"))
}

func (c *Config) validateEvents() error {
	ev := &c.Events
	if !ev.Enabled {
		return nil
	}
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if ev.Backend != events.BackendNATS || ev.EmbeddedServer {
		return nil
	}
	if err := validateNATSURL(ev.NATSURL); err != nil {
		return fmt.Errorf("NATS_URL: %w", err)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	sec := &c.Security
	mode, err := auth.ParseAuthMode(sec.AuthMode)
	if err != nil {
		return fmt.Errorf("AUTH_MODE: %w", err)
	}
	if mode == auth.AuthModeNone && c.IsProduction() {
		return errors.New("AUTH_MODE=none is refused when ENVIRONMENT=production; " +
			"set AUTH_MODE=jwt, or ENVIRONMENT=development for local testing")
	}
	if mode == auth.AuthModeJWT {
		if err := firstErr(c.validateJWTSecret(), check(sec.TokenTTL > 0, "TOKEN_TTL must be positive")); err != nil {
			return err
		}
	}
	return firstErr(
		c.validateCORS(mode),
		c.validateRateLimits(),
		check(sec.MaxBodyBytes >= minMaxBodyBytes, "MAX_BODY_BYTES must be at least %d", minMaxBodyBytes),
		check(sec.Authz.CacheTTL >= 0, "CASBIN_CACHE_TTL must be non-negative"),
	)
}

// Fragments that mark a secret copied from an example file.
var placeholderPatterns = []string{"REPLACE", "CHANGEME", "CHANGE_ME", "YOUR_SECRET", "PLACEHOLDER", "EXAMPLE"}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	return slices.ContainsFunc(placeholderPatterns, func(p string) bool {
		return strings.Contains(upper, p)
	})
}

func (c *Config) validateJWTSecret() error {
	secret := c.Security.JWTSecret
	switch {
	case secret == "":
		return errors.New("JWT_SECRET is required when AUTH_MODE is jwt")
	case len(secret) < auth.MinSecretLength:
		return fmt.Errorf("JWT_SECRET must be at least %d characters, got %d", auth.MinSecretLength, len(secret))
	case containsPlaceholder(secret):
		return errors.New("JWT_SECRET looks like a placeholder; generate one with: openssl rand -base64 32")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	return slices.Contains(c.Security.CORSOrigins, "*")
}

// validateCORS checks each explicit origin. A wildcard is refused only for
// authenticated production deployments.
func (c *Config) validateCORS(mode auth.AuthMode) error {
	if mode != auth.AuthModeNone && c.IsProduction() && c.hasWildcardCORS() {
		return errors.New("CORS_ORIGINS=* (wildcard) is refused in production with authentication; " +
			"list the dashboard origins instead, e.g. CORS_ORIGINS=https://app.example.com")
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			continue
		}
		if err := validateOrigin(origin); err != nil {
			return fmt.Errorf("CORS_ORIGINS: %w", err)
		}
	}
	return nil
}

// ShouldWarnAboutCORS reports an authenticated deployment that still accepts
// any origin. Outside production this is allowed but logged at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	mode, err := auth.ParseAuthMode(c.Security.AuthMode)
	return err == nil && mode != auth.AuthModeNone && c.hasWildcardCORS()
}

func (c *Config) validateRateLimits() error {
	sec := &c.Security
	if sec.RateLimitDisabled {
		return nil
	}
	inRange := func(n int) bool { return n >= minRateLimitRequests && n <= maxRateLimitRequests }
	const limitMsg = "%s must be between %d and %d, got %d"
	return firstErr(
		check(inRange(sec.PredictRateLimit), limitMsg, "PREDICT_RATE_LIMIT", minRateLimitRequests, maxRateLimitRequests, sec.PredictRateLimit),
		check(inRange(sec.TrainRateLimit), limitMsg, "TRAIN_RATE_LIMIT", minRateLimitRequests, maxRateLimitRequests, sec.TrainRateLimit),
		check(sec.RateLimitWindow >= minRateLimitWindow && sec.RateLimitWindow <= maxRateLimitWindow,
			"RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow),
	)
}

// IsProduction accepts "production" or "prod" in any case.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Server.Environment)) {
	case "production", "prod":
		return true
	}
	return false
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
