// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package events

import (
	"errors"
	"fmt"
	"time"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// DefaultTopic is the subject lifecycle events are published on.
const DefaultTopic = "eventpulse.lifecycle"

// Config configures the event bus.
type Config struct {
	Enabled bool   `koanf:"enabled"`
	Backend string `koanf:"backend"`
	Topic   string `koanf:"topic"`

	// NATS
	NATSURL       string        `koanf:"nats_url"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`

	// Embedded NATS server. When enabled NATSURL is ignored.
	EmbeddedServer bool   `koanf:"embedded_server"`
	EmbeddedHost   string `koanf:"embedded_host"`
	EmbeddedPort   int    `koanf:"embedded_port"`

	// Memory
	OutputBuffer int64 `koanf:"output_buffer"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// CircuitBreakerConfig configures the publish circuit breaker.
type CircuitBreakerConfig struct {
	Name             string        `koanf:"name"`
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// DefaultConfig returns an in-process bus configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Backend:       BackendMemory,
		Topic:         DefaultTopic,
		NATSURL:       "nats://127.0.0.1:4222",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		EmbeddedHost:  "127.0.0.1",
		EmbeddedPort:  4222,
		OutputBuffer:  64,
		CircuitBreaker: CircuitBreakerConfig{
			Name:             "event-publisher",
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendNATS:
	default:
		return fmt.Errorf("unknown event backend %q", c.Backend)
	}
	if c.Topic == "" {
		return errors.New("event topic is required")
	}
	if c.Backend == BackendNATS && !c.EmbeddedServer && c.NATSURL == "" {
		return errors.New("nats_url is required without the embedded server")
	}
	if c.CircuitBreaker.FailureThreshold == 0 {
		return errors.New("circuit breaker failure_threshold must be positive")
	}
	return nil
}
