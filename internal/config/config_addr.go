// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

var (
	originSchemes = []string{"http", "https"}
	natsSchemes   = []string{"nats", "tls", "ws", "wss"}
)

// parseEndpoint parses raw and checks its scheme and host.
func parseEndpoint(raw string, schemes []string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	if !slices.Contains(schemes, u.Scheme) {
		return nil, fmt.Errorf("%q: scheme must be one of %s", raw, strings.Join(schemes, ", "))
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%q: host is required", raw)
	}
	return u, nil
}

// validateOrigin accepts scheme://host[:port] with at most a trailing slash.
func validateOrigin(raw string) error {
	u, err := parseEndpoint(raw, originSchemes)
	if err != nil {
		return err
	}
	if strings.Trim(u.Path, "/") != "" || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("%q: an origin has no path, query or fragment", raw)
	}
	return nil
}

// validateNATSURL accepts one server URL or a comma-separated seed list,
// the form nats.Connect takes.
func validateNATSURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("at least one server URL is required (e.g. nats://localhost:4222)")
	}
	for _, server := range strings.Split(raw, ",") {
		if _, err := parseEndpoint(strings.TrimSpace(server), natsSchemes); err != nil {
			return err
		}
	}
	return nil
}

// validateHostPort checks a host:port dial address such as REDIS_ADDR.
func validateHostPort(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%q: %w", addr, err)
	}
	if host == "" {
		return fmt.Errorf("%q: host is required", addr)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%q: port must be 1-65535", addr)
	}
	return nil
}
