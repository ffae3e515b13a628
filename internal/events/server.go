// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package events

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/rs/zerolog"
)

const (
	embeddedReadyTimeout = 10 * time.Second
	// Lifecycle events including training metrics stay well below this.
	embeddedMaxPayload = 64 << 10
)

// EmbeddedServer is an in-process NATS server for single-instance
// deployments that have no external broker.
type EmbeddedServer struct {
	ns *server.Server
}

// NewEmbeddedServer starts NATS on host:port (port -1 picks a free one) and
// waits until it accepts connections. Server notices are logged at debug
// level, warnings and errors at their own levels.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEmbeddedServer(host string, port int, logger zerolog.Logger) (*EmbeddedServer, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "eventpulse-events",
		Host:       host,
		Port:       port,
		NoSigs:     true,
		MaxPayload: embeddedMaxPayload,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}
	ns.SetLoggerV2(natsLogger{logger.With().Str("component", "nats-server").Logger()}, false, false, false)

	go ns.Start()

	if !ns.ReadyForConnections(embeddedReadyTimeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready after %s", embeddedReadyTimeout)
	}
	return &EmbeddedServer{ns: ns}, nil
}

// ClientURL is the nats:// URL publishers and subscribers dial.
func (s *EmbeddedServer) ClientURL() string {
	return s.ns.ClientURL()
}

// Shutdown stops the server and blocks until it has exited.
func (s *EmbeddedServer) Shutdown() {
	s.ns.Shutdown()
	s.ns.WaitForShutdown()
}

// IsRunning reports whether the server is accepting clients.
func (s *EmbeddedServer) IsRunning() bool {
	return s.ns.Running()
}

// natsLogger adapts zerolog to the nats-server logger interface.
type natsLogger struct {
	l zerolog.Logger
}

func (n natsLogger) Noticef(format string, v ...interface{}) { n.l.Debug().Msgf(format, v...) }
func (n natsLogger) Warnf(format string, v ...interface{})   { n.l.Warn().Msgf(format, v...) }
func (n natsLogger) Fatalf(format string, v ...interface{})  { n.l.Error().Msgf(format, v...) }
func (n natsLogger) Errorf(format string, v ...interface{})  { n.l.Error().Msgf(format, v...) }
func (n natsLogger) Debugf(format string, v ...interface{})  { n.l.Debug().Msgf(format, v...) }
func (n natsLogger) Tracef(format string, v ...interface{})  { n.l.Trace().Msgf(format, v...) }
