// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package events publishes model lifecycle events on a Watermill message bus.

The prediction engine announces training.started, training.completed,
training.failed and model.reloaded events through Bus.Publish. Subscribers,
such as the websocket forwarder, receive decoded events from Bus.Subscribe.

# Backends

  - memory: Watermill gochannel pub/sub inside the process (default)
  - nats: Watermill NATS pub/sub on core NATS subjects, optionally against an
    embedded nats-server started by the bus

# Resilience

Publishing runs through a gobreaker circuit breaker. After FailureThreshold
consecutive failures the breaker opens and publishes are rejected until the
timeout elapses, so a broken broker never stalls training. Breaker state
changes are exported as Prometheus metrics.

Events are JSON encoded with goccy/go-json. The message UUID is the event id.
*/
package events
