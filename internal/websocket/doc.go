// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package websocket pushes model lifecycle notifications to connected clients.

Operators watching a dashboard receive training_started, training_completed,
training_failed and model_reloaded messages as they happen instead of polling
/api/v1/training/status.

Key Components:

  - Hub: registers clients and fans out broadcast messages
  - Client: one gorilla/websocket connection with read and write pumps
  - Forwarder: subscribes to the event bus and turns each lifecycle event
    into a hub broadcast

Architecture:

	events.Bus ──► Forwarder ──► Hub ──┬──► Client1
	                                   ├──► Client2
	                                   └──► Client3

The hub runs under the supervisor via RunWithContext. Register and unregister
requests are always handled before pending broadcasts, and broadcasts visit
clients in connection order. A client whose send buffer is full is dropped
rather than allowed to stall the hub.

Wire Format:

	{"type": "training_completed", "data": {"id": "...", "type": "training.completed", ...}}

Clients may send:

	{"type": "ping"}                                   -> {"type": "pong"}
	{"type": "subscribe", "data": ["training_failed"]} -> {"type": "subscribed", "data": [...]}

A subscription limits which lifecycle messages reach the client; an empty
list restores the full feed. Malformed or unsupported frames get an
{"type": "error"} reply and the connection stays open.
*/
package websocket
