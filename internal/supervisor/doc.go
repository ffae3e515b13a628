// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package supervisor provides process supervision for EventPulse using suture v4.

Every long-running component runs under a hierarchical supervisor tree with
automatic restart, failure isolation and graceful shutdown.

# Overview

	RootSupervisor ("eventpulse")
	├── DataSupervisor ("data-layer")
	│   └── ModelService (startup load, bootstrap training, retraining)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── RunnerService ("websocket-hub")
	│   └── websocket.Forwarder (event bus -> websocket clients)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The HTTP server keeps answering (health reports "degraded", predictions return
503 MODEL_NOT_READY) while the data layer is still bootstrapping a model.

# Configuration

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
	    FailureThreshold: 5,                // failures before backoff
	    FailureDecay:     30,               // seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // wait after threshold exceeded
	    ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})

Zero values take DefaultTreeConfig's values.

# Logging

Supervisor events (service panics, restarts, backoff) go through sutureslog
into the slog.Logger passed to NewSupervisorTree. cmd/server passes
logging.NewSlogLogger so these records reach the zerolog output.

# Shutdown

Canceling the Serve context stops the layers. Services get ShutdownTimeout
each; UnstoppedServiceReport lists any that did not return in time. A
training run in progress is not interrupted and may appear in that report.
*/
package supervisor
