// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

/*
Package services provides suture.Service wrappers for EventPulse components.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve pattern and implements fmt.Stringer so suture can name it in logs.

# Available Services

HTTP Server (HTTPServerService):
  - Runs ListenAndServe and a shutdown watcher in one errgroup
  - Drains in-flight predictions within the configured timeout
  - A listener that closes on its own is a failure (ErrListenerStopped)

Context Runners (RunnerService):
  - Adapts anything with RunWithContext, such as websocket.Hub
  - Wraps runner failures with the service name and counts restarts

Model Lifecycle (ModelService):
  - Loads the latest stored model at startup
  - Bootstraps a model from synthetic data when storage is empty
    (model.train_on_startup)
  - Retrains on model.retrain_interval; a failed run keeps the serving model

The lifecycle event forwarder (websocket.Forwarder) implements suture.Service
directly and needs no wrapper.

# Usage Example

	tree, _ := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())

	tree.AddDataService(services.NewModelService(engine, services.ModelServiceConfig{
	    TrainOnStartup:  cfg.Model.TrainOnStartup,
	    RetrainInterval: cfg.Model.RetrainInterval,
	    Options:         predict.DefaultTrainingOptions(),
	}, logger))
	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub, logger))
	tree.AddMessagingService(websocket.NewForwarder(bus, hub, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

	err := tree.Serve(ctx)

# Error Handling

Return values determine supervisor behavior:

	suture.ErrDoNotRestart -> Service finished its work, do not restart
	error                  -> Service crashed, supervisor restarts it with backoff
	ctx.Err()              -> Shutdown requested, normal termination

# Testing

Services are tested against small mocks of the interfaces they wrap
(HTTPServer, Runner, ModelEngine), without real listeners or models.
*/
package services
