// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer names one child supervisor of the tree.
type Layer string

// Layers in start order. Suture starts children in the order they were
// added, so the model loads before the API starts answering.
const (
	LayerData      Layer = "data-layer"
	LayerMessaging Layer = "messaging-layer"
	LayerAPI       Layer = "api-layer"
)

var layerOrder = []Layer{LayerData, LayerMessaging, LayerAPI}

// TreeConfig holds the restart policy shared by every supervisor in the
// tree. Zero fields take DefaultTreeConfig's values.
type TreeConfig struct {
	// FailureThreshold is the decayed failure count that triggers backoff.
	FailureThreshold float64

	// FailureDecay is the failure half-life in seconds.
	FailureDecay float64

	FailureBackoff time.Duration

	// ShutdownTimeout bounds each service's stop.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's documented defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// withDefaults fills zero fields and rejects negative ones.
func (c TreeConfig) withDefaults() (TreeConfig, error) {
	if c.FailureThreshold < 0 || c.FailureDecay < 0 || c.FailureBackoff < 0 || c.ShutdownTimeout < 0 {
		return c, fmt.Errorf("supervisor config must not be negative: %+v", c)
	}
	def := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = def.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = def.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = def.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	return c, nil
}

func (c TreeConfig) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree is the process supervision hierarchy for EventPulse.
//
//   - data: model lifecycle (startup load, bootstrap training, retraining)
//   - messaging: websocket hub and the lifecycle event forwarder
//   - api: HTTP server
//
// Each layer restarts its own services, so a forwarder crash never takes
// the prediction API down.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	logger *slog.Logger
	config TreeConfig
}

// NewSupervisorTree builds the root supervisor "eventpulse" with one child
// per Layer. Supervisor events go to logger through sutureslog.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	config, err := config.withDefaults()
	if err != nil {
		return nil, err
	}

	// MustHook has a pointer receiver.
	hook := (&sutureslog.Handler{Logger: logger}).MustHook()

	tree := &SupervisorTree{
		// Children inherit the root's EventHook when added.
		root:   suture.New("eventpulse", config.spec(hook)),
		layers: make(map[Layer]*suture.Supervisor, len(layerOrder)),
		logger: logger,
		config: config,
	}
	for _, layer := range layerOrder {
		sup := suture.New(string(layer), config.spec(nil))
		tree.root.Add(sup)
		tree.layers[layer] = sup
	}
	return tree, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// Add places svc under layer.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	sup, ok := t.layers[layer]
	if !ok {
		return suture.ServiceToken{}, fmt.Errorf("unknown supervisor layer %q", layer)
	}
	t.logger.Debug("adding service", "layer", string(layer), "service", fmt.Sprint(svc))
	return sup.Add(svc), nil
}

func (t *SupervisorTree) mustAdd(layer Layer, svc suture.Service) suture.ServiceToken {
	token, err := t.Add(layer, svc)
	if err != nil {
		panic(err)
	}
	return token
}

// AddDataService adds a model lifecycle service.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.mustAdd(LayerData, svc)
}

// AddMessagingService adds a websocket or event bus service.
func (t *SupervisorTree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	return t.mustAdd(LayerMessaging, svc)
}

// AddAPIService adds the HTTP server.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.mustAdd(LayerAPI, svc)
}

// Serve runs the tree until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	t.logger.Info("starting supervisor tree",
		"failure_threshold", t.config.FailureThreshold,
		"failure_backoff", t.config.FailureBackoff,
		"shutdown_timeout", t.config.ShutdownTimeout)
	return t.root.Serve(ctx)
}

// ServeBackground runs Serve in a goroutine and delivers its result.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that outlived the shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
