// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/metrics"
	"github.com/tomtom215/eventpulse/internal/models"
)

// ErrClosed is returned by operations on a closed bus.
var ErrClosed = errors.New("event bus is closed")

// Bus publishes and delivers lifecycle events. It implements the prediction
// engine's Publisher.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *publishBreaker
	embedded   *EmbeddedServer
	topic      string
	backend    string
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewBus creates the bus selected by cfg.Backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event config: %w", err)
	}
	logger = logger.With().Str("component", "events").Str("backend", cfg.Backend).Logger()
	wmLogger := NewLoggerAdapter(logger)

	switch cfg.Backend {
	case BackendNATS:
		return newNATSBus(cfg, logger, wmLogger)
	default:
		pubsub := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputBuffer,
		}, wmLogger)
		return newBus(pubsub, pubsub, cfg, logger), nil
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newNATSBus(cfg Config, logger zerolog.Logger, wmLogger watermill.LoggerAdapter) (*Bus, error) {
	var embedded *EmbeddedServer
	url := cfg.NATSURL
	if cfg.EmbeddedServer {
		srv, err := NewEmbeddedServer(cfg.EmbeddedHost, cfg.EmbeddedPort, logger)
		if err != nil {
			return nil, err
		}
		embedded = srv
		url = srv.ClientURL()
		logger.Info().Str("url", url).Msg("embedded NATS server started")
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	// Lifecycle events are notifications; core NATS delivery is enough.
	jsConfig := wmNats.JetStreamConfig{Disabled: true}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   jsConfig,
	}, wmLogger)
	if err != nil {
		if embedded != nil {
			embedded.Shutdown()
		}
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        jsConfig,
	}, wmLogger)
	if err != nil {
		_ = pub.Close()
		if embedded != nil {
			embedded.Shutdown()
		}
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	b := newBus(pub, sub, cfg, logger)
	b.embedded = embedded
	return b, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newBus(pub message.Publisher, sub message.Subscriber, cfg Config, logger zerolog.Logger) *Bus {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return &Bus{
		publisher:  pub,
		subscriber: sub,
		breaker:    NewCircuitBreaker(cfg.CircuitBreaker, logger),
		topic:      topic,
		backend:    cfg.Backend,
		logger:     logger,
	}
}

// Topic returns the subject events are published on.
func (b *Bus) Topic() string { return b.topic }

// Backend returns the configured backend name.
func (b *Bus) Backend() string { return b.backend }

// Publish encodes and publishes event through the circuit breaker.
func (b *Bus) Publish(ctx context.Context, event *models.LifecycleEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	id := event.ID
	if id == "" {
		id = watermill.NewUUID()
	}
	msg := message.NewMessage(id, data)
	msg.Metadata.Set("event_type", event.Type)
	msg.SetContext(ctx)

	_, err = b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, b.publisher.Publish(b.topic, msg)
	})
	metrics.RecordCircuitBreakerRequest(b.breaker.Name(), breakerOutcome(err))
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Subscribe delivers decoded events until ctx is cancelled or the bus closes.
// Undecodable messages are acknowledged and dropped.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *models.LifecycleEvent, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}

	msgs, err := b.subscriber.Subscribe(ctx, b.topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", b.topic, err)
	}

	out := make(chan *models.LifecycleEvent)
	go func() {
		defer close(out)
		for msg := range msgs {
			var event models.LifecycleEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping undecodable event")
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case out <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// BreakerState reports the publish circuit breaker state.
func (b *Bus) BreakerState() string {
	return b.breaker.State().String()
}

// Close shuts down the publisher, the subscriber and any embedded server.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	// gochannel uses one value for both roles.
	if closer, ok := b.subscriber.(message.Publisher); !ok || closer != b.publisher {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	if b.embedded != nil {
		b.embedded.Shutdown()
	}
	return errors.Join(errs...)
}
