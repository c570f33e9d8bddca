// Copyright (c) 2026 RuneBingo. All rights reserved.

/*
Package eventbus wires the in-process watermill pub/sub used for domain events.

# Architecture

A single gochannel instance serves as both [message.Publisher] and
[message.Subscriber]. Consumers register handlers on the [Bus] router before
[Bus.Run] is called; the router stops when its context is canceled.
*/
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	outputBuffer   = 256
	closeTimeout   = 10 * time.Second
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
)

// Bus bundles the pub/sub transport with its message router.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger *slog.Logger
}

// New builds an in-process bus. Failed handlers are retried with backoff and
// then dropped with an error log.
func New(logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: outputBuffer,
	}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: closeTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("eventbus: new router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      maxRetries,
			InitialInterval: initialBackoff,
			Logger:          wmLogger,
		}.Middleware,
	)

	return &Bus{pubsub: pubsub, router: router, logger: logger}, nil
}

// Publisher returns the publishing side of the bus.
func (bus *Bus) Publisher() message.Publisher {
	return bus.pubsub
}

// Subscriber returns the subscribing side of the bus.
func (bus *Bus) Subscriber() message.Subscriber {
	return bus.pubsub
}

// Router returns the router on which consumers register handlers.
func (bus *Bus) Router() *message.Router {
	return bus.router
}

// Run starts the router and blocks until ctx is canceled.
func (bus *Bus) Run(ctx context.Context) error {
	bus.logger.Info("event_bus_starting")
	return bus.router.Run(ctx)
}

// Running is closed once every registered handler is subscribed.
func (bus *Bus) Running() chan struct{} {
	return bus.router.Running()
}

// Close stops the router, then the transport.
func (bus *Bus) Close() error {
	if err := bus.router.Close(); err != nil {
		return err
	}
	return bus.pubsub.Close()
}
