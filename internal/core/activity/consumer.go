// Copyright (c) 2026 RuneBingo. All rights reserved.

package activity

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/constants"
)

// Recorder counts persisted activities by key.
type Recorder interface {
	ActivityRecorded(key string)
}

// Consumer persists activity messages delivered by the event bus.
type Consumer struct {
	store   Store
	metrics Recorder
	logger  *slog.Logger
}

// NewConsumer constructs a [Consumer]. metrics may be nil.
func NewConsumer(store Store, metrics Recorder, logger *slog.Logger) *Consumer {
	return &Consumer{store: store, metrics: metrics, logger: logger}
}

// Register subscribes the consumer to the activity topic on router.
func (consumer *Consumer) Register(router *message.Router, subscriber message.Subscriber) {
	router.AddNoPublisherHandler(
		"bingo_activity_store",
		constants.TopicBingoActivity,
		subscriber,
		consumer.Handle,
	)
}

/*
Handle decodes one message and stores it.

A malformed payload is logged and acknowledged since redelivery cannot fix
it; store failures are returned so the router retries them.
*/
func (consumer *Consumer) Handle(msg *message.Message) error {
	var entry Entry
	if err := json.Unmarshal(msg.Payload, &entry); err != nil {
		consumer.logger.Error("activity_decode_failed",
			slog.String("message_id", msg.UUID),
			slog.Any("error", err),
		)
		return nil
	}

	if err := consumer.store.Insert(msg.Context(), entry); err != nil {
		return fmt.Errorf("activity: store %s: %w", entry.ID, err)
	}

	if consumer.metrics != nil {
		consumer.metrics.ActivityRecorded(entry.Key)
	}

	consumer.logger.Debug("activity_recorded",
		slog.String("bingo_id", entry.BingoID),
		slog.String("key", entry.Key),
		slog.String("request_id", msg.Metadata.Get(constants.HeaderXRequestID)),
	)

	return nil
}
