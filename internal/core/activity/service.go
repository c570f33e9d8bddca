// Copyright (c) 2026 RuneBingo. All rights reserved.

package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/constants"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/ctxutil"
)

// # Collaborators

// UserLookup resolves display names for a batch of user IDs.
// Unknown IDs are absent from the result.
type UserLookup interface {
	UsernamesByID(ctx context.Context, ids []string) (map[string]string, error)
}

// Translator renders an activity key for a locale.
type Translator interface {
	Translate(locale, key string, params map[string]string) string
}

// # Service Layer

// Service publishes activity entries and lists them back.
type Service struct {
	publisher  message.Publisher
	store      Store
	users      UserLookup
	translator Translator
	logger     *slog.Logger
}

// NewService constructs a new activity [Service]. translator may be nil, in
// which case views carry no rendered message.
func NewService(publisher message.Publisher, store Store, users UserLookup, translator Translator, logger *slog.Logger) *Service {
	return &Service{
		publisher:  publisher,
		store:      store,
		users:      users,
		translator: translator,
		logger:     logger,
	}
}

/*
Record publishes entry on the activity topic.

The mutation it describes has already committed, so a publish failure is
logged and swallowed rather than surfaced to the caller.
*/
func (service *Service) Record(ctx context.Context, entry Entry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		service.logger.Error("activity_encode_failed", slog.String("key", entry.Key), slog.Any("error", err))
		return
	}

	msg := message.NewMessage(entry.ID, payload)
	msg.SetContext(ctx)
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		msg.Metadata.Set(constants.HeaderXRequestID, requestID)
	}

	if err := service.publisher.Publish(constants.TopicBingoActivity, msg); err != nil {
		service.logger.Error("activity_publish_failed",
			slog.String("bingo_id", entry.BingoID),
			slog.String("key", entry.Key),
			slog.Any("error", err),
		)
	}
}

/*
List returns a page of a bingo's activity with actor usernames resolved.

Returns:
  - []*View: The page, newest first
  - int: Total entries for the bingo
  - error: Store or lookup failures
*/
func (service *Service) List(ctx context.Context, bingoID string, limit, offset int) ([]*View, int, error) {
	entries, total, err := service.store.List(ctx, bingoID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	usernames, err := service.users.UsernamesByID(ctx, actorIDs(entries))
	if err != nil {
		return nil, 0, err
	}

	locale := ctxutil.GetLocale(ctx)
	views := make([]*View, len(entries))
	for i, entry := range entries {
		views[i] = service.view(locale, entry, usernames)
	}

	return views, total, nil
}

func (service *Service) view(locale string, entry *Entry, usernames map[string]string) *View {
	view := &View{Entry: *entry}
	if entry.ActorID != nil {
		if name, ok := usernames[*entry.ActorID]; ok {
			view.ActorUsername = &name
		}
	}

	if service.translator != nil {
		params := make(map[string]string, len(entry.Params)+1)
		for key, value := range entry.Params {
			params[key] = fmt.Sprint(value)
		}
		if view.ActorUsername != nil {
			params["actor"] = *view.ActorUsername
		}
		view.Message = service.translator.Translate(locale, entry.Key, params)
	}

	return view
}

// actorIDs collects the distinct actor IDs of a page.
func actorIDs(entries []*Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.ActorID == nil {
			continue
		}
		if _, ok := seen[*entry.ActorID]; ok {
			continue
		}
		seen[*entry.ActorID] = struct{}{}
		ids = append(ids, *entry.ActorID)
	}
	return ids
}
