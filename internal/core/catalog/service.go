// Copyright (c) 2026 RuneBingo. All rights reserved.

package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
)

// Service answers catalog lookups for tiles and the item picker.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a new catalog [Service].
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

/*
RequireEnabledItems checks that every ID names an existing, enabled item.

Returns:
  - error: NotFound carrying the first offending item_id, in ascending order
*/
func (service *Service) RequireEnabledItems(ctx context.Context, itemIDs []int) error {
	items, err := service.store.FindItems(ctx, itemIDs)
	if err != nil {
		return err
	}

	enabled := make(map[int]bool, len(items))
	for _, item := range items {
		enabled[item.ID] = item.Enabled
	}

	sorted := append([]int(nil), itemIDs...)
	sort.Ints(sorted)

	for _, id := range sorted {
		if !enabled[id] {
			return apperr.NotFound("catalog.item_not_found").With("item_id", strconv.Itoa(id))
		}
	}
	return nil
}

/*
FindMedia returns an uploaded media row.

Returns:
  - error: NotFound with key catalog.media_not_found
*/
func (service *Service) FindMedia(ctx context.Context, mediaID string) (*Media, error) {
	media, err := service.store.FindMedia(ctx, mediaID)
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, apperr.NotFound("catalog.media_not_found")
	}
	return media, err
}

// SearchItems returns a page of items for the tile editor's item picker.
func (service *Service) SearchItems(ctx context.Context, filter Filter, limit, offset int) ([]*Item, int, error) {
	return service.store.SearchItems(ctx, filter, limit, offset)
}
