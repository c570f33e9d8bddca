// Copyright (c) 2026 RuneBingo. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	itemCachePrefix = "catalog:item:"
	itemCacheTTL    = 15 * time.Minute
)

// CachedStore is a read-through Redis cache in front of item lookups.
// Search and media reads go straight to the underlying store.
type CachedStore struct {
	Store
	client *redis.Client
	logger *slog.Logger
}

// NewCachedStore wraps store with a Redis item cache.
func NewCachedStore(store Store, client *redis.Client, logger *slog.Logger) *CachedStore {
	return &CachedStore{Store: store, client: client, logger: logger}
}

/*
FindItems serves cached items and loads the rest from the underlying store.

Description: Cache failures degrade to a direct read and are only logged.
*/
func (cache *CachedStore) FindItems(ctx context.Context, ids []int) ([]*Item, error) {
	if len(ids) == 0 {
		return []*Item{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = itemCachePrefix + strconv.Itoa(id)
	}

	cached, err := cache.client.MGet(ctx, keys...).Result()
	if err != nil {
		cache.logger.Warn("catalog_cache_read_failed", slog.Any("error", err))
		return cache.Store.FindItems(ctx, ids)
	}

	items := make([]*Item, 0, len(ids))
	missing := make([]int, 0)
	for i, value := range cached {
		raw, ok := value.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		item := &Item{}
		if err := json.Unmarshal([]byte(raw), item); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		items = append(items, item)
	}

	if len(missing) == 0 {
		return items, nil
	}

	loaded, err := cache.Store.FindItems(ctx, missing)
	if err != nil {
		return nil, err
	}

	pipe := cache.client.Pipeline()
	for _, item := range loaded {
		payload, err := json.Marshal(item)
		if err != nil {
			continue
		}
		pipe.Set(ctx, itemCachePrefix+strconv.Itoa(item.ID), payload, itemCacheTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		cache.logger.Warn("catalog_cache_write_failed", slog.Any("error", err))
	}

	return append(items, loaded...), nil
}
