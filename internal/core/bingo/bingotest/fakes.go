// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingotest

import (
	"context"
	"strconv"
	"sync"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/activity"
	"github.com/RuneBingo/RuneBingo-sub000/internal/core/catalog"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/slug"
)

// # Users

// Users is an in-memory user directory.
type Users struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewUsers returns an empty directory.
func NewUsers() *Users {
	return &Users{names: make(map[string]string)}
}

// Add registers a user.
func (users *Users) Add(id, username string) {
	users.mu.Lock()
	defer users.mu.Unlock()
	users.names[id] = username
}

// LookupUser resolves a username case-insensitively.
func (users *Users) LookupUser(_ context.Context, username string) (string, string, error) {
	users.mu.RLock()
	defer users.mu.RUnlock()
	want := slug.Normalize(username)
	for id, name := range users.names {
		if slug.Normalize(name) == want {
			return id, name, nil
		}
	}
	return "", "", apperr.NotFound("user.not_found")
}

// UsernamesByID resolves display names for ids.
func (users *Users) UsernamesByID(_ context.Context, ids []string) (map[string]string, error) {
	users.mu.RLock()
	defer users.mu.RUnlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := users.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (users *Users) name(id string) string {
	users.mu.RLock()
	defer users.mu.RUnlock()
	return users.names[id]
}

// # Catalog

// Catalog is an in-memory item and media catalog.
type Catalog struct {
	Items map[int]bool // item ID to enabled
	Media map[string]*catalog.Media
}

// NewCatalog returns a catalog with the given enabled items.
func NewCatalog(enabled ...int) *Catalog {
	items := make(map[int]bool, len(enabled))
	for _, id := range enabled {
		items[id] = true
	}
	return &Catalog{Items: items, Media: make(map[string]*catalog.Media)}
}

// RequireEnabledItems fails on the first unknown or disabled item.
func (c *Catalog) RequireEnabledItems(_ context.Context, itemIDs []int) error {
	for _, id := range itemIDs {
		if !c.Items[id] {
			return apperr.NotFound("catalog.item_not_found").With("item_id", strconv.Itoa(id))
		}
	}
	return nil
}

// FindMedia returns a registered media.
func (c *Catalog) FindMedia(_ context.Context, mediaID string) (*catalog.Media, error) {
	if media, ok := c.Media[mediaID]; ok {
		return media, nil
	}
	return nil, apperr.NotFound("catalog.media_not_found")
}

// # Activities

// Activities captures recorded entries.
type Activities struct {
	mu      sync.Mutex
	entries []activity.Entry
}

// Record appends entry.
func (a *Activities) Record(_ context.Context, entry activity.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

// List returns captured entries of a bingo, newest first.
func (a *Activities) List(_ context.Context, bingoID string, limit, offset int) ([]*activity.View, int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	views := make([]*activity.View, 0)
	for i := len(a.entries) - 1; i >= 0; i-- {
		if a.entries[i].BingoID == bingoID {
			views = append(views, &activity.View{Entry: a.entries[i]})
		}
	}
	return page(views, limit, offset), len(views), nil
}

// Keys returns the keys recorded so far, in order.
func (a *Activities) Keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	keys := make([]string, len(a.entries))
	for i, entry := range a.entries {
		keys[i] = entry.Key
	}
	return keys
}

// Last returns the most recent entry.
func (a *Activities) Last() (activity.Entry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return activity.Entry{}, false
	}
	return a.entries[len(a.entries)-1], true
}

// Reset forgets every entry.
func (a *Activities) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = nil
}

// # Metrics

// Transitions counts lifecycle transitions.
type Transitions struct {
	mu     sync.Mutex
	counts map[string]int
}

// BingoTransition increments the counter for transition.
func (t *Transitions) BingoTransition(transition string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	t.counts[transition]++
}

// Count returns the number of recorded transitions of one kind.
func (t *Transitions) Count(transition string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[transition]
}
