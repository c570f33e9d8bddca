// Copyright (c) 2026 RuneBingo. All rights reserved.

package activity_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/activity"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/ctxutil"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/eventbus"
)

// # Fixtures

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]activity.Entry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]activity.Entry)}
}

func (store *memoryStore) Insert(_ context.Context, entry activity.Entry) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.entries[entry.ID]; !ok {
		store.entries[entry.ID] = entry
	}
	return nil
}

func (store *memoryStore) List(_ context.Context, bingoID string, limit, offset int) ([]*activity.Entry, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	matched := make([]*activity.Entry, 0)
	for _, entry := range store.entries {
		if entry.BingoID == bingoID {
			copied := entry
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	if offset >= total {
		return []*activity.Entry{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (store *memoryStore) count() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.entries)
}

type userLookup map[string]string

func (lookup userLookup) UsernamesByID(_ context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := lookup[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type echoTranslator struct{}

func (echoTranslator) Translate(locale, key string, params map[string]string) string {
	return locale + ":" + key + ":" + params["actor"]
}

type counter struct {
	mu   sync.Mutex
	keys []string
}

func (c *counter) ActivityRecorded(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, key)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// # Tests

/*
TestService_RecordIsPersistedThroughBus publishes on the in-process bus and
waits for the consumer to store the entry.
*/
func TestService_RecordIsPersistedThroughBus(t *testing.T) {
	logger := discardLogger()
	store := newMemoryStore()
	metrics := &counter{}

	bus, err := eventbus.New(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	activity.NewConsumer(store, metrics, logger).Register(bus.Router(), bus.Subscriber())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = bus.Run(ctx) }()
	<-bus.Running()

	service := activity.NewService(bus.Publisher(), store, userLookup{}, nil, logger)

	actor := "user-1"
	service.Record(ctx, activity.Entry{
		ID:        "0192a7b0-0000-7000-8000-000000000001",
		BingoID:   "bingo-1",
		ActorID:   &actor,
		Key:       activity.KeyBingoStarted,
		CreatedAt: time.Now().UTC(),
	})

	require.Eventually(t, func() bool { return store.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	assert.Equal(t, []string{activity.KeyBingoStarted}, metrics.keys)
}

/*
TestConsumer_Handle covers payload decoding and idempotent redelivery.
*/
func TestConsumer_Handle(t *testing.T) {
	store := newMemoryStore()
	consumer := activity.NewConsumer(store, nil, discardLogger())

	t.Run("malformed_payload_is_acked", func(t *testing.T) {
		err := consumer.Handle(message.NewMessage("m-1", []byte("{invalid")))
		assert.NoError(t, err)
		assert.Equal(t, 0, store.count())
	})

	t.Run("redelivery_is_idempotent", func(t *testing.T) {
		payload := []byte(`{"id":"e-1","bingo_id":"b-1","key":"activity.tile.moved","created_at":"2026-05-01T10:00:00Z"}`)
		require.NoError(t, consumer.Handle(message.NewMessage("m-2", payload)))
		require.NoError(t, consumer.Handle(message.NewMessage("m-3", payload)))
		assert.Equal(t, 1, store.count())
	})
}

/*
TestService_List resolves actor names in one batch and renders messages.
*/
func TestService_List(t *testing.T) {
	store := newMemoryStore()
	ctx := ctxutil.WithLocale(context.Background(), "fr")

	alice, ghost := "u-alice", "u-ghost"
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, activity.Entry{ID: "1", BingoID: "b", ActorID: &alice, Key: activity.KeyBingoCreated, CreatedAt: base}))
	require.NoError(t, store.Insert(ctx, activity.Entry{ID: "2", BingoID: "b", ActorID: &ghost, Key: activity.KeyTileCreated, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Insert(ctx, activity.Entry{ID: "3", BingoID: "b", Key: activity.KeyBingoStarted, CreatedAt: base.Add(2 * time.Minute)}))
	require.NoError(t, store.Insert(ctx, activity.Entry{ID: "4", BingoID: "other", Key: activity.KeyBingoStarted, CreatedAt: base}))

	service := activity.NewService(nil, store, userLookup{alice: "Alice"}, echoTranslator{}, discardLogger())

	views, total, err := service.List(ctx, "b", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, views, 3)

	assert.Equal(t, "3", views[0].ID)
	assert.Nil(t, views[0].ActorUsername)

	assert.Nil(t, views[1].ActorUsername, "unknown actors stay unresolved")

	require.NotNil(t, views[2].ActorUsername)
	assert.Equal(t, "Alice", *views[2].ActorUsername)
	assert.Equal(t, "fr:"+activity.KeyBingoCreated+":Alice", views[2].Message)
}
