// Copyright (c) 2026 RuneBingo. All rights reserved.

package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/catalog"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
)

type fakeStore struct {
	items map[int]*catalog.Item
	media map[string]*catalog.Media
}

func (store *fakeStore) FindItems(_ context.Context, ids []int) ([]*catalog.Item, error) {
	out := make([]*catalog.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := store.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (store *fakeStore) SearchItems(context.Context, catalog.Filter, int, int) ([]*catalog.Item, int, error) {
	return nil, 0, nil
}

func (store *fakeStore) FindMedia(_ context.Context, id string) (*catalog.Media, error) {
	if media, ok := store.media[id]; ok {
		return media, nil
	}
	return nil, apperr.NotFound("error.resource_not_found")
}

func newService() *catalog.Service {
	store := &fakeStore{
		items: map[int]*catalog.Item{
			6731: {ID: 6731, Name: "Seers ring", Enabled: true},
			4151: {ID: 4151, Name: "Abyssal whip", Enabled: true},
			995:  {ID: 995, Name: "Coins", Enabled: false},
		},
		media: map[string]*catalog.Media{"m-1": {ID: "m-1", URL: "https://cdn/m-1.png"}},
	}
	return catalog.NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_RequireEnabledItems(t *testing.T) {
	service := newService()

	tests := []struct {
		name    string
		ids     []int
		wantErr bool
		itemID  string
	}{
		{"all_enabled", []int{6731, 4151}, false, ""},
		{"disabled_item", []int{6731, 995}, true, "995"},
		{"unknown_item", []int{12345, 4151}, true, "12345"},
		{"reports_lowest_offender", []int{99999, 995}, true, "995"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.RequireEnabledItems(context.Background(), tt.ids)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperr.CodeNotFound, appErr.Code)
			assert.Equal(t, "catalog.item_not_found", appErr.Key)
			assert.Equal(t, tt.itemID, appErr.Params["item_id"])
		})
	}
}

func TestService_FindMedia(t *testing.T) {
	service := newService()

	media, err := service.FindMedia(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/m-1.png", media.URL)

	_, err = service.FindMedia(context.Background(), "missing")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.Equal(t, "catalog.media_not_found", apperr.As(err).Key)
}
