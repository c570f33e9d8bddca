// Copyright (c) 2026 RuneBingo. All rights reserved.

package catalog

import "context"

// Store defines read operations over the catalog.
type Store interface {
	// FindItems returns the items among ids that exist, in no particular order.
	FindItems(ctx context.Context, ids []int) ([]*Item, error)
	SearchItems(ctx context.Context, filter Filter, limit, offset int) ([]*Item, int, error)
	FindMedia(ctx context.Context, id string) (*Media, error)
}
