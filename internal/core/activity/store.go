// Copyright (c) 2026 RuneBingo. All rights reserved.

package activity

import "context"

// Store defines persistence operations for activity entries.
type Store interface {
	// Insert is idempotent on the entry ID so redelivered messages are harmless.
	Insert(ctx context.Context, entry Entry) error

	// List returns the newest entries first, with the total count.
	List(ctx context.Context, bingoID string, limit, offset int) ([]*Entry, int, error)
}
