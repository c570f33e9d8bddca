// Copyright (c) 2026 RuneBingo. All rights reserved.

package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/dberr"
)

// # PostgreSQL Repository

// PostgresStore implements [Store] using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL backed activity store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Insert writes the entry unless an entry with the same ID exists.
func (store *PostgresStore) Insert(ctx context.Context, entry Entry) error {
	params, err := json.Marshal(entry.Params)
	if err != nil {
		return fmt.Errorf("activity: encode params: %w", err)
	}

	const query = `
		INSERT INTO bingo_activity (id, bingo_id, actor_id, key, params, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	_, err = store.pool.Exec(ctx, query,
		entry.ID, entry.BingoID, entry.ActorID, entry.Key, params, entry.CreatedAt,
	)
	return dberr.Wrap(err, "insert_activity")
}

/*
List returns a page of a bingo's activity, newest first.

Returns:
  - []*Entry: The page
  - int: Total entries for the bingo
  - error: Database execution errors
*/
func (store *PostgresStore) List(ctx context.Context, bingoID string, limit, offset int) ([]*Entry, int, error) {
	const query = `
		SELECT id, bingo_id, actor_id, key, params, created_at, COUNT(*) OVER() AS total_count
		FROM bingo_activity
		WHERE bingo_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := store.pool.Query(ctx, query, bingoID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_activities")
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	total := 0

	for rows.Next() {
		entry := &Entry{}
		var params []byte
		if err := rows.Scan(&entry.ID, &entry.BingoID, &entry.ActorID, &entry.Key, &params, &entry.CreatedAt, &total); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_activity")
		}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &entry.Params); err != nil {
				return nil, 0, fmt.Errorf("activity: decode params: %w", err)
			}
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_activities")
	}

	return entries, total, nil
}
