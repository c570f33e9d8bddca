// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/dberr"
)

// # Tile Repository Implementation

// tileColumns folds the ordered item list into a JSON array per tile.
const tileColumns = `
	t.id, t.bingo_id, t.x, t.y, t.value, t.free, t.title, t.description, t.completion_mode,
	t.media_id, t.image_url, t.created_by, t.created_at, t.updated_at,
	COALESCE((
		SELECT json_agg(json_build_object('item_id', i.osrs_item_id, 'index', i.sort_index, 'quantity', i.quantity)
		                ORDER BY i.sort_index)
		FROM bingo_tile_item i
		WHERE i.bingo_tile_id = t.id
	), '[]') AS items`

func scanTile(row pgx.Row) (*Tile, error) {
	tile := &Tile{}
	var items []byte

	err := row.Scan(
		&tile.ID, &tile.BingoID, &tile.X, &tile.Y, &tile.Value, &tile.Free, &tile.Title, &tile.Description,
		&tile.CompletionMode, &tile.MediaID, &tile.ImageURL, &tile.CreatedByID, &tile.CreatedAt, &tile.UpdatedAt,
		&items,
	)
	if err != nil {
		return nil, err
	}

	tile.Items = make([]TileItem, 0)
	if err := json.Unmarshal(items, &tile.Items); err != nil {
		return nil, fmt.Errorf("decode tile items: %w", err)
	}
	return tile, nil
}

// FindTile loads the tile at (x, y) with its items.
func (store *PostgresStore) FindTile(ctx context.Context, bingoID string, x, y int) (*Tile, error) {
	query := `SELECT ` + tileColumns + ` FROM bingo_tile t WHERE t.bingo_id = $1 AND t.x = $2 AND t.y = $3`
	tile, err := scanTile(store.db.QueryRow(ctx, query, bingoID, x, y))
	if err != nil {
		return nil, dberr.Wrap(err, "find_tile")
	}
	return tile, nil
}

// ListTiles returns the grid in row-major order.
func (store *PostgresStore) ListTiles(ctx context.Context, bingoID string) ([]*Tile, error) {
	query := `SELECT ` + tileColumns + ` FROM bingo_tile t WHERE t.bingo_id = $1 ORDER BY t.y ASC, t.x ASC`

	rows, err := store.db.Query(ctx, query, bingoID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tiles")
	}
	defer rows.Close()

	tiles := make([]*Tile, 0)
	for rows.Next() {
		tile, err := scanTile(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_tile")
		}
		tiles = append(tiles, tile)
	}

	return tiles, dberr.Wrap(rows.Err(), "iterate_tiles")
}

// CountTilesInBounds counts tiles placed on 1..width × 1..height.
func (store *PostgresStore) CountTilesInBounds(ctx context.Context, bingoID string, width, height int) (int, error) {
	var count int
	err := store.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM bingo_tile
		WHERE bingo_id = $1 AND x BETWEEN 1 AND $2 AND y BETWEEN 1 AND $3`,
		bingoID, width, height,
	).Scan(&count)
	if err != nil {
		return 0, dberr.Wrap(err, "count_tiles_in_bounds")
	}
	return count, nil
}

// CreateTile inserts the tile row; items are written by ReplaceTileItems.
func (store *PostgresStore) CreateTile(ctx context.Context, tile *Tile) error {
	const query = `
		INSERT INTO bingo_tile (
			id, bingo_id, x, y, value, free, title, description, completion_mode,
			media_id, image_url, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := store.db.Exec(ctx, query,
		tile.ID, tile.BingoID, tile.X, tile.Y, tile.Value, tile.Free, tile.Title, tile.Description,
		tile.CompletionMode, tile.MediaID, tile.ImageURL, tile.CreatedByID, tile.CreatedAt, tile.UpdatedAt,
	)
	return dberr.Wrap(err, "create_tile")
}

// UpdateTile writes the tile's metadata.
func (store *PostgresStore) UpdateTile(ctx context.Context, tile *Tile) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE bingo_tile SET
			value = $2, free = $3, title = $4, description = $5, completion_mode = $6,
			media_id = $7, image_url = $8, updated_at = $9
		WHERE id = $1`,
		tile.ID, tile.Value, tile.Free, tile.Title, tile.Description, tile.CompletionMode,
		tile.MediaID, tile.ImageURL, tile.UpdatedAt,
	)
	return affected(tag, err, "update_tile")
}

// MoveTile sets new coordinates; an occupied cell surfaces as Conflict.
func (store *PostgresStore) MoveTile(ctx context.Context, tileID string, x, y int) error {
	tag, err := store.db.Exec(ctx, `UPDATE bingo_tile SET x = $2, y = $3 WHERE id = $1`, tileID, x, y)
	return affected(tag, err, "move_tile")
}

// ReplaceTileItems rewrites the item list with dense indices.
func (store *PostgresStore) ReplaceTileItems(ctx context.Context, tileID string, items []TileItem) error {
	if _, err := store.db.Exec(ctx, `DELETE FROM bingo_tile_item WHERE bingo_tile_id = $1`, tileID); err != nil {
		return dberr.Wrap(err, "clear_tile_items")
	}

	if len(items) == 0 {
		return nil
	}

	itemIDs := make([]int, len(items))
	indices := make([]int, len(items))
	quantities := make([]int, len(items))
	for i, item := range items {
		itemIDs[i], indices[i], quantities[i] = item.ItemID, item.Index, item.Quantity
	}

	_, err := store.db.Exec(ctx, `
		INSERT INTO bingo_tile_item (bingo_tile_id, osrs_item_id, sort_index, quantity)
		SELECT $1, item_id, sort_index, quantity
		FROM unnest($2::int[], $3::int[], $4::int[]) AS input(item_id, sort_index, quantity)`,
		tileID, itemIDs, indices, quantities,
	)
	return dberr.Wrap(err, "insert_tile_items")
}

// DeleteTile removes the tile's items, the tile, then its media.
func (store *PostgresStore) DeleteTile(ctx context.Context, tile *Tile) error {
	if _, err := store.db.Exec(ctx, `DELETE FROM bingo_tile_item WHERE bingo_tile_id = $1`, tile.ID); err != nil {
		return dberr.Wrap(err, "delete_tile_items")
	}

	var mediaID *string
	err := store.db.QueryRow(ctx, `DELETE FROM bingo_tile WHERE id = $1 RETURNING media_id`, tile.ID).Scan(&mediaID)
	if err != nil {
		return dberr.Wrap(err, "delete_tile")
	}

	if mediaID != nil {
		if _, err := store.db.Exec(ctx, `DELETE FROM media WHERE id = $1`, *mediaID); err != nil {
			return dberr.Wrap(err, "delete_tile_media")
		}
	}
	return nil
}

// DeleteTiles empties the grid, owned media included.
func (store *PostgresStore) DeleteTiles(ctx context.Context, bingoID string) error {
	return store.deleteTilesWhere(ctx, `t.bingo_id = $1`, bingoID)
}

// DeleteTilesOutside removes tiles beyond width × height.
func (store *PostgresStore) DeleteTilesOutside(ctx context.Context, bingoID string, width, height int) error {
	return store.deleteTilesWhere(ctx, `t.bingo_id = $1 AND (t.x > $2 OR t.y > $3)`, bingoID, width, height)
}

func (store *PostgresStore) deleteTilesWhere(ctx context.Context, where string, args ...any) error {
	_, err := store.db.Exec(ctx, `
		DELETE FROM bingo_tile_item i USING bingo_tile t
		WHERE i.bingo_tile_id = t.id AND `+where, args...)
	if err != nil {
		return dberr.Wrap(err, "delete_tiles_items")
	}

	_, err = store.db.Exec(ctx, `
		WITH removed AS (
			DELETE FROM bingo_tile t WHERE `+where+` RETURNING t.media_id
		)
		DELETE FROM media WHERE id IN (SELECT media_id FROM removed WHERE media_id IS NOT NULL)`, args...)
	return dberr.Wrap(err, "delete_tiles")
}
