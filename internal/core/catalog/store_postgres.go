// Copyright (c) 2026 RuneBingo. All rights reserved.

package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/dberr"
)

// PostgresStore implements [Store] using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL backed catalog store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const itemColumns = `id, name, examine, icon_url, members, enabled, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	item := &Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Examine, &item.IconURL, &item.Members, &item.Enabled, &item.UpdatedAt)
	return item, err
}

// FindItems loads every existing item among ids.
func (store *PostgresStore) FindItems(ctx context.Context, ids []int) ([]*Item, error) {
	if len(ids) == 0 {
		return []*Item{}, nil
	}

	rows, err := store.pool.Query(ctx, `SELECT `+itemColumns+` FROM osrs_item WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "find_items")
	}
	defer rows.Close()

	items := make([]*Item, 0, len(ids))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_item")
		}
		items = append(items, item)
	}

	return items, dberr.Wrap(rows.Err(), "iterate_items")
}

/*
SearchItems returns a page of items matching the filter, ordered by name.

Description: Matching is a case-insensitive substring match on the name, or
an exact match when the query is a numeric item ID.
*/
func (store *PostgresStore) SearchItems(ctx context.Context, filter Filter, limit, offset int) ([]*Item, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(`SELECT ` + itemColumns + `, COUNT(*) OVER() AS total_count FROM osrs_item WHERE TRUE`)

	if query := strings.TrimSpace(filter.Query); query != "" {
		if id, err := strconv.Atoi(query); err == nil {
			queryBuilder.WriteString(` AND id = $` + strconv.Itoa(argID))
			args = append(args, id)
		} else {
			queryBuilder.WriteString(` AND name ILIKE $` + strconv.Itoa(argID))
			args = append(args, "%"+escapeLike(query)+"%")
		}
		argID++
	}

	if filter.EnabledOnly {
		queryBuilder.WriteString(` AND enabled`)
	}

	queryBuilder.WriteString(` ORDER BY name ASC, id ASC LIMIT $` + strconv.Itoa(argID) + ` OFFSET $` + strconv.Itoa(argID+1))
	args = append(args, limit, offset)

	rows, err := store.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "search_items")
	}
	defer rows.Close()

	items := make([]*Item, 0)
	total := 0
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(&item.ID, &item.Name, &item.Examine, &item.IconURL, &item.Members, &item.Enabled, &item.UpdatedAt, &total); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_item")
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_items")
	}

	return items, total, nil
}

// FindMedia loads one media row.
func (store *PostgresStore) FindMedia(ctx context.Context, id string) (*Media, error) {
	const query = `
		SELECT id, url, content_type, size_bytes, uploaded_by, created_at
		FROM media
		WHERE id = $1`

	media := &Media{}
	err := store.pool.QueryRow(ctx, query, id).Scan(
		&media.ID, &media.URL, &media.ContentType, &media.SizeBytes, &media.UploadedBy, &media.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_media")
	}
	return media, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
