// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/dberr"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// # PostgreSQL Repository

var _ Store = (*PostgresStore)(nil)

/*
PostgresStore implements [Store] using pgx.

  - Transactions: [PostgresStore.Tx] hands fn a store bound to one pgx.Tx, so
    every cascade of a command commits or rolls back as a unit.
  - Locking: [PostgresStore.LockBingo] reads the aggregate root FOR UPDATE,
    serializing lifecycle transitions and grid edits per bingo.
  - Aggregation: tile items are folded into each tile row with json_agg.
*/
type PostgresStore struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

// NewPostgresStore constructs a PostgreSQL backed bingo store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, db: pool}
}

/*
Tx runs fn inside a database transaction.

Description: Nested calls join the enclosing transaction. The transaction is
rolled back whenever fn returns an error or panics.
*/
func (store *PostgresStore) Tx(ctx context.Context, fn func(tx Store) error) error {
	if store.inTx {
		return fn(store)
	}

	transaction, err := store.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_tx")
	}
	defer func() { _ = transaction.Rollback(ctx) }()

	if err := fn(&PostgresStore{pool: store.pool, db: transaction, inTx: true}); err != nil {
		return err
	}

	return dberr.Wrap(transaction.Commit(ctx), "commit_tx")
}

// # Bingo Repository Implementation

const bingoColumns = `
	b.id, b.slug, b.language, b.title, b.description, b.private,
	b.width, b.height, b.full_line_value,
	b.start_date, b.end_date, b.max_registration_date,
	b.started_at, b.started_by, b.ended_at, b.ended_by,
	b.canceled_at, b.canceled_by, b.reset_at, b.reset_by,
	b.created_by, b.created_at, b.updated_at`

func scanBingo(row pgx.Row, extra ...any) (*Bingo, error) {
	bingo := &Bingo{}
	var stamps [4]struct {
		at *time.Time
		by *string
	}

	dest := []any{
		&bingo.ID, &bingo.Slug, &bingo.Language, &bingo.Title, &bingo.Description, &bingo.Private,
		&bingo.Width, &bingo.Height, &bingo.FullLineValue,
		&bingo.StartDate, &bingo.EndDate, &bingo.MaxRegistrationDate,
		&stamps[0].at, &stamps[0].by, &stamps[1].at, &stamps[1].by,
		&stamps[2].at, &stamps[2].by, &stamps[3].at, &stamps[3].by,
		&bingo.CreatedByID, &bingo.CreatedAt, &bingo.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	targets := []**Stamp{&bingo.Started, &bingo.Ended, &bingo.Canceled, &bingo.Reset}
	for i, stamp := range stamps {
		if stamp.at != nil {
			*targets[i] = &Stamp{At: stamp.at.UTC(), ByID: stamp.by}
		}
	}

	bingo.StartDate = bingo.StartDate.UTC()
	bingo.EndDate = bingo.EndDate.UTC()
	if bingo.MaxRegistrationDate != nil {
		registration := bingo.MaxRegistrationDate.UTC()
		bingo.MaxRegistrationDate = &registration
	}

	return bingo, nil
}

func stampArgs(stamp *Stamp) (*time.Time, *string) {
	if stamp == nil {
		return nil, nil
	}
	at := stamp.At
	return &at, stamp.ByID
}

// CreateBingo inserts a new aggregate root.
func (store *PostgresStore) CreateBingo(ctx context.Context, bingo *Bingo) error {
	const query = `
		INSERT INTO bingo (
			id, slug, language, title, description, private,
			width, height, full_line_value,
			start_date, end_date, max_registration_date,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := store.db.Exec(ctx, query,
		bingo.ID, bingo.Slug, bingo.Language, bingo.Title, bingo.Description, bingo.Private,
		bingo.Width, bingo.Height, bingo.FullLineValue,
		bingo.StartDate, bingo.EndDate, bingo.MaxRegistrationDate,
		bingo.CreatedByID, bingo.CreatedAt, bingo.UpdatedAt,
	)
	return dberr.Wrap(err, "create_bingo")
}

func (store *PostgresStore) findBingo(ctx context.Context, where string, arg any, lock bool) (*Bingo, error) {
	query := `SELECT ` + bingoColumns + ` FROM bingo b WHERE ` + where + ` AND b.deleted_at IS NULL`
	if lock {
		query += ` FOR UPDATE`
	}

	bingo, err := scanBingo(store.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, dberr.Wrap(err, "find_bingo")
	}
	return bingo, nil
}

// FindBingoByID loads a live bingo by ID.
func (store *PostgresStore) FindBingoByID(ctx context.Context, id string) (*Bingo, error) {
	return store.findBingo(ctx, `b.id = $1`, id, false)
}

// FindBingoBySlug loads a live bingo by slug.
func (store *PostgresStore) FindBingoBySlug(ctx context.Context, slug string) (*Bingo, error) {
	return store.findBingo(ctx, `b.slug = $1`, slug, false)
}

// LockBingo re-reads the bingo FOR UPDATE. Outside a transaction the lock is
// released immediately, so callers go through [PostgresStore.Tx].
func (store *PostgresStore) LockBingo(ctx context.Context, id string) (*Bingo, error) {
	return store.findBingo(ctx, `b.id = $1`, id, true)
}

// SlugTaken reports whether any bingo, deleted or not, uses slug.
func (store *PostgresStore) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var taken bool
	err := store.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bingo WHERE slug = $1)`, slug).Scan(&taken)
	if err != nil {
		return false, dberr.Wrap(err, "slug_taken")
	}
	return taken, nil
}

/*
ListBingos returns a page of bingos visible to actor, newest first.

Description: A private bingo is listed only for its participants and for
moderators. Status is derived from the event columns with the same
precedence as [Bingo.Status].

Returns:
  - []*Bingo: One page of bingos
  - int: Total count matching filters
  - error: Database execution errors
*/
func (store *PostgresStore) ListBingos(ctx context.Context, actor Actor, filter Filter, limit, offset int) ([]*Bingo, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	var actorID *string
	if !actor.Anonymous() {
		actorID = &actor.UserID
	}

	queryBuilder.WriteString(`SELECT ` + bingoColumns + `, COUNT(*) OVER() AS total_count FROM bingo b WHERE b.deleted_at IS NULL`)

	if !actor.IsModerator() {
		queryBuilder.WriteString(fmt.Sprintf(` AND (NOT b.private OR EXISTS (
			SELECT 1 FROM bingo_participant p WHERE p.bingo_id = b.id AND p.user_id = $%d))`, argID))
		args = append(args, actorID)
		argID++
	}

	if query := strings.TrimSpace(filter.Query); query != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND (b.title ILIKE $%d OR b.slug ILIKE $%d)`, argID, argID))
		args = append(args, "%"+query+"%")
		argID++
	}

	if filter.Status != nil {
		queryBuilder.WriteString(` AND ` + statusPredicate(*filter.Status))
	}

	queryBuilder.WriteString(` ORDER BY b.created_at DESC, b.id DESC LIMIT $` + strconv.Itoa(argID) + ` OFFSET $` + strconv.Itoa(argID+1))
	args = append(args, limit, offset)

	rows, err := store.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_bingos")
	}
	defer rows.Close()

	bingos := make([]*Bingo, 0)
	total := 0
	for rows.Next() {
		bingo, err := scanBingo(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_bingo")
		}
		bingos = append(bingos, bingo)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_bingos")
	}

	return bingos, total, nil
}

func statusPredicate(status Status) string {
	switch status {
	case StatusCanceled:
		return `b.canceled_at IS NOT NULL`
	case StatusCompleted:
		return `(b.canceled_at IS NULL AND b.ended_at IS NOT NULL)`
	case StatusOngoing:
		return `(b.canceled_at IS NULL AND b.ended_at IS NULL AND b.started_at IS NOT NULL)`
	default:
		return `(b.canceled_at IS NULL AND b.ended_at IS NULL AND b.started_at IS NULL)`
	}
}

// UpdateBingo writes every mutable column, event stamps included.
func (store *PostgresStore) UpdateBingo(ctx context.Context, bingo *Bingo) error {
	const query = `
		UPDATE bingo SET
			language = $2, title = $3, description = $4, private = $5,
			width = $6, height = $7, full_line_value = $8,
			start_date = $9, end_date = $10, max_registration_date = $11,
			started_at = $12, started_by = $13, ended_at = $14, ended_by = $15,
			canceled_at = $16, canceled_by = $17, reset_at = $18, reset_by = $19,
			updated_at = $20
		WHERE id = $1 AND deleted_at IS NULL`

	startedAt, startedBy := stampArgs(bingo.Started)
	endedAt, endedBy := stampArgs(bingo.Ended)
	canceledAt, canceledBy := stampArgs(bingo.Canceled)
	resetAt, resetBy := stampArgs(bingo.Reset)

	tag, err := store.db.Exec(ctx, query,
		bingo.ID, bingo.Language, bingo.Title, bingo.Description, bingo.Private,
		bingo.Width, bingo.Height, bingo.FullLineValue,
		bingo.StartDate, bingo.EndDate, bingo.MaxRegistrationDate,
		startedAt, startedBy, endedAt, endedBy,
		canceledAt, canceledBy, resetAt, resetBy,
		bingo.UpdatedAt,
	)
	return affected(tag, err, "update_bingo")
}

// SoftDeleteBingo marks the bingo deleted.
func (store *PostgresStore) SoftDeleteBingo(ctx context.Context, id string, at time.Time) error {
	tag, err := store.db.Exec(ctx,
		`UPDATE bingo SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	return affected(tag, err, "soft_delete_bingo")
}

// affected wraps err and turns a zero-row write into NotFound.
func affected(tag pgconn.CommandTag, err error, action string) error {
	if err != nil {
		return dberr.Wrap(err, action)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("error.resource_not_found")
	}
	return nil
}
