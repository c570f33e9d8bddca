// Copyright (c) 2026 RuneBingo. All rights reserved.

package auth

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a PostgreSQL backed [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, username, username_normalized, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.UsernameNormalized, &user.PasswordHash,
		&user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

/*
Create persists a new account.

Returns:
  - error: Conflict when the normalized username exists, or database errors
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (id, username, username_normalized, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := repository.pool.Exec(ctx, query,
		user.ID, user.Username, user.UsernameNormalized, user.PasswordHash,
		user.Role, user.CreatedAt, user.UpdatedAt,
	)
	return dberr.Wrap(err, "create_user")
}

// FindByID loads a live account.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_user_by_id")
	}
	return user, nil
}

// FindByUsername loads a live account by normalized display name.
func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, usernameNormalized string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username_normalized = $1 AND deleted_at IS NULL`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, usernameNormalized))
	if err != nil {
		return nil, dberr.Wrap(err, "find_user_by_username")
	}
	return user, nil
}

/*
FindByIDs batch-loads accounts for display.

Description: Deleted accounts are included so that historical activity keeps
its actor names.
*/
func (repository *PostgresUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}

	rows, err := repository.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "find_users_by_ids")
	}
	defer rows.Close()

	users := make([]*User, 0, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_user")
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_users")
	}
	return users, nil
}
