// Copyright (c) 2026 RuneBingo. All rights reserved.

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for accounts. Missing rows
// surface as an apperr NotFound.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername matches on the normalized display name.
	FindByUsername(ctx context.Context, usernameNormalized string) (*User, error)

	// FindByIDs returns the live accounts among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]*User, error)

	// Create fails with Conflict when the normalized username is taken.
	Create(ctx context.Context, user *User) error
}

// # Session Data Access

// SessionRepository stores refresh sessions until they expire.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error

	// FindByTokenHash returns the live session for tokenHash or NotFound.
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Revoke deletes the session; revoking a missing session is not an error.
	Revoke(ctx context.Context, session *Session) error
}
