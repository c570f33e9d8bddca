// Copyright (c) 2026 RuneBingo. All rights reserved.

/*
Package auth implements platform identity: accounts with a global role,
password login, and rotating refresh sessions kept in Redis.

Bingo membership and roles live in the bingo package; this package only
answers who a user is and whether they are a platform moderator.
*/
package auth

import (
	"time"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/sec"
)

// # Domain Entities

// User is a registered platform account.
type User struct {
	ID                 string       `json:"id"`
	Username           string       `json:"username"`
	UsernameNormalized string       `json:"-"`
	PasswordHash       string       `json:"-"`
	Role               sec.UserRole `json:"role"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// Session is an active refresh-token session.
//
// The token itself is never stored; sessions are keyed by its hash.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldUsername = "username"
	FieldPassword = "password"
)
