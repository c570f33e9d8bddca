// Copyright (c) 2026 RuneBingo. All rights reserved.

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a refresh session remains valid.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random refresh token.
	RefreshTokenLength = 32
)

// # Account Constraints

const (
	// UsernameMinLength and UsernameMaxLength bound display names.
	UsernameMinLength = 2
	UsernameMaxLength = 25

	// PasswordMinLength is the shortest accepted password.
	PasswordMinLength = 8

	// PasswordMaxLength is the bcrypt input limit, in bytes.
	PasswordMaxLength = 72
)
