// Copyright (c) 2026 RuneBingo. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/sec"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/validate"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/clock"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/slice"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/slug"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// Service implements account and session use cases. It also serves as the
// user directory for the bingo and activity packages.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenProvider
	clock    clock.Clock
	logger   *slog.Logger
}

// NewService constructs a new auth [Service].
func NewService(users UserRepository, sessions SessionRepository, tokens TokenProvider, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		clock:    clock,
		logger:   logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to create an account.
type RegisterInput struct {
	Username string
	Password string
}

/*
Register validates, hashes, and persists a new account with the user role.

Returns:
  - *User: Created entity
  - error: ValidationError, Conflict when the name is taken, or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	username := strings.Join(strings.Fields(input.Username), " ")

	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).
		MinLen(FieldUsername, username, UsernameMinLength).
		MaxLen(FieldUsername, username, UsernameMaxLength).
		Username(FieldUsername, username)
	validator.Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		Custom(FieldPassword, len(input.Password) > PasswordMaxLength, "validation.password_too_long")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	normalized := slug.Normalize(username)
	if _, err := service.users.FindByUsername(ctx, normalized); err == nil {
		return nil, usernameTaken(username)
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	now := service.clock.Now()
	user := &User{
		ID:                 uuid.New(),
		Username:           username,
		UsernameNormalized: normalized,
		PasswordHash:       hashedPassword,
		Role:               sec.RoleUser,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := service.users.Create(ctx, user); err != nil {
		// Lost a race against another registration of the same name.
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, usernameTaken(username)
		}
		return nil, err
	}

	service.logger.Info("user_registered", slog.String("user_id", user.ID))
	return user, nil
}

func usernameTaken(username string) *apperr.AppError {
	return apperr.Conflict("user.username_taken").With("username", username)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username  string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession is a freshly issued token pair.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login verifies credentials and opens a refresh session.

Description: An unknown username and a wrong password fail identically.

Returns:
  - *LoginSession: Access and refresh tokens
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.users.FindByUsername(ctx, slug.Normalize(input.Username))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("auth.invalid_credentials")
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("auth.invalid_credentials")
	}

	session, err := service.issue(ctx, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	service.logger.Info("user_logged_in", slog.String("user_id", user.ID))
	return session, nil
}

/*
RefreshSession rotates a refresh token.

Description: The presented session is revoked before a new pair is issued, so
a refresh token works exactly once.

Returns:
  - *LoginSession: New token pair
  - error: Unauthorized when the token is unknown, expired or already used
*/
func (service *Service) RefreshSession(ctx context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {
	session, err := service.sessions.FindByTokenHash(ctx, sec.HashToken(refreshToken))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("auth.session.invalid")
		}
		return nil, err
	}

	if !service.clock.Now().Before(session.ExpiresAt) {
		return nil, apperr.Unauthorized("auth.session.invalid")
	}

	if err := service.sessions.Revoke(ctx, session); err != nil {
		return nil, err
	}

	user, err := service.users.FindByID(ctx, session.UserID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("auth.session.invalid")
		}
		return nil, err
	}

	return service.issue(ctx, user, userAgent, ipAddress)
}

// Logout revokes the session behind refreshToken. Unknown tokens are ignored.
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	session, err := service.sessions.FindByTokenHash(ctx, sec.HashToken(refreshToken))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil
		}
		return err
	}
	return service.sessions.Revoke(ctx, session)
}

func (service *Service) issue(ctx context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {
	accessToken, err := service.tokens.GenerateAccessToken(user.ID, user.Username, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	now := service.clock.Now()
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: now.Add(RefreshTokenTTL),
		CreatedAt: now,
	}
	if err := service.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
		User:                  user,
	}, nil
}

// # Directory

// FindUser loads the account behind an authenticated request.
func (service *Service) FindUser(ctx context.Context, id string) (*User, error) {
	user, err := service.users.FindByID(ctx, id)
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, apperr.NotFound("user.not_found")
	}
	return user, err
}

// LookupUser resolves a display name case-insensitively.
func (service *Service) LookupUser(ctx context.Context, username string) (string, string, error) {
	user, err := service.users.FindByUsername(ctx, slug.Normalize(username))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return "", "", apperr.NotFound("user.not_found").With("username", username)
		}
		return "", "", err
	}
	return user.ID, user.Username, nil
}

// UsernamesByID resolves display names in one batch. Unknown ids are omitted.
func (service *Service) UsernamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	users, err := service.users.FindByIDs(ctx, slice.Filter(ids, uuid.IsValid))
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(users))
	for _, user := range users {
		names[user.ID] = user.Username
	}
	return names, nil
}
