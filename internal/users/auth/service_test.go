// Copyright (c) 2026 RuneBingo. All rights reserved.

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/sec"
	"github.com/RuneBingo/RuneBingo-sub000/internal/users/auth"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/clock"
)

// # Fakes

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if user, ok := store.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("error.resource_not_found")
}

func (store *memoryUsers) FindByUsername(_ context.Context, normalized string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.users {
		if user.UsernameNormalized == normalized {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("error.resource_not_found")
}

func (store *memoryUsers) FindByIDs(_ context.Context, ids []string) ([]*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	found := []*auth.User{}
	for _, id := range ids {
		if user, ok := store.users[id]; ok {
			found = append(found, user)
		}
	}
	return found, nil
}

func (store *memoryUsers) Create(_ context.Context, user *auth.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, existing := range store.users {
		if existing.UsernameNormalized == user.UsernameNormalized {
			return apperr.Conflict("error.duplicate")
		}
	}
	clone := *user
	store.users[user.ID] = &clone
	return nil
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
}

func (store *memorySessions) Create(_ context.Context, session *auth.Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[session.TokenHash] = session
	return nil
}

func (store *memorySessions) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if session, ok := store.sessions[tokenHash]; ok {
		return session, nil
	}
	return nil, apperr.NotFound("auth.session.not_found")
}

func (store *memorySessions) Revoke(_ context.Context, session *auth.Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.sessions, session.TokenHash)
	return nil
}

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(userID, username, role string, _ time.Duration) (string, error) {
	return strings.Join([]string{userID, username, role}, "|"), nil
}

// # Fixture

type fixture struct {
	ctx      context.Context
	clock    *clock.FixedClock
	users    *memoryUsers
	sessions *memorySessions
	service  *auth.Service
}

func newFixture() *fixture {
	f := &fixture{
		ctx:      context.Background(),
		clock:    clock.Fixed(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)),
		users:    &memoryUsers{users: map[string]*auth.User{}},
		sessions: &memorySessions{sessions: map[string]*auth.Session{}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = auth.NewService(f.users, f.sessions, stubTokens{}, f.clock, logger)
	return f
}

func (f *fixture) register(t *testing.T, username, password string) *auth.User {
	t.Helper()
	user, err := f.service.Register(f.ctx, auth.RegisterInput{Username: username, Password: password})
	require.NoError(t, err)
	return user
}

// # Tests

func TestService_Register(t *testing.T) {
	f := newFixture()

	user := f.register(t, "  Lynx   Titan ", "correct horse")
	assert.Equal(t, "Lynx Titan", user.Username)
	assert.Equal(t, "lynx titan", user.UsernameNormalized)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("correct horse", user.PasswordHash))

	tests := []struct {
		name  string
		input auth.RegisterInput
		code  string
		key   string
	}{
		{"taken_any_case", auth.RegisterInput{Username: "LYNX TITAN", Password: "password1"}, apperr.CodeConflict, "user.username_taken"},
		{"too_short_name", auth.RegisterInput{Username: "Z", Password: "password1"}, apperr.CodeValidation, "validation.failed"},
		{"symbols_in_name", auth.RegisterInput{Username: "Zez!ma", Password: "password1"}, apperr.CodeValidation, "validation.failed"},
		{"short_password", auth.RegisterInput{Username: "Woox", Password: "short"}, apperr.CodeValidation, "validation.failed"},
		{"password_over_bcrypt_limit", auth.RegisterInput{Username: "Woox", Password: strings.Repeat("é", 40)}, apperr.CodeValidation, "validation.failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(f.ctx, tt.input)
			appErr := apperr.As(err)
			require.NotNil(t, appErr, "expected an AppError, got %v", err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.key, appErr.Key)
		})
	}
}

func TestService_Login(t *testing.T) {
	f := newFixture()
	user := f.register(t, "Zezima", "party hat 2001")

	session, err := f.service.Login(f.ctx, auth.LoginInput{Username: "zezima", Password: "party hat 2001"})
	require.NoError(t, err)
	assert.Equal(t, user.ID+"|Zezima|user", session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, f.clock.Now().Add(auth.RefreshTokenTTL), session.RefreshTokenExpiresAt)

	stored, err := f.sessions.FindByTokenHash(f.ctx, sec.HashToken(session.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)

	for _, input := range []auth.LoginInput{
		{Username: "Zezima", Password: "wrong password"},
		{Username: "Nobody", Password: "party hat 2001"},
	} {
		_, err := f.service.Login(f.ctx, input)
		assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
		assert.Equal(t, "auth.invalid_credentials", apperr.As(err).Key)
	}
}

func TestService_RefreshSession(t *testing.T) {
	f := newFixture()
	f.register(t, "Woox", "tick perfect")

	first, err := f.service.Login(f.ctx, auth.LoginInput{Username: "Woox", Password: "tick perfect"})
	require.NoError(t, err)

	second, err := f.service.RefreshSession(f.ctx, first.RefreshToken, "agent", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// A rotated token cannot be replayed.
	_, err = f.service.RefreshSession(f.ctx, first.RefreshToken, "agent", "127.0.0.1")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	f.clock.Advance(auth.RefreshTokenTTL)
	_, err = f.service.RefreshSession(f.ctx, second.RefreshToken, "agent", "127.0.0.1")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

func TestService_Logout(t *testing.T) {
	f := newFixture()
	f.register(t, "B0aty", "hardcore ironman")

	session, err := f.service.Login(f.ctx, auth.LoginInput{Username: "b0aty", Password: "hardcore ironman"})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(f.ctx, session.RefreshToken))
	require.NoError(t, f.service.Logout(f.ctx, session.RefreshToken))

	_, err = f.service.RefreshSession(f.ctx, session.RefreshToken, "", "")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

func TestService_Directory(t *testing.T) {
	f := newFixture()
	zezima := f.register(t, "Zezima", "party hat 2001")
	woox := f.register(t, "Woox", "tick perfect")

	id, name, err := f.service.LookupUser(f.ctx, "  ZEZIMA ")
	require.NoError(t, err)
	assert.Equal(t, zezima.ID, id)
	assert.Equal(t, "Zezima", name)

	_, _, err = f.service.LookupUser(f.ctx, "Nobody")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.Equal(t, "user.not_found", apperr.As(err).Key)

	names, err := f.service.UsernamesByID(f.ctx, []string{zezima.ID, woox.ID, "not-a-uuid"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{zezima.ID: "Zezima", woox.ID: "Woox"}, names)

	me, err := f.service.FindUser(f.ctx, woox.ID)
	require.NoError(t, err)
	assert.Equal(t, "Woox", me.Username)
}
