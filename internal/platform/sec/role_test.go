// Copyright (c) 2026 RuneBingo. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/sec"
)

/*
TestUserRole_AtLeast checks the global role hierarchy ordering.
*/
func TestUserRole_AtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     sec.UserRole
		target   sec.UserRole
		expected bool
	}{
		{"admin_over_moderator", sec.RoleAdmin, sec.RoleModerator, true},
		{"moderator_equal", sec.RoleModerator, sec.RoleModerator, true},
		{"user_below_moderator", sec.RoleUser, sec.RoleModerator, false},
		{"unknown_below_user", sec.UserRole("ghost"), sec.RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.role.AtLeast(tt.target))
		})
	}
}

/*
TestUserRole_IsModerator verifies that admins inherit the moderator capability.
*/
func TestUserRole_IsModerator(t *testing.T) {
	assert.True(t, sec.RoleAdmin.IsModerator())
	assert.True(t, sec.RoleModerator.IsModerator())
	assert.False(t, sec.RoleUser.IsModerator())
	assert.False(t, sec.UserRole("").IsModerator())
}

/*
TestHashToken verifies digests are stable and distinct per token.
*/
func TestHashToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	assert.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
	assert.NotEqual(t, sec.HashToken(first), sec.HashToken(second))
	assert.Len(t, sec.HashToken(first), 64)
}

/*
TestPasswordHash verifies bcrypt round-trips and rejects wrong passwords.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("zulrah-rotation")
	assert.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("zulrah-rotation", hash))
	assert.False(t, sec.CheckPasswordHash("vorkath", hash))
}
