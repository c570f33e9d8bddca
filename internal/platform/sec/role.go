// Copyright (c) 2026 RuneBingo. All rights reserved.

package sec

// # User Roles

// UserRole represents the platform-wide authorization level granted to an account.
// It is independent from any bingo-scoped participant role.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Can see and manage every bingo regardless of visibility or status
	RoleModerator UserRole = "moderator"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// IsModerator reports whether the role carries the global moderator capability.
func (r UserRole) IsModerator() bool {
	return r.AtLeast(RoleModerator)
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleModerator:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}
