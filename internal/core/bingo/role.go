// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

// # Participant Roles

// Role is a participant's authority inside one bingo.
// Roles are totally ordered: Participant < Organizer < Owner.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
	RoleOwner       Role = "owner"
)

// roleOrder lists roles from least to most privileged.
var roleOrder = []Role{RoleParticipant, RoleOrganizer, RoleOwner}

// rank returns the position of role in [roleOrder], or -1 if unknown.
func (role Role) rank() int {
	for i, candidate := range roleOrder {
		if candidate == role {
			return i
		}
	}
	return -1
}

// Valid reports whether the role is one of the known roles.
func (role Role) Valid() bool {
	return role.rank() >= 0
}

// AtLeast reports whether role ranks at or above required.
func (role Role) AtLeast(required Role) bool {
	rank := role.rank()
	return rank >= 0 && rank >= required.rank()
}

// HasRole reports whether participant holds at least required.
// A nil participant holds no role.
func HasRole(participant *Participant, required Role) bool {
	if participant == nil {
		return false
	}
	return participant.Role.AtLeast(required)
}
