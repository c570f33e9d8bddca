// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

// # Bingo Policy

// BingoPolicy answers authorization questions about one bingo for one actor.
//
// Every method is a pure predicate over already-loaded data; callers turn a
// false result into a Forbidden error.
type BingoPolicy struct {
	actor       Actor
	participant *Participant
	bingo       *Bingo
}

// NewBingoPolicy builds a policy. participant is the actor's own record in
// bingo, or nil when the actor is not enrolled.
func NewBingoPolicy(actor Actor, participant *Participant, bingo *Bingo) BingoPolicy {
	return BingoPolicy{actor: actor, participant: participant, bingo: bingo}
}

// CanView reports whether the bingo is visible. Private bingos are visible
// to their participants and to moderators only.
func (policy BingoPolicy) CanView() bool {
	return !policy.bingo.Private || policy.actor.IsModerator() || policy.participant != nil
}

// CanUpdate checks the role axis of the update matrix for every changed field.
func (policy BingoPolicy) CanUpdate(fields []Field) bool {
	for _, field := range fields {
		rule := field.rule()

		if rule.ownerOnly && !HasRole(policy.participant, RoleOwner) {
			return false
		}
		if rule.moderatorBypass && policy.actor.IsModerator() {
			continue
		}
		if !HasRole(policy.participant, RoleOrganizer) {
			return false
		}
	}
	return true
}

// LockedField returns the first field that the status axis forbids editing
// in the bingo's current status.
func (policy BingoPolicy) LockedField(fields []Field) (Field, bool) {
	status := policy.bingo.Status()
	for _, field := range fields {
		rule := field.rule()
		if rule.moderatorBypass && policy.actor.IsModerator() {
			continue
		}
		if !rule.allows(status) {
			return field, true
		}
	}
	return "", false
}

// CanDelete allows moderators and the Owner.
func (policy BingoPolicy) CanDelete() bool {
	return policy.actor.IsModerator() || HasRole(policy.participant, RoleOwner)
}

// CanStart allows moderators and Organizers or above.
func (policy BingoPolicy) CanStart() bool {
	return policy.actor.IsModerator() || HasRole(policy.participant, RoleOrganizer)
}

// CanEnd allows moderators and Organizers or above.
func (policy BingoPolicy) CanEnd() bool {
	return policy.actor.IsModerator() || HasRole(policy.participant, RoleOrganizer)
}

// CanCancel allows moderators and Organizers or above while the bingo is
// neither completed nor already canceled.
func (policy BingoPolicy) CanCancel() bool {
	switch policy.bingo.Status() {
	case StatusCompleted, StatusCanceled:
		return false
	}
	return policy.actor.IsModerator() || HasRole(policy.participant, RoleOrganizer)
}

// CanReset allows moderators and the Owner.
func (policy BingoPolicy) CanReset() bool {
	return policy.actor.IsModerator() || HasRole(policy.participant, RoleOwner)
}

// CanViewActivities allows moderators and Organizers or above.
func (policy BingoPolicy) CanViewActivities() bool {
	return policy.actor.IsModerator() || HasRole(policy.participant, RoleOrganizer)
}

// CanCreateOrEditTile allows moderators at any status, and Organizers or
// above while the bingo is pending. It also covers moving and deleting tiles.
func (policy BingoPolicy) CanCreateOrEditTile() bool {
	if policy.actor.IsModerator() {
		return true
	}
	return HasRole(policy.participant, RoleOrganizer) && policy.bingo.Status() == StatusPending
}

// CanManageTeams allows moderators and Organizers or above.
func (policy BingoPolicy) CanManageTeams() bool {
	return policy.actor.IsModerator() || HasRole(policy.participant, RoleOrganizer)
}

// CanAddParticipant allows moderators and Organizers or above.
func (policy BingoPolicy) CanAddParticipant() bool {
	return policy.actor.IsModerator() || HasRole(policy.participant, RoleOrganizer)
}

// # Participant Policy

// ParticipantChanges flags which aspects of a participant an update touches.
type ParticipantChanges struct {
	Role bool
	Team bool
}

// Empty reports whether nothing changes.
func (changes ParticipantChanges) Empty() bool {
	return !changes.Role && !changes.Team
}

// ParticipantPolicy answers roster questions for one actor in one bingo.
type ParticipantPolicy struct {
	actor       Actor
	participant *Participant
}

// NewParticipantPolicy builds a policy; participant is the actor's own record or nil.
func NewParticipantPolicy(actor Actor, participant *Participant) ParticipantPolicy {
	return ParticipantPolicy{actor: actor, participant: participant}
}

// CanKick reports whether the actor may remove target from the bingo.
//
// The moderator branch is checked first, so a moderator may kick an Owner.
func (policy ParticipantPolicy) CanKick(target *Participant) bool {
	if policy.actor.IsModerator() {
		return true
	}
	if policy.participant == nil {
		return false
	}
	if target.Role == RoleOwner {
		return false
	}
	if target.Role == RoleOrganizer {
		return HasRole(policy.participant, RoleOwner)
	}
	return HasRole(policy.participant, RoleOrganizer)
}

// CanUpdate reports whether the actor may apply changes to target.
func (policy ParticipantPolicy) CanUpdate(target *Participant, changes ParticipantChanges) bool {
	if policy.actor.IsModerator() {
		return true
	}
	if policy.participant == nil {
		return false
	}
	if changes.Role && !HasRole(policy.participant, RoleOwner) {
		return false
	}
	if !HasRole(policy.participant, RoleOrganizer) {
		return false
	}
	if target.Role == RoleOwner && !HasRole(policy.participant, RoleOwner) {
		return false
	}
	return true
}

// CanLeave allows any participant except the Owner, who must transfer
// ownership first.
func (policy ParticipantPolicy) CanLeave() bool {
	return policy.participant != nil && policy.participant.Role != RoleOwner
}

// CanTransferOwnership allows only the current Owner.
func (policy ParticipantPolicy) CanTransferOwnership() bool {
	return policy.participant != nil && policy.participant.Role == RoleOwner
}
