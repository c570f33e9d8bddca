// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/bingo"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/sec"
)

var (
	member    = bingo.Actor{UserID: "u-member", Username: "Member", GlobalRole: sec.RoleUser}
	moderator = bingo.Actor{UserID: "u-mod", Username: "Mod", GlobalRole: sec.RoleModerator}
	stranger  = bingo.Actor{UserID: "u-stranger", Username: "Stranger", GlobalRole: sec.RoleUser}
)

func enrolled(role bingo.Role) *bingo.Participant {
	return &bingo.Participant{UserID: member.UserID, Username: member.Username, Role: role}
}

func withStatus(status bingo.Status) *bingo.Bingo {
	b := &bingo.Bingo{ID: "b-1", Width: 3, Height: 3}
	stamp := &bingo.Stamp{At: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}
	switch status {
	case bingo.StatusOngoing:
		b.Started = stamp
	case bingo.StatusCompleted:
		b.Started, b.Ended = stamp, stamp
	case bingo.StatusCanceled:
		b.Started, b.Canceled = stamp, stamp
	}
	return b
}

/*
TestRole_AtLeast checks the total order Participant < Organizer < Owner.
*/
func TestRole_AtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     bingo.Role
		required bingo.Role
		want     bool
	}{
		{"participant_vs_participant", bingo.RoleParticipant, bingo.RoleParticipant, true},
		{"participant_vs_organizer", bingo.RoleParticipant, bingo.RoleOrganizer, false},
		{"organizer_vs_participant", bingo.RoleOrganizer, bingo.RoleParticipant, true},
		{"organizer_vs_owner", bingo.RoleOrganizer, bingo.RoleOwner, false},
		{"owner_vs_organizer", bingo.RoleOwner, bingo.RoleOrganizer, true},
		{"unknown_role", bingo.Role("captain"), bingo.RoleParticipant, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.required))
		})
	}
}

func TestHasRole(t *testing.T) {
	assert.False(t, bingo.HasRole(nil, bingo.RoleParticipant))
	assert.True(t, bingo.HasRole(enrolled(bingo.RoleOwner), bingo.RoleOrganizer))
	assert.False(t, bingo.HasRole(enrolled(bingo.RoleParticipant), bingo.RoleOrganizer))
	assert.False(t, bingo.Role("").Valid())
}

/*
TestBingo_Status verifies the stamp precedence canceled > completed > ongoing > pending.
*/
func TestBingo_Status(t *testing.T) {
	stamp := &bingo.Stamp{At: time.Now()}

	tests := []struct {
		name  string
		bingo bingo.Bingo
		want  bingo.Status
	}{
		{"no_stamps", bingo.Bingo{}, bingo.StatusPending},
		{"started", bingo.Bingo{Started: stamp}, bingo.StatusOngoing},
		{"ended", bingo.Bingo{Started: stamp, Ended: stamp}, bingo.StatusCompleted},
		{"canceled_while_pending", bingo.Bingo{Canceled: stamp}, bingo.StatusCanceled},
		{"canceled_wins_over_ended", bingo.Bingo{Started: stamp, Ended: stamp, Canceled: stamp}, bingo.StatusCanceled},
		{"reset_only", bingo.Bingo{Reset: stamp}, bingo.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bingo.Status())
		})
	}
}

func TestBingo_InBounds(t *testing.T) {
	b := &bingo.Bingo{Width: 3, Height: 2}

	assert.True(t, b.InBounds(1, 1))
	assert.True(t, b.InBounds(3, 2))
	assert.False(t, b.InBounds(0, 1))
	assert.False(t, b.InBounds(4, 1))
	assert.False(t, b.InBounds(1, 3))
	assert.False(t, b.InBounds(-1, -1))
	assert.Equal(t, 6, b.CellCount())
}

/*
TestBingoPolicy_CanView covers the private visibility rule.
*/
func TestBingoPolicy_CanView(t *testing.T) {
	private := &bingo.Bingo{Private: true}
	public := &bingo.Bingo{}

	assert.True(t, bingo.NewBingoPolicy(bingo.Actor{}, nil, public).CanView())
	assert.False(t, bingo.NewBingoPolicy(bingo.Actor{}, nil, private).CanView())
	assert.False(t, bingo.NewBingoPolicy(stranger, nil, private).CanView())
	assert.True(t, bingo.NewBingoPolicy(member, enrolled(bingo.RoleParticipant), private).CanView())
	assert.True(t, bingo.NewBingoPolicy(moderator, nil, private).CanView())
}

/*
TestBingoPolicy_UpdateMatrix checks both axes of the field restriction matrix.
*/
func TestBingoPolicy_UpdateMatrix(t *testing.T) {
	tests := []struct {
		name        string
		actor       bingo.Actor
		participant *bingo.Participant
		status      bingo.Status
		fields      []bingo.Field
		canUpdate   bool
		locked      bingo.Field
	}{
		{"organizer_title_pending", member, enrolled(bingo.RoleOrganizer), bingo.StatusPending, []bingo.Field{bingo.FieldTitle}, true, ""},
		{"organizer_title_ongoing", member, enrolled(bingo.RoleOrganizer), bingo.StatusOngoing, []bingo.Field{bingo.FieldTitle}, true, ""},
		{"organizer_width_ongoing", member, enrolled(bingo.RoleOrganizer), bingo.StatusOngoing, []bingo.Field{bingo.FieldTitle, bingo.FieldWidth}, true, bingo.FieldWidth},
		{"organizer_end_date_completed", member, enrolled(bingo.RoleOrganizer), bingo.StatusCompleted, []bingo.Field{bingo.FieldEndDate}, true, bingo.FieldEndDate},
		{"participant_title", member, enrolled(bingo.RoleParticipant), bingo.StatusPending, []bingo.Field{bingo.FieldTitle}, false, ""},
		{"stranger_title", stranger, nil, bingo.StatusPending, []bingo.Field{bingo.FieldTitle}, false, ""},
		{"moderator_width_ongoing", moderator, nil, bingo.StatusOngoing, []bingo.Field{bingo.FieldWidth}, true, ""},
		{"moderator_private_canceled", moderator, nil, bingo.StatusCanceled, []bingo.Field{bingo.FieldPrivate}, true, ""},
		{"unknown_field_owner", member, enrolled(bingo.RoleOwner), bingo.StatusPending, []bingo.Field{"slug"}, true, "slug"},
		{"unknown_field_organizer", member, enrolled(bingo.RoleOrganizer), bingo.StatusPending, []bingo.Field{"slug"}, false, "slug"},
		{"unknown_field_moderator", moderator, nil, bingo.StatusPending, []bingo.Field{"slug"}, false, "slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := bingo.NewBingoPolicy(tt.actor, tt.participant, withStatus(tt.status))

			assert.Equal(t, tt.canUpdate, policy.CanUpdate(tt.fields))

			field, locked := policy.LockedField(tt.fields)
			assert.Equal(t, tt.locked != "", locked)
			assert.Equal(t, tt.locked, field)
		})
	}
}

/*
TestBingoPolicy_Lifecycle covers start, end, cancel, reset, delete and tile rights.
*/
func TestBingoPolicy_Lifecycle(t *testing.T) {
	owner := enrolled(bingo.RoleOwner)
	organizer := enrolled(bingo.RoleOrganizer)
	participant := enrolled(bingo.RoleParticipant)

	pending := withStatus(bingo.StatusPending)
	ongoing := withStatus(bingo.StatusOngoing)

	t.Run("start_and_end", func(t *testing.T) {
		assert.True(t, bingo.NewBingoPolicy(member, organizer, pending).CanStart())
		assert.False(t, bingo.NewBingoPolicy(member, participant, pending).CanStart())
		assert.True(t, bingo.NewBingoPolicy(moderator, nil, pending).CanStart())
		assert.True(t, bingo.NewBingoPolicy(member, owner, ongoing).CanEnd())
		assert.False(t, bingo.NewBingoPolicy(stranger, nil, ongoing).CanEnd())
	})

	t.Run("cancel", func(t *testing.T) {
		assert.True(t, bingo.NewBingoPolicy(member, organizer, ongoing).CanCancel())
		assert.False(t, bingo.NewBingoPolicy(member, participant, ongoing).CanCancel())
		assert.False(t, bingo.NewBingoPolicy(moderator, nil, withStatus(bingo.StatusCompleted)).CanCancel())
		assert.False(t, bingo.NewBingoPolicy(member, owner, withStatus(bingo.StatusCanceled)).CanCancel())
	})

	t.Run("owner_only", func(t *testing.T) {
		assert.True(t, bingo.NewBingoPolicy(member, owner, pending).CanReset())
		assert.False(t, bingo.NewBingoPolicy(member, organizer, pending).CanReset())
		assert.True(t, bingo.NewBingoPolicy(moderator, nil, pending).CanDelete())
		assert.False(t, bingo.NewBingoPolicy(member, organizer, pending).CanDelete())
	})

	t.Run("tiles", func(t *testing.T) {
		assert.True(t, bingo.NewBingoPolicy(member, organizer, pending).CanCreateOrEditTile())
		assert.False(t, bingo.NewBingoPolicy(member, owner, ongoing).CanCreateOrEditTile())
		assert.False(t, bingo.NewBingoPolicy(member, participant, pending).CanCreateOrEditTile())
		assert.True(t, bingo.NewBingoPolicy(moderator, nil, ongoing).CanCreateOrEditTile())
	})

	t.Run("roster_and_activities", func(t *testing.T) {
		assert.True(t, bingo.NewBingoPolicy(member, organizer, pending).CanManageTeams())
		assert.False(t, bingo.NewBingoPolicy(member, participant, pending).CanAddParticipant())
		assert.True(t, bingo.NewBingoPolicy(moderator, nil, pending).CanViewActivities())
		assert.False(t, bingo.NewBingoPolicy(member, participant, pending).CanViewActivities())
	})
}

/*
TestParticipantPolicy_CanKick verifies the kick hierarchy, moderator branch first.
*/
func TestParticipantPolicy_CanKick(t *testing.T) {
	tests := []struct {
		name   string
		actor  bingo.Actor
		self   *bingo.Participant
		target bingo.Role
		want   bool
	}{
		{"moderator_kicks_owner", moderator, nil, bingo.RoleOwner, true},
		{"owner_kicks_organizer", member, enrolled(bingo.RoleOwner), bingo.RoleOrganizer, true},
		{"owner_kicks_participant", member, enrolled(bingo.RoleOwner), bingo.RoleParticipant, true},
		{"organizer_kicks_organizer", member, enrolled(bingo.RoleOrganizer), bingo.RoleOrganizer, false},
		{"organizer_kicks_participant", member, enrolled(bingo.RoleOrganizer), bingo.RoleParticipant, true},
		{"organizer_kicks_owner", member, enrolled(bingo.RoleOrganizer), bingo.RoleOwner, false},
		{"participant_kicks_participant", member, enrolled(bingo.RoleParticipant), bingo.RoleParticipant, false},
		{"stranger_kicks_participant", stranger, nil, bingo.RoleParticipant, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &bingo.Participant{UserID: "u-target", Role: tt.target}
			assert.Equal(t, tt.want, bingo.NewParticipantPolicy(tt.actor, tt.self).CanKick(target))
		})
	}
}

func TestParticipantPolicy_CanUpdate(t *testing.T) {
	teamOnly := bingo.ParticipantChanges{Team: true}
	roleOnly := bingo.ParticipantChanges{Role: true}

	tests := []struct {
		name    string
		actor   bingo.Actor
		self    *bingo.Participant
		target  bingo.Role
		changes bingo.ParticipantChanges
		want    bool
	}{
		{"organizer_moves_participant", member, enrolled(bingo.RoleOrganizer), bingo.RoleParticipant, teamOnly, true},
		{"organizer_promotes_participant", member, enrolled(bingo.RoleOrganizer), bingo.RoleParticipant, roleOnly, false},
		{"organizer_moves_owner", member, enrolled(bingo.RoleOrganizer), bingo.RoleOwner, teamOnly, false},
		{"owner_promotes_participant", member, enrolled(bingo.RoleOwner), bingo.RoleParticipant, roleOnly, true},
		{"participant_moves_participant", member, enrolled(bingo.RoleParticipant), bingo.RoleParticipant, teamOnly, false},
		{"moderator_promotes", moderator, nil, bingo.RoleParticipant, roleOnly, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &bingo.Participant{UserID: "u-target", Role: tt.target}
			assert.Equal(t, tt.want, bingo.NewParticipantPolicy(tt.actor, tt.self).CanUpdate(target, tt.changes))
		})
	}

	assert.True(t, bingo.ParticipantChanges{}.Empty())
}

func TestParticipantPolicy_LeaveAndTransfer(t *testing.T) {
	assert.False(t, bingo.NewParticipantPolicy(member, enrolled(bingo.RoleOwner)).CanLeave())
	assert.True(t, bingo.NewParticipantPolicy(member, enrolled(bingo.RoleOrganizer)).CanLeave())
	assert.False(t, bingo.NewParticipantPolicy(stranger, nil).CanLeave())

	assert.True(t, bingo.NewParticipantPolicy(member, enrolled(bingo.RoleOwner)).CanTransferOwnership())
	assert.False(t, bingo.NewParticipantPolicy(member, enrolled(bingo.RoleOrganizer)).CanTransferOwnership())
	assert.False(t, bingo.NewParticipantPolicy(moderator, nil).CanTransferOwnership())
}
