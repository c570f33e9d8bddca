// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/activity"
	"github.com/RuneBingo/RuneBingo-sub000/internal/core/bingo"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/pointer"
)

func TestService_CreateTeam(t *testing.T) {
	r := newRoster(t)

	team, err := r.service.CreateTeam(r.ctx, r.organizer, r.bingo.ID, "  Iron Maidens ")
	require.NoError(t, err)
	assert.Equal(t, "Iron Maidens", team.Name)

	tests := []struct {
		name  string
		actor bingo.Actor
		team  string
		code  string
		key   string
	}{
		{"name_taken_case_insensitive", r.owner, "IRON MAIDENS", apperr.CodeConflict, "team.name_taken"},
		{"participant_is_forbidden", r.participant, "Rangers", apperr.CodeForbidden, "team.forbidden"},
		{"blank_name", r.owner, "   ", apperr.CodeValidation, "validation.failed"},
		{"name_too_long", r.owner, strings.Repeat("x", 51), apperr.CodeValidation, "validation.failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.service.CreateTeam(r.ctx, tt.actor, r.bingo.ID, tt.team)
			requireAppError(t, err, tt.code, tt.key)
		})
	}

	entry, ok := r.activities.Last()
	require.True(t, ok)
	assert.Equal(t, activity.KeyTeamCreated, entry.Key)
}

func TestService_CreateTeam_ConflictCarriesName(t *testing.T) {
	r := newRoster(t)
	_, err := r.service.CreateTeam(r.ctx, r.owner, r.bingo.ID, "Alpha")
	require.NoError(t, err)

	_, err = r.service.CreateTeam(r.ctx, r.owner, r.bingo.ID, "alpha")
	appErr := requireAppError(t, err, apperr.CodeConflict, "team.name_taken")
	assert.Equal(t, "alpha", appErr.Params["name"])
}

func TestService_UpdateTeam(t *testing.T) {
	t.Run("rename_and_captain", func(t *testing.T) {
		r := newRoster(t)
		_, err := r.service.CreateTeam(r.ctx, r.owner, r.bingo.ID, "Alpha")
		require.NoError(t, err)

		team, err := r.service.UpdateTeam(r.ctx, r.organizer, r.bingo.ID, "alpha", bingo.UpdateTeamInput{
			Name:            pointer.To("Omega"),
			CaptainUsername: pointer.To("woox"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Omega", team.Name)
		require.NotNil(t, team.CaptainID)
		assert.Equal(t, r.participant.UserID, *team.CaptainID)

		team, err = r.service.UpdateTeam(r.ctx, r.organizer, r.bingo.ID, "Omega", bingo.UpdateTeamInput{CaptainUsername: pointer.To("")})
		require.NoError(t, err)
		assert.Nil(t, team.CaptainID)
	})

	t.Run("case_only_rename", func(t *testing.T) {
		r := newRoster(t)
		_, err := r.service.CreateTeam(r.ctx, r.owner, r.bingo.ID, "alpha")
		require.NoError(t, err)

		team, err := r.service.UpdateTeam(r.ctx, r.owner, r.bingo.ID, "alpha", bingo.UpdateTeamInput{Name: pointer.To("ALPHA")})
		require.NoError(t, err)
		assert.Equal(t, "ALPHA", team.Name)
	})

	t.Run("rename_collision", func(t *testing.T) {
		r := newRoster(t)
		_, err := r.service.CreateTeam(r.ctx, r.owner, r.bingo.ID, "Alpha")
		require.NoError(t, err)
		_, err = r.service.CreateTeam(r.ctx, r.owner, r.bingo.ID, "Bravo")
		require.NoError(t, err)

		_, err = r.service.UpdateTeam(r.ctx, r.owner, r.bingo.ID, "Bravo", bingo.UpdateTeamInput{Name: pointer.To("alpha")})
		requireAppError(t, err, apperr.CodeConflict, "team.name_taken")
	})

	t.Run("captain_must_participate", func(t *testing.T) {
		r := newRoster(t)
		_, err := r.service.CreateTeam(r.ctx, r.owner, r.bingo.ID, "Alpha")
		require.NoError(t, err)
		outsider := r.user("Outsider")

		_, err = r.service.UpdateTeam(r.ctx, r.owner, r.bingo.ID, "Alpha", bingo.UpdateTeamInput{CaptainUsername: pointer.To(outsider.Username)})
		requireAppError(t, err, apperr.CodeNotFound, "participant.not_found")
	})

	t.Run("kicked_captain_cannot_be_assigned", func(t *testing.T) {
		r := newRoster(t)
		_, err := r.service.CreateTeam(r.ctx, r.owner, r.bingo.ID, "Alpha")
		require.NoError(t, err)
		require.NoError(t, r.service.KickParticipant(r.ctx, r.owner, r.bingo.ID, r.participant.Username, false))

		_, err = r.service.UpdateTeam(r.ctx, r.owner, r.bingo.ID, "Alpha", bingo.UpdateTeamInput{
			Name:            pointer.To("Omega"),
			CaptainUsername: pointer.To(r.participant.Username),
		})
		requireAppError(t, err, apperr.CodeNotFound, "participant.not_found")

		// The rename in the same request is rolled back with it.
		teams, err := r.service.ListTeams(r.ctx, r.owner, r.bingo.ID)
		require.NoError(t, err)
		require.Len(t, teams, 1)
		assert.Equal(t, "Alpha", teams[0].Name)
		assert.Nil(t, teams[0].CaptainID)
	})

	t.Run("unknown_team", func(t *testing.T) {
		r := newRoster(t)

		_, err := r.service.UpdateTeam(r.ctx, r.owner, r.bingo.ID, "Ghosts", bingo.UpdateTeamInput{Name: pointer.To("Spirits")})
		requireAppError(t, err, apperr.CodeNotFound, "team.not_found")
	})
}

func TestService_DeleteTeam(t *testing.T) {
	r := newRoster(t)
	r.assignTeam(t, r.owner, r.bingo, "Alpha", r.participant)

	err := r.service.DeleteTeam(r.ctx, r.participant, r.bingo.ID, "Alpha")
	requireAppError(t, err, apperr.CodeForbidden, "team.forbidden")

	require.NoError(t, r.service.DeleteTeam(r.ctx, r.organizer, r.bingo.ID, "alpha"))

	teams, err := r.service.ListTeams(r.ctx, r.owner, r.bingo.ID)
	require.NoError(t, err)
	assert.Empty(t, teams)
	assert.Nil(t, r.participantNamed(t, "Woox").TeamID)

	err = r.service.DeleteTeam(r.ctx, r.owner, r.bingo.ID, "Alpha")
	requireAppError(t, err, apperr.CodeNotFound, "team.not_found")

	// A soft-deleted team frees its name.
	_, err = r.service.CreateTeam(r.ctx, r.owner, r.bingo.ID, "Alpha")
	require.NoError(t, err)
	assert.Len(t, r.store.RawTeams(r.bingo.ID), 2)

	entry, ok := r.activities.Last()
	require.True(t, ok)
	assert.Equal(t, activity.KeyTeamCreated, entry.Key)
}
