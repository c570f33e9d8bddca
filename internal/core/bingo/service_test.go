// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/activity"
	"github.com/RuneBingo/RuneBingo-sub000/internal/core/bingo"
	"github.com/RuneBingo/RuneBingo-sub000/internal/core/bingo/bingotest"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/sec"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/clock"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/pointer"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/uuid"
)

// # Fixtures

var epoch = time.Date(2026, time.June, 1, 9, 30, 0, 0, time.UTC)

// day returns the calendar date offset days from the fixture's today.
func day(offset int) time.Time {
	return clock.Date(epoch).AddDate(0, 0, offset)
}

type fixture struct {
	ctx         context.Context
	clock       *clock.FixedClock
	users       *bingotest.Users
	store       *bingotest.MemoryStore
	catalog     *bingotest.Catalog
	activities  *bingotest.Activities
	transitions *bingotest.Transitions
	service     *bingo.Service
	faker       *gofakeit.Faker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := bingotest.NewUsers()
	f := &fixture{
		ctx:         context.Background(),
		clock:       clock.Fixed(epoch),
		users:       users,
		store:       bingotest.NewMemoryStore(users),
		catalog:     bingotest.NewCatalog(6731, 4151, 11832),
		activities:  &bingotest.Activities{},
		transitions: &bingotest.Transitions{},
		faker:       gofakeit.New(42),
	}
	f.service = f.serviceOn(f.store)
	return f
}

// serviceOn builds a service sharing the fixture's collaborators over store.
func (f *fixture) serviceOn(store bingo.Store) *bingo.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return bingo.NewService(store, f.users, f.catalog, f.activities, f.clock, logger).WithMetrics(f.transitions)
}

func (f *fixture) user(name string) bingo.Actor {
	id := uuid.New()
	f.users.Add(id, name)
	return bingo.Actor{UserID: id, Username: name, GlobalRole: sec.RoleUser}
}

func (f *fixture) moderator(name string) bingo.Actor {
	actor := f.user(name)
	actor.GlobalRole = sec.RoleModerator
	return actor
}

func (f *fixture) createBingo(t *testing.T, owner bingo.Actor, width, height int) *bingo.Bingo {
	t.Helper()
	b, err := f.service.CreateBingo(f.ctx, owner, bingo.CreateInput{
		Language:      "en",
		Title:         "Bingo " + f.faker.Word(),
		Description:   f.faker.Word(),
		Width:         width,
		Height:        height,
		FullLineValue: 10,
		StartDate:     day(7),
		EndDate:       day(14),
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) enroll(t *testing.T, by bingo.Actor, b *bingo.Bingo, who bingo.Actor, role bingo.Role) {
	t.Helper()
	_, err := f.service.AddParticipant(f.ctx, by, b.ID, bingo.AddParticipantInput{Username: who.Username, Role: role})
	require.NoError(t, err)
}

func (f *fixture) fillGrid(t *testing.T, by bingo.Actor, b *bingo.Bingo) {
	t.Helper()
	for y := 1; y <= b.Height; y++ {
		for x := 1; x <= b.Width; x++ {
			f.putTile(t, by, b, x, y, f.faker.Word())
		}
	}
}

func (f *fixture) putTile(t *testing.T, by bingo.Actor, b *bingo.Bingo, x, y int, title string) *bingo.Tile {
	t.Helper()
	tile, _, err := f.service.CreateOrEditTile(f.ctx, by, b.ID, x, y, tileInput(title))
	require.NoError(t, err)
	return tile
}

// assignTeam creates team if needed and places every actor in it.
func (f *fixture) assignTeam(t *testing.T, by bingo.Actor, b *bingo.Bingo, team string, actors ...bingo.Actor) {
	t.Helper()
	if _, err := f.service.CreateTeam(f.ctx, by, b.ID, team); err != nil {
		require.True(t, apperr.HasCode(err, apperr.CodeConflict), err)
	}
	for _, actor := range actors {
		_, err := f.service.UpdateParticipant(f.ctx, by, b.ID, actor.Username, bingo.UpdateParticipantInput{TeamName: pointer.To(team)})
		require.NoError(t, err)
	}
}

// startable returns a filled 2x2 bingo whose owner is in a team.
func (f *fixture) startable(t *testing.T, owner bingo.Actor) *bingo.Bingo {
	t.Helper()
	b := f.createBingo(t, owner, 2, 2)
	f.fillGrid(t, owner, b)
	f.assignTeam(t, owner, b, "Alpha", owner)
	return b
}

func tileInput(title string) bingo.TileInput {
	mode := bingo.CompletionAll
	return bingo.TileInput{
		Title:          pointer.To(title),
		Value:          pointer.To(5),
		Free:           pointer.To(false),
		CompletionMode: &mode,
	}
}

// requireAppError asserts err is an AppError with code and key.
func requireAppError(t *testing.T, err error, code, key string) *apperr.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, key, appErr.Key)
	return appErr
}

// # Create & Read

func TestService_CreateBingo(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Zezima")

	input := bingo.CreateInput{
		Language:  "en-us",
		Title:     "Summer Bingo 2026",
		Width:     3,
		Height:    3,
		StartDate: day(1),
		EndDate:   day(8),
	}

	first, err := f.service.CreateBingo(f.ctx, owner, input)
	require.NoError(t, err)
	assert.Equal(t, "summer-bingo-2026", first.Slug)
	assert.Equal(t, "en-US", first.Language)
	assert.Equal(t, bingo.StatusPending, first.Status())
	require.NotNil(t, first.CreatedByID)
	assert.Equal(t, owner.UserID, *first.CreatedByID)

	second, err := f.service.CreateBingo(f.ctx, owner, input)
	require.NoError(t, err)
	assert.Equal(t, "summer-bingo-2026-2", second.Slug)

	participants, err := f.service.ListParticipants(f.ctx, owner, first.Slug)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, bingo.RoleOwner, participants[0].Role)
	assert.Equal(t, "Zezima", participants[0].Username)

	assert.Equal(t, []string{activity.KeyBingoCreated, activity.KeyBingoCreated}, f.activities.Keys())
}

func TestService_CreateBingo_Rejections(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Zezima")

	valid := bingo.CreateInput{Language: "en", Title: "Valid", Width: 3, Height: 3, StartDate: day(1), EndDate: day(8)}

	tests := []struct {
		name   string
		actor  bingo.Actor
		mutate func(*bingo.CreateInput)
		code   string
		key    string
	}{
		{"anonymous", bingo.Actor{}, func(*bingo.CreateInput) {}, apperr.CodeUnauthorized, "auth.required"},
		{"zero_width", owner, func(in *bingo.CreateInput) { in.Width = 0 }, apperr.CodeValidation, "validation.failed"},
		{"oversized_height", owner, func(in *bingo.CreateInput) { in.Height = bingo.MaxGridSize + 1 }, apperr.CodeValidation, "validation.failed"},
		{"bad_language", owner, func(in *bingo.CreateInput) { in.Language = "not a tag!" }, apperr.CodeValidation, "validation.failed"},
		{"end_before_start", owner, func(in *bingo.CreateInput) { in.EndDate = day(1) }, apperr.CodeBadRequest, "bingo.dates.start_before_end"},
		{"registration_after_start", owner, func(in *bingo.CreateInput) { in.MaxRegistrationDate = pointer.To(day(2)) }, apperr.CodeBadRequest, "bingo.dates.registration_before_start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			_, err := f.service.CreateBingo(f.ctx, tt.actor, input)
			requireAppError(t, err, tt.code, tt.key)
		})
	}
}

func TestService_Visibility(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Zezima")
	outsider := f.user("Woox")
	mod := f.moderator("Mod Ash")

	b := f.createBingo(t, owner, 3, 3)
	_, err := f.service.UpdateBingo(f.ctx, owner, b.ID, bingo.UpdateInput{Private: pointer.To(true)})
	require.NoError(t, err)

	_, err = f.service.GetBingo(f.ctx, outsider, b.Slug)
	requireAppError(t, err, apperr.CodeNotFound, "bingo.not_found")

	_, err = f.service.GetBingo(f.ctx, bingo.Actor{}, b.ID)
	requireAppError(t, err, apperr.CodeNotFound, "bingo.not_found")

	got, err := f.service.GetBingo(f.ctx, mod, b.Slug)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	listed, total, err := f.service.ListBingos(f.ctx, outsider, bingo.Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, listed)

	_, total, err = f.service.ListBingos(f.ctx, owner, bingo.Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

// # Update

func TestService_UpdateBingo(t *testing.T) {
	t.Run("unchanged_fields_are_a_no_op", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.createBingo(t, owner, 3, 3)
		f.activities.Reset()

		got, err := f.service.UpdateBingo(f.ctx, owner, b.ID, bingo.UpdateInput{Title: pointer.To(b.Title), Width: pointer.To(3)})
		require.NoError(t, err)
		assert.Equal(t, b.UpdatedAt, got.UpdatedAt)
		assert.Empty(t, f.activities.Keys())
	})

	t.Run("participant_is_forbidden", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		player := f.user("Lynx Titan")
		b := f.createBingo(t, owner, 3, 3)
		f.enroll(t, owner, b, player, bingo.RoleParticipant)

		_, err := f.service.UpdateBingo(f.ctx, player, b.ID, bingo.UpdateInput{Title: pointer.To("Renamed")})
		requireAppError(t, err, apperr.CodeForbidden, "bingo.update.forbidden")
	})

	t.Run("locked_field_while_ongoing", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.startable(t, owner)
		_, err := f.service.StartBingo(f.ctx, owner, b.ID, nil)
		require.NoError(t, err)

		_, err = f.service.UpdateBingo(f.ctx, owner, b.ID, bingo.UpdateInput{Width: pointer.To(3)})
		appErr := requireAppError(t, err, apperr.CodeBadRequest, "bingo.update.field_locked")
		assert.Equal(t, "width", appErr.Params["field"])
		assert.Equal(t, "ongoing", appErr.Params["status"])

		updated, err := f.service.UpdateBingo(f.ctx, owner, b.ID, bingo.UpdateInput{Title: pointer.To("Still editable")})
		require.NoError(t, err)
		assert.Equal(t, "Still editable", updated.Title)
	})

	t.Run("moderator_bypasses_status", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		mod := f.moderator("Mod Ash")
		b := f.startable(t, owner)
		_, err := f.service.StartBingo(f.ctx, owner, b.ID, nil)
		require.NoError(t, err)

		updated, err := f.service.UpdateBingo(f.ctx, mod, b.ID, bingo.UpdateInput{Width: pointer.To(3)})
		require.NoError(t, err)
		assert.Equal(t, 3, updated.Width)
	})

	t.Run("shrinking_drops_tiles_outside", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.createBingo(t, owner, 3, 3)
		f.fillGrid(t, owner, b)

		_, err := f.service.UpdateBingo(f.ctx, owner, b.ID, bingo.UpdateInput{Width: pointer.To(2)})
		require.NoError(t, err)

		tiles, err := f.service.ListTiles(f.ctx, owner, b.ID)
		require.NoError(t, err)
		assert.Len(t, tiles, 6)
		for _, tile := range tiles {
			assert.LessOrEqual(t, tile.X, 2)
		}

		entry, ok := f.activities.Last()
		require.True(t, ok)
		assert.Equal(t, activity.KeyBingoUpdated, entry.Key)
		assert.Equal(t, []string{"width"}, entry.Params["fields"])
	})

	t.Run("merged_dates_are_checked", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.createBingo(t, owner, 3, 3)

		_, err := f.service.UpdateBingo(f.ctx, owner, b.ID, bingo.UpdateInput{StartDate: pointer.To(day(20))})
		requireAppError(t, err, apperr.CodeBadRequest, "bingo.dates.start_before_end")
	})
}

// # Lifecycle

func TestService_StartBingo(t *testing.T) {
	t.Run("incomplete_grid", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.createBingo(t, owner, 2, 2)
		f.putTile(t, owner, b, 1, 1, "Whip")
		f.putTile(t, owner, b, 2, 1, "Ring")
		f.putTile(t, owner, b, 1, 2, "Coins")
		f.assignTeam(t, owner, b, "Alpha", owner)

		_, err := f.service.StartBingo(f.ctx, owner, b.ID, nil)
		appErr := requireAppError(t, err, apperr.CodeBadRequest, "bingo.start.incomplete_grid")
		assert.Equal(t, "4", appErr.Params["expected"])
		assert.Equal(t, "3", appErr.Params["actual"])
	})

	t.Run("participants_without_team", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		player := f.user("Lynx Titan")
		b := f.startable(t, owner)
		f.enroll(t, owner, b, player, bingo.RoleParticipant)

		_, err := f.service.StartBingo(f.ctx, owner, b.ID, nil)
		appErr := requireAppError(t, err, apperr.CodeBadRequest, "bingo.start.participants_without_team")
		assert.Equal(t, "1", appErr.Params["count"])
	})

	t.Run("end_date_in_past", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.startable(t, owner)

		_, err := f.service.StartBingo(f.ctx, owner, b.ID, pointer.To(day(-1)))
		requireAppError(t, err, apperr.CodeBadRequest, "bingo.start.end_date_in_past")
	})

	t.Run("participant_is_forbidden", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		player := f.user("Lynx Titan")
		b := f.startable(t, owner)
		f.enroll(t, owner, b, player, bingo.RoleParticipant)

		_, err := f.service.StartBingo(f.ctx, player, b.ID, nil)
		requireAppError(t, err, apperr.CodeForbidden, "bingo.start.forbidden")
	})

	t.Run("starts_today", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.startable(t, owner)

		started, err := f.service.StartBingo(f.ctx, owner, b.ID, pointer.To(day(30)))
		require.NoError(t, err)
		assert.Equal(t, bingo.StatusOngoing, started.Status())
		assert.True(t, day(0).Equal(started.StartDate))
		assert.True(t, day(30).Equal(started.EndDate))
		require.NotNil(t, started.Started)
		assert.Equal(t, owner.UserID, *started.Started.ByID)
		assert.Equal(t, 1, f.transitions.Count("start"))

		entry, ok := f.activities.Last()
		require.True(t, ok)
		assert.Equal(t, activity.KeyBingoStarted, entry.Key)

		_, err = f.service.StartBingo(f.ctx, owner, b.ID, nil)
		requireAppError(t, err, apperr.CodeBadRequest, "bingo.start.not_pending")
	})

	t.Run("status_is_checked_before_policy", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		player := f.user("Lynx Titan")
		b := f.startable(t, owner)
		f.enroll(t, owner, b, player, bingo.RoleParticipant)
		f.assignTeam(t, owner, b, "Alpha", player)
		_, err := f.service.StartBingo(f.ctx, owner, b.ID, nil)
		require.NoError(t, err)

		_, err = f.service.StartBingo(f.ctx, player, b.ID, nil)
		requireAppError(t, err, apperr.CodeBadRequest, "bingo.start.not_pending")
	})
}

func TestService_EndBingo(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Zezima")
	b := f.startable(t, owner)

	_, err := f.service.EndBingo(f.ctx, owner, b.ID)
	requireAppError(t, err, apperr.CodeBadRequest, "bingo.end.not_ongoing")

	_, err = f.service.StartBingo(f.ctx, owner, b.ID, nil)
	require.NoError(t, err)

	f.clock.Advance(72 * time.Hour)
	ended, err := f.service.EndBingo(f.ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bingo.StatusCompleted, ended.Status())
	assert.True(t, day(3).Equal(ended.EndDate))
	assert.Equal(t, 1, f.transitions.Count("end"))
}

func TestService_SameDaySchedule(t *testing.T) {
	t.Run("ends_the_day_it_started", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.startable(t, owner)

		_, err := f.service.StartBingo(f.ctx, owner, b.ID, nil)
		require.NoError(t, err)

		ended, err := f.service.EndBingo(f.ctx, owner, b.ID)
		require.NoError(t, err)
		assert.Equal(t, bingo.StatusCompleted, ended.Status())
		assert.True(t, day(0).Equal(ended.StartDate))
		assert.True(t, day(0).Equal(ended.EndDate))
	})

	t.Run("end_override_of_today", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.startable(t, owner)

		started, err := f.service.StartBingo(f.ctx, owner, b.ID, pointer.To(day(0)))
		require.NoError(t, err)
		assert.True(t, started.StartDate.Equal(started.EndDate))
	})
}

func TestService_CancelBingo(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Zezima")
	player := f.user("Lynx Titan")
	b := f.createBingo(t, owner, 2, 2)
	f.enroll(t, owner, b, player, bingo.RoleParticipant)

	_, err := f.service.CancelBingo(f.ctx, player, b.ID)
	requireAppError(t, err, apperr.CodeForbidden, "bingo.cancel.forbidden")

	canceled, err := f.service.CancelBingo(f.ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bingo.StatusCanceled, canceled.Status())

	_, err = f.service.CancelBingo(f.ctx, owner, b.ID)
	requireAppError(t, err, apperr.CodeBadRequest, "bingo.cancel.already_canceled")

	// The status precondition wins over the missing role.
	_, err = f.service.CancelBingo(f.ctx, player, b.ID)
	requireAppError(t, err, apperr.CodeBadRequest, "bingo.cancel.already_canceled")
}

func TestService_CancelBingo_Completed(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Zezima")
	b := f.startable(t, owner)
	_, err := f.service.StartBingo(f.ctx, owner, b.ID, nil)
	require.NoError(t, err)
	_, err = f.service.EndBingo(f.ctx, owner, b.ID)
	require.NoError(t, err)

	_, err = f.service.CancelBingo(f.ctx, f.moderator("Mod Ash"), b.ID)
	requireAppError(t, err, apperr.CodeBadRequest, "bingo.cancel.already_completed")
}

func TestService_ResetBingo(t *testing.T) {
	setup := func(t *testing.T) (*fixture, bingo.Actor, bingo.Actor, *bingo.Bingo) {
		f := newFixture(t)
		owner := f.user("Zezima")
		player := f.user("Lynx Titan")
		b := f.startable(t, owner)
		f.enroll(t, owner, b, player, bingo.RoleParticipant)
		f.assignTeam(t, owner, b, "Alpha", player)
		f.assignTeam(t, owner, b, "Bravo")
		_, err := f.service.UpdateTeam(f.ctx, owner, b.ID, "bravo", bingo.UpdateTeamInput{CaptainUsername: pointer.To(player.Username)})
		require.NoError(t, err)

		_, err = f.service.StartBingo(f.ctx, owner, b.ID, nil)
		require.NoError(t, err)
		f.store.SetPoints(b.ID, 50)
		_, err = f.service.CancelBingo(f.ctx, owner, b.ID)
		require.NoError(t, err)
		return f, owner, player, b
	}

	t.Run("requires_canceled", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.createBingo(t, owner, 2, 2)

		_, err := f.service.ResetBingo(f.ctx, owner, b.ID, bingo.ResetInput{StartDate: day(1), EndDate: day(2)})
		requireAppError(t, err, apperr.CodeBadRequest, "bingo.reset.not_canceled")
	})

	t.Run("start_in_past", func(t *testing.T) {
		f, owner, _, b := setup(t)

		_, err := f.service.ResetBingo(f.ctx, owner, b.ID, bingo.ResetInput{StartDate: day(-1), EndDate: day(2)})
		requireAppError(t, err, apperr.CodeBadRequest, "bingo.reset.start_in_past")
	})

	t.Run("registration_may_close_on_start", func(t *testing.T) {
		f, owner, _, b := setup(t)

		reset, err := f.service.ResetBingo(f.ctx, owner, b.ID, bingo.ResetInput{
			StartDate:           day(3),
			EndDate:             day(9),
			MaxRegistrationDate: pointer.To(day(3)),
		})
		require.NoError(t, err)
		require.NotNil(t, reset.MaxRegistrationDate)
		assert.True(t, day(3).Equal(*reset.MaxRegistrationDate))
	})

	t.Run("registration_after_start", func(t *testing.T) {
		f, owner, _, b := setup(t)

		_, err := f.service.ResetBingo(f.ctx, owner, b.ID, bingo.ResetInput{
			StartDate:           day(3),
			EndDate:             day(9),
			MaxRegistrationDate: pointer.To(day(4)),
		})
		requireAppError(t, err, apperr.CodeBadRequest, "bingo.reset.registration_after_start")
	})

	t.Run("end_not_after_start", func(t *testing.T) {
		f, owner, _, b := setup(t)

		_, err := f.service.ResetBingo(f.ctx, owner, b.ID, bingo.ResetInput{StartDate: day(3), EndDate: day(3)})
		requireAppError(t, err, apperr.CodeBadRequest, "bingo.dates.start_before_end")
	})

	t.Run("keeps_everything_but_points", func(t *testing.T) {
		f, owner, _, b := setup(t)

		reset, err := f.service.ResetBingo(f.ctx, owner, b.ID, bingo.ResetInput{StartDate: day(2), EndDate: day(9)})
		require.NoError(t, err)
		assert.Equal(t, bingo.StatusPending, reset.Status())
		assert.Nil(t, reset.Started)
		assert.Nil(t, reset.Canceled)
		require.NotNil(t, reset.Reset)
		assert.Nil(t, reset.MaxRegistrationDate)

		tiles, err := f.service.ListTiles(f.ctx, owner, b.ID)
		require.NoError(t, err)
		assert.Len(t, tiles, 4)

		participants, err := f.service.ListParticipants(f.ctx, owner, b.ID)
		require.NoError(t, err)
		assert.Len(t, participants, 2)
		for _, participant := range participants {
			assert.Zero(t, participant.Points)
		}

		teams, err := f.service.ListTeams(f.ctx, owner, b.ID)
		require.NoError(t, err)
		assert.Len(t, teams, 2)
		for _, team := range teams {
			assert.Zero(t, team.Points)
		}
		assert.Equal(t, 1, f.transitions.Count("reset"))
	})

	t.Run("cascades", func(t *testing.T) {
		f, owner, player, b := setup(t)

		_, err := f.service.ResetBingo(f.ctx, owner, b.ID, bingo.ResetInput{
			StartDate:          day(2),
			EndDate:            day(9),
			DeleteTiles:        true,
			DeleteParticipants: true,
		})
		require.NoError(t, err)

		tiles, err := f.service.ListTiles(f.ctx, owner, b.ID)
		require.NoError(t, err)
		assert.Empty(t, tiles)

		participants, err := f.service.ListParticipants(f.ctx, owner, b.ID)
		require.NoError(t, err)
		require.Len(t, participants, 1)
		assert.Equal(t, owner.UserID, participants[0].UserID)

		teams, err := f.service.ListTeams(f.ctx, owner, b.ID)
		require.NoError(t, err)
		for _, team := range teams {
			if team.CaptainID != nil {
				assert.NotEqual(t, player.UserID, *team.CaptainID)
			}
		}
	})

	t.Run("delete_teams", func(t *testing.T) {
		f, owner, _, b := setup(t)

		_, err := f.service.ResetBingo(f.ctx, owner, b.ID, bingo.ResetInput{StartDate: day(2), EndDate: day(9), DeleteTeams: true})
		require.NoError(t, err)

		teams, err := f.service.ListTeams(f.ctx, owner, b.ID)
		require.NoError(t, err)
		assert.Empty(t, teams)
		assert.Len(t, f.store.RawTeams(b.ID), 2)

		participants, err := f.service.ListParticipants(f.ctx, owner, b.ID)
		require.NoError(t, err)
		for _, participant := range participants {
			assert.Nil(t, participant.TeamID)
		}
	})

	t.Run("organizer_is_forbidden", func(t *testing.T) {
		f, owner, player, b := setup(t)
		_, err := f.service.UpdateParticipant(f.ctx, owner, b.ID, player.Username, bingo.UpdateParticipantInput{Role: pointer.To(bingo.RoleOrganizer)})
		require.NoError(t, err)

		_, err = f.service.ResetBingo(f.ctx, player, b.ID, bingo.ResetInput{StartDate: day(2), EndDate: day(9)})
		requireAppError(t, err, apperr.CodeForbidden, "bingo.reset.forbidden")
	})
}

func TestService_ResetBingo_ClearsStampsFromAnyOrigin(t *testing.T) {
	tests := []struct {
		name   string
		cancel func(t *testing.T, f *fixture, owner bingo.Actor, b *bingo.Bingo)
	}{
		{
			name: "canceled_while_pending",
			cancel: func(t *testing.T, f *fixture, owner bingo.Actor, b *bingo.Bingo) {
				_, err := f.service.CancelBingo(f.ctx, owner, b.ID)
				require.NoError(t, err)
			},
		},
		{
			name: "canceled_while_ongoing",
			cancel: func(t *testing.T, f *fixture, owner bingo.Actor, b *bingo.Bingo) {
				_, err := f.service.StartBingo(f.ctx, owner, b.ID, nil)
				require.NoError(t, err)
				_, err = f.service.CancelBingo(f.ctx, owner, b.ID)
				require.NoError(t, err)
			},
		},
		{
			name: "canceled_again_after_a_reset",
			cancel: func(t *testing.T, f *fixture, owner bingo.Actor, b *bingo.Bingo) {
				_, err := f.service.StartBingo(f.ctx, owner, b.ID, nil)
				require.NoError(t, err)
				_, err = f.service.CancelBingo(f.ctx, owner, b.ID)
				require.NoError(t, err)
				_, err = f.service.ResetBingo(f.ctx, owner, b.ID, bingo.ResetInput{StartDate: day(0), EndDate: day(5)})
				require.NoError(t, err)

				f.clock.Advance(24 * time.Hour)
				_, err = f.service.StartBingo(f.ctx, owner, b.ID, nil)
				require.NoError(t, err)
				_, err = f.service.CancelBingo(f.ctx, owner, b.ID)
				require.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			owner := f.user("Zezima")
			b := f.startable(t, owner)
			tt.cancel(t, f, owner, b)

			reset, err := f.service.ResetBingo(f.ctx, owner, b.ID, bingo.ResetInput{StartDate: day(4), EndDate: day(9)})
			require.NoError(t, err)
			assert.Equal(t, bingo.StatusPending, reset.Status())
			assert.Nil(t, reset.Started)
			assert.Nil(t, reset.Ended)
			assert.Nil(t, reset.Canceled)
			require.NotNil(t, reset.Reset)
			assert.True(t, f.clock.Now().Equal(reset.Reset.At))

			stored := f.store.RawBingo(b.ID)
			require.NotNil(t, stored)
			assert.Nil(t, stored.Started)
			assert.Nil(t, stored.Ended)
			assert.Nil(t, stored.Canceled)
		})
	}
}

func TestService_DeleteBingo(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Zezima")
	organizer := f.user("Lynx Titan")
	b := f.createBingo(t, owner, 2, 2)
	f.enroll(t, owner, b, organizer, bingo.RoleOrganizer)
	f.fillGrid(t, owner, b)

	err := f.service.DeleteBingo(f.ctx, organizer, b.ID)
	requireAppError(t, err, apperr.CodeForbidden, "bingo.delete.forbidden")

	require.NoError(t, f.service.DeleteBingo(f.ctx, owner, b.ID))

	_, err = f.service.GetBingo(f.ctx, owner, b.ID)
	requireAppError(t, err, apperr.CodeNotFound, "bingo.not_found")

	raw := f.store.RawBingo(b.ID)
	require.NotNil(t, raw)
	assert.NotNil(t, raw.DeletedAt)

	entry, ok := f.activities.Last()
	require.True(t, ok)
	assert.Equal(t, activity.KeyBingoDeleted, entry.Key)
}

func TestService_ListActivities(t *testing.T) {
	f := newFixture(t)
	owner := f.user("Zezima")
	player := f.user("Lynx Titan")
	b := f.createBingo(t, owner, 2, 2)
	f.enroll(t, owner, b, player, bingo.RoleParticipant)

	views, total, err := f.service.ListActivities(f.ctx, owner, b.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, views, 2)
	assert.Equal(t, activity.KeyParticipantAdded, views[0].Key)

	_, _, err = f.service.ListActivities(f.ctx, player, b.ID, 10, 0)
	requireAppError(t, err, apperr.CodeForbidden, "bingo.activities.forbidden")
}

// # Atomicity

var errDiskFull = errors.New("disk full")

// faultyStore fails one write inside every transaction.
type faultyStore struct {
	*bingotest.MemoryStore
	fail string
}

func (store *faultyStore) Tx(ctx context.Context, fn func(tx bingo.Store) error) error {
	return store.MemoryStore.Tx(ctx, func(tx bingo.Store) error {
		return fn(&faultyTx{Store: tx, fail: store.fail})
	})
}

type faultyTx struct {
	bingo.Store
	fail  string
	moves int
}

func (tx *faultyTx) MoveTile(ctx context.Context, tileID string, x, y int) error {
	tx.moves++
	if tx.fail == "MoveTile" && tx.moves == 2 {
		return errDiskFull
	}
	return tx.Store.MoveTile(ctx, tileID, x, y)
}

func (tx *faultyTx) ResetParticipantPoints(ctx context.Context, bingoID string) error {
	if tx.fail == "ResetParticipantPoints" {
		return errDiskFull
	}
	return tx.Store.ResetParticipantPoints(ctx, bingoID)
}

func TestService_FailedTransactionLeavesNoTrace(t *testing.T) {
	t.Run("swap", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.createBingo(t, owner, 2, 2)
		first := f.putTile(t, owner, b, 1, 1, "First")
		second := f.putTile(t, owner, b, 2, 2, "Second")
		f.activities.Reset()

		faulty := f.serviceOn(&faultyStore{MemoryStore: f.store, fail: "MoveTile"})
		_, err := faulty.MoveTile(f.ctx, owner, b.ID, 1, 1, 2, 2)
		require.ErrorIs(t, err, errDiskFull)

		got, err := f.service.GetTile(f.ctx, owner, b.ID, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		got, err = f.service.GetTile(f.ctx, owner, b.ID, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Empty(t, f.activities.Keys())
	})

	t.Run("reset", func(t *testing.T) {
		f := newFixture(t)
		owner := f.user("Zezima")
		b := f.createBingo(t, owner, 2, 2)
		f.fillGrid(t, owner, b)
		_, err := f.service.CancelBingo(f.ctx, owner, b.ID)
		require.NoError(t, err)

		faulty := f.serviceOn(&faultyStore{MemoryStore: f.store, fail: "ResetParticipantPoints"})
		_, err = faulty.ResetBingo(f.ctx, owner, b.ID, bingo.ResetInput{StartDate: day(1), EndDate: day(5), DeleteTiles: true})
		require.ErrorIs(t, err, errDiskFull)

		got, err := f.service.GetBingo(f.ctx, owner, b.ID)
		require.NoError(t, err)
		assert.Equal(t, bingo.StatusCanceled, got.Status())

		tiles, err := f.service.ListTiles(f.ctx, owner, b.ID)
		require.NoError(t, err)
		assert.Len(t, tiles, 4)
		assert.Zero(t, f.transitions.Count("reset"))
	})
}
