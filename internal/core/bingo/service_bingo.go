// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/activity"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/validate"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/slice"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/slug"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/uuid"
)

// Grid and text limits.
const (
	MaxGridSize       = 10
	maxTitleLen       = 100
	maxDescriptionLen = 2000
	maxSlugAttempts   = 50
)

// # Inputs

// CreateInput carries the attributes of a new bingo.
type CreateInput struct {
	Language            string
	Title               string
	Description         string
	Private             bool
	Width               int
	Height              int
	FullLineValue       int
	StartDate           time.Time
	EndDate             time.Time
	MaxRegistrationDate *time.Time
}

// UpdateInput is a partial field diff; nil fields are left untouched.
type UpdateInput struct {
	Language            *string
	Title               *string
	Description         *string
	Private             *bool
	Width               *int
	Height              *int
	FullLineValue       *int
	StartDate           *time.Time
	EndDate             *time.Time
	MaxRegistrationDate *time.Time
}

// ResetInput carries the new schedule and the optional cascades of a reset.
type ResetInput struct {
	StartDate           time.Time
	EndDate             time.Time
	MaxRegistrationDate *time.Time
	DeleteTiles         bool
	DeleteTeams         bool
	DeleteParticipants  bool
}

// # Queries

/*
GetBingo retrieves a bingo by its UUID or slug.

Returns:
  - *Bingo: The bingo, if visible to actor
  - error: NotFound when absent or private to others
*/
func (service *Service) GetBingo(ctx context.Context, actor Actor, ref string) (*Bingo, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}
	return s.bingo, nil
}

/*
ListBingos returns the bingos visible to actor.

Returns:
  - []*Bingo: One page of bingos
  - int: Total matching count
*/
func (service *Service) ListBingos(ctx context.Context, actor Actor, filter Filter, limit, offset int) ([]*Bingo, int, error) {
	return service.store.ListBingos(ctx, actor, filter, limit, offset)
}

/*
ListActivities returns the activity log of a bingo, newest first.

Returns:
  - []*activity.View: Entries with actor usernames resolved
  - error: Forbidden unless moderator or Organizer
*/
func (service *Service) ListActivities(ctx context.Context, actor Actor, ref string, limit, offset int) ([]*activity.View, int, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, 0, err
	}
	if !s.policy().CanViewActivities() {
		return nil, 0, apperr.Forbidden("bingo.activities.forbidden")
	}
	return service.activities.List(ctx, s.bingo.ID, limit, offset)
}

// # Lifecycle

/*
CreateBingo creates a pending bingo and enrolls the creator as its Owner.

Returns:
  - *Bingo: The created bingo
  - error: Validation failures or BadRequest on date ordering
*/
func (service *Service) CreateBingo(ctx context.Context, actor Actor, input CreateInput) (*Bingo, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(string(FieldTitle), input.Title).MaxLen(string(FieldTitle), input.Title, maxTitleLen)
	validator.MaxLen(string(FieldDescription), input.Description, maxDescriptionLen)
	validateLanguage(validator, input.Language)
	validator.Range(string(FieldWidth), input.Width, 1, MaxGridSize)
	validator.Range(string(FieldHeight), input.Height, 1, MaxGridSize)
	validator.Min(string(FieldFullLineValue), input.FullLineValue, 0)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := checkSchedule(input.StartDate, input.EndDate, input.MaxRegistrationDate); err != nil {
		return nil, err
	}

	slugValue, err := service.uniqueSlug(ctx, input.Title)
	if err != nil {
		return nil, err
	}

	now := service.clock.Now()
	creatorID := actor.UserID
	bingo := &Bingo{
		ID:                  uuid.New(),
		Slug:                slugValue,
		Language:            canonicalLanguage(input.Language),
		Title:               input.Title,
		Description:         input.Description,
		Private:             input.Private,
		Width:               input.Width,
		Height:              input.Height,
		FullLineValue:       input.FullLineValue,
		StartDate:           input.StartDate,
		EndDate:             input.EndDate,
		MaxRegistrationDate: input.MaxRegistrationDate,
		CreatedByID:         &creatorID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	s := &scope{actor: actor, bingo: bingo}
	err = service.store.Tx(ctx, func(tx Store) error {
		if err := tx.CreateBingo(ctx, bingo); err != nil {
			return conflictAs(err, "bingo.slug_taken")
		}

		if _, err := addParticipant(ctx, tx, bingo.ID, actor.UserID, RoleOwner, nil, now); err != nil {
			return err
		}

		s.emit(now, activity.KeyBingoCreated, map[string]any{"title": bingo.Title})
		return nil
	})
	if err != nil {
		return nil, err
	}
	service.publish(ctx, s.events)

	service.logger.Info("bingo_created",
		slog.String("bingo_id", bingo.ID),
		slog.String("user_id", actor.UserID),
	)

	return bingo, nil
}

/*
UpdateBingo applies a partial field diff.

Only fields whose value differs from the current one are considered. An empty
diff returns the bingo unchanged without authorization or activity.

Returns:
  - *Bingo: The updated bingo
  - error: NotFound, BadRequest (locked field or dates), Forbidden
*/
func (service *Service) UpdateBingo(ctx context.Context, actor Actor, ref string, input UpdateInput) (*Bingo, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	if len(input.changedFields(s.bingo)) == 0 {
		return s.bingo, nil
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	var changed []Field
	guard := func(s *scope) error {
		changed = input.changedFields(s.bingo)
		if len(changed) == 0 {
			return nil
		}
		if field, locked := s.policy().LockedField(changed); locked {
			return apperr.BadRequest("bingo.update.field_locked").
				With("field", string(field)).
				With("status", string(s.bingo.Status()))
		}
		if !s.policy().CanUpdate(changed) {
			return apperr.Forbidden("bingo.update.forbidden")
		}
		return nil
	}

	if err := guard(s); err != nil {
		return nil, err
	}

	err = service.commit(ctx, s, guard, func(tx Store, s *scope) error {
		if len(changed) == 0 {
			return nil
		}

		merged := *s.bingo
		input.applyTo(&merged)

		if err := checkSchedule(merged.StartDate, merged.EndDate, merged.MaxRegistrationDate); err != nil {
			return err
		}

		if merged.Width < s.bingo.Width || merged.Height < s.bingo.Height {
			if err := tx.DeleteTilesOutside(ctx, merged.ID, merged.Width, merged.Height); err != nil {
				return err
			}
		}

		now := service.clock.Now()
		merged.UpdatedAt = now
		if err := tx.UpdateBingo(ctx, &merged); err != nil {
			return err
		}
		s.bingo = &merged

		fields := slice.Map(changed, func(field Field) string { return string(field) })
		s.emit(now, activity.KeyBingoUpdated, map[string]any{"fields": fields})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		service.logger.Info("bingo_updated", slog.String("bingo_id", s.bingo.ID), slog.Any("fields", changed))
	}

	return s.bingo, nil
}

/*
StartBingo moves a pending bingo to ongoing.

The grid must be complete and every participant must belong to a team. The
start date becomes today; endDate, when given, overrides the scheduled end.

Returns:
  - *Bingo: The started bingo
  - error: NotFound, BadRequest, Forbidden
*/
func (service *Service) StartBingo(ctx context.Context, actor Actor, ref string, endDate *time.Time) (*Bingo, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	guard := func(s *scope) error {
		if s.bingo.Status() != StatusPending {
			return apperr.BadRequest("bingo.start.not_pending")
		}
		if !s.policy().CanStart() {
			return apperr.Forbidden("bingo.start.forbidden")
		}
		return nil
	}

	if err := guard(s); err != nil {
		return nil, err
	}

	err = service.commit(ctx, s, guard, func(tx Store, s *scope) error {
		today := service.today()

		resolvedEnd := s.bingo.EndDate
		if endDate != nil {
			resolvedEnd = *endDate
		}
		if resolvedEnd.Before(today) {
			return apperr.BadRequest("bingo.start.end_date_in_past")
		}

		tiles, err := tx.CountTilesInBounds(ctx, s.bingo.ID, s.bingo.Width, s.bingo.Height)
		if err != nil {
			return err
		}
		if tiles != s.bingo.CellCount() {
			return apperr.BadRequest("bingo.start.incomplete_grid").
				With("expected", itoa(s.bingo.CellCount())).
				With("actual", itoa(tiles))
		}

		teamless, err := tx.CountParticipantsWithoutTeam(ctx, s.bingo.ID)
		if err != nil {
			return err
		}
		if teamless > 0 {
			return apperr.BadRequest("bingo.start.participants_without_team").With("count", itoa(teamless))
		}

		now := service.clock.Now()
		s.bingo.StartDate = today
		s.bingo.EndDate = resolvedEnd
		s.bingo.Started = newStamp(now, s.actor)
		s.bingo.UpdatedAt = now

		if err := tx.UpdateBingo(ctx, s.bingo); err != nil {
			return err
		}

		s.emit(now, activity.KeyBingoStarted, map[string]any{"end_date": resolvedEnd.Format(time.DateOnly)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.transition("start")
	service.logger.Info("bingo_started", slog.String("bingo_id", s.bingo.ID), slog.String("user_id", actor.UserID))

	return s.bingo, nil
}

/*
EndBingo moves an ongoing bingo to completed; the end date becomes today.

Returns:
  - *Bingo: The completed bingo
  - error: NotFound, BadRequest, Forbidden
*/
func (service *Service) EndBingo(ctx context.Context, actor Actor, ref string) (*Bingo, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	guard := func(s *scope) error {
		if s.bingo.Status() != StatusOngoing {
			return apperr.BadRequest("bingo.end.not_ongoing")
		}
		if !s.policy().CanEnd() {
			return apperr.Forbidden("bingo.end.forbidden")
		}
		return nil
	}

	if err := guard(s); err != nil {
		return nil, err
	}

	err = service.commit(ctx, s, guard, func(tx Store, s *scope) error {
		now := service.clock.Now()
		s.bingo.EndDate = service.today()
		s.bingo.Ended = newStamp(now, s.actor)
		s.bingo.UpdatedAt = now

		if err := tx.UpdateBingo(ctx, s.bingo); err != nil {
			return err
		}

		s.emit(now, activity.KeyBingoEnded, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.transition("end")
	service.logger.Info("bingo_ended", slog.String("bingo_id", s.bingo.ID), slog.String("user_id", actor.UserID))

	return s.bingo, nil
}

/*
CancelBingo cancels a bingo that is neither completed nor already canceled.

The status precondition is checked before the policy, so canceling twice is a
BadRequest whatever the actor's role.

Returns:
  - *Bingo: The canceled bingo
  - error: NotFound, BadRequest, Forbidden
*/
func (service *Service) CancelBingo(ctx context.Context, actor Actor, ref string) (*Bingo, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	guard := func(s *scope) error {
		switch s.bingo.Status() {
		case StatusCanceled:
			return apperr.BadRequest("bingo.cancel.already_canceled")
		case StatusCompleted:
			return apperr.BadRequest("bingo.cancel.already_completed")
		}
		if !s.policy().CanCancel() {
			return apperr.Forbidden("bingo.cancel.forbidden")
		}
		return nil
	}

	if err := guard(s); err != nil {
		return nil, err
	}

	err = service.commit(ctx, s, guard, func(tx Store, s *scope) error {
		now := service.clock.Now()
		s.bingo.Canceled = newStamp(now, s.actor)
		s.bingo.UpdatedAt = now

		if err := tx.UpdateBingo(ctx, s.bingo); err != nil {
			return err
		}

		s.emit(now, activity.KeyBingoCanceled, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.transition("cancel")
	service.logger.Info("bingo_canceled", slog.String("bingo_id", s.bingo.ID), slog.String("user_id", actor.UserID))

	return s.bingo, nil
}

/*
ResetBingo returns a canceled bingo to pending with a new schedule.

Started, ended and canceled stamps are cleared and a reset stamp is set.
Optional cascades delete tiles, teams (otherwise team points are zeroed) and
every participant but the Owner (captaincy of removed users is cleared when
teams are kept). Participant points are always zeroed.

Returns:
  - *Bingo: The pending bingo
  - error: NotFound, BadRequest, Forbidden
*/
func (service *Service) ResetBingo(ctx context.Context, actor Actor, ref string, input ResetInput) (*Bingo, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	guard := func(s *scope) error {
		if s.bingo.Status() != StatusCanceled {
			return apperr.BadRequest("bingo.reset.not_canceled")
		}
		if !s.policy().CanReset() {
			return apperr.Forbidden("bingo.reset.forbidden")
		}
		return nil
	}

	if err := guard(s); err != nil {
		return nil, err
	}

	if input.StartDate.Before(service.today()) {
		return nil, apperr.BadRequest("bingo.reset.start_in_past")
	}
	if !input.StartDate.Before(input.EndDate) {
		return nil, apperr.BadRequest("bingo.dates.start_before_end")
	}
	// Registration may close on the new start date itself.
	if input.MaxRegistrationDate != nil && input.MaxRegistrationDate.After(input.StartDate) {
		return nil, apperr.BadRequest("bingo.reset.registration_after_start")
	}

	err = service.commit(ctx, s, guard, func(tx Store, s *scope) error {
		bingoID := s.bingo.ID

		if input.DeleteTiles {
			if err := tx.DeleteTiles(ctx, bingoID); err != nil {
				return err
			}
		}

		now := service.clock.Now()
		if input.DeleteTeams {
			if err := tx.SoftDeleteTeams(ctx, bingoID, now); err != nil {
				return err
			}
		} else if err := tx.ResetTeamPoints(ctx, bingoID); err != nil {
			return err
		}

		if input.DeleteParticipants {
			ownerID, err := ownerOf(ctx, tx, bingoID)
			if err != nil {
				return err
			}
			if !input.DeleteTeams {
				if err := tx.ClearCaptaincyExcept(ctx, bingoID, ownerID); err != nil {
					return err
				}
			}
			if err := tx.DeleteParticipantsExcept(ctx, bingoID, ownerID); err != nil {
				return err
			}
		}

		if err := tx.ResetParticipantPoints(ctx, bingoID); err != nil {
			return err
		}

		s.bingo.Started = nil
		s.bingo.Ended = nil
		s.bingo.Canceled = nil
		s.bingo.Reset = newStamp(now, s.actor)
		s.bingo.StartDate = input.StartDate
		s.bingo.EndDate = input.EndDate
		s.bingo.MaxRegistrationDate = input.MaxRegistrationDate
		s.bingo.UpdatedAt = now

		if err := tx.UpdateBingo(ctx, s.bingo); err != nil {
			return err
		}

		s.emit(now, activity.KeyBingoReset, map[string]any{
			"delete_tiles":        input.DeleteTiles,
			"delete_teams":        input.DeleteTeams,
			"delete_participants": input.DeleteParticipants,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.transition("reset")
	service.logger.Info("bingo_reset", slog.String("bingo_id", s.bingo.ID), slog.String("user_id", actor.UserID))

	return s.bingo, nil
}

/*
DeleteBingo soft-deletes a bingo with all its tiles, teams and participants.

Returns:
  - error: NotFound, Forbidden
*/
func (service *Service) DeleteBingo(ctx context.Context, actor Actor, ref string) error {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return err
	}

	guard := func(s *scope) error {
		if !s.policy().CanDelete() {
			return apperr.Forbidden("bingo.delete.forbidden")
		}
		return nil
	}

	if err := guard(s); err != nil {
		return err
	}

	err = service.commit(ctx, s, guard, func(tx Store, s *scope) error {
		bingoID := s.bingo.ID
		now := service.clock.Now()

		if err := tx.DeleteTiles(ctx, bingoID); err != nil {
			return err
		}
		if err := tx.SoftDeleteTeams(ctx, bingoID, now); err != nil {
			return err
		}
		if err := tx.DeleteAllParticipants(ctx, bingoID); err != nil {
			return err
		}
		if err := tx.SoftDeleteBingo(ctx, bingoID, now); err != nil {
			return err
		}

		s.emit(now, activity.KeyBingoDeleted, map[string]any{"title": s.bingo.Title})
		return nil
	})
	if err != nil {
		return err
	}

	service.transition("delete")
	service.logger.Info("bingo_deleted", slog.String("bingo_id", s.bingo.ID), slog.String("user_id", actor.UserID))

	return nil
}

// # Helpers

// uniqueSlug derives a slug from title, suffixing "-2", "-3", ... on collision.
func (service *Service) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.From(title)
	if base == "" {
		base = "bingo"
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := slug.WithSuffix(base, attempt)
		taken, err := service.store.SlugTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return base + "-" + uuid.New()[:8], nil
}

// ownerOf returns the user id of the bingo's Owner.
func ownerOf(ctx context.Context, store ParticipantStore, bingoID string) (string, error) {
	participants, err := store.ListParticipants(ctx, bingoID)
	if err != nil {
		return "", err
	}
	for _, participant := range participants {
		if participant.Role == RoleOwner {
			return participant.UserID, nil
		}
	}
	return "", apperr.Internal(errMissingOwner(bingoID))
}

// checkSchedule enforces start < end and registration < start.
func checkSchedule(start, end time.Time, registration *time.Time) error {
	if !start.Before(end) {
		return apperr.BadRequest("bingo.dates.start_before_end")
	}
	if registration != nil && !registration.Before(start) {
		return apperr.BadRequest("bingo.dates.registration_before_start")
	}
	return nil
}

func validateLanguage(validator *validate.Validator, value string) {
	validator.Required(string(FieldLanguage), value)
	if value == "" {
		return
	}
	if _, err := language.Parse(value); err != nil {
		validator.Custom(string(FieldLanguage), true, "validation.language")
	}
}

// canonicalLanguage returns the BCP 47 form of a validated language tag.
func canonicalLanguage(value string) string {
	tag, err := language.Parse(value)
	if err != nil {
		return value
	}
	return tag.String()
}

// # Update Diff

// changedFields lists the fields whose supplied value differs from bingo.
func (input UpdateInput) changedFields(bingo *Bingo) []Field {
	var fields []Field

	if input.Title != nil && *input.Title != bingo.Title {
		fields = append(fields, FieldTitle)
	}
	if input.Description != nil && *input.Description != bingo.Description {
		fields = append(fields, FieldDescription)
	}
	if input.Language != nil && canonicalLanguage(*input.Language) != bingo.Language {
		fields = append(fields, FieldLanguage)
	}
	if input.Private != nil && *input.Private != bingo.Private {
		fields = append(fields, FieldPrivate)
	}
	if input.Width != nil && *input.Width != bingo.Width {
		fields = append(fields, FieldWidth)
	}
	if input.Height != nil && *input.Height != bingo.Height {
		fields = append(fields, FieldHeight)
	}
	if input.FullLineValue != nil && *input.FullLineValue != bingo.FullLineValue {
		fields = append(fields, FieldFullLineValue)
	}
	if input.StartDate != nil && !input.StartDate.Equal(bingo.StartDate) {
		fields = append(fields, FieldStartDate)
	}
	if input.EndDate != nil && !input.EndDate.Equal(bingo.EndDate) {
		fields = append(fields, FieldEndDate)
	}
	if input.MaxRegistrationDate != nil &&
		(bingo.MaxRegistrationDate == nil || !input.MaxRegistrationDate.Equal(*bingo.MaxRegistrationDate)) {
		fields = append(fields, FieldMaxRegistrationDate)
	}

	return fields
}

// applyTo copies every supplied value onto bingo.
func (input UpdateInput) applyTo(bingo *Bingo) {
	if input.Title != nil {
		bingo.Title = *input.Title
	}
	if input.Description != nil {
		bingo.Description = *input.Description
	}
	if input.Language != nil {
		bingo.Language = canonicalLanguage(*input.Language)
	}
	if input.Private != nil {
		bingo.Private = *input.Private
	}
	if input.Width != nil {
		bingo.Width = *input.Width
	}
	if input.Height != nil {
		bingo.Height = *input.Height
	}
	if input.FullLineValue != nil {
		bingo.FullLineValue = *input.FullLineValue
	}
	if input.StartDate != nil {
		bingo.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		bingo.EndDate = *input.EndDate
	}
	if input.MaxRegistrationDate != nil {
		registration := *input.MaxRegistrationDate
		bingo.MaxRegistrationDate = &registration
	}
}

func (input UpdateInput) validate() error {
	validator := &validate.Validator{}
	if input.Title != nil {
		validator.Required(string(FieldTitle), *input.Title).MaxLen(string(FieldTitle), *input.Title, maxTitleLen)
	}
	if input.Description != nil {
		validator.MaxLen(string(FieldDescription), *input.Description, maxDescriptionLen)
	}
	if input.Language != nil {
		validateLanguage(validator, *input.Language)
	}
	if input.Width != nil {
		validator.Range(string(FieldWidth), *input.Width, 1, MaxGridSize)
	}
	if input.Height != nil {
		validator.Range(string(FieldHeight), *input.Height, 1, MaxGridSize)
	}
	if input.FullLineValue != nil {
		validator.Min(string(FieldFullLineValue), *input.FullLineValue, 0)
	}
	return validator.Err()
}
