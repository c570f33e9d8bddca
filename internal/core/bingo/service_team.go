// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"context"
	"log/slog"
	"strings"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/activity"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/validate"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/slug"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/uuid"
)

const maxTeamNameLen = 50

// UpdateTeamInput renames a team and/or changes its captain.
// An empty CaptainUsername clears the captain.
type UpdateTeamInput struct {
	Name            *string
	CaptainUsername *string
}

/*
ListTeams returns the live teams of a bingo.
*/
func (service *Service) ListTeams(ctx context.Context, actor Actor, ref string) ([]*Team, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}
	return service.store.ListTeams(ctx, s.bingo.ID)
}

/*
CreateTeam adds a team. Names are unique per bingo, case-insensitively.

Returns:
  - *Team: The created team
  - error: NotFound, Forbidden, Conflict on a taken name
*/
func (service *Service) CreateTeam(ctx context.Context, actor Actor, ref, name string) (*Team, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	if !s.policy().CanManageTeams() {
		return nil, apperr.Forbidden("team.forbidden")
	}

	name = strings.TrimSpace(name)
	if err := validateTeamName(name); err != nil {
		return nil, err
	}

	normalized := slug.Normalize(name)
	if _, err := service.store.FindTeamByName(ctx, s.bingo.ID, normalized); err == nil {
		return nil, apperr.Conflict("team.name_taken").With("name", name)
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	now := service.clock.Now()
	team := &Team{
		ID:             uuid.New(),
		BingoID:        s.bingo.ID,
		Name:           name,
		NameNormalized: normalized,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := service.store.CreateTeam(ctx, team); err != nil {
		return nil, conflictAs(err, "team.name_taken")
	}

	s.emit(now, activity.KeyTeamCreated, map[string]any{"name": team.Name})
	service.publish(ctx, s.events)

	service.logger.Info("team_created", slog.String("bingo_id", s.bingo.ID), slog.String("team_id", team.ID))

	return team, nil
}

/*
UpdateTeam renames a team and/or sets its captain. The captain must be a
current participant of the bingo when the locked write happens.

Returns:
  - *Team: The updated team
  - error: NotFound (bingo, team, captain), Forbidden, Conflict on a taken name
*/
func (service *Service) UpdateTeam(ctx context.Context, actor Actor, ref, teamName string, input UpdateTeamInput) (*Team, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	guard := func(s *scope) error {
		if !s.policy().CanManageTeams() {
			return apperr.Forbidden("team.forbidden")
		}
		return nil
	}

	if err := guard(s); err != nil {
		return nil, err
	}

	var name string
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
		if err := validateTeamName(name); err != nil {
			return nil, err
		}
	}

	var (
		team    *Team
		changed bool
	)
	err = service.commit(ctx, s, guard, func(tx Store, s *scope) error {
		found, err := tx.FindTeamByName(ctx, s.bingo.ID, slug.Normalize(teamName))
		if err != nil {
			return notFoundAs(err, "team.not_found")
		}
		team = found

		if input.Name != nil {
			normalized := slug.Normalize(name)
			if normalized != team.NameNormalized {
				if _, err := tx.FindTeamByName(ctx, s.bingo.ID, normalized); err == nil {
					return apperr.Conflict("team.name_taken").With("name", name)
				} else if !apperr.HasCode(err, apperr.CodeNotFound) {
					return err
				}
			}
			if name != team.Name {
				team.Name = name
				team.NameNormalized = normalized
				changed = true
			}
		}

		if input.CaptainUsername != nil {
			var captainID *string
			if username := strings.TrimSpace(*input.CaptainUsername); username != "" {
				captain, err := service.findParticipant(ctx, tx, s.bingo.ID, username)
				if err != nil {
					return err
				}
				captainID = &captain.UserID
			}
			if !sameID(captainID, team.CaptainID) {
				team.CaptainID = captainID
				changed = true
			}
		}

		if !changed {
			return nil
		}

		team.UpdatedAt = service.clock.Now()
		if err := tx.UpdateTeam(ctx, team); err != nil {
			return conflictAs(err, "team.name_taken")
		}

		s.emit(team.UpdatedAt, activity.KeyTeamUpdated, map[string]any{"name": team.Name})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		service.logger.Info("team_updated", slog.String("bingo_id", s.bingo.ID), slog.String("team_id", team.ID))
	}

	return team, nil
}

/*
DeleteTeam soft-deletes a team and detaches its members.

Returns:
  - error: NotFound (bingo, team), Forbidden
*/
func (service *Service) DeleteTeam(ctx context.Context, actor Actor, ref, teamName string) error {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return err
	}

	guard := func(s *scope) error {
		if !s.policy().CanManageTeams() {
			return apperr.Forbidden("team.forbidden")
		}
		return nil
	}

	if err := guard(s); err != nil {
		return err
	}

	var team *Team
	err = service.commit(ctx, s, guard, func(tx Store, s *scope) error {
		found, err := tx.FindTeamByName(ctx, s.bingo.ID, slug.Normalize(teamName))
		if err != nil {
			return notFoundAs(err, "team.not_found")
		}
		team = found

		now := service.clock.Now()
		if err := tx.SoftDeleteTeam(ctx, team.ID, now); err != nil {
			return err
		}

		s.emit(now, activity.KeyTeamDeleted, map[string]any{"name": team.Name})
		return nil
	})
	if err != nil {
		return err
	}

	service.logger.Info("team_deleted", slog.String("bingo_id", s.bingo.ID), slog.String("team_id", team.ID))

	return nil
}

func validateTeamName(name string) error {
	validator := &validate.Validator{}
	validator.Required("name", name).MaxLen("name", name, maxTeamNameLen)
	return validator.Err()
}
