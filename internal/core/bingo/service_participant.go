// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/activity"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/validate"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/slug"
)

// # Inputs

// AddParticipantInput names the user to enroll and their role.
type AddParticipantInput struct {
	Username string
	Role     Role
}

// UpdateParticipantInput changes a participant's role and/or team.
// An empty TeamName removes the participant from their team.
type UpdateParticipantInput struct {
	Role     *Role
	TeamName *string
}

// # Queries

/*
ListParticipants returns the roster of a bingo.
*/
func (service *Service) ListParticipants(ctx context.Context, actor Actor, ref string) ([]*Participant, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}
	return service.store.ListParticipants(ctx, s.bingo.ID)
}

// # Roster Mutation

/*
AddParticipant enrolls a user. Organizers and moderators may add anyone with
any role below Owner.

Returns:
  - *Participant: The new participant
  - error: NotFound (bingo or user), Forbidden, Conflict when already enrolled
*/
func (service *Service) AddParticipant(ctx context.Context, actor Actor, ref string, input AddParticipantInput) (*Participant, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	if !s.policy().CanAddParticipant() {
		return nil, apperr.Forbidden("participant.add.forbidden")
	}

	if input.Role == "" {
		input.Role = RoleParticipant
	}
	if !input.Role.Valid() {
		return nil, validate.FieldErr("role", "validation.role")
	}
	if input.Role == RoleOwner {
		return nil, apperr.Forbidden("participant.role.owner_forbidden")
	}

	userID, username, err := service.users.LookupUser(ctx, input.Username)
	if err != nil {
		return nil, notFoundAs(err, "user.not_found")
	}

	var participant *Participant
	err = service.store.Tx(ctx, func(tx Store) error {
		now := service.clock.Now()

		var inviter *string
		if !actor.Anonymous() {
			inviterID := actor.UserID
			inviter = &inviterID
		}

		participant, err = addParticipant(ctx, tx, s.bingo.ID, userID, input.Role, inviter, now)
		if err != nil {
			return err
		}
		participant.Username = username

		s.emit(now, activity.KeyParticipantAdded, map[string]any{
			"username": username,
			"role":     string(input.Role),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	service.publish(ctx, s.events)

	service.logger.Info("participant_added",
		slog.String("bingo_id", s.bingo.ID),
		slog.String("user_id", userID),
		slog.String("role", string(input.Role)),
	)

	return participant, nil
}

// addParticipant inserts a roster row; a nil inviter marks a system add.
func addParticipant(ctx context.Context, store ParticipantStore, bingoID, userID string, role Role, inviter *string, at time.Time) (*Participant, error) {
	participant := &Participant{
		BingoID:     bingoID,
		UserID:      userID,
		Role:        role,
		InvitedByID: inviter,
		JoinedAt:    at,
	}
	if err := store.CreateParticipant(ctx, participant); err != nil {
		return nil, conflictAs(err, "participant.already_exists")
	}
	return participant, nil
}

/*
RemoveParticipant removes username from the bingo. Removing oneself follows
leave rules; removing someone else follows kick rules.
*/
func (service *Service) RemoveParticipant(ctx context.Context, actor Actor, ref, username string) error {
	if !actor.Anonymous() && slug.Normalize(username) == slug.Normalize(actor.Username) {
		return service.LeaveBingo(ctx, actor, ref)
	}
	return service.KickParticipant(ctx, actor, ref, username, false)
}

/*
KickParticipant removes another participant and clears their captaincy.

deleteSubmissions is accepted for tile-completion submissions, which this
service does not store yet; it has no effect.

Returns:
  - error: NotFound (bingo or participant), Forbidden
*/
func (service *Service) KickParticipant(ctx context.Context, actor Actor, ref, username string, deleteSubmissions bool) error {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return err
	}

	target, err := service.findParticipant(ctx, service.store, s.bingo.ID, username)
	if err != nil {
		return err
	}

	guard := func(s *scope) error {
		if !s.roster().CanKick(target) {
			return apperr.Forbidden("participant.kick.forbidden")
		}
		return nil
	}

	if err := guard(s); err != nil {
		return err
	}

	err = service.commit(ctx, s, nil, func(tx Store, s *scope) error {
		fresh, err := service.findParticipant(ctx, tx, s.bingo.ID, username)
		if err != nil {
			return err
		}
		target = fresh
		if err := guard(s); err != nil {
			return err
		}

		if err := removeFromBingo(ctx, tx, s.bingo.ID, target.UserID); err != nil {
			return err
		}

		s.emit(service.clock.Now(), activity.KeyParticipantKicked, map[string]any{
			"username":           target.Username,
			"delete_submissions": deleteSubmissions,
		})
		return nil
	})
	if err != nil {
		return err
	}

	service.logger.Info("participant_kicked",
		slog.String("bingo_id", s.bingo.ID),
		slog.String("user_id", target.UserID),
		slog.String("by_user_id", actor.UserID),
	)

	return nil
}

/*
LeaveBingo removes the actor from the bingo. The Owner cannot leave.

Returns:
  - error: NotFound when not a participant, Forbidden for the Owner
*/
func (service *Service) LeaveBingo(ctx context.Context, actor Actor, ref string) error {
	if err := requireUser(actor); err != nil {
		return err
	}

	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return err
	}

	guard := func(s *scope) error {
		if s.participant == nil {
			return apperr.NotFound("participant.not_found")
		}
		if !s.roster().CanLeave() {
			return apperr.Forbidden("participant.leave.owner")
		}
		return nil
	}

	if err := guard(s); err != nil {
		return err
	}

	err = service.commit(ctx, s, guard, func(tx Store, s *scope) error {
		if err := removeFromBingo(ctx, tx, s.bingo.ID, actor.UserID); err != nil {
			return err
		}

		s.emit(service.clock.Now(), activity.KeyParticipantLeft, map[string]any{"username": actor.Username})
		return nil
	})
	if err != nil {
		return err
	}

	service.logger.Info("participant_left", slog.String("bingo_id", s.bingo.ID), slog.String("user_id", actor.UserID))

	return nil
}

// removeFromBingo clears captaincy then deletes the roster row.
func removeFromBingo(ctx context.Context, tx Store, bingoID, userID string) error {
	if err := tx.ClearCaptaincy(ctx, bingoID, userID); err != nil {
		return err
	}
	return tx.DeleteParticipant(ctx, bingoID, userID)
}

/*
TransferOwnership demotes the current Owner to Organizer and promotes
username to Owner in one transaction.

Returns:
  - error: NotFound (bingo or target), Forbidden unless Owner, BadRequest for self
*/
func (service *Service) TransferOwnership(ctx context.Context, actor Actor, ref, username string) error {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return err
	}

	guard := func(s *scope) error {
		if !s.roster().CanTransferOwnership() {
			return apperr.Forbidden("participant.transfer.forbidden")
		}
		return nil
	}

	if err := guard(s); err != nil {
		return err
	}

	target, err := service.findParticipant(ctx, service.store, s.bingo.ID, username)
	if err != nil {
		return err
	}
	if target.UserID == actor.UserID {
		return apperr.BadRequest("participant.transfer.self")
	}

	err = service.commit(ctx, s, guard, func(tx Store, s *scope) error {
		fresh, err := service.findParticipant(ctx, tx, s.bingo.ID, username)
		if err != nil {
			return err
		}

		s.participant.Role = RoleOrganizer
		if err := tx.UpdateParticipant(ctx, s.participant); err != nil {
			return err
		}

		fresh.Role = RoleOwner
		if err := tx.UpdateParticipant(ctx, fresh); err != nil {
			return err
		}
		target = fresh

		s.emit(service.clock.Now(), activity.KeyOwnershipTransferred, map[string]any{"username": fresh.Username})
		return nil
	})
	if err != nil {
		return err
	}

	service.logger.Info("ownership_transferred",
		slog.String("bingo_id", s.bingo.ID),
		slog.String("from_user_id", actor.UserID),
		slog.String("to_user_id", target.UserID),
	)

	return nil
}

/*
UpdateParticipant changes a participant's role and/or team.

Each aspect equal to its current value is ignored; when nothing changes the
participant is returned as is, with no authorization check and no activity.
The Owner role is only granted or given up through [Service.TransferOwnership].
The target and team are resolved on the locked bingo.

Returns:
  - *Participant: The updated participant
  - error: NotFound (bingo, participant or team), Forbidden (including any
    role change on the Owner)
*/
func (service *Service) UpdateParticipant(ctx context.Context, actor Actor, ref, username string, input UpdateParticipantInput) (*Participant, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	if input.Role != nil && !input.Role.Valid() {
		return nil, validate.FieldErr("role", "validation.role")
	}

	var (
		target  *Participant
		changes ParticipantChanges
	)
	err = service.commit(ctx, s, nil, func(tx Store, s *scope) error {
		found, err := service.findParticipant(ctx, tx, s.bingo.ID, username)
		if err != nil {
			return err
		}
		target = found

		nextRole := target.Role
		if input.Role != nil && *input.Role != target.Role {
			// Ownership only moves through TransferOwnership.
			if *input.Role == RoleOwner {
				return apperr.Forbidden("participant.role.owner_forbidden")
			}
			if target.Role == RoleOwner {
				return apperr.Forbidden("participant.role.owner_transfer_only")
			}
			changes.Role = true
			nextRole = *input.Role
		}

		nextTeamID := target.TeamID
		var nextTeam *Team
		if input.TeamName != nil {
			if name := strings.TrimSpace(*input.TeamName); name != "" {
				team, err := tx.FindTeamByName(ctx, s.bingo.ID, slug.Normalize(name))
				if err != nil {
					return notFoundAs(err, "team.not_found")
				}
				nextTeam = team
				nextTeamID = &team.ID
			} else {
				nextTeamID = nil
			}
			changes.Team = !sameID(nextTeamID, target.TeamID)
		}

		if changes.Empty() {
			return nil
		}

		if !s.roster().CanUpdate(target, changes) {
			return apperr.Forbidden("participant.update.forbidden")
		}

		target.Role = nextRole
		target.TeamID = nextTeamID
		if err := tx.UpdateParticipant(ctx, target); err != nil {
			return err
		}

		params := map[string]any{"username": target.Username}
		if changes.Role {
			params["role"] = string(nextRole)
		}
		if changes.Team {
			params["team"] = ""
			if nextTeam != nil {
				params["team"] = nextTeam.Name
			}
		}
		s.emit(service.clock.Now(), activity.KeyParticipantUpdated, params)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changes.Empty() {
		return target, nil
	}

	service.logger.Info("participant_updated",
		slog.String("bingo_id", s.bingo.ID),
		slog.String("user_id", target.UserID),
		slog.Bool("role_changed", changes.Role),
		slog.Bool("team_changed", changes.Team),
	)

	return target, nil
}

// findParticipant resolves a participant by case-insensitive username.
func (service *Service) findParticipant(ctx context.Context, store ParticipantStore, bingoID, username string) (*Participant, error) {
	participant, err := store.FindParticipantByUsername(ctx, bingoID, slug.Normalize(username))
	if err != nil {
		return nil, notFoundAs(err, "participant.not_found")
	}
	return participant, nil
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
