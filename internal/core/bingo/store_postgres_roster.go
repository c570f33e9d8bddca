// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/dberr"
)

// # Participant Repository Implementation

const participantColumns = `
	p.bingo_id, p.user_id, u.username, p.role, p.team_id, p.points, p.invited_by, p.joined_at`

const participantFrom = ` FROM bingo_participant p JOIN users u ON u.id = p.user_id`

func scanParticipant(row pgx.Row) (*Participant, error) {
	participant := &Participant{}
	err := row.Scan(
		&participant.BingoID, &participant.UserID, &participant.Username, &participant.Role,
		&participant.TeamID, &participant.Points, &participant.InvitedByID, &participant.JoinedAt,
	)
	return participant, err
}

// CreateParticipant inserts a roster row; a duplicate surfaces as Conflict.
func (store *PostgresStore) CreateParticipant(ctx context.Context, participant *Participant) error {
	const query = `
		INSERT INTO bingo_participant (bingo_id, user_id, role, team_id, points, invited_by, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := store.db.Exec(ctx, query,
		participant.BingoID, participant.UserID, participant.Role, participant.TeamID,
		participant.Points, participant.InvitedByID, participant.JoinedAt,
	)
	return dberr.Wrap(err, "create_participant")
}

// FindParticipant loads one roster row by user ID.
func (store *PostgresStore) FindParticipant(ctx context.Context, bingoID, userID string) (*Participant, error) {
	query := `SELECT ` + participantColumns + participantFrom + ` WHERE p.bingo_id = $1 AND p.user_id = $2`
	participant, err := scanParticipant(store.db.QueryRow(ctx, query, bingoID, userID))
	if err != nil {
		return nil, dberr.Wrap(err, "find_participant")
	}
	return participant, nil
}

// FindParticipantByUsername loads one roster row by normalized username.
func (store *PostgresStore) FindParticipantByUsername(ctx context.Context, bingoID, usernameNormalized string) (*Participant, error) {
	query := `SELECT ` + participantColumns + participantFrom + ` WHERE p.bingo_id = $1 AND u.username_normalized = $2`
	participant, err := scanParticipant(store.db.QueryRow(ctx, query, bingoID, usernameNormalized))
	if err != nil {
		return nil, dberr.Wrap(err, "find_participant_by_username")
	}
	return participant, nil
}

// ListParticipants returns the roster ordered by username.
func (store *PostgresStore) ListParticipants(ctx context.Context, bingoID string) ([]*Participant, error) {
	query := `SELECT ` + participantColumns + participantFrom + ` WHERE p.bingo_id = $1 ORDER BY u.username_normalized ASC`

	rows, err := store.db.Query(ctx, query, bingoID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_participants")
	}
	defer rows.Close()

	participants := make([]*Participant, 0)
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_participant")
		}
		participants = append(participants, participant)
	}

	return participants, dberr.Wrap(rows.Err(), "iterate_participants")
}

// UpdateParticipant writes role and team.
func (store *PostgresStore) UpdateParticipant(ctx context.Context, participant *Participant) error {
	tag, err := store.db.Exec(ctx,
		`UPDATE bingo_participant SET role = $3, team_id = $4 WHERE bingo_id = $1 AND user_id = $2`,
		participant.BingoID, participant.UserID, participant.Role, participant.TeamID,
	)
	return affected(tag, err, "update_participant")
}

// DeleteParticipant removes one roster row.
func (store *PostgresStore) DeleteParticipant(ctx context.Context, bingoID, userID string) error {
	tag, err := store.db.Exec(ctx,
		`DELETE FROM bingo_participant WHERE bingo_id = $1 AND user_id = $2`, bingoID, userID)
	return affected(tag, err, "delete_participant")
}

// DeleteParticipantsExcept removes every roster row but keepUserID's.
func (store *PostgresStore) DeleteParticipantsExcept(ctx context.Context, bingoID, keepUserID string) error {
	_, err := store.db.Exec(ctx,
		`DELETE FROM bingo_participant WHERE bingo_id = $1 AND user_id <> $2`, bingoID, keepUserID)
	return dberr.Wrap(err, "delete_participants_except")
}

// DeleteAllParticipants empties the roster.
func (store *PostgresStore) DeleteAllParticipants(ctx context.Context, bingoID string) error {
	_, err := store.db.Exec(ctx, `DELETE FROM bingo_participant WHERE bingo_id = $1`, bingoID)
	return dberr.Wrap(err, "delete_all_participants")
}

// CountParticipantsWithoutTeam counts roster rows with a null team.
func (store *PostgresStore) CountParticipantsWithoutTeam(ctx context.Context, bingoID string) (int, error) {
	var count int
	err := store.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM bingo_participant WHERE bingo_id = $1 AND team_id IS NULL`, bingoID).Scan(&count)
	if err != nil {
		return 0, dberr.Wrap(err, "count_participants_without_team")
	}
	return count, nil
}

// ResetParticipantPoints zeroes every participant's points.
func (store *PostgresStore) ResetParticipantPoints(ctx context.Context, bingoID string) error {
	_, err := store.db.Exec(ctx, `UPDATE bingo_participant SET points = 0 WHERE bingo_id = $1`, bingoID)
	return dberr.Wrap(err, "reset_participant_points")
}

// # Team Repository Implementation

const teamColumns = `t.id, t.bingo_id, t.name, t.name_normalized, t.captain_id, t.points, t.created_at, t.updated_at`

func scanTeam(row pgx.Row) (*Team, error) {
	team := &Team{}
	err := row.Scan(
		&team.ID, &team.BingoID, &team.Name, &team.NameNormalized,
		&team.CaptainID, &team.Points, &team.CreatedAt, &team.UpdatedAt,
	)
	return team, err
}

// CreateTeam inserts a team; a live duplicate name surfaces as Conflict.
func (store *PostgresStore) CreateTeam(ctx context.Context, team *Team) error {
	const query = `
		INSERT INTO bingo_team (id, bingo_id, name, name_normalized, captain_id, points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := store.db.Exec(ctx, query,
		team.ID, team.BingoID, team.Name, team.NameNormalized,
		team.CaptainID, team.Points, team.CreatedAt, team.UpdatedAt,
	)
	return dberr.Wrap(err, "create_team")
}

// FindTeamByName loads a live team by normalized name.
func (store *PostgresStore) FindTeamByName(ctx context.Context, bingoID, nameNormalized string) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM bingo_team t
		WHERE t.bingo_id = $1 AND t.name_normalized = $2 AND t.deleted_at IS NULL`

	team, err := scanTeam(store.db.QueryRow(ctx, query, bingoID, nameNormalized))
	if err != nil {
		return nil, dberr.Wrap(err, "find_team_by_name")
	}
	return team, nil
}

// ListTeams returns the live teams ordered by name.
func (store *PostgresStore) ListTeams(ctx context.Context, bingoID string) ([]*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM bingo_team t
		WHERE t.bingo_id = $1 AND t.deleted_at IS NULL
		ORDER BY t.name_normalized ASC`

	rows, err := store.db.Query(ctx, query, bingoID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_teams")
	}
	defer rows.Close()

	teams := make([]*Team, 0)
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_team")
		}
		teams = append(teams, team)
	}

	return teams, dberr.Wrap(rows.Err(), "iterate_teams")
}

// UpdateTeam writes name and captain.
func (store *PostgresStore) UpdateTeam(ctx context.Context, team *Team) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE bingo_team SET name = $2, name_normalized = $3, captain_id = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL`,
		team.ID, team.Name, team.NameNormalized, team.CaptainID, team.UpdatedAt,
	)
	return affected(tag, err, "update_team")
}

// SoftDeleteTeam marks a team deleted and detaches its members.
func (store *PostgresStore) SoftDeleteTeam(ctx context.Context, teamID string, at time.Time) error {
	tag, err := store.db.Exec(ctx,
		`UPDATE bingo_team SET deleted_at = $2, captain_id = NULL, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		teamID, at)
	if err := affected(tag, err, "soft_delete_team"); err != nil {
		return err
	}

	_, err = store.db.Exec(ctx, `UPDATE bingo_participant SET team_id = NULL WHERE team_id = $1`, teamID)
	return dberr.Wrap(err, "detach_team_members")
}

// SoftDeleteTeams marks every team deleted and detaches all members.
func (store *PostgresStore) SoftDeleteTeams(ctx context.Context, bingoID string, at time.Time) error {
	if _, err := store.db.Exec(ctx,
		`UPDATE bingo_participant SET team_id = NULL WHERE bingo_id = $1`, bingoID); err != nil {
		return dberr.Wrap(err, "detach_all_team_members")
	}

	_, err := store.db.Exec(ctx,
		`UPDATE bingo_team SET deleted_at = $2, captain_id = NULL, updated_at = $2 WHERE bingo_id = $1 AND deleted_at IS NULL`,
		bingoID, at)
	return dberr.Wrap(err, "soft_delete_teams")
}

// ResetTeamPoints zeroes every team's points.
func (store *PostgresStore) ResetTeamPoints(ctx context.Context, bingoID string) error {
	_, err := store.db.Exec(ctx, `UPDATE bingo_team SET points = 0 WHERE bingo_id = $1`, bingoID)
	return dberr.Wrap(err, "reset_team_points")
}

// ClearCaptaincy nulls every captaincy userID holds in the bingo.
func (store *PostgresStore) ClearCaptaincy(ctx context.Context, bingoID, userID string) error {
	_, err := store.db.Exec(ctx,
		`UPDATE bingo_team SET captain_id = NULL WHERE bingo_id = $1 AND captain_id = $2`, bingoID, userID)
	return dberr.Wrap(err, "clear_captaincy")
}

// ClearCaptaincyExcept nulls every captaincy not held by keepUserID.
func (store *PostgresStore) ClearCaptaincyExcept(ctx context.Context, bingoID, keepUserID string) error {
	_, err := store.db.Exec(ctx,
		`UPDATE bingo_team SET captain_id = NULL WHERE bingo_id = $1 AND captain_id <> $2`, bingoID, keepUserID)
	return dberr.Wrap(err, "clear_captaincy_except")
}
