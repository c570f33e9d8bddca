// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"context"
	"time"
)

// # Persistence Contract

// Store defines persistence operations for the bingo aggregate and every
// entity it owns. Missing rows surface as an apperr NotFound.
type Store interface {
	// Tx runs fn against a transactional view of the store. Any error returned
	// by fn rolls back every write made through tx.
	Tx(ctx context.Context, fn func(tx Store) error) error

	BingoStore
	ParticipantStore
	TeamStore
	TileStore
}

// BingoStore persists the aggregate root.
type BingoStore interface {
	CreateBingo(ctx context.Context, bingo *Bingo) error
	FindBingoByID(ctx context.Context, id string) (*Bingo, error)
	FindBingoBySlug(ctx context.Context, slug string) (*Bingo, error)

	// LockBingo re-reads the bingo and holds a row lock until the enclosing
	// transaction ends.
	LockBingo(ctx context.Context, id string) (*Bingo, error)

	SlugTaken(ctx context.Context, slug string) (bool, error)

	// ListBingos returns the bingos visible to actor: public ones, the ones
	// actor participates in, and every bingo for moderators.
	ListBingos(ctx context.Context, actor Actor, filter Filter, limit, offset int) ([]*Bingo, int, error)

	// UpdateBingo writes every mutable column, including event stamps.
	UpdateBingo(ctx context.Context, bingo *Bingo) error
	SoftDeleteBingo(ctx context.Context, id string, at time.Time) error
}

// ParticipantStore persists the roster.
type ParticipantStore interface {
	// CreateParticipant fails with Conflict when (bingoID, userID) exists.
	CreateParticipant(ctx context.Context, participant *Participant) error
	FindParticipant(ctx context.Context, bingoID, userID string) (*Participant, error)
	FindParticipantByUsername(ctx context.Context, bingoID, usernameNormalized string) (*Participant, error)
	ListParticipants(ctx context.Context, bingoID string) ([]*Participant, error)

	// UpdateParticipant writes role and team.
	UpdateParticipant(ctx context.Context, participant *Participant) error
	DeleteParticipant(ctx context.Context, bingoID, userID string) error
	DeleteParticipantsExcept(ctx context.Context, bingoID, keepUserID string) error
	DeleteAllParticipants(ctx context.Context, bingoID string) error
	CountParticipantsWithoutTeam(ctx context.Context, bingoID string) (int, error)
	ResetParticipantPoints(ctx context.Context, bingoID string) error
}

// TeamStore persists teams and captaincy.
type TeamStore interface {
	// CreateTeam fails with Conflict on a duplicate normalized name.
	CreateTeam(ctx context.Context, team *Team) error
	FindTeamByName(ctx context.Context, bingoID, nameNormalized string) (*Team, error)
	ListTeams(ctx context.Context, bingoID string) ([]*Team, error)
	UpdateTeam(ctx context.Context, team *Team) error

	// SoftDeleteTeam also detaches the team's members.
	SoftDeleteTeam(ctx context.Context, teamID string, at time.Time) error
	// SoftDeleteTeams soft-deletes every team of the bingo and detaches all members.
	SoftDeleteTeams(ctx context.Context, bingoID string, at time.Time) error
	ResetTeamPoints(ctx context.Context, bingoID string) error

	// ClearCaptaincy nulls captainId on every team of the bingo captained by userID.
	ClearCaptaincy(ctx context.Context, bingoID, userID string) error
	// ClearCaptaincyExcept nulls every captainId of the bingo other than keepUserID.
	ClearCaptaincyExcept(ctx context.Context, bingoID, keepUserID string) error
}

// TileStore persists the grid.
type TileStore interface {
	// FindTile loads the tile at (x, y) with its items in index order.
	FindTile(ctx context.Context, bingoID string, x, y int) (*Tile, error)
	ListTiles(ctx context.Context, bingoID string) ([]*Tile, error)
	CountTilesInBounds(ctx context.Context, bingoID string, width, height int) (int, error)
	CreateTile(ctx context.Context, tile *Tile) error

	// UpdateTile writes metadata only; items go through ReplaceTileItems.
	UpdateTile(ctx context.Context, tile *Tile) error
	MoveTile(ctx context.Context, tileID string, x, y int) error

	// ReplaceTileItems deletes every item of the tile and inserts items as given.
	ReplaceTileItems(ctx context.Context, tileID string, items []TileItem) error

	// DeleteTile removes the tile's items, the tile, then its media if any.
	DeleteTile(ctx context.Context, tile *Tile) error
	DeleteTiles(ctx context.Context, bingoID string) error
	DeleteTilesOutside(ctx context.Context, bingoID string, width, height int) error
}
