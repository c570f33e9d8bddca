// Copyright (c) 2026 RuneBingo. All rights reserved.

/*
Package bingo manages bingo competitions: a rectangular grid of objective tiles
that teams of participants complete over a scheduled window.

# Core Responsibility

  - Lifecycle: the [Bingo] state machine (pending, ongoing, completed, canceled)
    and the field-level update restriction matrix.
  - Roster: participants, their bingo-scoped [Role], teams and captaincy.
  - Grid: tile placement, editing, moving and swapping over (x, y) cells.
  - Policy: pure authorization predicates consulted by every command.

Status is derived from event stamps and never stored.
*/
package bingo

import (
	"time"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/sec"
)

// # Lifecycle

// Status is the derived lifecycle state of a [Bingo].
type Status string

const (
	StatusPending   Status = "pending"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Stamp records when a lifecycle event happened and who triggered it.
type Stamp struct {
	At   time.Time `json:"at"`
	ByID *string   `json:"by_id,omitempty"`
}

func newStamp(at time.Time, actor Actor) *Stamp {
	stamp := &Stamp{At: at}
	if actor.UserID != "" {
		id := actor.UserID
		stamp.ByID = &id
	}
	return stamp
}

// # Core Entities

// Bingo is the competition aggregate root.
type Bingo struct {
	ID            string `json:"id"` // UUIDv7
	Slug          string `json:"slug"`
	Language      string `json:"language"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Private       bool   `json:"private"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	FullLineValue int    `json:"full_line_value"`

	// Calendar dates, stored as UTC midnight.
	StartDate           time.Time  `json:"start_date"`
	EndDate             time.Time  `json:"end_date"`
	MaxRegistrationDate *time.Time `json:"max_registration_date,omitempty"`

	Started  *Stamp `json:"started,omitempty"`
	Ended    *Stamp `json:"ended,omitempty"`
	Canceled *Stamp `json:"canceled,omitempty"`
	Reset    *Stamp `json:"reset,omitempty"`

	CreatedByID *string    `json:"created_by_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// Status derives the lifecycle state from the event stamps.
//
// Canceled wins over Completed, which wins over Ongoing.
func (bingo *Bingo) Status() Status {
	switch {
	case bingo.Canceled != nil:
		return StatusCanceled
	case bingo.Ended != nil:
		return StatusCompleted
	case bingo.Started != nil:
		return StatusOngoing
	default:
		return StatusPending
	}
}

// InBounds reports whether (x, y) is a cell of the grid.
func (bingo *Bingo) InBounds(x, y int) bool {
	return x >= 1 && x <= bingo.Width && y >= 1 && y <= bingo.Height
}

// CellCount returns width × height.
func (bingo *Bingo) CellCount() int {
	return bingo.Width * bingo.Height
}

// Participant is a user enrolled in a bingo.
type Participant struct {
	BingoID     string    `json:"bingo_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"` // Denormalized for detail views
	Role        Role      `json:"role"`
	TeamID      *string   `json:"team_id,omitempty"`
	Points      int       `json:"points"`
	InvitedByID *string   `json:"invited_by_id,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Team groups participants of one bingo.
type Team struct {
	ID             string     `json:"id"`
	BingoID        string     `json:"bingo_id"`
	Name           string     `json:"name"`
	NameNormalized string     `json:"-"`
	CaptainID      *string    `json:"captain_id,omitempty"`
	Points         int        `json:"points"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"-"`
}

// CompletionMode decides whether every item or any single item completes a tile.
type CompletionMode string

const (
	CompletionAll CompletionMode = "all"
	CompletionAny CompletionMode = "any"
)

// Valid reports whether the mode is known.
func (mode CompletionMode) Valid() bool {
	return mode == CompletionAll || mode == CompletionAny
}

// Tile is one objective on the grid.
type Tile struct {
	ID             string         `json:"id"`
	BingoID        string         `json:"bingo_id"`
	X              int            `json:"x"`
	Y              int            `json:"y"`
	Value          int            `json:"value"`
	Free           bool           `json:"free"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	CompletionMode CompletionMode `json:"completion_mode"`
	MediaID        *string        `json:"media_id,omitempty"`
	ImageURL       *string        `json:"image_url,omitempty"`
	Items          []TileItem     `json:"items"`
	CreatedByID    *string        `json:"created_by_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TileItem is one catalog item required by a tile, in display order.
type TileItem struct {
	ItemID   int `json:"item_id"`
	Index    int `json:"index"`
	Quantity int `json:"quantity"`
}

// # Requester

// Actor identifies who issues a command. The zero Actor is anonymous.
type Actor struct {
	UserID     string
	Username   string
	GlobalRole sec.UserRole
}

// IsModerator reports whether the actor holds the global moderator capability.
func (actor Actor) IsModerator() bool {
	return actor.GlobalRole.IsModerator()
}

// Anonymous reports whether no user is attached to the actor.
func (actor Actor) Anonymous() bool {
	return actor.UserID == ""
}

// # Search & Filtering

// Filter holds parameters for listing bingos.
type Filter struct {
	Query  string
	Status *Status
}
