// Copyright (c) 2026 RuneBingo. All rights reserved.

/*
Package activity records the audit trail of bingo mutations.

# Flow

Domain services call [Service.Record] once a mutation has committed. The entry
is published on the event bus and persisted by [Consumer]; [Service.List]
reads the trail back with actor usernames resolved in one batch.
*/
package activity

import "time"

// # Activity Keys

// Each key is also the i18n message key used to render the entry.
const (
	KeyBingoCreated  = "activity.bingo.created"
	KeyBingoUpdated  = "activity.bingo.updated"
	KeyBingoStarted  = "activity.bingo.started"
	KeyBingoEnded    = "activity.bingo.ended"
	KeyBingoCanceled = "activity.bingo.canceled"
	KeyBingoReset    = "activity.bingo.reset"
	KeyBingoDeleted  = "activity.bingo.deleted"

	KeyParticipantAdded     = "activity.participant.added"
	KeyParticipantKicked    = "activity.participant.kicked"
	KeyParticipantLeft      = "activity.participant.left"
	KeyParticipantUpdated   = "activity.participant.updated"
	KeyOwnershipTransferred = "activity.participant.ownership_transferred"

	KeyTeamCreated = "activity.team.created"
	KeyTeamUpdated = "activity.team.updated"
	KeyTeamDeleted = "activity.team.deleted"

	KeyTileCreated = "activity.tile.created"
	KeyTileUpdated = "activity.tile.updated"
	KeyTileMoved   = "activity.tile.moved"
	KeyTileDeleted = "activity.tile.deleted"
)

// # Entities

// Entry is one semantic event on a bingo. A nil ActorID marks a system action.
type Entry struct {
	ID        string         `json:"id"`
	BingoID   string         `json:"bingo_id"`
	ActorID   *string        `json:"actor_id,omitempty"`
	Key       string         `json:"key"`
	Params    map[string]any `json:"params,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// View is an [Entry] prepared for display.
type View struct {
	Entry
	ActorUsername *string `json:"actor_username,omitempty"`
	Message       string  `json:"message,omitempty"`
}
