// Copyright (c) 2026 RuneBingo. All rights reserved.

/*
Package bingotest provides in-memory collaborators for exercising the bingo
service without a database.

[MemoryStore] mirrors the constraints of the PostgreSQL schema (unique tile
cells, unique team names, one roster row per user) and gives transactions
snapshot semantics: a failing Tx leaves no trace.
*/
package bingotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/bingo"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/slug"
)

type participantKey struct {
	bingoID string
	userID  string
}

type state struct {
	bingos       map[string]*bingo.Bingo
	participants map[participantKey]*bingo.Participant
	teams        map[string]*bingo.Team
	tiles        map[string]*bingo.Tile
	deletedMedia []string
}

func newState() *state {
	return &state{
		bingos:       make(map[string]*bingo.Bingo),
		participants: make(map[participantKey]*bingo.Participant),
		teams:        make(map[string]*bingo.Team),
		tiles:        make(map[string]*bingo.Tile),
	}
}

func (s *state) clone() *state {
	out := newState()
	for id, b := range s.bingos {
		out.bingos[id] = copyBingo(b)
	}
	for key, p := range s.participants {
		out.participants[key] = copyParticipant(p)
	}
	for id, team := range s.teams {
		out.teams[id] = copyTeam(team)
	}
	for id, tile := range s.tiles {
		out.tiles[id] = copyTile(tile)
	}
	out.deletedMedia = append([]string(nil), s.deletedMedia...)
	return out
}

var _ bingo.Store = (*MemoryStore)(nil)

// MemoryStore implements [bingo.Store] in memory.
type MemoryStore struct {
	mu    sync.Mutex
	state *state
	users *Users

	// parent is set on transactional views.
	parent *MemoryStore
}

// NewMemoryStore returns an empty store resolving usernames through users.
func NewMemoryStore(users *Users) *MemoryStore {
	return &MemoryStore{state: newState(), users: users}
}

func notFound() error { return apperr.NotFound("error.resource_not_found") }
func conflict() error { return apperr.Conflict("error.duplicate") }

/*
Tx runs fn against a snapshot. The snapshot replaces the store state only
when fn succeeds. Nested calls reuse the enclosing snapshot.
*/
func (store *MemoryStore) Tx(ctx context.Context, fn func(tx bingo.Store) error) error {
	if store.parent != nil {
		return fn(store)
	}

	store.mu.Lock()
	snapshot := store.state.clone()
	store.mu.Unlock()

	tx := &MemoryStore{state: snapshot, users: store.users, parent: store}
	if err := fn(tx); err != nil {
		return err
	}

	store.mu.Lock()
	store.state = snapshot
	store.mu.Unlock()
	return nil
}

func (store *MemoryStore) lock() func() {
	store.mu.Lock()
	return store.mu.Unlock
}

// # Bingos

func (store *MemoryStore) CreateBingo(_ context.Context, b *bingo.Bingo) error {
	defer store.lock()()
	for _, existing := range store.state.bingos {
		if existing.Slug == b.Slug {
			return conflict()
		}
	}
	store.state.bingos[b.ID] = copyBingo(b)
	return nil
}

func (store *MemoryStore) FindBingoByID(_ context.Context, id string) (*bingo.Bingo, error) {
	defer store.lock()()
	b, ok := store.state.bingos[id]
	if !ok || b.DeletedAt != nil {
		return nil, notFound()
	}
	return copyBingo(b), nil
}

func (store *MemoryStore) FindBingoBySlug(_ context.Context, value string) (*bingo.Bingo, error) {
	defer store.lock()()
	for _, b := range store.state.bingos {
		if b.Slug == value && b.DeletedAt == nil {
			return copyBingo(b), nil
		}
	}
	return nil, notFound()
}

func (store *MemoryStore) LockBingo(ctx context.Context, id string) (*bingo.Bingo, error) {
	return store.FindBingoByID(ctx, id)
}

func (store *MemoryStore) SlugTaken(_ context.Context, value string) (bool, error) {
	defer store.lock()()
	for _, b := range store.state.bingos {
		if b.Slug == value {
			return true, nil
		}
	}
	return false, nil
}

func (store *MemoryStore) ListBingos(_ context.Context, actor bingo.Actor, filter bingo.Filter, limit, offset int) ([]*bingo.Bingo, int, error) {
	defer store.lock()()

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	matched := make([]*bingo.Bingo, 0)
	for _, b := range store.state.bingos {
		if b.DeletedAt != nil {
			continue
		}
		_, member := store.state.participants[participantKey{b.ID, actor.UserID}]
		if b.Private && !member && !actor.IsModerator() {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(b.Title), query) {
			continue
		}
		if filter.Status != nil && b.Status() != *filter.Status {
			continue
		}
		matched = append(matched, copyBingo(b))
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return page(matched, limit, offset), len(matched), nil
}

func (store *MemoryStore) UpdateBingo(_ context.Context, b *bingo.Bingo) error {
	defer store.lock()()
	if _, ok := store.state.bingos[b.ID]; !ok {
		return notFound()
	}
	store.state.bingos[b.ID] = copyBingo(b)
	return nil
}

func (store *MemoryStore) SoftDeleteBingo(_ context.Context, id string, at time.Time) error {
	defer store.lock()()
	b, ok := store.state.bingos[id]
	if !ok {
		return notFound()
	}
	b.DeletedAt = &at
	return nil
}

// # Participants

func (store *MemoryStore) CreateParticipant(_ context.Context, participant *bingo.Participant) error {
	defer store.lock()()
	key := participantKey{participant.BingoID, participant.UserID}
	if _, ok := store.state.participants[key]; ok {
		return conflict()
	}
	stored := copyParticipant(participant)
	stored.Username = ""
	store.state.participants[key] = stored
	return nil
}

func (store *MemoryStore) FindParticipant(_ context.Context, bingoID, userID string) (*bingo.Participant, error) {
	defer store.lock()()
	participant, ok := store.state.participants[participantKey{bingoID, userID}]
	if !ok {
		return nil, notFound()
	}
	return store.hydrate(participant), nil
}

func (store *MemoryStore) FindParticipantByUsername(_ context.Context, bingoID, usernameNormalized string) (*bingo.Participant, error) {
	defer store.lock()()
	for key, participant := range store.state.participants {
		if key.bingoID != bingoID {
			continue
		}
		if slug.Normalize(store.users.name(key.userID)) == usernameNormalized {
			return store.hydrate(participant), nil
		}
	}
	return nil, notFound()
}

func (store *MemoryStore) ListParticipants(_ context.Context, bingoID string) ([]*bingo.Participant, error) {
	defer store.lock()()
	out := make([]*bingo.Participant, 0)
	for key, participant := range store.state.participants {
		if key.bingoID == bingoID {
			out = append(out, store.hydrate(participant))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (store *MemoryStore) UpdateParticipant(_ context.Context, participant *bingo.Participant) error {
	defer store.lock()()
	stored, ok := store.state.participants[participantKey{participant.BingoID, participant.UserID}]
	if !ok {
		return notFound()
	}
	stored.Role = participant.Role
	stored.TeamID = cloneString(participant.TeamID)
	return nil
}

func (store *MemoryStore) DeleteParticipant(_ context.Context, bingoID, userID string) error {
	defer store.lock()()
	key := participantKey{bingoID, userID}
	if _, ok := store.state.participants[key]; !ok {
		return notFound()
	}
	delete(store.state.participants, key)
	return nil
}

func (store *MemoryStore) DeleteParticipantsExcept(_ context.Context, bingoID, keepUserID string) error {
	defer store.lock()()
	for key := range store.state.participants {
		if key.bingoID == bingoID && key.userID != keepUserID {
			delete(store.state.participants, key)
		}
	}
	return nil
}

func (store *MemoryStore) DeleteAllParticipants(_ context.Context, bingoID string) error {
	defer store.lock()()
	for key := range store.state.participants {
		if key.bingoID == bingoID {
			delete(store.state.participants, key)
		}
	}
	return nil
}

func (store *MemoryStore) CountParticipantsWithoutTeam(_ context.Context, bingoID string) (int, error) {
	defer store.lock()()
	count := 0
	for key, participant := range store.state.participants {
		if key.bingoID == bingoID && participant.TeamID == nil {
			count++
		}
	}
	return count, nil
}

func (store *MemoryStore) ResetParticipantPoints(_ context.Context, bingoID string) error {
	defer store.lock()()
	for key, participant := range store.state.participants {
		if key.bingoID == bingoID {
			participant.Points = 0
		}
	}
	return nil
}

func (store *MemoryStore) hydrate(participant *bingo.Participant) *bingo.Participant {
	out := copyParticipant(participant)
	out.Username = store.users.name(participant.UserID)
	return out
}

// # Teams

func (store *MemoryStore) CreateTeam(_ context.Context, team *bingo.Team) error {
	defer store.lock()()
	if store.teamNameTaken(team.BingoID, team.NameNormalized, team.ID) {
		return conflict()
	}
	store.state.teams[team.ID] = copyTeam(team)
	return nil
}

func (store *MemoryStore) FindTeamByName(_ context.Context, bingoID, nameNormalized string) (*bingo.Team, error) {
	defer store.lock()()
	for _, team := range store.state.teams {
		if team.BingoID == bingoID && team.DeletedAt == nil && team.NameNormalized == nameNormalized {
			return copyTeam(team), nil
		}
	}
	return nil, notFound()
}

func (store *MemoryStore) ListTeams(_ context.Context, bingoID string) ([]*bingo.Team, error) {
	defer store.lock()()
	out := make([]*bingo.Team, 0)
	for _, team := range store.state.teams {
		if team.BingoID == bingoID && team.DeletedAt == nil {
			out = append(out, copyTeam(team))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NameNormalized < out[j].NameNormalized })
	return out, nil
}

func (store *MemoryStore) UpdateTeam(_ context.Context, team *bingo.Team) error {
	defer store.lock()()
	if _, ok := store.state.teams[team.ID]; !ok {
		return notFound()
	}
	if store.teamNameTaken(team.BingoID, team.NameNormalized, team.ID) {
		return conflict()
	}
	store.state.teams[team.ID] = copyTeam(team)
	return nil
}

func (store *MemoryStore) SoftDeleteTeam(_ context.Context, teamID string, at time.Time) error {
	defer store.lock()()
	team, ok := store.state.teams[teamID]
	if !ok || team.DeletedAt != nil {
		return notFound()
	}
	team.DeletedAt = &at
	store.detachMembers(teamID)
	return nil
}

func (store *MemoryStore) SoftDeleteTeams(_ context.Context, bingoID string, at time.Time) error {
	defer store.lock()()
	for id, team := range store.state.teams {
		if team.BingoID == bingoID && team.DeletedAt == nil {
			deletedAt := at
			team.DeletedAt = &deletedAt
			store.detachMembers(id)
		}
	}
	return nil
}

func (store *MemoryStore) ResetTeamPoints(_ context.Context, bingoID string) error {
	defer store.lock()()
	for _, team := range store.state.teams {
		if team.BingoID == bingoID {
			team.Points = 0
		}
	}
	return nil
}

func (store *MemoryStore) ClearCaptaincy(_ context.Context, bingoID, userID string) error {
	defer store.lock()()
	for _, team := range store.state.teams {
		if team.BingoID == bingoID && team.CaptainID != nil && *team.CaptainID == userID {
			team.CaptainID = nil
		}
	}
	return nil
}

func (store *MemoryStore) ClearCaptaincyExcept(_ context.Context, bingoID, keepUserID string) error {
	defer store.lock()()
	for _, team := range store.state.teams {
		if team.BingoID == bingoID && team.CaptainID != nil && *team.CaptainID != keepUserID {
			team.CaptainID = nil
		}
	}
	return nil
}

func (store *MemoryStore) teamNameTaken(bingoID, nameNormalized, exceptID string) bool {
	for id, team := range store.state.teams {
		if id != exceptID && team.BingoID == bingoID && team.DeletedAt == nil && team.NameNormalized == nameNormalized {
			return true
		}
	}
	return false
}

func (store *MemoryStore) detachMembers(teamID string) {
	for _, participant := range store.state.participants {
		if participant.TeamID != nil && *participant.TeamID == teamID {
			participant.TeamID = nil
		}
	}
}

// # Tiles

func (store *MemoryStore) FindTile(_ context.Context, bingoID string, x, y int) (*bingo.Tile, error) {
	defer store.lock()()
	if tile := store.tileAt(bingoID, x, y); tile != nil {
		return copyTile(tile), nil
	}
	return nil, notFound()
}

func (store *MemoryStore) ListTiles(_ context.Context, bingoID string) ([]*bingo.Tile, error) {
	defer store.lock()()
	out := make([]*bingo.Tile, 0)
	for _, tile := range store.state.tiles {
		if tile.BingoID == bingoID {
			out = append(out, copyTile(tile))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out, nil
}

func (store *MemoryStore) CountTilesInBounds(_ context.Context, bingoID string, width, height int) (int, error) {
	defer store.lock()()
	count := 0
	for _, tile := range store.state.tiles {
		if tile.BingoID == bingoID && tile.X >= 1 && tile.X <= width && tile.Y >= 1 && tile.Y <= height {
			count++
		}
	}
	return count, nil
}

func (store *MemoryStore) CreateTile(_ context.Context, tile *bingo.Tile) error {
	defer store.lock()()
	if store.tileAt(tile.BingoID, tile.X, tile.Y) != nil {
		return conflict()
	}
	stored := copyTile(tile)
	stored.Items = nil
	store.state.tiles[tile.ID] = stored
	return nil
}

func (store *MemoryStore) UpdateTile(_ context.Context, tile *bingo.Tile) error {
	defer store.lock()()
	stored, ok := store.state.tiles[tile.ID]
	if !ok {
		return notFound()
	}
	items := stored.Items
	updated := copyTile(tile)
	updated.X, updated.Y = stored.X, stored.Y
	updated.Items = items
	store.state.tiles[tile.ID] = updated
	return nil
}

func (store *MemoryStore) MoveTile(_ context.Context, tileID string, x, y int) error {
	defer store.lock()()
	tile, ok := store.state.tiles[tileID]
	if !ok {
		return notFound()
	}
	if occupant := store.tileAt(tile.BingoID, x, y); occupant != nil && occupant.ID != tileID {
		return conflict()
	}
	tile.X, tile.Y = x, y
	return nil
}

func (store *MemoryStore) ReplaceTileItems(_ context.Context, tileID string, items []bingo.TileItem) error {
	defer store.lock()()
	tile, ok := store.state.tiles[tileID]
	if !ok {
		return notFound()
	}
	tile.Items = append([]bingo.TileItem{}, items...)
	return nil
}

func (store *MemoryStore) DeleteTile(_ context.Context, tile *bingo.Tile) error {
	defer store.lock()()
	stored, ok := store.state.tiles[tile.ID]
	if !ok {
		return notFound()
	}
	delete(store.state.tiles, tile.ID)
	if stored.MediaID != nil {
		store.state.deletedMedia = append(store.state.deletedMedia, *stored.MediaID)
	}
	return nil
}

func (store *MemoryStore) DeleteTiles(_ context.Context, bingoID string) error {
	defer store.lock()()
	for id, tile := range store.state.tiles {
		if tile.BingoID == bingoID {
			delete(store.state.tiles, id)
		}
	}
	return nil
}

func (store *MemoryStore) DeleteTilesOutside(_ context.Context, bingoID string, width, height int) error {
	defer store.lock()()
	for id, tile := range store.state.tiles {
		if tile.BingoID == bingoID && (tile.X > width || tile.Y > height) {
			delete(store.state.tiles, id)
		}
	}
	return nil
}

func (store *MemoryStore) tileAt(bingoID string, x, y int) *bingo.Tile {
	for _, tile := range store.state.tiles {
		if tile.BingoID == bingoID && tile.X == x && tile.Y == y {
			return tile
		}
	}
	return nil
}

// # Inspection

// DeletedMedia lists the media IDs removed together with their tiles.
func (store *MemoryStore) DeletedMedia() []string {
	defer store.lock()()
	return append([]string(nil), store.state.deletedMedia...)
}

// RawBingo returns a bingo even when soft-deleted.
func (store *MemoryStore) RawBingo(id string) *bingo.Bingo {
	defer store.lock()()
	if b, ok := store.state.bingos[id]; ok {
		return copyBingo(b)
	}
	return nil
}

// RawTeams returns every team of a bingo, soft-deleted ones included.
func (store *MemoryStore) RawTeams(bingoID string) []*bingo.Team {
	defer store.lock()()
	out := make([]*bingo.Team, 0)
	for _, team := range store.state.teams {
		if team.BingoID == bingoID {
			out = append(out, copyTeam(team))
		}
	}
	return out
}

// SetPoints sets participant and team points to simulate scoring.
func (store *MemoryStore) SetPoints(bingoID string, points int) {
	defer store.lock()()
	for key, participant := range store.state.participants {
		if key.bingoID == bingoID {
			participant.Points = points
		}
	}
	for _, team := range store.state.teams {
		if team.BingoID == bingoID {
			team.Points = points
		}
	}
}

// # Copies

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	out := *value
	return &out
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	out := *value
	return &out
}

func cloneStamp(stamp *bingo.Stamp) *bingo.Stamp {
	if stamp == nil {
		return nil
	}
	return &bingo.Stamp{At: stamp.At, ByID: cloneString(stamp.ByID)}
}

func copyBingo(b *bingo.Bingo) *bingo.Bingo {
	out := *b
	out.MaxRegistrationDate = cloneTime(b.MaxRegistrationDate)
	out.Started = cloneStamp(b.Started)
	out.Ended = cloneStamp(b.Ended)
	out.Canceled = cloneStamp(b.Canceled)
	out.Reset = cloneStamp(b.Reset)
	out.CreatedByID = cloneString(b.CreatedByID)
	out.DeletedAt = cloneTime(b.DeletedAt)
	return &out
}

func copyParticipant(p *bingo.Participant) *bingo.Participant {
	out := *p
	out.TeamID = cloneString(p.TeamID)
	out.InvitedByID = cloneString(p.InvitedByID)
	return &out
}

func copyTeam(team *bingo.Team) *bingo.Team {
	out := *team
	out.CaptainID = cloneString(team.CaptainID)
	out.DeletedAt = cloneTime(team.DeletedAt)
	return &out
}

func copyTile(tile *bingo.Tile) *bingo.Tile {
	out := *tile
	out.MediaID = cloneString(tile.MediaID)
	out.ImageURL = cloneString(tile.ImageURL)
	out.CreatedByID = cloneString(tile.CreatedByID)
	out.Items = append([]bingo.TileItem{}, tile.Items...)
	return &out
}
