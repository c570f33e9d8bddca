// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/RuneBingo/RuneBingo-sub000/internal/core/activity"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/validate"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/pointer"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/slice"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/uuid"
)

const (
	maxTileTitleLen       = 100
	maxTileDescriptionLen = 1000
	maxTileItems          = 50

	// sentinel is the out-of-grid cell used to free a coordinate during a swap.
	sentinel = -1
)

// ImageURLPattern restricts raw tile images to the OSRS wiki image host.
var ImageURLPattern = regexp.MustCompile(`^https://oldschool\.runescape\.wiki/images/[A-Za-z0-9_()%.,'\-]+\.(png|gif|jpg|jpeg|webp)(\?[A-Za-z0-9=&]*)?$`)

// # Inputs

// TileItemInput is one requested catalog item.
type TileItemInput struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// TileInput is a partial tile. Nil fields are left unchanged on edit.
//
// MediaID and ImageURL are mutually exclusive; setting one clears the other.
// A non-nil Items replaces the item list when it differs from the current one.
type TileInput struct {
	Title          *string
	Description    *string
	Value          *int
	Free           *bool
	CompletionMode *CompletionMode
	MediaID        *string
	ImageURL       *string
	Items          *[]TileItemInput
}

// MoveResult reports where the tile landed and whether it displaced another.
type MoveResult struct {
	Tile    *Tile `json:"tile"`
	Swapped bool  `json:"swapped"`
}

// # Queries

/*
ListTiles returns every tile of the grid with its items.
*/
func (service *Service) ListTiles(ctx context.Context, actor Actor, ref string) ([]*Tile, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}
	return service.store.ListTiles(ctx, s.bingo.ID)
}

/*
GetTile returns the tile at (x, y).

Returns:
  - *Tile: The tile with its items in index order
  - error: BadRequest when out of the grid, NotFound when the cell is empty
*/
func (service *Service) GetTile(ctx context.Context, actor Actor, ref string, x, y int) (*Tile, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	if err := checkCell(s.bingo, x, y); err != nil {
		return nil, err
	}

	tile, err := service.store.FindTile(ctx, s.bingo.ID, x, y)
	if err != nil {
		return nil, notFoundAs(err, "tile.not_found")
	}
	return tile, nil
}

// # Grid Mutation

/*
CreateOrEditTile writes the tile at (x, y), creating it when the cell is
empty. Creation requires title, value, free and completion mode.

Returns:
  - *Tile: The stored tile
  - bool: true when the tile was created
  - error: NotFound, Forbidden, BadRequest, ValidationError
*/
func (service *Service) CreateOrEditTile(ctx context.Context, actor Actor, ref string, x, y int, input TileInput) (*Tile, bool, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, false, err
	}

	if err := checkCell(s.bingo, x, y); err != nil {
		return nil, false, err
	}

	if err := tileGuard(s); err != nil {
		return nil, false, err
	}

	if err := validateTileInput(input); err != nil {
		return nil, false, err
	}

	var items []TileItem
	if input.Items != nil {
		items = indexItems(*input.Items)
		if len(items) > 0 {
			if err := service.catalog.RequireEnabledItems(ctx, itemIDs(items)); err != nil {
				return nil, false, err
			}
		}
	}

	if input.MediaID != nil {
		if _, err := service.catalog.FindMedia(ctx, *input.MediaID); err != nil {
			return nil, false, err
		}
	}

	var tile *Tile
	var created bool
	err = service.commit(ctx, s, tileGuard, func(tx Store, s *scope) error {
		now := service.clock.Now()

		existing, err := tx.FindTile(ctx, s.bingo.ID, x, y)
		switch {
		case err == nil:
			tile = existing
		case apperr.HasCode(err, apperr.CodeNotFound):
			if input.Title == nil || input.Value == nil || input.Free == nil || input.CompletionMode == nil {
				return apperr.BadRequest("tile.create.missing_fields")
			}
			created = true
			tile = &Tile{
				ID:        uuid.New(),
				BingoID:   s.bingo.ID,
				X:         x,
				Y:         y,
				CreatedAt: now,
			}
			if !s.actor.Anonymous() {
				tile.CreatedByID = pointer.To(s.actor.UserID)
			}
		default:
			return err
		}

		applyTileInput(tile, input)
		tile.UpdatedAt = now

		if created {
			if err := tx.CreateTile(ctx, tile); err != nil {
				return conflictAs(err, "tile.already_exists")
			}
		} else if err := tx.UpdateTile(ctx, tile); err != nil {
			return err
		}

		if input.Items != nil && (created || !sameItems(tile.Items, items)) {
			if err := tx.ReplaceTileItems(ctx, tile.ID, items); err != nil {
				return err
			}
			tile.Items = items
		}
		if tile.Items == nil {
			tile.Items = []TileItem{}
		}

		key := activity.KeyTileUpdated
		if created {
			key = activity.KeyTileCreated
		}
		s.emit(now, key, map[string]any{"x": x, "y": y, "title": tile.Title})
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	event := "tile_updated"
	if created {
		event = "tile_created"
	}
	service.logger.Info(event,
		slog.String("bingo_id", s.bingo.ID),
		slog.String("tile_id", tile.ID),
		slog.Int("x", x),
		slog.Int("y", y),
	)

	return tile, created, nil
}

/*
MoveTile moves the tile at (x, y) to (toX, toY). When the destination is
occupied the two tiles exchange positions through the sentinel cell, all
inside one transaction.

Returns:
  - *MoveResult: The moved tile and whether a swap occurred
  - error: NotFound, Forbidden, BadRequest for out-of-grid or same-cell moves
*/
func (service *Service) MoveTile(ctx context.Context, actor Actor, ref string, x, y, toX, toY int) (*MoveResult, error) {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return nil, err
	}

	if err := checkCell(s.bingo, x, y); err != nil {
		return nil, err
	}
	if err := checkCell(s.bingo, toX, toY); err != nil {
		return nil, err
	}
	if x == toX && y == toY {
		return nil, apperr.BadRequest("tile.move.same_position")
	}

	if err := tileGuard(s); err != nil {
		return nil, err
	}

	result := &MoveResult{}
	err = service.commit(ctx, s, tileGuard, func(tx Store, s *scope) error {
		source, err := tx.FindTile(ctx, s.bingo.ID, x, y)
		if err != nil {
			return notFoundAs(err, "tile.not_found")
		}

		target, err := tx.FindTile(ctx, s.bingo.ID, toX, toY)
		if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
			return err
		}

		if target != nil {
			if err := tx.MoveTile(ctx, target.ID, sentinel, sentinel); err != nil {
				return err
			}
		}
		if err := tx.MoveTile(ctx, source.ID, toX, toY); err != nil {
			return err
		}
		if target != nil {
			if err := tx.MoveTile(ctx, target.ID, x, y); err != nil {
				return err
			}
			result.Swapped = true
		}

		source.X, source.Y = toX, toY
		result.Tile = source

		s.emit(service.clock.Now(), activity.KeyTileMoved, map[string]any{
			"x":       x,
			"y":       y,
			"to_x":    toX,
			"to_y":    toY,
			"swapped": result.Swapped,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("tile_moved",
		slog.String("bingo_id", s.bingo.ID),
		slog.String("tile_id", result.Tile.ID),
		slog.Bool("swapped", result.Swapped),
	)

	return result, nil
}

/*
DeleteTile removes the tile at (x, y) with its items and media.

Returns:
  - error: NotFound, Forbidden, BadRequest when out of the grid
*/
func (service *Service) DeleteTile(ctx context.Context, actor Actor, ref string, x, y int) error {
	s, err := service.load(ctx, actor, ref)
	if err != nil {
		return err
	}

	if err := checkCell(s.bingo, x, y); err != nil {
		return err
	}

	if err := tileGuard(s); err != nil {
		return err
	}

	var tileID string
	err = service.commit(ctx, s, tileGuard, func(tx Store, s *scope) error {
		tile, err := tx.FindTile(ctx, s.bingo.ID, x, y)
		if err != nil {
			return notFoundAs(err, "tile.not_found")
		}
		tileID = tile.ID

		if err := tx.DeleteTile(ctx, tile); err != nil {
			return err
		}

		s.emit(service.clock.Now(), activity.KeyTileDeleted, map[string]any{"x": x, "y": y, "title": tile.Title})
		return nil
	})
	if err != nil {
		return err
	}

	service.logger.Info("tile_deleted", slog.String("bingo_id", s.bingo.ID), slog.String("tile_id", tileID))

	return nil
}

// # Helpers

func tileGuard(s *scope) error {
	if !s.policy().CanCreateOrEditTile() {
		return apperr.Forbidden("tile.forbidden")
	}
	return nil
}

func checkCell(bingo *Bingo, x, y int) error {
	if !bingo.InBounds(x, y) {
		return apperr.BadRequest("tile.out_of_bounds").
			With("x", itoa(x)).
			With("y", itoa(y)).
			With("width", itoa(bingo.Width)).
			With("height", itoa(bingo.Height))
	}
	return nil
}

func validateTileInput(input TileInput) error {
	validator := &validate.Validator{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		validator.Required("title", title).MaxLen("title", title, maxTileTitleLen)
	}
	if input.Description != nil {
		validator.MaxLen("description", *input.Description, maxTileDescriptionLen)
	}
	if input.Value != nil {
		validator.Min("value", *input.Value, 0)
	}
	if input.CompletionMode != nil {
		validator.OneOf("completion_mode", string(*input.CompletionMode), string(CompletionAll), string(CompletionAny))
	}
	if input.MediaID != nil && input.ImageURL != nil {
		validator.Custom("image_url", true, "tile.image.exclusive")
	}
	if input.MediaID != nil {
		validator.UUID("media_id", *input.MediaID)
	}
	if input.ImageURL != nil && *input.ImageURL != "" {
		validator.Matches("image_url", *input.ImageURL, ImageURLPattern, "tile.image.invalid_url")
	}

	if input.Items != nil {
		items := *input.Items
		validator.Custom("items", len(items) > maxTileItems, "tile.items.too_many")

		seen := make(map[int]struct{}, len(items))
		for i, item := range items {
			field := "items[" + itoa(i) + "]"
			validator.Min(field+".item_id", item.ItemID, 1)
			validator.Min(field+".quantity", item.Quantity, 1)
			if _, dup := seen[item.ItemID]; dup {
				validator.Custom(field+".item_id", true, "tile.items.duplicate")
			}
			seen[item.ItemID] = struct{}{}
		}
	}

	return validator.Err()
}

// applyTileInput copies the supplied fields onto tile.
func applyTileInput(tile *Tile, input TileInput) {
	if input.Title != nil {
		tile.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		tile.Description = *input.Description
	}
	if input.Value != nil {
		tile.Value = *input.Value
	}
	if input.Free != nil {
		tile.Free = *input.Free
	}
	if input.CompletionMode != nil {
		tile.CompletionMode = *input.CompletionMode
	}
	if input.MediaID != nil {
		tile.MediaID = pointer.To(*input.MediaID)
		tile.ImageURL = nil
	}
	if input.ImageURL != nil {
		tile.MediaID = nil
		tile.ImageURL = nil
		if *input.ImageURL != "" {
			tile.ImageURL = pointer.To(*input.ImageURL)
		}
	}
}

// indexItems assigns dense zero-based indices in request order.
func indexItems(input []TileItemInput) []TileItem {
	items := make([]TileItem, len(input))
	for i, item := range input {
		items[i] = TileItem{ItemID: item.ItemID, Index: i, Quantity: item.Quantity}
	}
	return items
}

func itemIDs(items []TileItem) []int {
	return slice.Map(items, func(item TileItem) int { return item.ItemID })
}

// sameItems compares two lists by position, item and quantity.
func sameItems(current, next []TileItem) bool {
	if len(current) != len(next) {
		return false
	}
	for i := range current {
		if current[i].ItemID != next[i].ItemID || current[i].Quantity != next[i].Quantity {
			return false
		}
	}
	return true
}
