// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"net/http"

	requestutil "github.com/RuneBingo/RuneBingo-sub000/internal/platform/request"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/respond"
)

type tileRequest struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	Value          *int             `json:"value"`
	Free           *bool            `json:"free"`
	CompletionMode *CompletionMode  `json:"completion_mode"`
	MediaID        *string          `json:"media_id"`
	ImageURL       *string          `json:"image_url"`
	Items          *[]TileItemInput `json:"items"`
}

type moveTileRequest struct {
	ToX int `json:"to_x"`
	ToY int `json:"to_y"`
}

func (handler *Handler) listTiles(writer http.ResponseWriter, request *http.Request) {
	tiles, err := handler.service.ListTiles(request.Context(), actorFrom(request), bingoRef(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tiles)
}

func (handler *Handler) getTile(writer http.ResponseWriter, request *http.Request) {
	x, y, err := cell(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tile, err := handler.service.GetTile(request.Context(), actorFrom(request), bingoRef(request), x, y)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tile)
}

// putTile creates or edits the tile at {x}/{y}; 201 on creation, 200 otherwise.
func (handler *Handler) putTile(writer http.ResponseWriter, request *http.Request) {
	x, y, err := cell(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body tileRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tile, created, err := handler.service.CreateOrEditTile(request.Context(), actorFrom(request), bingoRef(request), x, y, TileInput{
		Title:          body.Title,
		Description:    body.Description,
		Value:          body.Value,
		Free:           body.Free,
		CompletionMode: body.CompletionMode,
		MediaID:        body.MediaID,
		ImageURL:       body.ImageURL,
		Items:          body.Items,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if created {
		respond.Created(writer, tile)
		return
	}
	respond.OK(writer, tile)
}

func (handler *Handler) moveTile(writer http.ResponseWriter, request *http.Request) {
	x, y, err := cell(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body moveTileRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.MoveTile(request.Context(), actorFrom(request), bingoRef(request), x, y, body.ToX, body.ToY)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) deleteTile(writer http.ResponseWriter, request *http.Request) {
	x, y, err := cell(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteTile(request.Context(), actorFrom(request), bingoRef(request), x, y); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
