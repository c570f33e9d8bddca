// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"net/http"

	requestutil "github.com/RuneBingo/RuneBingo-sub000/internal/platform/request"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/respond"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/validate"
)

type addParticipantRequest struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type updateParticipantRequest struct {
	Role *Role   `json:"role"`
	Team *string `json:"team"`
}

type kickRequest struct {
	DeleteSubmissions bool `json:"delete_submissions"`
}

type transferRequest struct {
	Username string `json:"username"`
}

func (handler *Handler) listParticipants(writer http.ResponseWriter, request *http.Request) {
	participants, err := handler.service.ListParticipants(request.Context(), actorFrom(request), bingoRef(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, participants)
}

func (handler *Handler) addParticipant(writer http.ResponseWriter, request *http.Request) {
	var body addParticipantRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("username", body.Username)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	participant, err := handler.service.AddParticipant(request.Context(), actorFrom(request), bingoRef(request), AddParticipantInput{
		Username: body.Username,
		Role:     body.Role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, participant)
}

func (handler *Handler) updateParticipant(writer http.ResponseWriter, request *http.Request) {
	var body updateParticipantRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	participant, err := handler.service.UpdateParticipant(request.Context(), actorFrom(request), bingoRef(request),
		requestutil.Param(request, "username"),
		UpdateParticipantInput{Role: body.Role, TeamName: body.Team},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, participant)
}

func (handler *Handler) removeParticipant(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.RemoveParticipant(request.Context(), actorFrom(request), bingoRef(request), requestutil.Param(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) kickParticipant(writer http.ResponseWriter, request *http.Request) {
	var body kickRequest
	if request.ContentLength > 0 {
		if err := requestutil.DecodeJSON(request, &body); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	err := handler.service.KickParticipant(request.Context(), actorFrom(request), bingoRef(request),
		requestutil.Param(request, "username"), body.DeleteSubmissions)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) leaveBingo(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.LeaveBingo(request.Context(), actorFrom(request), bingoRef(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) transferOwnership(writer http.ResponseWriter, request *http.Request) {
	var body transferRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("username", body.Username)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.TransferOwnership(request.Context(), actorFrom(request), bingoRef(request), body.Username); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
