// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"net/http"

	requestutil "github.com/RuneBingo/RuneBingo-sub000/internal/platform/request"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/respond"
)

type createTeamRequest struct {
	Name string `json:"name"`
}

type updateTeamRequest struct {
	Name    *string `json:"name"`
	Captain *string `json:"captain"`
}

func (handler *Handler) listTeams(writer http.ResponseWriter, request *http.Request) {
	teams, err := handler.service.ListTeams(request.Context(), actorFrom(request), bingoRef(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, teams)
}

func (handler *Handler) createTeam(writer http.ResponseWriter, request *http.Request) {
	var body createTeamRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	team, err := handler.service.CreateTeam(request.Context(), actorFrom(request), bingoRef(request), body.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, team)
}

func (handler *Handler) updateTeam(writer http.ResponseWriter, request *http.Request) {
	var body updateTeamRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	team, err := handler.service.UpdateTeam(request.Context(), actorFrom(request), bingoRef(request),
		requestutil.Param(request, "team"),
		UpdateTeamInput{Name: body.Name, CaptainUsername: body.Captain},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, team)
}

func (handler *Handler) deleteTeam(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.DeleteTeam(request.Context(), actorFrom(request), bingoRef(request), requestutil.Param(request, "team"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
