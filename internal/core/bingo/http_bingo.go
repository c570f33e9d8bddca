// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"net/http"

	requestutil "github.com/RuneBingo/RuneBingo-sub000/internal/platform/request"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/respond"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/validate"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/pagination"
)

// # Payloads

// bingoResponse adds the derived status to the aggregate.
type bingoResponse struct {
	*Bingo
	Status Status `json:"status"`
}

func toResponse(bingo *Bingo) bingoResponse {
	return bingoResponse{Bingo: bingo, Status: bingo.Status()}
}

type createBingoRequest struct {
	Language            string  `json:"language"`
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	Private             bool    `json:"private"`
	Width               int     `json:"width"`
	Height              int     `json:"height"`
	FullLineValue       int     `json:"full_line_value"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	MaxRegistrationDate *string `json:"max_registration_date"`
}

type updateBingoRequest struct {
	Language            *string `json:"language"`
	Title               *string `json:"title"`
	Description         *string `json:"description"`
	Private             *bool   `json:"private"`
	Width               *int    `json:"width"`
	Height              *int    `json:"height"`
	FullLineValue       *int    `json:"full_line_value"`
	StartDate           *string `json:"start_date"`
	EndDate             *string `json:"end_date"`
	MaxRegistrationDate *string `json:"max_registration_date"`
}

type startBingoRequest struct {
	EndDate *string `json:"end_date"`
}

type resetBingoRequest struct {
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	MaxRegistrationDate *string `json:"max_registration_date"`
	DeleteTiles         bool    `json:"delete_tiles"`
	DeleteTeams         bool    `json:"delete_teams"`
	DeleteParticipants  bool    `json:"delete_participants"`
}

// # Queries

// listBingos handles GET /bingos?q=&status=&page=&limit=.
func (handler *Handler) listBingos(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)

	filter := Filter{Query: requestutil.Query(request, "q")}
	if raw := requestutil.Query(request, "status"); raw != "" {
		status := Status(raw)
		switch status {
		case StatusPending, StatusOngoing, StatusCompleted, StatusCanceled:
			filter.Status = &status
		default:
			respond.Error(writer, request, validate.FieldErr("status", "validation.one_of"))
			return
		}
	}

	bingos, total, err := handler.service.ListBingos(request.Context(), actorFrom(request), filter, page.Limit, page.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	views := make([]bingoResponse, len(bingos))
	for i, bingo := range bingos {
		views[i] = toResponse(bingo)
	}
	respond.Paginated(writer, views, pagination.NewMeta(page.Page, page.Limit, total))
}

func (handler *Handler) getBingo(writer http.ResponseWriter, request *http.Request) {
	bingo, err := handler.service.GetBingo(request.Context(), actorFrom(request), bingoRef(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, toResponse(bingo))
}

func (handler *Handler) listActivities(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)

	views, total, err := handler.service.ListActivities(request.Context(), actorFrom(request), bingoRef(request), page.Limit, page.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, views, pagination.NewMeta(page.Page, page.Limit, total))
}

// # Lifecycle Commands

func (handler *Handler) createBingo(writer http.ResponseWriter, request *http.Request) {
	var body createBingoRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	input := CreateInput{
		Language:            body.Language,
		Title:               body.Title,
		Description:         body.Description,
		Private:             body.Private,
		Width:               body.Width,
		Height:              body.Height,
		FullLineValue:       body.FullLineValue,
		StartDate:           parseDate(validator, string(FieldStartDate), body.StartDate),
		EndDate:             parseDate(validator, string(FieldEndDate), body.EndDate),
		MaxRegistrationDate: parseOptionalDate(validator, string(FieldMaxRegistrationDate), body.MaxRegistrationDate),
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bingo, err := handler.service.CreateBingo(request.Context(), actorFrom(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, toResponse(bingo))
}

func (handler *Handler) updateBingo(writer http.ResponseWriter, request *http.Request) {
	var body updateBingoRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	input := UpdateInput{
		Language:            body.Language,
		Title:               body.Title,
		Description:         body.Description,
		Private:             body.Private,
		Width:               body.Width,
		Height:              body.Height,
		FullLineValue:       body.FullLineValue,
		StartDate:           parseOptionalDate(validator, string(FieldStartDate), body.StartDate),
		EndDate:             parseOptionalDate(validator, string(FieldEndDate), body.EndDate),
		MaxRegistrationDate: parseOptionalDate(validator, string(FieldMaxRegistrationDate), body.MaxRegistrationDate),
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bingo, err := handler.service.UpdateBingo(request.Context(), actorFrom(request), bingoRef(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, toResponse(bingo))
}

func (handler *Handler) deleteBingo(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteBingo(request.Context(), actorFrom(request), bingoRef(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// startBingo accepts an optional body overriding the end date.
func (handler *Handler) startBingo(writer http.ResponseWriter, request *http.Request) {
	var body startBingoRequest
	if request.ContentLength > 0 {
		if err := requestutil.DecodeJSON(request, &body); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	validator := &validate.Validator{}
	endDate := parseOptionalDate(validator, string(FieldEndDate), body.EndDate)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bingo, err := handler.service.StartBingo(request.Context(), actorFrom(request), bingoRef(request), endDate)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, toResponse(bingo))
}

func (handler *Handler) endBingo(writer http.ResponseWriter, request *http.Request) {
	bingo, err := handler.service.EndBingo(request.Context(), actorFrom(request), bingoRef(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, toResponse(bingo))
}

func (handler *Handler) cancelBingo(writer http.ResponseWriter, request *http.Request) {
	bingo, err := handler.service.CancelBingo(request.Context(), actorFrom(request), bingoRef(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, toResponse(bingo))
}

func (handler *Handler) resetBingo(writer http.ResponseWriter, request *http.Request) {
	var body resetBingoRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	input := ResetInput{
		StartDate:           parseDate(validator, string(FieldStartDate), body.StartDate),
		EndDate:             parseDate(validator, string(FieldEndDate), body.EndDate),
		MaxRegistrationDate: parseOptionalDate(validator, string(FieldMaxRegistrationDate), body.MaxRegistrationDate),
		DeleteTiles:         body.DeleteTiles,
		DeleteTeams:         body.DeleteTeams,
		DeleteParticipants:  body.DeleteParticipants,
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bingo, err := handler.service.ResetBingo(request.Context(), actorFrom(request), bingoRef(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, toResponse(bingo))
}
