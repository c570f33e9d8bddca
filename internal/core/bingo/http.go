// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/middleware"
	requestutil "github.com/RuneBingo/RuneBingo-sub000/internal/platform/request"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer over [Service]. Authorization is decided
// by the service; the router only separates anonymous reads from writes.
type Handler struct {
	service *Service
}

// NewHandler constructs a new bingo [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the bingo endpoints.
//
// # Routing Strategy
//
//   - Reads (Public): Visibility rules still hide private bingos.
//   - Commands (Authenticated): Every mutation requires a bearer token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Reads
	router.Get("/", handler.listBingos)
	router.Get("/{bingo}", handler.getBingo)
	router.Get("/{bingo}/participants", handler.listParticipants)
	router.Get("/{bingo}/teams", handler.listTeams)
	router.Get("/{bingo}/tiles", handler.listTiles)
	router.Get("/{bingo}/tiles/{x}/{y}", handler.getTile)

	// ## Commands
	router.Group(func(auth chi.Router) {
		auth.Use(middleware.RequireAuth)

		// Lifecycle
		auth.Post("/", handler.createBingo)
		auth.Patch("/{bingo}", handler.updateBingo)
		auth.Delete("/{bingo}", handler.deleteBingo)
		auth.Post("/{bingo}/start", handler.startBingo)
		auth.Post("/{bingo}/end", handler.endBingo)
		auth.Post("/{bingo}/cancel", handler.cancelBingo)
		auth.Post("/{bingo}/reset", handler.resetBingo)
		auth.Get("/{bingo}/activities", handler.listActivities)

		// Roster
		auth.Post("/{bingo}/participants", handler.addParticipant)
		auth.Patch("/{bingo}/participants/{username}", handler.updateParticipant)
		auth.Delete("/{bingo}/participants/{username}", handler.removeParticipant)
		auth.Post("/{bingo}/participants/{username}/kick", handler.kickParticipant)
		auth.Post("/{bingo}/leave", handler.leaveBingo)
		auth.Post("/{bingo}/transfer-ownership", handler.transferOwnership)

		// Teams
		auth.Post("/{bingo}/teams", handler.createTeam)
		auth.Patch("/{bingo}/teams/{team}", handler.updateTeam)
		auth.Delete("/{bingo}/teams/{team}", handler.deleteTeam)

		// Grid
		auth.Put("/{bingo}/tiles/{x}/{y}", handler.putTile)
		auth.Delete("/{bingo}/tiles/{x}/{y}", handler.deleteTile)
		auth.Post("/{bingo}/tiles/{x}/{y}/move", handler.moveTile)
	})

	return router
}

// # Request Helpers

// actorFrom builds the requester from the verified token, or the anonymous actor.
func actorFrom(request *http.Request) Actor {
	claims := requestutil.Claims(request)
	if claims == nil {
		return Actor{}
	}
	return Actor{
		UserID:     claims.UserID,
		Username:   claims.Username,
		GlobalRole: claims.GlobalRole(),
	}
}

func bingoRef(request *http.Request) string {
	return requestutil.Param(request, "bingo")
}

// cell reads the {x}/{y} path parameters.
func cell(request *http.Request) (int, int, error) {
	x, err := requestutil.IntParam(request, "x")
	if err != nil {
		return 0, 0, err
	}
	y, err := requestutil.IntParam(request, "y")
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// dateLayout is the wire format of calendar dates.
const dateLayout = time.DateOnly

// parseDate reads a YYYY-MM-DD value as UTC midnight.
func parseDate(validator *validate.Validator, field, value string) time.Time {
	parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.UTC)
	validator.Custom(field, err != nil, "validation.date")
	return parsed
}

// parseOptionalDate is [parseDate] for an optional field.
func parseOptionalDate(validator *validate.Validator, field string, value *string) *time.Time {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	parsed := parseDate(validator, field, *value)
	return &parsed
}
