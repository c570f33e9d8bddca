// Copyright (c) 2026 RuneBingo. All rights reserved.

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/RuneBingo/RuneBingo-sub000/internal/platform/request"
	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/respond"
	"github.com/RuneBingo/RuneBingo-sub000/pkg/pagination"
)

// Handler exposes the item picker.
type Handler struct {
	service *Service
}

// NewHandler constructs a new catalog [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the catalog endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.searchItems)
	return router
}

// searchItems handles GET /items?q=&enabled=&page=&limit=.
func (handler *Handler) searchItems(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)
	filter := Filter{
		Query:       requestutil.Query(request, "q"),
		EnabledOnly: requestutil.QueryBool(request, "enabled"),
	}

	items, total, err := handler.service.SearchItems(request.Context(), filter, page.Limit, page.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(page.Page, page.Limit, total))
}
