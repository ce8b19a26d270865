// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/artspace-console/internal/gallery"
	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/middleware"
	"github.com/olegiv/artspace-console/internal/model"
	"github.com/olegiv/artspace-console/internal/render"
	"github.com/olegiv/artspace-console/internal/search"
	"github.com/olegiv/artspace-console/internal/uikit"
)

// CatalogHandler serves the public gallery pages.
type CatalogHandler struct {
	renderer  *render.Renderer
	debouncer *search.Debouncer
	logger    *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(renderer *render.Renderer, debouncer *search.Debouncer, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{renderer: renderer, debouncer: debouncer, logger: logger}
}

// HomeData holds data for the home page.
type HomeData struct {
	Exhibitions []model.Exhibition
}

// Home renders the landing page with the exhibitions running today.
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	page := gallery.CurrentExhibitions(r.Context(), middleware.GetStore(r), 0, HomeExhibitions)

	renderPage(w, r, h.renderer, http.StatusOK, "public/home", render.TemplateData{
		Title: i18n.T(lang, "home.title"),
		Data:  HomeData{Exhibitions: page.Content},
	})
}

// Artworks handles GET /artworks.
func (h *CatalogHandler) Artworks(w http.ResponseWriter, r *http.Request) {
	catalogList(h, w, r, gallery.Artworks, RouteArtworks)
}

// Artists handles GET /artists.
func (h *CatalogHandler) Artists(w http.ResponseWriter, r *http.Request) {
	catalogList(h, w, r, gallery.Artists, RouteArtists)
}

// Exhibitions handles GET /exhibitions.
func (h *CatalogHandler) Exhibitions(w http.ResponseWriter, r *http.Request) {
	catalogList(h, w, r, gallery.Exhibitions, RouteExhibitions)
}

// catalogList renders a searchable grid of one resource, or only its
// results block for live search.
func catalogList[T any](h *CatalogHandler, w http.ResponseWriter, r *http.Request, res gallery.Resource[T], basePath string) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)
	name := res.Name()
	fragment := isFragment(r)

	if fragment && !debounce(w, r, h.debouncer, "public:"+name) {
		return
	}

	criteria := model.CriteriaFromQuery(r.URL.Query(), model.SearchFields[name])
	page := res.List(r.Context(), store, uikit.ParsePageIndex(r), 0, criteria)

	data := render.TemplateData{
		Title: i18n.T(lang, "nav."+name),
		Form:  criteria.Query(),
		Data: ListData[T]{
			Resource:   name,
			BasePath:   basePath,
			Items:      page.Content,
			Total:      page.TotalElements,
			Criteria:   criteria,
			Searching:  criteria.Active(),
			Fragment:   fragment,
			Pagination: uikit.BuildPagination(page.Number, page.TotalPages, page.TotalElements, page.Size, basePath, r.URL.Query()),
		},
	}

	tmpl := "public/" + name
	if fragment {
		data.Alert = store.ConsumeError()
		if err := h.renderer.RenderFragment(w, r, tmpl, "results", data); err != nil {
			logAndInternalError(w, "failed to render results", "template", tmpl, "error", err)
		}
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, tmpl, data)
}

// Loading renders the placeholder served while a visitor's session is
// still being checked.
func (h *CatalogHandler) Loading(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	renderPage(w, r, h.renderer, http.StatusOK, "public/loading", render.TemplateData{
		Title: i18n.T(lang, "loading.title"),
	})
}

// NotFound renders the 404 page.
func (h *CatalogHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	renderPage(w, r, h.renderer, http.StatusNotFound, "public/error", render.TemplateData{
		Title: i18n.T(lang, "error.not_found"),
	})
}
