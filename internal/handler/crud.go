// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/artspace-console/internal/gallery"
	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/middleware"
	"github.com/olegiv/artspace-console/internal/model"
	"github.com/olegiv/artspace-console/internal/render"
	"github.com/olegiv/artspace-console/internal/search"
	"github.com/olegiv/artspace-console/internal/service"
	"github.com/olegiv/artspace-console/internal/session"
	"github.com/olegiv/artspace-console/internal/uikit"
)

// ResourceForm describes how one admin resource is listed and edited.
type ResourceForm[T any] struct {
	Resource gallery.Resource[T]
	// Entity is the i18n key of the singular entity name.
	Entity string
	// Category is the audit event category of changes.
	Category string
	Decode   func(values url.Values, creating bool) (T, formErrors)
	Encode   func(T) url.Values
	ID       func(T) int64
	Label    func(T) string
	// Options loads the choices a form needs, such as the artist list.
	// A failed load still returns whatever choices it has.
	Options func(ctx context.Context, s *session.Store) (map[string]any, error)
}

// CRUDHandler serves the admin list and forms of one resource.
type CRUDHandler[T any] struct {
	form      ResourceForm[T]
	renderer  *render.Renderer
	events    *service.EventService
	debouncer *search.Debouncer
	logger    *slog.Logger
}

// NewCRUDHandler creates a CRUDHandler.
func NewCRUDHandler[T any](form ResourceForm[T], renderer *render.Renderer, events *service.EventService, debouncer *search.Debouncer, logger *slog.Logger) *CRUDHandler[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &CRUDHandler[T]{
		form:      form,
		renderer:  renderer,
		events:    events,
		debouncer: debouncer,
		logger:    logger,
	}
}

// ListData holds data for an admin list template.
type ListData[T any] struct {
	Resource   string
	BasePath   string
	Items      []T
	Total      int64
	Criteria   model.SearchCriteria
	Searching  bool
	Fragment   bool
	Pagination uikit.Pagination
}

// FormData holds data for an admin form template.
type FormData struct {
	Resource string
	BasePath string
	Action   string
	IsEdit   bool
	ID       int64
	Options  map[string]any
}

// Routes registers the handler under its resource name.
func (h *CRUDHandler[T]) Routes(r chi.Router) {
	r.Route("/"+h.name(), func(r chi.Router) {
		r.Get(RouteRoot, h.List)
		r.Get(RouteSuffixNew, h.New)
		r.Post(RouteRoot, h.Create)
		r.Get(RouteSuffixEdit, h.Edit)
		r.Put(RouteParamID, h.Update)
		r.Post(RouteParamID, h.Update)
		r.Delete(RouteParamID, h.Delete)
		r.Post(RouteSuffixDelete, h.Delete)
	})
}

func (h *CRUDHandler[T]) name() string {
	return h.form.Resource.Name()
}

func (h *CRUDHandler[T]) basePath() string {
	return RouteAdmin + "/" + h.name()
}

func (h *CRUDHandler[T]) crumbs(lang string, extra ...string) []uikit.Breadcrumb {
	pairs := []string{
		i18n.T(lang, "nav.dashboard"), redirectAdmin,
		i18n.T(lang, "nav."+h.name()), h.basePath(),
	}
	return uikit.Crumbs(append(pairs, extra...)...)
}

// List handles GET /admin/{resource}. With fragment=1 only the results
// table is rendered, after the visitor has stopped typing.
func (h *CRUDHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)
	fragment := isFragment(r)

	if fragment && !debounce(w, r, h.debouncer, "admin:"+h.name()) {
		return
	}

	criteria := model.CriteriaFromQuery(r.URL.Query(), model.SearchFields[h.name()])
	index := uikit.ParsePageIndex(r)
	page := h.form.Resource.List(r.Context(), store, index, 0, criteria)

	data := render.TemplateData{
		Title: i18n.T(lang, "nav."+h.name()),
		Form:  criteria.Query(),
		Data: ListData[T]{
			Resource:   h.name(),
			BasePath:   h.basePath(),
			Items:      page.Content,
			Total:      page.TotalElements,
			Criteria:   criteria,
			Searching:  criteria.Active(),
			Fragment:   fragment,
			Pagination: uikit.BuildPagination(page.Number, page.TotalPages, page.TotalElements, page.Size, h.basePath(), r.URL.Query()),
		},
		Breadcrumbs: h.crumbs(lang),
	}

	tmpl := "admin/" + h.name()
	if fragment {
		data.Alert = store.ConsumeError()
		if err := h.renderer.RenderFragment(w, r, tmpl, "results", data); err != nil {
			logAndInternalError(w, "failed to render results", "template", tmpl, "error", err)
		}
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, tmpl, data)
}

// New handles GET /admin/{resource}/new.
func (h *CRUDHandler[T]) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, formState{values: url.Values{}})
}

// Create handles POST /admin/{resource}.
func (h *CRUDHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, h.basePath(), i18n.T(lang, "msg.invalid_form"))
		return
	}

	item, errs := h.form.Decode(r.PostForm, true)
	if !errs.ok() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formState{values: r.PostForm, errs: errs})
		return
	}

	saved, err := h.form.Resource.Create(r.Context(), store, item)
	if err != nil {
		h.logger.Warn("create failed", "resource", h.name(), "error", err)
		h.renderForm(w, r, http.StatusOK, formState{values: r.PostForm, alert: store.ConsumeError()})
		return
	}

	h.audit(r, fmt.Sprintf("%s created", h.name()), h.form.ID(saved), h.form.Label(saved))
	flashSuccess(w, r, h.renderer, h.basePath(), i18n.T(lang, "msg.created", i18n.T(lang, h.form.Entity)))
}

// Edit handles GET /admin/{resource}/{id}/edit.
func (h *CRUDHandler[T]) Edit(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		flashError(w, r, h.renderer, h.basePath(), i18n.T(lang, "msg.not_found", i18n.T(lang, h.form.Entity)))
		return
	}

	item, err := h.form.Resource.Get(r.Context(), store, id)
	if err != nil {
		flashError(w, r, h.renderer, h.basePath(), store.ConsumeError())
		return
	}

	h.renderForm(w, r, http.StatusOK, formState{values: h.form.Encode(item), id: id})
}

// Update handles PUT (or POST) /admin/{resource}/{id}.
func (h *CRUDHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		flashError(w, r, h.renderer, h.basePath(), i18n.T(lang, "msg.not_found", i18n.T(lang, h.form.Entity)))
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, h.basePath(), i18n.T(lang, "msg.invalid_form"))
		return
	}

	item, errs := h.form.Decode(r.PostForm, false)
	if !errs.ok() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, formState{values: r.PostForm, errs: errs, id: id})
		return
	}

	saved, err := h.form.Resource.Update(r.Context(), store, id, item)
	if err != nil {
		h.logger.Warn("update failed", "resource", h.name(), "id", id, "error", err)
		h.renderForm(w, r, http.StatusOK, formState{values: r.PostForm, id: id, alert: store.ConsumeError()})
		return
	}

	h.audit(r, fmt.Sprintf("%s updated", h.name()), id, h.form.Label(saved))
	flashSuccess(w, r, h.renderer, h.basePath(), i18n.T(lang, "msg.updated", i18n.T(lang, h.form.Entity)))
}

// Delete handles DELETE /admin/{resource}/{id} and its POST fallback.
// Either way the list is shown again from the first page.
func (h *CRUDHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)
	firstPage := fmt.Sprintf(redirectFirstPageFmt, h.basePath())

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		flashError(w, r, h.renderer, firstPage, i18n.T(lang, "msg.not_found", i18n.T(lang, h.form.Entity)))
		return
	}

	if err := h.form.Resource.Delete(r.Context(), store, id); err != nil {
		h.logger.Warn("delete failed", "resource", h.name(), "id", id, "error", err)
		flashError(w, r, h.renderer, firstPage, store.ConsumeError())
		return
	}

	h.audit(r, fmt.Sprintf("%s deleted", h.name()), id, "")
	flashSuccess(w, r, h.renderer, firstPage, i18n.T(lang, "msg.deleted", i18n.T(lang, h.form.Entity)))
}

type formState struct {
	values url.Values
	errs   formErrors
	alert  string
	id     int64
}

func (h *CRUDHandler[T]) renderForm(w http.ResponseWriter, r *http.Request, status int, st formState) {
	lang := middleware.GetLang(r)
	isEdit := st.id > 0

	title := i18n.T(lang, "action.new", i18n.T(lang, h.form.Entity))
	action := h.basePath()
	if isEdit {
		title = i18n.T(lang, "action.edit", i18n.T(lang, h.form.Entity))
		action = fmt.Sprintf("%s/%d", h.basePath(), st.id)
	}

	var options map[string]any
	if h.form.Options != nil {
		store := middleware.GetStore(r)
		var err error
		options, err = h.form.Options(r.Context(), store)
		if err != nil {
			h.logger.Warn("failed to load form choices", "resource", h.name(), "error", err)
			// Show the load failure here rather than on a later page.
			if msg := store.ConsumeError(); st.alert == "" {
				st.alert = msg
			}
		}
	}

	renderPage(w, r, h.renderer, status, "admin/"+h.name()+"_form", render.TemplateData{
		Title:  title,
		Form:   st.values,
		Errors: st.errs.translate(lang),
		Alert:  st.alert,
		Data: FormData{
			Resource: h.name(),
			BasePath: h.basePath(),
			Action:   action,
			IsEdit:   isEdit,
			ID:       st.id,
			Options:  options,
		},
		Breadcrumbs: h.crumbs(lang, title, r.URL.Path),
	})
}

func (h *CRUDHandler[T]) audit(r *http.Request, message string, id int64, label string) {
	if h.events == nil {
		return
	}
	meta := map[string]any{"resource": h.name(), "id": id}
	if label != "" {
		meta["label"] = label
	}
	_ = h.events.LogRequest(r, model.EventLevelInfo, h.form.Category, message, middleware.GetStore(r).User(), meta)
}

// Admin resource definitions.

// ArtworkForm edits artworks.
var ArtworkForm = ResourceForm[model.Artwork]{
	Resource: gallery.Artworks,
	Entity:   "entity.artwork",
	Category: model.EventCategoryCatalog,
	Decode:   decodeArtwork,
	Encode:   encodeArtwork,
	ID:       func(a model.Artwork) int64 { return a.ID },
	Label:    func(a model.Artwork) string { return a.Title },
	Options: func(ctx context.Context, s *session.Store) (map[string]any, error) {
		artists, errArtists := gallery.Artists.All(ctx, s)
		exhibitions, errExhibitions := gallery.Exhibitions.All(ctx, s)
		return map[string]any{"Artists": artists, "Exhibitions": exhibitions}, errors.Join(errArtists, errExhibitions)
	},
}

// ArtistForm edits artists.
var ArtistForm = ResourceForm[model.Artist]{
	Resource: gallery.Artists,
	Entity:   "entity.artist",
	Category: model.EventCategoryCatalog,
	Decode:   decodeArtist,
	Encode:   encodeArtist,
	ID:       func(a model.Artist) int64 { return a.ID },
	Label:    func(a model.Artist) string { return a.Name },
	Options: func(ctx context.Context, s *session.Store) (map[string]any, error) {
		artworks, err := gallery.Artworks.All(ctx, s)
		return map[string]any{"Artworks": artworks}, err
	},
}

// ExhibitionForm edits exhibitions.
var ExhibitionForm = ResourceForm[model.Exhibition]{
	Resource: gallery.Exhibitions,
	Entity:   "entity.exhibition",
	Category: model.EventCategoryCatalog,
	Decode:   decodeExhibition,
	Encode:   encodeExhibition,
	ID:       func(e model.Exhibition) int64 { return e.ID },
	Label:    func(e model.Exhibition) string { return e.Title },
	Options: func(ctx context.Context, s *session.Store) (map[string]any, error) {
		artworks, err := gallery.Artworks.All(ctx, s)
		return map[string]any{"Artworks": artworks}, err
	},
}

// UserForm edits users.
var UserForm = ResourceForm[model.User]{
	Resource: gallery.Users,
	Entity:   "entity.user",
	Category: model.EventCategoryUser,
	Decode:   decodeUser,
	Encode:   encodeUser,
	ID:       func(u model.User) int64 { return u.ID },
	Label:    func(u model.User) string { return u.Login },
}
