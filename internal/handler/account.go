// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/artspace-console/internal/gallery"
	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/middleware"
	"github.com/olegiv/artspace-console/internal/model"
	"github.com/olegiv/artspace-console/internal/render"
	"github.com/olegiv/artspace-console/internal/service"
	"github.com/olegiv/artspace-console/internal/uikit"
)

// AccountHandler serves the signed-in visitor's own pages.
type AccountHandler struct {
	renderer     *render.Renderer
	eventService *service.EventService
	logger       *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(renderer *render.Renderer, events *service.EventService, logger *slog.Logger) *AccountHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountHandler{renderer: renderer, eventService: events, logger: logger}
}

func (h *AccountHandler) crumbs(lang string, extra ...string) []uikit.Breadcrumb {
	return uikit.Crumbs(append([]string{i18n.T(lang, "nav.profile"), redirectProfile}, extra...)...)
}

// Profile reloads and shows the visitor's profile. A failed reload means
// the backend session is gone, so the visitor is asked to log in again.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)

	profile, err := store.FetchUserProfile(r.Context())
	if err != nil {
		h.logger.Info("profile reload failed", "error", err)
		http.Redirect(w, r, middleware.LoginURL(RouteLogin, r.URL.RequestURI()), http.StatusSeeOther)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "account/profile", render.TemplateData{
		Title:       i18n.T(lang, "nav.profile"),
		Data:        profile,
		Breadcrumbs: h.crumbs(lang),
	})
}

// EditForm renders the profile edit form.
func (h *AccountHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	h.renderEdit(w, r, http.StatusOK, encodeProfile(middleware.GetStore(r).User()), nil, "")
}

// Update saves the profile form.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteProfileEdit, i18n.T(lang, "msg.invalid_form"))
		return
	}

	profile, errs := decodeProfile(r.PostForm, store.User())
	if !errs.ok() {
		h.renderEdit(w, r, http.StatusUnprocessableEntity, r.PostForm, errs, "")
		return
	}

	saved, err := store.UpdateProfile(r.Context(), profile)
	if err != nil {
		h.logger.Warn("profile update failed", "error", err)
		h.renderEdit(w, r, http.StatusOK, r.PostForm, nil, store.ConsumeError())
		return
	}

	if h.eventService != nil {
		_ = h.eventService.LogUser(r, "Profile updated", saved, nil)
	}
	flashSuccess(w, r, h.renderer, redirectProfile, i18n.T(lang, "profile.saved"))
}

func (h *AccountHandler) renderEdit(w http.ResponseWriter, r *http.Request, status int, form url.Values, errs formErrors, alert string) {
	lang := middleware.GetLang(r)
	title := i18n.T(lang, "profile.edit")
	renderPage(w, r, h.renderer, status, "account/profile_edit", render.TemplateData{
		Title:       title,
		Form:        form,
		Errors:      errs.translate(lang),
		Alert:       alert,
		Breadcrumbs: h.crumbs(lang, title, RouteProfileEdit),
	})
}

// TicketsData holds data for the tickets page.
type TicketsData struct {
	Tickets []model.Ticket
}

// Tickets lists the visitor's tickets.
func (h *AccountHandler) Tickets(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	tickets, err := gallery.MyTickets(r.Context(), middleware.GetStore(r))
	if err != nil {
		h.logger.Warn("listing tickets failed", "error", err)
	}

	title := i18n.T(lang, "nav.tickets")
	renderPage(w, r, h.renderer, http.StatusOK, "account/tickets", render.TemplateData{
		Title:       title,
		Data:        TicketsData{Tickets: tickets},
		Breadcrumbs: h.crumbs(lang, title, RouteProfileTickets),
	})
}

// PurchaseTicket handles POST /exhibitions/{id}/tickets.
func (h *AccountHandler) PurchaseTicket(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		flashError(w, r, h.renderer, RouteExhibitions, i18n.T(lang, "msg.not_found", i18n.T(lang, "entity.exhibition")))
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteExhibitions, i18n.T(lang, "msg.invalid_form"))
		return
	}

	f := newFormReader(r.PostForm)
	visit := f.dateTime("visitDate")
	if !f.errs.ok() {
		flashError(w, r, h.renderer, RouteExhibitions, i18n.T(lang, f.errs["visitDate"]))
		return
	}

	ticket, err := gallery.PurchaseTicket(r.Context(), store, id, visit)
	if err != nil {
		h.logger.Warn("ticket purchase failed", "exhibition", id, "error", err)
		flashError(w, r, h.renderer, RouteExhibitions, store.ConsumeError())
		return
	}

	if h.eventService != nil {
		_ = h.eventService.LogTicket(r, "Ticket purchased", store.User(), map[string]any{
			"exhibition_id": id,
			"ticket_code":   ticket.TicketCode,
		})
	}
	flashSuccess(w, r, h.renderer, redirectTickets, i18n.T(lang, "tickets.purchased", ticket.TicketCode))
}
