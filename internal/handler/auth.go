// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"math"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/middleware"
	"github.com/olegiv/artspace-console/internal/model"
	"github.com/olegiv/artspace-console/internal/render"
	"github.com/olegiv/artspace-console/internal/service"
	"github.com/olegiv/artspace-console/internal/session"
)

// AuthHandler handles login, registration and logout.
type AuthHandler struct {
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
	logger          *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(renderer *render.Renderer, sm *scs.SessionManager, events *service.EventService, lp *middleware.LoginProtection, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    events,
		loginProtection: lp,
		logger:          logger,
	}
}

// LoginForm renders the login page. Already authenticated visitors are
// sent on to next.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := middleware.SafeNext(r.URL.Query().Get("next"), RouteRoot)
	if store := middleware.GetStore(r); store != nil && store.IsAuthenticated() {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, url.Values{"next": {next}}, nil, "")
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectLogin, i18n.T(lang, "msg.invalid_form"))
		return
	}

	f := newFormReader(r.PostForm)
	login := f.required("login")
	password := f.required("password")
	next := middleware.SafeNext(r.PostForm.Get("next"), RouteRoot)
	form := url.Values{"login": {login}, "next": {next}}

	if !f.errs.ok() {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, form, f.errs, "")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsLocked(login); locked {
			minutes := int(math.Ceil(remaining.Minutes()))
			h.renderLogin(w, r, http.StatusTooManyRequests, form, nil, i18n.T(lang, "auth.locked", minutes))
			return
		}
	}

	if !store.Login(r.Context(), login, password) {
		h.logEvent(r, model.EventLevelWarning, "Failed login attempt", nil, map[string]any{"login": login})
		if h.loginProtection != nil {
			if locked, _ := h.loginProtection.RecordFailure(login); locked {
				h.logger.Warn("account locked after failed logins", "category", model.EventCategorySecurity, "login", login, "ip", middleware.ClientIP(r))
			}
		}
		alert := store.ConsumeError()
		if alert == "" {
			// Overtaken by a newer login or logout.
			alert = i18n.T(lang, "error.login")
		}
		h.renderLogin(w, r, http.StatusOK, form, nil, alert)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccess(login)
	}

	// Renew the console session token to prevent fixation.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "failed to renew session token", "error", err)
		return
	}
	session.SaveCookies(r.Context(), h.sessionManager, middleware.GetClient(r))

	user := store.User()
	h.logEvent(r, model.EventLevelInfo, "User logged in", user, nil)
	flashSuccess(w, r, h.renderer, next, i18n.T(lang, "auth.welcome", user.DisplayName()))
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form url.Values, errs formErrors, alert string) {
	lang := middleware.GetLang(r)
	renderPage(w, r, h.renderer, status, "auth/login", render.TemplateData{
		Title:  i18n.T(lang, "auth.login"),
		Form:   form,
		Errors: errs.translate(lang),
		Alert:  alert,
	})
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if store := middleware.GetStore(r); store != nil && store.IsAuthenticated() {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, http.StatusOK, url.Values{}, nil, "")
}

// Register handles the registration form. The new account is not logged
// in; the visitor is sent to the login page.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteRegister, i18n.T(lang, "msg.invalid_form"))
		return
	}

	req, errs := decodeRegistration(r.PostForm)
	form := withoutPasswords(r.PostForm)
	if !errs.ok() {
		h.renderRegister(w, r, http.StatusUnprocessableEntity, form, errs, "")
		return
	}

	if !store.Register(r.Context(), req) {
		h.renderRegister(w, r, http.StatusOK, form, nil, store.ConsumeError())
		return
	}

	h.logEvent(r, model.EventLevelInfo, "User registered", nil, map[string]any{"login": req.Login})
	flashSuccess(w, r, h.renderer, RouteLogin, i18n.T(lang, "auth.registered"))
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, form url.Values, errs formErrors, alert string) {
	lang := middleware.GetLang(r)
	renderPage(w, r, h.renderer, status, "auth/register", render.TemplateData{
		Title:  i18n.T(lang, "auth.register"),
		Form:   form,
		Errors: errs.translate(lang),
		Alert:  alert,
	})
}

// Logout ends the backend session and forgets its cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	store := middleware.GetStore(r)

	user := store.User()
	store.Logout(r.Context())
	session.SaveCookies(r.Context(), h.sessionManager, middleware.GetClient(r))

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		h.logger.Error("failed to renew session token", "error", err)
	}

	if user != nil {
		h.logEvent(r, model.EventLevelInfo, "User logged out", user, nil)
	}
	flashSuccess(w, r, h.renderer, RouteRoot, i18n.T(lang, "auth.logged_out"))
}

func (h *AuthHandler) logEvent(r *http.Request, level, message string, user *model.UserProfile, meta map[string]any) {
	if h.eventService == nil {
		return
	}
	_ = h.eventService.LogAuth(r, level, message, user, meta)
}

// withoutPasswords copies form values without password fields so they
// are never echoed back.
func withoutPasswords(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		if k == "password" || k == "confirmPassword" {
			continue
		}
		out[k] = v
	}
	return out
}
