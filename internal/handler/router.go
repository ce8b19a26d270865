// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/artspace-console/internal/middleware"
	"github.com/olegiv/artspace-console/internal/render"
	"github.com/olegiv/artspace-console/internal/search"
	"github.com/olegiv/artspace-console/internal/service"
	"github.com/olegiv/artspace-console/internal/session"
)

// RouterConfig holds everything the console routes need.
type RouterConfig struct {
	DB              *sql.DB
	Renderer        *render.Renderer
	SessionManager  *scs.SessionManager
	Registry        *session.Registry
	EventService    *service.EventService
	LoginProtection *middleware.LoginProtection
	Debouncer       *search.Debouncer
	StaticFS        fs.FS
	GuardWait       time.Duration
	Version         string
	Logger          *slog.Logger
	// Middlewares run before sessions are loaded, outermost first.
	Middlewares []func(http.Handler) http.Handler
}

// NewRouter builds the console's route tree.
func NewRouter(cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := NewAuthHandler(cfg.Renderer, cfg.SessionManager, cfg.EventService, cfg.LoginProtection, logger)
	languageHandler := NewLanguageHandler(cfg.SessionManager)
	catalogHandler := NewCatalogHandler(cfg.Renderer, cfg.Debouncer, logger)
	accountHandler := NewAccountHandler(cfg.Renderer, cfg.EventService, logger)
	adminHandler := NewAdminHandler(cfg.Renderer, cfg.EventService, logger)
	eventsHandler := NewEventsHandler(cfg.Renderer, cfg.EventService)
	healthHandler := NewHealthHandler(cfg.DB, cfg.Registry, cfg.Version)

	r := chi.NewRouter()
	for _, mw := range cfg.Middlewares {
		r.Use(mw)
	}

	// Probes and assets need no visitor session.
	r.Get(RouteHealth, healthHandler.Health)
	r.Get(RouteHealth+"/live", healthHandler.Liveness)
	r.Get(RouteRobots, Robots(RobotsConfig{}))
	if cfg.StaticFS != nil {
		r.Handle(RouteStatic, http.StripPrefix("/static/", http.FileServerFS(cfg.StaticFS)))
	}

	r.Group(func(r chi.Router) {
		r.Use(cfg.SessionManager.LoadAndSave)
		r.Use(middleware.Visitor(cfg.SessionManager, cfg.Registry))

		r.NotFound(catalogHandler.NotFound)

		// Public pages
		r.Get(RouteRoot, catalogHandler.Home)
		r.Get(RouteArtworks, catalogHandler.Artworks)
		r.Get(RouteArtists, catalogHandler.Artists)
		r.Get(RouteExhibitions, catalogHandler.Exhibitions)
		r.Post(RouteLanguage, languageHandler.Switch)

		r.Get(RouteLogin, authHandler.LoginForm)
		r.Get(RouteRegister, authHandler.RegisterForm)
		r.Post(RouteLogout, authHandler.Logout)
		r.Group(func(r chi.Router) {
			if cfg.LoginProtection != nil {
				r.Use(cfg.LoginProtection.Middleware())
			}
			r.Post(RouteLogin, authHandler.Login)
			r.Post(RouteRegister, authHandler.Register)
		})

		guard := func(adminOnly bool) func(http.Handler) http.Handler {
			return middleware.Guard(middleware.GuardConfig{
				AdminOnly: adminOnly,
				Wait:      cfg.GuardWait,
				Loading:   http.HandlerFunc(catalogHandler.Loading),
				LoginPath: RouteLogin,
				Logger:    logger,
			})
		}

		// Account pages, any role
		r.Group(func(r chi.Router) {
			r.Use(guard(false))
			r.Get(RouteProfile, accountHandler.Profile)
			r.Get(RouteProfileEdit, accountHandler.EditForm)
			r.Post(RouteProfileEdit, accountHandler.Update)
			r.Get(RouteProfileTickets, accountHandler.Tickets)
			r.Post(RouteExhibitionTickets, accountHandler.PurchaseTicket)
			r.Get(RouteSessionEvents, SessionEvents(logger))
		})

		// Admin console
		r.Route(RouteAdmin, func(r chi.Router) {
			r.Use(guard(true))
			r.Get(RouteRoot, adminHandler.Dashboard)
			r.Get(RouteAdminEvents, eventsHandler.List)
			NewCRUDHandler(UserForm, cfg.Renderer, cfg.EventService, cfg.Debouncer, logger).Routes(r)
			NewCRUDHandler(ArtworkForm, cfg.Renderer, cfg.EventService, cfg.Debouncer, logger).Routes(r)
			NewCRUDHandler(ArtistForm, cfg.Renderer, cfg.EventService, cfg.Debouncer, logger).Routes(r)
			NewCRUDHandler(ExhibitionForm, cfg.Renderer, cfg.EventService, cfg.Debouncer, logger).Routes(r)
		})
	})

	return r
}
