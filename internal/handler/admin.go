// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the console's HTTP handlers: public catalog
// pages, authentication, the visitor's account and the admin console.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/artspace-console/internal/gallery"
	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/middleware"
	"github.com/olegiv/artspace-console/internal/render"
	"github.com/olegiv/artspace-console/internal/service"
	"github.com/olegiv/artspace-console/internal/session"
	"github.com/olegiv/artspace-console/internal/store"
	"github.com/olegiv/artspace-console/internal/uikit"
)

// DashboardStats holds the statistics displayed on the dashboard.
type DashboardStats struct {
	TotalUsers       int64
	TotalArtworks    int64
	TotalArtists     int64
	TotalExhibitions int64
}

// DashboardData holds all dashboard data including stats and recent events.
type DashboardData struct {
	Stats        DashboardStats
	RecentEvents []EventView
}

// AdminHandler handles the admin dashboard.
type AdminHandler struct {
	renderer     *render.Renderer
	eventService *service.EventService
	logger       *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(renderer *render.Renderer, events *service.EventService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{renderer: renderer, eventService: events, logger: logger}
}

// Dashboard renders the admin dashboard. The four resource counts are
// fetched concurrently.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	ctx := r.Context()

	stats := countResources(ctx, middleware.GetStore(r))

	var recent []store.Event
	if h.eventService != nil {
		var err error
		if recent, err = h.eventService.ListRecent(ctx, DashboardRecentEvents); err != nil {
			h.logger.Error("failed to list recent events", "error", err)
		}
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/dashboard", render.TemplateData{
		Title: i18n.T(lang, "nav.dashboard"),
		Data: DashboardData{
			Stats:        stats,
			RecentEvents: toEventViews(recent),
		},
		Breadcrumbs: uikit.Crumbs(i18n.T(lang, "nav.dashboard"), redirectAdmin),
	})
}

// countResources reads totalElements of a one-row page of each resource.
// A failed count stays zero and leaves the error on the store.
func countResources(ctx context.Context, s *session.Store) DashboardStats {
	var stats DashboardStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats.TotalUsers = gallery.Users.List(ctx, s, 0, 1, nil).TotalElements
		return nil
	})
	g.Go(func() error {
		stats.TotalArtworks = gallery.Artworks.List(ctx, s, 0, 1, nil).TotalElements
		return nil
	})
	g.Go(func() error {
		stats.TotalArtists = gallery.Artists.List(ctx, s, 0, 1, nil).TotalElements
		return nil
	})
	g.Go(func() error {
		stats.TotalExhibitions = gallery.Exhibitions.List(ctx, s, 0, 1, nil).TotalElements
		return nil
	})
	_ = g.Wait()
	return stats
}
