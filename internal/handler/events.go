// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/middleware"
	"github.com/olegiv/artspace-console/internal/model"
	"github.com/olegiv/artspace-console/internal/render"
	"github.com/olegiv/artspace-console/internal/service"
	"github.com/olegiv/artspace-console/internal/store"
	"github.com/olegiv/artspace-console/internal/uikit"
)

// EventsHandler handles event log viewing routes.
type EventsHandler struct {
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(renderer *render.Renderer, events *service.EventService) *EventsHandler {
	return &EventsHandler{renderer: renderer, eventService: events}
}

// EventView is an audit event prepared for display.
type EventView struct {
	ID          int64
	Level       string
	Category    string
	Message     string
	Details     string // Formatted metadata as readable text
	DetailsLong bool   // True if details exceed display threshold
	IPAddress   string
	CreatedAt   string
}

// detailsLengthThreshold is the max chars before details are collapsible
const detailsLengthThreshold = 80

// formatMetadata converts JSON metadata to readable text format.
// Example: {"path":"/admin/artists","login":"admin"} -> "login: admin, path: /admin/artists"
func formatMetadata(metadata string) string {
	if metadata == "" || metadata == "{}" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(metadata), &data); err != nil {
		return metadata // Return as-is if not valid JSON
	}

	if len(data) == 0 {
		return ""
	}

	// Sort keys for consistent output order
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		var strValue string
		switch v := data[key].(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			strValue = strconv.FormatBool(v)
		default:
			// For nested objects, marshal back to JSON
			if b, err := json.Marshal(v); err == nil {
				strValue = string(b)
			}
		}
		parts = append(parts, key+": "+strValue)
	}

	return strings.Join(parts, ", ")
}

func toEventViews(events []store.Event) []EventView {
	out := make([]EventView, len(events))
	for i, e := range events {
		details := formatMetadata(e.Metadata)
		out[i] = EventView{
			ID:          e.ID,
			Level:       e.Level,
			Category:    e.Category,
			Message:     e.Message,
			Details:     details,
			DetailsLong: len(details) > detailsLengthThreshold,
			IPAddress:   e.IpAddress,
			CreatedAt:   e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return out
}

// EventsListData holds data for the events list template.
type EventsListData struct {
	Events     []EventView
	Category   string
	Categories []string
}

// List handles GET /admin/events, optionally filtered by category.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	category := r.URL.Query().Get("category")
	if !model.IsEventCategory(category) {
		category = ""
	}

	var (
		events []store.Event
		err    error
	)
	if category != "" {
		events, err = h.eventService.ListByCategory(r.Context(), category, EventLogLimit)
	} else {
		events, err = h.eventService.ListRecent(r.Context(), EventLogLimit)
	}
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/events", render.TemplateData{
		Title: i18n.T(lang, "nav.events"),
		Data: EventsListData{
			Events:     toEventViews(events),
			Category:   category,
			Categories: model.EventCategories,
		},
		Breadcrumbs: uikit.Crumbs(
			i18n.T(lang, "nav.dashboard"), redirectAdmin,
			i18n.T(lang, "nav.events"), redirectAdminEvents,
		),
	})
}
