// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the audit event log of the console.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/artspace-console/internal/model"
	"github.com/olegiv/artspace-console/internal/store"
)

// ClientInfo describes the browser that issued a request.
type ClientInfo struct {
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	DeviceType string `json:"device"`
}

// ParseUserAgent extracts browser, OS, and device type from a user agent string.
func ParseUserAgent(uaString string) ClientInfo {
	ua := useragent.Parse(uaString)

	info := ClientInfo{
		Browser: ua.Name,
		OS:      ua.OS,
	}
	if info.Browser == "" {
		info.Browser = "Unknown"
	}
	if info.OS == "" {
		info.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		info.DeviceType = "mobile"
	case ua.Tablet:
		info.DeviceType = "tablet"
	case ua.Bot:
		info.DeviceType = "bot"
	default:
		info.DeviceType = "desktop"
	}
	return info
}

// EventService provides event logging functionality.
type EventService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		queries: store.New(db),
		logger:  logger,
		now:     time.Now,
	}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		IpAddress: ipAddress,
		CreatedAt: s.now(),
	})
	if err != nil {
		// Not through s.logger at WARN: that would loop back into the event log.
		s.logger.Debug("failed to log event", "error", err, "message", message)
		return fmt.Errorf("logging event: %w", err)
	}
	return nil
}

// LogRequest records an event for the visitor behind r, adding the
// client IP and browser details to metadata.
func (s *EventService) LogRequest(r *http.Request, level, category, message string, user *model.UserProfile, metadata map[string]any) error {
	meta := make(map[string]any, len(metadata)+2)
	for k, v := range metadata {
		meta[k] = v
	}
	if ua := r.UserAgent(); ua != "" {
		meta["client"] = ParseUserAgent(ua)
	}
	meta["path"] = r.URL.Path

	var userID *int64
	if user != nil {
		id := user.ID
		userID = &id
		meta["login"] = user.Login
	}

	return s.LogEvent(r.Context(), level, category, message, userID, clientIP(r), meta)
}

// LogAuth records an authentication event.
func (s *EventService) LogAuth(r *http.Request, level, message string, user *model.UserProfile, metadata map[string]any) error {
	return s.LogRequest(r, level, model.EventCategoryAuth, message, user, metadata)
}

// LogCatalog records a change to artworks, artists or exhibitions.
func (s *EventService) LogCatalog(r *http.Request, message string, user *model.UserProfile, metadata map[string]any) error {
	return s.LogRequest(r, model.EventLevelInfo, model.EventCategoryCatalog, message, user, metadata)
}

// LogUser records a change to a user account.
func (s *EventService) LogUser(r *http.Request, message string, user *model.UserProfile, metadata map[string]any) error {
	return s.LogRequest(r, model.EventLevelInfo, model.EventCategoryUser, message, user, metadata)
}

// LogTicket records a ticket purchase.
func (s *EventService) LogTicket(r *http.Request, message string, user *model.UserProfile, metadata map[string]any) error {
	return s.LogRequest(r, model.EventLevelInfo, model.EventCategoryTicket, message, user, metadata)
}

// ListRecent returns the newest events.
func (s *EventService) ListRecent(ctx context.Context, limit int) ([]store.Event, error) {
	events, err := s.queries.ListEvents(ctx, store.ListEventsParams{Limit: int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// ListByCategory returns the newest events of one category.
func (s *EventService) ListByCategory(ctx context.Context, category string, limit int) ([]store.Event, error) {
	events, err := s.queries.ListEventsByCategory(ctx, store.ListEventsByCategoryParams{
		Category: category,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s events: %w", category, err)
	}
	return events, nil
}

// DeleteOldEvents removes events older than the specified duration.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.queries.DeleteOldEvents(ctx, s.now().Add(-olderThan))
}

// clientIP expects chi's RealIP middleware to have rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
