// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for visitor sessions, route
// guarding and request context handling.
package middleware

import (
	"context"
	"net/http"

	"github.com/olegiv/artspace-console/internal/apiclient"
	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys set by the middleware in this package.
const (
	ContextKeyStore       ContextKey = "store"
	ContextKeyClient      ContextKey = "api_client"
	ContextKeyVisitorID   ContextKey = "visitor_id"
	ContextKeyLanguage    ContextKey = "language"
	ContextKeyRequestPath ContextKey = "request_path"
)

// GetStore returns the visitor's session store, or nil outside Visitor.
func GetStore(r *http.Request) *session.Store {
	s, _ := r.Context().Value(ContextKeyStore).(*session.Store)
	return s
}

// GetClient returns the visitor's backend client, or nil outside Visitor.
func GetClient(r *http.Request) *apiclient.Client {
	c, _ := r.Context().Value(ContextKeyClient).(*apiclient.Client)
	return c
}

// GetVisitorID returns the visitor id, or "".
func GetVisitorID(r *http.Request) string {
	id, _ := r.Context().Value(ContextKeyVisitorID).(string)
	return id
}

// GetLang returns the UI language of the request.
func GetLang(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLanguage
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
