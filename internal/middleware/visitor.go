// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/session"
)

// Visitor attaches the visitor's session store and backend client to the
// request. A visitor id is minted on first sight and kept in the console
// session; the registry creates the store on demand. Must run inside
// sm.LoadAndSave.
func Visitor(sm *scs.SessionManager, registry *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id := sm.GetString(ctx, session.KeyVisitorID)
			if id == "" {
				id = uuid.NewString()
				sm.Put(ctx, session.KeyVisitorID, id)
			}

			lang := ResolveLanguage(r, sm)
			store, client, created := registry.Acquire(id, sm.GetString(ctx, session.KeyBackendCookies), lang)
			if !created {
				store.SetLanguage(lang)
			}

			ctx = context.WithValue(ctx, ContextKeyVisitorID, id)
			ctx = context.WithValue(ctx, ContextKeyStore, store)
			ctx = context.WithValue(ctx, ContextKeyClient, client)
			ctx = context.WithValue(ctx, ContextKeyLanguage, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveLanguage picks the UI language: the session preference first,
// then the browser's Accept-Language header.
func ResolveLanguage(r *http.Request, sm *scs.SessionManager) string {
	if sm != nil {
		if lang := sm.GetString(r.Context(), session.KeyLanguage); lang != "" && i18n.IsSupported(lang) {
			return lang
		}
	}
	if acceptLang := r.Header.Get("Accept-Language"); acceptLang != "" {
		return i18n.MatchLanguage(acceptLang)
	}
	return i18n.DefaultLanguage
}

// SetLanguage stores the visitor's language preference. Unsupported
// languages are ignored and false is returned.
func SetLanguage(ctx context.Context, sm *scs.SessionManager, lang string) bool {
	if !i18n.IsSupported(lang) {
		return false
	}
	sm.Put(ctx, session.KeyLanguage, lang)
	return true
}
