// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/artspace-console/internal/middleware"
)

// LanguageHandler switches the visitor's UI language.
type LanguageHandler struct {
	sessionManager *scs.SessionManager
}

// NewLanguageHandler creates a new LanguageHandler.
func NewLanguageHandler(sm *scs.SessionManager) *LanguageHandler {
	return &LanguageHandler{sessionManager: sm}
}

// Switch handles POST /language. Unsupported languages are ignored and
// the visitor returns to next either way.
func (h *LanguageHandler) Switch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}

	lang := r.PostForm.Get("lang")
	if middleware.SetLanguage(r.Context(), h.sessionManager, lang) {
		if store := middleware.GetStore(r); store != nil {
			store.SetLanguage(lang)
		}
	}

	next := r.PostForm.Get("next")
	if next == "" {
		if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host {
			next = ref.RequestURI()
		}
	}
	http.Redirect(w, r, middleware.SafeNext(next, RouteRoot), http.StatusSeeOther)
}
