// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session holds visitor state: the scs session manager, the
// per-visitor auth store and the registry that keeps stores alive
// between requests.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"

	"github.com/olegiv/artspace-console/internal/apiclient"
)

// Keys stored in the console session.
const (
	KeyVisitorID      = "visitor_id"
	KeyBackendCookies = "api_cookies"
	KeyLanguage       = "lang"
)

// ManagerOptions configures the session manager.
type ManagerOptions struct {
	Lifetime time.Duration
	IsDev    bool
	// Redis moves session data to Redis when set.
	Redis *redis.Client
}

// New creates a session manager backed by SQLite, or by Redis when
// opts.Redis is set.
func New(db *sql.DB, opts ManagerOptions) *scs.SessionManager {
	sm := scs.New()

	if opts.Redis != nil {
		sm.Store = goredisstore.New(opts.Redis)
	} else {
		sm.Store = sqlite3store.New(db)
	}

	sm.Lifetime = opts.Lifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 24 * time.Hour
	}
	sm.Cookie.Name = "artspace_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !opts.IsDev
	if !opts.IsDev {
		// __Host- requires Secure, Path=/ and no Domain.
		sm.Cookie.Name = "__Host-artspace_session"
	}

	return sm
}

// SaveCookies copies the client's backend cookies into the session.
func SaveCookies(ctx context.Context, sm *scs.SessionManager, c *apiclient.Client) {
	cookies := c.ExportCookies()
	if cookies == "" {
		sm.Remove(ctx, KeyBackendCookies)
		return
	}
	sm.Put(ctx, KeyBackendCookies, cookies)
}
