// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/olegiv/artspace-console/internal/model"
	"github.com/olegiv/artspace-console/internal/session"
)

// GuardState is the outcome of evaluating a protected route.
type GuardState int

// Guard states.
const (
	GuardChecking GuardState = iota
	GuardAllowed
	GuardDenied
)

func (s GuardState) String() string {
	switch s {
	case GuardChecking:
		return "checking"
	case GuardAllowed:
		return "allowed"
	case GuardDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// DenyReason says why a route was denied.
type DenyReason int

// Deny reasons.
const (
	DenyNone DenyReason = iota
	DenyUnauthenticated
	DenyForbidden
)

// Decide evaluates a store snapshot for a route. Nothing is decided while
// the store is loading.
func Decide(snap session.Snapshot, adminOnly bool) (GuardState, DenyReason) {
	switch {
	case snap.Loading:
		return GuardChecking, DenyNone
	case !snap.Authenticated:
		return GuardDenied, DenyUnauthenticated
	case adminOnly && !snap.IsAdmin():
		return GuardDenied, DenyForbidden
	default:
		return GuardAllowed, DenyNone
	}
}

// DefaultGuardWait bounds how long a request waits for a loading store.
const DefaultGuardWait = 2 * time.Second

// GuardConfig configures Guard.
type GuardConfig struct {
	// AdminOnly restricts the route to the ADMIN role.
	AdminOnly bool
	// Wait is how long to wait for a loading store before giving up and
	// serving Loading.
	Wait time.Duration
	// Loading renders the placeholder shown while the session is checked.
	Loading http.Handler
	// LoginPath receives unauthenticated visitors. Defaults to /login.
	LoginPath string
	// ForbiddenPath receives visitors lacking the role. Defaults to /.
	ForbiddenPath string
	Logger        *slog.Logger
}

// Guard protects routes using the visitor's store. It is re-evaluated on
// every request against live store state.
func Guard(cfg GuardConfig) func(http.Handler) http.Handler {
	if cfg.Wait <= 0 {
		cfg.Wait = DefaultGuardWait
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.ForbiddenPath == "" {
		cfg.ForbiddenPath = "/"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Loading == nil {
		cfg.Loading = http.HandlerFunc(plainLoading)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := GetStore(r)
			if store == nil {
				http.Redirect(w, r, LoginURL(cfg.LoginPath, r.URL.RequestURI()), http.StatusSeeOther)
				return
			}

			snap := store.Snapshot()
			state, reason := Decide(snap, cfg.AdminOnly)
			if state == GuardChecking {
				ctx, cancel := context.WithTimeout(r.Context(), cfg.Wait)
				_ = store.WaitIdle(ctx)
				cancel()
				snap = store.Snapshot()
				state, reason = Decide(snap, cfg.AdminOnly)
			}

			switch state {
			case GuardAllowed:
				next.ServeHTTP(w, r)
			case GuardChecking:
				w.Header().Set("Refresh", strconv.Itoa(1))
				w.Header().Set("Cache-Control", "no-store")
				cfg.Loading.ServeHTTP(w, r)
			default:
				if reason == DenyForbidden {
					cfg.Logger.Warn("access denied",
						"category", model.EventCategorySecurity,
						"path", r.URL.Path,
						"login", snap.User.Login,
						"role", snap.User.RoleName,
						"ip", ClientIP(r),
					)
					http.Redirect(w, r, cfg.ForbiddenPath, http.StatusSeeOther)
					return
				}
				http.Redirect(w, r, LoginURL(cfg.LoginPath, r.URL.RequestURI()), http.StatusSeeOther)
			}
		})
	}
}

// LoginURL builds the login redirect that returns to next afterwards.
func LoginURL(loginPath, next string) string {
	if next == "" || next == "/" {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next if it is a local path, else fallback.
func SafeNext(next, fallback string) string {
	if next == "" || next[0] != '/' || len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return next
}

func plainLoading(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Loading..."))
}
