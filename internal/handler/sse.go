// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/artspace-console/internal/middleware"
	"github.com/olegiv/artspace-console/internal/session"
)

// sseHeartbeat keeps idle connections open through proxies.
const sseHeartbeat = 25 * time.Second

// SessionState is the JSON pushed to the browser on every store change.
type SessionState struct {
	Authenticated bool   `json:"authenticated"`
	Loading       bool   `json:"loading"`
	Login         string `json:"login,omitempty"`
	Name          string `json:"name,omitempty"`
	IsAdmin       bool   `json:"isAdmin"`
	Error         string `json:"error,omitempty"`
}

func stateOf(snap session.Snapshot) SessionState {
	st := SessionState{
		Authenticated: snap.Authenticated,
		Loading:       snap.Loading,
		IsAdmin:       snap.IsAdmin(),
		Error:         snap.LastError,
	}
	if snap.User != nil {
		st.Login = snap.User.Login
		st.Name = snap.User.DisplayName()
	}
	return st
}

// SessionEvents streams the visitor's session state as server-sent
// events. The current state is sent first, then one event per change.
func SessionEvents(logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		store := middleware.GetStore(r)
		if store == nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		// Observers must not block the store, so only the newest pending
		// snapshot is kept.
		updates := make(chan session.Snapshot, 1)
		unsubscribe := store.Subscribe(func(s session.Snapshot) {
			select {
			case updates <- s:
			default:
				select {
				case <-updates:
				default:
				}
				select {
				case updates <- s:
				default:
				}
			}
		})
		defer unsubscribe()

		w.Header().Set(HeaderContentType, "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		// The session middleware wraps w, so flushing goes through the
		// response controller, which unwraps it.
		rc := http.NewResponseController(w)
		if err := writeSessionEvent(w, store.Snapshot()); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			logger.Warn("session stream cannot flush", "error", err)
			return
		}

		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case snap := <-updates:
				if err := writeSessionEvent(w, snap); err != nil {
					logger.Debug("session stream closed", "error", err)
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeSessionEvent(w http.ResponseWriter, snap session.Snapshot) error {
	data, err := json.Marshal(stateOf(snap))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: session\ndata: %s\n\n", data)
	return err
}
