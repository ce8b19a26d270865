// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/artspace-console/internal/testutil"

	_ "modernc.org/sqlite"
)

func setupSessionDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	require.NoError(t, err)
	return db
}

func TestNew_DevMode(t *testing.T) {
	sm := New(setupSessionDB(t), ManagerOptions{IsDev: true})

	assert.False(t, sm.Cookie.Secure)
	assert.Equal(t, "artspace_session", sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, sm.Cookie.SameSite)
	assert.Equal(t, 24*time.Hour, sm.Lifetime)
	assert.IsType(t, &sqlite3store.SQLite3Store{}, sm.Store)
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(setupSessionDB(t), ManagerOptions{Lifetime: time.Hour})

	assert.True(t, sm.Cookie.Secure)
	assert.Equal(t, "__Host-artspace_session", sm.Cookie.Name)
	assert.Equal(t, "/", sm.Cookie.Path)
	assert.Equal(t, time.Hour, sm.Lifetime)
}

func TestNew_RedisStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer func() { _ = client.Close() }()

	sm := New(nil, ManagerOptions{IsDev: true, Redis: client})
	assert.IsType(t, &goredisstore.RedisStore{}, sm.Store)
}

func TestSaveCookies(t *testing.T) {
	b := newBackend(t)
	sm := New(setupSessionDB(t), ManagerOptions{IsDev: true})
	c := newClient(t, b)

	var stored, afterClear string
	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		c.ImportCookies(testutil.BackendCookie + "=abc")
		SaveCookies(ctx, sm, c)
		stored = sm.GetString(ctx, KeyBackendCookies)

		c.ClearCookies()
		SaveCookies(ctx, sm, c)
		afterClear = sm.GetString(ctx, KeyBackendCookies)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background()))

	assert.Equal(t, testutil.BackendCookie+"=abc", stored)
	assert.Empty(t, afterClear)
}
