// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "artspace-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	for _, table := range []string{"sessions", "events"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestNewDB_InvalidPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewDB(filepath.Join(blocker, "nested", "db.sqlite")); err == nil {
		t.Error("NewDB should fail when the parent is a regular file")
	}
}

func TestCreateAndListEvents(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, msg := range []string{"first", "second", "third"} {
		_, err := q.CreateEvent(ctx, CreateEventParams{
			Level:     "info",
			Category:  "auth",
			Message:   msg,
			UserID:    sql.NullInt64{Int64: int64(i + 1), Valid: true},
			Metadata:  `{"n":"` + msg + `"}`,
			IpAddress: "127.0.0.1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}
	if _, err := q.CreateEvent(ctx, CreateEventParams{
		Level: "warning", Category: "catalog", Message: "deleted", Metadata: "{}", CreatedAt: base,
	}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	events, err := q.ListEvents(ctx, ListEventsParams{Limit: 2})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ListEvents returned %d events, want 2", len(events))
	}
	if events[0].Message != "third" {
		t.Errorf("newest event = %q, want %q", events[0].Message, "third")
	}
	if !events[0].UserID.Valid || events[0].UserID.Int64 != 3 {
		t.Errorf("UserID = %+v, want 3", events[0].UserID)
	}
	if !events[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("CreatedAt = %v", events[0].CreatedAt)
	}

	catalog, err := q.ListEventsByCategory(ctx, ListEventsByCategoryParams{Category: "catalog", Limit: 10})
	if err != nil {
		t.Fatalf("ListEventsByCategory: %v", err)
	}
	if len(catalog) != 1 || catalog[0].UserID.Valid {
		t.Errorf("catalog events = %+v", catalog)
	}

	n, err := q.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 4 {
		t.Errorf("CountEvents = %d, want 4", n)
	}
}

func TestDeleteOldEvents(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, age := range []time.Duration{40 * 24 * time.Hour, 31 * 24 * time.Hour, time.Hour} {
		if _, err := q.CreateEvent(ctx, CreateEventParams{
			Level: "info", Category: "system", Message: "tick", Metadata: "{}", CreatedAt: now.Add(-age),
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	removed, err := q.DeleteOldEvents(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOldEvents: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	n, _ := q.CountEvents(ctx)
	if n != 1 {
		t.Errorf("remaining = %d, want 1", n)
	}
}
