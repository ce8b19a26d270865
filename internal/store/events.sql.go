// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Event is a row of the events table.
type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id"`
	Metadata  string        `json:"metadata"`
	IpAddress string        `json:"ip_address"`
	CreatedAt time.Time     `json:"created_at"`
}

const eventColumns = `id, level, category, message, user_id, metadata, ip_address, created_at`

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var e Event
	err := row.Scan(
		&e.ID,
		&e.Level,
		&e.Category,
		&e.Message,
		&e.UserID,
		&e.Metadata,
		&e.IpAddress,
		&e.CreatedAt,
	)
	return e, err
}

const createEvent = `
INSERT INTO events (level, category, message, user_id, metadata, ip_address, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + eventColumns

// CreateEventParams holds the fields of a new event.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	IpAddress string
	CreatedAt time.Time
}

// CreateEvent inserts an event.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, createEvent,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.UserID,
		arg.Metadata,
		arg.IpAddress,
		arg.CreatedAt.UTC(),
	)
	return scanEvent(row)
}

const listEvents = `
SELECT ` + eventColumns + ` FROM events
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

// ListEventsParams pages through the events table.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns the newest events first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEvents, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const listEventsByCategory = `
SELECT ` + eventColumns + ` FROM events
WHERE category = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

// ListEventsByCategoryParams pages through one category.
type ListEventsByCategoryParams struct {
	Category string
	Limit    int64
	Offset   int64
}

// ListEventsByCategory returns the newest events of one category first.
func (q *Queries) ListEventsByCategory(ctx context.Context, arg ListEventsByCategoryParams) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEventsByCategory, arg.Category, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const countEvents = `SELECT COUNT(*) FROM events`

// CountEvents returns the number of stored events.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countEvents).Scan(&n)
	return n, err
}

const deleteOldEvents = `DELETE FROM events WHERE created_at < ?`

// DeleteOldEvents removes events created before cutoff and returns how
// many were removed.
func (q *Queries) DeleteOldEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteOldEvents, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
