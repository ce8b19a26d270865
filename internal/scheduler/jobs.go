// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"time"
)

// Default schedules of the housekeeping jobs.
const (
	ScheduleSweepVisitors   = "*/5 * * * *"
	SchedulePruneEvents     = "15 3 * * *"
	ScheduleLoginProtection = "*/10 * * * *"
)

// VisitorSweeper drops idle visitor stores.
type VisitorSweeper interface {
	Sweep() int
}

// EventPruner deletes old audit events.
type EventPruner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Cleaner forgets expired state, such as stale login failures.
type Cleaner interface {
	Cleanup()
}

// SweepVisitorsJob drops visitor stores that have been idle too long.
func SweepVisitorsJob(registry VisitorSweeper) Job {
	return Job{
		Name:        "sweep_visitors",
		Description: "Drop idle visitor sessions from memory",
		Schedule:    ScheduleSweepVisitors,
		Run: func(context.Context) error {
			registry.Sweep()
			return nil
		},
	}
}

// PruneEventsJob deletes audit events older than retentionDays.
func PruneEventsJob(events EventPruner, retentionDays int) Job {
	return Job{
		Name:        "prune_events",
		Description: "Delete audit events past the retention period",
		Schedule:    SchedulePruneEvents,
		Run: func(ctx context.Context) error {
			if retentionDays <= 0 {
				return nil
			}
			_, err := events.DeleteOldEvents(ctx, time.Duration(retentionDays)*24*time.Hour)
			return err
		},
	}
}

// LoginProtectionJob clears expired login failure records.
func LoginProtectionJob(lp Cleaner) Job {
	return Job{
		Name:        "login_protection_cleanup",
		Description: "Forget expired login failures and lockouts",
		Schedule:    ScheduleLoginProtection,
		Run: func(context.Context) error {
			lp.Cleanup()
			return nil
		},
	}
}
