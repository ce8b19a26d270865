// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth     = "auth"
	EventCategoryCatalog  = "catalog"
	EventCategoryUser     = "user"
	EventCategoryTicket   = "ticket"
	EventCategorySecurity = "security"
	EventCategorySystem   = "system"
)

// EventCategories lists the categories shown in the event log filter.
var EventCategories = []string{
	EventCategoryAuth,
	EventCategoryCatalog,
	EventCategoryUser,
	EventCategoryTicket,
	EventCategorySecurity,
	EventCategorySystem,
}

// IsEventCategory reports whether c is a known event category.
func IsEventCategory(c string) bool {
	for _, known := range EventCategories {
		if c == known {
			return true
		}
	}
	return false
}
