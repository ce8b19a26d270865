// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds the console's HTML templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var Templates embed.FS

//go:embed all:static/dist
var Static embed.FS

// StaticFiles returns the built assets rooted at static/dist.
func StaticFiles() (fs.FS, error) {
	return fs.Sub(Static, "static/dist")
}
