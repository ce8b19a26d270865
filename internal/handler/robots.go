// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"
)

// RobotsConfig controls robots.txt output.
type RobotsConfig struct {
	DisallowAll   bool     // block every crawler, e.g. on staging
	DisallowPaths []string // extra paths on top of the defaults
}

// robotsDisallowed are the visitor-specific pages crawlers must skip.
var robotsDisallowed = []string{
	RouteAdmin,
	RouteLogin,
	RouteRegister,
	RouteLogout,
	RouteProfile,
	RouteSessionEventsPrefix,
}

// BuildRobots renders robots.txt content.
func BuildRobots(cfg RobotsConfig) string {
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")

	if cfg.DisallowAll {
		sb.WriteString("Disallow: /\n")
		return sb.String()
	}

	paths := append(append([]string{}, robotsDisallowed...), cfg.DisallowPaths...)
	for _, p := range paths {
		sb.WriteString("Disallow: ")
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	sb.WriteString("Allow: /\n")
	return sb.String()
}

// Robots returns a handler serving the robots.txt built from cfg.
func Robots(cfg RobotsConfig) http.HandlerFunc {
	body := BuildRobots(cfg)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = w.Write([]byte(body))
	}
}
