// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteRegister is the self-registration route.
	RouteRegister = "/register"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteLanguage switches the UI language.
	RouteLanguage = "/language"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteStatic serves embedded assets.
	RouteStatic = "/static/*"
	// RouteRobots serves robots.txt.
	RouteRobots = "/robots.txt"

	RouteArtworks          = "/artworks"
	RouteArtists           = "/artists"
	RouteExhibitions       = "/exhibitions"
	RouteExhibitionTickets = "/exhibitions/{id}/tickets"

	RouteProfile        = "/profile"
	RouteProfileEdit    = "/profile/edit"
	RouteProfileTickets = "/profile/tickets"

	// RouteSessionEvents streams session state changes.
	RouteSessionEvents = "/events/session"
	// RouteSessionEventsPrefix is excluded from the request timeout.
	RouteSessionEventsPrefix = "/events/"

	RouteAdmin       = "/admin"
	RouteAdminEvents = "/events"

	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteSuffixEdit is the edit form route pattern.
	RouteSuffixEdit = "/{id}/edit"
	// RouteSuffixDelete is the POST fallback for deletes.
	RouteSuffixDelete = "/{id}/delete"
)

const (
	redirectAdmin        = RouteAdmin
	redirectLogin        = RouteLogin
	redirectProfile      = RouteProfile
	redirectTickets      = RouteProfileTickets
	redirectAdminEvents  = RouteAdmin + RouteAdminEvents
	redirectFirstPageFmt = "%s?page=0"
)

// Audit and dashboard limits.
const (
	// DashboardRecentEvents is the number of events shown on the dashboard.
	DashboardRecentEvents = 10
	// EventLogLimit is the number of events shown in the event log.
	EventLogLimit = 100
	// HomeExhibitions is the number of current exhibitions on the home page.
	HomeExhibitions = 3
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
