// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/artspace-console/internal/apiclient"
	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/middleware"
	"github.com/olegiv/artspace-console/internal/model"
	"github.com/olegiv/artspace-console/internal/render"
	"github.com/olegiv/artspace-console/internal/search"
	"github.com/olegiv/artspace-console/internal/service"
	"github.com/olegiv/artspace-console/internal/session"
	"github.com/olegiv/artspace-console/internal/testutil"
	"github.com/olegiv/artspace-console/web"
)

var (
	adminProfile = model.UserProfile{ID: 1, Login: "admin", Email: "admin@artspace.test", FirstName: "Ada", LastName: "Admin", RoleName: model.RoleAdmin}
	aliceProfile = model.UserProfile{ID: 2, Login: "alice", Email: "alice@artspace.test", FirstName: "Alice", LastName: "Liddell", RoleName: model.RoleUser}
)

// console runs the full route tree against a fake backend, with a
// browser-like client that keeps cookies and does not follow redirects.
type console struct {
	backend *testutil.FakeBackend
	server  *httptest.Server
	client  *http.Client
	events  *service.EventService
}

func newConsole(t *testing.T) *console {
	t.Helper()
	require.NoError(t, i18n.Init(nil))

	logger := testutil.TestLoggerSilent()
	b := testutil.NewFakeBackend(t)
	b.AddAccount("secret", adminProfile)
	b.AddAccount("wonderland", aliceProfile)

	db := testutil.TestDB(t)
	sm := session.New(db, session.ManagerOptions{IsDev: true})

	factory, err := apiclient.NewFactory(apiclient.Config{BaseURL: b.URL(), Timeout: 5 * time.Second, Logger: logger})
	require.NoError(t, err)
	registry := session.NewRegistry(factory, session.RegistryConfig{Logger: logger})

	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: sm, IsDev: true})
	require.NoError(t, err)

	staticFS, err := web.StaticFiles()
	require.NoError(t, err)

	debouncer := search.NewDebouncer(search.Config{Interval: 10 * time.Millisecond})
	t.Cleanup(debouncer.Stop)

	events := service.NewEventService(db, logger)
	router := NewRouter(RouterConfig{
		DB:              db,
		Renderer:        renderer,
		SessionManager:  sm,
		Registry:        registry,
		EventService:    events,
		LoginProtection: middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()),
		Debouncer:       debouncer,
		StaticFS:        staticFS,
		GuardWait:       2 * time.Second,
		Version:         "test",
		Logger:          logger,
		Middlewares:     []func(http.Handler) http.Handler{middleware.RequestPath},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &console{backend: b, server: srv, client: client, events: events}
}

func (c *console) do(t *testing.T, method, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, c.server.URL+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func (c *console) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	return c.do(t, http.MethodGet, path, nil)
}

func (c *console) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	return c.do(t, http.MethodPost, path, form)
}

// login signs the visitor in through the login form.
func (c *console) login(t *testing.T, login, password string) {
	t.Helper()
	c.get(t, RouteLogin)
	resp, _ := c.post(t, RouteLogin, url.Values{"login": {login}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode, "login as %s", login)
}

func TestConsole_Health(t *testing.T) {
	c := newConsole(t)

	resp, body := c.get(t, RouteHealth)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "healthy")
}

func TestConsole_StaticAssets(t *testing.T) {
	c := newConsole(t)

	resp, _ := c.get(t, "/static/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.get(t, "/static/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConsole_AnonymousAdminRedirectsToLogin(t *testing.T) {
	c := newConsole(t)

	resp, _ := c.get(t, "/admin/users")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fadmin%2Fusers", resp.Header.Get("Location"))
}

func TestConsole_AnonymousProfileRedirectsToLogin(t *testing.T) {
	c := newConsole(t)

	resp, _ := c.get(t, RouteProfileTickets)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fprofile%2Ftickets", resp.Header.Get("Location"))
}

func TestConsole_UserOnAdminGoesHome(t *testing.T) {
	c := newConsole(t)
	c.login(t, "alice", "wonderland")

	resp, _ := c.get(t, RouteAdmin)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestConsole_LoginFlow(t *testing.T) {
	c := newConsole(t)

	resp, body := c.get(t, "/login?next=%2Fadmin%2Fartists")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="/admin/artists"`)

	resp, body = c.post(t, RouteLogin, url.Values{"login": {"admin"}, "password": {"wrong"}, "next": {"/admin/artists"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Invalid login or password")
	assert.NotContains(t, body, "wrong")

	resp, _ = c.post(t, RouteLogin, url.Values{"login": {"admin"}, "password": {"secret"}, "next": {"/admin/artists"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/artists", resp.Header.Get("Location"))

	resp, body = c.get(t, "/admin/artists")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome back, Ada Admin!")

	// A logged in visitor skips the login form.
	resp, _ = c.get(t, RouteLogin)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestConsole_LoginRejectsOffsiteNext(t *testing.T) {
	c := newConsole(t)
	c.get(t, RouteLogin)

	resp, _ := c.post(t, RouteLogin, url.Values{"login": {"alice"}, "password": {"wonderland"}, "next": {"//evil.example.com"}})

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestConsole_LoginValidation(t *testing.T) {
	c := newConsole(t)
	c.get(t, RouteLogin)

	resp, body := c.post(t, RouteLogin, url.Values{"login": {"admin"}})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "This field is required")
	assert.Zero(t, c.backend.CountRequests(http.MethodPost, session.PathLogin))
}

func TestConsole_Logout(t *testing.T) {
	c := newConsole(t)
	c.login(t, "alice", "wonderland")

	resp, _ := c.get(t, RouteProfile)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.post(t, RouteLogout, url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Equal(t, 1, c.backend.CountRequests(http.MethodPost, session.PathLogout))

	resp, _ = c.get(t, RouteProfile)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fprofile", resp.Header.Get("Location"))
}

func TestConsole_DeleteArtistReturnsToFirstPage(t *testing.T) {
	c := newConsole(t)
	c.backend.Seed("artists", model.Artist{Audit: model.Audit{ID: 5}, Name: "Claude Monet", Country: "France"})
	c.backend.Seed("artists", model.Artist{Audit: model.Audit{ID: 6}, Name: "Berthe Morisot", Country: "France"})
	c.login(t, "admin", "secret")

	resp, _ := c.do(t, http.MethodDelete, "/admin/artists/5", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/artists?page=0", resp.Header.Get("Location"))

	_, ok := c.backend.LastRequest(http.MethodDelete, "/artists/delete/5")
	assert.True(t, ok)
	assert.False(t, c.backend.Has("artists", 5))

	resp, body := c.get(t, resp.Header.Get("Location"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Artist deleted")
	assert.Contains(t, body, "Berthe Morisot")
	assert.NotContains(t, body, "Claude Monet")

	list, ok := c.backend.LastRequest(http.MethodGet, "/artists")
	require.True(t, ok)
	assert.Equal(t, "0", list.Query.Get("page"))
	assert.Equal(t, "9", list.Query.Get("size"))
}

func TestConsole_DeleteFallbackPost(t *testing.T) {
	c := newConsole(t)
	c.backend.Seed("exhibitions", model.Exhibition{Audit: model.Audit{ID: 3}, Title: "Impressions"})
	c.login(t, "admin", "secret")

	resp, _ := c.post(t, "/admin/exhibitions/3/delete", url.Values{})

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/exhibitions?page=0", resp.Header.Get("Location"))
	assert.False(t, c.backend.Has("exhibitions", 3))
}

func TestConsole_DeleteFailureShowsBackendMessage(t *testing.T) {
	c := newConsole(t)
	c.backend.Seed("artists", model.Artist{Audit: model.Audit{ID: 5}, Name: "Claude Monet"})
	c.backend.Fail(http.MethodDelete, "/artists/delete/5", http.StatusConflict, `{"message":"Artist has artworks"}`)
	c.login(t, "admin", "secret")

	resp, _ := c.do(t, http.MethodDelete, "/admin/artists/5", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := c.get(t, resp.Header.Get("Location"))
	assert.Contains(t, body, "Artist has artworks")
	assert.True(t, c.backend.Has("artists", 5))
}

func TestConsole_CreateValidationSkipsBackend(t *testing.T) {
	c := newConsole(t)
	c.login(t, "admin", "secret")

	resp, body := c.post(t, "/admin/exhibitions", url.Values{
		"title":     {"Spring"},
		"startDate": {"2026-05-10"},
		"endDate":   {"2026-05-01"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "End date must not be before the start date")
	assert.Contains(t, body, `value="Spring"`)
	assert.Zero(t, c.backend.CountRequests(http.MethodPost, "/exhibitions/add"))
}

func TestConsole_CreateArtist(t *testing.T) {
	c := newConsole(t)
	c.login(t, "admin", "secret")

	resp, _ := c.post(t, "/admin/artists", url.Values{
		"name":      {"Wassily Kandinsky"},
		"country":   {"Russia"},
		"birthDate": {"1866-12-16"},
	})

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/artists", resp.Header.Get("Location"))
	assert.Equal(t, 1, c.backend.Count("artists"))

	req, ok := c.backend.LastRequest(http.MethodPost, "/artists/add")
	require.True(t, ok)
	assert.Contains(t, string(req.Body), `"birthDate":"1866-12-16"`)

	recent, err := c.events.ListRecent(t.Context(), 10)
	require.NoError(t, err)
	found := false
	for _, e := range recent {
		if e.Message == "artists created" {
			found = true
		}
	}
	assert.True(t, found, "create should be audited")
}

func TestConsole_EditLoadsEntity(t *testing.T) {
	c := newConsole(t)
	c.backend.Seed("artworks", model.Artwork{Audit: model.Audit{ID: 11}, Title: "Water Lilies", Medium: "Oil"})
	c.login(t, "admin", "secret")

	resp, body := c.get(t, "/admin/artworks/11/edit")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Water Lilies"`)
	_, ok := c.backend.LastRequest(http.MethodGet, "/artworks/getOneById")
	assert.True(t, ok)
}

func TestConsole_FormChoicesFailureStaysOnForm(t *testing.T) {
	c := newConsole(t)
	c.backend.Seed("artworks", model.Artwork{Audit: model.Audit{ID: 11}, Title: "Water Lilies"})
	c.backend.Fail(http.MethodGet, "/artists/getAll", http.StatusServiceUnavailable, `{"message":"Artists unavailable"}`)
	c.login(t, "admin", "secret")

	resp, body := c.get(t, "/admin/artworks/11/edit")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Water Lilies"`)
	assert.Contains(t, body, "Artists unavailable")

	c.backend.ClearFailures()
	resp, body = c.get(t, "/admin/artists")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "Artists unavailable")
}

func TestConsole_LiveSearchFragment(t *testing.T) {
	c := newConsole(t)
	c.backend.Seed("artists", model.Artist{Name: "Claude Monet", Country: "France"})
	c.backend.Seed("artists", model.Artist{Name: "Frida Kahlo", Country: "Mexico"})

	resp, body := c.get(t, "/artists?name=monet&fragment=1")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Claude Monet")
	assert.NotContains(t, body, "Frida Kahlo")
	assert.NotContains(t, body, "<html")

	req, ok := c.backend.LastRequest(http.MethodPost, "/artists/search")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"monet"}`, string(req.Body))
}

func TestConsole_CatalogPageWithoutSearch(t *testing.T) {
	c := newConsole(t)
	c.backend.Seed("artworks", model.Artwork{Title: "Starry Night"})

	resp, body := c.get(t, RouteArtworks)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<html")
	assert.Contains(t, body, "Starry Night")
	assert.Zero(t, c.backend.CountRequests(http.MethodPost, "/artworks/search"))
}

func TestConsole_CatalogFetchFailureShowsAlert(t *testing.T) {
	c := newConsole(t)
	c.backend.Fail(http.MethodGet, "/artworks", http.StatusInternalServerError, "")

	resp, body := c.get(t, RouteArtworks)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, i18n.T(i18n.DefaultLanguage, "error.fetch.artworks"))
}

func TestConsole_NotFound(t *testing.T) {
	c := newConsole(t)

	resp, body := c.get(t, "/no-such-page")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")
}

func TestConsole_LanguageSwitch(t *testing.T) {
	c := newConsole(t)

	resp, _ := c.post(t, RouteLanguage, url.Values{"lang": {"ru"}, "next": {"/artists"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/artists", resp.Header.Get("Location"))

	_, body := c.get(t, "/artists")
	assert.Contains(t, body, `lang="ru"`)
}

func TestConsole_PurchaseTicket(t *testing.T) {
	c := newConsole(t)
	c.backend.Seed("exhibitions", model.Exhibition{Audit: model.Audit{ID: 7}, Title: "Blue Period"})
	c.login(t, "alice", "wonderland")

	resp, _ := c.post(t, "/exhibitions/7/tickets", url.Values{"visitDate": {"2026-11-02T14:30"}})

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, RouteProfileTickets, resp.Header.Get("Location"))
	require.Len(t, c.backend.Tickets(), 1)

	resp, body := c.get(t, RouteProfileTickets)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Blue Period")
}

func TestConsole_AdminDashboardAndEvents(t *testing.T) {
	c := newConsole(t)
	c.login(t, "admin", "secret")

	resp, _ := c.get(t, RouteAdmin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := c.get(t, redirectAdminEvents)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "User logged in")
}

func TestConsole_SessionEventsStream(t *testing.T) {
	c := newConsole(t)
	c.login(t, "alice", "wonderland")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.server.URL+RouteSessionEvents, nil)
	require.NoError(t, err)

	resp, err := c.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: session\n", event)

	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"authenticated":true`)
	assert.Contains(t, data, `"login":"alice"`)
}
