// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFactory(t *testing.T, srv *httptest.Server, prefix string) *Factory {
	t.Helper()
	f, err := NewFactory(Config{BaseURL: srv.URL + prefix})
	require.NoError(t, err)
	return f
}

func TestNewFactory_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"empty", "", true},
		{"no scheme", "localhost:8080", true},
		{"ftp", "ftp://example.com", true},
		{"http", "http://localhost:8080", false},
		{"https with prefix", "https://example.com/api/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(Config{BaseURL: tt.baseURL})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFactory(%q) error = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
		})
	}
}

func TestClient_SetsHeadersAndEncodesJSON(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]string
	var gotPath, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":7,"title":"Water Lilies"}`)
	}))
	defer srv.Close()

	c := newTestFactory(t, srv, "/api").New()

	var out struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	err := c.Post(context.Background(), "/artworks/search", url.Values{"page": {"0"}, "size": {"9"}},
		map[string]string{"title": "Lilies"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "/api/artworks/search", gotPath)
	assert.Equal(t, "page=0&size=9", gotQuery)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "application/json", gotHeaders.Get("Accept"))
	assert.Equal(t, "XMLHttpRequest", gotHeaders.Get("X-Requested-With"))
	assert.Equal(t, map[string]string{"title": "Lilies"}, gotBody)
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "Water Lilies", out.Title)
}

func TestClient_PlainTextResponseWithNilOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Authentication successful")
	}))
	defer srv.Close()

	c := newTestFactory(t, srv, "").New()
	assert.NoError(t, c.Post(context.Background(), "/auth/login", nil, map[string]string{"login": "a"}, nil))
}

func TestClient_EmptyBodyWithOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out map[string]any
	c := newTestFactory(t, srv, "").New()
	assert.NoError(t, c.Get(context.Background(), "/users/profile", nil, &out))
	assert.Nil(t, out)
}

func TestClient_APIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"json message", http.StatusBadRequest, `{"message":"Login already taken"}`, "Login already taken"},
		{"json without message", http.StatusInternalServerError, `{"error":"boom"}`, ""},
		{"plain text", http.StatusUnauthorized, "Invalid login or password", ""},
		{"empty body", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := newTestFactory(t, srv, "").New()
			err := c.Get(context.Background(), "/x", nil, nil)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.body, apiErr.Body)
			assert.True(t, IsStatus(err, tt.status))

			want := tt.wantMessage
			if want == "" {
				want = "fallback"
			}
			assert.Equal(t, want, Message(err, "fallback"))
		})
	}
}

func TestMessage_NonAPIError(t *testing.T) {
	assert.Equal(t, "fallback", Message(errors.New("dial tcp: refused"), "fallback"))
	assert.Equal(t, "fallback", Message(nil, "fallback"))
}

func TestAPIError_Unauthorized(t *testing.T) {
	assert.True(t, (&APIError{Status: 401}).Unauthorized())
	assert.True(t, (&APIError{Status: 403}).Unauthorized())
	assert.False(t, (&APIError{Status: 500}).Unauthorized())
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	f := newTestFactory(t, srv, "")
	srv.Close()

	err := f.New().Get(context.Background(), "/artists", nil, nil)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := newTestFactory(t, srv, "").New().Get(ctx, "/slow", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_CookiesArePerClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "jwtToken", Value: "abc", Path: "/", HttpOnly: true})
		case "/users/profile":
			ck, err := r.Cookie("jwtToken")
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `{"login":"`+ck.Value+`"}`)
		}
	}))
	defer srv.Close()

	f := newTestFactory(t, srv, "")
	alice := f.New()
	bob := f.New()
	ctx := context.Background()

	require.NoError(t, alice.Post(ctx, "/auth/login", nil, map[string]string{}, nil))

	var profile map[string]string
	require.NoError(t, alice.Get(ctx, "/users/profile", nil, &profile))
	assert.Equal(t, "abc", profile["login"])

	err := bob.Get(ctx, "/users/profile", nil, &profile)
	assert.True(t, IsStatus(err, http.StatusUnauthorized), "cookies must not leak between clients")
}

func TestClient_ExportImportClearCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			http.SetCookie(w, &http.Cookie{Name: "jwtToken", Value: "xyz", Path: "/"})
			return
		}
		if _, err := r.Cookie("jwtToken"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	f := newTestFactory(t, srv, "/api")
	ctx := context.Background()

	first := f.New()
	require.NoError(t, first.Post(ctx, "/auth/login", nil, nil, nil))
	exported := first.ExportCookies()
	assert.Equal(t, "jwtToken=xyz", exported)

	restored := f.New()
	restored.ImportCookies(exported)
	assert.NoError(t, restored.Get(ctx, "/users/profile", nil, nil))

	restored.ClearCookies()
	assert.Empty(t, restored.ExportCookies())
	assert.True(t, IsStatus(restored.Get(ctx, "/users/profile", nil, nil), http.StatusUnauthorized))
}

func TestClient_ImportCookiesIgnoresGarbage(t *testing.T) {
	f, err := NewFactory(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	c := f.New()
	c.ImportCookies("\n=novalue\nnoequals\n")
	assert.Empty(t, c.ExportCookies())
}
