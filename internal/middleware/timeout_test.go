// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithTimeout(d time.Duration, target string, h http.HandlerFunc, skip ...string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	Timeout(d, skip...)(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestTimeout_FastHandler(t *testing.T) {
	rec := serveWithTimeout(time.Second, "/artworks", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Page", "0")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("grid"))
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-Page"))
	assert.Equal(t, "grid", rec.Body.String())
}

func TestTimeout_SlowHandlerGets503(t *testing.T) {
	rec := serveWithTimeout(30*time.Millisecond, "/admin/users", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
			_, _ = w.Write([]byte("too late"))
		case <-r.Context().Done():
		}
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Request timeout", rec.Body.String())
}

func TestTimeout_SkipsSessionStream(t *testing.T) {
	rec := serveWithTimeout(30*time.Millisecond, "/events/session", func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline := r.Context().Deadline()
		assert.False(t, hasDeadline, "streams must not get a deadline")
		_, isFlusher := w.(http.Flusher)
		assert.True(t, isFlusher, "streams must keep the original writer")
		w.WriteHeader(http.StatusOK)
	}, "/events/")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTimeoutWriter(t *testing.T) {
	t.Run("implicit 200 on write", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tw := &timeoutWriter{ResponseWriter: rec}

		n, err := tw.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.True(t, tw.wroteHeader)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("first status wins", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tw := &timeoutWriter{ResponseWriter: rec}

		tw.WriteHeader(http.StatusAccepted)
		tw.WriteHeader(http.StatusNotFound)
		_, _ = tw.Write([]byte("ok"))
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("writes dropped after timeout", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tw := &timeoutWriter{ResponseWriter: rec, timedOut: true}

		_, err := tw.Write([]byte("late"))
		assert.ErrorIs(t, err, http.ErrHandlerTimeout)
		tw.WriteHeader(http.StatusCreated)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, rec.Body.Len())
	})
}
