// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginProtection_Lockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{MaxFailedAttempts: 3, LockoutDuration: time.Minute})
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		locked, _ := lp.RecordFailure("Alice")
		assert.False(t, locked)
	}
	assert.Equal(t, 1, lp.RemainingAttempts("alice"))

	locked, d := lp.RecordFailure(" alice ")
	assert.True(t, locked)
	assert.Equal(t, time.Minute, d)

	isLocked, remaining := lp.IsLocked("ALICE")
	assert.True(t, isLocked)
	assert.Equal(t, time.Minute, remaining)

	now = now.Add(2 * time.Minute)
	isLocked, _ = lp.IsLocked("alice")
	assert.False(t, isLocked)
}

func TestLoginProtection_LockoutDoubles(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{MaxFailedAttempts: 2, LockoutDuration: time.Minute})
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }

	lp.RecordFailure("bob")
	_, first := lp.RecordFailure("bob")
	now = now.Add(2 * time.Minute)
	lp.RecordFailure("bob")
	_, second := lp.RecordFailure("bob")

	assert.Equal(t, time.Minute, first)
	assert.Equal(t, 2*time.Minute, second)
}

func TestLoginProtection_WindowResets(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{MaxFailedAttempts: 2, AttemptWindow: time.Minute})
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }

	lp.RecordFailure("carol")
	now = now.Add(2 * time.Minute)
	locked, _ := lp.RecordFailure("carol")
	assert.False(t, locked, "failures outside the window start a new count")
	assert.Equal(t, 1, lp.RemainingAttempts("carol"))
}

func TestLoginProtection_SuccessClears(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{MaxFailedAttempts: 3})
	lp.RecordFailure("dave")
	lp.RecordSuccess("dave")
	assert.Equal(t, 3, lp.RemainingAttempts("dave"))
}

func TestLoginProtection_Cleanup(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{AttemptWindow: time.Minute})
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }

	lp.RecordFailure("erin")
	now = now.Add(time.Hour)
	lp.Cleanup()

	lp.attemptsMu.RLock()
	defer lp.attemptsMu.RUnlock()
	assert.Empty(t, lp.failedAttempts)
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 2})
	h := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	post := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, post("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.1:1002"), "same IP, different port")
	assert.Equal(t, http.StatusOK, post("10.0.0.2:1000"))

	get := httptest.NewRequest(http.MethodGet, "/login", nil)
	get.RemoteAddr = "10.0.0.1:1003"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, get)
	assert.Equal(t, http.StatusOK, rec.Code, "GET is never limited")
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.5:4431"
	assert.Equal(t, "192.168.1.5", ClientIP(r))

	r.RemoteAddr = "192.168.1.5"
	assert.Equal(t, "192.168.1.5", ClientIP(r))
}
