// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/artspace-console/internal/apiclient"
	"github.com/olegiv/artspace-console/internal/testutil"
)

func newRegistry(t *testing.T, b *testutil.FakeBackend) *Registry {
	t.Helper()
	f, err := apiclient.NewFactory(apiclient.Config{BaseURL: b.URL(), Logger: testutil.TestLogger()})
	require.NoError(t, err)
	return NewRegistry(f, RegistryConfig{Logger: testutil.TestLogger(), IdleTTL: time.Hour})
}

func TestRegistry_AcquireReusesStore(t *testing.T) {
	r := newRegistry(t, newBackend(t))

	s1, c1, created := r.Acquire("visitor-1", "", "en")
	require.True(t, created)
	s2, c2, created := r.Acquire("visitor-1", "", "en")
	assert.False(t, created)
	assert.Same(t, s1, s2)
	assert.Same(t, c1, c2)

	s3, _, created := r.Acquire("visitor-2", "", "en")
	assert.True(t, created)
	assert.NotSame(t, s1, s3)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_AcquireRestoresCookies(t *testing.T) {
	b := newBackend(t)
	r := newRegistry(t, b)

	s, _, _ := r.Acquire("visitor-1", testutil.BackendCookie+"="+b.Session("alice"), "en")
	<-s.Ready()

	require.True(t, s.IsAuthenticated())
	assert.Equal(t, "alice", s.User().Login)
}

func TestRegistry_SweepDropsIdleVisitors(t *testing.T) {
	r := newRegistry(t, newBackend(t))
	now := time.Now()
	r.now = func() time.Time { return now }

	old, _, _ := r.Acquire("old", "", "en")
	<-old.Ready()

	now = now.Add(45 * time.Minute)
	fresh, _, _ := r.Acquire("fresh", "", "en")
	<-fresh.Ready()

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 1, r.Sweep())

	_, ok := r.Get("old")
	assert.False(t, ok)
	_, ok = r.Get("fresh")
	assert.True(t, ok)
}

func TestRegistry_Forget(t *testing.T) {
	r := newRegistry(t, newBackend(t))
	r.Acquire("visitor-1", "", "en")

	r.Forget("visitor-1")
	r.Forget("missing")

	assert.Equal(t, 0, r.Len())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "12345678", shortID("1234567890"))
}
