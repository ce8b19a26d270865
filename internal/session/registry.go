// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olegiv/artspace-console/internal/apiclient"
)

// DefaultIdleTTL is how long an unused visitor store is kept in memory.
const DefaultIdleTTL = 2 * time.Hour

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	Logger           *slog.Logger
	IdleTTL          time.Duration
	BootstrapTimeout time.Duration
}

type visitor struct {
	store    *Store
	client   *apiclient.Client
	lastSeen atomic.Int64
	unsub    func()
}

func (v *visitor) touch(now time.Time) {
	v.lastSeen.Store(now.UnixNano())
}

// Registry keeps one live Store per visitor id.
type Registry struct {
	factory *apiclient.Factory
	cfg     RegistryConfig
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRegistry creates an empty registry building clients from factory.
func NewRegistry(factory *apiclient.Factory, cfg RegistryConfig) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	return &Registry{
		factory:  factory,
		cfg:      cfg,
		logger:   cfg.Logger,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Acquire returns the store of visitor id, creating it when needed.
// A new store's client is seeded with cookies saved by SaveCookies, and
// created reports whether that happened.
func (r *Registry) Acquire(id, cookies, lang string) (store *Store, client *apiclient.Client, created bool) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.visitors[id]; ok {
		v.touch(now)
		return v.store, v.client, false
	}

	client = r.factory.New()
	client.ImportCookies(cookies)
	store = NewStore(client, Options{
		Logger:           r.logger.With("visitor", shortID(id)),
		Language:         lang,
		BootstrapTimeout: r.cfg.BootstrapTimeout,
	})

	v := &visitor{store: store, client: client}
	v.touch(now)
	v.unsub = store.Subscribe(authTransitionLogger(r.logger, id))
	r.visitors[id] = v

	return store, client, true
}

// Get returns the store of visitor id if it is live.
func (r *Registry) Get(id string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visitors[id]
	if !ok {
		return nil, false
	}
	return v.store, true
}

// Forget drops visitor id.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	v, ok := r.visitors[id]
	delete(r.visitors, id)
	r.mu.Unlock()
	if ok {
		v.unsub()
	}
}

// Len returns the number of live visitors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Sweep drops visitors idle for longer than the configured TTL and
// returns how many were removed. Busy stores are kept.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.cfg.IdleTTL).UnixNano()

	var dropped []*visitor
	r.mu.Lock()
	for id, v := range r.visitors {
		if v.lastSeen.Load() >= cutoff || v.store.IsLoading() {
			continue
		}
		delete(r.visitors, id)
		dropped = append(dropped, v)
	}
	r.mu.Unlock()

	for _, v := range dropped {
		v.unsub()
	}
	if len(dropped) > 0 {
		r.logger.Debug("swept idle visitors", "count", len(dropped))
	}
	return len(dropped)
}

// authTransitionLogger logs sign-in and sign-out transitions of a store.
func authTransitionLogger(logger *slog.Logger, id string) func(Snapshot) {
	var authenticated atomic.Bool
	return func(snap Snapshot) {
		if authenticated.Swap(snap.Authenticated) == snap.Authenticated {
			return
		}
		if snap.Authenticated {
			logger.Info("visitor authenticated", "visitor", shortID(id), "login", snap.User.Login, "role", snap.User.RoleName)
		} else {
			logger.Info("visitor signed out", "visitor", shortID(id))
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
