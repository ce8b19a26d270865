// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/olegiv/artspace-console/internal/apiclient"
	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/model"
)

// Backend endpoints used by the session store.
const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathLogout   = "/auth/logout"
	PathProfile  = "/users/profile"
)

// DefaultBootstrapTimeout bounds the initial auth check.
const DefaultBootstrapTimeout = 10 * time.Second

// Backend is the subset of the API client the store needs.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, query url.Values, in, out any) error
	Put(ctx context.Context, path string, query url.Values, in, out any) error
	Delete(ctx context.Context, path string) error
	ClearCookies()
}

// Snapshot is a consistent copy of the store state.
type Snapshot struct {
	User          *model.UserProfile
	Authenticated bool
	Loading       bool
	LastError     string
}

// IsAdmin reports whether the snapshot's user has the ADMIN role.
func (s Snapshot) IsAdmin() bool {
	return s.User.IsAdmin()
}

// Options configures a Store.
type Options struct {
	Logger           *slog.Logger
	Language         string
	BootstrapTimeout time.Duration
}

// Store is the authentication and loading state of one visitor.
//
// Authenticated is derived from the user and never stored on its own.
// Loading is a counter of operations in flight. Every session call takes
// a request token and its result is dropped if a newer session call has
// started meanwhile. Login and logout also move the auth epoch: a login
// result is kept unless a later login or logout began, and a logout
// clears the user whatever ran alongside it.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu        sync.Mutex
	user      *model.UserProfile
	lastError string
	lang      string
	inflight  int
	idle      chan struct{}
	token     uint64
	epoch     uint64
	observers map[int]func(Snapshot)
	nextObs   int

	ready chan struct{}
}

// NewStore creates a store and starts the initial auth check in the
// background. The store reports loading until that check finishes.
func NewStore(backend Backend, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lang := opts.Language
	if lang == "" {
		lang = i18n.DefaultLanguage
	}
	timeout := opts.BootstrapTimeout
	if timeout <= 0 {
		timeout = DefaultBootstrapTimeout
	}

	s := &Store{
		backend:   backend,
		logger:    logger,
		lang:      lang,
		idle:      closedChan(),
		observers: make(map[int]func(Snapshot)),
		ready:     make(chan struct{}),
	}

	tok := s.begin()
	go func() {
		defer close(s.ready)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.checkAuth(ctx, tok)
	}()

	return s
}

// Ready is closed once the initial auth check has finished.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// SetLanguage selects the language of fallback error messages.
func (s *Store) SetLanguage(lang string) {
	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()
}

// User returns the authenticated user, or nil.
func (s *Store) User() *model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAuthenticated reports whether a user is set.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// IsLoading reports whether any operation is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// LastError returns the most recent failure message, or "".
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ClearError dismisses the current error.
func (s *Store) ClearError() {
	s.update(func() bool {
		if s.lastError == "" {
			return false
		}
		s.lastError = ""
		return true
	})
}

// ConsumeError returns the current error and clears it.
func (s *Store) ConsumeError() string {
	var msg string
	s.update(func() bool {
		msg = s.lastError
		s.lastError = ""
		return msg != ""
	})
	return msg
}

// Subscribe registers fn to receive a snapshot after every state change.
// Observers run outside the store lock. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// WaitIdle blocks until no operation is in flight or ctx is done.
func (s *Store) WaitIdle(ctx context.Context) error {
	s.mu.Lock()
	if s.inflight == 0 {
		s.mu.Unlock()
		return nil
	}
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login authenticates with the backend and loads the profile.
// Failures are reported through LastError. It returns true only if the
// user was set, so a login overtaken by a later login or logout reports
// false.
func (s *Store) Login(ctx context.Context, login, password string) bool {
	tok, epoch := s.beginAuth()

	err := s.backend.Post(ctx, PathLogin, nil, model.Credentials{Login: login, Password: password}, nil)
	if err != nil {
		s.finish(tok, func() {
			s.user = nil
			s.lastError = apiclient.Message(err, i18n.T(s.lang, "error.login"))
		})
		s.logger.Debug("login rejected", "login", login, "error", err)
		return false
	}

	var profile model.UserProfile
	if err := s.backend.Get(ctx, PathProfile, nil, &profile); err != nil {
		s.finish(tok, func() {
			s.user = nil
			s.lastError = apiclient.Message(err, i18n.T(s.lang, "error.login"))
		})
		return false
	}

	if !s.commitAuth(epoch, func() { s.setUserLocked(&profile) }) {
		s.logger.Debug("discarding superseded login", "login", login)
		return false
	}
	return true
}

// Register creates an account. It does not log the visitor in.
func (s *Store) Register(ctx context.Context, req model.RegisterRequest) bool {
	tok := s.beginClear()

	if err := s.backend.Post(ctx, PathRegister, nil, req, nil); err != nil {
		s.finish(tok, func() {
			s.lastError = apiclient.Message(err, i18n.T(s.lang, "error.register"))
		})
		return false
	}

	s.finish(tok, nil)
	return true
}

// CheckAuth asks the backend who the visitor is. Failure leaves the
// visitor anonymous and is not reported as an error.
func (s *Store) CheckAuth(ctx context.Context) {
	s.checkAuth(ctx, s.begin())
}

func (s *Store) checkAuth(ctx context.Context, tok uint64) {
	var profile model.UserProfile
	if err := s.backend.Get(ctx, PathProfile, nil, &profile); err != nil {
		s.logger.Debug("visitor not authenticated", "error", err)
		s.finish(tok, func() { s.user = nil })
		return
	}
	s.finish(tok, func() { s.setUserLocked(&profile) })
}

// FetchUserProfile reloads the profile. On failure the user is cleared
// and the error returned.
func (s *Store) FetchUserProfile(ctx context.Context) (*model.UserProfile, error) {
	tok := s.begin()

	var profile model.UserProfile
	if err := s.backend.Get(ctx, PathProfile, nil, &profile); err != nil {
		s.finish(tok, func() { s.user = nil })
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	s.finish(tok, func() { s.setUserLocked(&profile) })
	return &profile, nil
}

// UpdateProfile saves the profile and replaces the user with the
// backend's representation.
func (s *Store) UpdateProfile(ctx context.Context, p model.UserProfile) (*model.UserProfile, error) {
	tok := s.begin()

	var saved model.UserProfile
	if err := s.backend.Put(ctx, PathProfile, nil, p, &saved); err != nil {
		s.finish(tok, func() {
			s.lastError = apiclient.Message(err, i18n.T(s.lang, "error.profile_update"))
		})
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	s.finish(tok, func() { s.setUserLocked(&saved) })
	return &saved, nil
}

// Logout tells the backend to end the session and clears the user
// whatever the backend answers.
// Calls started while the logout was in flight carried the old cookies,
// so their results are discarded too.
func (s *Store) Logout(ctx context.Context) {
	s.beginAuth()

	if err := s.backend.Post(ctx, PathLogout, nil, nil, nil); err != nil {
		s.logger.Warn("logout request failed", "error", err)
	}
	s.backend.ClearCookies()

	s.update(func() bool {
		s.user = nil
		s.token++
		s.doneLocked()
		return true
	})
}

// Token returns the latest issued request token.
func (s *Store) Token() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) setUserLocked(u *model.UserProfile) {
	s.user = u
	s.lastError = ""
}

// begin issues a new request token and marks an operation in flight.
func (s *Store) begin() uint64 {
	var tok uint64
	s.update(func() bool {
		s.token++
		tok = s.token
		s.startLocked()
		return true
	})
	return tok
}

// beginClear is begin plus clearing the previous error.
func (s *Store) beginClear() uint64 {
	var tok uint64
	s.update(func() bool {
		s.token++
		tok = s.token
		s.lastError = ""
		s.startLocked()
		return true
	})
	return tok
}

// beginAuth is beginClear for login and logout. It also starts a new
// auth epoch, voiding any login still in flight.
func (s *Store) beginAuth() (tok, epoch uint64) {
	s.update(func() bool {
		s.token++
		s.epoch++
		tok, epoch = s.token, s.epoch
		s.lastError = ""
		s.startLocked()
		return true
	})
	return tok, epoch
}

// commitAuth ends a login. apply runs if no other login or logout began
// after it, and the token moves on so reads that raced the login are
// discarded. It reports whether apply ran.
func (s *Store) commitAuth(epoch uint64, apply func()) bool {
	var applied bool
	s.update(func() bool {
		if epoch == s.epoch {
			apply()
			s.token++
			applied = true
		}
		s.doneLocked()
		return true
	})
	return applied
}

// finish ends an operation. apply runs only if tok is still the latest.
func (s *Store) finish(tok uint64, apply func()) {
	s.update(func() bool {
		if apply != nil && tok == s.token {
			apply()
		} else if apply != nil {
			s.logger.Debug("discarding stale session result", "token", tok, "latest", s.token)
		}
		s.doneLocked()
		return true
	})
}

// track marks an operation that does not touch the session in flight
// and returns the func that ends it.
func (s *Store) track() func() {
	s.update(func() bool {
		s.startLocked()
		return true
	})
	var once sync.Once
	return func() {
		once.Do(func() {
			s.update(func() bool {
				s.doneLocked()
				return true
			})
		})
	}
}

func (s *Store) setError(msg string) {
	s.update(func() bool {
		s.lastError = msg
		return true
	})
}

func (s *Store) language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

func (s *Store) startLocked() {
	if s.inflight == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight++
}

func (s *Store) doneLocked() {
	if s.inflight == 0 {
		return
	}
	s.inflight--
	if s.inflight == 0 {
		close(s.idle)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		User:          s.user,
		Authenticated: s.user != nil,
		Loading:       s.inflight > 0,
		LastError:     s.lastError,
	}
}

// update applies fn under the lock and notifies observers if fn
// reports a change.
func (s *Store) update(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	observers := make([]func(Snapshot), 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
