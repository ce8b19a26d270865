// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package search coalesces rapid live-search requests.
package search

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned to a waiter replaced by a newer call on the same key.
var ErrSuperseded = errors.New("search: superseded by a newer request")

// ErrStopped is returned once the debouncer has been stopped.
var ErrStopped = errors.New("search: debouncer stopped")

// Config holds debouncer configuration.
type Config struct {
	// Interval is the quiet period a key needs before its newest waiter proceeds.
	Interval time.Duration
	// MaxWait lets a waiter through even while calls keep coming. Zero disables it.
	MaxWait time.Duration
}

// DefaultConfig returns default debounce configuration.
func DefaultConfig() Config {
	return Config{
		Interval: 300 * time.Millisecond,
		MaxWait:  2 * time.Second,
	}
}

type waiter struct {
	done      chan error
	timer     *time.Timer
	firstSeen time.Time
}

// Debouncer is a keyed, cancellable timer. Of several overlapping Wait
// calls on one key only the last returns nil.
type Debouncer struct {
	config  Config
	mu      sync.Mutex
	pending map[string]*waiter
	stopped bool
}

// NewDebouncer creates a debouncer.
func NewDebouncer(config Config) *Debouncer {
	return &Debouncer{
		config:  config,
		pending: make(map[string]*waiter),
	}
}

// Wait blocks until key has been quiet for the interval. It returns
// ErrSuperseded if another Wait on key starts first, or ctx.Err() if ctx
// ends first.
func (d *Debouncer) Wait(ctx context.Context, key string) error {
	now := time.Now()

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return ErrStopped
	}

	w := &waiter{done: make(chan error, 1), firstSeen: now}
	delay := d.config.Interval
	if prev, ok := d.pending[key]; ok {
		d.releaseLocked(key, prev, ErrSuperseded)
		w.firstSeen = prev.firstSeen
		if d.config.MaxWait > 0 && now.Sub(prev.firstSeen) >= d.config.MaxWait {
			delay = 0
		}
	}
	d.pending[key] = w
	w.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.pending[key] == w {
			d.releaseLocked(key, w, nil)
		}
	})
	d.mu.Unlock()

	select {
	case err := <-w.done:
		return err
	case <-ctx.Done():
		d.mu.Lock()
		if d.pending[key] == w {
			w.timer.Stop()
			delete(d.pending, key)
		}
		d.mu.Unlock()
		return ctx.Err()
	}
}

// releaseLocked removes w and hands it its result. Must be called with lock held.
func (d *Debouncer) releaseLocked(key string, w *waiter, err error) {
	w.timer.Stop()
	delete(d.pending, key)
	w.done <- err
}

// PendingCount returns the number of keys with a waiter.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop releases every waiter with ErrStopped and rejects new calls.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, w := range d.pending {
		d.releaseLocked(key, w, ErrStopped)
	}
}
