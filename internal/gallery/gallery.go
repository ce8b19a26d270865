// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package gallery provides typed access to the ArtSpace catalog and user
// resources through a visitor's session store.
package gallery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/olegiv/artspace-console/internal/model"
	"github.com/olegiv/artspace-console/internal/session"
)

// Resource is one backend collection such as /artworks.
type Resource[T any] struct {
	Endpoint string
	PageSize int
}

// Catalog and user resources.
var (
	Artworks    = Resource[model.Artwork]{Endpoint: "/artworks", PageSize: session.CatalogPageSize}
	Artists     = Resource[model.Artist]{Endpoint: "/artists", PageSize: session.CatalogPageSize}
	Exhibitions = Resource[model.Exhibition]{Endpoint: "/exhibitions", PageSize: session.CatalogPageSize}
	Users       = Resource[model.User]{Endpoint: "/users", PageSize: session.UsersPageSize}
)

// Name is the resource name without the leading slash.
func (r Resource[T]) Name() string {
	return strings.Trim(r.Endpoint, "/")
}

func (r Resource[T]) path(op string) string {
	return strings.TrimRight(r.Endpoint, "/") + "/" + op
}

// List returns one page, searching when criteria has non-blank values.
// Failures yield an empty page and set the store error.
func (r Resource[T]) List(ctx context.Context, s *session.Store, page, size int, criteria model.SearchCriteria) model.Page[T] {
	if size <= 0 {
		size = r.PageSize
	}
	return session.FetchPage[T](ctx, s, r.Endpoint, page, size, criteria)
}

// All returns every item without paging.
func (r Resource[T]) All(ctx context.Context, s *session.Store) ([]T, error) {
	var items []T
	err := s.Call(ctx, "error.fetch."+r.Name(), func(ctx context.Context, b session.Backend) error {
		return b.Get(ctx, r.path("getAll"), nil, &items)
	})
	if err != nil {
		return nil, fmt.Errorf("listing all %s: %w", r.Name(), err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get returns the item with id.
func (r Resource[T]) Get(ctx context.Context, s *session.Store, id int64) (T, error) {
	var item T
	err := s.Call(ctx, "error.fetch_one", func(ctx context.Context, b session.Backend) error {
		return b.Get(ctx, r.path("getOneById"), idQuery(id), &item)
	})
	if err != nil {
		return item, fmt.Errorf("getting %s %d: %w", r.Name(), id, err)
	}
	return item, nil
}

// Create adds v and returns the backend's representation.
func (r Resource[T]) Create(ctx context.Context, s *session.Store, v T) (T, error) {
	var saved T
	err := s.Call(ctx, "error.save", func(ctx context.Context, b session.Backend) error {
		return b.Post(ctx, r.path("add"), nil, v, &saved)
	})
	if err != nil {
		return saved, fmt.Errorf("creating %s: %w", r.Name(), err)
	}
	return saved, nil
}

// Update replaces the item with id and returns the backend's representation.
func (r Resource[T]) Update(ctx context.Context, s *session.Store, id int64, v T) (T, error) {
	var saved T
	err := s.Call(ctx, "error.save", func(ctx context.Context, b session.Backend) error {
		return b.Put(ctx, r.path("update"), idQuery(id), v, &saved)
	})
	if err != nil {
		return saved, fmt.Errorf("updating %s %d: %w", r.Name(), id, err)
	}
	return saved, nil
}

// Delete removes the item with id.
func (r Resource[T]) Delete(ctx context.Context, s *session.Store, id int64) error {
	err := s.Call(ctx, "error.delete", func(ctx context.Context, b session.Backend) error {
		return b.Delete(ctx, r.path("delete/"+strconv.FormatInt(id, 10)))
	})
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", r.Name(), id, err)
	}
	return nil
}

func idQuery(id int64) url.Values {
	return url.Values{"id": {strconv.FormatInt(id, 10)}}
}
