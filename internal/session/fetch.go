// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/olegiv/artspace-console/internal/apiclient"
	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/model"
)

// Page sizes used by the list views.
const (
	UsersPageSize   = 10
	CatalogPageSize = 9
)

// FetchPage loads one page of endpoint. Non-blank criteria turn the call
// into POST endpoint/search; otherwise it is a plain GET. Any failure
// yields an empty page at the requested number and sets the store error.
func FetchPage[T any](ctx context.Context, s *Store, endpoint string, page, size int, criteria model.SearchCriteria) model.Page[T] {
	done := s.track()
	defer done()

	if page < 0 {
		page = 0
	}
	query := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}

	var (
		result model.Page[T]
		err    error
	)
	if clean := criteria.Clean(); clean != nil {
		err = s.backend.Post(ctx, strings.TrimRight(endpoint, "/")+"/search", query, clean, &result)
	} else {
		err = s.backend.Get(ctx, endpoint, query, &result)
	}

	if err != nil {
		s.logger.Debug("page fetch failed", "endpoint", endpoint, "page", page, "error", err)
		s.setError(apiclient.Message(err, fetchFallback(s.language(), endpoint)))
		return model.EmptyPage[T](page, size)
	}

	if result.Content == nil {
		result.Content = []T{}
	}
	return result
}

// fetchFallback picks the per-resource message, falling back to a
// generic one.
func fetchFallback(lang, endpoint string) string {
	key := "error.fetch." + strings.Trim(endpoint, "/")
	if msg := i18n.T(lang, key); msg != key {
		return msg
	}
	return i18n.T(lang, "error.fetch_list")
}

// Call runs fn against the store's backend while the store reports
// loading. A failure sets the store error: the backend's own message if it
// sent one, otherwise the translation of fallbackKey.
func (s *Store) Call(ctx context.Context, fallbackKey string, fn func(ctx context.Context, b Backend) error) error {
	done := s.track()
	defer done()

	if err := fn(ctx, s.backend); err != nil {
		s.setError(apiclient.Message(err, i18n.T(s.language(), fallbackKey)))
		return err
	}
	return nil
}
