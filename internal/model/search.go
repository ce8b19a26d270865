// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"net/url"
	"strings"
)

// SearchCriteria maps a backend search field to its value.
type SearchCriteria map[string]string

// Clean returns a copy without blank values. The result is nil when
// nothing is left, so callers can treat it as "no search".
func (c SearchCriteria) Clean() SearchCriteria {
	var out SearchCriteria
	for k, v := range c {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if out == nil {
			out = make(SearchCriteria, len(c))
		}
		out[k] = v
	}
	return out
}

// Active reports whether at least one field has a non-blank value.
func (c SearchCriteria) Active() bool {
	return len(c.Clean()) > 0
}

// SearchFields lists the search form fields of each resource.
var SearchFields = map[string][]string{
	"artworks":    {"title", "category", "artistName", "createdAfter"},
	"artists":     {"name", "country"},
	"exhibitions": {"title", "location", "startDate", "endDate"},
	"users":       {"login", "email", "firstName", "lastName", "roleName"},
}

// CriteriaFromQuery collects the given fields from URL query values.
func CriteriaFromQuery(q url.Values, fields []string) SearchCriteria {
	c := make(SearchCriteria, len(fields))
	for _, f := range fields {
		c[f] = q.Get(f)
	}
	return c
}

// Query encodes non-blank criteria back into query values.
func (c SearchCriteria) Query() url.Values {
	q := url.Values{}
	for k, v := range c.Clean() {
		q.Set(k, v)
	}
	return q
}
