// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Pagination holds pagination data for list templates. The backend numbers
// pages from zero; Index fields keep that numbering while Number fields
// are what the visitor sees (one-based).
type Pagination struct {
	CurrentIndex int
	TotalPages   int
	TotalItems   int64
	PerPage      int
	HasPrev      bool
	HasNext      bool
	BaseURL      string
	QueryString  string
	Pages        []PaginationPage
}

// PaginationPage represents a single page link in pagination.
type PaginationPage struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// BuildPagination creates pagination data from a zero-based page index.
// baseURL is the path without query string (e.g. "/admin/artists") and
// queryParams are preserved in every link except for "page".
func BuildPagination(index, totalPages int, totalItems int64, perPage int, baseURL string, queryParams url.Values) Pagination {
	if totalPages < 1 {
		totalPages = 1
	}
	p := Pagination{
		CurrentIndex: index,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		PerPage:      perPage,
		HasPrev:      index > 0,
		HasNext:      index < totalPages-1,
		BaseURL:      baseURL,
	}

	params := make(url.Values)
	for k, v := range queryParams {
		if k != "page" && k != "fragment" && len(v) > 0 && v[0] != "" {
			params[k] = v
		}
	}
	if len(params) > 0 {
		p.QueryString = params.Encode()
	}

	// Display numbers are one-based.
	p.Pages = BuildPaginationPages(index+1, totalPages, func(number int) string {
		return p.PageURL(number - 1)
	}, func(number int, pageURL string, isCurrent, isEllipsis bool) PaginationPage {
		return PaginationPage{Number: number, URL: pageURL, IsCurrent: isCurrent, IsEllipsis: isEllipsis}
	})

	return p
}

// PageURL returns the URL for a zero-based page index.
func (p Pagination) PageURL(index int) string {
	if p.QueryString != "" {
		return fmt.Sprintf("%s?%s&page=%d", p.BaseURL, p.QueryString, index)
	}
	return fmt.Sprintf("%s?page=%d", p.BaseURL, index)
}

// PrevURL returns the URL for the previous page.
func (p Pagination) PrevURL() string {
	return p.PageURL(p.CurrentIndex - 1)
}

// NextURL returns the URL for the next page.
func (p Pagination) NextURL() string {
	return p.PageURL(p.CurrentIndex + 1)
}

// CurrentNumber is the one-based number of the current page.
func (p Pagination) CurrentNumber() int {
	return p.CurrentIndex + 1
}

// ShouldShow returns true if pagination should be displayed (more than 1 page).
func (p Pagination) ShouldShow() bool {
	return p.TotalPages > 1
}

// PageRange describes the items on the current page, e.g. "10-18".
func (p Pagination) PageRange() string {
	if p.TotalItems == 0 {
		return "0"
	}
	start := p.CurrentIndex*p.PerPage + 1
	end := min(int64((p.CurrentIndex+1)*p.PerPage), p.TotalItems)
	return fmt.Sprintf("%d-%d", start, end)
}

// BuildPaginationPages generates page links with ellipsis for any pagination type.
// It shows 5 page numbers centered on the current page, with "..." for gaps,
// and always includes the first and last pages.
func BuildPaginationPages[T any](
	currentPage, totalPages int,
	buildURL func(int) string,
	makePage func(number int, pageURL string, isCurrent, isEllipsis bool) T,
) []T {
	var pages []T

	start := currentPage - 2
	end := currentPage + 2
	if start < 1 {
		start = 1
		end = 5
	}
	if end > totalPages {
		end = totalPages
		start = max(end-4, 1)
	}

	if start > 1 {
		pages = append(pages, makePage(1, buildURL(1), false, false))
		if start > 2 {
			pages = append(pages, makePage(0, "", false, true))
		}
	}

	for i := start; i <= end; i++ {
		pages = append(pages, makePage(i, buildURL(i), i == currentPage, false))
	}

	if end < totalPages {
		if end < totalPages-1 {
			pages = append(pages, makePage(0, "", false, true))
		}
		pages = append(pages, makePage(totalPages, buildURL(totalPages), false, false))
	}

	return pages
}

// ParsePageIndex parses the zero-based "page" query parameter.
// Missing, invalid or negative values yield 0.
func ParsePageIndex(r *http.Request) int {
	v, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ParseIntParam parses an integer query parameter from the request.
// Returns defaultVal if the parameter is missing, invalid or outside
// [minVal, maxVal]; a zero maxVal means no upper bound.
func ParseIntParam(r *http.Request, param string, defaultVal, minVal, maxVal int) int {
	val, err := strconv.Atoi(r.URL.Query().Get(param))
	if err != nil {
		return defaultVal
	}
	if val < minVal || (maxVal > 0 && val > maxVal) {
		return defaultVal
	}
	return val
}
