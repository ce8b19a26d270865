// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "encoding/json"

// Page is one page of a server-paginated list. Number is zero-based and
// Content is ordered as the server returned it.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// EmptyPage returns a page with no content positioned at number.
func EmptyPage[T any](number, size int) Page[T] {
	return Page[T]{Content: []T{}, Number: number, Size: size}
}

// UnmarshalJSON decodes a page and guarantees a non-nil Content slice.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	type plain Page[T]
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Content == nil {
		v.Content = []T{}
	}
	*p = Page[T](v)
	return nil
}

// IsEmpty reports whether the page has no rows.
func (p Page[T]) IsEmpty() bool {
	return len(p.Content) == 0
}
