// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/artspace-console/internal/i18n"
	"github.com/olegiv/artspace-console/internal/model"
)

// Validation message keys.
const (
	errRequired         = "validation.required"
	errEmail            = "validation.email"
	errDate             = "validation.date"
	errDateTime         = "validation.datetime"
	errNumber           = "validation.number"
	errNegative         = "validation.negative"
	errPasswordMismatch = "validation.password_mismatch"
	errPasswordShort    = "validation.password_short"
	errDateOrder        = "validation.date_order"
	errChoice           = "validation.choice"
)

// MinPasswordLength is the shortest password accepted on registration.
const MinPasswordLength = 6

// visitDateLayout is the value format of <input type="datetime-local">.
const visitDateLayout = "2006-01-02T15:04"

// formErrors maps a form field to an i18n message key. Only the first
// problem of each field is kept.
type formErrors map[string]string

func (e formErrors) add(field, key string) {
	if _, exists := e[field]; !exists {
		e[field] = key
	}
}

func (e formErrors) ok() bool {
	return len(e) == 0
}

// translate resolves the message keys for lang.
func (e formErrors) translate(lang string) map[string]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string]string, len(e))
	for field, key := range e {
		out[field] = i18n.T(lang, key)
	}
	return out
}

// formReader reads trimmed form values and records validation errors.
type formReader struct {
	values url.Values
	errs   formErrors
}

func newFormReader(values url.Values) *formReader {
	return &formReader{values: values, errs: formErrors{}}
}

func (f *formReader) str(field string) string {
	return strings.TrimSpace(f.values.Get(field))
}

func (f *formReader) required(field string) string {
	v := f.str(field)
	if v == "" {
		f.errs.add(field, errRequired)
	}
	return v
}

func (f *formReader) email(field string, required bool) string {
	v := f.str(field)
	switch {
	case v == "" && required:
		f.errs.add(field, errRequired)
	case v != "" && !validEmail(v):
		f.errs.add(field, errEmail)
	}
	return v
}

func (f *formReader) date(field string, required bool) *model.Date {
	d, err := model.ParseDate(f.values.Get(field))
	if err != nil {
		f.errs.add(field, errDate)
		return nil
	}
	if d == nil && required {
		f.errs.add(field, errRequired)
	}
	return d
}

func (f *formReader) dateTime(field string) *model.DateTime {
	v := f.str(field)
	if v == "" {
		return nil
	}
	t, err := time.ParseInLocation(visitDateLayout, v, time.Local)
	if err != nil {
		f.errs.add(field, errDateTime)
		return nil
	}
	return &model.DateTime{Time: t}
}

// price parses an optional non-negative decimal. A comma decimal
// separator is accepted.
func (f *formReader) price(field string) *float64 {
	v := strings.ReplaceAll(f.str(field), ",", ".")
	if v == "" {
		return nil
	}
	p, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.errs.add(field, errNumber)
		return nil
	}
	if p < 0 {
		f.errs.add(field, errNegative)
		return nil
	}
	return &p
}

func (f *formReader) id(field string) *int64 {
	v := f.str(field)
	if v == "" {
		return nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		f.errs.add(field, errChoice)
		return nil
	}
	return &id
}

// ids parses a multi-value field. Order is kept and duplicates are not
// removed.
func (f *formReader) ids(field string) []int64 {
	out := []int64{}
	for _, raw := range f.values[field] {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			f.errs.add(field, errChoice)
			continue
		}
		out = append(out, id)
	}
	return out
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, ".")
}

// parseID parses a positive route id.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Helpers that turn entity fields back into form values.

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func formatIDs(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
