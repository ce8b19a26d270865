// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uikit provides reusable template helpers, pagination logic,
// and view model types.
package uikit

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/artspace-console/internal/model"
)

// MonthsRu contains Russian month names in genitive case.
var MonthsRu = []string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// TemplateFuncs returns a template.FuncMap with pure helper functions.
// Callers merge project-specific functions on top.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Strings
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"hasPrefix": strings.HasPrefix,
		"truncate":  Truncate,
		"initials":  Initials,

		// Math
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},

		// Time
		"now":                  time.Now,
		"formatDateLocale":     func(t any, lang string) string { return ApplyTimeFormatter(t, lang, FormatDateForLocale) },
		"formatDateTimeLocale": func(t any, lang string) string { return ApplyTimeFormatter(t, lang, FormatDateTimeForLocale) },
		"dateInput":            DateInput,

		// Numbers
		"formatPrice": FormatPrice,
		"priceInput": func(p *float64) string {
			if p == nil {
				return ""
			}
			return strconv.FormatFloat(*p, 'f', -1, 64)
		},
		"deref": func(p *int64) int64 {
			if p == nil {
				return 0
			}
			return *p
		},
		"hasID": func(ids []int64, id int64) bool {
			for _, v := range ids {
				if v == id {
					return true
				}
			}
			return false
		},
		"hasValue": HasValue,

		// JSON
		"toJSON": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return "null"
			}
			return template.JS(b)
		},

		// Data structures
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				dict[key] = values[i+1]
			}
			return dict
		},
	}
}

// Truncate shortens s to length runes, appending "...".
func Truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length]) + "..."
}

// Initials returns up to two upper-case initials of a name.
func Initials(name string) string {
	var out []rune
	for _, f := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(f))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// HasValue reports whether the string form of v is one of values. Forms
// use it to keep multi-select choices after a failed submit.
func HasValue(values []string, v any) bool {
	s := fmt.Sprint(v)
	for _, val := range values {
		if val == s {
			return true
		}
	}
	return false
}

// FormatPrice renders a price with two decimals, or "" when unset.
func FormatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

// DateInput formats a date for an <input type="date"> value.
func DateInput(d *model.Date) string {
	return d.String()
}

// FormatDateForLocale formats a date according to the specified language.
func FormatDateForLocale(t time.Time, lang string) string {
	if lang == "ru" {
		return fmt.Sprintf("%d %s %d", t.Day(), MonthsRu[t.Month()-1], t.Year())
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateTimeForLocale formats a time.Time as a localized datetime string.
func FormatDateTimeForLocale(t time.Time, lang string) string {
	if lang == "ru" {
		return fmt.Sprintf("%d %s %d, %02d:%02d", t.Day(), MonthsRu[t.Month()-1], t.Year(), t.Hour(), t.Minute())
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// ApplyTimeFormatter applies formatter to a time value of any supported
// type. Nil pointers and unsupported types yield "".
func ApplyTimeFormatter(t any, lang string, formatter func(time.Time, string) string) string {
	var tm time.Time
	switch v := t.(type) {
	case time.Time:
		tm = v
	case *time.Time:
		if v == nil {
			return ""
		}
		tm = *v
	case *model.Date:
		if v == nil {
			return ""
		}
		tm = v.Time
	case *model.DateTime:
		if v == nil {
			return ""
		}
		tm = v.Time
	default:
		return ""
	}
	if tm.IsZero() {
		return ""
	}
	return formatter(tm, lang)
}
