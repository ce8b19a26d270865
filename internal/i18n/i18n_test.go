// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package i18n

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initCatalog(t *testing.T) {
	t.Helper()
	require.NoError(t, Init(nil))
}

func readMessageFile(t *testing.T, lang string) MessageFile {
	t.Helper()
	data, err := localesFS.ReadFile(fmt.Sprintf("locales/%s/messages.json", lang))
	require.NoError(t, err)

	var f MessageFile
	require.NoError(t, json.Unmarshal(data, &f), "parsing %s catalog", lang)
	return f
}

func TestInit(t *testing.T) {
	initCatalog(t)

	for _, lang := range SupportedLanguages {
		assert.Positive(t, TranslationCount(lang), lang)
	}
	assert.Zero(t, TranslationCount("de"))
}

func TestT(t *testing.T) {
	initCatalog(t)

	tests := []struct {
		lang string
		key  string
		args []any
		want string
	}{
		{"en", "action.save", nil, "Save"},
		{"ru", "action.save", nil, "Сохранить"},
		{"ru", "nav.dashboard", nil, "Панель управления"},
		{"en", "msg.deleted", []any{"Artist"}, "Artist deleted"},
		{"en", "auth.locked", []any{15}, "Too many failed attempts. Try again in 15 min."},
		{"ru", "tickets.purchased", []any{"TCK-1"}, "Билет TCK-1 куплен"},
		{"en", "error.fetch.artworks", nil, "Could not load artworks"},
		{"de", "action.save", nil, "Save"},
		{"en", "no.such.key", nil, "no.such.key"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, T(tt.lang, tt.key, tt.args...))
		})
	}
}

func TestT_BeforeInit(t *testing.T) {
	saved := catalog
	catalog = nil
	t.Cleanup(func() { catalog = saved })

	assert.Equal(t, "action.save", T("en", "action.save"))
	assert.Equal(t, DefaultLanguage, MatchLanguage("ru"))
}

func TestMatchLanguage(t *testing.T) {
	initCatalog(t)

	tests := map[string]string{
		"ru":                           "ru",
		"ru-RU":                        "ru",
		"en-GB":                        "en",
		"fr":                           "en",
		"???":                          "en",
		"ru-RU, en;q=0.9":              "ru",
		"de-DE, en-US;q=0.8, ru;q=0.5": "en",
	}

	for header, want := range tests {
		t.Run(header, func(t *testing.T) {
			assert.Equal(t, want, MatchLanguage(header))
		})
	}
}

func TestIsSupported(t *testing.T) {
	for _, lang := range []string{"en", "ru", "RU"} {
		assert.True(t, IsSupported(lang), lang)
	}
	for _, lang := range []string{"", "de", "en-US"} {
		assert.False(t, IsSupported(lang), lang)
	}
}

// Every catalog must define the same ids, each exactly once.
func TestCatalogsDefineSameKeys(t *testing.T) {
	ids := make(map[string][]string)

	for _, lang := range SupportedLanguages {
		seen := make(map[string]bool)
		for _, msg := range readMessageFile(t, lang).Messages {
			assert.False(t, seen[msg.ID], "%s: duplicate id %q", lang, msg.ID)
			seen[msg.ID] = true
			ids[lang] = append(ids[lang], msg.ID)
		}
		slices.Sort(ids[lang])
	}

	ref := SupportedLanguages[0]
	for _, lang := range SupportedLanguages[1:] {
		assert.Equal(t, ids[ref], ids[lang], "%s and %s catalogs differ", ref, lang)
	}
}

var verbRegex = regexp.MustCompile(`%[a-z]`)

// A translation must take the same format arguments as its message.
func TestCatalogFormatVerbs(t *testing.T) {
	for _, lang := range SupportedLanguages {
		for _, msg := range readMessageFile(t, lang).Messages {
			want := verbRegex.FindAllString(msg.Message, -1)
			got := verbRegex.FindAllString(msg.Translation, -1)
			assert.Equal(t, want, got, "%s: %s", lang, msg.ID)
		}
	}
}
