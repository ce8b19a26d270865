// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfileIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{"admin role", RoleAdmin, true},
		{"user role", RoleUser, false},
		{"artist role", RoleArtist, false},
		{"lowercase admin", "admin", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &UserProfile{RoleName: tt.role}
			if got := u.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}

	var nilUser *UserProfile
	if nilUser.IsAdmin() {
		t.Error("nil user must not be admin")
	}
}

func TestUserProfileDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&UserProfile{Login: "ada", FirstName: "Ada", LastName: "Lovelace"}).DisplayName())
	assert.Equal(t, "Lovelace", (&UserProfile{Login: "ada", LastName: "Lovelace"}).DisplayName())
	assert.Equal(t, "ada", (&UserProfile{Login: "ada"}).DisplayName())
}

func TestRegisterRequestOmitsConfirmPassword(t *testing.T) {
	data, err := json.Marshal(RegisterRequest{Login: "bob", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "confirmPassword")
	assert.NotContains(t, fields, "ConfirmPassword")
	assert.Equal(t, "secret1", fields["password"])
}

func TestPageUnmarshalNormalizesContent(t *testing.T) {
	var p Page[Artist]
	require.NoError(t, json.Unmarshal([]byte(`{"totalElements":0,"totalPages":0,"number":2,"size":9}`), &p))
	assert.NotNil(t, p.Content)
	assert.True(t, p.IsEmpty())
	assert.Equal(t, 2, p.Number)

	require.NoError(t, json.Unmarshal([]byte(`{"content":[{"id":5,"name":"Frida"}],"totalElements":1,"totalPages":1,"number":0,"size":9}`), &p))
	require.Len(t, p.Content, 1)
	assert.Equal(t, int64(5), p.Content[0].ID)
	assert.Equal(t, "Frida", p.Content[0].Name)
}

func TestEmptyPage(t *testing.T) {
	p := EmptyPage[Artwork](3, 9)
	assert.NotNil(t, p.Content)
	assert.Equal(t, 3, p.Number)
	assert.Equal(t, int64(0), p.TotalElements)
	assert.Equal(t, 0, p.TotalPages)
}

func TestSearchCriteriaClean(t *testing.T) {
	tests := []struct {
		name string
		in   SearchCriteria
		want SearchCriteria
	}{
		{"nil", nil, nil},
		{"all blank", SearchCriteria{"title": "", "location": "   "}, nil},
		{"mixed", SearchCriteria{"title": " Monet ", "location": ""}, SearchCriteria{"title": "Monet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clean()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != nil, tt.in.Active())
		})
	}
}

func TestCriteriaFromQuery(t *testing.T) {
	q := url.Values{"name": {"Frida"}, "country": {""}, "page": {"2"}}
	c := CriteriaFromQuery(q, SearchFields["artists"])

	assert.Equal(t, SearchCriteria{"name": "Frida", "country": ""}, c)
	assert.Equal(t, "name=Frida", c.Query().Encode())
}

func TestArtCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, ArtCategory("GRAFFITI").Valid())
	assert.False(t, ArtCategory("").Valid())
}

func TestDateJSON(t *testing.T) {
	var a Artist
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Frida","birthDate":"1907-07-06"}`), &a))
	require.NotNil(t, a.BirthDate)
	assert.Equal(t, time.Date(1907, 7, 6, 0, 0, 0, 0, time.UTC), a.BirthDate.Time)
	assert.Equal(t, "1907-07-06", a.BirthDate.String())

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"birthDate":"1907-07-06"`)

	var empty Artist
	require.NoError(t, json.Unmarshal([]byte(`{"birthDate":null}`), &empty))
	assert.Nil(t, empty.BirthDate)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = ParseDate("29.02.2024")
	assert.Error(t, err)
}

func TestDateTimeJSON(t *testing.T) {
	for _, raw := range []string{`"2025-03-01T10:15:30"`, `"2025-03-01T10:15:30.123456"`, `"2025-03-01T10:15:30Z"`} {
		var d DateTime
		require.NoError(t, json.Unmarshal([]byte(raw), &d), raw)
		assert.Equal(t, "2025-03-01 10:15", d.String(), raw)
	}

	var d DateTime
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
}

func TestRoleID(t *testing.T) {
	id, ok := RoleID(RoleAdmin)
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)

	id, ok = RoleID(RoleArtist)
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)

	_, ok = RoleID("GUEST")
	assert.False(t, ok)
}

func TestIsEventCategory(t *testing.T) {
	assert.True(t, IsEventCategory(EventCategorySecurity))
	assert.False(t, IsEventCategory("page"))
	assert.False(t, IsEventCategory(""))
}
