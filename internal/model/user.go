// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the gallery types exchanged with the ArtSpace backend
// and the console's own audit event type.
package model

// Role names as reported by the backend in roleName.
const (
	RoleAdmin  = "ADMIN"
	RoleUser   = "USER"
	RoleArtist = "ARTIST"
)

// Roles lists every role the backend knows, in display order.
var Roles = []string{RoleUser, RoleArtist, RoleAdmin}

// roleIDs are the backend's role primary keys.
var roleIDs = map[string]int64{
	RoleAdmin:  1,
	RoleUser:   2,
	RoleArtist: 3,
}

// RoleID returns the backend id of a role name, or false if it is unknown.
func RoleID(name string) (int64, bool) {
	id, ok := roleIDs[name]
	return id, ok
}

// UserProfile is the authenticated user as returned by /users/profile.
// RoleName is the only authorization signal the console relies on.
type UserProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	BirthDate *Date  `json:"birthDate,omitempty"`
	RoleName  string `json:"roleName"`
}

// IsAdmin returns true if the user has the ADMIN role.
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.RoleName == RoleAdmin
}

// DisplayName returns the full name, or the login when no name is set.
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return ""
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Login
	}
	return name
}

// User is a user row as managed from the admin console.
// Password is only sent when set and is never returned by the backend.
type User struct {
	Audit
	Login     string `json:"login"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate *Date  `json:"birthDate,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	RoleID    *int64 `json:"roleId,omitempty"`
	RoleName  string `json:"roleName,omitempty"`
}

// RegisterRequest is the self-registration form.
// ConfirmPassword is checked locally and never sent.
type RegisterRequest struct {
	Login           string `json:"login"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	BirthDate       *Date  `json:"birthDate,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
}

// Credentials is the login request body.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
