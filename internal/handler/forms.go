// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/url"

	"github.com/olegiv/artspace-console/internal/model"
)

// Each admin form has a decoder that validates submitted values into an
// entity and an encoder that fills the form from an entity.

func decodeArtwork(values url.Values, _ bool) (model.Artwork, formErrors) {
	f := newFormReader(values)
	a := model.Artwork{
		Title:         f.required("title"),
		Description:   f.str("description"),
		Price:         f.price("price"),
		CreationDate:  f.date("creationDate", false),
		Medium:        f.str("medium"),
		Dimensions:    f.str("dimensions"),
		ImgPath:       f.str("imgPath"),
		Category:      model.ArtCategory(f.str("category")),
		ArtistID:      f.id("artistId"),
		ExhibitionIDs: f.ids("exhibitionIds"),
	}
	if a.Category != "" && !a.Category.Valid() {
		f.errs.add("category", errChoice)
	}
	return a, f.errs
}

func encodeArtwork(a model.Artwork) url.Values {
	return url.Values{
		"title":         {a.Title},
		"description":   {a.Description},
		"price":         {formatPrice(a.Price)},
		"creationDate":  {a.CreationDate.String()},
		"medium":        {a.Medium},
		"dimensions":    {a.Dimensions},
		"imgPath":       {a.ImgPath},
		"category":      {string(a.Category)},
		"artistId":      {formatID(a.ArtistID)},
		"exhibitionIds": formatIDs(a.ExhibitionIDs),
	}
}

func decodeArtist(values url.Values, _ bool) (model.Artist, formErrors) {
	f := newFormReader(values)
	a := model.Artist{
		Name:        f.required("name"),
		Biography:   f.str("biography"),
		BirthDate:   f.date("birthDate", false),
		Country:     f.str("country"),
		ContactInfo: f.str("contactInfo"),
		PhotoPath:   f.str("photoPath"),
		ArtworkIDs:  f.ids("artworkIds"),
	}
	return a, f.errs
}

func encodeArtist(a model.Artist) url.Values {
	return url.Values{
		"name":        {a.Name},
		"biography":   {a.Biography},
		"birthDate":   {a.BirthDate.String()},
		"country":     {a.Country},
		"contactInfo": {a.ContactInfo},
		"photoPath":   {a.PhotoPath},
		"artworkIds":  formatIDs(a.ArtworkIDs),
	}
}

func decodeExhibition(values url.Values, _ bool) (model.Exhibition, formErrors) {
	f := newFormReader(values)
	e := model.Exhibition{
		Title:       f.required("title"),
		Description: f.str("description"),
		StartDate:   f.date("startDate", true),
		EndDate:     f.date("endDate", true),
		Location:    f.str("location"),
		Price:       f.price("price"),
		ImagePath:   f.str("imagePath"),
		ArtworkIDs:  f.ids("artworkIds"),
	}
	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(e.StartDate.Time) {
		f.errs.add("endDate", errDateOrder)
	}
	return e, f.errs
}

func encodeExhibition(e model.Exhibition) url.Values {
	return url.Values{
		"title":       {e.Title},
		"description": {e.Description},
		"startDate":   {e.StartDate.String()},
		"endDate":     {e.EndDate.String()},
		"location":    {e.Location},
		"price":       {formatPrice(e.Price)},
		"imagePath":   {e.ImagePath},
		"artworkIds":  formatIDs(e.ArtworkIDs),
	}
}

// decodeUser requires a password only when creating. On update a blank
// password keeps the current one.
func decodeUser(values url.Values, creating bool) (model.User, formErrors) {
	f := newFormReader(values)
	u := model.User{
		Login:     f.required("login"),
		Email:     f.email("email", true),
		FirstName: f.required("firstName"),
		LastName:  f.required("lastName"),
		BirthDate: f.date("birthDate", false),
		Phone:     f.str("phone"),
		Address:   f.str("address"),
		RoleName:  f.str("roleName"),
	}

	if creating {
		u.Password = f.required("password")
	} else {
		u.Password = f.str("password")
	}
	if u.Password != "" && len(u.Password) < MinPasswordLength {
		f.errs.add("password", errPasswordShort)
	}

	if u.RoleName == "" {
		u.RoleName = model.RoleUser
	}
	if id, ok := model.RoleID(u.RoleName); ok {
		u.RoleID = &id
	} else {
		f.errs.add("roleName", errChoice)
	}
	return u, f.errs
}

func encodeUser(u model.User) url.Values {
	return url.Values{
		"login":     {u.Login},
		"email":     {u.Email},
		"firstName": {u.FirstName},
		"lastName":  {u.LastName},
		"birthDate": {u.BirthDate.String()},
		"phone":     {u.Phone},
		"address":   {u.Address},
		"roleName":  {u.RoleName},
	}
}

// decodeRegistration validates the self-registration form.
func decodeRegistration(values url.Values) (model.RegisterRequest, formErrors) {
	f := newFormReader(values)
	req := model.RegisterRequest{
		Login:           f.required("login"),
		Password:        f.required("password"),
		ConfirmPassword: f.values.Get("confirmPassword"),
		Email:           f.email("email", true),
		FirstName:       f.required("firstName"),
		LastName:        f.required("lastName"),
		BirthDate:       f.date("birthDate", false),
		Phone:           f.str("phone"),
		Address:         f.str("address"),
	}
	if req.Password != "" && len(req.Password) < MinPasswordLength {
		f.errs.add("password", errPasswordShort)
	}
	if req.Password != req.ConfirmPassword {
		f.errs.add("confirmPassword", errPasswordMismatch)
	}
	return req, f.errs
}

// decodeProfile validates the profile edit form. Login and role are not
// editable and are taken from current.
func decodeProfile(values url.Values, current *model.UserProfile) (model.UserProfile, formErrors) {
	f := newFormReader(values)
	p := model.UserProfile{
		Email:     f.email("email", true),
		FirstName: f.required("firstName"),
		LastName:  f.required("lastName"),
		Phone:     f.str("phone"),
		Address:   f.str("address"),
		BirthDate: f.date("birthDate", false),
	}
	if current != nil {
		p.ID = current.ID
		p.Login = current.Login
		p.RoleName = current.RoleName
	}
	return p, f.errs
}

func encodeProfile(p *model.UserProfile) url.Values {
	if p == nil {
		return url.Values{}
	}
	return url.Values{
		"email":     {p.Email},
		"firstName": {p.FirstName},
		"lastName":  {p.LastName},
		"phone":     {p.Phone},
		"address":   {p.Address},
		"birthDate": {p.BirthDate.String()},
	}
}
