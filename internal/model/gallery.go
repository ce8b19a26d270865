// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Audit carries the identity and bookkeeping fields every backend entity has.
type Audit struct {
	ID          int64     `json:"id,omitempty"`
	CreatedWhen *DateTime `json:"createdWhen,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	UpdatedWhen *DateTime `json:"updatedWhen,omitempty"`
	UpdatedBy   string    `json:"updatedBy,omitempty"`
}

// ArtCategory classifies an artwork.
type ArtCategory string

// Artwork categories understood by the backend.
const (
	CategoryPainting     ArtCategory = "PAINTING"
	CategorySculpture    ArtCategory = "SCULPTURE"
	CategoryPhotography  ArtCategory = "PHOTOGRAPHY"
	CategoryDigitalArt   ArtCategory = "DIGITAL_ART"
	CategoryInstallation ArtCategory = "INSTALLATION"
)

// Categories lists all artwork categories in display order.
var Categories = []ArtCategory{
	CategoryPainting,
	CategorySculpture,
	CategoryPhotography,
	CategoryDigitalArt,
	CategoryInstallation,
}

// Valid reports whether c is a known category.
func (c ArtCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Artwork is a single piece in the collection.
type Artwork struct {
	Audit
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	Price         *float64    `json:"price,omitempty"`
	CreationDate  *Date       `json:"creationDate,omitempty"`
	Medium        string      `json:"medium,omitempty"`
	Dimensions    string      `json:"dimensions,omitempty"`
	ImgPath       string      `json:"imgPath,omitempty"`
	Category      ArtCategory `json:"category,omitempty"`
	ArtistID      *int64      `json:"artistId,omitempty"`
	ArtistName    string      `json:"artistName,omitempty"`
	ExhibitionIDs []int64     `json:"exhibitionIds,omitempty"`
}

// Artist is a person whose works are in the collection.
type Artist struct {
	Audit
	Name        string  `json:"name"`
	Biography   string  `json:"biography,omitempty"`
	BirthDate   *Date   `json:"birthDate,omitempty"`
	Country     string  `json:"country,omitempty"`
	ContactInfo string  `json:"contactInfo,omitempty"`
	PhotoPath   string  `json:"photoPath,omitempty"`
	ArtworkIDs  []int64 `json:"artworkIds,omitempty"`
}

// Exhibition groups artworks for a period at a location.
// ArtworkIDs keeps the selection order and is not deduplicated.
type Exhibition struct {
	Audit
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	StartDate   *Date    `json:"startDate,omitempty"`
	EndDate     *Date    `json:"endDate,omitempty"`
	Location    string   `json:"location,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	ImagePath   string   `json:"imagePath,omitempty"`
	ArtworkIDs  []int64  `json:"artworkIds"`
}

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

// Ticket states.
const (
	TicketPurchased TicketStatus = "PURCHASED"
	TicketUsed      TicketStatus = "USED"
	TicketCancelled TicketStatus = "CANCELLED"
	TicketExpired   TicketStatus = "EXPIRED"
)

// Ticket is an exhibition admission bought by a user.
type Ticket struct {
	Audit
	ExhibitionID    int64        `json:"exhibitionId"`
	ExhibitionTitle string       `json:"exhibitionTitle,omitempty"`
	UserID          *int64       `json:"userId,omitempty"`
	UserName        string       `json:"userName,omitempty"`
	PurchaseDate    *DateTime    `json:"purchaseDate,omitempty"`
	VisitDate       *DateTime    `json:"visitDate,omitempty"`
	Price           *float64     `json:"price,omitempty"`
	Status          TicketStatus `json:"status,omitempty"`
	TicketCode      string       `json:"ticketCode,omitempty"`
}
