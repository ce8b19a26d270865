// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package gallery

import (
	"context"
	"fmt"

	"github.com/olegiv/artspace-console/internal/model"
	"github.com/olegiv/artspace-console/internal/session"
)

// Ticket and featured-exhibition endpoints.
const (
	PathCurrentExhibitions = "/exhibitions/current"
	PathMyTickets          = "/tickets/my"
	PathPurchaseTicket     = "/tickets/purchase"
)

// CurrentExhibitions returns a page of exhibitions running today.
func CurrentExhibitions(ctx context.Context, s *session.Store, page, size int) model.Page[model.Exhibition] {
	if size <= 0 {
		size = session.CatalogPageSize
	}
	return session.FetchPage[model.Exhibition](ctx, s, PathCurrentExhibitions, page, size, nil)
}

// MyTickets returns the tickets of the signed-in visitor.
func MyTickets(ctx context.Context, s *session.Store) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := s.Call(ctx, "error.fetch.tickets", func(ctx context.Context, b session.Backend) error {
		return b.Get(ctx, PathMyTickets, nil, &tickets)
	})
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}
	return tickets, nil
}

// PurchaseTicket buys a ticket for an exhibition. visitDate may be nil.
func PurchaseTicket(ctx context.Context, s *session.Store, exhibitionID int64, visitDate *model.DateTime) (model.Ticket, error) {
	var ticket model.Ticket
	req := model.Ticket{ExhibitionID: exhibitionID, VisitDate: visitDate}
	err := s.Call(ctx, "error.ticket_purchase", func(ctx context.Context, b session.Backend) error {
		return b.Post(ctx, PathPurchaseTicket, nil, req, &ticket)
	})
	if err != nil {
		return ticket, fmt.Errorf("purchasing ticket for exhibition %d: %w", exhibitionID, err)
	}
	return ticket, nil
}
