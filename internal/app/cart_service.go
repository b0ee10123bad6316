package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/clock"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// CatalogRepository reads the event catalog the checkout validates
// against.
type CatalogRepository interface {
	GetTicketBatch(ctx context.Context, eventID, batchID string) (domain.TicketBatch, error)
}

// ClubReader resolves a discount club at cart load.
type ClubReader interface {
	GetClub(ctx context.Context, clubID string) (domain.DiscountClub, error)
}

// AffiliateReader resolves a referral partner's commission settings.
type AffiliateReader interface {
	GetAffiliate(ctx context.Context, affiliateID string) (domain.AffiliateContext, error)
}

// CartService turns opaque cart input (event, batch, category→quantity)
// into validated SelectedTickets before any wizard session exists.
// Malformed or stale input is rejected here, never mid-flow.
type CartService struct {
	catalog    CatalogRepository
	clubs      ClubReader
	affiliates AffiliateReader
	clock      clock.Clock
}

func NewCartService(catalog CatalogRepository, clubs ClubReader, affiliates AffiliateReader, clk clock.Clock) *CartService {
	return &CartService{
		catalog:    catalog,
		clubs:      clubs,
		affiliates: affiliates,
		clock:      clk,
	}
}

type LoadCartInput struct {
	EventID     string
	BatchID     string
	Quantities  map[string]int
	ClubID      string
	AffiliateID string
}

type LoadCartResult struct {
	Tickets   []domain.SelectedTicket
	Club      *domain.DiscountClubContext
	Affiliate *domain.AffiliateContext
}

// LoadCart expands the quantity map into one SelectedTicket per future
// participant, in stable category order, and resolves the optional club
// and affiliate contexts.
func (s *CartService) LoadCart(ctx context.Context, in LoadCartInput) (LoadCartResult, error) {
	if len(in.Quantities) == 0 {
		return LoadCartResult{}, domain.ErrInvalidQuantity
	}

	batch, err := s.catalog.GetTicketBatch(ctx, in.EventID, in.BatchID)
	if err != nil {
		return LoadCartResult{}, err
	}
	now := s.clock.Now()
	if !batch.Batch.Open(now) {
		return LoadCartResult{}, domain.ErrBatchClosed
	}

	categoryIDs := make([]string, 0, len(in.Quantities))
	for id, qty := range in.Quantities {
		if qty <= 0 {
			return LoadCartResult{}, domain.ErrInvalidQuantity
		}
		if _, ok := batch.Category(id); !ok {
			return LoadCartResult{}, fmt.Errorf("%w: %s", domain.ErrCategoryNotInBatch, id)
		}
		categoryIDs = append(categoryIDs, id)
	}
	sort.Strings(categoryIDs)

	var tickets []domain.SelectedTicket
	for _, id := range categoryIDs {
		cat, _ := batch.Category(id)
		if cat.Price.IsNegative() {
			return LoadCartResult{}, fmt.Errorf("%w: category %s", domain.ErrNegativePrice, id)
		}
		for i := 0; i < in.Quantities[id]; i++ {
			tickets = append(tickets, domain.SelectedTicket{
				CategoryID:   cat.ID,
				CategoryName: cat.Name,
				UnitPrice:    cat.Price,
				IsFree:       cat.IsFree,
				HasKit:       cat.HasKit,
				KitItems:     cat.KitItems,
				ShirtSizes:   cat.ShirtSizes,
			})
		}
	}

	result := LoadCartResult{Tickets: tickets}

	if in.ClubID != "" {
		club, err := s.clubs.GetClub(ctx, in.ClubID)
		if err != nil {
			return LoadCartResult{}, err
		}
		if club.Remaining() <= 0 {
			return LoadCartResult{}, domain.ErrClubExhausted
		}
		if now.After(club.Deadline) {
			return LoadCartResult{}, domain.ErrClubExpired
		}
		result.Club = &domain.DiscountClubContext{
			ClubID:               club.ID,
			BasePercent:          club.BasePercent,
			ProgressiveThreshold: club.ProgressiveThreshold,
			ProgressivePercent:   club.ProgressivePercent,
		}
	}

	if in.AffiliateID != "" {
		aff, err := s.affiliates.GetAffiliate(ctx, in.AffiliateID)
		if err != nil {
			return LoadCartResult{}, err
		}
		result.Affiliate = &aff
	}

	return result, nil
}
