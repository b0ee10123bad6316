package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/clock"
	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// AdminRepository persists organizer-side catalog configuration.
type AdminRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateBatch(ctx context.Context, batch domain.Batch) error
	ListBatchesByEvent(ctx context.Context, eventID string) ([]domain.Batch, error)
	CreateCategory(ctx context.Context, category domain.TicketCategory) error
	CreateClub(ctx context.Context, club domain.DiscountClub) error
}

// AdminService covers the thin organizer CRUD the checkout reads from.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{repo: repo, clock: clk}
}

type CreateEventInput struct {
	Name     string
	City     string
	StartsAt *time.Time
}

func (s *AdminService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	startsAt := s.clock.Now()
	if in.StartsAt != nil {
		startsAt = *in.StartsAt
	}

	event := domain.Event{
		ID:       uuid.NewString(),
		Name:     in.Name,
		City:     in.City,
		StartsAt: startsAt,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *AdminService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

type CreateBatchInput struct {
	EventID string
	Name    string
	OpensAt time.Time
	EndsAt  time.Time
}

func (s *AdminService) CreateBatch(ctx context.Context, in CreateBatchInput) (domain.Batch, error) {
	if in.Name == "" {
		return domain.Batch{}, domain.ErrBatchNameRequired
	}
	batch := domain.Batch{
		ID:      uuid.NewString(),
		EventID: in.EventID,
		Name:    in.Name,
		OpensAt: in.OpensAt,
		EndsAt:  in.EndsAt,
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return domain.Batch{}, err
	}
	return batch, nil
}

func (s *AdminService) ListBatches(ctx context.Context, eventID string) ([]domain.Batch, error) {
	return s.repo.ListBatchesByEvent(ctx, eventID)
}

type CreateCategoryInput struct {
	BatchID    string
	Name       string
	Price      decimal.Decimal
	IsFree     bool
	HasKit     bool
	KitItems   []string
	ShirtSizes []string
	Quantity   *int
}

func (s *AdminService) CreateCategory(ctx context.Context, in CreateCategoryInput) (domain.TicketCategory, error) {
	if in.Name == "" {
		return domain.TicketCategory{}, domain.ErrCategoryRequired
	}
	if in.Price.IsNegative() {
		return domain.TicketCategory{}, domain.ErrNegativePrice
	}
	category := domain.TicketCategory{
		ID:         uuid.NewString(),
		BatchID:    in.BatchID,
		Name:       in.Name,
		Price:      in.Price,
		IsFree:     in.IsFree,
		HasKit:     in.HasKit,
		KitItems:   in.KitItems,
		ShirtSizes: in.ShirtSizes,
		Remaining:  in.Quantity,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return domain.TicketCategory{}, err
	}
	return category, nil
}

type CreateClubInput struct {
	EventID              string
	Name                 string
	BasePercent          decimal.Decimal
	ProgressiveThreshold int
	ProgressivePercent   decimal.Decimal
	Allocation           int
	Deadline             time.Time
}

func (s *AdminService) CreateClub(ctx context.Context, in CreateClubInput) (domain.DiscountClub, error) {
	if in.Name == "" {
		return domain.DiscountClub{}, domain.ErrClubNameRequired
	}
	club := domain.DiscountClub{
		ID:                   uuid.NewString(),
		EventID:              in.EventID,
		Name:                 in.Name,
		BasePercent:          in.BasePercent,
		ProgressiveThreshold: in.ProgressiveThreshold,
		ProgressivePercent:   in.ProgressivePercent,
		Allocation:           in.Allocation,
		Deadline:             in.Deadline,
	}
	if err := s.repo.CreateClub(ctx, club); err != nil {
		return domain.DiscountClub{}, err
	}
	return club, nil
}
