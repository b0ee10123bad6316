package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// AdminRepository writes the organizer-side catalog the checkout reads.
type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (id, name, city, starts_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, stmt, event.ID, event.Name, event.City, event.StartsAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `
SELECT id, name, city, starts_at
FROM events
ORDER BY starts_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.City, &e.StartsAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

func (r *AdminRepository) CreateBatch(ctx context.Context, batch domain.Batch) error {
	const stmt = `
INSERT INTO batches (id, event_id, name, opens_at, ends_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, stmt, batch.ID, batch.EventID, batch.Name, batch.OpensAt, batch.EndsAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListBatchesByEvent(ctx context.Context, eventID string) ([]domain.Batch, error) {
	const query = `
SELECT id, event_id, name, opens_at, ends_at
FROM batches
WHERE event_id = $1
ORDER BY opens_at ASC`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []domain.Batch
	for rows.Next() {
		var b domain.Batch
		if err := rows.Scan(&b.ID, &b.EventID, &b.Name, &b.OpensAt, &b.EndsAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate batches: %w", rows.Err())
	}
	return batches, nil
}

func (r *AdminRepository) CreateCategory(ctx context.Context, c domain.TicketCategory) error {
	const stmt = `
INSERT INTO ticket_categories (id, batch_id, name, price, is_free, has_kit, kit_items, shirt_sizes, remaining)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, stmt,
		c.ID, c.BatchID, c.Name, c.Price, c.IsFree, c.HasKit, c.KitItems, c.ShirtSizes, c.Remaining)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrBatchNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *AdminRepository) CreateClub(ctx context.Context, club domain.DiscountClub) error {
	const stmt = `
INSERT INTO discount_clubs (id, event_id, name, base_percent, progressive_threshold, progressive_percent, allocation, used, deadline)
VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)`

	_, err := r.pool.Exec(ctx, stmt,
		club.ID, club.EventID, club.Name, club.BasePercent,
		club.ProgressiveThreshold, club.ProgressivePercent, club.Allocation, club.Deadline)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create club: %w", err)
	}
	return nil
}
