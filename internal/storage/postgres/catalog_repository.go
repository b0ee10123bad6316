package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// CatalogRepository reads the catalog slice the checkout validates
// against: one batch plus its ticket categories.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) GetTicketBatch(ctx context.Context, eventID, batchID string) (domain.TicketBatch, error) {
	const batchQuery = `
SELECT id, event_id, name, opens_at, ends_at
FROM batches
WHERE id = $1 AND event_id = $2`

	var tb domain.TicketBatch
	err := r.pool.QueryRow(ctx, batchQuery, batchID, eventID).
		Scan(&tb.Batch.ID, &tb.Batch.EventID, &tb.Batch.Name, &tb.Batch.OpensAt, &tb.Batch.EndsAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.TicketBatch{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.TicketBatch{}, domain.ErrBatchNotFound
		}
		return domain.TicketBatch{}, fmt.Errorf("get batch: %w", err)
	}

	const categoryQuery = `
SELECT id, batch_id, name, price, is_free, has_kit, kit_items, shirt_sizes, remaining
FROM ticket_categories
WHERE batch_id = $1
ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, categoryQuery, batchID)
	if err != nil {
		return domain.TicketBatch{}, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.TicketCategory
		if err := rows.Scan(&c.ID, &c.BatchID, &c.Name, &c.Price, &c.IsFree, &c.HasKit, &c.KitItems, &c.ShirtSizes, &c.Remaining); err != nil {
			return domain.TicketBatch{}, fmt.Errorf("scan category: %w", err)
		}
		tb.Categories = append(tb.Categories, c)
	}
	if rows.Err() != nil {
		return domain.TicketBatch{}, fmt.Errorf("iterate categories: %w", rows.Err())
	}
	return tb, nil
}
