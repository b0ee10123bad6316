package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// InventoryRepository tracks per-category remaining quantity. A NULL
// remaining column means unlimited inventory.
type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

func (r *InventoryRepository) GetRemaining(ctx context.Context, categoryID string) (*int, error) {
	const query = `SELECT remaining FROM ticket_categories WHERE id = $1`

	var remaining *int
	err := r.pool.QueryRow(ctx, query, categoryID).Scan(&remaining)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCategoryNotInBatch
		}
		return nil, fmt.Errorf("get remaining: %w", err)
	}
	return remaining, nil
}

// Decrement takes one unit atomically: the conditional update only
// matches while a unit is left, so two buyers racing on the last unit
// cannot both succeed. Unlimited categories always report success.
func (r *InventoryRepository) Decrement(ctx context.Context, categoryID string) (bool, error) {
	const stmt = `
UPDATE ticket_categories
SET remaining = remaining - 1
WHERE id = $1 AND remaining IS NOT NULL AND remaining > 0`

	tag, err := r.pool.Exec(ctx, stmt, categoryID)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("decrement: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	remaining, err := r.GetRemaining(ctx, categoryID)
	if err != nil {
		return false, err
	}
	return remaining == nil, nil
}
