package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// ClubRepository reads discount clubs and tracks their allocation usage.
type ClubRepository struct {
	pool *pgxpool.Pool
}

func NewClubRepository(pool *pgxpool.Pool) *ClubRepository {
	return &ClubRepository{pool: pool}
}

func (r *ClubRepository) GetClub(ctx context.Context, clubID string) (domain.DiscountClub, error) {
	const query = `
SELECT id, event_id, name, base_percent, progressive_threshold,
	progressive_percent, allocation, used, deadline
FROM discount_clubs
WHERE id = $1`

	var c domain.DiscountClub
	err := r.pool.QueryRow(ctx, query, clubID).Scan(
		&c.ID, &c.EventID, &c.Name, &c.BasePercent, &c.ProgressiveThreshold,
		&c.ProgressivePercent, &c.Allocation, &c.Used, &c.Deadline)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.DiscountClub{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.DiscountClub{}, domain.ErrClubNotFound
		}
		return domain.DiscountClub{}, fmt.Errorf("get club: %w", err)
	}
	return c, nil
}

// IncrementUsage consumes one allocation slot. The conditional update
// keeps two concurrent orders from overspending the allocation; false
// means every slot was already taken.
func (r *ClubRepository) IncrementUsage(ctx context.Context, clubID string) (bool, error) {
	const stmt = `
UPDATE discount_clubs
SET used = used + 1
WHERE id = $1 AND used < allocation`

	tag, err := r.pool.Exec(ctx, stmt, clubID)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("increment club usage: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
