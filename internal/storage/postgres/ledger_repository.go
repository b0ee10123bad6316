package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// LedgerRepository records one payment row per paid registration.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) InsertPayment(ctx context.Context, p domain.Payment) error {
	const stmt = `
INSERT INTO payments (
	id, registration_id, amount, discount, method, status,
	affiliate_id, commission, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8, $9)`

	_, err := r.pool.Exec(ctx, stmt,
		p.ID, p.RegistrationID, p.Amount, p.Discount, p.Method, p.Status,
		p.AffiliateID, p.Commission, p.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrRegistrationFailed
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}
