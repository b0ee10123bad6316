package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// AffiliateRepository resolves referral codes to commission terms.
type AffiliateRepository struct {
	pool *pgxpool.Pool
}

func NewAffiliateRepository(pool *pgxpool.Pool) *AffiliateRepository {
	return &AffiliateRepository{pool: pool}
}

func (r *AffiliateRepository) GetAffiliate(ctx context.Context, affiliateID string) (domain.AffiliateContext, error) {
	const query = `
SELECT id, commission_type, commission_value
FROM affiliates
WHERE id = $1 AND active`

	var a domain.AffiliateContext
	err := r.pool.QueryRow(ctx, query, affiliateID).
		Scan(&a.AffiliateID, &a.CommissionType, &a.CommissionValue)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.AffiliateContext{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.AffiliateContext{}, domain.ErrAffiliateInvalid
		}
		return domain.AffiliateContext{}, fmt.Errorf("get affiliate: %w", err)
	}
	return a, nil
}
