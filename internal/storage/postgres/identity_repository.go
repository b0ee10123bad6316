package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// IdentityRepository stores the email-keyed accounts registrations
// link to.
type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	const query = `
SELECT id, email, COALESCE(full_name, ''), COALESCE(phone, ''), created_at
FROM identities
WHERE email = $1`

	var id domain.Identity
	err := r.pool.QueryRow(ctx, query, email).
		Scan(&id.ID, &id.Email, &id.FullName, &id.Phone, &id.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return &id, nil
}

func (r *IdentityRepository) CreateIdentity(ctx context.Context, identity domain.Identity) error {
	const stmt = `
INSERT INTO identities (id, email, full_name, phone, created_at)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)`

	_, err := r.pool.Exec(ctx, stmt,
		identity.ID, identity.Email, identity.FullName, identity.Phone, identity.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		// Unique violations surface too: a concurrent checkout may have
		// provisioned the same email, and the caller re-resolves by email.
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}
