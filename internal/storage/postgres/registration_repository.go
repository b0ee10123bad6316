package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// RegistrationRepository persists registrations and their athlete
// records. Registration numbers and athlete documents both carry unique
// indexes; collisions map to sentinel errors so the orchestrator can
// retry or link instead of failing.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

func (r *RegistrationRepository) CreateRegistration(ctx context.Context, reg domain.RegistrationRecord) error {
	const stmt = `
INSERT INTO registrations (
	id, number, event_id, batch_id, category_id, status, identity_id,
	waiver_accepted_at, waiver_ip, waiver_user_agent, waiver_device_class,
	created_at
)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8, $9, $10, $11, $12)`

	var acceptedAt interface{}
	var ip, userAgent, deviceClass interface{}
	if reg.Waiver != nil {
		acceptedAt = reg.Waiver.AcceptedAt
		ip = reg.Waiver.IP
		userAgent = reg.Waiver.UserAgent
		deviceClass = reg.Waiver.DeviceClass
	}

	_, err := r.pool.Exec(ctx, stmt,
		reg.ID, reg.Number, reg.EventID, reg.BatchID, reg.CategoryID,
		reg.Status, reg.IdentityID,
		acceptedAt, ip, userAgent, deviceClass,
		reg.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "registrations_number_key" {
			return domain.ErrDuplicateNumber
		}
		if isForeignKeyViolation(err) {
			return domain.ErrBatchNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) CreateAthlete(ctx context.Context, a domain.Athlete) error {
	const stmt = `
INSERT INTO athletes (
	id, registration_id, identity_id, full_name, email, phone, age, gender,
	country, document, street, number, complement, neighborhood, city, state,
	postal_code, shirt_size, emergency_name, emergency_phone, created_at
)
VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8,
	$9, $10, $11, $12, $13, $14, $15, $16,
	$17, $18, $19, $20, $21)`

	_, err := r.pool.Exec(ctx, stmt,
		a.ID, a.RegistrationID, a.IdentityID, a.FullName, a.Email, a.Phone, a.Age, a.Gender,
		a.Country, a.Document,
		a.Address.Street, a.Address.Number, a.Address.Complement, a.Address.Neighborhood,
		a.Address.City, a.Address.State, a.Address.PostalCode,
		a.ShirtSize, a.EmergencyName, a.EmergencyPhone, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateDocument
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create athlete: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) FindAthleteByDocument(ctx context.Context, document string) (*domain.Athlete, error) {
	const query = `
SELECT id, registration_id, COALESCE(identity_id::text, ''), full_name, email,
	phone, age, gender, country, document,
	street, number, complement, neighborhood, city, state, postal_code,
	shirt_size, emergency_name, emergency_phone, created_at
FROM athletes
WHERE document = $1
ORDER BY created_at ASC
LIMIT 1`

	var a domain.Athlete
	err := r.pool.QueryRow(ctx, query, document).Scan(
		&a.ID, &a.RegistrationID, &a.IdentityID, &a.FullName, &a.Email,
		&a.Phone, &a.Age, &a.Gender, &a.Country, &a.Document,
		&a.Address.Street, &a.Address.Number, &a.Address.Complement, &a.Address.Neighborhood,
		&a.Address.City, &a.Address.State, &a.Address.PostalCode,
		&a.ShirtSize, &a.EmergencyName, &a.EmergencyPhone, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find athlete: %w", err)
	}
	return &a, nil
}
