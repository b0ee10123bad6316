package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// ProfileRepository stores participant snapshots as JSONB so the wizard
// schema can evolve without migrations on this table.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

type profilePayload struct {
	FullName       string         `json:"full_name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Age            int            `json:"age"`
	Gender         string         `json:"gender"`
	Country        string         `json:"country"`
	Document       string         `json:"document"`
	Address        domain.Address `json:"address"`
	ShirtSize      string         `json:"shirt_size"`
	EmergencyName  string         `json:"emergency_name"`
	EmergencyPhone string         `json:"emergency_phone"`
}

func (r *ProfileRepository) SaveProfile(ctx context.Context, profile domain.SavedProfile) error {
	payload, err := json.Marshal(profilePayload{
		FullName:       profile.Participant.FullName,
		Email:          profile.Participant.Email,
		Phone:          profile.Participant.Phone,
		Age:            profile.Participant.Age,
		Gender:         profile.Participant.Gender,
		Country:        profile.Participant.Country,
		Document:       profile.Participant.Document,
		Address:        profile.Participant.Address,
		ShirtSize:      profile.Participant.ShirtSize,
		EmergencyName:  profile.Participant.EmergencyName,
		EmergencyPhone: profile.Participant.EmergencyPhone,
	})
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	const stmt = `
INSERT INTO saved_profiles (id, identity_id, data, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (identity_id, (data->>'document')) DO UPDATE
SET data = EXCLUDED.data, created_at = EXCLUDED.created_at`

	_, err = r.pool.Exec(ctx, stmt, profile.ID, profile.IdentityID, payload, profile.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrIdentityNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) ListProfiles(ctx context.Context, identityID string) ([]domain.SavedProfile, error) {
	const query = `
SELECT id, identity_id, data, created_at
FROM saved_profiles
WHERE identity_id = $1
ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, identityID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.SavedProfile
	for rows.Next() {
		var p domain.SavedProfile
		var raw []byte
		if err := rows.Scan(&p.ID, &p.IdentityID, &raw, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		var payload profilePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode profile %s: %w", p.ID, err)
		}
		p.Participant = domain.Participant{
			FullName:       payload.FullName,
			Email:          payload.Email,
			Phone:          payload.Phone,
			Age:            payload.Age,
			Gender:         payload.Gender,
			Country:        payload.Country,
			Document:       payload.Document,
			Address:        payload.Address,
			ShirtSize:      payload.ShirtSize,
			EmergencyName:  payload.EmergencyName,
			EmergencyPhone: payload.EmergencyPhone,
		}
		profiles = append(profiles, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profiles: %w", rows.Err())
	}
	return profiles, nil
}
