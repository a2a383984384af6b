package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"studycon/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT user_id, interests, auto_invite_opt_in, preferred_radius_km, skills, location_lat, location_lng, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	p := &domain.Profile{}
	var interests pq.StringArray
	var skillsRaw []byte
	var latNull, lngNull sql.NullFloat64
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &interests, &p.AutoInviteOptIn, &p.PreferredRadiusKm,
		&skillsRaw, &latNull, &lngNull, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Interests = interests
	if len(skillsRaw) > 0 {
		if err := json.Unmarshal(skillsRaw, &p.Skills); err != nil {
			return nil, err
		}
	}
	if latNull.Valid {
		p.LocationLat = &latNull.Float64
	}
	if lngNull.Valid {
		p.LocationLng = &lngNull.Float64
	}
	return p, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	var skillsRaw []byte
	if profile.Skills != nil {
		var err error
		skillsRaw, err = json.Marshal(profile.Skills)
		if err != nil {
			return err
		}
	}
	query := `
		UPDATE profiles
		SET interests = $2, auto_invite_opt_in = $3, preferred_radius_km = $4,
		    skills = $5, location_lat = $6, location_lng = $7, updated_at = NOW()
		WHERE user_id = $1
		RETURNING updated_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		profile.UserID, pq.Array(profile.Interests), profile.AutoInviteOptIn,
		profile.PreferredRadiusKm, skillsRaw, profile.LocationLat, profile.LocationLng,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *profileRepository) SetAutoInviteOptIn(ctx context.Context, userID string, optIn bool) error {
	query := `
		UPDATE profiles
		SET auto_invite_opt_in = $2, updated_at = NOW()
		WHERE user_id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, userID, optIn)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
