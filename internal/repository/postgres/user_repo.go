package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"studycon/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, username, email, name, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	u := &domain.User{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, username, email, name, created_at, updated_at
		FROM users
		WHERE username = $1
	`
	u := &domain.User{}
	err := r.DB.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) ListCandidatesForEvent(ctx context.Context, tags []string, hostID string) ([]*domain.Candidate, error) {
	if len(tags) == 0 {
		return []*domain.Candidate{}, nil
	}
	// Interests and tags are normalized on write, so array overlap is an
	// exact token comparison.
	query := `
		SELECT u.id, u.username, u.email, p.interests, p.auto_invite_opt_in,
		       p.preferred_radius_km, p.location_lat, p.location_lng
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE p.auto_invite_opt_in = TRUE
		  AND p.interests && $1
		  AND u.id <> $2
		ORDER BY u.username
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(tags), hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]*domain.Candidate, 0)
	for rows.Next() {
		c := &domain.Candidate{}
		var interests pq.StringArray
		var latNull, lngNull sql.NullFloat64
		if err := rows.Scan(&c.UserID, &c.Username, &c.Email, &interests, &c.OptedIn, &c.RadiusKm, &latNull, &lngNull); err != nil {
			return nil, err
		}
		c.Interests = interests
		if latNull.Valid {
			c.Lat = &latNull.Float64
		}
		if lngNull.Valid {
			c.Lng = &lngNull.Float64
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
