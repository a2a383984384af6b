package domain

import (
	"context"
	"time"
)

// User represents a registered user. Registration and authentication live in
// an external system; this backend only reads users.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile holds the matching-relevant preferences of a user. Interests are
// stored normalized (lowercase, trimmed, de-duplicated).
// swagger:model Profile
type Profile struct {
	UserID            string         `json:"user_id"`
	Interests         []string       `json:"interests"`
	AutoInviteOptIn   bool           `json:"auto_invite_opt_in"`
	PreferredRadiusKm float64        `json:"preferred_radius_km"`
	Skills            map[string]int `json:"skills,omitempty"`
	LocationLat       *float64       `json:"location_lat,omitempty"`
	LocationLng       *float64       `json:"location_lng,omitempty"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Candidate is a user considered for auto-matching, bundled with the profile
// fields the scorer needs. Interests are normalized.
type Candidate struct {
	UserID    string
	Username  string
	Email     string
	Interests []string
	OptedIn   bool
	RadiusKm  float64
	Lat       *float64
	Lng       *float64
}

// UserRepository defines read access to users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// ListCandidatesForEvent returns opted-in users whose interests overlap
	// the given normalized tags, excluding the host.
	ListCandidatesForEvent(ctx context.Context, tags []string, hostID string) ([]*Candidate, error)
}

// ProfileRepository defines storage for user profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	SetAutoInviteOptIn(ctx context.Context, userID string, optIn bool) error
}

// ProfileService defines profile reads and preference updates.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, profile *Profile) (*Profile, error)
	// SetOptInByUsername is the admin operation that flips a user's
	// auto_invite_opt_in flag.
	SetOptInByUsername(ctx context.Context, username string, optIn bool) error
}
