package domain

import (
	"context"
	"time"
)

// Invitation links a user to an event. At most one row exists per
// (event, user) pair. IsAutoMatched marks rows produced by the matching
// engine; manual rows are never touched by re-matching.
// swagger:model Invitation
type Invitation struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	UserID        string    `json:"user_id"`
	IsAutoMatched bool      `json:"is_auto_matched"`
	CreatedAt     time.Time `json:"created_at"`
}

// InvitationRepository is the system of record for invitations and the
// invited-users relation. Every write keeps both in sync inside a single
// transaction: an invitation row implies invited-users membership.
type InvitationRepository interface {
	// UpsertAutoMatch creates an auto-matched invitation for (eventID,
	// userID) and adds the user to the event's invited users. If an
	// invitation for the pair already exists (auto or manual) it is left
	// untouched and only the invited-users membership is ensured. Returns
	// true when a new invitation row was created. Unique-key races are
	// absorbed and reported as existed.
	UpsertAutoMatch(ctx context.Context, eventID, userID string) (created bool, err error)

	// CreateManual behaves like UpsertAutoMatch but writes a manual row.
	CreateManual(ctx context.Context, eventID, userID string) (created bool, err error)

	// ClearAutoMatches deletes all auto-matched invitations for the event
	// and removes the corresponding invited-users memberships. Manual
	// invitations survive. Returns the number of rows removed.
	ClearAutoMatches(ctx context.Context, eventID string) (removed int, err error)

	// Delete removes the invitation for the pair, if any, together with the
	// invited-users membership.
	Delete(ctx context.Context, eventID, userID string) error

	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Invitation, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Invitation, error)
	// ListAutoMatchedUserIDs returns the users auto-matched to the event.
	ListAutoMatchedUserIDs(ctx context.Context, eventID string) ([]string, error)
	// ListAutoMatchedEventIDs returns the events the user is auto-matched to.
	ListAutoMatchedEventIDs(ctx context.Context, userID string) ([]string, error)
	// ListInvitedUserIDs returns the event's invited-users set (manual and
	// auto-matched alike).
	ListInvitedUserIDs(ctx context.Context, eventID string) ([]string, error)
}
