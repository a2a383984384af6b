package domain

import (
	"context"
	"time"
)

// Event represents a study event. InterestTags are stored normalized
// (lowercase, trimmed, de-duplicated). MaxParticipants of 0 means unbounded.
// swagger:model Event
type Event struct {
	ID                  string    `json:"id"`
	HostID              string    `json:"host_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	EventType           string    `json:"event_type"`
	InterestTags        []string  `json:"interest_tags"`
	AutoMatchingEnabled bool      `json:"auto_matching_enabled"`
	IsPublic            bool      `json:"is_public"`
	MaxParticipants     int       `json:"max_participants"`
	LocationLat         *float64  `json:"location_lat,omitempty"`
	LocationLng         *float64  `json:"location_lng,omitempty"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the
// repository on create.
func NewEvent(hostID, title, description, eventType string, tags []string, start, end time.Time) *Event {
	now := time.Now()
	return &Event{
		HostID:       hostID,
		Title:        title,
		Description:  description,
		EventType:    eventType,
		InterestTags: tags,
		StartTime:    start,
		EndTime:      end,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// EventUpdate carries the mutable fields of an event; nil pointers leave the
// field unchanged.
type EventUpdate struct {
	Title               *string
	Description         *string
	EventType           *string
	InterestTags        []string
	AutoMatchingEnabled *bool
	IsPublic            *bool
	MaxParticipants     *int
	LocationLat         *float64
	LocationLng         *float64
	StartTime           *time.Time
	EndTime             *time.Time
}

// EventRepository defines storage for events and the attendees relation.
// Create inserts the host into attendees within the same transaction, so an
// event's attendee set always includes its host.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error

	// ListAutoMatchable returns public events with auto-matching enabled
	// whose start time is after now.
	ListAutoMatchable(ctx context.Context, now time.Time) ([]*Event, error)
	// ListCandidatesForUser returns auto-matchable events whose tags overlap
	// the given normalized interests, excluding events hosted by userID.
	ListCandidatesForUser(ctx context.Context, interests []string, userID string, now time.Time) ([]*Event, error)

	ListHostedBy(ctx context.Context, userID string, now time.Time) ([]*Event, error)
	ListAttendedBy(ctx context.Context, userID string, now time.Time) ([]*Event, error)
	// ListInvited returns events that have an invitation row for the user
	// with the given auto-matched flag, excluding ended events.
	ListInvited(ctx context.Context, userID string, autoMatched bool, now time.Time) ([]*Event, error)
	// ListPublicUpcoming returns public events starting after now, newest
	// first, paginated.
	ListPublicUpcoming(ctx context.Context, now time.Time, p PaginationParams) ([]*Event, error)

	AddAttendee(ctx context.Context, eventID, userID string) error
	RemoveAttendee(ctx context.Context, eventID, userID string) error
	IsAttendee(ctx context.Context, eventID, userID string) (bool, error)
	ListAttendeeIDs(ctx context.Context, eventID string) ([]string, error)
	CountAttendees(ctx context.Context, eventID string) (int, error)
}

// EventService defines event lifecycle and invitation-response operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	// UpdateEvent applies upd; callerID must be the host.
	UpdateEvent(ctx context.Context, eventID, callerID string, upd EventUpdate) (*Event, error)
	// DeleteEvent removes the event and everything referencing it; callerID
	// must be the host.
	DeleteEvent(ctx context.Context, eventID, callerID string) error
	// InviteUser writes a manual invitation for the named user; callerID
	// must be the host. Idempotent: returns false when an invitation for the
	// pair already exists.
	InviteUser(ctx context.Context, eventID, callerID, username string) (created bool, err error)
	// RespondToInvitation accepts or declines the user's invitation. Accept
	// adds the user to attendees; decline removes the invitation and the
	// invited-users membership.
	RespondToInvitation(ctx context.Context, eventID, userID string, accept bool) error
}
