package domain

import "context"

// MatchResult is one accepted (user, event) pairing produced by a matching
// run.
// swagger:model MatchResult
type MatchResult struct {
	EventID  string `json:"event_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// MatchRunSummary reports a bulk matching run. Failed holds the IDs of
// events whose run errored; their failures do not abort the run.
// swagger:model MatchRunSummary
type MatchRunSummary struct {
	EventsProcessed int           `json:"events_processed"`
	MatchesCreated  int           `json:"matches_created"`
	Failed          []string      `json:"failed_event_ids,omitempty"`
	Results         []*MatchResult `json:"results,omitempty"`
}

// MatchingService drives interest-based auto-matching at three
// granularities: one event, one user, or the whole population.
type MatchingService interface {
	// MatchEvent scores candidates for the event and writes up to limit new
	// auto-matched invitations, best score first. limit <= 0 uses the
	// configured default. Disabled, non-public, tagless, or ended events
	// yield zero matches without error. Returns the matches actually
	// created in this call.
	MatchEvent(ctx context.Context, eventID string, limit int) ([]*MatchResult, error)

	// MatchUser matches a single user against all auto-matchable events.
	MatchUser(ctx context.Context, userID string) ([]*MatchResult, error)

	// MatchAllEvents runs MatchEvent over every auto-matchable event.
	// Per-event failures are recorded and the run continues.
	MatchAllEvents(ctx context.Context) (*MatchRunSummary, error)

	// RebuildForEvent clears the event's auto-matches and re-runs MatchEvent.
	RebuildForEvent(ctx context.Context, eventID string) ([]*MatchResult, error)

	// RebuildAll clears and recomputes auto-matches for every
	// auto-matchable event. Administrative.
	RebuildAll(ctx context.Context) (*MatchRunSummary, error)
}

// EventBuckets partitions the events visible to a user. An event appears in
// exactly one bucket, the first that matches in declaration order.
// swagger:model EventBuckets
type EventBuckets struct {
	Hosting     []*Event `json:"hosting"`
	Attending   []*Event `json:"attending"`
	Invited     []*Event `json:"invited"`
	AutoMatched []*Event `json:"auto_matched"`
	Public      []*Event `json:"public,omitempty"`
}

// VisibilityService answers which events a user should see, and in which
// bucket.
type VisibilityService interface {
	// EventsFor returns the user's buckets. The Public bucket is populated
	// only when includePublic is set. Ended events are excluded everywhere.
	EventsFor(ctx context.Context, userID string, includePublic bool, p PaginationParams) (*EventBuckets, error)
}
