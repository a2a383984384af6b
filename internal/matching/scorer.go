package matching

import "sort"

// ScorePerSharedInterest is the weight of one shared interest token.
const ScorePerSharedInterest = 10

// DefaultThreshold is the minimum accepted score: at least one shared
// interest.
const DefaultThreshold = 10

// EventFacts is everything the scorer needs to know about an event. Tags are
// normalized; InvitedIDs and AttendeeIDs are the current membership sets.
type EventFacts struct {
	EventID             string
	HostID              string
	Tags                []string
	AutoMatchingEnabled bool
	InvitedIDs          map[string]struct{}
	AttendeeIDs         map[string]struct{}
}

// CandidateFacts is everything the scorer needs to know about a user.
// Interests are normalized.
type CandidateFacts struct {
	UserID    string
	Username  string
	Interests []string
	OptedIn   bool
}

// Match is an accepted (user, event) pair with its score.
type Match struct {
	UserID   string
	Username string
	Score    int
}

// Scorer maps a candidate (user, event) pair to a score or rejects it. It is
// a pure function over its inputs and performs no I/O.
type Scorer struct {
	// Threshold is the minimum accepted score. Zero means DefaultThreshold.
	Threshold int
}

// Evaluate returns the score for the pair and whether it is accepted.
// Exclusion rules apply before scoring: the host, already-invited users,
// attendees, opted-out users, and events with auto-matching disabled are all
// rejected with score 0.
func (s Scorer) Evaluate(e EventFacts, c CandidateFacts) (int, bool) {
	if !e.AutoMatchingEnabled || !c.OptedIn {
		return 0, false
	}
	if c.UserID == e.HostID {
		return 0, false
	}
	if _, ok := e.InvitedIDs[c.UserID]; ok {
		return 0, false
	}
	if _, ok := e.AttendeeIDs[c.UserID]; ok {
		return 0, false
	}
	score := ScorePerSharedInterest * Overlap(c.Interests, e.Tags)
	threshold := s.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if score < threshold {
		return 0, false
	}
	return score, true
}

// SortMatches orders matches by descending score, then ascending username.
// The ordering is total for distinct usernames, which makes match runs
// deterministic.
func SortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Username < matches[j].Username
	})
}
