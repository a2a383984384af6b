package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studycon/internal/domain"
	"studycon/internal/matching"
)

// MatchingConfig carries the tunable knobs of the matching engine.
type MatchingConfig struct {
	// Threshold is the minimum accepted score. Zero means the default
	// (one shared interest).
	Threshold int
	// LimitPerEvent bounds how many auto-matches a single MatchEvent call
	// may create. Zero means DefaultMatchLimit.
	LimitPerEvent int
	// RadiusOverrideKm, when > 0, replaces the per-profile preferred radius.
	RadiusOverrideKm float64
}

// DefaultMatchLimit is the per-event bound on auto-matches created in one run.
const DefaultMatchLimit = 5

type matchingService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	profileRepo    domain.ProfileRepository
	invitationRepo domain.InvitationRepository
	logger         *slog.Logger
	cfg            MatchingConfig
	now            func() time.Time
}

// NewMatchingService creates the matching orchestrator.
func NewMatchingService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	profileRepo domain.ProfileRepository,
	invitationRepo domain.InvitationRepository,
	logger *slog.Logger,
	cfg MatchingConfig,
) domain.MatchingService {
	if cfg.LimitPerEvent <= 0 {
		cfg.LimitPerEvent = DefaultMatchLimit
	}
	return &matchingService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		invitationRepo: invitationRepo,
		logger:         logger,
		cfg:            cfg,
		now:            time.Now,
	}
}

func (s *matchingService) MatchEvent(ctx context.Context, eventID string, limit int) ([]*domain.MatchResult, error) {
	matchRunsTotal.WithLabelValues("event").Inc()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return s.matchEvent(ctx, event, limit)
}

// matchEvent runs one matching pass for the event. Mis-configured events
// (disabled, private, tagless, ended) yield zero matches without error so
// bulk runs never fail on a single event.
func (s *matchingService) matchEvent(ctx context.Context, event *domain.Event, limit int) ([]*domain.MatchResult, error) {
	now := s.now()
	if !event.AutoMatchingEnabled || !event.IsPublic || len(event.InterestTags) == 0 || !event.EndTime.After(now) {
		s.logger.DebugContext(ctx, "event not matchable", "event_id", event.ID,
			"enabled", event.AutoMatchingEnabled, "public", event.IsPublic, "tags", len(event.InterestTags))
		return []*domain.MatchResult{}, nil
	}

	candidates, err := s.userRepo.ListCandidatesForEvent(ctx, event.InterestTags, event.HostID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	facts, err := s.eventFacts(ctx, event)
	if err != nil {
		return nil, err
	}

	scorer := matching.Scorer{Threshold: s.cfg.Threshold}
	accepted := make([]matching.Match, 0, len(candidates))
	for _, c := range candidates {
		if !s.withinRadius(event, c) {
			continue
		}
		score, ok := scorer.Evaluate(facts, matching.CandidateFacts{
			UserID:    c.UserID,
			Username:  c.Username,
			Interests: c.Interests,
			OptedIn:   c.OptedIn,
		})
		if !ok {
			continue
		}
		accepted = append(accepted, matching.Match{UserID: c.UserID, Username: c.Username, Score: score})
	}
	matching.SortMatches(accepted)

	if limit <= 0 {
		limit = s.cfg.LimitPerEvent
	}
	// A bounded event never gets invited beyond its remaining capacity.
	if event.MaxParticipants > 0 {
		remaining := event.MaxParticipants - len(facts.AttendeeIDs)
		if remaining < limit {
			limit = remaining
		}
	}
	if limit < 0 {
		limit = 0
	}
	if len(accepted) > limit {
		accepted = accepted[:limit]
	}

	results := make([]*domain.MatchResult, 0, len(accepted))
	for _, m := range accepted {
		created, err := s.invitationRepo.UpsertAutoMatch(ctx, event.ID, m.UserID)
		if err != nil {
			// Per-user failure: skip this upsert, keep going.
			s.logger.ErrorContext(ctx, "upsert auto-match failed",
				"event_id", event.ID, "user_id", m.UserID, "err", err)
			continue
		}
		if !created {
			continue
		}
		results = append(results, &domain.MatchResult{
			EventID:  event.ID,
			UserID:   m.UserID,
			Username: m.Username,
			Score:    m.Score,
		})
	}
	autoMatchesCreatedTotal.Add(float64(len(results)))
	s.logger.InfoContext(ctx, "matched event",
		"event_id", event.ID, "candidates", len(candidates), "created", len(results))
	return results, nil
}

func (s *matchingService) MatchUser(ctx context.Context, userID string) ([]*domain.MatchResult, error) {
	matchRunsTotal.WithLabelValues("user").Inc()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if !profile.AutoInviteOptIn || len(profile.Interests) == 0 {
		return []*domain.MatchResult{}, nil
	}

	events, err := s.eventRepo.ListCandidatesForUser(ctx, profile.Interests, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list candidate events: %w", err)
	}

	scorer := matching.Scorer{Threshold: s.cfg.Threshold}
	candidate := matching.CandidateFacts{
		UserID:    user.ID,
		Username:  user.Username,
		Interests: profile.Interests,
		OptedIn:   profile.AutoInviteOptIn,
	}

	results := make([]*domain.MatchResult, 0)
	for _, event := range events {
		facts, err := s.eventFacts(ctx, event)
		if err != nil {
			s.logger.ErrorContext(ctx, "load event facts failed", "event_id", event.ID, "err", err)
			continue
		}
		if event.MaxParticipants > 0 && len(facts.AttendeeIDs) >= event.MaxParticipants {
			continue
		}
		if !s.withinRadius(event, &domain.Candidate{
			RadiusKm: profile.PreferredRadiusKm,
			Lat:      profile.LocationLat,
			Lng:      profile.LocationLng,
		}) {
			continue
		}
		score, ok := scorer.Evaluate(facts, candidate)
		if !ok {
			continue
		}
		created, err := s.invitationRepo.UpsertAutoMatch(ctx, event.ID, user.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "upsert auto-match failed",
				"event_id", event.ID, "user_id", user.ID, "err", err)
			continue
		}
		if !created {
			continue
		}
		results = append(results, &domain.MatchResult{
			EventID:  event.ID,
			UserID:   user.ID,
			Username: user.Username,
			Score:    score,
		})
	}
	autoMatchesCreatedTotal.Add(float64(len(results)))
	s.logger.InfoContext(ctx, "matched user", "user_id", userID, "created", len(results))
	return results, nil
}

func (s *matchingService) MatchAllEvents(ctx context.Context) (*domain.MatchRunSummary, error) {
	matchRunsTotal.WithLabelValues("all").Inc()

	events, err := s.eventRepo.ListAutoMatchable(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list auto-matchable events: %w", err)
	}

	summary := &domain.MatchRunSummary{}
	for _, event := range events {
		results, err := s.matchEvent(ctx, event, 0)
		if err != nil {
			// Per-event failure: record and continue with the next event.
			s.logger.ErrorContext(ctx, "match event failed", "event_id", event.ID, "err", err)
			summary.Failed = append(summary.Failed, event.ID)
			continue
		}
		summary.EventsProcessed++
		summary.MatchesCreated += len(results)
		summary.Results = append(summary.Results, results...)
	}
	return summary, nil
}

func (s *matchingService) RebuildForEvent(ctx context.Context, eventID string) ([]*domain.MatchResult, error) {
	matchRunsTotal.WithLabelValues("rebuild").Inc()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	removed, err := s.invitationRepo.ClearAutoMatches(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("clear auto-matches: %w", err)
	}
	autoMatchesClearedTotal.Add(float64(removed))
	return s.MatchEvent(ctx, eventID, 0)
}

func (s *matchingService) RebuildAll(ctx context.Context) (*domain.MatchRunSummary, error) {
	matchRunsTotal.WithLabelValues("rebuild").Inc()

	events, err := s.eventRepo.ListAutoMatchable(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list auto-matchable events: %w", err)
	}
	for _, event := range events {
		removed, err := s.invitationRepo.ClearAutoMatches(ctx, event.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "clear auto-matches failed", "event_id", event.ID, "err", err)
			continue
		}
		autoMatchesClearedTotal.Add(float64(removed))
	}
	return s.MatchAllEvents(ctx)
}

// eventFacts loads the event's current invited and attendee sets.
func (s *matchingService) eventFacts(ctx context.Context, event *domain.Event) (matching.EventFacts, error) {
	invited, err := s.invitationRepo.ListInvitedUserIDs(ctx, event.ID)
	if err != nil {
		return matching.EventFacts{}, fmt.Errorf("list invited users: %w", err)
	}
	attendees, err := s.eventRepo.ListAttendeeIDs(ctx, event.ID)
	if err != nil {
		return matching.EventFacts{}, fmt.Errorf("list attendees: %w", err)
	}
	return matching.EventFacts{
		EventID:             event.ID,
		HostID:              event.HostID,
		Tags:                event.InterestTags,
		AutoMatchingEnabled: event.AutoMatchingEnabled,
		InvitedIDs:          toSet(invited),
		AttendeeIDs:         toSet(attendees),
	}, nil
}

// withinRadius passes unless both the event and the candidate carry
// coordinates and the distance exceeds the effective radius.
func (s *matchingService) withinRadius(event *domain.Event, c *domain.Candidate) bool {
	if event.LocationLat == nil || event.LocationLng == nil || c.Lat == nil || c.Lng == nil {
		return true
	}
	radius := c.RadiusKm
	if s.cfg.RadiusOverrideKm > 0 {
		radius = s.cfg.RadiusOverrideKm
	}
	return matching.WithinRadius(*event.LocationLat, *event.LocationLng, *c.Lat, *c.Lng, radius)
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
