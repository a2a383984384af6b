package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studycon/internal/domain"
)

type visibilityService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	invitationRepo domain.InvitationRepository
	logger         *slog.Logger
	now            func() time.Time
}

// NewVisibilityService creates the resolver that buckets events for a user.
func NewVisibilityService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	invitationRepo domain.InvitationRepository,
	logger *slog.Logger,
) domain.VisibilityService {
	return &visibilityService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// EventsFor partitions the user's events into buckets. Precedence: an event
// lands in the first bucket that matches, in the order hosting > attending >
// invited (manual) > auto-matched > public. Ended events are excluded by the
// underlying queries.
func (s *visibilityService) EventsFor(ctx context.Context, userID string, includePublic bool, p domain.PaginationParams) (*domain.EventBuckets, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	now := s.now()
	buckets := &domain.EventBuckets{
		Hosting:     []*domain.Event{},
		Attending:   []*domain.Event{},
		Invited:     []*domain.Event{},
		AutoMatched: []*domain.Event{},
	}
	seen := make(map[string]struct{})
	claim := func(events []*domain.Event) []*domain.Event {
		out := make([]*domain.Event, 0, len(events))
		for _, e := range events {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
		return out
	}

	hosting, err := s.eventRepo.ListHostedBy(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list hosted events: %w", err)
	}
	buckets.Hosting = claim(hosting)

	attending, err := s.eventRepo.ListAttendedBy(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list attended events: %w", err)
	}
	buckets.Attending = claim(attending)

	invited, err := s.eventRepo.ListInvited(ctx, userID, false, now)
	if err != nil {
		return nil, fmt.Errorf("list invited events: %w", err)
	}
	buckets.Invited = claim(invited)

	autoMatched, err := s.eventRepo.ListInvited(ctx, userID, true, now)
	if err != nil {
		return nil, fmt.Errorf("list auto-matched events: %w", err)
	}
	buckets.AutoMatched = claim(autoMatched)

	if includePublic {
		public, err := s.eventRepo.ListPublicUpcoming(ctx, now, p)
		if err != nil {
			return nil, fmt.Errorf("list public events: %w", err)
		}
		buckets.Public = claim(public)
	}
	return buckets, nil
}
