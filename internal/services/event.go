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

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	invitationRepo domain.InvitationRepository
	matcher        domain.MatchingService
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates the event lifecycle service. matcher may be nil in
// tests; when set, tag or opt-in changes trigger a rebuild of the event's
// auto-matches.
func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	invitationRepo domain.InvitationRepository,
	matcher domain.MatchingService,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		matcher:        matcher,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.HostID == "" {
		return fmt.Errorf("%w: event host is required", domain.ErrInvalidInput)
	}
	if event.Title == "" {
		return fmt.Errorf("%w: event title is required", domain.ErrInvalidInput)
	}
	if !event.EndTime.After(event.StartTime) {
		return fmt.Errorf("%w: event must end after it starts", domain.ErrInvalidInput)
	}

	// Tags are normalized once, on write.
	event.InterestTags = matching.NormalizeSet(event.InterestTags)
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.HostID != callerID {
		return nil, domain.ErrForbidden
	}
	if upd.InterestTags != nil {
		upd.InterestTags = matching.NormalizeSet(upd.InterestTags)
		if upd.InterestTags == nil {
			upd.InterestTags = []string{}
		}
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	// Tag or matching-flag changes invalidate existing auto-matches.
	if s.matcher != nil && (upd.InterestTags != nil || upd.AutoMatchingEnabled != nil) {
		if _, err := s.matcher.RebuildForEvent(ctx, eventID); err != nil {
			s.logger.ErrorContext(ctx, "rebuild after update failed", "event_id", eventID, "err", err)
		}
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.HostID != callerID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) InviteUser(ctx context.Context, eventID, callerID, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("get event: %w", err)
	}
	if event.HostID != callerID {
		return false, domain.ErrForbidden
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("get user: %w", err)
	}
	if user.ID == event.HostID {
		return false, fmt.Errorf("%w: host cannot invite themselves", domain.ErrInvalidInput)
	}

	created, err := s.invitationRepo.CreateManual(ctx, eventID, user.ID)
	if err != nil {
		return false, fmt.Errorf("create invitation: %w", err)
	}

	if created && s.emailService != nil {
		host, err := s.userRepo.GetByID(ctx, event.HostID)
		hostName := ""
		if err == nil {
			hostName = host.Name
		}
		data := &domain.InvitationEmailData{
			Email:      user.Email,
			Username:   user.Username,
			EventTitle: event.Title,
			HostName:   hostName,
			StartTime:  event.StartTime.Format(time.RFC1123),
		}
		// Best-effort: a failed notification does not undo the invitation.
		if err := s.emailService.SendInvitationNotice(ctx, data); err != nil {
			s.logger.ErrorContext(ctx, "invitation email failed", "event_id", eventID, "user_id", user.ID, "err", err)
		}
	}
	return created, nil
}

func (s *eventService) RespondToInvitation(ctx context.Context, eventID, userID string, accept bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	if _, err := s.invitationRepo.GetByEventAndUser(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get invitation: %w", err)
	}

	if !accept {
		if err := s.invitationRepo.Delete(ctx, eventID, userID); err != nil {
			return fmt.Errorf("delete invitation: %w", err)
		}
		return nil
	}

	if event.MaxParticipants > 0 {
		count, err := s.eventRepo.CountAttendees(ctx, eventID)
		if err != nil {
			return fmt.Errorf("count attendees: %w", err)
		}
		if count >= event.MaxParticipants {
			return fmt.Errorf("%w: event is full", domain.ErrConflict)
		}
	}
	if err := s.eventRepo.AddAttendee(ctx, eventID, userID); err != nil {
		return fmt.Errorf("add attendee: %w", err)
	}
	return nil
}
