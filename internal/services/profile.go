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

type profileService struct {
	profileRepo    domain.ProfileRepository
	userRepo       domain.UserRepository
	matcher        domain.MatchingService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewProfileService creates the profile service. matcher may be nil in
// tests; when set, interest changes trigger a matching pass for the user.
func NewProfileService(
	profileRepo domain.ProfileRepository,
	userRepo domain.UserRepository,
	matcher domain.MatchingService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ProfileService {
	return &profileService{
		profileRepo:    profileRepo,
		userRepo:       userRepo,
		matcher:        matcher,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if profile.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if profile.PreferredRadiusKm < 0 {
		return nil, fmt.Errorf("%w: radius must not be negative", domain.ErrInvalidInput)
	}

	// Interests are normalized once, on write.
	profile.Interests = matching.NormalizeSet(profile.Interests)

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if s.matcher != nil && profile.AutoInviteOptIn {
		if _, err := s.matcher.MatchUser(ctx, profile.UserID); err != nil {
			s.logger.ErrorContext(ctx, "matching after profile update failed", "user_id", profile.UserID, "err", err)
		}
	}
	return profile, nil
}

func (s *profileService) SetOptInByUsername(ctx context.Context, username string, optIn bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if err := s.profileRepo.SetAutoInviteOptIn(ctx, user.ID, optIn); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("set opt-in: %w", err)
	}
	s.logger.InfoContext(ctx, "auto-invite opt-in updated", "username", username, "opt_in", optIn)
	return nil
}
