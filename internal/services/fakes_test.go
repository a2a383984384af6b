package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"studycon/internal/domain"
	"studycon/internal/matching"
)

// fakeUserRepo is an in-memory UserRepository and ProfileRepository for
// tests.
type fakeUserRepo struct {
	users    map[string]*domain.User
	profiles map[string]*domain.Profile
	err      error // if set, every method returns this error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[string]*domain.User),
		profiles: make(map[string]*domain.Profile),
	}
}

func (f *fakeUserRepo) addUser(id, username string, interests []string, optIn bool) *domain.User {
	u := &domain.User{ID: id, Username: username, Email: username + "@example.com", Name: username}
	f.users[id] = u
	f.profiles[id] = &domain.Profile{
		UserID:          id,
		Interests:       matching.NormalizeSet(interests),
		AutoInviteOptIn: optIn,
	}
	return u
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) ListCandidatesForEvent(ctx context.Context, tags []string, hostID string) ([]*domain.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Candidate, 0)
	for id, u := range f.users {
		p := f.profiles[id]
		if p == nil || !p.AutoInviteOptIn || id == hostID {
			continue
		}
		if matching.Overlap(p.Interests, tags) == 0 {
			continue
		}
		out = append(out, &domain.Candidate{
			UserID:    id,
			Username:  u.Username,
			Email:     u.Email,
			Interests: p.Interests,
			OptedIn:   p.AutoInviteOptIn,
			RadiusKm:  p.PreferredRadiusKm,
			Lat:       p.LocationLat,
			Lng:       p.LocationLng,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUserRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, profile *domain.Profile) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.profiles[profile.UserID]; !ok {
		return domain.ErrNotFound
	}
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeUserRepo) SetAutoInviteOptIn(ctx context.Context, userID string, optIn bool) error {
	if f.err != nil {
		return f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.AutoInviteOptIn = optIn
	return nil
}

// fakeInvitationRepo keeps invitations and the invited-users relation in
// lockstep, mirroring the transactional postgres implementation.
type fakeInvitationRepo struct {
	invitations map[string]map[string]*domain.Invitation // eventID -> userID -> row
	invited     map[string]map[string]struct{}           // eventID -> userID set
	nextID      int
	upsertErr   error // if set, UpsertAutoMatch/CreateManual return this
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{
		invitations: make(map[string]map[string]*domain.Invitation),
		invited:     make(map[string]map[string]struct{}),
		nextID:      1,
	}
}

func (f *fakeInvitationRepo) upsert(eventID, userID string, autoMatched bool) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	if f.invitations[eventID] == nil {
		f.invitations[eventID] = make(map[string]*domain.Invitation)
	}
	if f.invited[eventID] == nil {
		f.invited[eventID] = make(map[string]struct{})
	}
	f.invited[eventID][userID] = struct{}{}
	if _, ok := f.invitations[eventID][userID]; ok {
		return false, nil
	}
	f.invitations[eventID][userID] = &domain.Invitation{
		ID:            fmt.Sprintf("inv-%d", f.nextID),
		EventID:       eventID,
		UserID:        userID,
		IsAutoMatched: autoMatched,
		CreatedAt:     time.Now(),
	}
	f.nextID++
	return true, nil
}

func (f *fakeInvitationRepo) UpsertAutoMatch(ctx context.Context, eventID, userID string) (bool, error) {
	return f.upsert(eventID, userID, true)
}

func (f *fakeInvitationRepo) CreateManual(ctx context.Context, eventID, userID string) (bool, error) {
	return f.upsert(eventID, userID, false)
}

func (f *fakeInvitationRepo) ClearAutoMatches(ctx context.Context, eventID string) (int, error) {
	removed := 0
	for userID, inv := range f.invitations[eventID] {
		if !inv.IsAutoMatched {
			continue
		}
		delete(f.invitations[eventID], userID)
		delete(f.invited[eventID], userID)
		removed++
	}
	return removed, nil
}

func (f *fakeInvitationRepo) Delete(ctx context.Context, eventID, userID string) error {
	delete(f.invitations[eventID], userID)
	delete(f.invited[eventID], userID)
	return nil
}

func (f *fakeInvitationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Invitation, error) {
	if inv, ok := f.invitations[eventID][userID]; ok {
		return inv, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	out := make([]*domain.Invitation, 0)
	for _, inv := range f.invitations[eventID] {
		out = append(out, inv)
	}
	return out, nil
}

func (f *fakeInvitationRepo) ListAutoMatchedUserIDs(ctx context.Context, eventID string) ([]string, error) {
	out := make([]string, 0)
	for userID, inv := range f.invitations[eventID] {
		if inv.IsAutoMatched {
			out = append(out, userID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeInvitationRepo) ListAutoMatchedEventIDs(ctx context.Context, userID string) ([]string, error) {
	out := make([]string, 0)
	for eventID, byUser := range f.invitations {
		if inv, ok := byUser[userID]; ok && inv.IsAutoMatched {
			out = append(out, eventID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeInvitationRepo) ListInvitedUserIDs(ctx context.Context, eventID string) ([]string, error) {
	out := make([]string, 0)
	for userID := range f.invited[eventID] {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out, nil
}

// fakeEventRepo is an in-memory EventRepository. It needs the invitation
// fake to answer ListInvited.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	attendees map[string]map[string]struct{}
	invs      *fakeInvitationRepo
	nextID    int
	err       error // if set, GetByID returns this error
}

func newFakeEventRepo(invs *fakeInvitationRepo) *fakeEventRepo {
	return &fakeEventRepo{
		byID:      make(map[string]*domain.Event),
		attendees: make(map[string]map[string]struct{}),
		invs:      invs,
		nextID:    1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	f.attendees[e.ID] = map[string]struct{}{e.HostID: {}}
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.EventType != nil {
		e.EventType = *upd.EventType
	}
	if upd.InterestTags != nil {
		e.InterestTags = upd.InterestTags
	}
	if upd.AutoMatchingEnabled != nil {
		e.AutoMatchingEnabled = *upd.AutoMatchingEnabled
	}
	if upd.IsPublic != nil {
		e.IsPublic = *upd.IsPublic
	}
	if upd.MaxParticipants != nil {
		e.MaxParticipants = *upd.MaxParticipants
	}
	if upd.StartTime != nil {
		e.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		e.EndTime = *upd.EndTime
	}
	e.UpdatedAt = time.Now()
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.attendees, id)
	return nil
}

func (f *fakeEventRepo) ListAutoMatchable(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if e.AutoMatchingEnabled && e.IsPublic && e.StartTime.After(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) ListCandidatesForUser(ctx context.Context, interests []string, userID string, now time.Time) ([]*domain.Event, error) {
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if !e.AutoMatchingEnabled || !e.IsPublic || e.HostID == userID || !e.StartTime.After(now) {
			continue
		}
		if matching.Overlap(interests, e.InterestTags) == 0 {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) ListHostedBy(ctx context.Context, userID string, now time.Time) ([]*domain.Event, error) {
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if e.HostID == userID && e.EndTime.After(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) ListAttendedBy(ctx context.Context, userID string, now time.Time) ([]*domain.Event, error) {
	out := make([]*domain.Event, 0)
	for id, att := range f.attendees {
		if _, ok := att[userID]; !ok {
			continue
		}
		e := f.byID[id]
		if e != nil && e.EndTime.After(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) ListInvited(ctx context.Context, userID string, autoMatched bool, now time.Time) ([]*domain.Event, error) {
	out := make([]*domain.Event, 0)
	for eventID, byUser := range f.invs.invitations {
		inv, ok := byUser[userID]
		if !ok || inv.IsAutoMatched != autoMatched {
			continue
		}
		e := f.byID[eventID]
		if e != nil && e.EndTime.After(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) ListPublicUpcoming(ctx context.Context, now time.Time, p domain.PaginationParams) ([]*domain.Event, error) {
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if e.IsPublic && e.StartTime.After(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) AddAttendee(ctx context.Context, eventID, userID string) error {
	if f.attendees[eventID] == nil {
		f.attendees[eventID] = make(map[string]struct{})
	}
	f.attendees[eventID][userID] = struct{}{}
	return nil
}

func (f *fakeEventRepo) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	delete(f.attendees[eventID], userID)
	return nil
}

func (f *fakeEventRepo) IsAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	_, ok := f.attendees[eventID][userID]
	return ok, nil
}

func (f *fakeEventRepo) ListAttendeeIDs(ctx context.Context, eventID string) ([]string, error) {
	out := make([]string, 0)
	for userID := range f.attendees[eventID] {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeEventRepo) CountAttendees(ctx context.Context, eventID string) (int, error) {
	return len(f.attendees[eventID]), nil
}

// fakeMailer records sent emails.
type fakeMailer struct {
	sent []string // recipient addresses
	err  error
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

// fakeRenderer returns fixed content for any template.
type fakeRenderer struct{}

func (fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	return "subject", "<p>html</p>", "text", nil
}
