package services

import (
	"context"
	"testing"
	"time"

	"studycon/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

type eventHarness struct {
	*matchingHarness
	mailer *fakeMailer
	svc    domain.EventService
}

func newEventHarness(t *testing.T) *eventHarness {
	t.Helper()
	h := newMatchingHarness(MatchingConfig{})
	mailer := &fakeMailer{}
	emailSvc := NewEmailService(mailer, fakeRenderer{}, testLogger())
	svc := NewEventService(h.events, h.users, h.invs, h.matcher, emailSvc, testLogger(), testTimeout)
	return &eventHarness{matchingHarness: h, mailer: mailer, svc: svc}
}

func TestCreateEvent_NormalizesTags(t *testing.T) {
	h := newEventHarness(t)
	h.users.addUser("u-h", "hank", nil, true)

	start := time.Now().Add(24 * time.Hour)
	event := domain.NewEvent("u-h", "Language night", "", "study_group",
		[]string{" Spanish ", "spanish", "PHOTOGRAPHY"}, start, start.Add(time.Hour))
	require.NoError(t, h.svc.CreateEvent(context.Background(), event))

	assert.Equal(t, []string{"spanish", "photography"}, event.InterestTags)
	assert.NotEmpty(t, event.ID)

	attendees, err := h.events.ListAttendeeIDs(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u-h"}, attendees, "host is an implicit attendee")
}

func TestCreateEvent_Validation(t *testing.T) {
	h := newEventHarness(t)
	start := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name  string
		event *domain.Event
	}{
		{name: "missing host", event: domain.NewEvent("", "Title", "", "", nil, start, start.Add(time.Hour))},
		{name: "missing title", event: domain.NewEvent("u-h", "", "", "", nil, start, start.Add(time.Hour))},
		{name: "ends before start", event: domain.NewEvent("u-h", "Title", "", "", nil, start, start.Add(-time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.svc.CreateEvent(context.Background(), tt.event)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestUpdateEvent_HostOnly(t *testing.T) {
	h := newEventHarness(t)
	h.users.addUser("u-h", "hank", nil, true)
	event := h.newStudyEvent("u-h", []string{"spanish"})

	title := "New title"
	_, err := h.svc.UpdateEvent(context.Background(), event.ID, "u-other", domain.EventUpdate{Title: &title})
	require.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := h.svc.UpdateEvent(context.Background(), event.ID, "u-h", domain.EventUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
}

func TestUpdateEvent_TagChangeRebuildsMatches(t *testing.T) {
	h := newEventHarness(t)
	h.users.addUser("u-h", "hank", nil, true)
	h.users.addUser("u-a", "alice", []string{"Spanish"}, true)
	h.users.addUser("u-b", "bob", []string{"Photography"}, true)
	event := h.newStudyEvent("u-h", []string{"spanish"})

	_, err := h.matcher.MatchEvent(context.Background(), event.ID, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"u-a"}, autoMatchedSet(t, h.matchingHarness, event.ID))

	_, err = h.svc.UpdateEvent(context.Background(), event.ID, "u-h", domain.EventUpdate{
		InterestTags: []string{"Photography"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"u-b"}, autoMatchedSet(t, h.matchingHarness, event.ID))
}

func TestDeleteEvent_HostOnly(t *testing.T) {
	h := newEventHarness(t)
	h.users.addUser("u-h", "hank", nil, true)
	event := h.newStudyEvent("u-h", nil)

	require.ErrorIs(t, h.svc.DeleteEvent(context.Background(), event.ID, "u-other"), domain.ErrForbidden)
	require.NoError(t, h.svc.DeleteEvent(context.Background(), event.ID, "u-h"))
	require.ErrorIs(t, h.svc.DeleteEvent(context.Background(), event.ID, "u-h"), domain.ErrNotFound)
}

func TestInviteUser(t *testing.T) {
	h := newEventHarness(t)
	h.users.addUser("u-h", "hank", nil, true)
	h.users.addUser("u-a", "alice", nil, true)
	event := h.newStudyEvent("u-h", nil)

	created, err := h.svc.InviteUser(context.Background(), event.ID, "u-h", "alice")
	require.NoError(t, err)
	assert.True(t, created)

	inv, err := h.invs.GetByEventAndUser(context.Background(), event.ID, "u-a")
	require.NoError(t, err)
	assert.False(t, inv.IsAutoMatched)
	assert.Equal(t, []string{"alice@example.com"}, h.mailer.sent)

	// Second invite is idempotent and sends no second email.
	created, err = h.svc.InviteUser(context.Background(), event.ID, "u-h", "alice")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, h.mailer.sent, 1)
}

func TestInviteUser_Errors(t *testing.T) {
	h := newEventHarness(t)
	h.users.addUser("u-h", "hank", nil, true)
	h.users.addUser("u-a", "alice", nil, true)
	event := h.newStudyEvent("u-h", nil)

	_, err := h.svc.InviteUser(context.Background(), event.ID, "u-a", "alice")
	require.ErrorIs(t, err, domain.ErrForbidden, "only the host can invite")

	_, err = h.svc.InviteUser(context.Background(), event.ID, "u-h", "nobody")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.svc.InviteUser(context.Background(), event.ID, "u-h", "hank")
	require.ErrorIs(t, err, domain.ErrInvalidInput, "host cannot invite themselves")
}

func TestRespondToInvitation_Accept(t *testing.T) {
	h := newEventHarness(t)
	h.users.addUser("u-h", "hank", nil, true)
	h.users.addUser("u-a", "alice", nil, true)
	event := h.newStudyEvent("u-h", nil)
	_, err := h.invs.CreateManual(context.Background(), event.ID, "u-a")
	require.NoError(t, err)

	require.NoError(t, h.svc.RespondToInvitation(context.Background(), event.ID, "u-a", true))
	attending, err := h.events.IsAttendee(context.Background(), event.ID, "u-a")
	require.NoError(t, err)
	assert.True(t, attending)
}

func TestRespondToInvitation_Decline(t *testing.T) {
	h := newEventHarness(t)
	h.users.addUser("u-h", "hank", nil, true)
	h.users.addUser("u-a", "alice", nil, true)
	event := h.newStudyEvent("u-h", nil)
	_, err := h.invs.CreateManual(context.Background(), event.ID, "u-a")
	require.NoError(t, err)

	require.NoError(t, h.svc.RespondToInvitation(context.Background(), event.ID, "u-a", false))

	_, err = h.invs.GetByEventAndUser(context.Background(), event.ID, "u-a")
	require.ErrorIs(t, err, domain.ErrNotFound)
	invited, err := h.invs.ListInvitedUserIDs(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Empty(t, invited)
}

func TestRespondToInvitation_FullEvent(t *testing.T) {
	h := newEventHarness(t)
	h.users.addUser("u-h", "hank", nil, true)
	h.users.addUser("u-a", "alice", nil, true)
	event := h.newStudyEvent("u-h", nil)
	event.MaxParticipants = 1 // the host fills the only seat
	_, err := h.invs.CreateManual(context.Background(), event.ID, "u-a")
	require.NoError(t, err)

	err = h.svc.RespondToInvitation(context.Background(), event.ID, "u-a", true)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRespondToInvitation_NoInvitation(t *testing.T) {
	h := newEventHarness(t)
	h.users.addUser("u-h", "hank", nil, true)
	event := h.newStudyEvent("u-h", nil)

	err := h.svc.RespondToInvitation(context.Background(), event.ID, "u-a", true)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
