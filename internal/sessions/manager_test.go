package sessions

import (
	"context"
	"io"
	"sort"
	"testing"
	"time"

	"localdink/internal/database"
	"localdink/internal/hydrate"
	"localdink/internal/logger"
	"localdink/internal/notify"
	"localdink/internal/rsvp"
	"localdink/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The production database must satisfy the manager's store contract.
var _ Store = (*database.Database)(nil)

// memoryStore backs the session, invitation, and hydration stores at once
// so a single fixture drives the manager end to end.
type memoryStore struct {
	players      map[uuid.UUID]database.Player
	courts       map[uuid.UUID]database.Court
	sessions     map[uuid.UUID]database.GameSession
	groupMembers map[uuid.UUID][]database.Player
	invitations  []database.Invitation
}

var (
	_ rsvp.Store    = (*memoryStore)(nil)
	_ hydrate.Store = (*memoryStore)(nil)
)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		players:      map[uuid.UUID]database.Player{},
		courts:       map[uuid.UUID]database.Court{},
		sessions:     map[uuid.UUID]database.GameSession{},
		groupMembers: map[uuid.UUID][]database.Player{},
	}
}

func (s *memoryStore) GetPlayerByID(_ context.Context, id uuid.UUID) (database.Player, error) {
	player, ok := s.players[id]
	if !ok {
		return database.Player{}, database.ErrPlayerNotFound
	}
	return player, nil
}

func (s *memoryStore) GetCourtByID(_ context.Context, id uuid.UUID) (database.Court, error) {
	court, ok := s.courts[id]
	if !ok {
		return database.Court{}, database.ErrCourtNotFound
	}
	return court, nil
}

func (s *memoryStore) CreateGameSession(_ context.Context, params database.CreateGameSessionParams) (database.GameSession, error) {
	session := database.GameSession{
		ID:          uuid.New(),
		CourtID:     params.CourtID,
		OrganizerID: params.OrganizerID,
		StartTime:   params.StartTime,
		Doubles:     params.Doubles,
		CancelledAt: util.None[time.Time](),
	}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *memoryStore) GetGameSessionByID(_ context.Context, id uuid.UUID) (database.GameSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return database.GameSession{}, database.ErrGameSessionNotFound
	}
	return session, nil
}

func (s *memoryStore) ListGameSessions(_ context.Context, params database.ListGameSessionsParams) ([]database.GameSession, error) {
	var result []database.GameSession
	for _, session := range s.sessions {
		if params.From.IsSet && session.StartTime.Before(params.From.Val) {
			continue
		}
		if params.ParticipantID.IsSet && !s.participates(session, params.ParticipantID.Val) {
			continue
		}
		result = append(result, session)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (s *memoryStore) participates(session database.GameSession, playerID uuid.UUID) bool {
	if session.OrganizerID == playerID {
		return true
	}
	for _, invitation := range s.invitations {
		if invitation.SessionID == session.ID && invitation.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (s *memoryStore) UpdateGameSessionByID(_ context.Context, id uuid.UUID, params database.UpdateGameSessionParams) error {
	session, ok := s.sessions[id]
	if !ok {
		return database.ErrGameSessionNotFound
	}
	if params.CourtID.IsSet {
		session.CourtID = params.CourtID.Val
	}
	if params.StartTime.IsSet {
		session.StartTime = params.StartTime.Val
	}
	if params.CancelledAt.IsSet {
		session.CancelledAt = params.CancelledAt
	}
	s.sessions[id] = session
	return nil
}

func (s *memoryStore) ListGroupMembers(_ context.Context, groupID uuid.UUID) ([]database.Player, error) {
	return s.groupMembers[groupID], nil
}

func (s *memoryStore) CreateInvitation(_ context.Context, params database.CreateInvitationParams) (database.Invitation, error) {
	invitation := database.Invitation{
		ID:          uuid.New(),
		SessionID:   params.SessionID,
		PlayerID:    params.PlayerID,
		Status:      database.InvitationStatusInvited,
		Deadline:    params.Deadline,
		RespondedAt: util.None[time.Time](),
		CreatedAt:   time.Now().UTC().Add(time.Duration(len(s.invitations)) * time.Millisecond),
	}
	s.invitations = append(s.invitations, invitation)
	return invitation, nil
}

func (s *memoryStore) GetInvitationByID(_ context.Context, id uuid.UUID) (database.Invitation, error) {
	for _, invitation := range s.invitations {
		if invitation.ID == id {
			return invitation, nil
		}
	}
	return database.Invitation{}, database.ErrInvitationNotFound
}

func (s *memoryStore) GetActiveInvitation(_ context.Context, sessionID, playerID uuid.UUID) (database.Invitation, error) {
	var latest *database.Invitation
	for i := range s.invitations {
		invitation := s.invitations[i]
		if invitation.SessionID != sessionID || invitation.PlayerID != playerID {
			continue
		}
		if latest == nil || invitation.CreatedAt.After(latest.CreatedAt) {
			latest = &s.invitations[i]
		}
	}
	if latest == nil {
		return database.Invitation{}, database.ErrInvitationNotFound
	}
	return *latest, nil
}

func (s *memoryStore) ListActiveInvitationsBySession(_ context.Context, sessionID uuid.UUID) ([]database.Invitation, error) {
	latest := map[uuid.UUID]database.Invitation{}
	for _, invitation := range s.invitations {
		if invitation.SessionID != sessionID {
			continue
		}
		current, ok := latest[invitation.PlayerID]
		if !ok || invitation.CreatedAt.After(current.CreatedAt) {
			latest[invitation.PlayerID] = invitation
		}
	}
	var result []database.Invitation
	for _, invitation := range latest {
		result = append(result, invitation)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *memoryStore) ListOverdueInvitations(_ context.Context, now time.Time) ([]database.Invitation, error) {
	var overdue []database.Invitation
	for _, invitation := range s.invitations {
		if invitation.Status == database.InvitationStatusInvited && invitation.Deadline.Before(now) {
			overdue = append(overdue, invitation)
		}
	}
	return overdue, nil
}

func (s *memoryStore) TransitionInvitation(_ context.Context, id uuid.UUID, to database.InvitationStatus, respondedAt util.Optional[time.Time]) (database.Invitation, error) {
	for i := range s.invitations {
		if s.invitations[i].ID != id {
			continue
		}
		if s.invitations[i].Status != database.InvitationStatusInvited {
			return database.Invitation{}, database.ErrInvitationConcluded
		}
		s.invitations[i].Status = to
		s.invitations[i].RespondedAt = respondedAt
		return s.invitations[i], nil
	}
	return database.Invitation{}, database.ErrInvitationNotFound
}

func (s *memoryStore) addInvitation(sessionID, playerID uuid.UUID, status database.InvitationStatus) database.Invitation {
	invitation := database.Invitation{
		ID:          uuid.New(),
		SessionID:   sessionID,
		PlayerID:    playerID,
		Status:      status,
		Deadline:    time.Now().UTC().Add(24 * time.Hour),
		RespondedAt: util.None[time.Time](),
		CreatedAt:   time.Now().UTC().Add(time.Duration(len(s.invitations)) * time.Millisecond),
	}
	s.invitations = append(s.invitations, invitation)
	return invitation
}

type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Deliver(_ context.Context, event notify.Event) error {
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) recipients(t database.NotificationType) []uuid.UUID {
	var ids []uuid.UUID
	for _, event := range n.events {
		if event.Type == t {
			ids = append(ids, event.RecipientID)
		}
	}
	return ids
}

type fixture struct {
	store     *memoryStore
	notifier  *recordingNotifier
	manager   *Manager
	organizer database.Player
	court     database.Court
	session   database.GameSession
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemoryStore()
	notifier := &recordingNotifier{}
	// The rsvp manager keeps its own wall clock, so the fixture pins a
	// moment near real time rather than a fixed date.
	now := time.Now().UTC()

	organizer := database.Player{ID: uuid.New(), Name: "Alex", Preferences: database.DefaultPreferences()}
	store.players[organizer.ID] = organizer

	court := database.Court{ID: uuid.New(), Name: "Riverside Park"}
	store.courts[court.ID] = court

	session := database.GameSession{
		ID:          uuid.New(),
		CourtID:     court.ID,
		OrganizerID: organizer.ID,
		StartTime:   now.Add(48 * time.Hour),
		Doubles:     true,
		CancelledAt: util.None[time.Time](),
	}
	store.sessions[session.ID] = session

	log := logger.Silence(io.Discard)
	rsvpManager := rsvp.NewManager(log, store, notifier)
	manager := NewManager(log, store, rsvpManager, hydrate.NewHydrator(store), notifier)
	manager.now = func() time.Time { return now }

	return &fixture{store: store, notifier: notifier, manager: manager, organizer: organizer, court: court, session: session, now: now}
}

func (f *fixture) addPlayer(name string) database.Player {
	player := database.Player{ID: uuid.New(), Name: name, Preferences: database.DefaultPreferences()}
	f.store.players[player.ID] = player
	return player
}

func TestCreateRejectsPastStartTime(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Create(context.Background(), f.organizer.ID, CreateParams{
		CourtID:   f.court.ID,
		StartTime: f.now.Add(-time.Hour),
	})
	assert.ErrorIs(t, err, ErrStartTimeInPast)
}

func TestCreateInvitesNamedPlayersAndGroupOnce(t *testing.T) {
	f := newFixture(t)
	sam := f.addPlayer("Sam")
	jo := f.addPlayer("Jo")

	// Sam appears both as a direct invitee and as a group member, and the
	// organizer sneaks into the invitee list. Each player is invited at
	// most once and the organizer not at all.
	groupID := uuid.New()
	f.store.groupMembers[groupID] = []database.Player{sam, f.organizer}

	view, err := f.manager.Create(context.Background(), f.organizer.ID, CreateParams{
		CourtID:    f.court.ID,
		StartTime:  f.now.Add(24 * time.Hour),
		Doubles:    true,
		InviteeIDs: []uuid.UUID{sam.ID, f.organizer.ID, sam.ID, jo.ID},
		GroupID:    util.Some(groupID),
	})
	require.NoError(t, err)

	invited := map[uuid.UUID]int{}
	for _, invitation := range f.store.invitations {
		if invitation.SessionID.String() == view.ID {
			invited[invitation.PlayerID]++
		}
	}
	assert.Equal(t, map[uuid.UUID]int{sam.ID: 1, jo.ID: 1}, invited)
}

func TestCancelNotifiesPendingAndAccepted(t *testing.T) {
	f := newFixture(t)
	pending := f.addPlayer("Sam")
	accepted := f.addPlayer("Jo")
	declined := f.addPlayer("Riley")
	expired := f.addPlayer("Casey")

	f.store.addInvitation(f.session.ID, pending.ID, database.InvitationStatusInvited)
	f.store.addInvitation(f.session.ID, accepted.ID, database.InvitationStatusAccepted)
	f.store.addInvitation(f.session.ID, declined.ID, database.InvitationStatusDeclined)
	f.store.addInvitation(f.session.ID, expired.ID, database.InvitationStatusExpired)

	require.NoError(t, f.manager.Cancel(context.Background(), f.session.ID, f.organizer.ID))

	stored, err := f.store.GetGameSessionByID(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.True(t, stored.CancelledAt.IsSet)

	recipients := f.notifier.recipients(database.NotificationTypeSessionCancelled)
	assert.ElementsMatch(t, []uuid.UUID{pending.ID, accepted.ID}, recipients)
}

func TestCancelGuards(t *testing.T) {
	f := newFixture(t)
	stranger := f.addPlayer("Sam")

	assert.ErrorIs(t, f.manager.Cancel(context.Background(), f.session.ID, stranger.ID), ErrNotOrganizer)

	require.NoError(t, f.manager.Cancel(context.Background(), f.session.ID, f.organizer.ID))
	assert.ErrorIs(t, f.manager.Cancel(context.Background(), f.session.ID, f.organizer.ID), ErrAlreadyCancelled)
}

func TestRescheduleNotifiesWithUpdatedDetails(t *testing.T) {
	f := newFixture(t)
	pending := f.addPlayer("Sam")
	declined := f.addPlayer("Riley")

	f.store.addInvitation(f.session.ID, pending.ID, database.InvitationStatusInvited)
	f.store.addInvitation(f.session.ID, declined.ID, database.InvitationStatusDeclined)

	newStart := f.now.Add(96 * time.Hour)
	require.NoError(t, f.manager.Reschedule(context.Background(), f.session.ID, f.organizer.ID, RescheduleParams{
		StartTime: util.Some(newStart),
	}))

	recipients := f.notifier.recipients(database.NotificationTypeSessionChanged)
	require.Equal(t, []uuid.UUID{pending.ID}, recipients)

	// The event carries the rescheduled session, not the stale one.
	event := f.notifier.events[len(f.notifier.events)-1]
	assert.Equal(t, newStart.Format("Mon, Jan 2"), event.Data.Date)
	assert.Equal(t, newStart.Format("3:04 PM"), event.Data.Time)
	assert.Equal(t, "Riverside Park", event.Data.CourtName)
}

func TestRescheduleValidation(t *testing.T) {
	f := newFixture(t)

	err := f.manager.Reschedule(context.Background(), f.session.ID, f.organizer.ID, RescheduleParams{
		StartTime: util.Some(f.now.Add(-time.Hour)),
	})
	assert.ErrorIs(t, err, ErrStartTimeInPast)

	err = f.manager.Reschedule(context.Background(), f.session.ID, f.organizer.ID, RescheduleParams{
		CourtID: util.Some(uuid.New()),
	})
	assert.ErrorIs(t, err, database.ErrCourtNotFound)

	err = f.manager.Reschedule(context.Background(), f.session.ID, uuid.New(), RescheduleParams{})
	assert.ErrorIs(t, err, ErrNotOrganizer)
}

func TestInviteIsOrganizerOnly(t *testing.T) {
	f := newFixture(t)
	sam := f.addPlayer("Sam")
	jo := f.addPlayer("Jo")

	_, err := f.manager.Invite(context.Background(), f.session.ID, sam.ID, jo.ID, util.None[time.Time]())
	assert.ErrorIs(t, err, ErrNotOrganizer)

	invitation, err := f.manager.Invite(context.Background(), f.session.ID, f.organizer.ID, jo.ID, util.None[time.Time]())
	require.NoError(t, err)
	assert.Equal(t, database.InvitationStatusInvited, invitation.Status)
}
