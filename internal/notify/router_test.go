package notify

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"localdink/internal/database"
	"localdink/internal/logger"
	"localdink/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The production database must satisfy the router's store contract.
var _ Store = (*database.Database)(nil)

type fakeStore struct {
	players map[uuid.UUID]database.Player
	created []database.CreateNotificationParams
	fail    error
}

func (s *fakeStore) GetPlayerByID(_ context.Context, id uuid.UUID) (database.Player, error) {
	player, ok := s.players[id]
	if !ok {
		return database.Player{}, database.ErrPlayerNotFound
	}
	return player, nil
}

func (s *fakeStore) CreateNotification(_ context.Context, params database.CreateNotificationParams) (database.Notification, error) {
	if s.fail != nil {
		return database.Notification{}, s.fail
	}
	s.created = append(s.created, params)
	return database.Notification{ID: uuid.New(), RecipientID: params.RecipientID, Type: params.Type}, nil
}

type fakeSMS struct {
	configured bool
	fail       error
	sent       []string
}

func (s *fakeSMS) Send(_ context.Context, to, _ string) error {
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, to)
	return nil
}

func (s *fakeSMS) Configured() bool {
	return s.configured
}

func testPlayer(prefs database.Preferences, phone string) database.Player {
	p := database.Player{ID: uuid.New(), Name: "Jordan", Preferences: prefs}
	if phone != "" {
		p.Phone = util.Some(phone)
	}
	return p
}

func newTestRouter(store *fakeStore, sms *fakeSMS, now time.Time) Router {
	r := NewRouter(logger.Silence(io.Discard), store, sms)
	r.now = func() time.Time { return now }
	return r
}

func TestDeliverWritesInAppAndSMS(t *testing.T) {
	player := testPlayer(database.DefaultPreferences(), "5551234567")
	store := &fakeStore{players: map[uuid.UUID]database.Player{player.ID: player}}
	sms := &fakeSMS{configured: true}
	router := newTestRouter(store, sms, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))

	err := router.Deliver(context.Background(), Event{
		Type:        database.NotificationTypeInviteSent,
		RecipientID: player.ID,
		SessionID:   uuid.New(),
		Data:        TemplateData{InviterName: "Sam", MatchType: "doubles", Date: "Mar 14", Time: "12:00"},
	})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, []string{ChannelSMS, ChannelInApp}, store.created[0].Channels)
	assert.Contains(t, store.created[0].Body, "Sam invited you")
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "+15551234567", sms.sent[0])
}

func TestDeliverSuppressedByTypePreference(t *testing.T) {
	prefs := database.DefaultPreferences()
	prefs.Types = map[database.NotificationType]bool{database.NotificationTypeReminder: false}
	player := testPlayer(prefs, "5551234567")
	store := &fakeStore{players: map[uuid.UUID]database.Player{player.ID: player}}
	sms := &fakeSMS{configured: true}
	router := newTestRouter(store, sms, time.Now())

	err := router.Deliver(context.Background(), Event{Type: database.NotificationTypeReminder, RecipientID: player.ID})
	require.NoError(t, err)

	assert.Empty(t, store.created)
	assert.Empty(t, sms.sent)
}

func TestDeliverSkipsSMSWhenChannelDisabled(t *testing.T) {
	prefs := database.DefaultPreferences()
	prefs.Channels.SMS = false
	player := testPlayer(prefs, "5551234567")
	store := &fakeStore{players: map[uuid.UUID]database.Player{player.ID: player}}
	sms := &fakeSMS{configured: true}
	router := newTestRouter(store, sms, time.Now())

	err := router.Deliver(context.Background(), Event{Type: database.NotificationTypeInviteSent, RecipientID: player.ID})
	require.NoError(t, err)

	assert.Empty(t, sms.sent)
	require.Len(t, store.created, 1)
	assert.Equal(t, []string{ChannelInApp}, store.created[0].Channels)
}

func TestDeliverSkipsSMSWithoutResolvablePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
	}{
		{name: "no phone on record", phone: ""},
		{name: "unresolvable phone", phone: "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := testPlayer(database.DefaultPreferences(), tt.phone)
			store := &fakeStore{players: map[uuid.UUID]database.Player{player.ID: player}}
			sms := &fakeSMS{configured: true}
			router := newTestRouter(store, sms, time.Now())

			err := router.Deliver(context.Background(), Event{Type: database.NotificationTypeInviteSent, RecipientID: player.ID})
			require.NoError(t, err)

			assert.Empty(t, sms.sent)
			require.Len(t, store.created, 1)
			assert.Equal(t, []string{ChannelInApp}, store.created[0].Channels)
		})
	}
}

func TestDeliverRespectsQuietHours(t *testing.T) {
	tests := []struct {
		name     string
		window   database.QuietHours
		now      time.Time
		wantSent bool
	}{
		{
			name:     "inside simple window",
			window:   database.QuietHours{Start: "09:00", End: "17:00"},
			now:      time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
			wantSent: false,
		},
		{
			name:     "outside simple window",
			window:   database.QuietHours{Start: "09:00", End: "17:00"},
			now:      time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
			wantSent: true,
		},
		{
			name:     "inside window crossing midnight, before midnight",
			window:   database.QuietHours{Start: "22:00", End: "07:00"},
			now:      time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC),
			wantSent: false,
		},
		{
			name:     "inside window crossing midnight, after midnight",
			window:   database.QuietHours{Start: "22:00", End: "07:00"},
			now:      time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC),
			wantSent: false,
		},
		{
			name:     "outside window crossing midnight",
			window:   database.QuietHours{Start: "22:00", End: "07:00"},
			now:      time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
			wantSent: true,
		},
		{
			name:     "malformed window never suppresses",
			window:   database.QuietHours{Start: "late", End: "early"},
			now:      time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC),
			wantSent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := database.DefaultPreferences()
			window := tt.window
			prefs.QuietHours = &window
			player := testPlayer(prefs, "5551234567")
			store := &fakeStore{players: map[uuid.UUID]database.Player{player.ID: player}}
			sms := &fakeSMS{configured: true}
			router := newTestRouter(store, sms, tt.now)

			err := router.Deliver(context.Background(), Event{Type: database.NotificationTypeInviteSent, RecipientID: player.ID})
			require.NoError(t, err)

			if tt.wantSent {
				assert.Len(t, sms.sent, 1)
			} else {
				assert.Empty(t, sms.sent)
			}
			// The in-app write is unaffected either way.
			assert.Len(t, store.created, 1)
		})
	}
}

func TestDeliverSMSFailureDoesNotBlockInApp(t *testing.T) {
	player := testPlayer(database.DefaultPreferences(), "5551234567")
	store := &fakeStore{players: map[uuid.UUID]database.Player{player.ID: player}}
	sms := &fakeSMS{configured: true, fail: errors.New("carrier rejected message")}
	router := newTestRouter(store, sms, time.Now())

	err := router.Deliver(context.Background(), Event{Type: database.NotificationTypeInviteSent, RecipientID: player.ID})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, []string{ChannelInApp}, store.created[0].Channels)
}

func TestDeliverSkipsInAppWhenChannelDisabled(t *testing.T) {
	prefs := database.DefaultPreferences()
	prefs.Channels.InApp = false
	player := testPlayer(prefs, "5551234567")
	store := &fakeStore{players: map[uuid.UUID]database.Player{player.ID: player}}
	sms := &fakeSMS{configured: true}
	router := newTestRouter(store, sms, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))

	err := router.Deliver(context.Background(), Event{Type: database.NotificationTypeInviteSent, RecipientID: player.ID})
	require.NoError(t, err)

	assert.Empty(t, store.created)
	assert.Len(t, sms.sent, 1)
}

func TestDeliverUnknownRecipient(t *testing.T) {
	store := &fakeStore{players: map[uuid.UUID]database.Player{}}
	router := newTestRouter(store, &fakeSMS{}, time.Now())

	err := router.Deliver(context.Background(), Event{Type: database.NotificationTypeInviteSent, RecipientID: uuid.New()})
	assert.ErrorIs(t, err, database.ErrPlayerNotFound)
}
