package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"localdink/internal/database"
	"localdink/internal/hydrate"
	"localdink/internal/notify"
	"localdink/internal/rsvp"
	"localdink/internal/util"

	"github.com/google/uuid"
)

var (
	ErrNotOrganizer     = errors.New("session belongs to another organizer")
	ErrStartTimeInPast  = errors.New("start time is in the past")
	ErrAlreadyCancelled = errors.New("session is already cancelled")
)

// Store is the slice of the database the session manager depends on.
// Satisfied by *database.Database.
type Store interface {
	GetCourtByID(ctx context.Context, id uuid.UUID) (database.Court, error)
	CreateGameSession(ctx context.Context, params database.CreateGameSessionParams) (database.GameSession, error)
	GetGameSessionByID(ctx context.Context, id uuid.UUID) (database.GameSession, error)
	ListGameSessions(ctx context.Context, params database.ListGameSessionsParams) ([]database.GameSession, error)
	UpdateGameSessionByID(ctx context.Context, id uuid.UUID, params database.UpdateGameSessionParams) error
	ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]database.Player, error)
	ListActiveInvitationsBySession(ctx context.Context, sessionID uuid.UUID) ([]database.Invitation, error)
}

type Manager struct {
	logger   *slog.Logger
	db       Store
	rsvp     *rsvp.Manager
	hydrator hydrate.Hydrator
	notifier rsvp.Notifier
	now      func() time.Time
}

func NewManager(logger *slog.Logger, db Store, rsvpManager *rsvp.Manager, hydrator hydrate.Hydrator, notifier rsvp.Notifier) *Manager {
	return &Manager{
		logger:   logger,
		db:       db,
		rsvp:     rsvpManager,
		hydrator: hydrator,
		notifier: notifier,
		now:      time.Now,
	}
}

type CreateParams struct {
	CourtID    uuid.UUID
	StartTime  time.Time
	Doubles    bool
	InviteeIDs []uuid.UUID
	GroupID    util.Optional[uuid.UUID]
	Deadline   util.Optional[time.Time]
}

// Create sets up the session and invites the named players plus, when a
// group is given, its members. Individual invite failures do not roll the
// session back; the organizer can re-invite from the detail view.
func (m *Manager) Create(ctx context.Context, organizerID uuid.UUID, params CreateParams) (hydrate.SessionView, error) {
	if !params.StartTime.After(m.now()) {
		return hydrate.SessionView{}, ErrStartTimeInPast
	}
	if _, err := m.db.GetCourtByID(ctx, params.CourtID); err != nil {
		return hydrate.SessionView{}, err
	}

	session, err := m.db.CreateGameSession(ctx, database.CreateGameSessionParams{
		CourtID:     params.CourtID,
		OrganizerID: organizerID,
		StartTime:   params.StartTime,
		Doubles:     params.Doubles,
	})
	if err != nil {
		return hydrate.SessionView{}, err
	}

	invitees := params.InviteeIDs
	if params.GroupID.IsSet {
		members, err := m.db.ListGroupMembers(ctx, params.GroupID.Val)
		if err != nil {
			return hydrate.SessionView{}, err
		}
		for _, member := range members {
			invitees = append(invitees, member.ID)
		}
	}

	seen := map[uuid.UUID]bool{organizerID: true}
	for _, playerID := range invitees {
		if seen[playerID] {
			continue
		}
		seen[playerID] = true

		if _, err := m.rsvp.Invite(ctx, session.ID, playerID, params.Deadline); err != nil {
			m.logger.Warn("Invite failed during session creation", "session_id", session.ID, "player_id", playerID, "error", err)
		}
	}

	m.logger.Info("Session created", "session_id", session.ID, "organizer_id", organizerID, "invitees", len(seen)-1)
	return m.hydrator.Hydrate(ctx, session)
}

// Detail returns the fully hydrated view of one session.
func (m *Manager) Detail(ctx context.Context, id uuid.UUID) (hydrate.SessionView, error) {
	session, err := m.db.GetGameSessionByID(ctx, id)
	if err != nil {
		return hydrate.SessionView{}, err
	}
	return m.hydrator.Hydrate(ctx, session)
}

// ListForPlayer returns upcoming sessions the player organizes or is
// invited to, hydrated for display.
func (m *Manager) ListForPlayer(ctx context.Context, playerID uuid.UUID) ([]hydrate.SessionView, error) {
	sessions, err := m.db.ListGameSessions(ctx, database.ListGameSessionsParams{
		ParticipantID: util.Some(playerID),
		From:          util.Some(m.now().Add(-2 * time.Hour)),
	})
	if err != nil {
		return nil, err
	}

	views := make([]hydrate.SessionView, 0, len(sessions))
	for _, session := range sessions {
		view, err := m.hydrator.Hydrate(ctx, session)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Invite adds a player to an existing session, organizer only.
func (m *Manager) Invite(ctx context.Context, sessionID, callerID, playerID uuid.UUID, deadline util.Optional[time.Time]) (database.Invitation, error) {
	session, err := m.db.GetGameSessionByID(ctx, sessionID)
	if err != nil {
		return database.Invitation{}, err
	}
	if session.OrganizerID != callerID {
		return database.Invitation{}, ErrNotOrganizer
	}
	return m.rsvp.Invite(ctx, sessionID, playerID, deadline)
}

// Cancel marks the session cancelled and tells everyone still involved,
// pending and accepted alike.
func (m *Manager) Cancel(ctx context.Context, sessionID, callerID uuid.UUID) error {
	session, err := m.db.GetGameSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.OrganizerID != callerID {
		return ErrNotOrganizer
	}
	if session.CancelledAt.IsSet {
		return ErrAlreadyCancelled
	}

	if err := m.db.UpdateGameSessionByID(ctx, sessionID, database.UpdateGameSessionParams{
		CancelledAt: util.Some(m.now().UTC()),
	}); err != nil {
		return err
	}

	m.fanOut(ctx, session, database.NotificationTypeSessionCancelled)
	m.logger.Info("Session cancelled", "session_id", sessionID)
	return nil
}

type RescheduleParams struct {
	StartTime util.Optional[time.Time]
	CourtID   util.Optional[uuid.UUID]
}

// Reschedule moves the session to a new time or court and notifies the
// involved players.
func (m *Manager) Reschedule(ctx context.Context, sessionID, callerID uuid.UUID, params RescheduleParams) error {
	session, err := m.db.GetGameSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.OrganizerID != callerID {
		return ErrNotOrganizer
	}
	if session.CancelledAt.IsSet {
		return ErrAlreadyCancelled
	}
	if params.StartTime.IsSet && !params.StartTime.Val.After(m.now()) {
		return ErrStartTimeInPast
	}
	if params.CourtID.IsSet {
		if _, err := m.db.GetCourtByID(ctx, params.CourtID.Val); err != nil {
			return err
		}
	}

	if err := m.db.UpdateGameSessionByID(ctx, sessionID, database.UpdateGameSessionParams{
		StartTime: params.StartTime,
		CourtID:   params.CourtID,
	}); err != nil {
		return err
	}

	updated, err := m.db.GetGameSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	m.fanOut(ctx, updated, database.NotificationTypeSessionChanged)
	m.logger.Info("Session rescheduled", "session_id", sessionID)
	return nil
}

// fanOut notifies every invitee whose active invitation is still pending or
// accepted.
func (m *Manager) fanOut(ctx context.Context, session database.GameSession, eventType database.NotificationType) {
	active, err := m.db.ListActiveInvitationsBySession(ctx, session.ID)
	if err != nil {
		m.logger.Error("Failed to list invitations for fan-out", "session_id", session.ID, "error", err)
		return
	}

	data := notify.TemplateData{
		MatchType: rsvp.MatchType(session),
		Date:      session.StartTime.Format("Mon, Jan 2"),
		Time:      session.StartTime.Format("3:04 PM"),
		Link:      fmt.Sprintf("/sessions/%s", session.ID),
	}
	if court, err := m.db.GetCourtByID(ctx, session.CourtID); err == nil {
		data.CourtName = court.Name
	}

	for _, invitation := range active {
		if invitation.Status != database.InvitationStatusInvited && invitation.Status != database.InvitationStatusAccepted {
			continue
		}
		if err := m.notifier.Deliver(ctx, notify.Event{
			Type:        eventType,
			RecipientID: invitation.PlayerID,
			SessionID:   session.ID,
			Data:        data,
		}); err != nil {
			m.logger.Error("Notification delivery failed", "recipient_id", invitation.PlayerID, "type", eventType, "error", err)
		}
	}
}
