package rsvp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"localdink/internal/database"
	"localdink/internal/notify"
	"localdink/internal/util"

	"github.com/google/uuid"
)

var (
	ErrAlreadyInvited   = errors.New("player already has a pending invitation")
	ErrAlreadyAccepted  = errors.New("player already accepted this session")
	ErrNotInvitee       = errors.New("invitation belongs to another player")
	ErrSessionCancelled = errors.New("session is cancelled")
	ErrSessionConcluded = errors.New("session start time has passed")
	ErrDeadlineInPast   = errors.New("response deadline is in the past")
	ErrOrganizerInvitee = errors.New("organizer cannot be invited to their own session")
)

// DefaultResponseWindow is applied when the organizer does not set an
// explicit deadline.
const DefaultResponseWindow = 24 * time.Hour

// Store is the slice of the database the RSVP manager needs.
type Store interface {
	GetPlayerByID(ctx context.Context, id uuid.UUID) (database.Player, error)
	GetCourtByID(ctx context.Context, id uuid.UUID) (database.Court, error)
	GetGameSessionByID(ctx context.Context, id uuid.UUID) (database.GameSession, error)
	CreateInvitation(ctx context.Context, params database.CreateInvitationParams) (database.Invitation, error)
	GetInvitationByID(ctx context.Context, id uuid.UUID) (database.Invitation, error)
	GetActiveInvitation(ctx context.Context, sessionID, playerID uuid.UUID) (database.Invitation, error)
	ListActiveInvitationsBySession(ctx context.Context, sessionID uuid.UUID) ([]database.Invitation, error)
	ListOverdueInvitations(ctx context.Context, now time.Time) ([]database.Invitation, error)
	TransitionInvitation(ctx context.Context, id uuid.UUID, to database.InvitationStatus, respondedAt util.Optional[time.Time]) (database.Invitation, error)
}

// Notifier routes a notification event. Implemented by notify.Router.
type Notifier interface {
	Deliver(ctx context.Context, event notify.Event) error
}

// Manager drives the invitation lifecycle. Every instance moves exactly once
// from invited to accepted, declined or expired; a player is brought back in
// by issuing a fresh instance, never by reopening a concluded one.
type Manager struct {
	logger   *slog.Logger
	store    Store
	notifier Notifier
	now      func() time.Time
}

func NewManager(logger *slog.Logger, store Store, notifier Notifier) *Manager {
	return &Manager{logger: logger, store: store, notifier: notifier, now: time.Now}
}

// Invite issues a fresh invitation instance for the pair. A pending or
// accepted active instance blocks the re-invite; a declined or expired one
// does not.
func (m *Manager) Invite(ctx context.Context, sessionID, playerID uuid.UUID, deadline util.Optional[time.Time]) (database.Invitation, error) {
	session, err := m.store.GetGameSessionByID(ctx, sessionID)
	if err != nil {
		return database.Invitation{}, err
	}
	if session.CancelledAt.IsSet {
		return database.Invitation{}, ErrSessionCancelled
	}
	if !session.StartTime.After(m.now()) {
		return database.Invitation{}, ErrSessionConcluded
	}
	if session.OrganizerID == playerID {
		return database.Invitation{}, ErrOrganizerInvitee
	}

	if _, err := m.store.GetPlayerByID(ctx, playerID); err != nil {
		return database.Invitation{}, err
	}

	active, err := m.store.GetActiveInvitation(ctx, sessionID, playerID)
	if err != nil && !errors.Is(err, database.ErrInvitationNotFound) {
		return database.Invitation{}, err
	}
	if err == nil {
		switch active.Status {
		case database.InvitationStatusInvited:
			return database.Invitation{}, ErrAlreadyInvited
		case database.InvitationStatusAccepted:
			return database.Invitation{}, ErrAlreadyAccepted
		}
	}

	dl := m.now().Add(DefaultResponseWindow)
	if deadline.IsSet {
		dl = deadline.Val
	}
	if !dl.After(m.now()) {
		return database.Invitation{}, ErrDeadlineInPast
	}
	if dl.After(session.StartTime) {
		dl = session.StartTime
	}

	invitation, err := m.store.CreateInvitation(ctx, database.CreateInvitationParams{
		SessionID: sessionID,
		PlayerID:  playerID,
		Deadline:  dl,
	})
	if err != nil {
		return database.Invitation{}, err
	}

	m.notify(ctx, notify.Event{
		Type:        database.NotificationTypeInviteSent,
		RecipientID: playerID,
		SessionID:   sessionID,
		Data:        m.sessionData(ctx, session, session.OrganizerID, uuid.Nil),
		ExpiresAt:   util.Some(dl),
	})

	return invitation, nil
}

// Accept records a yes from the invited player, tells the organizer, and
// sends the player a confirmation.
func (m *Manager) Accept(ctx context.Context, invitationID, playerID uuid.UUID) (database.Invitation, error) {
	return m.respond(ctx, invitationID, playerID, database.InvitationStatusAccepted)
}

// Decline records a no from the invited player, tells the organizer, and
// lets the remaining pending invitees know a spot opened up.
func (m *Manager) Decline(ctx context.Context, invitationID, playerID uuid.UUID) (database.Invitation, error) {
	invitation, err := m.respond(ctx, invitationID, playerID, database.InvitationStatusDeclined)
	if err != nil {
		return invitation, err
	}

	m.announceOpenSpot(ctx, invitation.SessionID, playerID)
	return invitation, nil
}

func (m *Manager) respond(ctx context.Context, invitationID, playerID uuid.UUID, to database.InvitationStatus) (database.Invitation, error) {
	invitation, err := m.store.GetInvitationByID(ctx, invitationID)
	if err != nil {
		return database.Invitation{}, err
	}
	if invitation.PlayerID != playerID {
		return database.Invitation{}, ErrNotInvitee
	}
	if invitation.Status.Terminal() {
		return database.Invitation{}, database.ErrInvitationConcluded
	}

	session, err := m.store.GetGameSessionByID(ctx, invitation.SessionID)
	if err != nil {
		return database.Invitation{}, err
	}
	if session.CancelledAt.IsSet {
		return database.Invitation{}, ErrSessionCancelled
	}

	invitation, err = m.store.TransitionInvitation(ctx, invitationID, to, util.Some(m.now().UTC()))
	if err != nil {
		return database.Invitation{}, err
	}

	eventType := database.NotificationTypeInviteAccepted
	if to == database.InvitationStatusDeclined {
		eventType = database.NotificationTypeInviteDeclined
	}
	data := m.sessionData(ctx, session, uuid.Nil, playerID)
	m.notify(ctx, notify.Event{
		Type:        eventType,
		RecipientID: session.OrganizerID,
		SessionID:   session.ID,
		Data:        data,
	})

	if to == database.InvitationStatusAccepted {
		m.notify(ctx, notify.Event{
			Type:         database.NotificationTypeInviteAccepted,
			RecipientID:  playerID,
			SessionID:    session.ID,
			Data:         data,
			Confirmation: true,
		})
	}

	return invitation, nil
}

// ExpireOverdue concludes every pending invitation whose deadline has
// passed and notifies organizer and invitee. Returns the number expired. Losing the
// race to a concurrent response is not an error; the instance simply already
// concluded.
func (m *Manager) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := m.store.ListOverdueInvitations(ctx, now)
	if err != nil {
		return 0, err
	}

	var expired int
	for _, invitation := range overdue {
		if _, err := m.store.TransitionInvitation(ctx, invitation.ID, database.InvitationStatusExpired, util.None[time.Time]()); err != nil {
			if errors.Is(err, database.ErrInvitationConcluded) || errors.Is(err, database.ErrInvitationNotFound) {
				continue
			}
			return expired, fmt.Errorf("rsvp: failed to expire invitation %s: %w", invitation.ID, err)
		}
		expired++

		session, err := m.store.GetGameSessionByID(ctx, invitation.SessionID)
		if err != nil {
			m.logger.Error("Failed to load session for expiry notice", "session_id", invitation.SessionID, "error", err)
			continue
		}
		data := m.sessionData(ctx, session, uuid.Nil, invitation.PlayerID)
		m.notify(ctx, notify.Event{
			Type:        database.NotificationTypeInviteExpired,
			RecipientID: session.OrganizerID,
			SessionID:   session.ID,
			Data:        data,
		})
		m.notify(ctx, notify.Event{
			Type:         database.NotificationTypeInviteExpired,
			RecipientID:  invitation.PlayerID,
			SessionID:    session.ID,
			Data:         data,
			Confirmation: true,
		})
	}

	return expired, nil
}

// ConfirmedCount derives the confirmed head count from the active invitation
// set: invitees count only while accepted. The organizer is not an invitee
// and is not included. The value is never stored.
func ConfirmedCount(active []database.Invitation) int {
	var count int
	for _, invitation := range active {
		if invitation.Status == database.InvitationStatusAccepted {
			count++
		}
	}
	return count
}

func (m *Manager) announceOpenSpot(ctx context.Context, sessionID, declinerID uuid.UUID) {
	session, err := m.store.GetGameSessionByID(ctx, sessionID)
	if err != nil {
		m.logger.Error("Failed to load session for open spot notice", "session_id", sessionID, "error", err)
		return
	}

	active, err := m.store.ListActiveInvitationsBySession(ctx, sessionID)
	if err != nil {
		m.logger.Error("Failed to list invitations for open spot notice", "session_id", sessionID, "error", err)
		return
	}

	data := m.sessionData(ctx, session, uuid.Nil, uuid.Nil)
	for _, invitation := range active {
		if invitation.Status != database.InvitationStatusInvited || invitation.PlayerID == declinerID {
			continue
		}
		m.notify(ctx, notify.Event{
			Type:        database.NotificationTypeSpotAvailable,
			RecipientID: invitation.PlayerID,
			SessionID:   sessionID,
			Data:        data,
		})
	}
}

func (m *Manager) notify(ctx context.Context, event notify.Event) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Deliver(ctx, event); err != nil {
		m.logger.Error("Notification delivery failed", "recipient_id", event.RecipientID, "type", event.Type, "error", err)
	}
}

// sessionData resolves the display values for notification copy. Lookups
// are best effort; a missing name leaves its field blank rather than
// failing the operation.
func (m *Manager) sessionData(ctx context.Context, session database.GameSession, inviterID, playerID uuid.UUID) notify.TemplateData {
	data := notify.TemplateData{
		MatchType: MatchType(session),
		Date:      session.StartTime.Format("Mon, Jan 2"),
		Time:      session.StartTime.Format("3:04 PM"),
		Link:      fmt.Sprintf("/sessions/%s", session.ID),
	}

	if court, err := m.store.GetCourtByID(ctx, session.CourtID); err == nil {
		data.CourtName = court.Name
	}
	if inviterID != uuid.Nil {
		if inviter, err := m.store.GetPlayerByID(ctx, inviterID); err == nil {
			data.InviterName = inviter.Name
		}
	}
	if playerID != uuid.Nil {
		if player, err := m.store.GetPlayerByID(ctx, playerID); err == nil {
			data.PlayerName = player.Name
		}
	}

	return data
}

// MatchType names the session format for display.
func MatchType(session database.GameSession) string {
	if session.Doubles {
		return "doubles"
	}
	return "singles"
}
