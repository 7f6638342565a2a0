package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"localdink/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Invitation is one RSVP instance for a (session, player) pair. Terminal
// instances are never reopened; re-inviting creates a fresh row, so the
// active instance is always the most recently created one per pair.
type Invitation struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	PlayerID    uuid.UUID
	Status      InvitationStatus
	Deadline    time.Time
	RespondedAt util.Optional[time.Time]
	CreatedAt   time.Time
}

type CreateInvitationParams struct {
	SessionID uuid.UUID
	PlayerID  uuid.UUID
	Deadline  time.Time
}

func (db *Database) CreateInvitation(ctx context.Context, params CreateInvitationParams) (Invitation, error) {
	invitation := Invitation{
		ID:          uuid.New(),
		SessionID:   params.SessionID,
		PlayerID:    params.PlayerID,
		Status:      InvitationStatusInvited,
		Deadline:    params.Deadline,
		RespondedAt: util.None[time.Time](),
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_invitation (id, session_id, player_id, status, deadline, responded_at, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		invitation.ID, invitation.SessionID, invitation.PlayerID, invitation.Status, invitation.Deadline, invitation.RespondedAt, invitation.CreatedAt); err != nil {
		return invitation, fmt.Errorf("database: failed to insert invitation (session_id=%s, player_id=%s): %w", invitation.SessionID, invitation.PlayerID, err)
	}
	return invitation, nil
}

func (db *Database) GetInvitationByID(ctx context.Context, id uuid.UUID) (Invitation, error) {
	var invitation Invitation

	err := db.Pool.QueryRow(ctx, `SELECT id, session_id, player_id, status, deadline, responded_at, created_at FROM tbl_invitation WHERE id = $1`, id).Scan(
		&invitation.ID, &invitation.SessionID, &invitation.PlayerID, &invitation.Status, &invitation.Deadline, &invitation.RespondedAt, &invitation.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invitation, ErrInvitationNotFound
		}
		return invitation, fmt.Errorf("database: failed to scan invitation: %w", err)
	}
	return invitation, nil
}

// GetActiveInvitation returns the most recent instance for the pair,
// whatever its status. Historical terminal instances are ignored.
func (db *Database) GetActiveInvitation(ctx context.Context, sessionID, playerID uuid.UUID) (Invitation, error) {
	var invitation Invitation

	err := db.Pool.QueryRow(ctx, `SELECT id, session_id, player_id, status, deadline, responded_at, created_at FROM tbl_invitation
		WHERE session_id = $1 AND player_id = $2
		ORDER BY created_at DESC LIMIT 1`, sessionID, playerID).Scan(
		&invitation.ID, &invitation.SessionID, &invitation.PlayerID, &invitation.Status, &invitation.Deadline, &invitation.RespondedAt, &invitation.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invitation, ErrInvitationNotFound
		}
		return invitation, fmt.Errorf("database: failed to scan invitation: %w", err)
	}
	return invitation, nil
}

// ListActiveInvitationsBySession returns the latest instance per invited
// player for the session.
func (db *Database) ListActiveInvitationsBySession(ctx context.Context, sessionID uuid.UUID) ([]Invitation, error) {
	var invitations []Invitation

	rows, err := db.Pool.Query(ctx, `SELECT DISTINCT ON (player_id) id, session_id, player_id, status, deadline, responded_at, created_at FROM tbl_invitation
		WHERE session_id = $1
		ORDER BY player_id, created_at DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list invitations (session_id=%s): %w", sessionID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var invitation Invitation
		if err := rows.Scan(&invitation.ID, &invitation.SessionID, &invitation.PlayerID, &invitation.Status, &invitation.Deadline, &invitation.RespondedAt, &invitation.CreatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan invitation: %w", err)
		}
		invitations = append(invitations, invitation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate invitations: %w", err)
	}

	return invitations, nil
}

type ListInvitationsParams struct {
	SessionID util.Optional[uuid.UUID]
	PlayerID  util.Optional[uuid.UUID]
	Status    util.Optional[InvitationStatus]
}

func (db *Database) ListInvitations(ctx context.Context, params ListInvitationsParams) ([]Invitation, error) {
	var invitations []Invitation

	var query strings.Builder
	query.WriteString(`SELECT id, session_id, player_id, status, deadline, responded_at, created_at FROM tbl_invitation WHERE 1=1`)
	var args []any
	argNum := 1

	if params.SessionID.IsSet {
		query.WriteString(fmt.Sprintf(" AND session_id = $%d", argNum))
		args = append(args, params.SessionID.Val)
		argNum++
	}
	if params.PlayerID.IsSet {
		query.WriteString(fmt.Sprintf(" AND player_id = $%d", argNum))
		args = append(args, params.PlayerID.Val)
		argNum++
	}
	if params.Status.IsSet {
		query.WriteString(fmt.Sprintf(" AND status = $%d", argNum))
		args = append(args, params.Status.Val)
		argNum++
	}

	query.WriteString(" ORDER BY created_at DESC")

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list invitations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var invitation Invitation
		if err := rows.Scan(&invitation.ID, &invitation.SessionID, &invitation.PlayerID, &invitation.Status, &invitation.Deadline, &invitation.RespondedAt, &invitation.CreatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan invitation: %w", err)
		}
		invitations = append(invitations, invitation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate invitations: %w", err)
	}

	return invitations, nil
}

// ListOverdueInvitations returns open invitations whose deadline has passed.
func (db *Database) ListOverdueInvitations(ctx context.Context, now time.Time) ([]Invitation, error) {
	var invitations []Invitation

	rows, err := db.Pool.Query(ctx, `SELECT id, session_id, player_id, status, deadline, responded_at, created_at FROM tbl_invitation
		WHERE status = $1 AND deadline < $2
		ORDER BY deadline ASC`, InvitationStatusInvited, now)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list overdue invitations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var invitation Invitation
		if err := rows.Scan(&invitation.ID, &invitation.SessionID, &invitation.PlayerID, &invitation.Status, &invitation.Deadline, &invitation.RespondedAt, &invitation.CreatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan invitation: %w", err)
		}
		invitations = append(invitations, invitation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate overdue invitations: %w", err)
	}

	return invitations, nil
}

// TransitionInvitation moves an open invitation to a terminal status and
// returns the updated row. The status guard in the WHERE clause makes
// terminal states one-way even under concurrent responses; losing the race
// reports ErrInvitationConcluded.
func (db *Database) TransitionInvitation(ctx context.Context, id uuid.UUID, to InvitationStatus, respondedAt util.Optional[time.Time]) (Invitation, error) {
	var invitation Invitation
	err := db.Pool.QueryRow(ctx, `UPDATE tbl_invitation SET status = $1, responded_at = $2 WHERE id = $3 AND status = $4
		RETURNING id, session_id, player_id, status, deadline, responded_at, created_at`,
		to, respondedAt, id, InvitationStatusInvited).
		Scan(&invitation.ID, &invitation.SessionID, &invitation.PlayerID, &invitation.Status, &invitation.Deadline, &invitation.RespondedAt, &invitation.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := db.GetInvitationByID(ctx, id); getErr != nil {
			return Invitation{}, getErr
		}
		return Invitation{}, ErrInvitationConcluded
	}
	if err != nil {
		return Invitation{}, fmt.Errorf("database: failed to transition invitation (id=%s): %w", id, err)
	}
	return invitation, nil
}
