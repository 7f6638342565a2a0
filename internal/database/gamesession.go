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

type GameSession struct {
	ID          uuid.UUID
	CourtID     uuid.UUID
	OrganizerID uuid.UUID
	StartTime   time.Time
	Doubles     bool
	CancelledAt util.Optional[time.Time]
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RequiredPlayers is the head count a full match needs, organizer included.
func (s GameSession) RequiredPlayers() int {
	if s.Doubles {
		return 4
	}
	return 2
}

type CreateGameSessionParams struct {
	CourtID     uuid.UUID
	OrganizerID uuid.UUID
	StartTime   time.Time
	Doubles     bool
}

func (db *Database) CreateGameSession(ctx context.Context, params CreateGameSessionParams) (GameSession, error) {
	session := GameSession{
		ID:          uuid.New(),
		CourtID:     params.CourtID,
		OrganizerID: params.OrganizerID,
		StartTime:   params.StartTime,
		Doubles:     params.Doubles,
		CancelledAt: util.None[time.Time](),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_game_session (id, court_id, organizer_id, start_time, doubles, cancelled_at, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID, session.CourtID, session.OrganizerID, session.StartTime, session.Doubles, session.CancelledAt, session.CreatedAt, session.UpdatedAt); err != nil {
		return session, fmt.Errorf("database: failed to insert game session: %w", err)
	}
	return session, nil
}

func (db *Database) GetGameSessionByID(ctx context.Context, id uuid.UUID) (GameSession, error) {
	var session GameSession

	err := db.Pool.QueryRow(ctx, `SELECT id, court_id, organizer_id, start_time, doubles, cancelled_at, created_at, updated_at FROM tbl_game_session WHERE id = $1`, id).Scan(
		&session.ID, &session.CourtID, &session.OrganizerID, &session.StartTime, &session.Doubles, &session.CancelledAt, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session, ErrGameSessionNotFound
		}
		return session, fmt.Errorf("database: failed to scan game session: %w", err)
	}
	return session, nil
}

type ListGameSessionsParams struct {
	OrganizerID   util.Optional[uuid.UUID]
	ParticipantID util.Optional[uuid.UUID]
	From          util.Optional[time.Time]
}

// ListGameSessions returns sessions ordered by start time. ParticipantID
// matches organizer or any invited player.
func (db *Database) ListGameSessions(ctx context.Context, params ListGameSessionsParams) ([]GameSession, error) {
	var sessions []GameSession

	var query strings.Builder
	query.WriteString(`SELECT DISTINCT s.id, s.court_id, s.organizer_id, s.start_time, s.doubles, s.cancelled_at, s.created_at, s.updated_at FROM tbl_game_session s`)
	var args []any
	argNum := 1

	if params.ParticipantID.IsSet {
		query.WriteString(" LEFT JOIN tbl_invitation i ON i.session_id = s.id")
	}
	query.WriteString(" WHERE 1=1")

	if params.OrganizerID.IsSet {
		query.WriteString(fmt.Sprintf(" AND s.organizer_id = $%d", argNum))
		args = append(args, params.OrganizerID.Val)
		argNum++
	}
	if params.ParticipantID.IsSet {
		query.WriteString(fmt.Sprintf(" AND (s.organizer_id = $%d OR i.player_id = $%d)", argNum, argNum))
		args = append(args, params.ParticipantID.Val)
		argNum++
	}
	if params.From.IsSet {
		query.WriteString(fmt.Sprintf(" AND s.start_time >= $%d", argNum))
		args = append(args, params.From.Val)
		argNum++
	}

	query.WriteString(" ORDER BY s.start_time ASC")

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list game sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var session GameSession
		if err := rows.Scan(&session.ID, &session.CourtID, &session.OrganizerID, &session.StartTime, &session.Doubles, &session.CancelledAt, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan game session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate game sessions: %w", err)
	}

	return sessions, nil
}

type UpdateGameSessionParams struct {
	CourtID     util.Optional[uuid.UUID]
	StartTime   util.Optional[time.Time]
	CancelledAt util.Optional[time.Time]
}

func (db *Database) UpdateGameSessionByID(ctx context.Context, id uuid.UUID, params UpdateGameSessionParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_game_session SET `)
	var args []any
	argNum := 1

	if params.CourtID.IsSet {
		query.WriteString(fmt.Sprintf("court_id = $%d, ", argNum))
		args = append(args, params.CourtID.Val)
		argNum++
	}
	if params.StartTime.IsSet {
		query.WriteString(fmt.Sprintf("start_time = $%d, ", argNum))
		args = append(args, params.StartTime.Val)
		argNum++
	}
	if params.CancelledAt.IsSet {
		query.WriteString(fmt.Sprintf("cancelled_at = $%d, ", argNum))
		args = append(args, params.CancelledAt.Val)
		argNum++
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update game session (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGameSessionNotFound
	}
	return nil
}

func (db *Database) DeleteGameSessionByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_game_session WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete game session (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGameSessionNotFound
	}
	return nil
}
