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

type Player struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Phone        util.Optional[string]
	AvatarKey    util.Optional[string]
	Preferences  Preferences
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreatePlayerParams struct {
	Name         string
	Email        string
	PasswordHash string
	Phone        util.Optional[string]
	Preferences  Preferences
}

func (db *Database) CreatePlayer(ctx context.Context, params CreatePlayerParams) (Player, error) {
	player := Player{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Phone:        params.Phone,
		AvatarKey:    util.None[string](),
		Preferences:  params.Preferences,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_player (id, name, email, password_hash, phone, avatar_key, preferences, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		player.ID, player.Name, player.Email, player.PasswordHash, player.Phone, player.AvatarKey, player.Preferences, player.CreatedAt, player.UpdatedAt); err != nil {
		return player, fmt.Errorf("database: failed to insert player (email=%s): %w", player.Email, err)
	}
	return player, nil
}

func (db *Database) GetPlayerByID(ctx context.Context, id uuid.UUID) (Player, error) {
	return db.GetPlayer(ctx, GetPlayerParams{ID: util.Some(id)})
}

func (db *Database) GetPlayerByEmail(ctx context.Context, email string) (Player, error) {
	return db.GetPlayer(ctx, GetPlayerParams{Email: util.Some(email)})
}

type GetPlayerParams struct {
	ID    util.Optional[uuid.UUID]
	Email util.Optional[string]
}

func (db *Database) GetPlayer(ctx context.Context, params GetPlayerParams) (Player, error) {
	var player Player

	var query strings.Builder
	query.WriteString(`SELECT id, name, email, password_hash, phone, avatar_key, preferences, created_at, updated_at FROM tbl_player WHERE 1=1`)
	var args []any
	argNum := 1

	if params.ID.IsSet {
		query.WriteString(fmt.Sprintf(" AND id = $%d", argNum))
		args = append(args, params.ID.Val)
		argNum++
	}
	if params.Email.IsSet {
		query.WriteString(fmt.Sprintf(" AND email = $%d", argNum))
		args = append(args, params.Email.Val)
		argNum++
	}

	err := db.Pool.QueryRow(ctx, query.String(), args...).Scan(
		&player.ID, &player.Name, &player.Email, &player.PasswordHash, &player.Phone, &player.AvatarKey, &player.Preferences, &player.CreatedAt, &player.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return player, ErrPlayerNotFound
		}
		return player, fmt.Errorf("database: failed to scan player: %w", err)
	}
	return player, nil
}

type ListPlayersParams struct {
	IDs    util.Optional[[]uuid.UUID]
	Limit  util.Optional[int]
	Offset util.Optional[int]
}

func (db *Database) ListPlayers(ctx context.Context, params ListPlayersParams) ([]Player, error) {
	var players []Player

	var query strings.Builder
	query.WriteString(`SELECT id, name, email, password_hash, phone, avatar_key, preferences, created_at, updated_at FROM tbl_player WHERE 1=1`)
	var args []any
	argNum := 1

	if params.IDs.IsSet {
		query.WriteString(fmt.Sprintf(" AND id = ANY($%d)", argNum))
		args = append(args, params.IDs.Val)
		argNum++
	}

	query.WriteString(" ORDER BY name ASC")

	if params.Limit.IsSet {
		query.WriteString(fmt.Sprintf(" LIMIT $%d", argNum))
		args = append(args, params.Limit.Val)
		argNum++
	}
	if params.Offset.IsSet {
		query.WriteString(fmt.Sprintf(" OFFSET $%d", argNum))
		args = append(args, params.Offset.Val)
		argNum++
	}

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var player Player
		if err := rows.Scan(&player.ID, &player.Name, &player.Email, &player.PasswordHash, &player.Phone, &player.AvatarKey, &player.Preferences, &player.CreatedAt, &player.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan player: %w", err)
		}
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate players: %w", err)
	}

	return players, nil
}

type UpdatePlayerParams struct {
	Name        util.Optional[string]
	Phone       util.Optional[util.Optional[string]]
	AvatarKey   util.Optional[string]
	Preferences util.Optional[Preferences]
}

func (db *Database) UpdatePlayerByID(ctx context.Context, id uuid.UUID, params UpdatePlayerParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_player SET `)
	var args []any
	argNum := 1

	if params.Name.IsSet {
		query.WriteString(fmt.Sprintf("name = $%d, ", argNum))
		args = append(args, params.Name.Val)
		argNum++
	}
	if params.Phone.IsSet {
		query.WriteString(fmt.Sprintf("phone = $%d, ", argNum))
		args = append(args, params.Phone.Val)
		argNum++
	}
	if params.AvatarKey.IsSet {
		query.WriteString(fmt.Sprintf("avatar_key = $%d, ", argNum))
		args = append(args, params.AvatarKey.Val)
		argNum++
	}
	if params.Preferences.IsSet {
		query.WriteString(fmt.Sprintf("preferences = $%d, ", argNum))
		args = append(args, params.Preferences.Val)
		argNum++
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update player (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// DeletePlayerByID removes the player row. Group memberships are removed
// first by the caller; see players.Manager.Delete.
func (db *Database) DeletePlayerByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_player WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete player (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}
