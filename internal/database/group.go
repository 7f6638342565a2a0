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

type Group struct {
	ID          uuid.UUID
	Name        string
	Description string
	AvatarKey   util.Optional[string]
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type GroupMember struct {
	GroupID   uuid.UUID
	PlayerID  uuid.UUID
	CreatedAt time.Time
}

type CreateGroupParams struct {
	Name        string
	Description string
}

func (db *Database) CreateGroup(ctx context.Context, params CreateGroupParams) (Group, error) {
	group := Group{
		ID:          uuid.New(),
		Name:        params.Name,
		Description: params.Description,
		AvatarKey:   util.None[string](),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_group (id, name, description, avatar_key, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		group.ID, group.Name, group.Description, group.AvatarKey, group.CreatedAt, group.UpdatedAt); err != nil {
		return group, fmt.Errorf("database: failed to insert group (name=%s): %w", group.Name, err)
	}
	return group, nil
}

func (db *Database) GetGroupByID(ctx context.Context, id uuid.UUID) (Group, error) {
	var group Group

	err := db.Pool.QueryRow(ctx, `SELECT id, name, description, avatar_key, created_at, updated_at FROM tbl_group WHERE id = $1`, id).Scan(
		&group.ID, &group.Name, &group.Description, &group.AvatarKey, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return group, ErrGroupNotFound
		}
		return group, fmt.Errorf("database: failed to scan group: %w", err)
	}
	return group, nil
}

type ListGroupsParams struct {
	MemberID util.Optional[uuid.UUID]
}

func (db *Database) ListGroups(ctx context.Context, params ListGroupsParams) ([]Group, error) {
	var groups []Group

	var query strings.Builder
	query.WriteString(`SELECT g.id, g.name, g.description, g.avatar_key, g.created_at, g.updated_at FROM tbl_group g`)
	var args []any
	argNum := 1

	if params.MemberID.IsSet {
		query.WriteString(fmt.Sprintf(" JOIN tbl_group_member gm ON gm.group_id = g.id AND gm.player_id = $%d", argNum))
		args = append(args, params.MemberID.Val)
		argNum++
	}

	query.WriteString(" ORDER BY g.name ASC")

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var group Group
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.AvatarKey, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate groups: %w", err)
	}

	return groups, nil
}

type UpdateGroupParams struct {
	Name        util.Optional[string]
	Description util.Optional[string]
	AvatarKey   util.Optional[string]
}

func (db *Database) UpdateGroupByID(ctx context.Context, id uuid.UUID, params UpdateGroupParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_group SET `)
	var args []any
	argNum := 1

	if params.Name.IsSet {
		query.WriteString(fmt.Sprintf("name = $%d, ", argNum))
		args = append(args, params.Name.Val)
		argNum++
	}
	if params.Description.IsSet {
		query.WriteString(fmt.Sprintf("description = $%d, ", argNum))
		args = append(args, params.Description.Val)
		argNum++
	}
	if params.AvatarKey.IsSet {
		query.WriteString(fmt.Sprintf("avatar_key = $%d, ", argNum))
		args = append(args, params.AvatarKey.Val)
		argNum++
	}

	query.WriteString(fmt.Sprintf("updated_at = $%d WHERE id = $%d", argNum, argNum+1))
	args = append(args, time.Now().UTC(), id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update group (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (db *Database) DeleteGroupByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_group WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete group (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (db *Database) ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]Player, error) {
	var players []Player

	rows, err := db.Pool.Query(ctx, `SELECT p.id, p.name, p.email, p.password_hash, p.phone, p.avatar_key, p.preferences, p.created_at, p.updated_at
		FROM tbl_player p
		JOIN tbl_group_member gm ON gm.player_id = p.id
		WHERE gm.group_id = $1
		ORDER BY p.name ASC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var player Player
		if err := rows.Scan(&player.ID, &player.Name, &player.Email, &player.PasswordHash, &player.Phone, &player.AvatarKey, &player.Preferences, &player.CreatedAt, &player.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan group member: %w", err)
		}
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate group members: %w", err)
	}

	return players, nil
}

// ReplaceGroupMembers swaps the full membership set in one transaction so
// concurrent readers never observe a partially edited roster.
func (db *Database) ReplaceGroupMembers(ctx context.Context, groupID uuid.UUID, playerIDs []uuid.UUID) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("database: failed to begin membership transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tbl_group_member WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("database: failed to clear group members (group_id=%s): %w", groupID, err)
	}

	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for _, playerID := range playerIDs {
		batch.Queue(`INSERT INTO tbl_group_member (group_id, player_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, groupID, playerID, now)
	}

	results := tx.SendBatch(ctx, batch)
	for range playerIDs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("database: failed to insert group member (group_id=%s): %w", groupID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("database: failed to close membership batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("database: failed to commit membership transaction: %w", err)
	}
	return nil
}

// DeleteGroupMembershipsByPlayer removes a player from every group. Used
// before deleting the player row.
func (db *Database) DeleteGroupMembershipsByPlayer(ctx context.Context, playerID uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM tbl_group_member WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("database: failed to delete memberships (player_id=%s): %w", playerID, err)
	}
	return nil
}
