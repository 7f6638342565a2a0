package database

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tbl_player (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		phone TEXT,
		avatar_key TEXT,
		preferences JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tbl_court (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		address TEXT,
		city TEXT,
		state TEXT,
		zip TEXT,
		owner_id UUID NOT NULL REFERENCES tbl_player(id),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tbl_group (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		avatar_key TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tbl_group_member (
		group_id UUID NOT NULL REFERENCES tbl_group(id) ON DELETE CASCADE,
		player_id UUID NOT NULL REFERENCES tbl_player(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (group_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tbl_game_session (
		id UUID PRIMARY KEY,
		court_id UUID NOT NULL,
		organizer_id UUID NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		doubles BOOLEAN NOT NULL DEFAULT TRUE,
		cancelled_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tbl_invitation (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES tbl_game_session(id) ON DELETE CASCADE,
		player_id UUID NOT NULL,
		status TEXT NOT NULL DEFAULT 'invited',
		deadline TIMESTAMPTZ NOT NULL,
		responded_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invitation_pair ON tbl_invitation (session_id, player_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_invitation_overdue ON tbl_invitation (deadline) WHERE status = 'invited'`,
	`CREATE TABLE IF NOT EXISTS tbl_notification (
		id UUID PRIMARY KEY,
		recipient_id UUID NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		payload JSONB NOT NULL DEFAULT '{}',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		channels TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notification_recipient ON tbl_notification (recipient_id, created_at DESC)`,
}

// Migrate applies the embedded schema. Statements are idempotent so startup
// can run this unconditionally; cmd/migrate drives versioned migrations for
// operational changes.
func (db *Database) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("database: migrate failed: %w", err)
		}
	}
	return nil
}
