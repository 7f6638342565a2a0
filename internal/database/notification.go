package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"localdink/internal/util"

	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	Type        NotificationType
	Title       string
	Body        string
	Payload     json.RawMessage
	IsRead      bool
	Channels    []string
	CreatedAt   time.Time
	ExpiresAt   util.Optional[time.Time]
}

type CreateNotificationParams struct {
	RecipientID uuid.UUID
	Type        NotificationType
	Title       string
	Body        string
	Payload     json.RawMessage
	Channels    []string
	ExpiresAt   util.Optional[time.Time]
}

func (db *Database) CreateNotification(ctx context.Context, params CreateNotificationParams) (Notification, error) {
	payload := params.Payload
	if payload == nil {
		payload = json.RawMessage(`{}`)
	}
	channels := params.Channels
	if channels == nil {
		channels = []string{}
	}

	notification := Notification{
		ID:          uuid.New(),
		RecipientID: params.RecipientID,
		Type:        params.Type,
		Title:       params.Title,
		Body:        params.Body,
		Payload:     payload,
		IsRead:      false,
		Channels:    channels,
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   params.ExpiresAt,
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_notification (id, recipient_id, type, title, body, payload, is_read, channels, created_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		notification.ID, notification.RecipientID, notification.Type, notification.Title, notification.Body, notification.Payload, notification.IsRead, notification.Channels, notification.CreatedAt, notification.ExpiresAt); err != nil {
		return notification, fmt.Errorf("database: failed to insert notification (recipient_id=%s, type=%s): %w", notification.RecipientID, notification.Type, err)
	}
	return notification, nil
}

type ListNotificationsParams struct {
	RecipientID      util.Optional[uuid.UUID]
	Read             util.Optional[bool]
	Limit            util.Optional[int]
	OrderByCreatedAt util.Optional[OrderBy]
}

func (db *Database) ListNotifications(ctx context.Context, params ListNotificationsParams) ([]Notification, error) {
	var notifications []Notification

	var query strings.Builder
	query.WriteString(`SELECT id, recipient_id, type, title, body, payload, is_read, channels, created_at, expires_at FROM tbl_notification WHERE 1=1`)
	var args []any
	argNum := 1

	if params.RecipientID.IsSet {
		query.WriteString(fmt.Sprintf(" AND recipient_id = $%d", argNum))
		args = append(args, params.RecipientID.Val)
		argNum++
	}
	if params.Read.IsSet {
		query.WriteString(fmt.Sprintf(" AND is_read = $%d", argNum))
		args = append(args, params.Read.Val)
		argNum++
	}

	if params.OrderByCreatedAt.IsSet && params.OrderByCreatedAt.Val == OrderByDESC {
		query.WriteString(" ORDER BY created_at DESC")
	} else {
		query.WriteString(" ORDER BY created_at ASC")
	}

	if params.Limit.IsSet {
		query.WriteString(fmt.Sprintf(" LIMIT $%d", argNum))
		args = append(args, params.Limit.Val)
		argNum++
	}

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list notifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var notification Notification
		if err := rows.Scan(&notification.ID, &notification.RecipientID, &notification.Type, &notification.Title, &notification.Body, &notification.Payload, &notification.IsRead, &notification.Channels, &notification.CreatedAt, &notification.ExpiresAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

func (db *Database) MarkNotificationRead(ctx context.Context, id, recipientID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE tbl_notification SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("database: failed to mark notification read (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (db *Database) MarkAllNotificationsRead(ctx context.Context, recipientID uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `UPDATE tbl_notification SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`, recipientID); err != nil {
		return fmt.Errorf("database: failed to mark notifications read (recipient_id=%s): %w", recipientID, err)
	}
	return nil
}

// DeleteExpiredNotifications removes documents past their expiry. Driven by
// the sweep daemon.
func (db *Database) DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_notification WHERE expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("database: failed to delete expired notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
