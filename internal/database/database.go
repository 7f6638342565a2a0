package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderBy int

const (
	OrderByASC OrderBy = iota
	OrderByDESC
)

type Database struct {
	Pool *pgxpool.Pool
}

func NewDatabase() Database {
	return Database{
		Pool: nil,
	}
}

func (db *Database) Connect(ctx context.Context, connString string) error {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("unable to parse database configuration: %w", err)
	}

	db.Pool, err = pgxpool.New(ctx, config.ConnString())
	if err != nil {
		return fmt.Errorf("unable to create database pool: %w", err)
	}

	return nil
}

func (db *Database) Close() {
	db.Pool.Close()
}

func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

var (
	ErrPlayerNotFound       = errors.New("player not found")
	ErrCourtNotFound        = errors.New("court not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrGameSessionNotFound  = errors.New("game session not found")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationConcluded  = errors.New("invitation already concluded")
	ErrNotificationNotFound = errors.New("notification not found")
)

// InvitationStatus is the canonical RSVP lifecycle enum. Display layers derive
// their labels from it; no separate "confirmed" status is ever stored.
type InvitationStatus string

const (
	InvitationStatusInvited  InvitationStatus = "invited"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// Terminal reports whether the status admits no further transitions.
func (s InvitationStatus) Terminal() bool {
	return s == InvitationStatusAccepted || s == InvitationStatusDeclined || s == InvitationStatusExpired
}

type NotificationType string

const (
	NotificationTypeInviteSent       NotificationType = "invite_sent"
	NotificationTypeInviteAccepted   NotificationType = "invite_accepted"
	NotificationTypeInviteDeclined   NotificationType = "invite_declined"
	NotificationTypeInviteExpired    NotificationType = "invite_expired"
	NotificationTypeReminder         NotificationType = "reminder"
	NotificationTypeSessionChanged   NotificationType = "session_changed"
	NotificationTypeSessionCancelled NotificationType = "session_cancelled"
	NotificationTypeSpotAvailable    NotificationType = "spot_available"
)

type QuietHours struct {
	Start string `json:"start"` // HH:MM, local to the recipient
	End   string `json:"end"`
}

type ChannelPreferences struct {
	InApp bool `json:"in_app"`
	SMS   bool `json:"sms"`
}

// Preferences is stored as a jsonb document on the player row. A type missing
// from Types counts as enabled.
type Preferences struct {
	Channels   ChannelPreferences        `json:"channels"`
	Types      map[NotificationType]bool `json:"types,omitempty"`
	QuietHours *QuietHours               `json:"quiet_hours,omitempty"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Channels: ChannelPreferences{InApp: true, SMS: true},
	}
}

// TypeEnabled reports whether notifications of the given type are wanted.
func (p Preferences) TypeEnabled(t NotificationType) bool {
	if p.Types == nil {
		return true
	}
	enabled, ok := p.Types[t]
	if !ok {
		return true
	}
	return enabled
}
