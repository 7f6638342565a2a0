package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"localdink/internal/database"
	"localdink/internal/util"

	"github.com/google/uuid"
)

const (
	ChannelInApp = "in_app"
	ChannelSMS   = "sms"
)

// Store is the slice of the database the router needs.
type Store interface {
	GetPlayerByID(ctx context.Context, id uuid.UUID) (database.Player, error)
	CreateNotification(ctx context.Context, params database.CreateNotificationParams) (database.Notification, error)
}

// SMSSender delivers a single text message. Implemented by sms.Client.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
	Configured() bool
}

// Event is a classified notification event ready for routing. Confirmation
// selects the copy addressed to the player whose own action triggered the
// event rather than the copy addressed to the organizer.
type Event struct {
	Type         database.NotificationType
	RecipientID  uuid.UUID
	SessionID    uuid.UUID
	Data         TemplateData
	ExpiresAt    util.Optional[time.Time]
	Confirmation bool
}

// Router filters events against recipient preferences and fans them out to
// the enabled channels. The in-app document write is the primary effect; SMS
// is best-effort and its failure never propagates.
type Router struct {
	logger *slog.Logger
	store  Store
	sms    SMSSender
	now    func() time.Time
}

func NewRouter(logger *slog.Logger, store Store, sms SMSSender) Router {
	return Router{logger: logger, store: store, sms: sms, now: time.Now}
}

// Deliver routes one event. A disabled type preference suppresses the event
// entirely; no document is written. The returned error covers only the
// in-app write, which callers treat as non-critical.
func (r *Router) Deliver(ctx context.Context, event Event) error {
	recipient, err := r.store.GetPlayerByID(ctx, event.RecipientID)
	if err != nil {
		return fmt.Errorf("notify: failed to load recipient %s: %w", event.RecipientID, err)
	}

	prefs := recipient.Preferences
	if !prefs.TypeEnabled(event.Type) {
		r.logger.Debug("Notification suppressed by type preference", "recipient_id", event.RecipientID, "type", event.Type)
		return nil
	}

	var channels []string

	if r.trySMS(ctx, recipient, event) {
		channels = append(channels, ChannelSMS)
	}

	if !prefs.Channels.InApp {
		return nil
	}
	channels = append(channels, ChannelInApp)

	title, body := RenderInApp(event.Type, event.Data, event.Confirmation)

	payload, err := json.Marshal(map[string]string{"session_id": event.SessionID.String()})
	if err != nil {
		payload = json.RawMessage(`{}`)
	}

	if _, err := r.store.CreateNotification(ctx, database.CreateNotificationParams{
		RecipientID: event.RecipientID,
		Type:        event.Type,
		Title:       title,
		Body:        body,
		Payload:     payload,
		Channels:    channels,
		ExpiresAt:   event.ExpiresAt,
	}); err != nil {
		return fmt.Errorf("notify: failed to write notification (recipient_id=%s, type=%s): %w", event.RecipientID, event.Type, err)
	}

	return nil
}

// trySMS attempts SMS delivery when the channel is enabled, a phone number
// resolves to E.164, and the recipient is outside quiet hours. Transport
// failures are logged and swallowed.
func (r *Router) trySMS(ctx context.Context, recipient database.Player, event Event) bool {
	if r.sms == nil || !r.sms.Configured() {
		return false
	}
	if !recipient.Preferences.Channels.SMS {
		return false
	}
	if !recipient.Phone.IsSet {
		return false
	}

	to, ok := NormalizePhone(recipient.Phone.Val)
	if !ok {
		r.logger.Debug("SMS skipped, unresolvable phone number", "recipient_id", recipient.ID)
		return false
	}

	if withinQuietHours(recipient.Preferences.QuietHours, r.now()) {
		r.logger.Debug("SMS skipped, recipient in quiet hours", "recipient_id", recipient.ID)
		return false
	}

	body := RenderSMS(event.Type, event.Data, event.Confirmation)
	if err := r.sms.Send(ctx, to, body); err != nil {
		r.logger.Error("SMS delivery failed", "recipient_id", recipient.ID, "type", event.Type, "error", err)
		return false
	}

	return true
}
