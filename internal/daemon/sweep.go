package daemon

import (
	"context"
	"log/slog"
	"time"

	"localdink/internal/database"
	"localdink/internal/rsvp"
)

// SweepTask expires overdue invitations on a fixed cadence so unanswered
// invites conclude even when nobody is looking at the session.
func SweepTask(rsvpManager *rsvp.Manager, logger *slog.Logger, interval time.Duration) Func {
	return func(ctx context.Context, name string) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				expired, err := rsvpManager.ExpireOverdue(ctx, time.Now().UTC())
				if err != nil {
					logger.Error("Invitation sweep failed", "daemon", name, "error", err)
					continue
				}
				if expired > 0 {
					logger.Info("Expired overdue invitations", "daemon", name, "count", expired)
				}
			}
		}
	}
}

// CleanupTask removes notifications past their expiry so the feed table
// stays bounded.
func CleanupTask(db *database.Database, logger *slog.Logger, interval time.Duration) Func {
	return func(ctx context.Context, name string) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				removed, err := db.DeleteExpiredNotifications(ctx, time.Now().UTC())
				if err != nil {
					logger.Error("Notification cleanup failed", "daemon", name, "error", err)
					continue
				}
				if removed > 0 {
					logger.Info("Removed expired notifications", "daemon", name, "count", removed)
				}
			}
		}
	}
}
