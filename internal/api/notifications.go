package api

import (
	"localdink/internal/database"
	"localdink/internal/middleware"
	"localdink/internal/util"

	"github.com/gofiber/fiber/v2"
)

// notificationFeedLimit caps the feed; older entries age out via the
// cleanup daemon rather than pagination.
const notificationFeedLimit = 50

func (h *Handler) ListNotifications(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	params := database.ListNotificationsParams{
		RecipientID:      util.Some(playerID),
		Limit:            util.Some(notificationFeedLimit),
		OrderByCreatedAt: util.Some(database.OrderByDESC),
	}
	if c.Query("unread") == "true" {
		params.Read = util.Some(false)
	}

	notifications, err := h.db.ListNotifications(c.Context(), params)
	if err != nil {
		return h.fail(c, err)
	}

	out := make([]fiber.Map, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, fiber.Map{
			"id":         n.ID.String(),
			"type":       n.Type,
			"title":      n.Title,
			"body":       n.Body,
			"payload":    n.Payload,
			"is_read":    n.IsRead,
			"channels":   n.Channels,
			"created_at": n.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"notifications": out})
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification id"})
	}

	if err := h.db.MarkNotificationRead(c.Context(), id, playerID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "read"})
}

func (h *Handler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.db.MarkAllNotificationsRead(c.Context(), playerID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "read"})
}
