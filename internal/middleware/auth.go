package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

var ErrNoPlayer = errors.New("no authenticated player on request")

// AuthenticatedSession guards a route group behind a logged-in session. The
// resolved player id lands in Locals for handlers to pick up via PlayerID.
func AuthenticatedSession(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session error"})
		}

		raw, ok := sess.Get("player_id").(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}

		playerID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}

		c.Locals("player_id", playerID)
		return c.Next()
	}
}

// PlayerID returns the player id stored by AuthenticatedSession.
func PlayerID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals("player_id").(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrNoPlayer
	}
	return id, nil
}
