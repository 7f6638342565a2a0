package api

import (
	"localdink/internal/assistant"
	"localdink/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type chatRequest struct {
	Message string              `json:"message" validate:"required,max=2000"`
	History []assistant.Message `json:"history" validate:"max=50"`
}

// Chat forwards a scheduling question to Robin. The response shape is a
// single confirmation text; session creation itself stays on the sessions
// endpoints.
func (h *Handler) Chat(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.limiter.CheckChat(c.Context(), playerID.String()); err != nil {
		return h.fail(c, err)
	}

	reply := h.robin.Reply(c.Context(), req.Message, req.History)
	return c.JSON(fiber.Map{"confirmationText": reply})
}
