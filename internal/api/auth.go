package api

import (
	"strings"

	"localdink/internal/players"
	"localdink/internal/util"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_strength"`
	Phone    string `json:"phone" validate:"phone"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.limiter.CheckRegister(c.Context(), req.Email); err != nil {
		return h.fail(c, err)
	}

	phone := util.None[string]()
	if req.Phone != "" {
		phone = util.Some(req.Phone)
	}

	player, err := h.players.Register(c.Context(), players.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    phone,
	})
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.startSession(c, player.ID.String()); err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(playerResponse(player))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.limiter.CheckLogin(c.Context(), req.Email); err != nil {
		return h.fail(c, err)
	}

	player, err := h.players.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.limiter.ResetAttempts(c.Context(), req.Email, "login"); err != nil {
		h.logger.Warn("Failed to reset login attempts", "error", err)
	}

	if err := h.startSession(c, player.ID.String()); err != nil {
		return h.fail(c, err)
	}

	h.logger.InfoContext(c.Context(), "Player logged in", "player_id", player.ID, "ip", c.IP())
	return c.JSON(playerResponse(player))
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := sess.Destroy(); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "logged out"})
}

func (h *Handler) startSession(c *fiber.Ctx, playerID string) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	// Rotate the session id on privilege change.
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set("player_id", playerID)
	return sess.Save()
}
