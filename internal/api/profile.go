package api

import (
	"localdink/internal/database"
	"localdink/internal/middleware"
	"localdink/internal/players"
	"localdink/internal/util"

	"github.com/gofiber/fiber/v2"
)

func playerResponse(player database.Player) fiber.Map {
	return fiber.Map{
		"id":          player.ID.String(),
		"name":        player.Name,
		"email":       player.Email,
		"phone":       player.Phone.UnwrapOr(""),
		"avatar_key":  player.AvatarKey.UnwrapOr(""),
		"preferences": player.Preferences,
		"created_at":  player.CreatedAt,
	}
}

func (h *Handler) Me(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	player, err := h.players.Get(c.Context(), playerID)
	if err != nil {
		return h.fail(c, err)
	}

	response := playerResponse(player)
	// A presigning failure degrades the profile, it does not fail it.
	if url, err := h.players.AvatarURL(c.Context(), player); err == nil {
		response["avatar_url"] = url
	} else {
		h.logger.Warn("Failed to presign avatar URL", "player_id", player.ID, "error", err)
	}
	return c.JSON(response)
}

type updateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" validate:"omitempty,phone"`
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	params := players.UpdateProfileParams{}
	if req.Name != nil {
		params.Name = util.Some(*req.Name)
	}
	if req.Phone != nil {
		// An empty string clears the number.
		if *req.Phone == "" {
			params.Phone = util.Some(util.None[string]())
		} else {
			params.Phone = util.Some(util.Some(*req.Phone))
		}
	}

	if err := h.players.UpdateProfile(c.Context(), playerID, params); err != nil {
		return h.fail(c, err)
	}
	return h.Me(c)
}

type preferencesRequest struct {
	Channels struct {
		InApp bool `json:"in_app"`
		SMS   bool `json:"sms"`
	} `json:"channels"`
	Types      map[database.NotificationType]bool `json:"types"`
	QuietHours *struct {
		Start string `json:"start" validate:"required,clock"`
		End   string `json:"end" validate:"required,clock"`
	} `json:"quiet_hours"`
}

func (h *Handler) UpdatePreferences(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req preferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	prefs := database.Preferences{
		Channels: database.ChannelPreferences{
			InApp: req.Channels.InApp,
			SMS:   req.Channels.SMS,
		},
		Types: req.Types,
	}
	if req.QuietHours != nil {
		prefs.QuietHours = &database.QuietHours{
			Start: req.QuietHours.Start,
			End:   req.QuietHours.End,
		}
	}

	if err := h.players.UpdatePreferences(c.Context(), playerID, prefs); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(prefs)
}

func (h *Handler) UploadAvatar(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing avatar file"})
	}
	if fileHeader.Size > 5*1024*1024 {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "Avatar must be under 5MB"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.fail(c, err)
	}
	defer file.Close()

	key, err := h.players.UploadAvatar(c.Context(), playerID, fileHeader.Filename, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"avatar_key": key})
}

func (h *Handler) DeleteAccount(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.players.Delete(c.Context(), playerID); err != nil {
		return h.fail(c, err)
	}

	sess, err := h.store.Get(c)
	if err == nil {
		_ = sess.Destroy()
	}

	return c.JSON(fiber.Map{"status": "deleted"})
}
