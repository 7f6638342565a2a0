package api

import (
	"localdink/internal/database"
	"localdink/internal/groups"
	"localdink/internal/middleware"
	"localdink/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func groupResponse(group database.Group) fiber.Map {
	return fiber.Map{
		"id":          group.ID.String(),
		"name":        group.Name,
		"description": group.Description,
		"created_at":  group.CreatedAt,
	}
}

type createGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	group, err := h.groups.Create(c.Context(), playerID, req.Name, req.Description)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(groupResponse(group))
}

func (h *Handler) ListGroups(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	list, err := h.groups.ListForPlayer(c.Context(), playerID)
	if err != nil {
		return h.fail(c, err)
	}

	out := make([]fiber.Map, 0, len(list))
	for _, group := range list {
		out = append(out, groupResponse(group))
	}
	return c.JSON(fiber.Map{"groups": out})
}

func (h *Handler) GetGroup(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	group, err := h.groups.Get(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(groupResponse(group))
}

type updateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (h *Handler) UpdateGroup(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	var req updateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	params := groups.UpdateParams{}
	if req.Name != nil {
		params.Name = util.Some(*req.Name)
	}
	if req.Description != nil {
		params.Description = util.Some(*req.Description)
	}

	if err := h.groups.Update(c.Context(), id, playerID, params); err != nil {
		return h.fail(c, err)
	}
	return h.GetGroup(c)
}

func (h *Handler) DeleteGroup(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	if err := h.groups.Delete(c.Context(), id, playerID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

func (h *Handler) GroupMembers(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	members, err := h.groups.Members(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}

	out := make([]fiber.Map, 0, len(members))
	for _, member := range members {
		out = append(out, fiber.Map{
			"id":         member.ID.String(),
			"name":       member.Name,
			"avatar_key": member.AvatarKey.UnwrapOr(""),
		})
	}
	return c.JSON(fiber.Map{"members": out})
}

type setMembersRequest struct {
	PlayerIDs []string `json:"player_ids" validate:"required,max=100,dive,uuid"`
}

// SetGroupMembers replaces the entire roster in one call; partial edits go
// through the same endpoint with the full desired list.
func (h *Handler) SetGroupMembers(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	var req setMembersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ids := make([]uuid.UUID, 0, len(req.PlayerIDs))
	for _, raw := range req.PlayerIDs {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid player id: " + raw})
		}
		ids = append(ids, parsed)
	}

	if err := h.groups.SetMembers(c.Context(), id, playerID, ids); err != nil {
		return h.fail(c, err)
	}
	return h.GroupMembers(c)
}
