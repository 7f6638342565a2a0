package api

import (
	"time"

	"localdink/internal/middleware"
	"localdink/internal/sessions"
	"localdink/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type createSessionRequest struct {
	CourtID    string     `json:"court_id" validate:"required,uuid"`
	StartTime  time.Time  `json:"start_time" validate:"required"`
	Doubles    bool       `json:"doubles"`
	InviteeIDs []string   `json:"invitee_ids" validate:"max=20,dive,uuid"`
	GroupID    string     `json:"group_id" validate:"omitempty,uuid"`
	Deadline   *time.Time `json:"deadline"`
}

func (h *Handler) CreateSession(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	courtID, err := uuid.Parse(req.CourtID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid court id"})
	}

	invitees := make([]uuid.UUID, 0, len(req.InviteeIDs))
	for _, raw := range req.InviteeIDs {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid invitee id: " + raw})
		}
		invitees = append(invitees, parsed)
	}

	params := sessions.CreateParams{
		CourtID:    courtID,
		StartTime:  req.StartTime,
		Doubles:    req.Doubles,
		InviteeIDs: invitees,
	}
	if req.GroupID != "" {
		groupID, err := uuid.Parse(req.GroupID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
		}
		params.GroupID = util.Some(groupID)
	}
	if req.Deadline != nil {
		params.Deadline = util.Some(*req.Deadline)
	}

	view, err := h.sessions.Create(c.Context(), playerID, params)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *Handler) ListSessions(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	views, err := h.sessions.ListForPlayer(c.Context(), playerID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"sessions": views})
}

func (h *Handler) GetSession(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	view, err := h.sessions.Detail(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

type rescheduleRequest struct {
	StartTime *time.Time `json:"start_time"`
	CourtID   *string    `json:"court_id" validate:"omitempty,uuid"`
}

func (h *Handler) RescheduleSession(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req rescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	params := sessions.RescheduleParams{}
	if req.StartTime != nil {
		params.StartTime = util.Some(*req.StartTime)
	}
	if req.CourtID != nil {
		courtID, err := uuid.Parse(*req.CourtID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid court id"})
		}
		params.CourtID = util.Some(courtID)
	}

	if err := h.sessions.Reschedule(c.Context(), id, playerID, params); err != nil {
		return h.fail(c, err)
	}
	return h.GetSession(c)
}

func (h *Handler) CancelSession(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	if err := h.sessions.Cancel(c.Context(), id, playerID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "cancelled"})
}

type inviteRequest struct {
	PlayerID string     `json:"player_id" validate:"required,uuid"`
	Deadline *time.Time `json:"deadline"`
}

func (h *Handler) InviteToSession(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req inviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	inviteeID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid player id"})
	}

	deadline := util.None[time.Time]()
	if req.Deadline != nil {
		deadline = util.Some(*req.Deadline)
	}

	invitation, err := h.sessions.Invite(c.Context(), id, playerID, inviteeID, deadline)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         invitation.ID.String(),
		"session_id": invitation.SessionID.String(),
		"player_id":  invitation.PlayerID.String(),
		"status":     invitation.Status,
		"deadline":   invitation.Deadline,
	})
}

func (h *Handler) AcceptInvitation(c *fiber.Ctx) error {
	return h.respondToInvitation(c, true)
}

func (h *Handler) DeclineInvitation(c *fiber.Ctx) error {
	return h.respondToInvitation(c, false)
}

func (h *Handler) respondToInvitation(c *fiber.Ctx, accept bool) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid invitation id"})
	}

	respond := h.rsvp.Decline
	if accept {
		respond = h.rsvp.Accept
	}

	invitation, err := respond(c.Context(), id, playerID)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"id":           invitation.ID.String(),
		"session_id":   invitation.SessionID.String(),
		"status":       invitation.Status,
		"responded_at": invitation.RespondedAt.UnwrapOr(time.Time{}),
	})
}
