package api

import (
	"localdink/internal/courts"
	"localdink/internal/database"
	"localdink/internal/middleware"
	"localdink/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func courtResponse(court database.Court) fiber.Map {
	return fiber.Map{
		"id":       court.ID.String(),
		"name":     court.Name,
		"location": court.Location,
		"address":  court.Address.UnwrapOr(""),
		"city":     court.City.UnwrapOr(""),
		"state":    court.State.UnwrapOr(""),
		"zip":      court.Zip.UnwrapOr(""),
		"owner_id": court.OwnerID.String(),
	}
}

type createCourtRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=200"`
	Location string `json:"location" validate:"required,max=200"`
	Address  string `json:"address" validate:"max=200"`
	City     string `json:"city" validate:"max=100"`
	State    string `json:"state" validate:"max=50"`
	Zip      string `json:"zip" validate:"max=20"`
}

func (h *Handler) CreateCourt(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req createCourtRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	court, err := h.courts.Create(c.Context(), playerID, courts.CreateParams{
		Name:     req.Name,
		Location: req.Location,
		Address:  optionalString(req.Address),
		City:     optionalString(req.City),
		State:    optionalString(req.State),
		Zip:      optionalString(req.Zip),
	})
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(courtResponse(court))
}

// ListCourts returns the directory, or only the caller's own courts with
// ?mine=true.
func (h *Handler) ListCourts(c *fiber.Ctx) error {
	var list []database.Court
	var err error
	if c.Query("mine") == "true" {
		var playerID uuid.UUID
		playerID, err = middleware.PlayerID(c)
		if err != nil {
			return h.fail(c, err)
		}
		list, err = h.courts.ListByOwner(c.Context(), playerID)
	} else {
		list, err = h.courts.List(c.Context())
	}
	if err != nil {
		return h.fail(c, err)
	}

	out := make([]fiber.Map, 0, len(list))
	for _, court := range list {
		out = append(out, courtResponse(court))
	}
	return c.JSON(fiber.Map{"courts": out})
}

func (h *Handler) GetCourt(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid court id"})
	}

	court, err := h.courts.Get(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(courtResponse(court))
}

type updateCourtRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=200"`
	Location *string `json:"location" validate:"omitempty,max=200"`
	Address  *string `json:"address" validate:"omitempty,max=200"`
	City     *string `json:"city" validate:"omitempty,max=100"`
	State    *string `json:"state" validate:"omitempty,max=50"`
	Zip      *string `json:"zip" validate:"omitempty,max=20"`
}

func (h *Handler) UpdateCourt(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid court id"})
	}

	var req updateCourtRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	params := courts.UpdateParams{}
	if req.Name != nil {
		params.Name = util.Some(*req.Name)
	}
	if req.Location != nil {
		params.Location = util.Some(*req.Location)
	}
	if req.Address != nil {
		params.Address = util.Some(*req.Address)
	}
	if req.City != nil {
		params.City = util.Some(*req.City)
	}
	if req.State != nil {
		params.State = util.Some(*req.State)
	}
	if req.Zip != nil {
		params.Zip = util.Some(*req.Zip)
	}

	if err := h.courts.Update(c.Context(), id, playerID, params); err != nil {
		return h.fail(c, err)
	}
	return h.GetCourt(c)
}

func (h *Handler) DeleteCourt(c *fiber.Ctx) error {
	playerID, err := middleware.PlayerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid court id"})
	}

	if err := h.courts.Delete(c.Context(), id, playerID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

func optionalString(s string) util.Optional[string] {
	if s == "" {
		return util.None[string]()
	}
	return util.Some(s)
}
