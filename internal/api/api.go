package api

import (
	"errors"
	"log/slog"

	"localdink/internal/assistant"
	"localdink/internal/courts"
	"localdink/internal/database"
	"localdink/internal/groups"
	"localdink/internal/middleware"
	"localdink/internal/players"
	"localdink/internal/ratelimit"
	"localdink/internal/rsvp"
	"localdink/internal/sessions"
	"localdink/internal/validator"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

type Handler struct {
	logger    *slog.Logger
	store     *fibersession.Store
	validator *validator.Validator
	db        *database.Database
	players   *players.Manager
	courts    *courts.Manager
	groups    *groups.Manager
	sessions  *sessions.Manager
	rsvp      *rsvp.Manager
	robin     *assistant.Robin
	limiter   *ratelimit.RateLimiter
}

type HandlerParams struct {
	Logger    *slog.Logger
	Store     *fibersession.Store
	Validator *validator.Validator
	DB        *database.Database
	Players   *players.Manager
	Courts    *courts.Manager
	Groups    *groups.Manager
	Sessions  *sessions.Manager
	RSVP      *rsvp.Manager
	Robin     *assistant.Robin
	Limiter   *ratelimit.RateLimiter
}

func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		logger:    params.Logger,
		store:     params.Store,
		validator: params.Validator,
		db:        params.DB,
		players:   params.Players,
		courts:    params.Courts,
		groups:    params.Groups,
		sessions:  params.Sessions,
		rsvp:      params.RSVP,
		robin:     params.Robin,
		limiter:   params.Limiter,
	}
}

// RegisterRoutes mounts the full JSON API.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)

	api := app.Group("/api")
	api.Post("/register", h.Register)
	api.Post("/login", h.Login)
	api.Post("/logout", h.Logout)

	auth := api.Group("", middleware.AuthenticatedSession(h.store))

	auth.Get("/me", h.Me)
	auth.Patch("/me", h.UpdateProfile)
	auth.Put("/me/preferences", h.UpdatePreferences)
	auth.Post("/me/avatar", h.UploadAvatar)
	auth.Delete("/me", h.DeleteAccount)

	auth.Get("/courts", h.ListCourts)
	auth.Post("/courts", h.CreateCourt)
	auth.Get("/courts/:id", h.GetCourt)
	auth.Patch("/courts/:id", h.UpdateCourt)
	auth.Delete("/courts/:id", h.DeleteCourt)

	auth.Get("/groups", h.ListGroups)
	auth.Post("/groups", h.CreateGroup)
	auth.Get("/groups/:id", h.GetGroup)
	auth.Patch("/groups/:id", h.UpdateGroup)
	auth.Delete("/groups/:id", h.DeleteGroup)
	auth.Get("/groups/:id/members", h.GroupMembers)
	auth.Put("/groups/:id/members", h.SetGroupMembers)

	auth.Get("/sessions", h.ListSessions)
	auth.Post("/sessions", h.CreateSession)
	auth.Get("/sessions/:id", h.GetSession)
	auth.Patch("/sessions/:id", h.RescheduleSession)
	auth.Post("/sessions/:id/cancel", h.CancelSession)
	auth.Post("/sessions/:id/invites", h.InviteToSession)

	auth.Post("/invitations/:id/accept", h.AcceptInvitation)
	auth.Post("/invitations/:id/decline", h.DeclineInvitation)

	auth.Get("/notifications", h.ListNotifications)
	auth.Post("/notifications/read-all", h.MarkAllNotificationsRead)
	auth.Post("/notifications/:id/read", h.MarkNotificationRead)

	auth.Post("/robin/chat", h.Chat)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

// fail maps domain errors onto HTTP responses. Unknown errors become a 500
// with a generic body so internals never leak.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, database.ErrPlayerNotFound),
		errors.Is(err, database.ErrCourtNotFound),
		errors.Is(err, database.ErrGroupNotFound),
		errors.Is(err, database.ErrGameSessionNotFound),
		errors.Is(err, database.ErrInvitationNotFound),
		errors.Is(err, database.ErrNotificationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, database.ErrInvitationConcluded),
		errors.Is(err, rsvp.ErrAlreadyInvited),
		errors.Is(err, rsvp.ErrAlreadyAccepted),
		errors.Is(err, rsvp.ErrSessionCancelled),
		errors.Is(err, rsvp.ErrSessionConcluded),
		errors.Is(err, sessions.ErrAlreadyCancelled),
		errors.Is(err, players.ErrEmailAlreadyInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, rsvp.ErrDeadlineInPast),
		errors.Is(err, rsvp.ErrOrganizerInvitee),
		errors.Is(err, sessions.ErrStartTimeInPast):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, rsvp.ErrNotInvitee),
		errors.Is(err, sessions.ErrNotOrganizer),
		errors.Is(err, courts.ErrNotOwner),
		errors.Is(err, groups.ErrNotMember):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, players.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, ratelimit.ErrTooManyAttempts):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
	}

	h.logger.ErrorContext(c.Context(), "Request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
