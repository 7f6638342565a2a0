package hydrate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"localdink/internal/database"
	"localdink/internal/rsvp"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PlaceholderID is the id exposed for a referenced entity that no longer
// resolves.
const PlaceholderID = "unknown"

// Store is the slice of the database the hydrator needs.
type Store interface {
	GetPlayerByID(ctx context.Context, id uuid.UUID) (database.Player, error)
	GetCourtByID(ctx context.Context, id uuid.UUID) (database.Court, error)
	ListActiveInvitationsBySession(ctx context.Context, sessionID uuid.UUID) ([]database.Invitation, error)
}

// PlayerView is a resolved or placeholder player reference. A placeholder
// carries the id "unknown" and a display name; callers branch on the
// Placeholder tag, never on the name.
type PlayerView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AvatarKey   string `json:"avatar_key,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

// CourtView is a resolved or placeholder court reference.
type CourtView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

// InviteeView pairs a player reference with the state of their active
// invitation.
type InviteeView struct {
	Player       PlayerView                `json:"player"`
	InvitationID string                    `json:"invitation_id"`
	Status       database.InvitationStatus `json:"status"`
	Deadline     time.Time                 `json:"deadline"`
}

// SessionView is a fully hydrated game session ready for rendering. The
// confirmed count is derived on every hydration and never stored.
type SessionView struct {
	ID              string        `json:"id"`
	StartTime       time.Time     `json:"start_time"`
	MatchType       string        `json:"match_type"`
	Cancelled       bool          `json:"cancelled"`
	Organizer       PlayerView    `json:"organizer"`
	Court           CourtView     `json:"court"`
	Invitees        []InviteeView `json:"invitees"`
	Confirmed       int           `json:"confirmed"`
	RequiredPlayers int           `json:"required_players"`
}

func placeholderPlayer() PlayerView {
	return PlayerView{ID: PlaceholderID, Name: "Unknown player", Placeholder: true}
}

func placeholderCourt() CourtView {
	return CourtView{ID: PlaceholderID, Name: "Unknown court", Placeholder: true}
}

// Hydrator joins a stored session with the entities it references.
type Hydrator struct {
	store Store
}

func NewHydrator(store Store) Hydrator {
	return Hydrator{store: store}
}

// Hydrate resolves the court, the organizer and every active invitee of the
// session concurrently. A reference that no longer exists becomes a
// placeholder; any other lookup failure aborts the whole hydration so a
// flaky backend is surfaced instead of misread as deleted data.
func (h Hydrator) Hydrate(ctx context.Context, session database.GameSession) (SessionView, error) {
	view := SessionView{
		ID:              session.ID.String(),
		StartTime:       session.StartTime,
		MatchType:       rsvp.MatchType(session),
		Cancelled:       session.CancelledAt.IsSet,
		RequiredPlayers: session.RequiredPlayers(),
	}

	invitations, err := h.store.ListActiveInvitationsBySession(ctx, session.ID)
	if err != nil {
		return SessionView{}, fmt.Errorf("hydrate: failed to list invitations for session %s: %w", session.ID, err)
	}

	invitees := make([]InviteeView, len(invitations))

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		court, err := h.store.GetCourtByID(groupCtx, session.CourtID)
		if errors.Is(err, database.ErrCourtNotFound) {
			view.Court = placeholderCourt()
			return nil
		}
		if err != nil {
			return fmt.Errorf("hydrate: failed to resolve court %s: %w", session.CourtID, err)
		}
		view.Court = CourtView{ID: court.ID.String(), Name: court.Name, City: court.City.UnwrapOr("")}
		return nil
	})

	group.Go(func() error {
		organizer, err := h.resolvePlayer(groupCtx, session.OrganizerID)
		if err != nil {
			return err
		}
		view.Organizer = organizer
		return nil
	})

	for i, invitation := range invitations {
		group.Go(func() error {
			player, err := h.resolvePlayer(groupCtx, invitation.PlayerID)
			if err != nil {
				return err
			}
			invitees[i] = InviteeView{
				Player:       player,
				InvitationID: invitation.ID.String(),
				Status:       invitation.Status,
				Deadline:     invitation.Deadline,
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return SessionView{}, err
	}

	sort.Slice(invitees, func(i, j int) bool { return invitees[i].Player.Name < invitees[j].Player.Name })
	view.Invitees = invitees
	view.Confirmed = rsvp.ConfirmedCount(invitations)

	return view, nil
}

func (h Hydrator) resolvePlayer(ctx context.Context, id uuid.UUID) (PlayerView, error) {
	player, err := h.store.GetPlayerByID(ctx, id)
	if errors.Is(err, database.ErrPlayerNotFound) {
		return placeholderPlayer(), nil
	}
	if err != nil {
		return PlayerView{}, fmt.Errorf("hydrate: failed to resolve player %s: %w", id, err)
	}
	return PlayerView{ID: player.ID.String(), Name: player.Name, AvatarKey: player.AvatarKey.UnwrapOr("")}, nil
}
