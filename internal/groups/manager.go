package groups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"localdink/internal/database"
	"localdink/internal/util"

	"github.com/google/uuid"
)

var ErrNotMember = errors.New("caller is not a member of this group")

// Store is the slice of the database the group manager depends on.
// Satisfied by *database.Database.
type Store interface {
	CreateGroup(ctx context.Context, params database.CreateGroupParams) (database.Group, error)
	GetGroupByID(ctx context.Context, id uuid.UUID) (database.Group, error)
	ListGroups(ctx context.Context, params database.ListGroupsParams) ([]database.Group, error)
	UpdateGroupByID(ctx context.Context, id uuid.UUID, params database.UpdateGroupParams) error
	DeleteGroupByID(ctx context.Context, id uuid.UUID) error
	ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]database.Player, error)
	ReplaceGroupMembers(ctx context.Context, groupID uuid.UUID, playerIDs []uuid.UUID) error
	ListPlayers(ctx context.Context, params database.ListPlayersParams) ([]database.Player, error)
}

type Manager struct {
	logger *slog.Logger
	db     Store
}

func NewManager(logger *slog.Logger, db Store) *Manager {
	return &Manager{logger: logger, db: db}
}

// Create builds the group with the creator as its first member.
func (m *Manager) Create(ctx context.Context, creatorID uuid.UUID, name, description string) (database.Group, error) {
	group, err := m.db.CreateGroup(ctx, database.CreateGroupParams{
		Name:        name,
		Description: description,
	})
	if err != nil {
		return database.Group{}, err
	}

	if err := m.db.ReplaceGroupMembers(ctx, group.ID, []uuid.UUID{creatorID}); err != nil {
		return database.Group{}, err
	}

	m.logger.Info("Group created", "group_id", group.ID, "creator_id", creatorID)
	return group, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (database.Group, error) {
	return m.db.GetGroupByID(ctx, id)
}

// ListForPlayer returns the groups the player belongs to.
func (m *Manager) ListForPlayer(ctx context.Context, playerID uuid.UUID) ([]database.Group, error) {
	return m.db.ListGroups(ctx, database.ListGroupsParams{MemberID: util.Some(playerID)})
}

func (m *Manager) Members(ctx context.Context, groupID uuid.UUID) ([]database.Player, error) {
	if _, err := m.db.GetGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	return m.db.ListGroupMembers(ctx, groupID)
}

type UpdateParams struct {
	Name        util.Optional[string]
	Description util.Optional[string]
}

func (m *Manager) Update(ctx context.Context, groupID, callerID uuid.UUID, params UpdateParams) error {
	if err := m.requireMember(ctx, groupID, callerID); err != nil {
		return err
	}
	return m.db.UpdateGroupByID(ctx, groupID, database.UpdateGroupParams{
		Name:        params.Name,
		Description: params.Description,
	})
}

// SetMembers swaps the full membership roster in one transaction. Every id
// must resolve to an existing player and the caller stays a member, so a
// group can never edit itself out of reach.
func (m *Manager) SetMembers(ctx context.Context, groupID, callerID uuid.UUID, playerIDs []uuid.UUID) error {
	if err := m.requireMember(ctx, groupID, callerID); err != nil {
		return err
	}

	roster := make([]uuid.UUID, 0, len(playerIDs)+1)
	seen := map[uuid.UUID]bool{}
	for _, id := range append(playerIDs, callerID) {
		if seen[id] {
			continue
		}
		seen[id] = true
		roster = append(roster, id)
	}

	players, err := m.db.ListPlayers(ctx, database.ListPlayersParams{IDs: util.Some(roster)})
	if err != nil {
		return err
	}
	if len(players) != len(roster) {
		return fmt.Errorf("groups: %w", database.ErrPlayerNotFound)
	}

	return m.db.ReplaceGroupMembers(ctx, groupID, roster)
}

func (m *Manager) Delete(ctx context.Context, groupID, callerID uuid.UUID) error {
	if err := m.requireMember(ctx, groupID, callerID); err != nil {
		return err
	}
	return m.db.DeleteGroupByID(ctx, groupID)
}

func (m *Manager) requireMember(ctx context.Context, groupID, callerID uuid.UUID) error {
	if _, err := m.db.GetGroupByID(ctx, groupID); err != nil {
		return err
	}

	members, err := m.db.ListGroupMembers(ctx, groupID)
	if err != nil {
		return err
	}
	for _, member := range members {
		if member.ID == callerID {
			return nil
		}
	}
	return ErrNotMember
}
