package groups

import (
	"context"
	"io"
	"testing"

	"localdink/internal/database"
	"localdink/internal/logger"
	"localdink/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The production database must satisfy the manager's store contract.
var _ Store = (*database.Database)(nil)

type memoryStore struct {
	players map[uuid.UUID]database.Player
	groups  map[uuid.UUID]database.Group
	members map[uuid.UUID][]uuid.UUID

	replaceCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		players: map[uuid.UUID]database.Player{},
		groups:  map[uuid.UUID]database.Group{},
		members: map[uuid.UUID][]uuid.UUID{},
	}
}

func (s *memoryStore) CreateGroup(_ context.Context, params database.CreateGroupParams) (database.Group, error) {
	group := database.Group{
		ID:          uuid.New(),
		Name:        params.Name,
		Description: params.Description,
		AvatarKey:   util.None[string](),
	}
	s.groups[group.ID] = group
	return group, nil
}

func (s *memoryStore) GetGroupByID(_ context.Context, id uuid.UUID) (database.Group, error) {
	group, ok := s.groups[id]
	if !ok {
		return database.Group{}, database.ErrGroupNotFound
	}
	return group, nil
}

func (s *memoryStore) ListGroups(_ context.Context, params database.ListGroupsParams) ([]database.Group, error) {
	var result []database.Group
	for id, group := range s.groups {
		if params.MemberID.IsSet && !s.isMember(id, params.MemberID.Val) {
			continue
		}
		result = append(result, group)
	}
	return result, nil
}

func (s *memoryStore) isMember(groupID, playerID uuid.UUID) bool {
	for _, id := range s.members[groupID] {
		if id == playerID {
			return true
		}
	}
	return false
}

func (s *memoryStore) UpdateGroupByID(_ context.Context, id uuid.UUID, params database.UpdateGroupParams) error {
	group, ok := s.groups[id]
	if !ok {
		return database.ErrGroupNotFound
	}
	if params.Name.IsSet {
		group.Name = params.Name.Val
	}
	if params.Description.IsSet {
		group.Description = params.Description.Val
	}
	if params.AvatarKey.IsSet {
		group.AvatarKey = params.AvatarKey
	}
	s.groups[id] = group
	return nil
}

func (s *memoryStore) DeleteGroupByID(_ context.Context, id uuid.UUID) error {
	if _, ok := s.groups[id]; !ok {
		return database.ErrGroupNotFound
	}
	delete(s.groups, id)
	delete(s.members, id)
	return nil
}

func (s *memoryStore) ListGroupMembers(_ context.Context, groupID uuid.UUID) ([]database.Player, error) {
	var result []database.Player
	for _, id := range s.members[groupID] {
		result = append(result, s.players[id])
	}
	return result, nil
}

func (s *memoryStore) ReplaceGroupMembers(_ context.Context, groupID uuid.UUID, playerIDs []uuid.UUID) error {
	s.replaceCalls++
	s.members[groupID] = append([]uuid.UUID(nil), playerIDs...)
	return nil
}

func (s *memoryStore) ListPlayers(_ context.Context, params database.ListPlayersParams) ([]database.Player, error) {
	var result []database.Player
	if params.IDs.IsSet {
		for _, id := range params.IDs.Val {
			if player, ok := s.players[id]; ok {
				result = append(result, player)
			}
		}
		return result, nil
	}
	for _, player := range s.players {
		result = append(result, player)
	}
	return result, nil
}

type fixture struct {
	store   *memoryStore
	manager *Manager
	creator database.Player
	group   database.Group
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemoryStore()
	manager := NewManager(logger.Silence(io.Discard), store)

	creator := database.Player{ID: uuid.New(), Name: "Alex"}
	store.players[creator.ID] = creator

	group, err := manager.Create(context.Background(), creator.ID, "Morning Crew", "Weekday 7am games")
	require.NoError(t, err)

	return &fixture{store: store, manager: manager, creator: creator, group: group}
}

func (f *fixture) addPlayer(name string) database.Player {
	player := database.Player{ID: uuid.New(), Name: name}
	f.store.players[player.ID] = player
	return player
}

func (f *fixture) roster(t *testing.T) []uuid.UUID {
	t.Helper()
	members, err := f.manager.Members(context.Background(), f.group.ID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.ID)
	}
	return ids
}

func TestCreateSeedsCreatorMembership(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []uuid.UUID{f.creator.ID}, f.roster(t))
}

func TestSetMembersReplacesRosterInOneWrite(t *testing.T) {
	f := newFixture(t)
	sam := f.addPlayer("Sam")
	jo := f.addPlayer("Jo")
	riley := f.addPlayer("Riley")

	require.NoError(t, f.manager.SetMembers(context.Background(), f.group.ID, f.creator.ID, []uuid.UUID{sam.ID, jo.ID}))
	require.ElementsMatch(t, []uuid.UUID{sam.ID, jo.ID, f.creator.ID}, f.roster(t))

	// The second write swaps the whole roster: Sam is out, Riley is in,
	// the duplicate id collapses, and the swap is a single store write.
	writes := f.store.replaceCalls
	require.NoError(t, f.manager.SetMembers(context.Background(), f.group.ID, f.creator.ID, []uuid.UUID{riley.ID, jo.ID, riley.ID}))
	assert.Equal(t, writes+1, f.store.replaceCalls)
	assert.ElementsMatch(t, []uuid.UUID{riley.ID, jo.ID, f.creator.ID}, f.roster(t))
}

func TestSetMembersKeepsCaller(t *testing.T) {
	f := newFixture(t)
	sam := f.addPlayer("Sam")

	// The caller never appears in the submitted list but stays a member,
	// so the group cannot be edited out of reach.
	require.NoError(t, f.manager.SetMembers(context.Background(), f.group.ID, f.creator.ID, []uuid.UUID{sam.ID}))
	assert.ElementsMatch(t, []uuid.UUID{sam.ID, f.creator.ID}, f.roster(t))
}

func TestSetMembersRejectsNonMember(t *testing.T) {
	f := newFixture(t)
	stranger := f.addPlayer("Sam")

	err := f.manager.SetMembers(context.Background(), f.group.ID, stranger.ID, []uuid.UUID{stranger.ID})
	assert.ErrorIs(t, err, ErrNotMember)
	assert.Equal(t, []uuid.UUID{f.creator.ID}, f.roster(t))
}

func TestSetMembersRejectsUnknownPlayer(t *testing.T) {
	f := newFixture(t)
	sam := f.addPlayer("Sam")

	writes := f.store.replaceCalls
	err := f.manager.SetMembers(context.Background(), f.group.ID, f.creator.ID, []uuid.UUID{sam.ID, uuid.New()})
	assert.ErrorIs(t, err, database.ErrPlayerNotFound)

	// The roster is untouched when any id fails to resolve.
	assert.Equal(t, writes, f.store.replaceCalls)
	assert.Equal(t, []uuid.UUID{f.creator.ID}, f.roster(t))
}

func TestUpdateAndDeleteRequireMembership(t *testing.T) {
	f := newFixture(t)
	stranger := f.addPlayer("Sam")

	err := f.manager.Update(context.Background(), f.group.ID, stranger.ID, UpdateParams{Name: util.Some("Taken over")})
	assert.ErrorIs(t, err, ErrNotMember)

	assert.ErrorIs(t, f.manager.Delete(context.Background(), f.group.ID, stranger.ID), ErrNotMember)

	require.NoError(t, f.manager.Delete(context.Background(), f.group.ID, f.creator.ID))
	_, err = f.manager.Get(context.Background(), f.group.ID)
	assert.ErrorIs(t, err, database.ErrGroupNotFound)
}
