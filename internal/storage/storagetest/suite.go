// Package storagetest holds a behavioural suite run against every storage backend.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/storage"
)

// Suite exercises the storage.Storage contract. Backends embed it and set
// NewStorage to return a fresh, empty store for each test.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

var baseTime = time.Date(2025, 12, 10, 9, 0, 0, 0, time.UTC)

func (s *Suite) saveGroup(slug model.GroupSlug) *model.Group {
	group := &model.Group{
		ID:        "g-" + string(slug),
		Name:      "Group " + string(slug),
		Slug:      slug,
		CreatorID: "u-admin",
		CreatedAt: baseTime,
	}
	s.Require().NoError(s.Storage.SaveGroup(s.Ctx, group))
	return group
}

func (s *Suite) savePlayer(id model.PlayerID, slug model.GroupSlug, user model.UserID, name, pin string) *model.Player {
	player := &model.Player{
		ID:        id,
		UserID:    user,
		GroupSlug: slug,
		Name:      name,
		PIN:       pin,
		Status:    model.StatusAlive,
		CreatedAt: baseTime,
	}
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))
	return player
}

func playerIDs(players []*model.Player) []model.PlayerID {
	ids := make([]model.PlayerID, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	return ids
}

// Group tests

func (s *Suite) TestSaveAndGetGroup() {
	group := &model.Group{
		ID:           "g-1",
		Name:         "Office",
		Slug:         "office-42",
		PasswordHash: "hash",
		CreatorID:    "u-1",
		CreatedAt:    baseTime,
	}
	s.Require().NoError(s.Storage.SaveGroup(s.Ctx, group))

	got, err := s.Storage.GetGroup(s.Ctx, "office-42")
	s.Require().NoError(err)
	s.Equal(group.ID, got.ID)
	s.Equal(group.Name, got.Name)
	s.Equal(group.PasswordHash, got.PasswordHash)
	s.Equal(group.CreatorID, got.CreatorID)
	s.True(group.CreatedAt.Equal(got.CreatedAt))
}

func (s *Suite) TestGetGroupNotFound() {
	_, err := s.Storage.GetGroup(s.Ctx, "nope")
	s.ErrorIs(err, model.ErrGroupNotFound)
}

func (s *Suite) TestCreateGroup() {
	group := &model.Group{ID: "g-1", Name: "Office", Slug: "office-1", CreatorID: "u-alice", CreatedAt: baseTime}
	s.Require().NoError(s.Storage.CreateGroup(s.Ctx, group))

	got, err := s.Storage.GetGroup(s.Ctx, "office-1")
	s.Require().NoError(err)
	s.Equal("g-1", got.ID)

	groups, err := s.Storage.ListGroups(s.Ctx)
	s.Require().NoError(err)
	s.Len(groups, 1)
}

func (s *Suite) TestCreateGroupNeverOverwrites() {
	first := &model.Group{ID: "g-1", Name: "Office", Slug: "office-1", CreatorID: "u-alice", CreatedAt: baseTime}
	s.Require().NoError(s.Storage.CreateGroup(s.Ctx, first))

	second := &model.Group{ID: "g-2", Name: "Office", Slug: "office-1", CreatorID: "u-bob", CreatedAt: baseTime}
	s.ErrorIs(s.Storage.CreateGroup(s.Ctx, second), storage.ErrSlugTaken)

	got, err := s.Storage.GetGroup(s.Ctx, "office-1")
	s.Require().NoError(err)
	s.Equal("g-1", got.ID)
	s.Equal(model.UserID("u-alice"), got.CreatorID)
}

func (s *Suite) TestSaveGroupOverwrites() {
	group := s.saveGroup("office-1")
	group.PasswordHash = "new-hash"
	s.Require().NoError(s.Storage.SaveGroup(s.Ctx, group))

	got, err := s.Storage.GetGroup(s.Ctx, "office-1")
	s.Require().NoError(err)
	s.Equal("new-hash", got.PasswordHash)

	groups, err := s.Storage.ListGroups(s.Ctx)
	s.Require().NoError(err)
	s.Len(groups, 1)
}

func (s *Suite) TestListGroups() {
	groups, err := s.Storage.ListGroups(s.Ctx)
	s.Require().NoError(err)
	s.Empty(groups)

	s.saveGroup("a-1")
	s.saveGroup("b-2")

	groups, err = s.Storage.ListGroups(s.Ctx)
	s.Require().NoError(err)
	s.Len(groups, 2)
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	whammedAt := baseTime.Add(time.Hour)
	player := &model.Player{
		ID:         "p-1",
		UserID:     "u-1",
		GroupSlug:  "office-1",
		Name:       "Alice",
		Company:    "Acme",
		AvatarURL:  "https://example.com/a.png",
		PIN:        "1234",
		Status:     model.StatusWhammed,
		WhammedAt:  &whammedAt,
		WhamReason: "supermarket",
		CreatedAt:  baseTime,
	}
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	got, err := s.Storage.GetPlayer(s.Ctx, "p-1")
	s.Require().NoError(err)
	s.Equal(player.UserID, got.UserID)
	s.Equal(player.GroupSlug, got.GroupSlug)
	s.Equal(player.Name, got.Name)
	s.Equal(player.Company, got.Company)
	s.Equal(player.AvatarURL, got.AvatarURL)
	s.Equal(player.PIN, got.PIN)
	s.Equal(model.StatusWhammed, got.Status)
	s.Require().NotNil(got.WhammedAt)
	s.True(whammedAt.Equal(*got.WhammedAt))
	s.Equal("supermarket", got.WhamReason)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nope")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavePlayerClearsWhammedAt() {
	player := s.savePlayer("p-1", "office-1", "u-1", "Alice", "")
	player.MarkWhammed(baseTime, "radio")
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	player.MarkAlive()
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	got, err := s.Storage.GetPlayer(s.Ctx, "p-1")
	s.Require().NoError(err)
	s.True(got.IsAlive())
	s.Nil(got.WhammedAt)
}

func (s *Suite) TestDeletePlayer() {
	s.savePlayer("p-1", "office-1", "u-1", "Alice", "1234")

	s.Require().NoError(s.Storage.DeletePlayer(s.Ctx, "p-1"))

	_, err := s.Storage.GetPlayer(s.Ctx, "p-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	byGroup, err := s.Storage.ListPlayersByGroup(s.Ctx, "office-1")
	s.Require().NoError(err)
	s.Empty(byGroup)

	byUser, err := s.Storage.ListPlayersByUser(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Empty(byUser)

	byRecovery, err := s.Storage.FindPlayersByRecovery(s.Ctx, "Alice", "1234")
	s.Require().NoError(err)
	s.Empty(byRecovery)
}

func (s *Suite) TestDeleteMissingPlayerIsNoop() {
	s.NoError(s.Storage.DeletePlayer(s.Ctx, "nope"))
}

func (s *Suite) TestListPlayersByGroup() {
	s.savePlayer("p-1", "office-1", "u-1", "Alice", "")
	s.savePlayer("p-2", "office-1", "u-2", "Bob", "")
	s.savePlayer("p-3", "family-2", "u-1", "Alice", "")

	players, err := s.Storage.ListPlayersByGroup(s.Ctx, "office-1")
	s.Require().NoError(err)
	s.ElementsMatch([]model.PlayerID{"p-1", "p-2"}, playerIDs(players))

	players, err = s.Storage.ListPlayersByGroup(s.Ctx, "empty-3")
	s.Require().NoError(err)
	s.NotNil(players)
	s.Empty(players)
}

func (s *Suite) TestListPlayersByUser() {
	s.savePlayer("p-1", "office-1", "u-1", "Alice", "")
	s.savePlayer("p-2", "office-1", "u-2", "Bob", "")
	s.savePlayer("p-3", "family-2", "u-1", "Alice", "")
	s.savePlayer("p-4", "family-2", "", "Anon", "")

	players, err := s.Storage.ListPlayersByUser(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.ElementsMatch([]model.PlayerID{"p-1", "p-3"}, playerIDs(players))

	players, err = s.Storage.ListPlayersByUser(s.Ctx, "")
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *Suite) TestUserIndexFollowsReassignment() {
	player := s.savePlayer("p-1", "office-1", "u-1", "Alice", "1234")
	player.UserID = "u-2"
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	old, err := s.Storage.ListPlayersByUser(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Empty(old)

	current, err := s.Storage.ListPlayersByUser(s.Ctx, "u-2")
	s.Require().NoError(err)
	s.ElementsMatch([]model.PlayerID{"p-1"}, playerIDs(current))
}

func (s *Suite) TestFindPlayersByRecovery() {
	s.savePlayer("p-1", "office-1", "u-1", "Alice", "1234")
	s.savePlayer("p-2", "family-2", "u-1", "alice", "1234")
	s.savePlayer("p-3", "office-1", "u-2", "Alice", "9999")
	s.savePlayer("p-4", "office-1", "u-3", "Bob", "")

	players, err := s.Storage.FindPlayersByRecovery(s.Ctx, " ALICE ", "1234")
	s.Require().NoError(err)
	s.ElementsMatch([]model.PlayerID{"p-1", "p-2"}, playerIDs(players))

	players, err = s.Storage.FindPlayersByRecovery(s.Ctx, "Bob", "")
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *Suite) TestRecoveryIndexFollowsRename() {
	player := s.savePlayer("p-1", "office-1", "u-1", "Alice", "1234")
	player.Name = "Alicia"
	player.PIN = "4321"
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	old, err := s.Storage.FindPlayersByRecovery(s.Ctx, "Alice", "1234")
	s.Require().NoError(err)
	s.Empty(old)

	current, err := s.Storage.FindPlayersByRecovery(s.Ctx, "Alicia", "4321")
	s.Require().NoError(err)
	s.Len(current, 1)
}

func (s *Suite) TestListPlayers() {
	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Empty(players)

	s.savePlayer("p-1", "office-1", "u-1", "Alice", "")
	s.savePlayer("p-2", "family-2", "u-2", "Bob", "")

	players, err = s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Len(players, 2)
}
