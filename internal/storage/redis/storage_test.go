package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/storage"
	"github.com/mcoot/whamageddon/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini *miniredis.Miniredis
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		s.mini = miniredis.RunT(s.T())
		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})
		return NewWithClient(client, DefaultConfig())
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TestKeysUsePrefix() {
	s.Require().NoError(s.Storage.SaveGroup(s.Ctx, &model.Group{ID: "g-1", Name: "Office", Slug: "office-1"}))
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{
		ID: "p-1", UserID: "u-1", GroupSlug: "office-1", Name: "Alice", PIN: "1234", Status: model.StatusAlive,
	}))

	s.True(s.mini.Exists("wham:group:office-1"))
	s.True(s.mini.Exists("wham:player:p-1"))
	s.True(s.mini.Exists("wham:idx:group_players:office-1"))
	s.True(s.mini.Exists("wham:idx:user_players:u-1"))

	members, err := s.mini.Members("wham:idx:groups")
	s.Require().NoError(err)
	s.Equal([]string{"office-1"}, members)
}

func (s *StorageSuite) TestDataTTL() {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	cfg := DefaultConfig()
	cfg.DataTTL = time.Hour
	st := NewWithClient(client, cfg)
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	s.Require().NoError(st.SavePlayer(ctx, &model.Player{ID: "p-1", UserID: "u-1", GroupSlug: "office-1", Name: "Alice"}))

	s.Equal(time.Hour, s.mini.TTL("wham:player:p-1"))
	s.Equal(time.Hour, s.mini.TTL("wham:idx:user_players:u-1"))

	s.mini.FastForward(2 * time.Hour)

	_, err := st.GetPlayer(ctx, "p-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestListSkipsExpiredRows() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p-1", GroupSlug: "office-1", Name: "Alice"}))
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "p-2", GroupSlug: "office-1", Name: "Bob"}))
	s.mini.Del("wham:player:p-1")

	players, err := s.Storage.ListPlayersByGroup(s.Ctx, "office-1")
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal(model.PlayerID("p-2"), players[0].ID)
}
