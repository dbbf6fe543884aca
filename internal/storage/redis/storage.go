package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewClient opens and pings a Redis client for the given config
func NewClient(cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Client exposes the underlying connection so the change feed can share it
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Group operations

func (s *Storage) CreateGroup(ctx context.Context, group *model.Group) error {
	data, err := json.Marshal(group)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, groupKey(group.Slug), data, s.cfg.DataTTL).Result()
	if err != nil {
		return err
	}
	if !created {
		return storage.ErrSlugTaken
	}
	return s.client.SAdd(ctx, groupsIndexKey(), string(group.Slug)).Err()
}

func (s *Storage) SaveGroup(ctx context.Context, group *model.Group) error {
	data, err := json.Marshal(group)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, groupKey(group.Slug), data, s.cfg.DataTTL)
	pipe.SAdd(ctx, groupsIndexKey(), string(group.Slug))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGroup(ctx context.Context, slug model.GroupSlug) (*model.Group, error) {
	data, err := s.client.Get(ctx, groupKey(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGroupNotFound
		}
		return nil, err
	}

	var group model.Group
	if err := json.Unmarshal(data, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *Storage) ListGroups(ctx context.Context) ([]*model.Group, error) {
	slugs, err := s.client.SMembers(ctx, groupsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		keys = append(keys, groupKey(model.GroupSlug(slug)))
	}

	groups := []*model.Group{}
	err = s.mgetEach(ctx, keys, func(data []byte) error {
		var group model.Group
		if err := json.Unmarshal(data, &group); err != nil {
			return err
		}
		groups = append(groups, &group)
		return nil
	})
	return groups, err
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Index entries of the previous version must go if the indexed fields moved
	previous, err := s.GetPlayer(ctx, player.ID)
	if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
		return err
	}

	id := string(player.ID)
	pipe := s.client.TxPipeline()
	if previous != nil {
		s.removeIndexes(ctx, pipe, previous)
	}
	pipe.Set(ctx, playerKey(player.ID), data, s.cfg.DataTTL)
	pipe.SAdd(ctx, playersIndexKey(), id)
	pipe.SAdd(ctx, groupPlayersIndexKey(player.GroupSlug), id)
	s.expire(ctx, pipe, groupPlayersIndexKey(player.GroupSlug))
	if player.UserID != "" {
		pipe.SAdd(ctx, userPlayersIndexKey(player.UserID), id)
		s.expire(ctx, pipe, userPlayersIndexKey(player.UserID))
	}
	if key := recoveryIndexKey(player.Name, player.PIN); key != "" {
		pipe.SAdd(ctx, key, id)
		s.expire(ctx, pipe, key)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	s.removeIndexes(ctx, pipe, player)
	pipe.SRem(ctx, playersIndexKey(), string(id))
	pipe.Del(ctx, playerKey(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return s.playersInSet(ctx, playersIndexKey())
}

func (s *Storage) ListPlayersByGroup(ctx context.Context, slug model.GroupSlug) ([]*model.Player, error) {
	return s.playersInSet(ctx, groupPlayersIndexKey(slug))
}

func (s *Storage) ListPlayersByUser(ctx context.Context, userID model.UserID) ([]*model.Player, error) {
	if userID == "" {
		return []*model.Player{}, nil
	}
	return s.playersInSet(ctx, userPlayersIndexKey(userID))
}

func (s *Storage) FindPlayersByRecovery(ctx context.Context, name, pin string) ([]*model.Player, error) {
	key := recoveryIndexKey(name, pin)
	if key == "" {
		return []*model.Player{}, nil
	}
	return s.playersInSet(ctx, key)
}

func (s *Storage) removeIndexes(ctx context.Context, pipe redis.Pipeliner, player *model.Player) {
	id := string(player.ID)
	pipe.SRem(ctx, groupPlayersIndexKey(player.GroupSlug), id)
	if player.UserID != "" {
		pipe.SRem(ctx, userPlayersIndexKey(player.UserID), id)
	}
	if key := recoveryIndexKey(player.Name, player.PIN); key != "" {
		pipe.SRem(ctx, key, id)
	}
}

// expire keeps an index TTL in sync with the rows it points at
func (s *Storage) expire(ctx context.Context, pipe redis.Pipeliner, key string) {
	if s.cfg.DataTTL > 0 {
		pipe.Expire(ctx, key, s.cfg.DataTTL)
	}
}

func (s *Storage) playersInSet(ctx context.Context, indexKey string) ([]*model.Player, error) {
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, playerKey(model.PlayerID(id)))
	}

	players := []*model.Player{}
	err = s.mgetEach(ctx, keys, func(data []byte) error {
		var player model.Player
		if err := json.Unmarshal(data, &player); err != nil {
			return err
		}
		players = append(players, &player)
		return nil
	})
	return players, err
}

// mgetEach fetches keys in one round trip, skipping entries that expired
// between the index read and the fetch
func (s *Storage) mgetEach(ctx context.Context, keys []string, fn func([]byte) error) error {
	if len(keys) == 0 {
		return nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return err
	}

	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		if err := fn([]byte(str)); err != nil {
			return err
		}
	}
	return nil
}
