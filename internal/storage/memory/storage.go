package memory

import (
	"context"
	"sync"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	groups  map[model.GroupSlug]*model.Group
	players map[model.PlayerID]*model.Player

	// Secondary indexes over players, kept in step by SavePlayer and DeletePlayer
	byGroup    map[model.GroupSlug]idSet
	byUser     map[model.UserID]idSet
	byRecovery map[string]idSet
}

type idSet map[model.PlayerID]struct{}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		groups:     make(map[model.GroupSlug]*model.Group),
		players:    make(map[model.PlayerID]*model.Player),
		byGroup:    make(map[model.GroupSlug]idSet),
		byUser:     make(map[model.UserID]idSet),
		byRecovery: make(map[string]idSet),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Values are copied on the way in and out so callers can mutate what they
// hold without racing other readers.

func copyGroup(g *model.Group) *model.Group {
	c := *g
	return &c
}

func copyPlayer(p *model.Player) *model.Player {
	c := *p
	if p.WhammedAt != nil {
		t := *p.WhammedAt
		c.WhammedAt = &t
	}
	return &c
}

// Group operations

func (s *Storage) CreateGroup(ctx context.Context, group *model.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[group.Slug]; ok {
		return storage.ErrSlugTaken
	}
	s.groups[group.Slug] = copyGroup(group)
	return nil
}

func (s *Storage) SaveGroup(ctx context.Context, group *model.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[group.Slug] = copyGroup(group)
	return nil
}

func (s *Storage) GetGroup(ctx context.Context, slug model.GroupSlug) (*model.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.groups[slug]
	if !ok {
		return nil, model.ErrGroupNotFound
	}
	return copyGroup(group), nil
}

func (s *Storage) ListGroups(ctx context.Context) ([]*model.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]*model.Group, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, copyGroup(g))
	}
	return groups, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.players[player.ID]; ok {
		s.unindex(old)
	}
	stored := copyPlayer(player)
	s.players[player.ID] = stored
	s.index(stored)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return copyPlayer(player), nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.players[id]; ok {
		s.unindex(old)
		delete(s.players, id)
	}
	return nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, copyPlayer(p))
	}
	return players, nil
}

func (s *Storage) ListPlayersByGroup(ctx context.Context, slug model.GroupSlug) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byGroup[slug]), nil
}

func (s *Storage) ListPlayersByUser(ctx context.Context, userID model.UserID) ([]*model.Player, error) {
	if userID == "" {
		return []*model.Player{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byUser[userID]), nil
}

func (s *Storage) FindPlayersByRecovery(ctx context.Context, name, pin string) ([]*model.Player, error) {
	key := storage.RecoveryKey(name, pin)
	if key == "" {
		return []*model.Player{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byRecovery[key]), nil
}

// lookup copies the players named by ids. Callers hold the lock.
func (s *Storage) lookup(ids idSet) []*model.Player {
	players := make([]*model.Player, 0, len(ids))
	for id := range ids {
		players = append(players, copyPlayer(s.players[id]))
	}
	return players
}

func (s *Storage) index(p *model.Player) {
	addToIndex(s.byGroup, p.GroupSlug, p.ID)
	if p.UserID != "" {
		addToIndex(s.byUser, p.UserID, p.ID)
	}
	if key := storage.RecoveryKey(p.Name, p.PIN); key != "" {
		addToIndex(s.byRecovery, key, p.ID)
	}
}

func (s *Storage) unindex(p *model.Player) {
	removeFromIndex(s.byGroup, p.GroupSlug, p.ID)
	removeFromIndex(s.byUser, p.UserID, p.ID)
	removeFromIndex(s.byRecovery, storage.RecoveryKey(p.Name, p.PIN), p.ID)
}

func addToIndex[K comparable](index map[K]idSet, key K, id model.PlayerID) {
	ids, ok := index[key]
	if !ok {
		ids = make(idSet)
		index[key] = ids
	}
	ids[id] = struct{}{}
}

func removeFromIndex[K comparable](index map[K]idSet, key K, id model.PlayerID) {
	ids, ok := index[key]
	if !ok {
		return
	}
	delete(ids, id)
	if len(ids) == 0 {
		delete(index, key)
	}
}

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}
