package storage

import (
	"context"
	"errors"

	"github.com/mcoot/whamageddon/internal/model"
)

// ErrSlugTaken is returned by CreateGroup when the slug is already in use
var ErrSlugTaken = errors.New("group slug already taken")

// Storage defines the interface for data persistence
type Storage interface {
	// Group operations
	// CreateGroup inserts a new group and never overwrites an existing slug
	CreateGroup(ctx context.Context, group *model.Group) error
	SaveGroup(ctx context.Context, group *model.Group) error
	GetGroup(ctx context.Context, slug model.GroupSlug) (*model.Group, error)
	ListGroups(ctx context.Context) ([]*model.Group, error)

	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// Indexed player lookups; results are unordered
	ListPlayersByGroup(ctx context.Context, slug model.GroupSlug) ([]*model.Player, error)
	ListPlayersByUser(ctx context.Context, userID model.UserID) ([]*model.Player, error)
	FindPlayersByRecovery(ctx context.Context, name, pin string) ([]*model.Player, error)

	Close() error
}
