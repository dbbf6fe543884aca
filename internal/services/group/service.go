package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/whamageddon/internal/changefeed"
	"github.com/mcoot/whamageddon/internal/dependencies/clock"
	"github.com/mcoot/whamageddon/internal/dependencies/random"
	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/storage"
)

const (
	// SlugSuffixRange bounds the random number appended to slugs
	SlugSuffixRange = 1000
	// maxSlugAttempts guards the uniqueness loop against a full suffix space
	maxSlugAttempts = 50
)

// ErrSlugExhausted is returned when no free slug could be found for a name
var ErrSlugExhausted = errors.New("could not find a free group slug")

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Service manages groups and their passwords
type Service struct {
	storage storage.Storage
	feed    changefeed.Feed
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new group Service
func New(
	storage storage.Storage,
	feed changefeed.Feed,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		feed:    feed,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// SlugBase lower-cases a name and collapses everything outside [a-z0-9] to "-"
func SlugBase(name string) string {
	return nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
}

// CreateGroup creates a group named name. creator becomes the admin when set;
// a non-empty password is required from everyone who joins.
func (s *Service) CreateGroup(ctx context.Context, name string, creator model.UserID, password string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrGroupNameMissing
	}

	group := &model.Group{
		ID:        s.random.NewID(),
		Name:      name,
		CreatorID: creator,
		CreatedAt: s.clock.Now(),
	}

	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		group.PasswordHash = hash
	}

	if err := s.insertWithUniqueSlug(ctx, group); err != nil {
		s.logger.Error("failed to save group",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.Info("group created",
		slog.String("slug", string(group.Slug)),
		slog.Bool("has_password", group.HasPassword()),
		slog.Bool("has_admin", creator != ""))

	changefeed.Announce(ctx, s.feed, s.logger, model.Change{
		Table:     model.TableGroups,
		Op:        model.OpInsert,
		GroupSlug: group.Slug,
		UserID:    creator,
		At:        group.CreatedAt,
	})

	return group, nil
}

// insertWithUniqueSlug picks random suffixes until the store accepts one.
// The insert itself detects a taken slug, so concurrent creates with the
// same name cannot overwrite each other.
func (s *Service) insertWithUniqueSlug(ctx context.Context, group *model.Group) error {
	base := SlugBase(group.Name)
	for i := 0; i < maxSlugAttempts; i++ {
		group.Slug = model.GroupSlug(fmt.Sprintf("%s-%d", base, s.random.Intn(SlugSuffixRange)))
		err := s.storage.CreateGroup(ctx, group)
		if errors.Is(err, storage.ErrSlugTaken) {
			continue
		}
		return err
	}
	return ErrSlugExhausted
}

// GetGroup retrieves a group by slug
func (s *Service) GetGroup(ctx context.Context, slug model.GroupSlug) (*model.Group, error) {
	return s.storage.GetGroup(ctx, slug)
}

// CheckPassword returns nil when the group is open or the password matches
func (s *Service) CheckPassword(group *model.Group, password string) error {
	if !group.HasPassword() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(group.PasswordHash), []byte(password)); err != nil {
		return model.ErrWrongPassword
	}
	return nil
}

// SetPassword replaces the group password. An empty password opens the group.
func (s *Service) SetPassword(ctx context.Context, slug model.GroupSlug, requester model.UserID, password string) error {
	group, err := s.storage.GetGroup(ctx, slug)
	if err != nil {
		return err
	}
	if !group.IsAdmin(requester) {
		return model.ErrNotGroupAdmin
	}

	group.PasswordHash = ""
	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return err
		}
		group.PasswordHash = hash
	}

	if err := s.storage.SaveGroup(ctx, group); err != nil {
		return err
	}

	s.logger.Info("group password changed",
		slog.String("slug", string(slug)),
		slog.Bool("has_password", group.HasPassword()))

	changefeed.Announce(ctx, s.feed, s.logger, model.Change{
		Table:     model.TableGroups,
		Op:        model.OpUpdate,
		GroupSlug: slug,
		UserID:    requester,
		At:        s.clock.Now(),
	})
	return nil
}

// Leaderboard returns the group with its players sorted and partitioned
func (s *Service) Leaderboard(ctx context.Context, slug model.GroupSlug) (*model.Leaderboard, error) {
	group, err := s.storage.GetGroup(ctx, slug)
	if err != nil {
		return nil, err
	}
	players, err := s.storage.ListPlayersByGroup(ctx, slug)
	if err != nil {
		return nil, err
	}
	return model.NewLeaderboard(group, players), nil
}

// ListGroupsForUser returns the groups the user has joined, oldest first.
// Groups deleted out from under a player row are skipped.
func (s *Service) ListGroupsForUser(ctx context.Context, userID model.UserID) ([]*model.Group, error) {
	if userID == "" {
		return []*model.Group{}, nil
	}
	players, err := s.storage.ListPlayersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[model.GroupSlug]bool)
	groups := []*model.Group{}
	for _, p := range players {
		if seen[p.GroupSlug] {
			continue
		}
		seen[p.GroupSlug] = true

		group, err := s.storage.GetGroup(ctx, p.GroupSlug)
		if errors.Is(err, model.ErrGroupNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	sortGroups(groups)
	return groups, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func sortGroups(groups []*model.Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		if !groups[i].CreatedAt.Equal(groups[j].CreatedAt) {
			return groups[i].CreatedAt.Before(groups[j].CreatedAt)
		}
		return groups[i].Slug < groups[j].Slug
	})
}
