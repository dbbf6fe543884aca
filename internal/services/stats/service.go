package stats

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/storage"
)

// Totals counts players by status
type Totals struct {
	Players      int
	Alive        int
	Whammed      int
	SurvivalRate float64 // alive / players, 0 when there are no players
}

func (t *Totals) add(p *model.Player) {
	t.Players++
	if p.IsAlive() {
		t.Alive++
	} else {
		t.Whammed++
	}
}

func (t *Totals) finish() {
	if t.Players > 0 {
		t.SurvivalRate = float64(t.Alive) / float64(t.Players)
	}
}

// GroupStats is the totals of one group
type GroupStats struct {
	Slug model.GroupSlug
	Name string
	Totals
}

// Summary is the game-wide aggregate
type Summary struct {
	Groups int
	// Users counts distinct people: rows sharing a user id count once
	Users int
	Totals
	// Ranking orders groups by survival rate, best first
	Ranking []GroupStats
}

// Service computes aggregate statistics
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a stats Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

// Summary aggregates every group and player
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	groups, err := s.storage.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[model.GroupSlug]*GroupStats, len(groups))
	for _, g := range groups {
		byGroup[g.Slug] = &GroupStats{Slug: g.Slug, Name: g.Name}
	}

	summary := &Summary{Groups: len(groups)}
	users := make(map[model.UserID]bool)
	for _, p := range players {
		summary.add(p)
		if p.UserID == "" {
			summary.Users++
		} else if !users[p.UserID] {
			users[p.UserID] = true
			summary.Users++
		}
		if gs, ok := byGroup[p.GroupSlug]; ok {
			gs.add(p)
		}
	}
	summary.finish()

	summary.Ranking = make([]GroupStats, 0, len(byGroup))
	for _, gs := range byGroup {
		gs.finish()
		summary.Ranking = append(summary.Ranking, *gs)
	}
	rank(summary.Ranking)

	s.logger.Debug("stats computed",
		slog.Int("groups", summary.Groups),
		slog.Int("players", summary.Players))

	return summary, nil
}

// ForGroup aggregates a single group
func (s *Service) ForGroup(ctx context.Context, slug model.GroupSlug) (*GroupStats, error) {
	group, err := s.storage.GetGroup(ctx, slug)
	if err != nil {
		return nil, err
	}
	players, err := s.storage.ListPlayersByGroup(ctx, slug)
	if err != nil {
		return nil, err
	}

	gs := &GroupStats{Slug: group.Slug, Name: group.Name}
	for _, p := range players {
		gs.add(p)
	}
	gs.finish()
	return gs, nil
}

// rank sorts by survival rate, then by size so a full group beats an
// empty one, then by slug
func rank(groups []GroupStats) {
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.SurvivalRate != b.SurvivalRate {
			return a.SurvivalRate > b.SurvivalRate
		}
		if a.Players != b.Players {
			return a.Players > b.Players
		}
		return a.Slug < b.Slug
	})
}
