package sse

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/whamageddon/internal/changefeed"
	"github.com/mcoot/whamageddon/internal/model"
)

// LeaderboardSource loads the current leaderboard of a group
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, slug model.GroupSlug) (*model.Leaderboard, error)
}

// Relay bridges the change feed to the SSE hubs. Each change re-fetches the
// whole group, so dropped or reordered notifications heal on the next one.
type Relay struct {
	feed        changefeed.Feed
	source      LeaderboardSource
	hubManager  *HubManager
	broadcaster *Broadcaster
	logger      *slog.Logger
}

// NewRelay creates a Relay
func NewRelay(feed changefeed.Feed, source LeaderboardSource, hubManager *HubManager, logger *slog.Logger) *Relay {
	return &Relay{
		feed:        feed,
		source:      source,
		hubManager:  hubManager,
		broadcaster: NewBroadcaster(hubManager, logger),
		logger:      logger.With(slog.String("component", "sse-relay")),
	}
}

// Run forwards changes until ctx is done or the feed closes
func (r *Relay) Run(ctx context.Context) {
	changes, cancel := r.feed.Subscribe(ctx)
	defer cancel()

	r.logger.Info("sse relay started")
	for change := range changes {
		r.handle(ctx, change)
	}
	r.logger.Info("sse relay stopped")
}

func (r *Relay) handle(ctx context.Context, change model.Change) {
	if change.GroupSlug == "" || r.hubManager.GetHub(change.GroupSlug) == nil {
		// Nobody is watching this group on this instance
		return
	}

	board, err := r.source.Leaderboard(ctx, change.GroupSlug)
	if errors.Is(err, model.ErrGroupNotFound) {
		r.broadcaster.BroadcastGone(change.GroupSlug)
		return
	}
	if err != nil {
		r.logger.Error("sse relay failed to load leaderboard",
			slog.String("group", string(change.GroupSlug)),
			slog.Any("error", err))
		return
	}
	r.broadcaster.BroadcastLeaderboard(ctx, board)
}
