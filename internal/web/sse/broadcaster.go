package sse

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/web/templates/components"
)

// Event names sent to browsers
const (
	EventLeaderboard = "leaderboard"
	// EventChanged makes per-viewer fragments re-fetch themselves
	EventChanged = "changed"
)

// Broadcaster handles broadcasting updates to SSE clients
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// BroadcastLeaderboard pushes the re-rendered leaderboard to every viewer of
// the group, then tells them to refresh their own status fragments
func (b *Broadcaster) BroadcastLeaderboard(ctx context.Context, board *model.Leaderboard) {
	hub := b.hubManager.GetHub(board.Group.Slug)
	if hub == nil {
		return
	}

	var buf bytes.Buffer
	if err := components.LeaderboardColumns(board).Render(ctx, &buf); err != nil {
		b.logger.Error("sse failed to render leaderboard",
			slog.String("group", string(board.Group.Slug)),
			slog.Any("error", err))
		return
	}

	hub.SetSnapshot(EventLeaderboard, WrapForOOBSwap(components.LeaderboardID, buf.String()))
	hub.BroadcastEvent(EventChanged, string(board.Group.Slug))
}

// BroadcastGone tells viewers the group no longer exists
func (b *Broadcaster) BroadcastGone(slug model.GroupSlug) {
	hub := b.hubManager.GetHub(slug)
	if hub == nil {
		return
	}
	hub.ClearSnapshot()
	hub.BroadcastEvent(EventChanged, string(slug))
}

// WrapForOOBSwap wraps HTML in a div with hx-swap-oob for out-of-band swaps
func WrapForOOBSwap(id, html string) string {
	return `<div id="` + id + `" hx-swap-oob="true">` + html + `</div>`
}
