package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/whamageddon/internal/api/response"
	"github.com/mcoot/whamageddon/internal/changefeed"
	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/services/group"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// FeedHandler streams a group's leaderboard over a websocket
type FeedHandler struct {
	groupService *group.Service
	feed         changefeed.Feed
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(groupService *group.Service, feed changefeed.Feed, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		groupService: groupService,
		feed:         feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The feed is read-only public data; any origin may watch it
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// Serve handles GET /api/v1/groups/{slug}/feed. The first frame is a
// snapshot; each change to the group sends a fresh leaderboard.
func (h *FeedHandler) Serve(w http.ResponseWriter, r *http.Request) {
	slug := slugFrom(r)

	board, err := h.groupService.Leaderboard(r.Context(), slug)
	if err != nil {
		WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	changes, unsubscribe := h.feed.Subscribe(ctx)
	defer unsubscribe()

	go h.readPump(conn, cancel)

	lb := response.LeaderboardFromModel(board)
	if err := h.send(conn, response.FeedMessage{Type: response.FeedSnapshot, Leaderboard: &lb}); err != nil {
		return
	}

	h.logger.Debug("feed client connected", slog.String("group", string(slug)))
	defer h.logger.Debug("feed client disconnected", slog.String("group", string(slug)))

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.close(conn)
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case change, ok := <-changes:
			if !ok {
				h.close(conn)
				return
			}
			if change.GroupSlug != slug {
				continue
			}
			if !h.forward(ctx, conn, change) {
				return
			}
		}
	}
}

// forward re-fetches the group and sends it. It returns false once the
// connection should end.
func (h *FeedHandler) forward(ctx context.Context, conn *websocket.Conn, change model.Change) bool {
	board, err := h.groupService.Leaderboard(ctx, change.GroupSlug)
	if errors.Is(err, model.ErrGroupNotFound) {
		_ = h.send(conn, response.FeedMessage{Type: response.FeedGone, Change: &change})
		h.close(conn)
		return false
	}
	if err != nil {
		// Skip this one; the next change re-fetches anyway
		h.logger.Error("feed failed to load leaderboard",
			slog.String("group", string(change.GroupSlug)),
			slog.String("error", err.Error()))
		return true
	}

	lb := response.LeaderboardFromModel(board)
	return h.send(conn, response.FeedMessage{Type: response.FeedLeaderboard, Change: &change, Leaderboard: &lb}) == nil
}

func (h *FeedHandler) send(conn *websocket.Conn, msg response.FeedMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (h *FeedHandler) close(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// readPump discards client frames and keeps the read deadline fresh. Any
// read error means the client has gone.
func (h *FeedHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
