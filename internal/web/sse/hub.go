package sse

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/whamageddon/internal/model"
)

// Hub fans events out to the browsers watching one group. It remembers the
// last rendered leaderboard so a viewer who connects between changes starts
// from the current standings.
type Hub struct {
	slug   model.GroupSlug
	logger *slog.Logger

	mu       sync.Mutex
	viewers  map[*Client]struct{}
	snapshot []byte
	closed   bool
}

// NewHub creates a Hub for a group
func NewHub(slug model.GroupSlug, logger *slog.Logger) *Hub {
	return &Hub{
		slug:    slug,
		logger:  logger.With(slog.String("group", string(slug))),
		viewers: make(map[*Client]struct{}),
	}
}

// Register adds a viewer and queues the current snapshot for it. It
// returns false once the hub is closed.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.viewers[client] = struct{}{}
	if h.snapshot != nil {
		client.send <- h.snapshot
	}
	h.logger.Info("sse viewer joined",
		slog.String("user_id", string(client.userID)),
		slog.Int("viewers", len(h.viewers)))
	return true
}

// Unregister removes a viewer and closes its queue
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.viewers[client]; !ok {
		return
	}
	delete(h.viewers, client)
	close(client.send)
	h.logger.Info("sse viewer left",
		slog.String("user_id", string(client.userID)),
		slog.Duration("watched_for", time.Since(client.connectedAt)),
		slog.Int("viewers", len(h.viewers)))
}

// BroadcastEvent sends an event to every viewer. A viewer whose queue is
// full misses it; the next leaderboard carries the whole state again.
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.fanOut(formatSSEMessage(eventName, data))
}

// SetSnapshot broadcasts an event and keeps it for viewers who join later
func (h *Hub) SetSnapshot(eventName, data string) {
	msg := formatSSEMessage(eventName, data)
	h.mu.Lock()
	h.snapshot = msg
	h.mu.Unlock()
	h.fanOut(msg)
}

// ClearSnapshot forgets the kept event
func (h *Hub) ClearSnapshot() {
	h.mu.Lock()
	h.snapshot = nil
	h.mu.Unlock()
}

func (h *Hub) fanOut(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	dropped := 0
	for client := range h.viewers {
		select {
		case client.send <- msg:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("sse event dropped for slow viewers",
			slog.Int("dropped", dropped),
			slog.Int("viewers", len(h.viewers)))
	}
}

// Close disconnects every viewer. Registering afterwards fails.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for client := range h.viewers {
		close(client.send)
	}
	h.logger.Info("sse hub closed", slog.Int("disconnected", len(h.viewers)))
	h.viewers = nil
}

// Slug returns the group this hub serves
func (h *Hub) Slug() model.GroupSlug {
	return h.slug
}

// ClientCount returns the number of connected viewers
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// formatSSEMessage frames one event. Every data line gets its own prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + eventName + "\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager owns one hub per watched group
type HubManager struct {
	mu     sync.Mutex
	hubs   map[model.GroupSlug]*Hub
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.GroupSlug]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the group's hub, creating it for the first viewer
func (m *HubManager) GetOrCreateHub(slug model.GroupSlug) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubLocked(slug)
}

// Join registers a new viewer with the group's hub, creating the hub if
// needed. Holding the manager lock means cleanup cannot close the hub
// between lookup and registration.
func (m *HubManager) Join(slug model.GroupSlug, userID model.UserID) (*Hub, *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub := m.hubLocked(slug)
	client := NewClient(hub, userID)
	hub.Register(client)
	return hub, client
}

// hubLocked must be called with m.mu held
func (m *HubManager) hubLocked(slug model.GroupSlug) *Hub {
	hub, ok := m.hubs[slug]
	if !ok {
		hub = NewHub(slug, m.logger)
		m.hubs[slug] = hub
	}
	return hub
}

// GetHub returns the group's hub, or nil when nobody watches it
func (m *HubManager) GetHub(slug model.GroupSlug) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[slug]
}

// RemoveHub closes and forgets the group's hub
func (m *HubManager) RemoveHub(slug model.GroupSlug) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[slug]; ok {
		hub.Close()
		delete(m.hubs, slug)
	}
}

// CleanupEmptyHubs drops hubs nobody is watching
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for slug, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, slug)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("sse idle hubs removed", slog.Int("removed", removed))
	}
}

// CloseAll closes every hub, ending all streams
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for slug, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, slug)
	}
}
