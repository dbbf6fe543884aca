package sse

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/whamageddon/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	cases := map[string]struct {
		event, data, want string
	}{
		"one line":         {"changed", "office-1", "event: changed\ndata: office-1\n\n"},
		"html fragment":    {"leaderboard", "<ul>\n  <li>Alice</li>\n</ul>", "event: leaderboard\ndata: <ul>\ndata:   <li>Alice</li>\ndata: </ul>\n\n"},
		"empty data":       {"ping", "", "event: ping\ndata: \n\n"},
		"crlf":             {"changed", "a\r\nb", "event: changed\ndata: a\ndata: b\n\n"},
		"trailing newline": {"changed", "a\n", "event: changed\ndata: a\n\n"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, string(formatSSEMessage(tc.event, tc.data)))
		})
	}
}

func newTestHub() *Hub {
	return NewHub("office-1", testutil.NopLogger())
}

func drain(client *Client) []string {
	var msgs []string
	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				return msgs
			}
			msgs = append(msgs, string(msg))
		default:
			return msgs
		}
	}
}

func TestHub_BroadcastReachesEveryViewer(t *testing.T) {
	hub := newTestHub()
	alice := NewClient(hub, "user-1")
	anon := NewClient(hub, "")
	require.True(t, hub.Register(alice))
	require.True(t, hub.Register(anon))
	assert.Equal(t, 2, hub.ClientCount())

	hub.BroadcastEvent(EventChanged, "office-1")

	want := []string{"event: changed\ndata: office-1\n\n"}
	assert.Equal(t, want, drain(alice))
	assert.Equal(t, want, drain(anon))
}

func TestHub_UnregisterClosesQueue(t *testing.T) {
	hub := newTestHub()
	client := NewClient(hub, "user-1")
	require.True(t, hub.Register(client))

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())
	_, ok := <-client.send
	assert.False(t, ok)

	// A second unregister must not close the queue twice
	hub.Unregister(client)
	hub.BroadcastEvent(EventChanged, "office-1")
}

func TestHub_SnapshotReplayedToNewViewers(t *testing.T) {
	hub := newTestHub()
	early := NewClient(hub, "user-1")
	require.True(t, hub.Register(early))

	hub.SetSnapshot(EventLeaderboard, "<p>Alice</p>")
	hub.BroadcastEvent(EventChanged, "office-1")
	assert.Len(t, drain(early), 2)

	late := NewClient(hub, "user-2")
	require.True(t, hub.Register(late))
	assert.Equal(t, []string{"event: leaderboard\ndata: <p>Alice</p>\n\n"}, drain(late),
		"only the snapshot is replayed")

	hub.ClearSnapshot()
	later := NewClient(hub, "user-3")
	require.True(t, hub.Register(later))
	assert.Empty(t, drain(later))
}

func TestHub_SlowViewerMissesEvents(t *testing.T) {
	hub := newTestHub()
	slow := NewClient(hub, "user-1")
	require.True(t, hub.Register(slow))

	for range sendBufferSize + 10 {
		hub.BroadcastEvent(EventChanged, "office-1")
	}
	assert.Len(t, drain(slow), sendBufferSize)
}

func TestHub_Close(t *testing.T) {
	hub := newTestHub()
	client := NewClient(hub, "user-1")
	require.True(t, hub.Register(client))

	hub.Close()
	_, ok := <-client.send
	assert.False(t, ok, "close disconnects viewers")
	assert.Equal(t, 0, hub.ClientCount())

	assert.False(t, hub.Register(NewClient(hub, "user-2")))
	hub.Unregister(client)
	hub.Close()
}

func TestHubManager_Hubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	assert.Nil(t, manager.GetHub("office-1"))

	hub := manager.GetOrCreateHub("office-1")
	assert.Same(t, hub, manager.GetOrCreateHub("office-1"))
	assert.Same(t, hub, manager.GetHub("office-1"))
	assert.Equal(t, "office-1", string(hub.Slug()))
	assert.NotSame(t, hub, manager.GetOrCreateHub("family-2"))

	manager.RemoveHub("office-1")
	assert.Nil(t, manager.GetHub("office-1"))
	assert.False(t, hub.Register(NewClient(hub, "user-1")), "removed hubs are closed")
	manager.RemoveHub("office-1")
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	idle := manager.GetOrCreateHub("office-1")
	watched := manager.GetOrCreateHub("family-2")
	require.True(t, watched.Register(NewClient(watched, "user-1")))

	manager.CleanupEmptyHubs()

	assert.Nil(t, manager.GetHub("office-1"))
	assert.Same(t, watched, manager.GetHub("family-2"))
	assert.False(t, idle.Register(NewClient(idle, "user-2")))
}

func TestHubManager_JoinSurvivesCleanup(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	const viewers = 50
	hubs := make([]*Hub, viewers)
	var wg sync.WaitGroup
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				manager.CleanupEmptyHubs()
			}
		}
	}()
	for i := range viewers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hubs[i], _ = manager.Join("office-1", "user-1")
		}()
	}
	wg.Wait()
	close(stop)

	current := manager.GetHub("office-1")
	require.NotNil(t, current)
	assert.Equal(t, viewers, current.ClientCount())
	for _, hub := range hubs {
		assert.Same(t, current, hub, "a hub with viewers is never cleaned up")
	}
}

func TestHubManager_JoinReplaysSnapshot(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	manager.GetOrCreateHub("office-1").SetSnapshot(EventLeaderboard, "<p>Alice</p>")

	hub, client := manager.Join("office-1", "user-1")
	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, []string{"event: leaderboard\ndata: <p>Alice</p>\n\n"}, drain(client))

	hub.Unregister(client)
	manager.CleanupEmptyHubs()
	assert.Nil(t, manager.GetHub("office-1"))
}

func TestHubManager_CloseAll(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	hub := manager.GetOrCreateHub("office-1")
	client := NewClient(hub, "user-1")
	require.True(t, hub.Register(client))

	manager.CloseAll()

	_, ok := <-client.send
	assert.False(t, ok)
	assert.Nil(t, manager.GetHub("office-1"))
}
