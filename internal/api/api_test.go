package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/whamageddon/internal/api"
	"github.com/mcoot/whamageddon/internal/api/apierr"
	"github.com/mcoot/whamageddon/internal/api/response"
	"github.com/mcoot/whamageddon/internal/factory"
	"github.com/mcoot/whamageddon/internal/identity"
	"github.com/mcoot/whamageddon/internal/testutil"
)

// testServer routes requests through the API with mocked clock and ids
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:        testutil.NopLogger(),
		GroupService:  app.GroupService,
		PlayerService: app.PlayerService,
		StatsService:  app.StatsService,
		SeasonService: app.SeasonService,
		Feed:          app.Feed,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, userID string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(identity.UserHeader, userID)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	resp := decodeBody[apierr.ErrorResponse](t, rr)
	assert.Equal(t, code, resp.Error.Code)
}

func createGroup(t *testing.T, ts *testServer, name, password, userID string) response.Group {
	t.Helper()
	body := map[string]string{"name": name, "password": password}
	rr := ts.request(http.MethodPost, "/api/v1/groups", body, userID)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[response.Group](t, rr)
}

func join(t *testing.T, ts *testServer, slug string, body map[string]string, userID string) response.JoinResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/groups/"+slug+"/players", body, userID)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[response.JoinResponse](t, rr)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCountdown(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/countdown", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	c := decodeBody[response.Countdown](t, rr)
	assert.Equal(t, "2025-12-10", c.Today)
	assert.Equal(t, "2025-12-24", c.Cutoff)
	assert.Equal(t, 14, c.DaysRemaining)
	assert.Equal(t, "active", c.Phase)
}

func TestCreateAndGetGroup(t *testing.T) {
	ts := newTestServer(t)

	g := createGroup(t, ts, "Office Party", "", "u-admin")
	assert.Equal(t, "Office Party", g.Name)
	assert.Equal(t, "office-party-0", g.Slug)
	assert.Equal(t, "u-admin", g.CreatorID)
	assert.False(t, g.HasPassword)

	rr := ts.request(http.MethodGet, "/api/v1/groups/"+g.Slug, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	board := decodeBody[response.Leaderboard](t, rr)
	assert.Equal(t, g.Slug, board.Group.Slug)
	assert.Empty(t, board.Players)
	assert.NotNil(t, board.Survivors)
	assert.NotNil(t, board.Fallen)
}

func TestCreateGroupValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/groups", map[string]string{"name": "   "}, "")
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeGroupNameMissing)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups", strings.NewReader("{not json"))
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)
}

func TestGroupNotFound(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/v1/groups/missing-1",
		"/api/v1/groups/missing-1/players",
		"/api/v1/groups/missing-1/stats",
		"/api/v1/groups/missing-1/feed",
	} {
		rr := ts.request(http.MethodGet, path, nil, "")
		assertErrorCode(t, rr, http.StatusNotFound, apierr.CodeGroupNotFound)
	}
}

func TestJoinIssuesUserID(t *testing.T) {
	ts := newTestServer(t)
	g := createGroup(t, ts, "Office", "", "")

	resp := join(t, ts, g.Slug, map[string]string{"name": "Alice", "company": "Acme", "pin": "1234"}, "")

	assert.NotEmpty(t, resp.UserID)
	assert.Equal(t, resp.UserID, resp.Player.UserID)
	assert.Equal(t, "Alice", resp.Player.Name)
	assert.Equal(t, "Acme", resp.Player.Company)
	assert.Equal(t, "1234", resp.Player.PIN, "the joiner sees their own PIN")
	assert.Equal(t, "alive", resp.Player.Status)
}

func TestJoinKeepsPresentedUserID(t *testing.T) {
	ts := newTestServer(t)
	g := createGroup(t, ts, "Office", "", "")

	resp := join(t, ts, g.Slug, map[string]string{"name": "Alice"}, "u-alice")
	assert.Equal(t, "u-alice", resp.UserID)

	// Bearer tokens carry the same identifier
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer u-alice")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Alice", decodeBody[response.Profile](t, rr).Name)
}

func TestJoinValidation(t *testing.T) {
	ts := newTestServer(t)
	g := createGroup(t, ts, "Office", "", "")

	rr := ts.request(http.MethodPost, "/api/v1/groups/"+g.Slug+"/players", map[string]string{"name": ""}, "u-1")
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodePlayerNameMissing)

	rr = ts.request(http.MethodPost, "/api/v1/groups/"+g.Slug+"/players", map[string]string{"name": "Al", "pin": "12a4"}, "u-1")
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidPIN)

	join(t, ts, g.Slug, map[string]string{"name": "Al"}, "u-1")
	rr = ts.request(http.MethodPost, "/api/v1/groups/"+g.Slug+"/players", map[string]string{"name": "Al"}, "u-1")
	assertErrorCode(t, rr, http.StatusConflict, apierr.CodeAlreadyInGroup)
}

func TestJoinPasswordProtectedGroup(t *testing.T) {
	ts := newTestServer(t)
	g := createGroup(t, ts, "Secret", "hunter2", "u-admin")
	assert.True(t, g.HasPassword)

	rr := ts.request(http.MethodPost, "/api/v1/groups/"+g.Slug+"/players", map[string]string{"name": "Eve"}, "")
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodeWrongPassword)

	rr = ts.request(http.MethodPost, "/api/v1/groups/"+g.Slug+"/players",
		map[string]string{"name": "Eve", "password": "nope"}, "")
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodeWrongPassword)

	join(t, ts, g.Slug, map[string]string{"name": "Bob", "password": "hunter2"}, "")
}

func TestWhamMovesPlayerToFallen(t *testing.T) {
	ts := newTestServer(t)
	g := createGroup(t, ts, "Office", "", "")
	alice := join(t, ts, g.Slug, map[string]string{"name": "Alice"}, "u-alice")
	join(t, ts, g.Slug, map[string]string{"name": "Bob"}, "u-bob")

	ts.app.MockClock.Advance(time.Hour)
	rr := ts.request(http.MethodPost, "/api/v1/players/"+alice.Player.ID+"/wham",
		map[string]string{"reason": "supermarket radio"}, "u-alice")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	whammed := decodeBody[response.Player](t, rr)
	assert.Equal(t, "whammed", whammed.Status)
	require.NotNil(t, whammed.WhammedAt)
	assert.Empty(t, whammed.PIN)

	rr = ts.request(http.MethodGet, "/api/v1/groups/"+g.Slug, nil, "")
	board := decodeBody[response.Leaderboard](t, rr)
	require.Len(t, board.Survivors, 1)
	require.Len(t, board.Fallen, 1)
	assert.Equal(t, "Bob", board.Survivors[0].Name)
	assert.Equal(t, "Alice", board.Fallen[0].Name)
	assert.Equal(t, "supermarket radio", board.Fallen[0].WhamReason)
	assert.Equal(t, "Bob", board.Players[0].Name, "survivors sort first")

	rr = ts.request(http.MethodPost, "/api/v1/players/"+alice.Player.ID+"/wham", nil, "u-alice")
	assertErrorCode(t, rr, http.StatusConflict, apierr.CodeAlreadyWhammed)
}

func TestWhamSomeoneElse(t *testing.T) {
	ts := newTestServer(t)
	g := createGroup(t, ts, "Office", "", "u-admin")
	alice := join(t, ts, g.Slug, map[string]string{"name": "Alice"}, "u-alice")

	rr := ts.request(http.MethodPost, "/api/v1/players/"+alice.Player.ID+"/wham", nil, "u-bob")
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodeNotYourPlayer)

	rr = ts.request(http.MethodPost, "/api/v1/players/"+alice.Player.ID+"/wham", nil, "u-admin")
	assert.Equal(t, http.StatusOK, rr.Code, "the group admin may wham anyone")

	rr = ts.request(http.MethodPost, "/api/v1/players/missing/wham", nil, "u-admin")
	assertErrorCode(t, rr, http.StatusNotFound, apierr.CodePlayerNotFound)
}

func TestWhamAppliesEverywhere(t *testing.T) {
	ts := newTestServer(t)
	office := createGroup(t, ts, "Office", "", "")
	family := createGroup(t, ts, "Family", "", "")
	inOffice := join(t, ts, office.Slug, map[string]string{"name": "Alice"}, "u-alice")
	join(t, ts, family.Slug, map[string]string{"name": "Alice"}, "u-alice")

	rr := ts.request(http.MethodPost, "/api/v1/players/"+inOffice.Player.ID+"/wham", nil, "u-alice")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/groups/"+family.Slug, nil, "")
	board := decodeBody[response.Leaderboard](t, rr)
	require.Len(t, board.Fallen, 1)
	assert.Equal(t, "Alice", board.Fallen[0].Name)
}

func TestReviveAndDeleteAreAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	g := createGroup(t, ts, "Office", "", "u-admin")
	alice := join(t, ts, g.Slug, map[string]string{"name": "Alice"}, "u-alice")
	path := "/api/v1/players/" + alice.Player.ID

	rr := ts.request(http.MethodPost, path+"/revive", nil, "")
	assertErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeIdentityRequired)

	rr = ts.request(http.MethodPost, path+"/revive", nil, "u-admin")
	assertErrorCode(t, rr, http.StatusConflict, apierr.CodeNotWhammed)

	require.Equal(t, http.StatusOK, ts.request(http.MethodPost, path+"/wham", nil, "u-alice").Code)

	rr = ts.request(http.MethodPost, path+"/revive", nil, "u-alice")
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodeNotGroupAdmin)

	rr = ts.request(http.MethodPost, path+"/revive", nil, "u-admin")
	require.Equal(t, http.StatusOK, rr.Code)
	revived := decodeBody[response.Player](t, rr)
	assert.Equal(t, "alive", revived.Status)
	assert.Nil(t, revived.WhammedAt)

	rr = ts.request(http.MethodDelete, path, nil, "u-alice")
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodeNotGroupAdmin)

	rr = ts.request(http.MethodDelete, path, nil, "u-admin")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, path, nil, "")
	assertErrorCode(t, rr, http.StatusNotFound, apierr.CodePlayerNotFound)
}

func TestGetPlayerHidesPIN(t *testing.T) {
	ts := newTestServer(t)
	g := createGroup(t, ts, "Office", "", "")
	alice := join(t, ts, g.Slug, map[string]string{"name": "Alice", "pin": "4321"}, "u-alice")
	path := "/api/v1/players/" + alice.Player.ID

	other := decodeBody[response.Player](t, ts.request(http.MethodGet, path, nil, "u-bob"))
	assert.Empty(t, other.PIN)

	own := decodeBody[response.Player](t, ts.request(http.MethodGet, path, nil, "u-alice"))
	assert.Equal(t, "4321", own.PIN)

	rr := ts.request(http.MethodGet, "/api/v1/groups/"+g.Slug+"/players", nil, "u-alice")
	require.Equal(t, http.StatusOK, rr.Code)
	players := decodeBody[[]response.Player](t, rr)
	require.Len(t, players, 1)
	assert.Empty(t, players[0].PIN, "listings never carry PINs")
}

func TestSetPassword(t *testing.T) {
	ts := newTestServer(t)
	g := createGroup(t, ts, "Office", "", "u-admin")
	path := "/api/v1/groups/" + g.Slug + "/password"

	rr := ts.request(http.MethodPut, path, map[string]string{"password": "sleigh"}, "u-bob")
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodeNotGroupAdmin)

	rr = ts.request(http.MethodPut, path, map[string]string{"password": "sleigh"}, "u-admin")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeBody[response.Group](t, rr).HasPassword)

	rr = ts.request(http.MethodPost, "/api/v1/groups/"+g.Slug+"/players", map[string]string{"name": "Eve"}, "")
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodeWrongPassword)

	rr = ts.request(http.MethodPut, path, map[string]string{"password": ""}, "u-admin")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeBody[response.Group](t, rr).HasPassword)
}

func TestProfile(t *testing.T) {
	ts := newTestServer(t)
	office := createGroup(t, ts, "Office", "", "")
	family := createGroup(t, ts, "Family", "", "")

	rr := ts.request(http.MethodGet, "/api/v1/me", nil, "")
	assertErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeIdentityRequired)

	rr = ts.request(http.MethodGet, "/api/v1/me", nil, "u-nobody")
	assertErrorCode(t, rr, http.StatusNotFound, apierr.CodeProfileNotFound)

	join(t, ts, office.Slug, map[string]string{"name": "Alice", "pin": "1111"}, "u-alice")
	ts.app.MockClock.Advance(time.Minute)
	join(t, ts, family.Slug, map[string]string{"name": "Ali"}, "u-alice")

	rr = ts.request(http.MethodGet, "/api/v1/me", nil, "u-alice")
	require.Equal(t, http.StatusOK, rr.Code)
	profile := decodeBody[response.Profile](t, rr)
	assert.Equal(t, "Alice", profile.Name, "the earliest row is the profile")
	assert.Equal(t, "1111", profile.PIN)
	assert.Len(t, profile.Players, 2)

	rr = ts.request(http.MethodPatch, "/api/v1/me", map[string]string{"name": "Alice B", "company": "Acme"}, "u-alice")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	profile = decodeBody[response.Profile](t, rr)
	assert.Equal(t, "Alice B", profile.Name)
	for _, p := range profile.Players {
		assert.Equal(t, "Alice B", p.Name)
		assert.Equal(t, "Acme", p.Company)
		assert.Equal(t, "1111", p.PIN, "omitted fields are unchanged")
	}

	rr = ts.request(http.MethodPatch, "/api/v1/me", map[string]string{"pin": "12"}, "u-alice")
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidPIN)

	rr = ts.request(http.MethodPost, "/api/v1/me/wham", map[string]string{"reason": "office party"}, "u-alice")
	require.Equal(t, http.StatusOK, rr.Code)
	profile = decodeBody[response.Profile](t, rr)
	assert.Equal(t, "whammed", profile.Status)
	for _, p := range profile.Players {
		assert.Equal(t, "whammed", p.Status)
		assert.Equal(t, "office party", p.WhamReason)
	}
}

func TestRecover(t *testing.T) {
	ts := newTestServer(t)
	office := createGroup(t, ts, "Office", "", "")
	family := createGroup(t, ts, "Family", "", "")
	alice := join(t, ts, office.Slug, map[string]string{"name": "Alice", "pin": "2468"}, "")

	rr := ts.request(http.MethodPost, "/api/v1/recover", map[string]string{"name": " alice ", "pin": "2468"}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	recovery := decodeBody[response.Recovery](t, rr)
	assert.Equal(t, alice.UserID, recovery.UserID)
	require.Len(t, recovery.Players, 1)
	assert.Equal(t, alice.Player.ID, recovery.Players[0].ID)

	rr = ts.request(http.MethodPost, "/api/v1/recover", map[string]string{"name": "Alice", "pin": "0000"}, "")
	assertErrorCode(t, rr, http.StatusNotFound, apierr.CodeRecoveryNoMatch)

	rr = ts.request(http.MethodPost, "/api/v1/recover", map[string]string{"name": "Alice", "pin": "24"}, "")
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidPIN)

	// A second person choosing the same name and PIN makes recovery ambiguous
	join(t, ts, family.Slug, map[string]string{"name": "Alice", "pin": "2468"}, "")
	rr = ts.request(http.MethodPost, "/api/v1/recover", map[string]string{"name": "Alice", "pin": "2468"}, "")
	assertErrorCode(t, rr, http.StatusConflict, apierr.CodeRecoveryAmbiguous)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)
	office := createGroup(t, ts, "Office", "", "")
	family := createGroup(t, ts, "Family", "", "")
	alice := join(t, ts, office.Slug, map[string]string{"name": "Alice"}, "u-alice")
	join(t, ts, office.Slug, map[string]string{"name": "Bob"}, "u-bob")
	join(t, ts, family.Slug, map[string]string{"name": "Alice"}, "u-alice")
	join(t, ts, family.Slug, map[string]string{"name": "Carol"}, "u-carol")

	// Alice's wham reaches both of her groups
	require.Equal(t, http.StatusOK,
		ts.request(http.MethodPost, "/api/v1/players/"+alice.Player.ID+"/wham", nil, "u-alice").Code)

	rr := ts.request(http.MethodGet, "/api/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	s := decodeBody[response.Stats](t, rr)
	assert.Equal(t, 2, s.Groups)
	assert.Equal(t, 3, s.Users)
	assert.Equal(t, 4, s.Players)
	assert.Equal(t, 2, s.Alive)
	assert.Equal(t, 2, s.Whammed)
	assert.InDelta(t, 0.5, s.SurvivalRate, 0.0001)
	require.Len(t, s.Ranking, 2)

	rr = ts.request(http.MethodGet, "/api/v1/groups/"+office.Slug+"/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	gs := decodeBody[response.GroupStats](t, rr)
	assert.Equal(t, office.Slug, gs.Slug)
	assert.Equal(t, 2, gs.Players)
	assert.Equal(t, 1, gs.Alive)
}

func TestFeedStreamsLeaderboard(t *testing.T) {
	ts := newTestServer(t)
	g := createGroup(t, ts, "Office", "", "")
	other := createGroup(t, ts, "Family", "", "")

	server := httptest.NewServer(ts.handler)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/groups/" + g.Slug + "/feed"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	read := func() response.FeedMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg response.FeedMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	msg := read()
	assert.Equal(t, response.FeedSnapshot, msg.Type)
	require.NotNil(t, msg.Leaderboard)
	assert.Equal(t, g.Slug, msg.Leaderboard.Group.Slug)
	assert.Empty(t, msg.Leaderboard.Players)

	// Changes to other groups are filtered out
	join(t, ts, other.Slug, map[string]string{"name": "Zed"}, "")
	alice := join(t, ts, g.Slug, map[string]string{"name": "Alice"}, "u-alice")

	msg = read()
	assert.Equal(t, response.FeedLeaderboard, msg.Type)
	require.NotNil(t, msg.Change)
	assert.Equal(t, g.Slug, string(msg.Change.GroupSlug))
	require.NotNil(t, msg.Leaderboard)
	require.Len(t, msg.Leaderboard.Survivors, 1)
	assert.Equal(t, "Alice", msg.Leaderboard.Survivors[0].Name)

	require.Equal(t, http.StatusOK,
		ts.request(http.MethodPost, "/api/v1/players/"+alice.Player.ID+"/wham", nil, "u-alice").Code)

	msg = read()
	assert.Equal(t, response.FeedLeaderboard, msg.Type)
	require.Len(t, msg.Leaderboard.Fallen, 1)
	assert.Equal(t, "Alice", msg.Leaderboard.Fallen[0].Name)
}

func TestFeedEndsWhenClientLeaves(t *testing.T) {
	ts := newTestServer(t)
	g := createGroup(t, ts, "Office", "", "")

	server := httptest.NewServer(ts.handler)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/groups/" + g.Slug + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	var msg response.FeedMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Eventually(t, func() bool { return ts.app.MemoryFeed.SubscriberCount() == 1 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return ts.app.MemoryFeed.SubscriberCount() == 0 },
		2*time.Second, 10*time.Millisecond, "the subscription is released")
}
