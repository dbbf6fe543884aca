package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/whamageddon/internal/model"
)

func TestFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    model.UserID
	}{
		{"none", nil, ""},
		{"custom header", map[string]string{UserHeader: " u-1 "}, "u-1"},
		{"bearer", map[string]string{"Authorization": "Bearer u-2"}, "u-2"},
		{"custom header wins", map[string]string{UserHeader: "u-1", "Authorization": "Bearer u-2"}, "u-1"},
		{"basic ignored", map[string]string{"Authorization": "Basic abc"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, FromHeader(req))
		})
	}
}

func TestCookiesRoundTrip(t *testing.T) {
	rr := httptest.NewRecorder()
	SetUserCookie(rr, "u-1")
	SetPlayerCookie(rr, "office-1", "p-1")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		assert.Positive(t, c.MaxAge)
		req.AddCookie(c)
	}

	assert.Equal(t, model.UserID("u-1"), FromCookie(req))
	assert.Equal(t, model.PlayerID("p-1"), PlayerFromCookie(req, "office-1"))
	assert.Equal(t, model.PlayerID(""), PlayerFromCookie(req, "family-2"))
}

func TestClearPlayerCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	ClearPlayerCookie(rr, "office-1")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "wham_player_office-1", cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, model.UserID(""), UserFrom(ctx))
	assert.Equal(t, model.UserID("u-1"), UserFrom(WithUser(ctx, "u-1")))
}
