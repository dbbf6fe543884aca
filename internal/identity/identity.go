// Package identity reads and writes the client-held identifiers: a global
// user id per device and a player id per group. Neither is a credential;
// the server trusts what the client presents.
package identity

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/whamageddon/internal/model"
)

const (
	// UserCookie holds the device's global user id
	UserCookie = "wham_uid"
	// PlayerCookiePrefix is followed by the group slug
	PlayerCookiePrefix = "wham_player_"
	// UserHeader carries the user id on API requests
	UserHeader = "X-Wham-User"

	cookieMaxAge = 400 * 24 * time.Hour
)

type contextKey string

const userContextKey contextKey = "user"

// WithUser stores the user id in the context
func WithUser(ctx context.Context, userID model.UserID) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}

// UserFrom returns the user id stored in the context, or ""
func UserFrom(ctx context.Context) model.UserID {
	userID, _ := ctx.Value(userContextKey).(model.UserID)
	return userID
}

// FromHeader reads the user id from X-Wham-User, falling back to a bearer
// token
func FromHeader(r *http.Request) model.UserID {
	if v := strings.TrimSpace(r.Header.Get(UserHeader)); v != "" {
		return model.UserID(v)
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return model.UserID(strings.TrimSpace(token))
	}
	return ""
}

// FromCookie reads the user id cookie
func FromCookie(r *http.Request) model.UserID {
	cookie, err := r.Cookie(UserCookie)
	if err != nil {
		return ""
	}
	return model.UserID(cookie.Value)
}

// SetUserCookie stores the user id on the device
func SetUserCookie(w http.ResponseWriter, userID model.UserID) {
	setCookie(w, UserCookie, string(userID))
}

// PlayerCookieName is the cookie holding the player id for a group
func PlayerCookieName(slug model.GroupSlug) string {
	return PlayerCookiePrefix + string(slug)
}

// PlayerFromCookie reads the player id stored for a group
func PlayerFromCookie(r *http.Request, slug model.GroupSlug) model.PlayerID {
	cookie, err := r.Cookie(PlayerCookieName(slug))
	if err != nil {
		return ""
	}
	return model.PlayerID(cookie.Value)
}

// SetPlayerCookie stores the player id for a group
func SetPlayerCookie(w http.ResponseWriter, slug model.GroupSlug, id model.PlayerID) {
	setCookie(w, PlayerCookieName(slug), string(id))
}

// ClearPlayerCookie forgets the player id for a group
func ClearPlayerCookie(w http.ResponseWriter, slug model.GroupSlug) {
	http.SetCookie(w, &http.Cookie{
		Name:     PlayerCookieName(slug),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PlayerCookieSlugs lists the groups the request carries player cookies for
func PlayerCookieSlugs(r *http.Request) []model.GroupSlug {
	var slugs []model.GroupSlug
	for _, cookie := range r.Cookies() {
		if slug, ok := strings.CutPrefix(cookie.Name, PlayerCookiePrefix); ok && slug != "" {
			slugs = append(slugs, model.GroupSlug(slug))
		}
	}
	return slugs
}

func setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
