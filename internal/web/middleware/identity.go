package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/whamageddon/internal/identity"
	"github.com/mcoot/whamageddon/internal/model"
)

type contextKey string

// GetUser returns the device's user id, or "" for a first visit
func GetUser(ctx context.Context) model.UserID {
	return identity.UserFrom(ctx)
}

// Identity reads the user id cookie into the request context. A missing
// cookie is not an error: the id is issued on the first join.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := identity.FromCookie(r); userID != "" {
				ctx = identity.WithUser(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
