package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/whamageddon/internal/api/apierr"
	"github.com/mcoot/whamageddon/internal/identity"
	"github.com/mcoot/whamageddon/internal/model"
)

// Identity reads the user id from X-Wham-User or a bearer token into the
// context. Requests without one continue anonymously.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := identity.FromHeader(r); userID != "" {
				r = r.WithContext(identity.WithUser(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity rejects requests that carry no user id
func RequireIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity.UserFrom(r.Context()) == "" {
				apierr.WriteError(w, apierr.NewIdentityRequiredError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUser returns the requester's user id, or ""
func GetUser(ctx context.Context) model.UserID {
	return identity.UserFrom(ctx)
}
