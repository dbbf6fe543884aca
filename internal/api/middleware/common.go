package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/whamageddon/internal/api/apierr"
	"github.com/mcoot/whamageddon/internal/middleware"
)

// Recovery turns a panicking handler into a JSON internal error
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// Logging tags each request with an id and logs it once it completes. Place
// it after Identity so the log line carries the user id.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	requestID := middleware.RequestID()
	logging := middleware.Logging(logger)
	return func(next http.Handler) http.Handler {
		return requestID(logging(next))
	}
}
