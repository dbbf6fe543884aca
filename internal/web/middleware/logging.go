package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/whamageddon/internal/middleware"
)

// Logging creates logging middleware for the web interface. Requests are
// tagged with a request id first so handler logs can be correlated.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	requestID := middleware.RequestID()
	logging := middleware.Logging(logger)
	return func(next http.Handler) http.Handler {
		return requestID(logging(next))
	}
}
