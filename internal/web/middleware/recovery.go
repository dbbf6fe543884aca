package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/whamageddon/internal/middleware"
)

// Recovery creates panic recovery middleware for the web interface.
// Returns an HTML error page on panic.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Error - Whamageddon</title></head>
<body>
<h1>Something broke</h1>
<p>That wasn't Last Christmas, just our server. Please try again.</p>
<p><a href="/">Back home</a></p>
</body>
</html>`))
}
