package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/whamageddon/internal/dependencies/random"
	"github.com/mcoot/whamageddon/internal/services/group"
	"github.com/mcoot/whamageddon/internal/services/player"
	"github.com/mcoot/whamageddon/internal/services/season"
	"github.com/mcoot/whamageddon/internal/services/stats"
	"github.com/mcoot/whamageddon/internal/web/handler"
	"github.com/mcoot/whamageddon/internal/web/middleware"
	"github.com/mcoot/whamageddon/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger        *slog.Logger
	GroupService  *group.Service
	PlayerService *player.Service
	StatsService  *stats.Service
	SeasonService *season.Service
	Random        random.Random
	HubManager    *sse.HubManager
	StaticDir     string // Path to static files directory
	PublicURL     string // Base URL for share links, derived from requests if empty
}

// slugPattern matches group slugs, which always end in -<number>, so
// they never collide with the fixed top-level paths
const slugPattern = "{slug:[a-z0-9-]+}"

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	identityMiddleware := middleware.Identity()
	loggingMiddleware := middleware.Logging(cfg.Logger)
	flashMiddleware := middleware.Flash()

	// Identity runs before logging so the user id is logged
	r.Use(recoveryMiddleware)
	r.Use(identityMiddleware)
	r.Use(loggingMiddleware)

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}

	homeHandler := handler.NewHomeHandler(cfg.GroupService, cfg.StatsService, cfg.SeasonService, cfg.Logger)
	profileHandler := handler.NewProfileHandler(cfg.PlayerService, cfg.Logger)
	groupHandler := handler.NewGroupHandler(
		cfg.GroupService,
		cfg.PlayerService,
		cfg.SeasonService,
		cfg.Random,
		hubManager,
		cfg.PublicURL,
		cfg.Logger,
	)

	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Streams and fragments skip the flash middleware so they never
	// consume a message meant for the next full page
	live := r.PathPrefix("/" + slugPattern).Subrouter()
	live.HandleFunc("/events", groupHandler.Events).Methods(http.MethodGet)
	live.HandleFunc("/me", groupHandler.MyStatus).Methods(http.MethodGet)
	live.HandleFunc("/admin", groupHandler.AdminPanel).Methods(http.MethodGet)
	live.HandleFunc("/qr.png", groupHandler.QR).Methods(http.MethodGet)

	pages := r.NewRoute().Subrouter()
	pages.Use(flashMiddleware)

	pages.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)

	pages.HandleFunc("/profile", profileHandler.View).Methods(http.MethodGet)
	pages.HandleFunc("/profile", profileHandler.Update).Methods(http.MethodPost)
	pages.HandleFunc("/profile/recover", profileHandler.Recover).Methods(http.MethodPost)
	pages.HandleFunc("/profile/wham", profileHandler.Wham).Methods(http.MethodPost)

	pages.HandleFunc("/groups", groupHandler.Create).Methods(http.MethodPost)

	pages.HandleFunc("/"+slugPattern, groupHandler.View).Methods(http.MethodGet)
	pages.HandleFunc("/"+slugPattern+"/join", groupHandler.Join).Methods(http.MethodPost)
	pages.HandleFunc("/"+slugPattern+"/wham", groupHandler.Wham).Methods(http.MethodPost)
	pages.HandleFunc("/"+slugPattern+"/password", groupHandler.SetPassword).Methods(http.MethodPost)
	pages.HandleFunc("/"+slugPattern+"/players/{id}/revive", groupHandler.Revive).Methods(http.MethodPost)
	pages.HandleFunc("/"+slugPattern+"/players/{id}/delete", groupHandler.Delete).Methods(http.MethodPost)

	// mux does not run middleware for unmatched routes
	r.NotFoundHandler = recoveryMiddleware(identityMiddleware(flashMiddleware(http.HandlerFunc(homeHandler.NotFound))))

	return r
}
