package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/whamageddon/internal/api/handler"
	"github.com/mcoot/whamageddon/internal/api/middleware"
	"github.com/mcoot/whamageddon/internal/changefeed"
	"github.com/mcoot/whamageddon/internal/services/group"
	"github.com/mcoot/whamageddon/internal/services/player"
	"github.com/mcoot/whamageddon/internal/services/season"
	"github.com/mcoot/whamageddon/internal/services/stats"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	GroupService  *group.Service
	PlayerService *player.Service
	StatsService  *stats.Service
	SeasonService *season.Service
	Feed          changefeed.Feed
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	metaHandler := handler.NewMetaHandler(cfg.StatsService, cfg.SeasonService)
	groupHandler := handler.NewGroupHandler(cfg.GroupService, cfg.PlayerService, cfg.StatsService)
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService)
	profileHandler := handler.NewProfileHandler(cfg.PlayerService)
	feedHandler := handler.NewFeedHandler(cfg.GroupService, cfg.Feed, cfg.Logger)

	requireIdentity := middleware.RequireIdentity()

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Identity())
	api.Use(middleware.Logging(cfg.Logger))

	api.HandleFunc("/health", metaHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/countdown", metaHandler.Countdown).Methods(http.MethodGet)
	api.HandleFunc("/stats", metaHandler.Stats).Methods(http.MethodGet)

	// Groups are public to read; the creator administers them
	api.HandleFunc("/groups", groupHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/groups/{slug}", groupHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/groups/{slug}/stats", groupHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/groups/{slug}/players", groupHandler.Players).Methods(http.MethodGet)
	api.HandleFunc("/groups/{slug}/players", groupHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/groups/{slug}/feed", feedHandler.Serve).Methods(http.MethodGet)
	api.Handle("/groups/{slug}/password",
		requireIdentity(http.HandlerFunc(groupHandler.SetPassword))).Methods(http.MethodPut)

	// Player rows. Whamming a row without an owner needs no identity.
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/wham", playerHandler.Wham).Methods(http.MethodPost)
	api.Handle("/players/{id}/revive",
		requireIdentity(http.HandlerFunc(playerHandler.Revive))).Methods(http.MethodPost)
	api.Handle("/players/{id}",
		requireIdentity(http.HandlerFunc(playerHandler.Delete))).Methods(http.MethodDelete)

	// The requester's own profile
	me := api.PathPrefix("/me").Subrouter()
	me.Use(requireIdentity)
	me.HandleFunc("", profileHandler.Get).Methods(http.MethodGet)
	me.HandleFunc("", profileHandler.Update).Methods(http.MethodPatch)
	me.HandleFunc("/wham", profileHandler.Wham).Methods(http.MethodPost)

	api.HandleFunc("/recover", profileHandler.Recover).Methods(http.MethodPost)

	return r
}
