package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/services/group"
	"github.com/mcoot/whamageddon/internal/services/season"
	"github.com/mcoot/whamageddon/internal/services/stats"
	"github.com/mcoot/whamageddon/internal/web/middleware"
	"github.com/mcoot/whamageddon/internal/web/templates/layout"
	"github.com/mcoot/whamageddon/internal/web/templates/pages"
)

// HomeHandler handles the landing page
type HomeHandler struct {
	groupService  *group.Service
	statsService  *stats.Service
	seasonService *season.Service
	logger        *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(groupService *group.Service, statsService *stats.Service, seasonService *season.Service, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		groupService:  groupService,
		statsService:  statsService,
		seasonService: seasonService,
		logger:        logger,
	}
}

// Home renders the countdown, the user's groups and the create form
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUser(r.Context())

	var groups []*model.Group
	if userID != "" {
		var err error
		groups, err = h.groupService.ListGroupsForUser(r.Context(), userID)
		if err != nil {
			h.logger.Warn("could not list groups", slog.String("user_id", string(userID)), slog.Any("error", err))
		}
	}

	// Stats are decoration; the page works without them
	summary, err := h.statsService.Summary(r.Context())
	if err != nil {
		h.logger.Warn("could not load stats", slog.Any("error", err))
	}

	data := pages.HomeData{
		PageData: layout.PageData{
			UserID: userID,
			Flash:  middleware.GetFlash(r.Context()),
		},
		Countdown: h.seasonService.Countdown(),
		Groups:    groups,
		Stats:     summary,
	}
	render(w, r, http.StatusOK, pages.Home(data))
}

// NotFound renders the 404 page
func (h *HomeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusNotFound, pages.NotFound(layout.PageData{
		Title:  "Not found",
		UserID: middleware.GetUser(r.Context()),
		Flash:  middleware.GetFlash(r.Context()),
	}))
}
