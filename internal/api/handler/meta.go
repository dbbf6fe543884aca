package handler

import (
	"net/http"

	"github.com/mcoot/whamageddon/internal/api/response"
	"github.com/mcoot/whamageddon/internal/services/season"
	"github.com/mcoot/whamageddon/internal/services/stats"
)

// MetaHandler serves the endpoints that are not about one group
type MetaHandler struct {
	statsService  *stats.Service
	seasonService *season.Service
}

// NewMetaHandler creates a new meta handler
func NewMetaHandler(statsService *stats.Service, seasonService *season.Service) *MetaHandler {
	return &MetaHandler{
		statsService:  statsService,
		seasonService: seasonService,
	}
}

// Health handles GET /api/v1/health
func (h *MetaHandler) Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Countdown handles GET /api/v1/countdown
func (h *MetaHandler) Countdown(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.CountdownFromService(h.seasonService.Countdown()))
}

// Stats handles GET /api/v1/stats
func (h *MetaHandler) Stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.statsService.Summary(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StatsFromService(summary))
}
