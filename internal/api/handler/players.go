package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/whamageddon/internal/api/middleware"
	"github.com/mcoot/whamageddon/internal/api/request"
	"github.com/mcoot/whamageddon/internal/api/response"
	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/services/player"
)

// PlayerHandler handles endpoints keyed by a single player row
type PlayerHandler struct {
	playerService *player.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService *player.Service) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
	}
}

func playerIDFrom(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["id"])
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.playerService.GetPlayer(r.Context(), playerIDFrom(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	if requester := middleware.GetUser(r.Context()); requester != "" && requester == p.UserID {
		response.JSON(w, http.StatusOK, response.OwnPlayerFromModel(p))
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(p))
}

// Wham handles POST /api/v1/players/{id}/wham
func (h *PlayerHandler) Wham(w http.ResponseWriter, r *http.Request) {
	var req request.WhamRequest
	if err := decode(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	p, err := h.playerService.Wham(r.Context(), playerIDFrom(r), middleware.GetUser(r.Context()), req.Reason)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(p))
}

// Revive handles POST /api/v1/players/{id}/revive
func (h *PlayerHandler) Revive(w http.ResponseWriter, r *http.Request) {
	p, err := h.playerService.Revive(r.Context(), playerIDFrom(r), middleware.GetUser(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(p))
}

// Delete handles DELETE /api/v1/players/{id}
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.playerService.Delete(r.Context(), playerIDFrom(r), middleware.GetUser(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
