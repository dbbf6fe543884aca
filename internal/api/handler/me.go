package handler

import (
	"net/http"

	"github.com/mcoot/whamageddon/internal/api/middleware"
	"github.com/mcoot/whamageddon/internal/api/request"
	"github.com/mcoot/whamageddon/internal/api/response"
	"github.com/mcoot/whamageddon/internal/services/player"
)

// ProfileHandler handles the requester's own profile and device recovery
type ProfileHandler struct {
	playerService *player.Service
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(playerService *player.Service) *ProfileHandler {
	return &ProfileHandler{
		playerService: playerService,
	}
}

// Get handles GET /api/v1/me
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.playerService.GetProfile(r.Context(), middleware.GetUser(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromService(profile))
}

// Update handles PATCH /api/v1/me
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateProfileRequest
	if err := decode(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	profile, err := h.playerService.UpdateProfile(r.Context(), middleware.GetUser(r.Context()), player.ProfileUpdate{
		Name:      req.Name,
		Company:   req.Company,
		AvatarURL: req.AvatarURL,
		PIN:       req.PIN,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromService(profile))
}

// Wham handles POST /api/v1/me/wham, eliminating the requester everywhere
func (h *ProfileHandler) Wham(w http.ResponseWriter, r *http.Request) {
	var req request.WhamRequest
	if err := decode(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	userID := middleware.GetUser(r.Context())
	if _, err := h.playerService.WhamUser(r.Context(), userID, req.Reason); err != nil {
		WriteError(w, err)
		return
	}

	profile, err := h.playerService.GetProfile(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ProfileFromService(profile))
}

// Recover handles POST /api/v1/recover. The client replaces its stored
// user id with the one returned.
func (h *ProfileHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req request.RecoverRequest
	if err := decode(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	recovery, err := h.playerService.Recover(r.Context(), req.Name, req.PIN)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RecoveryFromService(recovery))
}
