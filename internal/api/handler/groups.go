package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/whamageddon/internal/api/middleware"
	"github.com/mcoot/whamageddon/internal/api/request"
	"github.com/mcoot/whamageddon/internal/api/response"
	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/services/group"
	"github.com/mcoot/whamageddon/internal/services/player"
	"github.com/mcoot/whamageddon/internal/services/stats"
)

// GroupHandler handles group endpoints
type GroupHandler struct {
	groupService  *group.Service
	playerService *player.Service
	statsService  *stats.Service
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *group.Service, playerService *player.Service, statsService *stats.Service) *GroupHandler {
	return &GroupHandler{
		groupService:  groupService,
		playerService: playerService,
		statsService:  statsService,
	}
}

func slugFrom(r *http.Request) model.GroupSlug {
	return model.GroupSlug(mux.Vars(r)["slug"])
}

// Create handles POST /api/v1/groups. The requester, if identified,
// becomes the group admin.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGroupRequest
	if err := decode(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.groupService.CreateGroup(r.Context(), req.Name, middleware.GetUser(r.Context()), req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GroupFromModel(g))
}

// Get handles GET /api/v1/groups/{slug}
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	board, err := h.groupService.Leaderboard(r.Context(), slugFrom(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(board))
}

// Players handles GET /api/v1/groups/{slug}/players
func (h *GroupHandler) Players(w http.ResponseWriter, r *http.Request) {
	board, err := h.groupService.Leaderboard(r.Context(), slugFrom(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayersFromModel(board.Players))
}

// Stats handles GET /api/v1/groups/{slug}/stats
func (h *GroupHandler) Stats(w http.ResponseWriter, r *http.Request) {
	gs, err := h.statsService.ForGroup(r.Context(), slugFrom(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GroupStatsFromService(gs))
}

// SetPassword handles PUT /api/v1/groups/{slug}/password
func (h *GroupHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.SetPasswordRequest
	if err := decode(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	slug := slugFrom(r)
	if err := h.groupService.SetPassword(r.Context(), slug, middleware.GetUser(r.Context()), req.Password); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.groupService.GetGroup(r.Context(), slug)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GroupFromModel(g))
}

// Join handles POST /api/v1/groups/{slug}/players. A requester without a
// user id is issued one, echoed in the response.
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRequest
	if err := decode(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	p, err := h.playerService.Join(r.Context(), slugFrom(r), player.JoinRequest{
		UserID:    middleware.GetUser(r.Context()),
		Name:      req.Name,
		Company:   req.Company,
		AvatarURL: req.AvatarURL,
		PIN:       req.PIN,
		Password:  req.Password,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.JoinResponse{
		UserID: string(p.UserID),
		Player: response.OwnPlayerFromModel(p),
	})
}
