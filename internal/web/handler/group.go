package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"github.com/mcoot/whamageddon/internal/dependencies/random"
	"github.com/mcoot/whamageddon/internal/identity"
	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/services/group"
	"github.com/mcoot/whamageddon/internal/services/player"
	"github.com/mcoot/whamageddon/internal/services/season"
	"github.com/mcoot/whamageddon/internal/web/middleware"
	"github.com/mcoot/whamageddon/internal/web/sse"
	"github.com/mcoot/whamageddon/internal/web/templates/components"
	"github.com/mcoot/whamageddon/internal/web/templates/layout"
	"github.com/mcoot/whamageddon/internal/web/templates/pages"
)

const qrSize = 320

// GroupHandler handles group pages and the actions on them
type GroupHandler struct {
	groupService  *group.Service
	playerService *player.Service
	seasonService *season.Service
	random        random.Random
	hubManager    *sse.HubManager
	publicURL     string
	logger        *slog.Logger
}

// NewGroupHandler creates a new GroupHandler. publicURL is the externally
// visible base URL used for share links; when empty it is derived from the
// request.
func NewGroupHandler(
	groupService *group.Service,
	playerService *player.Service,
	seasonService *season.Service,
	random random.Random,
	hubManager *sse.HubManager,
	publicURL string,
	logger *slog.Logger,
) *GroupHandler {
	return &GroupHandler{
		groupService:  groupService,
		playerService: playerService,
		seasonService: seasonService,
		random:        random,
		hubManager:    hubManager,
		publicURL:     strings.TrimSuffix(publicURL, "/"),
		logger:        logger,
	}
}

func slugFrom(r *http.Request) model.GroupSlug {
	return model.GroupSlug(mux.Vars(r)["slug"])
}

func groupPath(slug model.GroupSlug) string {
	return "/" + string(slug)
}

// me finds the viewer's row: the player cookie for this group first, then
// any row owned by the device's user id. A cookie naming another user's row
// is stale, left over from before a recovery, and is ignored.
func me(r *http.Request, board *model.Leaderboard) *model.Player {
	userID := middleware.GetUser(r.Context())
	if p := model.FindPlayer(board.Players, identity.PlayerFromCookie(r, board.Group.Slug)); p != nil && p.UserID == userID {
		return p
	}
	return model.FindPlayerByUser(board.Players, userID)
}

// Create handles group creation. A first-time visitor is issued a user id so
// they become the group's admin.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, middleware.FlashError, "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	userID := middleware.GetUser(r.Context())
	if userID == "" {
		userID = model.UserID(h.random.NewID())
		identity.SetUserCookie(w, userID)
	}

	g, err := h.groupService.CreateGroup(r.Context(), r.FormValue("name"), userID, r.FormValue("password"))
	if err != nil {
		failAndRedirect(w, r, err, "/")
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Group created! Join it, then share the link")
	http.Redirect(w, r, groupPath(g.Slug), http.StatusSeeOther)
}

// View renders a group's page
func (h *GroupHandler) View(w http.ResponseWriter, r *http.Request) {
	board, err := h.groupService.Leaderboard(r.Context(), slugFrom(r))
	if errors.Is(err, model.ErrGroupNotFound) {
		render(w, r, http.StatusNotFound, pages.NotFound(layout.PageData{
			Title: "Not found",
			Flash: middleware.GetFlash(r.Context()),
		}))
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	userID := middleware.GetUser(r.Context())
	data := pages.GroupData{
		PageData: layout.PageData{
			Title:  board.Group.Name,
			UserID: userID,
			Flash:  middleware.GetFlash(r.Context()),
		},
		Board:     board,
		Me:        me(r, board),
		IsAdmin:   board.Group.IsAdmin(userID),
		Countdown: h.seasonService.Countdown(),
		ShareURL:  h.shareURL(r, board.Group.Slug),
	}
	render(w, r, http.StatusOK, pages.Group(data))
}

// MyStatus renders the viewer's status fragment
func (h *GroupHandler) MyStatus(w http.ResponseWriter, r *http.Request) {
	board, err := h.groupService.Leaderboard(r.Context(), slugFrom(r))
	if err != nil {
		h.fragmentError(w, err)
		return
	}
	render(w, r, http.StatusOK, components.MyStatus(board.Group, me(r, board)))
}

// AdminPanel renders the admin fragment
func (h *GroupHandler) AdminPanel(w http.ResponseWriter, r *http.Request) {
	board, err := h.groupService.Leaderboard(r.Context(), slugFrom(r))
	if err != nil {
		h.fragmentError(w, err)
		return
	}
	render(w, r, http.StatusOK, components.AdminPanel(board, board.Group.IsAdmin(middleware.GetUser(r.Context()))))
}

func (h *GroupHandler) fragmentError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrGroupNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// Join adds the viewer to the group and remembers them on this device
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	slug := slugFrom(r)
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, middleware.FlashError, "Invalid form data")
		http.Redirect(w, r, groupPath(slug), http.StatusSeeOther)
		return
	}

	p, err := h.playerService.Join(r.Context(), slug, player.JoinRequest{
		UserID:    middleware.GetUser(r.Context()),
		Name:      r.FormValue("name"),
		Company:   r.FormValue("company"),
		AvatarURL: r.FormValue("avatar_url"),
		PIN:       strings.TrimSpace(r.FormValue("pin")),
		Password:  r.FormValue("password"),
	})
	if err != nil {
		failAndRedirect(w, r, err, groupPath(slug))
		return
	}

	identity.SetUserCookie(w, p.UserID)
	identity.SetPlayerCookie(w, slug, p.ID)

	if p.IsAlive() {
		middleware.SetFlash(w, middleware.FlashSuccess, "You're in. Good luck!")
	} else {
		middleware.SetFlash(w, middleware.FlashInfo, "You're in, but you were already whammed elsewhere")
	}
	http.Redirect(w, r, groupPath(slug), http.StatusSeeOther)
}

// Wham records that the viewer heard the song
func (h *GroupHandler) Wham(w http.ResponseWriter, r *http.Request) {
	slug := slugFrom(r)
	board, err := h.groupService.Leaderboard(r.Context(), slug)
	if err != nil {
		failAndRedirect(w, r, err, "/")
		return
	}

	mine := me(r, board)
	if mine == nil {
		middleware.SetFlash(w, middleware.FlashError, "Join the group first")
		http.Redirect(w, r, groupPath(slug), http.StatusSeeOther)
		return
	}

	reason := strings.TrimSpace(r.FormValue("reason"))
	if _, err := h.playerService.Wham(r.Context(), mine.ID, middleware.GetUser(r.Context()), reason); err != nil {
		failAndRedirect(w, r, err, groupPath(slug))
		return
	}

	middleware.SetFlash(w, middleware.FlashInfo, "Whammed! Better luck next year")
	http.Redirect(w, r, groupPath(slug), http.StatusSeeOther)
}

// Revive puts a whammed player back in the game (admin only)
func (h *GroupHandler) Revive(w http.ResponseWriter, r *http.Request) {
	slug := slugFrom(r)
	id := model.PlayerID(mux.Vars(r)["id"])

	p, err := h.playerService.Revive(r.Context(), id, middleware.GetUser(r.Context()))
	if err != nil {
		failAndRedirect(w, r, err, groupPath(slug))
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, p.Name+" is back in")
	http.Redirect(w, r, groupPath(slug), http.StatusSeeOther)
}

// Delete removes a player from the group (admin only)
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := slugFrom(r)
	id := model.PlayerID(mux.Vars(r)["id"])

	if err := h.playerService.Delete(r.Context(), id, middleware.GetUser(r.Context())); err != nil {
		failAndRedirect(w, r, err, groupPath(slug))
		return
	}
	if identity.PlayerFromCookie(r, slug) == id {
		identity.ClearPlayerCookie(w, slug)
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Player removed")
	http.Redirect(w, r, groupPath(slug), http.StatusSeeOther)
}

// SetPassword changes or clears the group password (admin only)
func (h *GroupHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	slug := slugFrom(r)
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, middleware.FlashError, "Invalid form data")
		http.Redirect(w, r, groupPath(slug), http.StatusSeeOther)
		return
	}

	password := r.FormValue("password")
	if err := h.groupService.SetPassword(r.Context(), slug, middleware.GetUser(r.Context()), password); err != nil {
		failAndRedirect(w, r, err, groupPath(slug))
		return
	}

	if password == "" {
		middleware.SetFlash(w, middleware.FlashSuccess, "Password removed, anyone with the link can join")
	} else {
		middleware.SetFlash(w, middleware.FlashSuccess, "Password updated")
	}
	http.Redirect(w, r, groupPath(slug), http.StatusSeeOther)
}

// Events streams live leaderboard updates for a group
func (h *GroupHandler) Events(w http.ResponseWriter, r *http.Request) {
	slug := slugFrom(r)
	if _, err := h.groupService.GetGroup(r.Context(), slug); err != nil {
		h.fragmentError(w, err)
		return
	}

	sse.ServeSSE(w, r, h.hubManager, slug, middleware.GetUser(r.Context()))
}

// QR serves a PNG QR code linking to the group page
func (h *GroupHandler) QR(w http.ResponseWriter, r *http.Request) {
	slug := slugFrom(r)
	if _, err := h.groupService.GetGroup(r.Context(), slug); err != nil {
		h.fragmentError(w, err)
		return
	}

	png, err := qrcode.Encode(h.shareURL(r, slug), qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error("qr encode failed", slog.String("group", string(slug)), slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(png)
}

// shareURL is the absolute link to a group page, respecting TLS and
// X-Forwarded-Proto when no public URL is configured
func (h *GroupHandler) shareURL(r *http.Request, slug model.GroupSlug) string {
	if h.publicURL != "" {
		return h.publicURL + groupPath(slug)
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + groupPath(slug)
}
