package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/whamageddon/internal/identity"
	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/services/player"
	"github.com/mcoot/whamageddon/internal/web/middleware"
	"github.com/mcoot/whamageddon/internal/web/templates/layout"
	"github.com/mcoot/whamageddon/internal/web/templates/pages"
)

// ProfileHandler handles the profile editor and device recovery
type ProfileHandler struct {
	playerService *player.Service
	logger        *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(playerService *player.Service, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{playerService: playerService, logger: logger}
}

// View renders the profile page
func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUser(r.Context())

	var profile *player.Profile
	if userID != "" {
		var err error
		profile, err = h.playerService.GetProfile(r.Context(), userID)
		if err != nil && !errors.Is(err, model.ErrProfileNotFound) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	data := pages.ProfileData{
		PageData: layout.PageData{
			Title:  "Profile",
			UserID: userID,
			Flash:  middleware.GetFlash(r.Context()),
		},
		Profile: profile,
	}
	render(w, r, http.StatusOK, pages.Profile(data))
}

// Update saves the profile to every group the user is in
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, middleware.FlashError, "Invalid form data")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	update := player.ProfileUpdate{}
	for field, target := range map[string]**string{
		"name":       &update.Name,
		"company":    &update.Company,
		"avatar_url": &update.AvatarURL,
		"pin":        &update.PIN,
	} {
		if values, ok := r.PostForm[field]; ok && len(values) > 0 {
			v := values[0]
			*target = &v
		}
	}

	if _, err := h.playerService.UpdateProfile(r.Context(), middleware.GetUser(r.Context()), update); err != nil {
		failAndRedirect(w, r, err, "/profile")
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Profile saved")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// Recover looks up the user by name and PIN and takes over their identity
// on this device
func (h *ProfileHandler) Recover(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, middleware.FlashError, "Invalid form data")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	rec, err := h.playerService.Recover(r.Context(), r.FormValue("name"), r.FormValue("pin"))
	if err != nil {
		failAndRedirect(w, r, err, "/profile")
		return
	}

	if rec.UserID != "" {
		identity.SetUserCookie(w, rec.UserID)
	}
	recovered := make(map[model.GroupSlug]bool, len(rec.Players))
	for _, p := range rec.Players {
		identity.SetPlayerCookie(w, p.GroupSlug, p.ID)
		recovered[p.GroupSlug] = true
	}
	// Rows from the identity this device held before belong to someone else now
	for _, slug := range identity.PlayerCookieSlugs(r) {
		if !recovered[slug] {
			identity.ClearPlayerCookie(w, slug)
		}
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Welcome back, "+rec.Players[0].Name)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// Wham eliminates the user in every group at once
func (h *ProfileHandler) Wham(w http.ResponseWriter, r *http.Request) {
	reason := strings.TrimSpace(r.FormValue("reason"))
	if _, err := h.playerService.WhamUser(r.Context(), middleware.GetUser(r.Context()), reason); err != nil {
		failAndRedirect(w, r, err, "/profile")
		return
	}
	middleware.SetFlash(w, middleware.FlashInfo, "Whammed everywhere. Better luck next year")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
