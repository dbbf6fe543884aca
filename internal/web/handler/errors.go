package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/web/middleware"
)

// friendlyErrors maps domain errors to the message shown to the user
var friendlyErrors = []struct {
	err     error
	message string
}{
	{model.ErrGroupNotFound, "That group doesn't exist"},
	{model.ErrGroupNameMissing, "Give your group a name"},
	{model.ErrWrongPassword, "Wrong group password"},
	{model.ErrNotGroupAdmin, "Only the group creator can do that"},
	{model.ErrPlayerNotFound, "That player doesn't exist"},
	{model.ErrPlayerNameMissing, "Please enter your name"},
	{model.ErrInvalidPIN, "Your PIN must be exactly four digits"},
	{model.ErrAlreadyInGroup, "You're already in this group"},
	{model.ErrAlreadyWhammed, "You're already out"},
	{model.ErrNotWhammed, "That player is still standing"},
	{model.ErrNotYourPlayer, "You can only wham yourself"},
	{model.ErrIdentityRequired, "Join a group first"},
	{model.ErrProfileNotFound, "Join a group first"},
	{model.ErrRecoveryNoMatch, "Nobody with that name and PIN"},
	{model.ErrRecoveryAmbiguous, "That name and PIN match more than one person. Ask your group admin for help"},
}

func errorMessage(err error) string {
	for _, fe := range friendlyErrors {
		if errors.Is(err, fe.err) {
			return fe.message
		}
	}
	return "Something went wrong, please try again"
}

// failAndRedirect shows err as a flash message on the page at target
func failAndRedirect(w http.ResponseWriter, r *http.Request, err error, target string) {
	middleware.SetFlash(w, middleware.FlashError, errorMessage(err))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// render writes an HTML page or fragment. It renders into a buffer first
// so a failure can still become a 500.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
