package pages

import (
	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/services/player"
	"github.com/mcoot/whamageddon/internal/services/season"
	"github.com/mcoot/whamageddon/internal/services/stats"
	"github.com/mcoot/whamageddon/internal/web/templates/layout"
)

// HomeData contains data for the landing page
type HomeData struct {
	layout.PageData
	Countdown season.Countdown
	Groups    []*model.Group
	Stats     *stats.Summary
}

// GroupData contains data for a group's page
type GroupData struct {
	layout.PageData
	Board     *model.Leaderboard
	Me        *model.Player
	IsAdmin   bool
	Countdown season.Countdown
	ShareURL  string
}

// ProfileData contains data for the profile page. Profile is nil until the
// user has joined a group or recovered a device.
type ProfileData struct {
	layout.PageData
	Profile *player.Profile
}

func groupHref(slug model.GroupSlug) string {
	return "/" + string(slug)
}
