package components

import (
	"fmt"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/services/stats"
)

const timeFormat = "2 Jan 15:04"

// LeaderboardID is the element id the live feed swaps
const LeaderboardID = "leaderboard"

const rankingSize = 5

func percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

func dayWord(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

func topGroups(ranking []stats.GroupStats) []stats.GroupStats {
	if len(ranking) > rankingSize {
		return ranking[:rankingSize]
	}
	return ranking
}

func whammedAtISO(p *model.Player) string {
	return p.WhammedAt.UTC().Format("2006-01-02T15:04:05Z")
}

func groupPath(slug model.GroupSlug, parts ...string) string {
	path := "/" + string(slug)
	for _, part := range parts {
		path += "/" + part
	}
	return path
}

func playerPath(slug model.GroupSlug, id model.PlayerID, action string) string {
	return groupPath(slug, "players", string(id), action)
}
