package response

import (
	"time"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/services/player"
	"github.com/mcoot/whamageddon/internal/services/season"
	"github.com/mcoot/whamageddon/internal/services/stats"
)

// Group represents a group in API responses. The password hash never
// leaves the server.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	HasPassword bool      `json:"has_password"`
	CreatorID   string    `json:"creator_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupFromModel converts a model.Group to a response Group
func GroupFromModel(g *model.Group) Group {
	return Group{
		ID:          g.ID,
		Name:        g.Name,
		Slug:        string(g.Slug),
		HasPassword: g.HasPassword(),
		CreatorID:   string(g.CreatorID),
		CreatedAt:   g.CreatedAt,
	}
}

// Player represents a player row. The PIN is only included for the
// owner's own rows.
type Player struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id,omitempty"`
	GroupSlug  string     `json:"group_slug"`
	Name       string     `json:"name"`
	Company    string     `json:"company,omitempty"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	PIN        string     `json:"pin,omitempty"`
	Status     string     `json:"status"`
	WhammedAt  *time.Time `json:"whammed_at,omitempty"`
	WhamReason string     `json:"wham_reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PlayerFromModel converts a model.Player, hiding the PIN
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:         string(p.ID),
		UserID:     string(p.UserID),
		GroupSlug:  string(p.GroupSlug),
		Name:       p.Name,
		Company:    p.Company,
		AvatarURL:  p.AvatarURL,
		Status:     string(p.Status),
		WhammedAt:  p.WhammedAt,
		WhamReason: p.WhamReason,
		CreatedAt:  p.CreatedAt,
	}
}

// OwnPlayerFromModel converts a row the requester owns, PIN included
func OwnPlayerFromModel(p *model.Player) Player {
	resp := PlayerFromModel(p)
	resp.PIN = p.PIN
	return resp
}

// PlayersFromModel converts a list of rows, hiding PINs
func PlayersFromModel(players []*model.Player) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		out = append(out, PlayerFromModel(p))
	}
	return out
}

func ownPlayersFromModel(players []*model.Player) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		out = append(out, OwnPlayerFromModel(p))
	}
	return out
}

// Leaderboard is a group with its players sorted and bucketed
type Leaderboard struct {
	Group     Group    `json:"group"`
	Players   []Player `json:"players"`
	Survivors []Player `json:"survivors"`
	Fallen    []Player `json:"fallen"`
}

// LeaderboardFromModel converts a model.Leaderboard
func LeaderboardFromModel(b *model.Leaderboard) Leaderboard {
	return Leaderboard{
		Group:     GroupFromModel(b.Group),
		Players:   PlayersFromModel(b.Players),
		Survivors: PlayersFromModel(b.Survivors),
		Fallen:    PlayersFromModel(b.Fallen),
	}
}

// JoinResponse is returned after joining a group. The user id is echoed so
// a client that joined without one can store it.
type JoinResponse struct {
	UserID string `json:"user_id"`
	Player Player `json:"player"`
}

// Profile is the requester's profile across every group they joined
type Profile struct {
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Company   string     `json:"company,omitempty"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	PIN       string     `json:"pin,omitempty"`
	Status    string     `json:"status"`
	WhammedAt *time.Time `json:"whammed_at,omitempty"`
	Players   []Player   `json:"players"`
}

// ProfileFromService converts a player.Profile
func ProfileFromService(p *player.Profile) Profile {
	return Profile{
		UserID:    string(p.UserID),
		Name:      p.Name,
		Company:   p.Company,
		AvatarURL: p.AvatarURL,
		PIN:       p.PIN,
		Status:    string(p.Status),
		WhammedAt: p.WhammedAt,
		Players:   ownPlayersFromModel(p.Players),
	}
}

// Recovery tells a device which identifiers to store
type Recovery struct {
	UserID  string   `json:"user_id"`
	Players []Player `json:"players"`
}

// RecoveryFromService converts a player.Recovery
func RecoveryFromService(r *player.Recovery) Recovery {
	return Recovery{
		UserID:  string(r.UserID),
		Players: ownPlayersFromModel(r.Players),
	}
}

// Countdown is the state of the season
type Countdown struct {
	Today         string `json:"today"`
	Cutoff        string `json:"cutoff"`
	DaysRemaining int    `json:"days_remaining"`
	Phase         string `json:"phase"`
}

// CountdownFromService converts a season.Countdown
func CountdownFromService(c season.Countdown) Countdown {
	return Countdown{
		Today:         c.Today.Format(time.DateOnly),
		Cutoff:        c.Cutoff.Format(time.DateOnly),
		DaysRemaining: c.DaysRemaining,
		Phase:         string(c.Phase),
	}
}

// Totals are player counts
type Totals struct {
	Players      int     `json:"players"`
	Alive        int     `json:"alive"`
	Whammed      int     `json:"whammed"`
	SurvivalRate float64 `json:"survival_rate"`
}

func totalsFromService(t stats.Totals) Totals {
	return Totals{
		Players:      t.Players,
		Alive:        t.Alive,
		Whammed:      t.Whammed,
		SurvivalRate: t.SurvivalRate,
	}
}

// GroupStats are the totals of one group
type GroupStats struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	Totals
}

// GroupStatsFromService converts a stats.GroupStats
func GroupStatsFromService(g *stats.GroupStats) GroupStats {
	return GroupStats{
		Slug:   string(g.Slug),
		Name:   g.Name,
		Totals: totalsFromService(g.Totals),
	}
}

// Stats is the global summary
type Stats struct {
	Totals
	Groups  int          `json:"groups"`
	Users   int          `json:"users"`
	Ranking []GroupStats `json:"ranking"`
}

// StatsFromService converts a stats.Summary
func StatsFromService(s *stats.Summary) Stats {
	ranking := make([]GroupStats, 0, len(s.Ranking))
	for i := range s.Ranking {
		ranking = append(ranking, GroupStatsFromService(&s.Ranking[i]))
	}
	return Stats{
		Groups:  s.Groups,
		Users:   s.Users,
		Totals:  totalsFromService(s.Totals),
		Ranking: ranking,
	}
}

// Feed message types
const (
	FeedSnapshot    = "snapshot"
	FeedLeaderboard = "leaderboard"
	FeedGone        = "gone"
)

// FeedMessage is one frame of the websocket change feed. Every frame carries
// the full leaderboard, re-fetched after the change.
type FeedMessage struct {
	Type        string        `json:"type"`
	Change      *model.Change `json:"change,omitempty"`
	Leaderboard *Leaderboard  `json:"leaderboard,omitempty"`
}
