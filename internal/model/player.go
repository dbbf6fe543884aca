package model

import (
	"sort"
	"time"
)

// PlayerID uniquely identifies a player row within a group
type PlayerID string

// PlayerStatus is the elimination state of a player
type PlayerStatus string

const (
	StatusAlive   PlayerStatus = "alive"
	StatusWhammed PlayerStatus = "whammed" // heard the song, out of the game
)

// Player is a participant record within a group
type Player struct {
	ID         PlayerID
	UserID     UserID // empty for players that joined without a device id
	GroupSlug  GroupSlug
	Name       string
	Company    string
	AvatarURL  string
	PIN        string // shared secret for device recovery
	Status     PlayerStatus
	WhammedAt  *time.Time
	WhamReason string
	CreatedAt  time.Time
}

// IsAlive returns true if the player has not been whammed
func (p *Player) IsAlive() bool {
	return p.Status != StatusWhammed
}

// MarkWhammed moves the player to the whammed state
func (p *Player) MarkWhammed(at time.Time, reason string) {
	t := at
	p.Status = StatusWhammed
	p.WhammedAt = &t
	p.WhamReason = reason
}

// MarkAlive clears the elimination state
func (p *Player) MarkAlive() {
	p.Status = StatusAlive
	p.WhammedAt = nil
	p.WhamReason = ""
}

// SortLeaderboard orders players with survivors first, then the most
// recently whammed. Ties are broken by join time.
func SortLeaderboard(players []*Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i].WhammedAt, players[j].WhammedAt
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		}
		return players[i].CreatedAt.Before(players[j].CreatedAt)
	})
}

// Partition splits players into survivors and fallen, keeping order
func Partition(players []*Player) (survivors, fallen []*Player) {
	survivors = []*Player{}
	fallen = []*Player{}
	for _, p := range players {
		if p.IsAlive() {
			survivors = append(survivors, p)
		} else {
			fallen = append(fallen, p)
		}
	}
	return survivors, fallen
}

// FindPlayer returns the player with the given ID, or nil if not present
func FindPlayer(players []*Player, id PlayerID) *Player {
	if id == "" {
		return nil
	}
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FindPlayerByUser returns the first player owned by the given user, or nil
func FindPlayerByUser(players []*Player, userID UserID) *Player {
	if userID == "" {
		return nil
	}
	for _, p := range players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// Leaderboard is a group together with its sorted players
type Leaderboard struct {
	Group     *Group
	Players   []*Player
	Survivors []*Player
	Fallen    []*Player
}

// NewLeaderboard sorts and partitions the players of a group
func NewLeaderboard(group *Group, players []*Player) *Leaderboard {
	SortLeaderboard(players)
	survivors, fallen := Partition(players)
	return &Leaderboard{
		Group:     group,
		Players:   players,
		Survivors: survivors,
		Fallen:    fallen,
	}
}

// SortByJoined orders players by join time, oldest first
func SortByJoined(players []*Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if !players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].CreatedAt.Before(players[j].CreatedAt)
		}
		return players[i].ID < players[j].ID
	})
}
