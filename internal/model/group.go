package model

import "time"

// GroupSlug is the human-readable identifier used in group URLs
type GroupSlug string

// UserID is the global identifier correlating one device across groups
type UserID string

// Group is a named collection of players sharing a leaderboard
type Group struct {
	ID           string
	Name         string
	Slug         GroupSlug
	PasswordHash string // bcrypt hash, empty when the group is open
	CreatorID    UserID // empty for groups created anonymously
	CreatedAt    time.Time
}

// HasPassword returns true if joining the group requires a password
func (g *Group) HasPassword() bool {
	return g.PasswordHash != ""
}

// IsAdmin returns true if the given user created the group
func (g *Group) IsAdmin(userID UserID) bool {
	return g.CreatorID != "" && g.CreatorID == userID
}
