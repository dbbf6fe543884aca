package model

import "time"

// Table names a change-feed source
type Table string

const (
	TableGroups  Table = "groups"
	TablePlayers Table = "players"
)

// ChangeOp is the kind of write that produced a change
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Change is a notification that rows of a group were written.
// Subscribers re-fetch the group's rows rather than applying it as a delta.
type Change struct {
	Table     Table     `json:"table"`
	Op        ChangeOp  `json:"op"`
	GroupSlug GroupSlug `json:"group_slug"`
	PlayerID  PlayerID  `json:"player_id,omitempty"`
	UserID    UserID    `json:"user_id,omitempty"`
	At        time.Time `json:"at"`
}
