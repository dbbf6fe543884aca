package redis

import (
	"fmt"

	"github.com/mcoot/whamageddon/internal/model"
	"github.com/mcoot/whamageddon/internal/storage"
)

// Key prefix for all game-related data
const keyPrefix = "wham"

// groupKey returns the Redis key for a Group
func groupKey(slug model.GroupSlug) string {
	return fmt.Sprintf("%s:group:%s", keyPrefix, slug)
}

// groupsIndexKey returns the Redis key for the SET of all group slugs
func groupsIndexKey() string {
	return fmt.Sprintf("%s:idx:groups", keyPrefix)
}

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playersIndexKey returns the Redis key for the SET of all player ids
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// groupPlayersIndexKey returns the Redis key for the SET of players in a group
func groupPlayersIndexKey(slug model.GroupSlug) string {
	return fmt.Sprintf("%s:idx:group_players:%s", keyPrefix, slug)
}

// userPlayersIndexKey returns the Redis key for the SET of players owned by a user
func userPlayersIndexKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:user_players:%s", keyPrefix, userID)
}

// recoveryIndexKey returns the Redis key for the SET of players sharing a
// name+PIN pair, or "" when the pair is incomplete
func recoveryIndexKey(name, pin string) string {
	rk := storage.RecoveryKey(name, pin)
	if rk == "" {
		return ""
	}
	return fmt.Sprintf("%s:idx:recovery:%s", keyPrefix, rk)
}

// ChangesChannel is the pub/sub channel the change feed publishes on
func ChangesChannel() string {
	return fmt.Sprintf("%s:changes", keyPrefix)
}
