package storage

import "strings"

// RecoveryKey normalises a name+PIN pair for recovery lookups.
// Names match case-insensitively and ignore surrounding whitespace.
// Returns an empty string when either part is missing.
func RecoveryKey(name, pin string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	pin = strings.TrimSpace(pin)
	if name == "" || pin == "" {
		return ""
	}
	return name + "\x00" + pin
}
