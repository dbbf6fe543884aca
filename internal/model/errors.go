package model

import "errors"

// Common errors used across the application
var (
	// Group errors
	ErrGroupNotFound    = errors.New("group not found")
	ErrGroupNameMissing = errors.New("group name is required")
	ErrWrongPassword    = errors.New("wrong group password")
	ErrNotGroupAdmin    = errors.New("user is not the group admin")

	// Player errors
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerNameMissing = errors.New("player name is required")
	ErrInvalidPIN        = errors.New("pin must be four digits")
	ErrAlreadyInGroup    = errors.New("user already joined this group")
	ErrAlreadyWhammed    = errors.New("player is already whammed")
	ErrNotWhammed        = errors.New("player is not whammed")
	ErrNotYourPlayer     = errors.New("player belongs to another user")

	// Profile and recovery errors
	ErrIdentityRequired  = errors.New("user id is required")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrRecoveryNoMatch   = errors.New("no player matches that name and pin")
	ErrRecoveryAmbiguous = errors.New("name and pin match more than one user")
)
