package request

// CreateGroupRequest is the request body for creating a group
type CreateGroupRequest struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

// SetPasswordRequest is the request body for changing a group's password.
// An empty password opens the group.
type SetPasswordRequest struct {
	Password string `json:"password"`
}

// JoinRequest is the request body for joining a group
type JoinRequest struct {
	Name      string `json:"name"`
	Company   string `json:"company,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	PIN       string `json:"pin,omitempty"`
	Password  string `json:"password,omitempty"`
}

// WhamRequest is the request body for eliminating a player
type WhamRequest struct {
	Reason string `json:"reason,omitempty"`
}

// UpdateProfileRequest is the request body for editing a profile. Omitted
// fields are left unchanged.
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	Company   *string `json:"company,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	PIN       *string `json:"pin,omitempty"`
}

// RecoverRequest is the request body for recovering a device
type RecoverRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}
