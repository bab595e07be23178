package dto

import "github.com/RorolRoro/tkg-site/internal/domain"

// LoginURLResponse carries the Discord authorization URL.
type LoginURLResponse struct {
	URL string `json:"url"`
}

// SessionResponse returns the minted session and its principal.
type SessionResponse struct {
	Token     string            `json:"token"`
	Principal PrincipalResponse `json:"principal"`
}

// PrincipalResponse is the caller as seen by the frontend.
type PrincipalResponse struct {
	DiscordID   string            `json:"discord_id"`
	Username    string            `json:"username"`
	DisplayName string            `json:"display_name"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	Role        domain.CoarseRole `json:"role"`
}
