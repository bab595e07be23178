package domain

// CoarseRole is the caller's broad account classification, derived from the
// Discord guild roles held at login time.
type CoarseRole string

const (
	RolePlayer CoarseRole = "PLAYER"
	RoleStaff  CoarseRole = "STAFF"
	RoleAdmin  CoarseRole = "ADMIN"
)

// IsStaff reports whether the role grants access to the staff surface.
func (r CoarseRole) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Principal is the authenticated caller as carried by a session token.
type Principal struct {
	DiscordID   string
	Username    string
	DisplayName string
	Email       string
	AvatarURL   string
	Role        CoarseRole
}
