package domain

import "time"

// OrgMember is a staff member as shown on the org chart, snapshotted from
// the guild member list at sync time.
type OrgMember struct {
	DiscordID   string `json:"discord_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	RoleLabel   string `json:"role_label"`
}

// OrgTier groups org chart members under one display role.
type OrgTier struct {
	Label   string      `json:"label"`
	Rank    int         `json:"rank"`
	Members []OrgMember `json:"members"`
}

// OrgChart is the assembled staff roster, ordered by descending rank. It is
// serialized as-is into the Redis cache, hence the JSON tags.
type OrgChart struct {
	Tiers    []OrgTier `json:"tiers"`
	SyncedAt time.Time `json:"synced_at"`
}
