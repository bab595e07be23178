// Package discord wraps the pieces of the Discord REST API the site
// consumes: OAuth identity lookup and guild member listing. No gateway
// connection is opened; every call is a plain REST request.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const membersPageSize = 1000

// Client performs guild-scoped calls with the bot token.
type Client struct {
	session *discordgo.Session
	guildID string
}

// NewClient builds a REST-only client for the configured guild.
func NewClient(botToken, guildID string) (*Client, error) {
	if botToken == "" || guildID == "" {
		return nil, fmt.Errorf("discord bot token and guild id are required")
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Client{session: session, guildID: guildID}, nil
}

// GuildMembers pages through the full member list of the guild.
func (c *Client) GuildMembers(ctx context.Context) ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		page, err := c.session.GuildMembers(c.guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("list guild members: %w", err)
		}
		all = append(all, page...)
		if len(page) < membersPageSize {
			return all, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// Member fetches a single guild member. Users outside the guild return an
// API error the caller is expected to treat as "no guild roles".
func (c *Client) Member(ctx context.Context, userID string) (*discordgo.Member, error) {
	member, err := c.session.GuildMember(c.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild member %s: %w", userID, err)
	}
	return member, nil
}

// FetchIdentity resolves the Discord user behind an OAuth access token.
func FetchIdentity(ctx context.Context, accessToken string) (*discordgo.User, error) {
	session, err := discordgo.New("Bearer " + accessToken)
	if err != nil {
		return nil, fmt.Errorf("create bearer session: %w", err)
	}
	user, err := session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch identity: %w", err)
	}
	return user, nil
}

// DisplayName picks the name shown for a member: guild nickname first, then
// the account display name, then the username.
func DisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User == nil {
		return ""
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
