package service

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/RorolRoro/tkg-site/internal/policy"
)

func orgRoleTable() []policy.OrgRoleEntry {
	return []policy.OrgRoleEntry{
		{RoleID: "600000000000000001", Label: "Fondateur", Rank: 100},
		{RoleID: "600000000000000002", Label: "Modérateur", Rank: 50},
		{RoleID: "600000000000000003", Label: "Animateur", Rank: 10},
	}
}

func guildMember(id, username, nick string, bot bool, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		Nick:  nick,
		Roles: roles,
		User: &discordgo.User{
			ID:       id,
			Username: username,
			Bot:      bot,
		},
	}
}

func TestAssembleChartGroupsAndOrders(t *testing.T) {
	members := []*discordgo.Member{
		guildMember("1", "zoe", "", false, "600000000000000003"),
		guildMember("2", "marc", "", false, "600000000000000002"),
		guildMember("3", "ines", "", false, "600000000000000001"),
		guildMember("4", "anna", "", false, "600000000000000003"),
	}

	chart := assembleChart(members, orgRoleTable())
	require.Len(t, chart.Tiers, 3)
	require.False(t, chart.SyncedAt.IsZero())

	// Tiers descend by rank.
	require.Equal(t, "Fondateur", chart.Tiers[0].Label)
	require.Equal(t, "Modérateur", chart.Tiers[1].Label)
	require.Equal(t, "Animateur", chart.Tiers[2].Label)

	// Members are alphabetical within a tier.
	animateurs := chart.Tiers[2].Members
	require.Len(t, animateurs, 2)
	require.Equal(t, "anna", animateurs[0].DisplayName)
	require.Equal(t, "zoe", animateurs[1].DisplayName)
}

func TestAssembleChartHighestRoleWins(t *testing.T) {
	members := []*discordgo.Member{
		guildMember("1", "ines", "", false, "600000000000000003", "600000000000000001", "600000000000000002"),
	}

	chart := assembleChart(members, orgRoleTable())
	require.Len(t, chart.Tiers, 1)
	require.Equal(t, "Fondateur", chart.Tiers[0].Label)
	require.Len(t, chart.Tiers[0].Members, 1)
	require.Equal(t, "Fondateur", chart.Tiers[0].Members[0].RoleLabel)
}

func TestAssembleChartSkipsBotsAndUnmapped(t *testing.T) {
	members := []*discordgo.Member{
		guildMember("1", "tickets-bot", "", true, "600000000000000001"),
		guildMember("2", "joueur", "", false, "700000000000000099"),
		guildMember("3", "marc", "", false, "600000000000000002"),
		{Roles: []string{"600000000000000002"}},
	}

	chart := assembleChart(members, orgRoleTable())
	require.Len(t, chart.Tiers, 1)
	require.Len(t, chart.Tiers[0].Members, 1)
	require.Equal(t, "3", chart.Tiers[0].Members[0].DiscordID)
}

func TestAssembleChartPrefersNickname(t *testing.T) {
	members := []*discordgo.Member{
		guildMember("1", "marc_dupont", "Marc le Modo", false, "600000000000000002"),
	}

	chart := assembleChart(members, orgRoleTable())
	require.Equal(t, "Marc le Modo", chart.Tiers[0].Members[0].DisplayName)
	require.Equal(t, "marc_dupont", chart.Tiers[0].Members[0].Username)
}

func TestHighestOrgRole(t *testing.T) {
	table := map[string]policy.OrgRoleEntry{
		"a": {RoleID: "a", Label: "Low", Rank: 1},
		"b": {RoleID: "b", Label: "High", Rank: 9},
	}

	best, ok := highestOrgRole([]string{"a", "b", "unknown"}, table)
	require.True(t, ok)
	require.Equal(t, "High", best.Label)

	_, ok = highestOrgRole([]string{"unknown"}, table)
	require.False(t, ok)

	_, ok = highestOrgRole(nil, table)
	require.False(t, ok)
}
