package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RorolRoro/tkg-site/internal/config"
	"github.com/RorolRoro/tkg-site/internal/domain"
	"github.com/RorolRoro/tkg-site/internal/policy"
)

func TestRoleFromGuildRoles(t *testing.T) {
	p := &policy.Policy{
		AdminRoleIDs: []string{"400000000000000001"},
		StaffRoleIDs: []string{"400000000000000002", "400000000000000003"},
	}

	tests := []struct {
		name  string
		roles []string
		want  domain.CoarseRole
	}{
		{"no roles", nil, domain.RolePlayer},
		{"unmapped roles only", []string{"500000000000000009"}, domain.RolePlayer},
		{"staff role", []string{"400000000000000002"}, domain.RoleStaff},
		{"second staff role", []string{"400000000000000003"}, domain.RoleStaff},
		{"admin role", []string{"400000000000000001"}, domain.RoleAdmin},
		{"admin wins over staff", []string{"400000000000000002", "400000000000000001"}, domain.RoleAdmin},
		{"unmapped mixed with staff", []string{"500000000000000009", "400000000000000002"}, domain.RoleStaff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member := &discordgo.Member{Roles: tt.roles}
			require.Equal(t, tt.want, roleFromGuildRoles(member, p))
		})
	}
}

func TestResolveCoarseRoleWithoutGuild(t *testing.T) {
	svc := NewAuthService(config.Config{}, nil, nil, policy.Default(), zap.NewNop())

	// No configured guild means no role information: everyone is a player.
	require.Equal(t, domain.RolePlayer, svc.resolveCoarseRole(context.Background(), "100000000000000001"))
}
