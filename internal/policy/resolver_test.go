package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RorolRoro/tkg-site/internal/domain"
)

const (
	topMemberID = "900000000000000001"
	plainID     = "900000000000000099"
)

func testResolver() *Resolver {
	p := Default()
	p.TopAllowList = []string{topMemberID}
	return NewResolver(NewRegistry(p), p)
}

func TestResolverDeniesAbsentIdentity(t *testing.T) {
	resolver := testResolver()

	for _, code := range NewRegistry(Default()).Codes() {
		require.False(t, resolver.CanAccess("", domain.RoleAdmin, code))
		require.False(t, resolver.CanAccess(plainID, "", code))
	}
}

func TestResolverAdminBypass(t *testing.T) {
	resolver := testResolver()

	for _, code := range NewRegistry(Default()).Codes() {
		require.True(t, resolver.CanAccess(plainID, domain.RoleAdmin, code))
	}
	// Even on a category missing from the registry.
	require.True(t, resolver.CanAccess(plainID, domain.RoleAdmin, "NO_SUCH_CATEGORY"))
}

func TestResolverTopAllowList(t *testing.T) {
	resolver := testResolver()

	// Allow-list grants every category regardless of coarse role.
	for _, code := range NewRegistry(Default()).Codes() {
		require.True(t, resolver.CanAccess(topMemberID, domain.RolePlayer, code),
			"allow-listed caller must reach %s", code)
	}
}

func TestResolverTierMatrix(t *testing.T) {
	resolver := testResolver()

	tests := []struct {
		name     string
		id       string
		role     domain.CoarseRole
		category domain.CategoryCode
		want     bool
	}{
		{"staff denied top tier", plainID, domain.RoleStaff, domain.CategoryRPKCK, false},
		{"staff allowed base tier", plainID, domain.RoleStaff, domain.CategoryPlainte, true},
		{"staff allowed upper tier", plainID, domain.RoleStaff, domain.CategoryCandidatureAnimateur, true},
		{"player denied base tier", plainID, domain.RolePlayer, domain.CategoryQuestions, false},
		{"player denied upper tier", plainID, domain.RolePlayer, domain.CategoryCandidatureOrga, false},
		{"allow-listed player reaches top tier", topMemberID, domain.RolePlayer, domain.CategoryCandidatureClan, true},
		{"allow-listed player reaches upper tier", topMemberID, domain.RolePlayer, domain.CategoryCandidatureMJ, true},
		{"staff denied unknown category", plainID, domain.RoleStaff, "NO_SUCH_CATEGORY", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, resolver.CanAccess(tt.id, tt.role, tt.category))
		})
	}
}

func TestPermittedCategories(t *testing.T) {
	resolver := testResolver()

	staffCodes := resolver.PermittedCategories(plainID, domain.RoleStaff)
	require.NotContains(t, staffCodes, domain.CategoryRPKCK)
	require.NotContains(t, staffCodes, domain.CategoryCandidatureClan)
	require.Contains(t, staffCodes, domain.CategoryPlainte)
	require.Contains(t, staffCodes, domain.CategoryCandidatureAnimateur)

	adminCodes := resolver.PermittedCategories(plainID, domain.RoleAdmin)
	require.Len(t, adminCodes, 9)
}
