package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RorolRoro/tkg-site/internal/domain"
)

func TestRegistryLookupAllCategories(t *testing.T) {
	registry := NewRegistry(Default())

	codes := []domain.CategoryCode{
		domain.CategoryCandidatureClan,
		domain.CategoryRPKCK,
		domain.CategoryCandidatureAnimateur,
		domain.CategoryCandidatureModerateur,
		domain.CategoryCandidatureMJ,
		domain.CategoryCandidatureOrga,
		domain.CategoryPlainte,
		domain.CategoryReclamation,
		domain.CategoryQuestions,
	}

	for _, code := range codes {
		entry, ok := registry.Lookup(code)
		require.True(t, ok, "category %s must be defined", code)
		require.Contains(t, []domain.RoleTier{domain.TierTop, domain.TierUpper, domain.TierBase}, entry.RequiredTier)
		require.NotEmpty(t, entry.Label)
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	registry := NewRegistry(Default())

	_, ok := registry.Lookup("NO_SUCH_CATEGORY")
	require.False(t, ok)
}

func TestRegistryTiers(t *testing.T) {
	registry := NewRegistry(Default())

	tests := []struct {
		code domain.CategoryCode
		tier domain.RoleTier
	}{
		{domain.CategoryCandidatureClan, domain.TierTop},
		{domain.CategoryRPKCK, domain.TierTop},
		{domain.CategoryCandidatureAnimateur, domain.TierUpper},
		{domain.CategoryCandidatureModerateur, domain.TierUpper},
		{domain.CategoryCandidatureMJ, domain.TierUpper},
		{domain.CategoryCandidatureOrga, domain.TierUpper},
		{domain.CategoryPlainte, domain.TierBase},
		{domain.CategoryReclamation, domain.TierBase},
		{domain.CategoryQuestions, domain.TierBase},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			entry, ok := registry.Lookup(tt.code)
			require.True(t, ok)
			require.Equal(t, tt.tier, entry.RequiredTier)
		})
	}
}

func TestListForCreationGroupsByDescendingTier(t *testing.T) {
	registry := NewRegistry(Default())

	options := registry.ListForCreation()
	require.Len(t, options, 9)

	lastRank := domain.TierRank(domain.TierTop)
	for _, option := range options {
		entry, ok := registry.Lookup(option.Code)
		require.True(t, ok)
		rank := domain.TierRank(entry.RequiredTier)
		require.LessOrEqual(t, rank, lastRank, "options must be ordered by descending privilege")
		lastRank = rank
		require.NotEmpty(t, option.Group)
	}

	// Staff application entries keep their position tag.
	for _, option := range options {
		if option.Code == domain.CategoryCandidatureMJ {
			require.Equal(t, "MAITRE_DU_JEU", option.SubCategory)
		}
	}
}
