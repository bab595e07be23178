package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RorolRoro/tkg-site/internal/domain"
)

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	require.Len(t, p.Categories, 9)
	require.NoError(t, p.Validate())
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
top_allow_list:
  - "200000000000000001"
admin_role_ids:
  - "300000000000000001"
staff_role_ids:
  - "300000000000000002"
`), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"200000000000000001"}, p.TopAllowList)
	require.Equal(t, []string{"300000000000000001"}, p.AdminRoleIDs)
	// Categories keep the built-in defaults when the file does not set them.
	require.Len(t, p.Categories, 9)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: {not: [a, list"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUnknownTier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - code: PLAINTE
    label: Plainte
    required_tier: SUPREME
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsEmptyCategories(t *testing.T) {
	p := &Policy{}
	require.Error(t, p.Validate())
}

func TestDefaultTiers(t *testing.T) {
	p := Default()
	tiers := make(map[domain.CategoryCode]domain.RoleTier, len(p.Categories))
	for _, entry := range p.Categories {
		tiers[entry.Code] = entry.RequiredTier
	}
	require.Equal(t, domain.TierTop, tiers[domain.CategoryRPKCK])
	require.Equal(t, domain.TierUpper, tiers[domain.CategoryCandidatureModerateur])
	require.Equal(t, domain.TierBase, tiers[domain.CategoryQuestions])
}
