package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RorolRoro/tkg-site/internal/domain"
)

// CategoryEntry describes one ticket category: its display strings, the
// minimum tier required to view and manage tickets of that category, and an
// optional sub-category tag used by the staff application forms.
type CategoryEntry struct {
	Code         domain.CategoryCode `yaml:"code"`
	Label        string              `yaml:"label"`
	Description  string              `yaml:"description"`
	RequiredTier domain.RoleTier     `yaml:"required_tier"`
	SubCategory  string              `yaml:"sub_category,omitempty"`
}

// OrgRoleEntry maps a Discord role ID to an org chart display role. Higher
// rank wins when a member holds several mapped roles.
type OrgRoleEntry struct {
	RoleID string `yaml:"role_id"`
	Label  string `yaml:"label"`
	Rank   int    `yaml:"rank"`
}

// Policy is the injected permission configuration: category registry input,
// the TOP-tier allow-list, the Discord role sets that map to coarse roles,
// and the org chart role table. Loaded once at process start.
type Policy struct {
	Categories   []CategoryEntry `yaml:"categories"`
	TopAllowList []string        `yaml:"top_allow_list"`
	AdminRoleIDs []string        `yaml:"admin_role_ids"`
	StaffRoleIDs []string        `yaml:"staff_role_ids"`
	OrgRoles     []OrgRoleEntry  `yaml:"org_roles"`
}

// Default returns the built-in policy used when no policy file is configured.
func Default() *Policy {
	return &Policy{
		Categories: []CategoryEntry{
			{Code: domain.CategoryCandidatureClan, Label: "Candidature de clan", Description: "Proposer un nouveau clan sur le serveur", RequiredTier: domain.TierTop},
			{Code: domain.CategoryRPKCK, Label: "RPK / CK", Description: "Demande de mort définitive d'un personnage", RequiredTier: domain.TierTop},
			{Code: domain.CategoryCandidatureAnimateur, Label: "Candidature animateur", Description: "Rejoindre l'équipe d'animation", RequiredTier: domain.TierUpper, SubCategory: "ANIMATEUR"},
			{Code: domain.CategoryCandidatureModerateur, Label: "Candidature modérateur", Description: "Rejoindre l'équipe de modération", RequiredTier: domain.TierUpper, SubCategory: "MODERATEUR"},
			{Code: domain.CategoryCandidatureMJ, Label: "Candidature maître du jeu", Description: "Rejoindre l'équipe des maîtres du jeu", RequiredTier: domain.TierUpper, SubCategory: "MAITRE_DU_JEU"},
			{Code: domain.CategoryCandidatureOrga, Label: "Candidature organisation", Description: "Rejoindre l'équipe d'organisation", RequiredTier: domain.TierUpper, SubCategory: "ORGANISATION"},
			{Code: domain.CategoryPlainte, Label: "Plainte", Description: "Signaler le comportement d'un joueur", RequiredTier: domain.TierBase},
			{Code: domain.CategoryReclamation, Label: "Réclamation", Description: "Contester une sanction ou une décision", RequiredTier: domain.TierBase},
			{Code: domain.CategoryQuestions, Label: "Questions", Description: "Toute autre question au staff", RequiredTier: domain.TierBase},
		},
	}
}

// Load reads a policy file from path. An empty path returns the built-in
// default. A file that exists but does not parse is an error: a half-loaded
// permission table must not silently fall back to defaults.
func Load(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	policy := Default()
	if err := yaml.Unmarshal(raw, policy); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

// Validate checks that every category entry carries a known tier.
func (p *Policy) Validate() error {
	if len(p.Categories) == 0 {
		return fmt.Errorf("policy defines no categories")
	}
	for _, entry := range p.Categories {
		if entry.Code == "" {
			return fmt.Errorf("policy category with empty code")
		}
		if domain.TierRank(entry.RequiredTier) == 0 {
			return fmt.Errorf("policy category %s has unknown tier %q", entry.Code, entry.RequiredTier)
		}
	}
	return nil
}
