package domain

// CategoryCode identifies a ticket category. The set of valid codes is a
// closed enumeration fixed at process start by the policy configuration.
type CategoryCode string

const (
	CategoryCandidatureClan       CategoryCode = "CANDIDATURE_CLAN"
	CategoryRPKCK                 CategoryCode = "RPK_CK"
	CategoryCandidatureAnimateur  CategoryCode = "CANDIDATURE_STAFF_ANIMATEUR"
	CategoryCandidatureModerateur CategoryCode = "CANDIDATURE_STAFF_MODERATEUR"
	CategoryCandidatureMJ         CategoryCode = "CANDIDATURE_STAFF_MAITRE_DU_JEU"
	CategoryCandidatureOrga       CategoryCode = "CANDIDATURE_ORGANISATION"
	CategoryPlainte               CategoryCode = "PLAINTE"
	CategoryReclamation           CategoryCode = "RECLAMATION"
	CategoryQuestions             CategoryCode = "QUESTIONS"
)

// RoleTier orders the permission levels gating category visibility.
type RoleTier string

const (
	TierTop   RoleTier = "TOP"
	TierUpper RoleTier = "UPPER"
	TierBase  RoleTier = "BASE"
)

// TierRank returns the privilege rank of a tier, higher meaning more
// privileged. Unknown tiers rank below everything.
func TierRank(t RoleTier) int {
	switch t {
	case TierTop:
		return 3
	case TierUpper:
		return 2
	case TierBase:
		return 1
	default:
		return 0
	}
}
