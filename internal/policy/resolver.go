package policy

import (
	"github.com/RorolRoro/tkg-site/internal/domain"
)

// Resolver decides whether a caller may view and manage tickets of a given
// category. It is a pure function over its inputs, the registry and the
// TOP allow-list; it never errors, and absent inputs resolve to deny.
//
// Note the observed tier semantics: UPPER admits any staff member, exactly
// like BASE, unless the caller is on the TOP allow-list. There is no real
// intermediate tier between UPPER and BASE.
type Resolver struct {
	registry *Registry
	topAllow map[string]struct{}
}

// NewResolver builds a resolver over the registry and the policy allow-list.
func NewResolver(registry *Registry, p *Policy) *Resolver {
	allow := make(map[string]struct{}, len(p.TopAllowList))
	for _, id := range p.TopAllowList {
		allow[id] = struct{}{}
	}
	return &Resolver{registry: registry, topAllow: allow}
}

// CanAccess reports whether the caller may view/manage tickets of category.
// The allow-list check is a flat membership test against the configured IDs,
// not a live guild-role lookup.
func (r *Resolver) CanAccess(discordID string, role domain.CoarseRole, category domain.CategoryCode) bool {
	if discordID == "" || role == "" {
		return false
	}
	if role == domain.RoleAdmin {
		return true
	}

	entry, ok := r.registry.Lookup(category)
	if !ok {
		return false
	}
	if r.isTopAllowed(discordID) {
		return true
	}

	switch entry.RequiredTier {
	case domain.TierTop:
		return false
	case domain.TierUpper, domain.TierBase:
		return role == domain.RoleStaff
	default:
		return false
	}
}

// PermittedCategories filters the registry down to the categories the caller
// may manage, in declaration order.
func (r *Resolver) PermittedCategories(discordID string, role domain.CoarseRole) []domain.CategoryCode {
	var out []domain.CategoryCode
	for _, code := range r.registry.Codes() {
		if r.CanAccess(discordID, role, code) {
			out = append(out, code)
		}
	}
	return out
}

func (r *Resolver) isTopAllowed(discordID string) bool {
	_, ok := r.topAllow[discordID]
	return ok
}
