package policy

import (
	"sort"

	"github.com/RorolRoro/tkg-site/internal/domain"
)

// Registry is the closed set of valid ticket categories. Entries are fixed
// at construction; there is no runtime mutation path.
type Registry struct {
	entries map[domain.CategoryCode]CategoryEntry
	order   []domain.CategoryCode
}

// NewRegistry builds a registry from the loaded policy. Later duplicates of
// a code are ignored.
func NewRegistry(p *Policy) *Registry {
	r := &Registry{entries: make(map[domain.CategoryCode]CategoryEntry, len(p.Categories))}
	for _, entry := range p.Categories {
		if _, exists := r.entries[entry.Code]; exists {
			continue
		}
		r.entries[entry.Code] = entry
		r.order = append(r.order, entry.Code)
	}
	return r
}

// Lookup returns the entry for code. Callers must treat a missing entry as
// "no restriction information" and deny non-admin access.
func (r *Registry) Lookup(code domain.CategoryCode) (CategoryEntry, bool) {
	entry, ok := r.entries[code]
	return entry, ok
}

// Codes returns the category codes in declaration order.
func (r *Registry) Codes() []domain.CategoryCode {
	out := make([]domain.CategoryCode, len(r.order))
	copy(out, r.order)
	return out
}

// CreationOption is one selectable category on the submission form. Group is
// a display heading derived from the required tier; it does not gate
// submission, which is open to every authenticated caller.
type CreationOption struct {
	Code        domain.CategoryCode
	Label       string
	Description string
	SubCategory string
	Group       string
}

var tierGroupLabels = map[domain.RoleTier]string{
	domain.TierTop:   "Demandes à la direction",
	domain.TierUpper: "Candidatures staff",
	domain.TierBase:  "Support général",
}

// ListForCreation returns every category, grouped by required tier in
// descending privilege order. The list is identical for all callers.
func (r *Registry) ListForCreation() []CreationOption {
	options := make([]CreationOption, 0, len(r.order))
	for _, code := range r.order {
		entry := r.entries[code]
		options = append(options, CreationOption{
			Code:        entry.Code,
			Label:       entry.Label,
			Description: entry.Description,
			SubCategory: entry.SubCategory,
			Group:       tierGroupLabels[entry.RequiredTier],
		})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return domain.TierRank(r.entries[options[i].Code].RequiredTier) >
			domain.TierRank(r.entries[options[j].Code].RequiredTier)
	})
	return options
}
