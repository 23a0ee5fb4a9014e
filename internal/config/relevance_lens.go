package config

import "github.com/codebrief/codebrief/internal/lens"

// relevanceTierPriority maps each of the profile's six relevance tiers to a
// point on lens.Group's continuous [0, 100] priority scale. Tier 0 is the
// teacher's highest-priority tier, so it gets the highest synthesized
// priority; the spacing leaves room above and below for a hand-written lens
// extending this one to insert its own groups.
var relevanceTierPriority = [6]int{95, 80, 60, 40, 25, 10}

// AsLens converts the profile's tier-based Relevance configuration and
// PriorityFiles list into a lens.Lens, so a profile that only ever
// configured the teacher's six-tier relevance model still governs real file
// priority during generate: internal/pipeline registers the result under the
// name "profile", making it selectable via --lens profile and traceable by
// `codebrief profiles explain` exactly like any built-in lens (spec.md
// section 4.8, "Priority Resolver").
//
// Groups are emitted in tier order, highest priority first, mirroring
// GroupMatcher's first-match-wins semantics. Empty tiers contribute no
// group. PriorityFiles becomes an AlwaysInclude group ahead of every tier,
// matching the teacher's "priority files are included before any tier-based
// sorting" rule.
func (p *Profile) AsLens(name string) *lens.Lens {
	groups := make([]lens.Group, 0, 7)

	if len(p.PriorityFiles) > 0 {
		groups = append(groups, lens.Group{
			Name:          "priority-files",
			Patterns:      append([]string(nil), p.PriorityFiles...),
			Priority:      100,
			AlwaysInclude: true,
		})
	}

	tiers := [6][]string{
		p.Relevance.Tier0,
		p.Relevance.Tier1,
		p.Relevance.Tier2,
		p.Relevance.Tier3,
		p.Relevance.Tier4,
		p.Relevance.Tier5,
	}
	for i, patterns := range tiers {
		if len(patterns) == 0 {
			continue
		}
		groups = append(groups, lens.Group{
			Name:     tierGroupName(i),
			Patterns: append([]string(nil), patterns...),
			Priority: relevanceTierPriority[i],
		})
	}

	return &lens.Lens{
		Name:        name,
		Description: "Synthesized from this profile's relevance tiers and priority_files.",
		Groups:      groups,
	}
}

func tierGroupName(tier int) string {
	names := [6]string{"tier_0", "tier_1", "tier_2", "tier_3", "tier_4", "tier_5"}
	return names[tier]
}
