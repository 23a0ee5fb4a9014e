package lens

import (
	"fmt"
	"log/slog"
	"strings"
)

// maxInheritanceDepth mirrors the teacher's profile-inheritance warning
// threshold (internal/config/profile.go).
const maxInheritanceDepth = 3

// Resolution is a lens fully flattened through its inheritance chain.
type Resolution struct {
	// Lens is the merged lens. Extends is always nil after resolution.
	Lens *Lens

	// Chain lists the inheritance path from the requested lens to its
	// ultimate ancestor, e.g. ["security", "minimal"].
	Chain []string
}

// Resolve resolves the named lens against the supplied user-defined lenses,
// falling back to the five built-in lenses (BuiltinLenses) for any name not
// present in lenses. Every lens except "minimal" implicitly extends
// "minimal" when it declares no Extends of its own, guaranteeing every lens
// at least covers the project-shape groups.
func Resolve(name string, lenses map[string]*Lens) (*Resolution, error) {
	resolution, err := resolveChain(name, lenses, nil)
	if err != nil {
		return nil, err
	}

	if depth := len(resolution.Chain); depth > maxInheritanceDepth {
		slog.Warn("deep lens inheritance; consider flattening",
			"lens", name,
			"depth", depth,
			"chain", strings.Join(resolution.Chain, " -> "),
		)
	}

	return resolution, nil
}

func resolveChain(name string, lenses map[string]*Lens, visited []string) (*Resolution, error) {
	for _, v := range visited {
		if v == name {
			cycle := append(visited, name)
			return nil, fmt.Errorf("circular lens inheritance: %s", strings.Join(cycle, " -> "))
		}
	}
	visited = append(visited, name)

	l := lookup(name, lenses)
	if l == nil {
		return nil, fmt.Errorf("lens %q is not defined", name)
	}

	if l.Extends == nil || *l.Extends == "" {
		if name != "minimal" {
			baseRes, err := resolveChain("minimal", lenses, nil)
			if err != nil {
				return nil, fmt.Errorf("resolving minimal base for %q: %w", name, err)
			}
			merged := merge(baseRes.Lens, l)
			chain := append([]string{name}, baseRes.Chain...)
			return &Resolution{Lens: merged, Chain: chain}, nil
		}
		return &Resolution{Lens: clone(l), Chain: []string{name}}, nil
	}

	parentName := *l.Extends
	parentRes, err := resolveChain(parentName, lenses, visited)
	if err != nil {
		return nil, fmt.Errorf("resolving parent %q for lens %q: %w", parentName, name, err)
	}

	merged := merge(parentRes.Lens, l)
	chain := append([]string{name}, parentRes.Chain...)
	return &Resolution{Lens: merged, Chain: chain}, nil
}

func lookup(name string, lenses map[string]*Lens) *Lens {
	if l, ok := lenses[name]; ok {
		return l
	}
	if builtin, ok := BuiltinLenses()[name]; ok {
		return builtin
	}
	return nil
}

// merge applies child on top of parent: scalar fields (Description) take the
// child's value when non-empty; slice fields (Groups, Include, Exclude)
// replace the parent's entirely when the child supplies a non-empty slice,
// per the teacher's "child overrides entirely, no merge" tier-definition
// rule (internal/config/profile.go).
func merge(parent, child *Lens) *Lens {
	out := clone(parent)
	out.Name = child.Name

	if child.Description != "" {
		out.Description = child.Description
	}
	if len(child.Groups) > 0 {
		out.Groups = cloneGroups(child.Groups)
	}
	if len(child.Include) > 0 {
		out.Include = append([]string(nil), child.Include...)
	}
	if len(child.Exclude) > 0 {
		out.Exclude = append([]string(nil), child.Exclude...)
	}
	out.Extends = nil
	return out
}

func clone(l *Lens) *Lens {
	out := &Lens{
		Name:        l.Name,
		Description: l.Description,
		Groups:      cloneGroups(l.Groups),
		Include:     append([]string(nil), l.Include...),
		Exclude:     append([]string(nil), l.Exclude...),
	}
	return out
}

func cloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = g
		out[i].Patterns = append([]string(nil), g.Patterns...)
	}
	return out
}
