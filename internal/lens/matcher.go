package lens

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codebrief/codebrief/internal/pipeline"
)

// GroupMatcher assigns a file path to the first matching Group in a resolved
// Lens, mirroring the teacher's TierMatcher (internal/relevance/matcher.go)
// generalized from a fixed six-tier scale to an arbitrary ordered list of
// named priority groups.
type GroupMatcher struct {
	groups []compiledGroup
}

type compiledGroup struct {
	group    Group
	patterns []string
}

// NewGroupMatcher compiles the groups of a resolved Lens. Patterns that fail
// doublestar.ValidatePattern are silently discarded; a group with no valid
// patterns simply never matches.
func NewGroupMatcher(l *Lens) *GroupMatcher {
	if l == nil {
		return &GroupMatcher{}
	}
	compiled := make([]compiledGroup, 0, len(l.Groups))
	for _, g := range l.Groups {
		valid := make([]string, 0, len(g.Patterns))
		for _, p := range g.Patterns {
			if doublestar.ValidatePattern(p) {
				valid = append(valid, p)
			}
		}
		compiled = append(compiled, compiledGroup{group: g, patterns: valid})
	}
	return &GroupMatcher{groups: compiled}
}

// Match returns the group that claims filePath, the priority it assigns, and
// whether any group matched at all. When no group matches, the returned
// priority is DefaultGroupPriority and matched is false.
func (m *GroupMatcher) Match(filePath string) (group Group, priority int, alwaysInclude bool, matched bool) {
	normalized := normalize(filePath)

	for _, entry := range m.groups {
		for _, pattern := range entry.patterns {
			ok, err := doublestar.Match(pattern, normalized)
			if err != nil {
				continue
			}
			if !strings.Contains(pattern, "/") && !ok {
				for _, seg := range strings.Split(normalized, "/") {
					if ok2, _ := doublestar.Match(pattern, seg); ok2 {
						ok = true
						break
					}
				}
			}
			if ok {
				return entry.group, entry.group.Priority, entry.group.AlwaysInclude, true
			}
		}
	}

	return Group{}, pipeline.DefaultPriority, false, false
}

func normalize(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	return strings.TrimPrefix(path, "./")
}
