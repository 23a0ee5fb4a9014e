// Package globset compiles ordered include/exclude glob pattern pairs into a
// match function for files and a conservative prune test for directories
// (spec.md section 4.3, "Glob Matcher").
//
// Matching is always performed against the forward-slash relative path,
// case-sensitive. A pattern with no "/" matches against any path segment as
// well as the whole path, mirroring spec.md's "a pattern without / matches
// against any path segment as well as the whole path" rule -- doublestar
// already treats a bare name as a single-segment pattern, so matching it
// against the full path is sufficient except for the "any segment" case,
// which this package implements explicitly.
package globset

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Set is a compiled, ordered (include-set, exclude-set) pair (spec.md
// section 3, "Glob pattern set"). The zero value is a permissive Set that
// admits every file and prunes no directory.
type Set struct {
	include []string
	exclude []string
}

// New compiles a Set from raw include and exclude pattern slices. Patterns
// that fail doublestar.ValidatePattern are dropped; a caller that wants to
// surface invalid-glob errors should validate patterns itself before
// construction (this matches spec.md section 7's "invalid glob" being a
// configuration-time fatal error, which is a concern of the config-loading
// shell, not this package).
func New(include, exclude []string) *Set {
	return &Set{
		include: compile(include),
		exclude: compile(exclude),
	}
}

func compile(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if doublestar.ValidatePattern(p) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether path is admitted by the set, per spec.md section 3:
//
//   - empty include-set: admit anything not matched by exclude-set.
//   - non-empty include-set: admit only files matched by include-set;
//     exclude-set still removes.
func (s *Set) Matches(path string) bool {
	if s == nil {
		return true
	}
	path = normalize(path)

	if matchAny(s.exclude, path) {
		return false
	}
	if len(s.include) == 0 {
		return true
	}
	return matchAny(s.include, path)
}

// Prunes reports whether directory dirPath should be skipped entirely
// (not descended). A directory is pruned only if it is excluded AND no
// include pattern could ever reach inside it -- the conservative test
// required by spec.md section 4.3.
func (s *Set) Prunes(dirPath string) bool {
	if s == nil {
		return false
	}
	dirPath = normalize(dirPath)

	excluded := matchAny(s.exclude, dirPath) || matchAnyDir(s.exclude, dirPath)
	if !excluded {
		return false
	}
	if len(s.include) == 0 {
		return true
	}
	// Conservative: prune only if no include pattern could possibly match a
	// descendant of dirPath. A pattern could reach inside dirPath if it is a
	// prefix-compatible "**" pattern, or if dirPath is itself a prefix of a
	// literal/glob segment chain the pattern could produce.
	for _, p := range s.include {
		if couldReachInto(p, dirPath) {
			return false
		}
	}
	return true
}

// matchAny reports whether path matches any pattern in patterns, either as
// the whole path or (for patterns with no "/") as any single path segment.
func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			for _, seg := range strings.Split(path, "/") {
				if ok, _ := doublestar.Match(p, seg); ok {
					return true
				}
			}
		}
	}
	return false
}

// matchAnyDir additionally tries patterns against path with a trailing
// slash, supporting directory-only exclude patterns such as "build/".
func matchAnyDir(patterns []string, path string) bool {
	withSlash := path + "/"
	for _, p := range patterns {
		trimmed := strings.TrimSuffix(p, "/")
		if ok, _ := doublestar.Match(trimmed, path); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, withSlash); ok {
			return true
		}
	}
	return false
}

// couldReachInto conservatively reports whether an include pattern could
// ever match some descendant path of dirPath.
func couldReachInto(pattern, dirPath string) bool {
	if strings.Contains(pattern, "**") {
		// A "**" pattern can reach any depth from whichever fixed prefix
		// precedes it, so it always could reach into dirPath unless its
		// fixed literal prefix (the segments before the first "**") is
		// itself excluded by a mismatch against dirPath's corresponding
		// prefix segments.
		prefix := strings.SplitN(pattern, "**", 2)[0]
		prefix = strings.TrimSuffix(prefix, "/")
		if prefix == "" {
			return true
		}
		return pathsCompatible(prefix, dirPath)
	}

	patternSegs := strings.Split(pattern, "/")
	dirSegs := strings.Split(dirPath, "/")
	if len(dirSegs) >= len(patternSegs) {
		return false
	}
	for i, seg := range dirSegs {
		if ok, _ := doublestar.Match(patternSegs[i], seg); !ok {
			return false
		}
	}
	return true
}

// pathsCompatible reports whether one of prefix/dirPath could be a prefix of
// the other, segment-wise, using glob matching per segment.
func pathsCompatible(prefix, dirPath string) bool {
	pSegs := strings.Split(prefix, "/")
	dSegs := strings.Split(dirPath, "/")
	n := len(pSegs)
	if len(dSegs) < n {
		n = len(dSegs)
	}
	for i := 0; i < n; i++ {
		if ok, _ := doublestar.Match(pSegs[i], dSegs[i]); !ok {
			return false
		}
	}
	return true
}

func normalize(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	return strings.TrimPrefix(path, "./")
}
