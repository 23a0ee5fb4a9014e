// Package lens implements lens-based priority resolution: generalizing the
// teacher's fixed six-tier relevance model (internal/relevance, now retired)
// into named, inheritable pattern groups with a continuous [0, 100] priority
// scale (spec.md section 3, "Lens"; section 4.8, "Priority Resolver").
package lens

import "github.com/codebrief/codebrief/internal/pipeline"

// Group is a single pattern-to-priority rule within a lens. Patterns are
// evaluated in definition order within a lens; the first matching group wins.
type Group struct {
	// Name labels the group for diagnostics (e.g. "critical-config").
	Name string `toml:"name"`

	// Patterns are doublestar glob patterns. A file matches the group if it
	// matches any pattern here.
	Patterns []string `toml:"patterns"`

	// Priority is the static priority assigned to files matching this group,
	// in [0, 100]. Higher survives budgeting longer.
	Priority int `toml:"priority"`

	// TruncationOverride, when non-empty, forces this truncation mode for
	// files in this group regardless of the allocator's own mode selection.
	TruncationOverride pipeline.TruncationMode `toml:"truncation_override"`

	// AlwaysInclude marks every file matching this group as exempt from
	// budget-driven dropping (still subject to per-file truncation).
	AlwaysInclude bool `toml:"always_include"`
}

// Lens is a named, inheritable bundle of priority groups plus an optional
// glob include/exclude pair (spec.md section 4.3) scoping which files the
// lens considers at all.
type Lens struct {
	// Name is the lens identifier, e.g. "architecture".
	Name string `toml:"-"`

	// Description is a short human-readable summary shown by `codebrief lens
	// list` and written into the emitted .codebrief_meta record.
	Description string `toml:"description"`

	// Extends names a parent lens this one inherits from. Nil/empty means no
	// parent (other than the implicit "minimal" base applied to every lens
	// except "minimal" itself, mirroring the teacher's default-profile base).
	Extends *string `toml:"extends"`

	// Groups are the priority groups, evaluated in order. Child groups
	// replace the parent's entirely when non-empty (no field-level merge),
	// matching the teacher's "profile-defined tiers override the defaults
	// entirely" design note.
	Groups []Group `toml:"groups"`

	// Include/Exclude form the lens's own glob pattern set (spec.md section
	// 4.3), layered beneath any CLI --include/--exclude override.
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// DefaultGroupPriority is used when a lens defines no groups at all (an empty
// lens admits everything at the default priority).
const DefaultGroupPriority = pipeline.DefaultPriority

// BuiltinLenses returns the five built-in lenses named in spec.md section 3's
// lens table: architecture, debug, security, onboarding, minimal.
func BuiltinLenses() map[string]*Lens {
	lenses := map[string]*Lens{
		"minimal": {
			Name:        "minimal",
			Description: "Project shape only: manifests, entry points, top-level docs.",
			Groups: []Group{
				{
					Name:     "manifests",
					Patterns: []string{"go.mod", "package.json", "Cargo.toml", "pyproject.toml", "*.config.*"},
					Priority: 95,
				},
				{
					Name:     "entry-points",
					Patterns: []string{"cmd/**/main.go", "main.go", "index.ts", "index.js", "src/main.*"},
					Priority: 85,
				},
				{
					Name:     "top-level-docs",
					Patterns: []string{"README*", "*.md"},
					Priority: 70,
				},
			},
			Include: []string{
				"go.mod", "package.json", "Cargo.toml", "pyproject.toml", "*.config.*",
				"cmd/**/main.go", "main.go", "index.ts", "index.js", "src/main.*",
				"README*", "*.md",
			},
		},
		"architecture": {
			Name:        "architecture",
			Description: "Structural overview: source layout, interfaces, and module boundaries.",
			Groups: []Group{
				{Name: "config", Patterns: []string{"go.mod", "Cargo.toml", "package.json", "Dockerfile", "Makefile"}, Priority: 90},
				{Name: "primary-source", Patterns: []string{"src/**", "cmd/**", "internal/**", "pkg/**", "lib/**", "app/**"}, Priority: 80},
				{Name: "interfaces", Patterns: []string{"**/*interface*", "**/*.proto", "**/api/**"}, Priority: 85},
				{Name: "tests", Patterns: []string{"*_test.go", "*.test.ts", "*.spec.ts", "test/**", "tests/**"}, Priority: 20},
				{Name: "docs", Patterns: []string{"*.md", "docs/**"}, Priority: 40},
			},
		},
		"debug": {
			Name:        "debug",
			Description: "Recently touched and error-handling-heavy files, for active debugging.",
			Groups: []Group{
				{Name: "error-handling", Patterns: []string{"**/errors.go", "**/error*.go", "**/*exception*"}, Priority: 90},
				{Name: "primary-source", Patterns: []string{"src/**", "cmd/**", "internal/**", "pkg/**"}, Priority: 70},
				{Name: "tests", Patterns: []string{"*_test.go", "*.test.ts", "*.spec.ts"}, Priority: 60},
				{Name: "logs-config", Patterns: []string{"*.log", "**/logging/**"}, Priority: 50},
			},
		},
		"security": {
			Name:        "security",
			Description: "Auth, crypto, network boundary, and dependency-manifest surfaces.",
			Groups: []Group{
				{Name: "auth", Patterns: []string{"**/auth/**", "**/*auth*.go", "**/*login*", "**/*session*"}, Priority: 95},
				{Name: "crypto", Patterns: []string{"**/*crypto*", "**/*tls*", "**/*cert*"}, Priority: 95},
				{Name: "network", Patterns: []string{"**/handlers/**", "**/middleware/**", "**/*server*"}, Priority: 80},
				{Name: "dependency-manifests", Patterns: []string{"go.sum", "package-lock.json", "yarn.lock", "Cargo.lock"}, Priority: 60},
			},
		},
		"onboarding": {
			Name:        "onboarding",
			Description: "Documentation and top-level examples, for a newcomer's first read.",
			Groups: []Group{
				{Name: "docs", Patterns: []string{"README*", "*.md", "docs/**", "CONTRIBUTING*"}, Priority: 95},
				{Name: "examples", Patterns: []string{"examples/**", "**/example*"}, Priority: 75},
				{Name: "entry-points", Patterns: []string{"cmd/**/main.go", "main.go"}, Priority: 60},
			},
		},
	}
	for name, l := range lenses {
		l.Name = name
	}
	return lenses
}
