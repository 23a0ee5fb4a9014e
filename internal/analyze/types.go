// Package analyze provides per-language structural analyzers (spec.md section
// 4.6, "Structural Analyzers"). Each analyzer consumes a file's decoded text
// lines and produces a Facts summary plus two keep-range sets -- one for
// smart-mode truncation, one for the narrower structure mode -- that
// internal/truncate uses to decide what to keep.
//
// Analyzers are deliberately regex/line-prefix based: codebrief is not a
// parser and never builds an AST, so every analyzer in this package classifies
// lines one at a time; the only wider scans are short neighbourhood searches
// (a JSDoc opener above a declaration, a Python docstring's closing line).
package analyze

// Range is a half-open line interval [Start, End) in an analyzer's keep-range
// set, using zero-based line indices matching the slice passed to Analyze.
type Range struct {
	Start int
	End   int
}

// Facts holds the structural summary an analyzer extracts from a file:
// declared symbols, imports, and a handful of special markers. Not every
// field is populated by every analyzer -- a Facts value only carries what its
// language family can meaningfully detect (spec.md section 4.6's per-language
// "Additional facts" column).
type Facts struct {
	// Classes lists detected class/struct/trait-like type declarations.
	Classes []string

	// Functions lists detected function/method declarations, including
	// async and arrow-function variants where the language has them.
	Functions []string

	// Imports lists detected import/use/require statements, normalized to
	// whatever form is most useful for a quick scan (module path, package
	// name, etc.) -- not necessarily syntactically canonical.
	Imports []string

	// Exports lists detected exported symbols (JS/TS export statements,
	// Rust pub items). Empty for languages with no distinct export syntax.
	Exports []string

	// Decorators lists detected decorator/attribute lines (Python `@foo`,
	// Rust `#[derive(...)]`).
	Decorators []string

	// EntryPoints marks lines recognized as a program entry point: a `main`
	// function, a `if __name__ == "__main__"` guard, a shebang-led script.
	EntryPoints []string

	// TODOs lists TODO/FIXME comment lines verbatim.
	TODOs []string

	// Shebang is the first line's interpreter directive, if present.
	Shebang string
}

// Analyzer is the uniform per-language contract (spec.md section 4.6).
// Implementations are deterministic and side-effect-free: the same lines
// slice always yields the same Facts and keep-ranges.
type Analyzer interface {
	// Name identifies the analyzer for diagnostics (e.g. "python", "noop").
	Name() string

	// Analyze extracts Facts from the given lines (no trailing newlines).
	Analyze(lines []string) Facts

	// SmartKeepRanges returns the keep-range set for smart-mode truncation:
	// signatures, nearby documentation, and entry points, meant to fit
	// within a caller-provided line budget (spec.md section 4.6).
	SmartKeepRanges(lines []string, facts Facts) []Range

	// StructureKeepRanges returns the narrower keep-range set for structure
	// mode: imports and signatures only, never function/method bodies. An
	// empty result signals "this language has no structural reduction",
	// which internal/truncate treats as a degrade-to-smart trigger.
	StructureKeepRanges(lines []string, facts Facts) []Range
}
