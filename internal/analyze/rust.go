package analyze

import (
	"regexp"
	"strings"
)

var (
	rsStructPattern = regexp.MustCompile(`^\s*(pub(\(\w+\))?\s+)?struct\s+\w+`)
	rsEnumPattern   = regexp.MustCompile(`^\s*(pub(\(\w+\))?\s+)?enum\s+\w+`)
	rsTraitPattern  = regexp.MustCompile(`^\s*(pub(\(\w+\))?\s+)?trait\s+\w+`)
	rsImplPattern   = regexp.MustCompile(`^\s*impl(\s*<.*>)?\s+\w+`)
	rsFnPattern     = regexp.MustCompile(`^\s*(pub(\(\w+\))?\s+)?(async\s+)?fn\s+\w+`)
	rsUsePattern    = regexp.MustCompile(`^\s*(pub\s+)?use\s+\S+`)
	rsAttrPattern   = regexp.MustCompile(`^\s*#!?\[`)
	rsMainPattern   = regexp.MustCompile(`^\s*(async\s+)?fn\s+main\s*\(`)
	rsLookahead     = 3
)

// rustAnalyzer recognizes Rust source (.rs).
type rustAnalyzer struct{}

func (rustAnalyzer) Name() string { return "rust" }

func (rustAnalyzer) Analyze(lines []string) Facts {
	f := Facts{TODOs: scanTODOs(lines)}
	for _, l := range lines {
		switch {
		case rsStructPattern.MatchString(l), rsEnumPattern.MatchString(l), rsTraitPattern.MatchString(l):
			f.Classes = append(f.Classes, strings.TrimSpace(l))
		case rsMainPattern.MatchString(l):
			f.EntryPoints = append(f.EntryPoints, strings.TrimSpace(l))
			f.Functions = append(f.Functions, strings.TrimSpace(l))
		case rsFnPattern.MatchString(l):
			f.Functions = append(f.Functions, strings.TrimSpace(l))
		case rsUsePattern.MatchString(l):
			f.Imports = append(f.Imports, strings.TrimSpace(l))
		case rsAttrPattern.MatchString(l):
			f.Decorators = append(f.Decorators, strings.TrimSpace(l))
		}
		if strings.HasPrefix(strings.TrimSpace(l), "pub ") {
			f.Exports = append(f.Exports, strings.TrimSpace(l))
		}
	}
	return f
}

func (rustAnalyzer) SmartKeepRanges(lines []string, _ Facts) []Range {
	var ranges []Range
	total := len(lines)
	for i, l := range lines {
		switch {
		case rsUsePattern.MatchString(l), rsAttrPattern.MatchString(l):
			ranges = append(ranges, singleLine(i))
		case rsStructPattern.MatchString(l), rsEnumPattern.MatchString(l),
			rsTraitPattern.MatchString(l), rsImplPattern.MatchString(l),
			rsFnPattern.MatchString(l):
			ranges = append(ranges, lookaheadRange(i, rsLookahead, total))
		}
	}
	return mergeRanges(ranges)
}

func (rustAnalyzer) StructureKeepRanges(lines []string, _ Facts) []Range {
	var ranges []Range
	for i, l := range lines {
		switch {
		case rsUsePattern.MatchString(l),
			rsStructPattern.MatchString(l),
			rsEnumPattern.MatchString(l),
			rsTraitPattern.MatchString(l),
			rsImplPattern.MatchString(l),
			rsFnPattern.MatchString(l):
			ranges = append(ranges, singleLine(i))
		}
	}
	return mergeRanges(ranges)
}
