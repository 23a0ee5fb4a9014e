package analyze

import (
	"regexp"
	"strings"
)

var (
	mdHeaderPattern = regexp.MustCompile(`^#{1,6}\s+\S`)
	mdFencePattern  = regexp.MustCompile("^```")
	mdLinkPattern   = regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`)
)

// markdownAnalyzer recognizes Markdown documents (.md, .markdown). Headers
// map onto Facts.Classes (the closest generic analogue of a named section),
// links map onto Facts.Imports, and fenced code-block openers map onto
// Facts.Decorators.
type markdownAnalyzer struct{}

func (markdownAnalyzer) Name() string { return "markdown" }

func (markdownAnalyzer) Analyze(lines []string) Facts {
	f := Facts{TODOs: scanTODOs(lines)}
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		switch {
		case mdHeaderPattern.MatchString(trimmed):
			f.Classes = append(f.Classes, trimmed)
		case mdFencePattern.MatchString(trimmed):
			f.Decorators = append(f.Decorators, trimmed)
		}
		if mdLinkPattern.MatchString(l) {
			f.Imports = append(f.Imports, mdLinkPattern.FindString(l))
		}
	}
	return f
}

func (markdownAnalyzer) SmartKeepRanges(lines []string, _ Facts) []Range {
	var ranges []Range
	total := len(lines)
	for i, l := range lines {
		if mdHeaderPattern.MatchString(strings.TrimSpace(l)) {
			ranges = append(ranges, lookaheadRange(i, 2, total))
		}
	}
	return mergeRanges(ranges)
}

func (markdownAnalyzer) StructureKeepRanges(lines []string, _ Facts) []Range {
	var ranges []Range
	for i, l := range lines {
		if mdHeaderPattern.MatchString(strings.TrimSpace(l)) {
			ranges = append(ranges, singleLine(i))
		}
	}
	return mergeRanges(ranges)
}
