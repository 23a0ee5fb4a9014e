package analyze

import (
	"regexp"
	"strings"
)

var yamlTopKeyPattern = regexp.MustCompile(`^([A-Za-z0-9_.\-]+):`)

// yamlAnalyzer recognizes YAML documents (.yaml, .yml). Top-level keys (no
// leading indentation) map onto Facts.Classes.
type yamlAnalyzer struct{}

func (yamlAnalyzer) Name() string { return "yaml" }

func (yamlAnalyzer) Analyze(lines []string) Facts {
	f := Facts{}
	for _, l := range lines {
		if m := yamlTopKeyPattern.FindStringSubmatch(l); m != nil {
			f.Classes = append(f.Classes, m[1])
		}
	}
	return f
}

func (yamlAnalyzer) SmartKeepRanges(lines []string, _ Facts) []Range {
	var ranges []Range
	total := len(lines)
	for i, l := range lines {
		if yamlTopKeyPattern.MatchString(l) {
			ranges = append(ranges, lookaheadRange(i, 1, total))
		}
	}
	return mergeRanges(ranges)
}

func (yamlAnalyzer) StructureKeepRanges(lines []string, _ Facts) []Range {
	var ranges []Range
	for i, l := range lines {
		if yamlTopKeyPattern.MatchString(l) {
			ranges = append(ranges, singleLine(i))
		}
	}
	return mergeRanges(ranges)
}
