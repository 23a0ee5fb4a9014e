package analyze

import (
	"regexp"
	"strings"
)

var jsonKeyPattern = regexp.MustCompile(`^\s*"([^"]+)"\s*:`)

// jsonAnalyzer recognizes JSON documents (.json). Top-level keys map onto
// Facts.Classes; nesting depth isn't tracked in Facts since no generic field
// fits it, but it drives SmartKeepRanges' line selection directly.
type jsonAnalyzer struct{}

func (jsonAnalyzer) Name() string { return "json" }

func (jsonAnalyzer) Analyze(lines []string) Facts {
	f := Facts{}
	depth := 0
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if depth == 1 {
			if m := jsonKeyPattern.FindStringSubmatch(trimmed); m != nil {
				f.Classes = append(f.Classes, m[1])
			}
		}
		depth += strings.Count(l, "{") + strings.Count(l, "[")
		depth -= strings.Count(l, "}") + strings.Count(l, "]")
	}
	return f
}

func (jsonAnalyzer) SmartKeepRanges(lines []string, _ Facts) []Range {
	var ranges []Range
	depth := 0
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		if depth <= 1 && jsonKeyPattern.MatchString(trimmed) {
			ranges = append(ranges, singleLine(i))
		}
		depth += strings.Count(l, "{") + strings.Count(l, "[")
		depth -= strings.Count(l, "}") + strings.Count(l, "]")
	}
	if len(lines) > 0 {
		ranges = append(ranges, singleLine(0), singleLine(len(lines)-1))
	}
	return mergeRanges(ranges)
}

func (jsonAnalyzer) StructureKeepRanges(lines []string, facts Facts) []Range {
	return jsonAnalyzer{}.SmartKeepRanges(lines, facts)
}
