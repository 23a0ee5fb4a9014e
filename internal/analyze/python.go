package analyze

import (
	"regexp"
	"strings"
)

var (
	pyClassPattern    = regexp.MustCompile(`^\s*class\s+\w+`)
	pyFuncPattern     = regexp.MustCompile(`^\s*(async\s+)?def\s+\w+`)
	pyImportPattern   = regexp.MustCompile(`^\s*(import\s+\S+|from\s+\S+\s+import\s+)`)
	pyDecoratorPat    = regexp.MustCompile(`^\s*@\w+`)
	pyMainGuardPat    = regexp.MustCompile(`^\s*if\s+__name__\s*==\s*["']__main__["']\s*:`)
	pySmartLookahead  = 4
	pyDocstringOpener = regexp.MustCompile(`^\s*(r|u|b|f)?("""|''')`)
)

// pythonAnalyzer recognizes Python-family source (.py, .pyw).
type pythonAnalyzer struct{}

func (pythonAnalyzer) Name() string { return "python" }

func (pythonAnalyzer) Analyze(lines []string) Facts {
	f := Facts{TODOs: scanTODOs(lines), Shebang: detectShebang(lines)}
	for _, l := range lines {
		switch {
		case pyClassPattern.MatchString(l):
			f.Classes = append(f.Classes, strings.TrimSpace(l))
		case pyFuncPattern.MatchString(l):
			f.Functions = append(f.Functions, strings.TrimSpace(l))
		case pyImportPattern.MatchString(l):
			f.Imports = append(f.Imports, strings.TrimSpace(l))
		case pyDecoratorPat.MatchString(l):
			f.Decorators = append(f.Decorators, strings.TrimSpace(l))
		case pyMainGuardPat.MatchString(l):
			f.EntryPoints = append(f.EntryPoints, strings.TrimSpace(l))
		}
	}
	return f
}

func (pythonAnalyzer) SmartKeepRanges(lines []string, _ Facts) []Range {
	var ranges []Range
	total := len(lines)
	for i, l := range lines {
		switch {
		case pyImportPattern.MatchString(l):
			ranges = append(ranges, singleLine(i))
		case pyDecoratorPat.MatchString(l):
			ranges = append(ranges, lookaheadRange(i, pySmartLookahead, total))
		case pyClassPattern.MatchString(l), pyFuncPattern.MatchString(l):
			end := i + pySmartLookahead + 1
			if end > total {
				end = total
			}
			// extend through the docstring's closing line when the
			// signature is immediately followed by a docstring opener, so
			// the docstring survives.
			if i+1 < total && pyDocstringOpener.MatchString(lines[i+1]) {
				if closeEnd := closeDocstring(lines, i+1, total); closeEnd > end {
					end = closeEnd
				}
			}
			ranges = append(ranges, Range{Start: i, End: end})
		case pyMainGuardPat.MatchString(l):
			ranges = append(ranges, lookaheadRange(i, pySmartLookahead, total))
		}
	}
	return mergeRanges(ranges)
}

func (pythonAnalyzer) StructureKeepRanges(lines []string, _ Facts) []Range {
	var ranges []Range
	for i, l := range lines {
		switch {
		case pyImportPattern.MatchString(l),
			pyClassPattern.MatchString(l),
			pyFuncPattern.MatchString(l),
			pyDecoratorPat.MatchString(l):
			ranges = append(ranges, singleLine(i))
		}
	}
	return mergeRanges(ranges)
}

// closeDocstring scans forward from a triple-quote opener to find its
// closing line, returning the exclusive end of the docstring block. Falls
// back to start+1 if no closer is found within the remaining lines.
func closeDocstring(lines []string, start, total int) int {
	quote := `"""`
	if strings.Contains(lines[start], "'''") {
		quote = `'''`
	}
	opener := strings.Count(lines[start], quote)
	if opener >= 2 {
		return start + 1
	}
	for i := start + 1; i < total; i++ {
		if strings.Contains(lines[i], quote) {
			return i + 1
		}
	}
	return start + 1
}
