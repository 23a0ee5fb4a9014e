package analyze

import (
	"regexp"
	"strings"
)

var todoPattern = regexp.MustCompile(`(?i)\b(TODO|FIXME)\b`)

// scanTODOs collects every line matching a TODO/FIXME marker, verbatim.
func scanTODOs(lines []string) []string {
	var found []string
	for _, l := range lines {
		if todoPattern.MatchString(l) {
			found = append(found, strings.TrimSpace(l))
		}
	}
	return found
}

// detectShebang returns line 0 if it begins with "#!", else "".
func detectShebang(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	if strings.HasPrefix(lines[0], "#!") {
		return lines[0]
	}
	return ""
}

// indentOf returns the leading whitespace run of s.
func indentOf(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}
