package redact

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codebrief/codebrief/internal/pipeline"
)

// Options configures a Redactor, mirroring internal/config's RedactionConfig
// (ExcludePaths, ConfidenceThreshold).
type Options struct {
	// Threshold is the minimum confidence a rule must carry to fire.
	// ConfidenceHigh (the default) only redacts AWS keys and private-key
	// blocks; ConfidenceMedium adds bearer tokens; ConfidenceLow also adds
	// the generic key=value heuristic, at the cost of more false positives.
	Threshold Confidence

	// ExcludePaths are doublestar glob patterns for paths skipped entirely
	// (test fixtures, documentation that intentionally shows example keys).
	ExcludePaths []string
}

// Redactor masks secrets in FileDescriptor content in place, reporting a
// per-file count on fd.Redactions. It holds no per-file state, so a single
// instance is reused across an entire run.
type Redactor struct {
	opts Options
}

// New constructs a Redactor from Options.
func New(opts Options) *Redactor {
	return &Redactor{opts: opts}
}

// Redact scans fd.Content for secrets and replaces each match with
// "[REDACTED:<kind>]", updating fd.Content and fd.Redactions in place.
// Returns the findings for the diagnostic channel (spec.md section 5);
// findings are never embedded in the output document itself.
func (r *Redactor) Redact(fd *pipeline.FileDescriptor) []Finding {
	if r.excluded(fd.Path) {
		return nil
	}

	lines := strings.Split(fd.Content, "\n")
	var findings []Finding

	inKeyBlock := false
	for i, line := range lines {
		switch {
		case inKeyBlock:
			lines[i] = "[REDACTED:private_key]"
			if privateKeyEnd.MatchString(line) {
				inKeyBlock = false
			}
			findings = append(findings, Finding{Kind: KindPrivateKey, Line: i + 1, Confidence: ConfidenceHigh})
			continue
		case privateKeyBegin.MatchString(line):
			if ConfidenceHigh < r.opts.Threshold {
				continue
			}
			inKeyBlock = !privateKeyEnd.MatchString(line)
			lines[i] = "[REDACTED:private_key]"
			findings = append(findings, Finding{Kind: KindPrivateKey, Line: i + 1, Confidence: ConfidenceHigh})
			continue
		}

		redacted, lineFindings := redactLine(line, i+1, r.opts.Threshold)
		lines[i] = redacted
		findings = append(findings, lineFindings...)
	}

	fd.Content = strings.Join(lines, "\n")
	fd.Redactions = len(findings)
	return findings
}

// redactLine applies every lineRule at or above threshold to a single line,
// returning the rewritten line and the findings it produced.
func redactLine(line string, lineNo int, threshold Confidence) (string, []Finding) {
	var findings []Finding
	for _, rl := range lineRules {
		if rl.confidence < threshold {
			continue
		}
		line = rl.pattern.ReplaceAllStringFunc(line, func(match string) string {
			findings = append(findings, Finding{Kind: rl.kind, Line: lineNo, Confidence: rl.confidence})
			if rl.group == 0 {
				return marker(rl.kind)
			}
			sub := rl.pattern.FindStringSubmatch(match)
			if len(sub) <= rl.group {
				return marker(rl.kind)
			}
			return strings.Replace(match, sub[rl.group], marker(rl.kind), 1)
		})
	}
	return line, findings
}

func marker(kind Kind) string {
	return fmt.Sprintf("[REDACTED:%s]", kind)
}

// excluded reports whether path matches one of the configured exclude
// patterns and should be skipped entirely.
func (r *Redactor) excluded(path string) bool {
	for _, pattern := range r.opts.ExcludePaths {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
