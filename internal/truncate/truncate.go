// Package truncate applies a per-file truncation mode to decoded content
// using the keep-range sets internal/analyze computes (spec.md section 4.7,
// "Truncator"). It reports the original and final line counts on the
// descriptor so internal/frame can carry both in the end marker.
package truncate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/codebrief/codebrief/internal/analyze"
	"github.com/codebrief/codebrief/internal/pipeline"
)

// errEmptyKeepRanges is returned internally when a mode's keep-range set is
// empty for a file -- the defined degrade case for structure mode on a
// language with no structural reduction (spec.md section 4.6).
var errEmptyKeepRanges = errors.New("truncate: keep-range set is empty")

// Truncator applies a truncation mode to a FileDescriptor's content, falling
// back one mode at a time (structure -> smart -> simple -> none) whenever the
// analyzer panics or reports an empty keep-range set, so a single
// misbehaving or unsupported file never aborts the run.
type Truncator struct{}

// New constructs a Truncator. It holds no state: every call is independent.
func New() *Truncator {
	return &Truncator{}
}

// Truncate returns a new FileDescriptor (the input is never mutated) with
// Content, TruncationMode, OriginalLines, and FinalLines set according to
// mode, degrading on failure as described on Truncator.
//
// lineLimit bounds smart and simple modes; a value <= 0 means "no limit"
// (smart mode still collapses to keep-ranges, simple mode returns all
// lines unchanged).
func (t *Truncator) Truncate(fd *pipeline.FileDescriptor, mode pipeline.TruncationMode, lineLimit int, a analyze.Analyzer) *pipeline.FileDescriptor {
	lines := splitLines(fd.Content)
	return t.apply(fd, lines, mode, lineLimit, a)
}

func (t *Truncator) apply(fd *pipeline.FileDescriptor, lines []string, mode pipeline.TruncationMode, lineLimit int, a analyze.Analyzer) *pipeline.FileDescriptor {
	result, err := t.tryApply(fd, lines, mode, lineLimit, a)
	if err == nil {
		return result
	}

	next := degrade(mode)
	slog.Warn("truncation mode degraded",
		"path", fd.Path,
		"from", string(mode),
		"to", string(next),
		"reason", err.Error(),
	)
	if next == mode {
		// mode was already none; tryApply for none never errors, so this
		// branch is unreachable in practice but guards against infinite
		// recursion if it ever is.
		return copyWith(fd, fd.Content, len(lines), len(lines), pipeline.ModeNone)
	}
	return t.apply(fd, lines, next, lineLimit, a)
}

// tryApply runs a single mode attempt, converting an analyzer panic into an
// error so apply can degrade rather than letting the panic propagate and
// abort the run (spec.md section 4.7's failure policy).
func (t *Truncator) tryApply(fd *pipeline.FileDescriptor, lines []string, mode pipeline.TruncationMode, lineLimit int, a analyze.Analyzer) (result *pipeline.FileDescriptor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyzer panic: %v", r)
		}
	}()

	switch mode {
	case pipeline.ModeSimple:
		result = t.simple(fd, lines, lineLimit)
	case pipeline.ModeSmart:
		result = t.smart(fd, lines, lineLimit, a)
	case pipeline.ModeStructure:
		result, err = t.structure(fd, lines, lineLimit, a)
	default:
		result = copyWith(fd, fd.Content, len(lines), len(lines), pipeline.ModeNone)
	}
	return result, err
}

// simple keeps the first lineLimit lines verbatim and appends a one-line
// annotation with the original and retained line counts.
func (t *Truncator) simple(fd *pipeline.FileDescriptor, lines []string, lineLimit int) *pipeline.FileDescriptor {
	total := len(lines)
	if lineLimit <= 0 || lineLimit >= total {
		return copyWith(fd, fd.Content, total, total, pipeline.ModeSimple)
	}

	kept := lines[:lineLimit]
	content := strings.Join(kept, "\n") + "\n" + annotation(lineLimit, total)
	return copyWith(fd, content, total, lineLimit, pipeline.ModeSimple)
}

// smart retains the analyzer's smart keep-ranges, greedily from the earliest
// line forward until lineLimit would be exceeded (spec.md's "trim the least
// important ranges ... by line number as tie-break" -- every range here
// carries equal salience, so earliest-first is the deterministic tie-break),
// collapses gaps to a marker line, and appends a structured facts summary.
func (t *Truncator) smart(fd *pipeline.FileDescriptor, lines []string, lineLimit int, a analyze.Analyzer) *pipeline.FileDescriptor {
	total := len(lines)
	facts := a.Analyze(lines)
	ranges := a.SmartKeepRanges(lines, facts)
	if len(ranges) == 0 {
		return copyWith(fd, fd.Content, total, total, pipeline.ModeSmart)
	}

	kept := fitRanges(ranges, lineLimit)
	content, keptLines := renderRanges(lines, kept)
	content += "\n" + factsSummary(facts)
	return copyWith(fd, content, total, keptLines, pipeline.ModeSmart)
}

// structure retains only the analyzer's structure keep-ranges. An empty
// keep-range set (an unrecognized language) is the documented degrade
// trigger to smart mode, signaled via errEmptyKeepRanges.
func (t *Truncator) structure(fd *pipeline.FileDescriptor, lines []string, lineLimit int, a analyze.Analyzer) (*pipeline.FileDescriptor, error) {
	total := len(lines)
	facts := a.Analyze(lines)
	ranges := a.StructureKeepRanges(lines, facts)
	if len(ranges) == 0 {
		return nil, errEmptyKeepRanges
	}

	kept := fitRanges(ranges, lineLimit)
	content, keptLines := renderRanges(lines, kept)
	content += "\n" + structureAnnotation(keptLines, total)
	return copyWith(fd, content, total, keptLines, pipeline.ModeStructure), nil
}

// structureAnnotation renders the one-line original/retained count marker
// structure mode appends to its content.
func structureAnnotation(kept, total int) string {
	return fmt.Sprintf("<!-- Structure mode: %d of %d lines shown -->", kept, total)
}

// fitRanges returns the leading prefix of ranges (sorted by start, which
// mergeRanges-produced sets already are) whose cumulative line count fits
// within lineLimit. lineLimit <= 0 means unlimited.
func fitRanges(ranges []analyze.Range, lineLimit int) []analyze.Range {
	if lineLimit <= 0 {
		return ranges
	}
	sorted := make([]analyze.Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	kept := make([]analyze.Range, 0, len(sorted))
	used := 0
	for _, r := range sorted {
		n := r.End - r.Start
		if used+n > lineLimit && len(kept) > 0 {
			break
		}
		kept = append(kept, r)
		used += n
	}
	return kept
}

// renderRanges joins the lines covered by ranges (in order), collapsing each
// gap between consecutive ranges to a single marker line. Returns the
// rendered content and the count of original lines actually retained
// (excluding marker lines).
func renderRanges(lines []string, ranges []analyze.Range) (string, int) {
	var b strings.Builder
	keptLines := 0
	prevEnd := 0
	for i, r := range ranges {
		if r.Start > prevEnd && i > 0 {
			gap := r.Start - prevEnd
			b.WriteString(fmt.Sprintf("... %d lines omitted ...\n", gap))
		}
		for _, l := range lines[r.Start:r.End] {
			b.WriteString(l)
			b.WriteString("\n")
		}
		keptLines += r.End - r.Start
		prevEnd = r.End
	}
	return strings.TrimSuffix(b.String(), "\n"), keptLines
}

// factsSummary renders a compact, deterministic one-line-per-category
// summary of the analyzer's Facts for smart mode's trailing annotation.
func factsSummary(f analyze.Facts) string {
	var parts []string
	if len(f.Classes) > 0 {
		parts = append(parts, fmt.Sprintf("classes=%d", len(f.Classes)))
	}
	if len(f.Functions) > 0 {
		parts = append(parts, fmt.Sprintf("functions=%d", len(f.Functions)))
	}
	if len(f.Imports) > 0 {
		parts = append(parts, fmt.Sprintf("imports=%d", len(f.Imports)))
	}
	if len(f.TODOs) > 0 {
		parts = append(parts, fmt.Sprintf("todos=%d", len(f.TODOs)))
	}
	if len(parts) == 0 {
		return "<!-- facts: none -->"
	}
	return "<!-- facts: " + strings.Join(parts, ", ") + " -->"
}

// annotation renders the one-line original/retained count marker simple
// mode appends to its content.
func annotation(kept, total int) string {
	return fmt.Sprintf("<!-- Content truncated: %d of %d lines shown -->", kept, total)
}

// degrade returns the next mode one step down the failure-driven ladder
// (spec.md section 4.7): structure -> smart -> simple -> none.
func degrade(mode pipeline.TruncationMode) pipeline.TruncationMode {
	switch mode {
	case pipeline.ModeStructure:
		return pipeline.ModeSmart
	case pipeline.ModeSmart:
		return pipeline.ModeSimple
	case pipeline.ModeSimple:
		return pipeline.ModeNone
	default:
		return pipeline.ModeNone
	}
}

// copyWith returns a shallow copy of fd with Content and the line-count/mode
// fields updated; fd itself is left untouched.
func copyWith(fd *pipeline.FileDescriptor, content string, originalLines, finalLines int, mode pipeline.TruncationMode) *pipeline.FileDescriptor {
	out := *fd
	out.Content = content
	out.OriginalLines = originalLines
	out.FinalLines = finalLines
	out.TruncationMode = mode
	return &out
}

// splitLines splits content into lines the way the rest of the pipeline
// expects: no trailing empty element for content ending in "\n".
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
