// Package tokenizer provides token counting implementations for LLM context
// documents. This file implements report data structures and formatters for
// presenting token count summaries to the user via the CLI.
package tokenizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codebrief/codebrief/internal/pipeline"
)

// priorityBand buckets a continuous [0, 100] priority into a ten-wide band
// for reporting, e.g. 87 -> 80 (meaning "80-89").
func priorityBand(priority int) int {
	if priority < 0 {
		return 0
	}
	if priority > 100 {
		return 100
	}
	return (priority / 10) * 10
}

// priorityBandLabel renders a band's display range, e.g. 80 -> "80-89".
func priorityBandLabel(band int) string {
	if band >= 100 {
		return "100"
	}
	return fmt.Sprintf("%d-%d", band, band+9)
}

// PriorityBandStat holds per-band file and token counts.
type PriorityBandStat struct {
	// FileCount is the number of files in this priority band.
	FileCount int

	// TokenCount is the total number of tokens across all files in this band.
	TokenCount int
}

// TokenReport holds the summary data for a full token count report.
type TokenReport struct {
	// TokenizerName is the encoding name used (e.g., "cl100k_base").
	TokenizerName string

	// TotalFiles is the total number of files included in the report.
	TotalFiles int

	// TotalTokens is the sum of token counts across all files.
	TotalTokens int

	// Budget is the configured max token budget (0 means unlimited).
	Budget int

	// BandStats maps priority band (rounded down to the nearest 10) to
	// per-band statistics.
	BandStats map[int]*PriorityBandStat
}

// NewTokenReport builds a TokenReport from a set of file descriptors.
// tokenizerName is the encoding name (e.g., "cl100k_base").
// budget is the configured max token budget (0 = unlimited).
func NewTokenReport(files []*pipeline.FileDescriptor, tokenizerName string, budget int) *TokenReport {
	r := &TokenReport{
		TokenizerName: tokenizerName,
		Budget:        budget,
		BandStats:     make(map[int]*PriorityBandStat),
	}

	for _, fd := range files {
		if fd == nil {
			continue
		}
		r.TotalFiles++
		r.TotalTokens += fd.TokenCount

		band := priorityBand(fd.Priority)
		stat, ok := r.BandStats[band]
		if !ok {
			stat = &PriorityBandStat{}
			r.BandStats[band] = stat
		}
		stat.FileCount++
		stat.TokenCount += fd.TokenCount
	}

	return r
}

// Format renders the token report as a plain-text string suitable for printing
// to stderr. Uses unicode box-drawing chars for the separator line.
func (r *TokenReport) Format() string {
	var sb strings.Builder

	title := fmt.Sprintf("Token Report (%s)", r.TokenizerName)
	separator := strings.Repeat("─", len(title)+2)

	sb.WriteString(title + "\n")
	sb.WriteString(separator + "\n")
	fmt.Fprintf(&sb, "Total files:  %s\n", FormatInt(r.TotalFiles))
	fmt.Fprintf(&sb, "Total tokens: %s\n", FormatInt(r.TotalTokens))

	if r.Budget > 0 {
		pct := int(float64(r.TotalTokens) / float64(r.Budget) * 100)
		fmt.Fprintf(&sb, "Budget:       %s (%d%% used)\n", FormatInt(r.Budget), pct)
	} else {
		sb.WriteString("Budget:       unlimited\n")
	}

	if len(r.BandStats) > 0 {
		sb.WriteString("\nBy Priority:\n")
		bands := make([]int, 0, len(r.BandStats))
		for b := range r.BandStats {
			bands = append(bands, b)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(bands)))

		for _, band := range bands {
			stat := r.BandStats[band]
			fmt.Fprintf(&sb, "  %-7s: %s files  %s tokens\n",
				priorityBandLabel(band),
				FormatInt(stat.FileCount),
				FormatInt(stat.TokenCount),
			)
		}
	}

	return sb.String()
}

// TopFilesEntry holds data for a single file in the top-N listing.
type TopFilesEntry struct {
	// Path is the relative file path.
	Path string

	// TokenCount is the number of tokens in this file.
	TokenCount int

	// Priority is the resolved priority of this file.
	Priority int
}

// TopFilesReport holds the top-N files by token count.
type TopFilesReport struct {
	// N is the requested limit (0 means all files were included).
	N int

	// Files is the sorted list of entries (descending by TokenCount).
	Files []TopFilesEntry
}

// NewTopFilesReport builds a TopFilesReport from file descriptors.
// Files are sorted by TokenCount descending. n=0 includes all files.
func NewTopFilesReport(files []*pipeline.FileDescriptor, n int) *TopFilesReport {
	entries := make([]TopFilesEntry, 0, len(files))
	for _, fd := range files {
		if fd == nil {
			continue
		}
		entries = append(entries, TopFilesEntry{
			Path:       fd.Path,
			TokenCount: fd.TokenCount,
			Priority:   fd.Priority,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TokenCount > entries[j].TokenCount
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}

	return &TopFilesReport{N: n, Files: entries}
}

// Format renders the top-N files report as a plain-text string.
func (r *TopFilesReport) Format() string {
	var sb strings.Builder

	label := "All Files"
	if r.N > 0 {
		label = fmt.Sprintf("Top %d Files", r.N)
	}

	title := fmt.Sprintf("%s by Token Count:", label)
	separator := strings.Repeat("─", len(title)+2)

	sb.WriteString(title + "\n")
	sb.WriteString(separator + "\n")

	if len(r.Files) == 0 {
		sb.WriteString("  (no files)\n")
		return sb.String()
	}

	for i, entry := range r.Files {
		fmt.Fprintf(&sb, " %2d. %-50s  %s tokens  (priority %d)\n",
			i+1,
			entry.Path,
			FormatInt(entry.TokenCount),
			entry.Priority,
		)
	}

	return sb.String()
}

// HeatmapEntry holds data for a single file in the token density heatmap.
type HeatmapEntry struct {
	// Path is the relative file path.
	Path string

	// Lines is the number of lines in the file.
	Lines int

	// Tokens is the number of tokens in the file.
	Tokens int

	// Density is the token density: tokens per line.
	// Files with 0 lines get density 0 (no division by zero).
	Density float64

	// Priority is the resolved priority of this file.
	Priority int
}

// HeatmapReport holds files sorted by token density (tokens per line) descending.
type HeatmapReport struct {
	// Files is the list of entries sorted by Density descending.
	Files []HeatmapEntry
}

// NewHeatmapReport builds a HeatmapReport from file descriptors.
// lineCounts maps fd.Path -> number of lines in that file.
// Files with 0 lines get density 0 (no division by zero).
// Nil files and nil lineCounts are handled gracefully.
func NewHeatmapReport(files []*pipeline.FileDescriptor, lineCounts map[string]int) *HeatmapReport {
	entries := make([]HeatmapEntry, 0, len(files))

	for _, fd := range files {
		if fd == nil {
			continue
		}

		lines := 0
		if lineCounts != nil {
			lines = lineCounts[fd.Path]
		}

		var density float64
		if lines > 0 {
			density = float64(fd.TokenCount) / float64(lines)
		}

		entries = append(entries, HeatmapEntry{
			Path:     fd.Path,
			Lines:    lines,
			Tokens:   fd.TokenCount,
			Density:  density,
			Priority: fd.Priority,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Density > entries[j].Density
	})

	return &HeatmapReport{Files: entries}
}

// Format renders the heatmap as a plain-text string sorted by density descending.
func (r *HeatmapReport) Format() string {
	var sb strings.Builder

	title := "Token Heatmap (tokens per line):"
	separator := strings.Repeat("─", len(title)+2)

	sb.WriteString(title + "\n")
	sb.WriteString(separator + "\n")

	if len(r.Files) == 0 {
		sb.WriteString("  (no files)\n")
		return sb.String()
	}

	for i, entry := range r.Files {
		fmt.Fprintf(&sb, " %2d. %-50s  %.1f tok/line  (%s lines, %s tokens)\n",
			i+1,
			entry.Path,
			entry.Density,
			FormatInt(entry.Lines),
			FormatInt(entry.Tokens),
		)
	}

	return sb.String()
}

// FormatInt formats an integer with comma separators (e.g., 89420 -> "89,420").
// Exported for use in CLI formatting code.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}

	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	// Insert commas every 3 digits from the right.
	var result []byte
	start := len(s) % 3
	if start == 0 {
		start = 3
	}
	result = append(result, s[:start]...)
	for i := start; i < len(s); i += 3 {
		result = append(result, ',')
		result = append(result, s[i:i+3]...)
	}

	return string(result)
}
