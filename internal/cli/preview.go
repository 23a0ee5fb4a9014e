// Package cli implements the Cobra command hierarchy for the codebrief CLI tool.
// This file implements the `codebrief preview` subcommand which shows file selection
// and token statistics without generating an output file.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codebrief/codebrief/internal/pipeline"
	"github.com/codebrief/codebrief/internal/tokenizer"
)

// previewHeatmap is a local flag target for --heatmap on the preview command.
// It is a file-level variable (not inside init) to avoid dereferencing the
// flagValues pointer before root.go's init() has populated it.
var previewHeatmap bool

// previewCmd implements `codebrief preview` which shows file selection and token
// distribution without generating an output file.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview file selection and token statistics without generating output",
	Long: `Preview runs the file discovery and token counting stages without writing
an output context file. Use this to inspect which files would be included,
their token counts, and how they relate to your token budget.

Examples:
  # Preview the current directory
  codebrief preview

  # Show token density heatmap to find context-bloat files
  codebrief preview --heatmap

  # Preview with a specific tokenizer
  codebrief preview --tokenizer o200k_base

  # Show the top 20 largest files
  codebrief preview --top-files 20`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().BoolVar(&previewHeatmap, "heatmap", false, "Show token density heatmap (tokens per line)")
	rootCmd.AddCommand(previewCmd)
}

// runPreview executes the preview subcommand: it runs the same discovery,
// priority resolution, redaction, and tokenization stages as `generate`, then
// reports on the result instead of rendering and writing it.
func runPreview(cmd *cobra.Command, _ []string) error {
	fv := GlobalFlags()
	fv.Heatmap = previewHeatmap

	dr, err := pipeline.Preview(cmd.Context(), fv)
	if err != nil {
		return err
	}

	if fv.Heatmap {
		lineCounts := make(map[string]int, len(dr.Result.Included))
		for _, fd := range dr.Result.Included {
			lineCounts[fd.Path] = fd.FinalLines
		}
		report := tokenizer.NewHeatmapReport(dr.Result.Included, lineCounts)
		fmt.Fprint(os.Stderr, report.Format())
		return nil
	}

	report := tokenizer.NewTokenReport(dr.Result.Included, dr.TokenizerName, dr.MaxTokens)
	fmt.Fprint(os.Stderr, report.Format())

	if fv.TopFiles > 0 {
		fmt.Fprint(os.Stderr, tokenizer.NewTopFilesReport(dr.Result.Included, fv.TopFiles).Format())
	}

	return nil
}
