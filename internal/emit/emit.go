// Package emit orchestrates the full pipeline -- discovery, priority
// resolution, redaction, structural analysis, truncation, budget
// allocation, and framing -- into the single-pass generator spec.md section
// 4.10 ("Streaming Emitter") describes. It is the direct successor to the
// teacher's internal/pipeline/pipeline.go Run stub, now fully implemented
// instead of just logging resolved configuration.
package emit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/codebrief/codebrief/internal/analyze"
	"github.com/codebrief/codebrief/internal/discovery"
	"github.com/codebrief/codebrief/internal/frame"
	"github.com/codebrief/codebrief/internal/lens"
	"github.com/codebrief/codebrief/internal/pipeline"
	"github.com/codebrief/codebrief/internal/redact"
	"github.com/codebrief/codebrief/internal/tokenizer"
	"github.com/codebrief/codebrief/internal/truncate"
)

// Options configures a single emit run. It deliberately holds plain values
// rather than *config.Profile, so internal/emit has no dependency on
// internal/config -- the CLI layer is responsible for translating resolved
// configuration into Options.
type Options struct {
	// Walker and WalkerConfig discover candidate files.
	Walker       *discovery.Walker
	WalkerConfig discovery.WalkerConfig

	// Resolver assigns each file's final Priority and AlwaysInclude flag.
	Resolver *lens.Resolver

	// Redactor masks secrets before content is hashed or emitted. Nil
	// disables redaction entirely.
	Redactor *redact.Redactor

	// Tokenizer counts tokens for budget allocation. Required.
	Tokenizer tokenizer.Tokenizer

	// MaxTokens is the token budget; <= 0 disables budget enforcement.
	MaxTokens int

	// Strategy selects the allocator's overflow behavior.
	Strategy tokenizer.AllocationStrategy

	// DefaultTruncationMode is applied to files whose lens group does not
	// set a TruncationOverride.
	DefaultTruncationMode pipeline.TruncationMode

	// LineLimit bounds smart/simple truncation; <= 0 means unlimited.
	LineLimit int

	// EmitMeta, when true, writes a synthetic ".codebrief_meta" record
	// first, carrying the active lens's name and description (spec.md
	// section 4.10).
	EmitMeta  bool
	LensName  string
	LensDescr string
}

// Result summarizes a completed run for the diagnostic channel (spec.md
// section 4.9, "Budget report"; never written to the main output).
type Result struct {
	FilesEmitted    int
	FilesDropped    int
	FilesTruncated  int
	TotalTokens     int
	BudgetUsed      int
	BudgetRemaining int
	SkipReasons     map[string]int
	OrderingNote    string

	// Included is the final set of descriptors written to the sink, in
	// emission order. internal/render uses this to build a table of
	// contents around the framed body without re-running discovery.
	Included []*pipeline.FileDescriptor
}

// Run executes the batch-mode pipeline: discovery proceeds to completion,
// every candidate is processed, the budget allocator sees the whole set, and
// records are written to w in the caller's chosen sort order (spec.md
// section 5, "Batch mode: output files are ordered by the effective sort
// key, then priority, then relative path").
func Run(ctx context.Context, w io.Writer, opts Options) (*Result, error) {
	discovered, err := opts.Walker.Walk(ctx, opts.WalkerConfig)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}

	candidates := make([]*pipeline.FileDescriptor, 0, len(discovered.Files))
	pristine := make([]*pipeline.FileDescriptor, 0, len(discovered.Files))
	for _, fd := range discovered.Files {
		if fd.Error != nil || fd.IsBinary {
			continue
		}
		processed, source := processFile(fd, opts)
		candidates = append(candidates, processed)
		pristine = append(pristine, source)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Path < candidates[j].Path
	})
	// Indexed by path so both the hybrid prepass and the allocator's
	// overflow handling can re-derive a file's real structure-mode (Cs)
	// rendering from its pristine, pre-truncation form.
	byPath := make(map[string]*pipeline.FileDescriptor, len(pristine))
	for _, p := range pristine {
		byPath[p.Path] = p
	}
	structurer := newStructurer(byPath, opts)

	allocStrategy := opts.Strategy
	if opts.Strategy == tokenizer.HybridStrategy && opts.MaxTokens > 0 {
		applyHybridPrepass(candidates, structurer, opts)
		allocStrategy = tokenizer.AllocatorTruncateStrategy
	}

	allocator := tokenizer.NewAllocator(opts.MaxTokens, allocStrategy, opts.Tokenizer).WithStructurer(structurer)
	overhead := tokenizer.NewTokenCounter(opts.Tokenizer).EstimateOverhead(len(candidates), 0)
	alloc := allocator.Allocate(candidates, overhead)

	if opts.EmitMeta {
		meta := buildMetaRecord(alloc.Included, opts)
		if _, err := frame.WriteRecord(w, meta); err != nil {
			return nil, fmt.Errorf("writing meta record: %w", err)
		}
	}

	for _, fd := range alloc.Included {
		if _, err := frame.WriteRecord(w, fd); err != nil {
			return nil, fmt.Errorf("writing %s: %w", fd.Path, err)
		}
	}

	result := &Result{
		FilesEmitted:    len(alloc.Included),
		FilesDropped:    len(alloc.Dropped),
		FilesTruncated:  len(alloc.Truncated),
		TotalTokens:     alloc.TotalTokens,
		BudgetUsed:      alloc.BudgetUsed,
		BudgetRemaining: alloc.BudgetRemaining,
		SkipReasons:     discovered.SkipReasons,
		OrderingNote:    "batch: sorted by relative path",
		Included:        alloc.Included,
	}
	slog.Info("emit complete",
		"emitted", result.FilesEmitted,
		"dropped", result.FilesDropped,
		"truncated", result.FilesTruncated,
		"totalTokens", result.TotalTokens,
	)
	return result, nil
}

// processFile runs one discovered descriptor through priority resolution,
// hashing, redaction, and per-file truncation. It returns the mode-specific
// "full cost" descriptor (Cf, ready for allocation) alongside the pristine
// post-redaction, pre-truncation descriptor newStructurer's callback
// re-truncates from whenever the allocator forces a file into structure mode.
func processFile(fd *pipeline.FileDescriptor, opts Options) (candidate, pristine *pipeline.FileDescriptor) {
	if opts.Resolver != nil {
		opts.Resolver.Resolve(fd)
	}

	fd.OriginalContentHash = frame.Hash(fd.Content)

	if opts.Redactor != nil {
		opts.Redactor.Redact(fd)
	}

	analyzer := analyze.ForPath(fd.Path)
	fd.Language = analyzer.Name()

	base := *fd
	mode := fd.TruncationMode
	if mode == "" {
		mode = opts.DefaultTruncationMode
	}

	t := truncate.New()
	full := t.Truncate(fd, mode, opts.LineLimit, analyzer)
	full.TokenCount = opts.Tokenizer.Count(full.Content)
	return full, &base
}

// applyHybridPrepass implements spec.md section 4.9's hybrid-strategy
// pre-pass: any candidate whose full cost Cf exceeds 10% of the budget is
// preemptively re-truncated to structure mode (cost Cs) before the allocator
// runs, so a single large file can never starve the rest of the budget.
func applyHybridPrepass(candidates []*pipeline.FileDescriptor, structurer tokenizer.Structurer, opts Options) {
	threshold := opts.MaxTokens / 10

	for i, fd := range candidates {
		if fd.TokenCount <= threshold || fd.TruncationMode == pipeline.ModeStructure {
			continue
		}
		structured := structurer(fd)
		candidates[i] = structured
		slog.Debug("hybrid prepass switched file to structure mode",
			"path", fd.Path, "fullCost", fd.TokenCount, "structureCost", structured.TokenCount)
	}
}

// newStructurer builds the callback the allocator uses to force an
// overflowing file into its real structure-mode rendering (spec.md section
// 4.9): it looks up fd's pristine, pre-truncation, post-redaction form by
// path and re-runs internal/truncate in structure mode against it, rather
// than a generic byte cut of whatever content the file already carries.
func newStructurer(byPath map[string]*pipeline.FileDescriptor, opts Options) tokenizer.Structurer {
	t := truncate.New()
	return func(fd *pipeline.FileDescriptor) *pipeline.FileDescriptor {
		source, ok := byPath[fd.Path]
		if !ok {
			return fd
		}
		analyzer := analyze.ForPath(source.Path)
		structured := t.Truncate(source, pipeline.ModeStructure, opts.LineLimit, analyzer)
		structured.TokenCount = opts.Tokenizer.Count(structured.Content)
		structured.StructureTokenCount = structured.TokenCount
		return structured
	}
}

// buildMetaRecord constructs the synthetic ".codebrief_meta" first record
// (spec.md section 4.10) carrying the active lens's name and description and
// a deterministic timestamp substitute: the newest ModTime among the files
// actually emitted, never wall-clock (resolved Open Question, see
// DESIGN.md).
func buildMetaRecord(included []*pipeline.FileDescriptor, opts Options) *pipeline.FileDescriptor {
	var newest int64
	for _, fd := range included {
		if fd.ModTime > newest {
			newest = fd.ModTime
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "lens: %s\n", opts.LensName)
	fmt.Fprintf(&b, "description: %s\n", opts.LensDescr)
	fmt.Fprintf(&b, "generated_at: %d\n", newest)
	fmt.Fprintf(&b, "files: %d\n", len(included))
	content := b.String()

	return &pipeline.FileDescriptor{
		Path:                ".codebrief_meta",
		Content:             content,
		OriginalContentHash: frame.Hash(content),
		OriginalLines:       strings.Count(content, "\n"),
		FinalLines:          strings.Count(content, "\n"),
		TruncationMode:      pipeline.ModeNone,
	}
}
