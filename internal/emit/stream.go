package emit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/codebrief/codebrief/internal/frame"
	"github.com/codebrief/codebrief/internal/pipeline"
)

// DefaultWindowSize bounds the streaming allocator's lookahead when the
// caller does not specify one.
const DefaultWindowSize = 32

// Stream runs the streaming-mode pipeline (spec.md section 4.9, "Streaming
// mode"; section 4.10): it favors first-byte latency over completeness,
// committing files in the walker's directory-visit order rather than a
// global priority sort. A bounded sliding window of windowSize pending
// candidates lets the allocator evict a lower-priority file before it is
// ever written, without buffering the entire candidate set up front.
//
// Global sort ordering is not guaranteed in this mode (spec.md section 4.9);
// Result.OrderingNote records that explicitly for the diagnostic channel.
func Stream(ctx context.Context, w io.Writer, opts Options, windowSize int) (*Result, error) {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	seq, discoveryResult, err := opts.Walker.WalkSeq(ctx, opts.WalkerConfig)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}

	result := &Result{
		OrderingNote: "streaming: directory traversal order, priority affects only inclusion",
	}

	var window []*pipeline.FileDescriptor
	runningTotal := 0

	commitOrEvict := func() {
		for len(window) > windowSize {
			head := window[0]
			fits := opts.MaxTokens <= 0 || head.AlwaysInclude || runningTotal+head.TokenCount <= opts.MaxTokens
			if fits {
				if err := writeAndCount(w, head, opts.EmitMeta && result.FilesEmitted == 0, opts); err != nil {
					slog.Warn("streaming emit write failed", "path", head.Path, "error", err)
				}
				runningTotal += head.TokenCount
				result.FilesEmitted++
				result.Included = append(result.Included, head)
				if head.WasTruncated() {
					result.FilesTruncated++
				}
				window = window[1:]
				continue
			}
			idx := indexOfMinPriority(window)
			result.FilesDropped++
			window = append(window[:idx], window[idx+1:]...)
		}
	}

	seq(func(fd *pipeline.FileDescriptor, ferr error) bool {
		if ferr != nil {
			slog.Warn("streaming discovery error", "error", ferr)
			return ctx.Err() == nil
		}
		if fd.IsBinary {
			return true
		}

		content, readErr := os.ReadFile(fd.AbsPath)
		if readErr != nil {
			slog.Warn("streaming content read failed", "path", fd.Path, "error", readErr)
			return ctx.Err() == nil
		}
		fd.Content = string(content)

		candidate, _ := processFile(fd, opts)
		window = append(window, candidate)
		commitOrEvict()

		return ctx.Err() == nil
	})

	// Flush whatever remains in the window once the walk is exhausted,
	// preserving arrival order.
	for _, fd := range window {
		fits := opts.MaxTokens <= 0 || fd.AlwaysInclude || runningTotal+fd.TokenCount <= opts.MaxTokens
		if !fits {
			result.FilesDropped++
			continue
		}
		if err := writeAndCount(w, fd, opts.EmitMeta && result.FilesEmitted == 0, opts); err != nil {
			slog.Warn("streaming emit write failed", "path", fd.Path, "error", err)
			continue
		}
		runningTotal += fd.TokenCount
		result.FilesEmitted++
		result.Included = append(result.Included, fd)
		if fd.WasTruncated() {
			result.FilesTruncated++
		}
	}

	result.TotalTokens = runningTotal
	result.BudgetUsed = runningTotal
	if opts.MaxTokens > 0 {
		result.BudgetRemaining = opts.MaxTokens - runningTotal
	}
	result.SkipReasons = discoveryResult.SkipReasons

	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	return result, nil
}

// writeAndCount optionally prepends the synthetic meta record the first time
// it is called, then writes fd's wire-format record.
func writeAndCount(w io.Writer, fd *pipeline.FileDescriptor, first bool, opts Options) error {
	if first {
		meta := buildMetaRecord([]*pipeline.FileDescriptor{fd}, opts)
		if _, err := frame.WriteRecord(w, meta); err != nil {
			return err
		}
	}
	_, err := frame.WriteRecord(w, fd)
	return err
}

// indexOfMinPriority returns the index of the lowest-priority, non-always-
// include descriptor in window; if every descriptor is AlwaysInclude, it
// falls back to index 0 so progress is still made.
func indexOfMinPriority(window []*pipeline.FileDescriptor) int {
	best := -1
	for i, fd := range window {
		if fd.AlwaysInclude {
			continue
		}
		if best == -1 || fd.Priority < window[best].Priority {
			best = i
		}
	}
	if best == -1 {
		return 0
	}
	return best
}
