package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/codebrief/codebrief/internal/globset"
	"github.com/codebrief/codebrief/internal/pipeline"
)

// WalkerConfig holds configuration for the file discovery walker.
type WalkerConfig struct {
	// Root is the target directory to walk.
	Root string

	// GitignoreMatcher handles .gitignore pattern matching.
	GitignoreMatcher Ignorer

	// CodebriefignoreMatcher handles .codebriefignore pattern matching.
	CodebriefignoreMatcher Ignorer

	// DefaultIgnorer handles built-in default ignore patterns.
	DefaultIgnorer Ignorer

	// PatternFilter applies user-supplied --include/--exclude/-f filtering.
	PatternFilter *PatternFilter

	// GlobSet applies the active lens's include/exclude pattern pair (spec.md
	// section 4.3, "Glob Matcher") and drives conservative directory pruning
	// (section 4.4). A nil GlobSet admits everything and prunes nothing.
	GlobSet *globset.Set

	// GitTrackedOnly restricts discovery to git-tracked files when true.
	GitTrackedOnly bool

	// SkipLargeFiles is the file size threshold in bytes. Files exceeding this
	// size are skipped. A value of 0 disables large file skipping.
	SkipLargeFiles int64

	// Concurrency is the maximum number of parallel file-reading workers.
	// Defaults to runtime.NumCPU() if <= 0.
	Concurrency int
}

// Walker is the core file discovery engine that traverses a directory tree
// and applies all filtering criteria (spec.md section 4.4, "Path Walker").
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a new Walker instance.
func NewWalker() *Walker {
	return &Walker{
		logger: slog.Default().With("component", "walker"),
	}
}

// walkState tracks traversal progress shared between the directory walk and
// any generator consuming it.
type walkState struct {
	result      *pipeline.DiscoveryResult
	skipReasons map[string]int
	mu          sync.Mutex
	symResolver *SymlinkResolver
	composite   Ignorer
	gitTracked  map[string]bool
	root        string
}

func (s *walkState) countFound() {
	s.mu.Lock()
	s.result.TotalFound++
	s.mu.Unlock()
}

func (s *walkState) bump(reason string) {
	s.mu.Lock()
	s.skipReasons[reason]++
	s.mu.Unlock()
}

// WalkSeq traverses the directory tree rooted at cfg.Root and yields one
// descriptor at a time as it is discovered, without content loaded. Content
// is left for the caller to load, keeping peak memory bounded to whatever
// the caller chooses to hold at once (spec.md section 4.4, "yielded lazily,
// bounded-memory generator"; section 5, "Scoped I/O"). The returned stats
// pointer is populated progressively and is only final once the walk
// completes (the yield function returns false or traversal is exhausted).
//
// WalkSeq stops early, with ctx.Err() surfaced through the final yield, if
// ctx is canceled mid-walk.
func (w *Walker) WalkSeq(ctx context.Context, cfg WalkerConfig) (func(yield func(*pipeline.FileDescriptor, error) bool), *pipeline.DiscoveryResult, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving root path %s: %w", cfg.Root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("root %s is not a directory", root)
	}

	composite := NewCompositeIgnorer(
		cfg.DefaultIgnorer,
		cfg.GitignoreMatcher,
		cfg.CodebriefignoreMatcher,
	)

	var gitTracked map[string]bool
	if cfg.GitTrackedOnly {
		gitTracked, err = GitTrackedFiles(root)
		if err != nil {
			return nil, nil, fmt.Errorf("loading git tracked files: %w", err)
		}
		w.logger.Debug("git-tracked-only mode", "tracked_files", len(gitTracked))
	}

	result := &pipeline.DiscoveryResult{
		SkipReasons: make(map[string]int),
	}

	state := &walkState{
		result:      result,
		skipReasons: result.SkipReasons,
		symResolver: NewSymlinkResolver(),
		composite:   composite,
		gitTracked:  gitTracked,
		root:        root,
	}

	seq := func(yield func(*pipeline.FileDescriptor, error) bool) {
		stopped := false

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if stopped {
				return fs.SkipAll
			}
			select {
			case <-ctx.Done():
				stopped = true
				yield(nil, ctx.Err())
				return fs.SkipAll
			default:
			}

			if walkErr != nil {
				w.logger.Debug("walk error", "path", path, "error", walkErr)
				return nil
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			relPath = filepath.ToSlash(relPath)

			if relPath == "." {
				return nil
			}

			isDir := d.IsDir()

			if isDir && d.Name() == ".git" {
				return fs.SkipDir
			}

			if isDir && cfg.GlobSet.Prunes(relPath) {
				state.bump("globset_pruned")
				return fs.SkipDir
			}

			if state.composite.IsIgnored(relPath, isDir) {
				if isDir {
					state.bump("ignored_dir")
					return fs.SkipDir
				}
				state.countFound()
				state.bump("ignored")
				return nil
			}

			if isDir {
				return nil
			}

			state.countFound()

			fd, skipReason, err := w.buildDescriptor(cfg, state, relPath, path, d)
			if err != nil {
				state.bump("stat_error")
				return nil
			}
			if skipReason != "" {
				state.bump(skipReason)
				return nil
			}
			if fd == nil {
				return nil
			}

			if !yield(fd, nil) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})

		if walkErr != nil && !stopped {
			yield(nil, fmt.Errorf("walking directory %s: %w", root, walkErr))
		}
	}

	return seq, result, nil
}

// buildDescriptor applies symlink resolution, git-tracked filtering, size and
// binary checks, and both filter layers to a single discovered file, without
// loading its content.
func (w *Walker) buildDescriptor(cfg WalkerConfig, state *walkState, relPath, path string, d fs.DirEntry) (fd *pipeline.FileDescriptor, skipReason string, err error) {
	isSymlink := d.Type()&os.ModeSymlink != 0
	absPath := path
	if isSymlink {
		realPath, isLoop, rerr := state.symResolver.Resolve(path)
		if rerr != nil {
			return nil, "symlink_error", nil
		}
		if isLoop {
			return nil, "symlink_loop", nil
		}
		state.symResolver.MarkVisited(realPath)
		absPath = realPath
	}

	if cfg.GitTrackedOnly && state.gitTracked != nil && !state.gitTracked[relPath] {
		return nil, "not_tracked", nil
	}

	fileInfo, statErr := os.Stat(absPath)
	if statErr != nil {
		return nil, "", statErr
	}

	maxSize := cfg.SkipLargeFiles
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if fileInfo.Size() > maxSize {
		return nil, "large_file", nil
	}

	isBin, binErr := IsBinary(absPath)
	if binErr != nil {
		w.logger.Debug("binary detection error, including file anyway", "path", relPath, "error", binErr)
	}
	if isBin {
		return nil, "binary", nil
	}

	if !cfg.GlobSet.Matches(relPath) {
		return nil, "globset_excluded", nil
	}

	if cfg.PatternFilter != nil && cfg.PatternFilter.HasFilters() && !cfg.PatternFilter.Matches(relPath) {
		return nil, "pattern_filter", nil
	}

	modTime := fileInfo.ModTime().Unix()

	return &pipeline.FileDescriptor{
		Path:      relPath,
		AbsPath:   absPath,
		Size:      fileInfo.Size(),
		ModTime:   modTime,
		IsSymlink: isSymlink,
		Priority:  pipeline.DefaultPriority,
	}, "", nil
}

// Walk discovers files in the directory tree rooted at cfg.Root, applies all
// configured filters, and reads file contents in parallel using bounded
// concurrency via errgroup. It returns a DiscoveryResult with the discovered
// files sorted alphabetically by path -- the batch-mode entry point built on
// top of WalkSeq for callers that want every descriptor materialized at
// once (spec.md section 4.4 describes generator-first traversal; batch mode
// is this package draining the generator into a slice).
func (w *Walker) Walk(ctx context.Context, cfg WalkerConfig) (*pipeline.DiscoveryResult, error) {
	seq, result, err := w.WalkSeq(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var files []*pipeline.FileDescriptor
	var walkErr error
	seq(func(fd *pipeline.FileDescriptor, yerr error) bool {
		if yerr != nil {
			walkErr = yerr
			return false
		}
		files = append(files, fd)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for _, fd := range files {
		fd := fd
		g.Go(func() error {
			content, rerr := readFile(gctx, fd.AbsPath)
			if rerr != nil {
				fd.Error = fmt.Errorf("reading %s: %w", fd.Path, rerr)
				w.logger.Debug("file read error", "path", fd.Path, "error", rerr)
				return nil
			}
			fd.Content = content
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reading file contents: %w", err)
	}

	totalSkipped := 0
	for _, count := range result.SkipReasons {
		totalSkipped += count
	}

	result.Files = files
	result.TotalSkipped = totalSkipped

	w.logger.Info("discovery complete",
		"files", len(files),
		"total_found", result.TotalFound,
		"total_skipped", totalSkipped,
	)

	return result, nil
}

// readFile reads the entire content of a file. It respects context cancellation
// by checking the context before reading. Returns the file content as a string.
func readFile(ctx context.Context, path string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return string(data), nil
}
