package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/codebrief/codebrief/internal/config"
	"github.com/codebrief/codebrief/internal/discovery"
	"github.com/codebrief/codebrief/internal/emit"
	"github.com/codebrief/codebrief/internal/globset"
	"github.com/codebrief/codebrief/internal/lens"
	"github.com/codebrief/codebrief/internal/priostore"
	"github.com/codebrief/codebrief/internal/redact"
	"github.com/codebrief/codebrief/internal/render"
	"github.com/codebrief/codebrief/internal/tokenizer"
)

// DiscoverResult bundles what a full discovery+emit pass produced along with
// the resolved settings that shaped it, so callers that only need the file
// list and counts (token reports, preview) don't have to re-walk the tree.
type DiscoverResult struct {
	Profile       *config.Profile
	Lens          *lens.Lens
	TokenizerName string
	MaxTokens     int
	Result        *emit.Result
	Body          []byte
}

// discover resolves configuration and runs the full discovery/priority/
// redact/truncate/tokenize pipeline via internal/emit, without writing a
// rendered document. Run and Preview both build on this.
//
// The active lens comes from cfg.Lens (--lens, default "architecture"),
// resolved against the five built-ins plus one synthesized custom lens,
// "profile": profile.AsLens converts the resolved profile's Relevance tiers
// and PriorityFiles into real lens.Groups, so a profile that only configures
// the teacher's tier system still governs file priority when selected with
// --lens profile, instead of sitting unread by the real pipeline.
func discover(ctx context.Context, cfg *config.FlagValues) (*DiscoverResult, error) {
	cliFlags := map[string]any{}
	if cfg.Output != "" {
		cliFlags["output"] = cfg.Output
	}
	if cfg.Format != "" {
		cliFlags["format"] = cfg.Format
	}
	if cfg.Target != "" {
		cliFlags["target"] = cfg.Target
	}
	if cfg.Tokenizer != "" {
		cliFlags["tokenizer"] = cfg.Tokenizer
	}
	if cfg.MaxTokens > 0 {
		cliFlags["max_tokens"] = cfg.MaxTokens
	}

	resolved, err := config.Resolve(config.ResolveOptions{TargetDir: cfg.Dir, CLIFlags: cliFlags})
	if err != nil {
		return nil, NewError("resolving configuration", err)
	}
	profile := resolved.Profile

	maxTokens := profile.MaxTokens
	tokenizerName := profile.Tokenizer
	if tokenizerName == "" {
		tokenizerName = tokenizer.NameCL100K
	}

	tok, err := tokenizer.NewTokenizer(tokenizerName)
	if err != nil {
		return nil, NewError("constructing tokenizer", err)
	}

	lensName := cfg.Lens
	if lensName == "" {
		lensName = "architecture"
	}
	customLenses := map[string]*lens.Lens{"profile": profile.AsLens("profile")}
	resolution, err := lens.Resolve(lensName, customLenses)
	if err != nil {
		return nil, NewError("resolving lens", err)
	}
	activeLens := resolution.Lens

	store, err := priostore.Load("")
	if err != nil {
		slog.Warn("priority store load failed, proceeding without learned utility", "error", err)
		store = &priostore.Store{}
	}
	resolver := lens.NewResolver(activeLens, store)

	var redactor *redact.Redactor
	if !cfg.NoRedact && profile.RedactionConfig.Enabled {
		redactor = redact.New(redact.Options{
			Threshold:    redact.ParseConfidence(profile.RedactionConfig.ConfidenceThreshold),
			ExcludePaths: profile.RedactionConfig.ExcludePaths,
		})
	}

	gitignore, err := discovery.NewGitignoreMatcher(cfg.Dir)
	if err != nil {
		slog.Debug("gitignore matcher unavailable", "error", err)
	}
	codebriefignore, err := discovery.NewCodebriefignoreMatcher(cfg.Dir)
	if err != nil {
		slog.Debug("codebriefignore matcher unavailable", "error", err)
	}

	walkerCfg := discovery.WalkerConfig{
		Root:                   cfg.Dir,
		GitignoreMatcher:       gitignore,
		CodebriefignoreMatcher: codebriefignore,
		DefaultIgnorer:         discovery.NewDefaultIgnoreMatcher(),
		PatternFilter: discovery.NewPatternFilter(discovery.PatternFilterOptions{
			Includes:   cfg.Includes,
			Excludes:   append(append([]string{}, profile.Ignore...), cfg.Excludes...),
			Extensions: cfg.Filters,
		}),
		GlobSet:        globset.New(append(activeLens.Include, profile.Include...), activeLens.Exclude),
		GitTrackedOnly: cfg.GitTrackedOnly,
		SkipLargeFiles: cfg.SkipLargeFiles,
	}

	strategy := tokenizer.DropStrategy
	if cfg.TruncationStrategy == "truncate" {
		strategy = tokenizer.AllocatorTruncateStrategy
	}

	opts := emit.Options{
		Walker:                discovery.NewWalker(),
		WalkerConfig:          walkerCfg,
		Resolver:              resolver,
		Redactor:              redactor,
		Tokenizer:             tok,
		MaxTokens:             maxTokens,
		Strategy:              strategy,
		DefaultTruncationMode: ModeSmart,
		EmitMeta:              true,
		LensName:              activeLens.Name,
		LensDescr:             activeLens.Description,
	}

	var body bytes.Buffer
	result, err := emit.Run(ctx, &body, opts)
	if err != nil {
		return nil, NewError("running emit pipeline", err)
	}

	return &DiscoverResult{
		Profile:       profile,
		Lens:          activeLens,
		TokenizerName: tokenizerName,
		MaxTokens:     maxTokens,
		Result:        result,
		Body:          body.Bytes(),
	}, nil
}

// Preview runs discovery, priority resolution, redaction, truncation, and
// tokenization without rendering or writing an output document. It exists
// for the CLI's `preview` command, which reports on what a real run would
// produce without touching the filesystem beyond reading source files.
func Preview(ctx context.Context, cfg *config.FlagValues) (*DiscoverResult, error) {
	return discover(ctx, cfg)
}

// Run executes the codebrief context generation pipeline end to end:
// resolve configuration, discover and filter candidate files, resolve
// priority, redact secrets, analyze and truncate content, allocate the
// token budget, frame every record, and wrap the result in the requested
// document envelope.
func Run(ctx context.Context, cfg *config.FlagValues) error {
	slog.Info("starting codebrief context generation", "dir", cfg.Dir, "output", cfg.Output, "format", cfg.Format)

	dr, err := discover(ctx, cfg)
	if err != nil {
		return err
	}
	profile := dr.Profile
	activeLens := dr.Lens
	result := dr.Result
	format := profile.Format
	target := profile.Target

	// Report-only mode: print a summary to stderr instead of writing the
	// generated document. --token-count and --top-files are mutually
	// composable; either alone (or both) suppresses the normal write.
	if cfg.TokenCountOnly || cfg.TopFiles > 0 {
		if cfg.TokenCountOnly {
			fmt.Fprint(os.Stderr, tokenizer.NewTokenReport(result.Included, dr.TokenizerName, dr.MaxTokens).Format())
		}
		if cfg.TopFiles > 0 {
			fmt.Fprint(os.Stderr, tokenizer.NewTopFilesReport(result.Included, cfg.TopFiles).Format())
		}
		return nil
	}

	doc := render.Document{
		Format:    OutputFormat(format),
		Target:    LLMTarget(target),
		LensName:  activeLens.Name,
		LensDescr: activeLens.Description,
		Files:     result.Included,
		Body:      dr.Body,
	}

	if cfg.Stdout {
		if err := render.Write(os.Stdout, doc); err != nil {
			return NewError("writing output to stdout", err)
		}
	} else {
		f, err := os.Create(profile.Output)
		if err != nil {
			return NewError(fmt.Sprintf("creating output file %s", profile.Output), err)
		}
		defer f.Close()
		if err := render.Write(f, doc); err != nil {
			return NewError("writing output", err)
		}
	}

	if cfg.FailOnRedaction {
		for _, fd := range result.Included {
			if fd.Redactions > 0 {
				return NewRedactionError(fmt.Sprintf("secrets detected and redacted in %s", fd.Path))
			}
		}
	}

	slog.Info("emit complete",
		"emitted", result.FilesEmitted,
		"dropped", result.FilesDropped,
		"truncated", result.FilesTruncated,
		"total_tokens", result.TotalTokens,
	)
	if len(result.SkipReasons) > 0 {
		slog.Debug("skip reasons", "reasons", result.SkipReasons)
	}

	return nil
}
