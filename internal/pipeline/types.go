// Package pipeline defines the central data types shared across all pipeline
// stages in codebrief. These types serve as the data backbone: discovery,
// filtering, priority resolution, content loading, tokenization, truncation,
// and framing all operate on the same DTOs defined here.
//
// This package has zero external dependencies -- only stdlib types.
// It contains only data types and lightweight validation helpers; no business logic.
package pipeline

// ExitCode represents the process exit code returned by the codebrief CLI.
type ExitCode int

const (
	// ExitSuccess indicates the pipeline completed successfully.
	ExitSuccess ExitCode = 0

	// ExitError indicates a fatal error occurred: malformed configuration,
	// an unknown lens, an invalid glob pattern, or an output sink failure.
	ExitError ExitCode = 1

	// ExitPartial indicates partial success: some files failed processing
	// (read error, decode failure, analyzer panic) but output was still
	// generated for the rest.
	ExitPartial ExitCode = 2
)

// OutputFormat specifies the document envelope wrapped around the framed
// file records (see internal/render). The per-file framing bytes themselves
// never change between formats.
type OutputFormat string

const (
	// FormatMarkdown renders the context document as Markdown with a table
	// of contents ahead of the framed file records.
	FormatMarkdown OutputFormat = "markdown"

	// FormatXML renders the context document as XML, optimized for Claude's
	// XML-native parsing capabilities.
	FormatXML OutputFormat = "xml"
)

// LLMTarget identifies the target LLM platform, allowing format and token
// defaults to be tuned per model family.
type LLMTarget string

const (
	// TargetClaude targets Anthropic Claude models. Defaults to XML output
	// format and cl100k_base tokenizer.
	TargetClaude LLMTarget = "claude"

	// TargetChatGPT targets OpenAI ChatGPT/GPT-4 models. Defaults to Markdown
	// output format.
	TargetChatGPT LLMTarget = "chatgpt"

	// TargetGeneric is a generic target with no model-specific optimizations.
	// Uses Markdown output format and cl100k_base tokenizer.
	TargetGeneric LLMTarget = "generic"
)

// TruncationMode is the per-file truncation mode applied by the truncator.
type TruncationMode string

const (
	// ModeNone returns content unchanged.
	ModeNone TruncationMode = "none"

	// ModeSimple returns the first N lines plus a retained/original count
	// annotation.
	ModeSimple TruncationMode = "simple"

	// ModeSmart retains analyzer-selected important ranges up to a line
	// budget, collapsing omitted spans, plus a facts summary.
	ModeSmart TruncationMode = "smart"

	// ModeStructure retains only signatures, imports, and module-level
	// documentation -- never function/method bodies.
	ModeStructure TruncationMode = "structure"
)

// DefaultPriority is the static priority assigned to files that match no
// priority group in the active lens (spec.md section 4.8).
const DefaultPriority = 50

// FileDescriptor is the central DTO passed between all pipeline stages. Each
// stage enriches or mutates the descriptor as the file flows through the
// pipeline:
//
//   - Discovery: sets Path, AbsPath, Size, ModTime, CreateTime, IsSymlink, IsBinary
//   - Priority resolution: sets Priority, AlwaysInclude
//   - Content loading: sets Content, ContentHash, Language
//   - Redaction: updates Content (redacted), sets Redactions count
//   - Tokenization: sets TokenCount and StructureTokenCount
//   - Truncation: updates Content, sets TruncationMode, OriginalLines, FinalLines
//
// The Content field stores processed content only; files are processed one
// at a time to keep memory usage bounded (spec.md section 5, "Scoped I/O").
type FileDescriptor struct {
	// Path is the file path relative to the repository root, forward-slash
	// normalized. Used for display, glob/priority matching, and
	// deterministic output ordering.
	Path string `json:"path"`

	// AbsPath is the absolute filesystem path. Used for reading file content.
	AbsPath string `json:"abs_path"`

	// Size is the file size in bytes as reported by the filesystem.
	Size int64 `json:"size"`

	// ModTime is the Unix modification time in seconds, used by debug-lens
	// sorting and as an input to the meta-file timestamp derivation.
	ModTime int64 `json:"mod_time"`

	// CreateTime is the Unix creation time in seconds, where the filesystem
	// reports one; zero otherwise.
	CreateTime int64 `json:"create_time"`

	// Priority is the final resolved priority in [0, 100]. Lower-priority
	// files are the first candidates dropped or truncated when enforcing a
	// token budget. Defaults to DefaultPriority (50) for unmatched files.
	Priority int `json:"priority"`

	// AlwaysInclude marks a file that bypasses budgeting entirely (tag
	// always_include in the priority store, or an explicit lens group
	// override). Still subject to per-file truncation.
	AlwaysInclude bool `json:"always_include"`

	// TokenCount is the estimated token cost of Content at its current
	// (possibly already-truncated) length.
	TokenCount int `json:"token_count"`

	// StructureTokenCount is the estimated token cost of the file's
	// structure-mode rendering (Cs in spec.md's Candidate model), computed
	// lazily the first time the allocator needs it.
	StructureTokenCount int `json:"structure_token_count"`

	// ContentHash is a fast XXH3 hash of the processed content, used for
	// change detection against the priority store's shadow-file cache and
	// as a streaming-mode dedup key. It is never the wire-format digest
	// (see internal/frame, which always hashes with MD5 per spec.md 6.1).
	ContentHash uint64 `json:"content_hash"`

	// Content is the processed file content after redaction and truncation.
	Content string `json:"content"`

	// OriginalContentHash is the MD5 hex digest (lowercase, 32 chars) of the
	// original decoded content, computed before any truncation. This is the
	// value carried in the end marker (spec.md 6.1).
	OriginalContentHash string `json:"original_content_hash"`

	// TruncationMode records which mode was actually applied to this file
	// (after any failure-driven degradation).
	TruncationMode TruncationMode `json:"truncation_mode"`

	// OriginalLines is the line count of the original (pre-truncation) content.
	OriginalLines int `json:"original_lines"`

	// FinalLines is the line count of the retained (post-truncation) content.
	// Equal to OriginalLines when no truncation occurred.
	FinalLines int `json:"final_lines"`

	// Redactions is the number of secrets redacted from this file's content.
	Redactions int `json:"redactions"`

	// Language is the detected programming language, used to select the
	// structural analyzer.
	Language string `json:"language"`

	// IsSymlink indicates whether the file is a symbolic link.
	IsSymlink bool `json:"is_symlink"`

	// IsBinary indicates whether binary content was detected. Binary files
	// are excluded from output entirely.
	IsBinary bool `json:"is_binary"`

	// Error tracks per-file processing failures. When set, the file is
	// skipped (not emitted) rather than appearing with an error annotation.
	// This field does not serialize to JSON since the error interface
	// cannot be marshaled cleanly.
	Error error `json:"-"`
}

// IsValid reports whether the FileDescriptor has the minimum required fields
// for a valid pipeline entry. A descriptor is valid if it has a non-empty
// relative path.
func (fd *FileDescriptor) IsValid() bool {
	return fd.Path != ""
}

// WasTruncated reports whether the emitted content differs from the original
// in line count, i.e. whether the end-marker annotation should be present.
func (fd *FileDescriptor) WasTruncated() bool {
	return fd.TruncationMode != ModeNone && fd.TruncationMode != "" && fd.FinalLines != fd.OriginalLines
}

// DiscoveryResult holds the aggregate output of the file discovery phase,
// including the discovered files and summary statistics about what was found
// and what was skipped.
type DiscoveryResult struct {
	// Files is the slice of discovered file descriptors that passed all
	// filtering criteria (ignore patterns, binary detection, size limits).
	Files []*FileDescriptor `json:"files"`

	// TotalFound is the total number of files encountered during directory
	// traversal, before any filtering was applied.
	TotalFound int `json:"total_found"`

	// TotalSkipped is the total number of files that were skipped due to
	// ignore patterns, binary detection, size limits, or other filters.
	TotalSkipped int `json:"total_skipped"`

	// SkipReasons maps each skip reason (e.g., "binary", "gitignore",
	// "size_limit") to the count of files skipped for that reason.
	SkipReasons map[string]int `json:"skip_reasons"`
}
