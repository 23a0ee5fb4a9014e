// Package frame renders a single FileDescriptor as the byte-exact wire
// format record described in spec.md section 6.1, "Wire Format": a start
// marker, the file's content, and an end marker carrying the MD5 digest of
// the original (pre-truncation) bytes.
package frame

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/codebrief/codebrief/internal/pipeline"
)

// Hash returns the lowercase hex MD5 digest of content. Callers compute this
// over the original decoded bytes before any truncation or redaction, and
// store the result in FileDescriptor.OriginalContentHash -- frame never
// recomputes it, since by the time a record is rendered Content may already
// be truncated.
func Hash(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Record renders fd as a complete wire-format record (start marker, content,
// end marker), each line terminated with "\n".
func Record(fd *pipeline.FileDescriptor) string {
	var b strings.Builder
	_, _ = WriteRecord(&b, fd)
	return b.String()
}

// WriteRecord writes fd's wire-format record to w and returns the number of
// bytes written. fd.OriginalContentHash must already be populated.
func WriteRecord(w io.Writer, fd *pipeline.FileDescriptor) (int, error) {
	truncated := fd.WasTruncated()
	content := ensureTrailingNewline(fd.Content)

	var start, end string
	if truncated {
		start = fmt.Sprintf("++++++++++ %s [TRUNCATED: %d lines] ++++++++++\n", fd.Path, fd.OriginalLines)
		end = fmt.Sprintf("---------- %s [TRUNCATED:%d→%d] %s %s ----------\n",
			fd.Path, fd.OriginalLines, fd.FinalLines, fd.OriginalContentHash, fd.Path)
	} else {
		start = fmt.Sprintf("++++++++++ %s ++++++++++\n", fd.Path)
		end = fmt.Sprintf("---------- %s %s %s ----------\n", fd.Path, fd.OriginalContentHash, fd.Path)
	}

	return io.WriteString(w, start+content+end)
}

// ensureTrailingNewline appends "\n" to s if it does not already end with
// one; an empty string becomes a single blank line (spec.md section 6.1: "a
// file with no trailing newline" gets one injected before the end marker,
// and a BOM-only file is treated as empty text and emitted the same way).
func ensureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
