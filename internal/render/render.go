// Package render wraps the byte-exact per-file framing internal/frame
// produces with a document envelope (spec.md section 6.1's framing rules are
// unaffected by this package; it only adds presentation around them): a
// Markdown document with a table of contents, or an XML document aimed at
// Claude's XML-native parsing. It wires the teacher's otherwise-unused
// OutputFormat and LLMTarget types (internal/pipeline/types.go) to a real
// consumer.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/codebrief/codebrief/internal/pipeline"
)

// Document describes the material render wraps: the included files (for the
// table of contents) and the already-framed body bytes produced by
// internal/emit.
type Document struct {
	Format    pipeline.OutputFormat
	Target    pipeline.LLMTarget
	LensName  string
	LensDescr string
	Files     []*pipeline.FileDescriptor
	Body      []byte
}

// Write renders doc to w in the requested format. FormatXML is used whenever
// Target is TargetClaude even if Format was left at its Markdown default,
// matching the teacher's documented per-target format defaults
// (pipeline.TargetClaude's doc comment: "Defaults to XML output format").
func Write(w io.Writer, doc Document) error {
	format := doc.Format
	if format == "" {
		format = pipeline.FormatMarkdown
	}
	if doc.Target == pipeline.TargetClaude && doc.Format == "" {
		format = pipeline.FormatXML
	}

	switch format {
	case pipeline.FormatXML:
		return writeXML(w, doc)
	default:
		return writeMarkdown(w, doc)
	}
}

func writeMarkdown(w io.Writer, doc Document) error {
	var b strings.Builder
	b.WriteString("# Codebase Context\n\n")
	if doc.LensName != "" {
		fmt.Fprintf(&b, "_Lens: **%s** -- %s_\n\n", doc.LensName, doc.LensDescr)
	}

	b.WriteString("## Table of Contents\n\n")
	for _, fd := range doc.Files {
		fmt.Fprintf(&b, "- `%s`\n", fd.Path)
	}
	b.WriteString("\n---\n\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	_, err := w.Write(doc.Body)
	return err
}

func writeXML(w io.Writer, doc Document) error {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<codebase")
	if doc.LensName != "" {
		fmt.Fprintf(&b, " lens=%q", doc.LensName)
	}
	b.WriteString(">\n")
	if doc.LensDescr != "" {
		fmt.Fprintf(&b, "  <description>%s</description>\n", escapeXMLText(doc.LensDescr))
	}

	b.WriteString("  <files>\n")
	for _, fd := range doc.Files {
		fmt.Fprintf(&b, "    <file path=%q/>\n", fd.Path)
	}
	b.WriteString("  </files>\n")

	// The framed body carries its own ASCII delimiters (+, -, newlines) and
	// no XML-special bytes are introduced by internal/frame, but CDATA
	// keeps content byte-exact regardless, with no escaping pass needed.
	b.WriteString("  <content><![CDATA[\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if _, err := w.Write(doc.Body); err != nil {
		return err
	}
	_, err := io.WriteString(w, "]]></content>\n</codebase>\n")
	return err
}

func escapeXMLText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
