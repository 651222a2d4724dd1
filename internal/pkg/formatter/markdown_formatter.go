package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/spec-copilot/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(spec *entity.FinalSpec) ([]byte, error) {
	doc := buildDocument(spec)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", doc.title)

	if len(doc.meta) > 0 {
		buf.WriteString("\n")
		for _, m := range doc.meta {
			fmt.Fprintf(&buf, "- **%s:** %s\n", m[0], m[1])
		}
	}

	for _, s := range doc.sections {
		fmt.Fprintf(&buf, "\n## %s\n\n", s.heading)
		for _, line := range s.lines {
			fmt.Fprintf(&buf, "%s\n", line)
		}
	}

	if len(doc.trace) > 0 {
		buf.WriteString("\n## Reasoning Trace\n\n")
		for i, line := range doc.trace {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, line)
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
