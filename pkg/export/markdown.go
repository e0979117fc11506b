package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/slideview/pkg/format"
)

// markdownEscaper escapes characters that would start Markdown syntax in a
// heading or link text.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"[", `\[`,
	"]", `\]`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
)

// WriteMarkdown writes the deck as a handout: a table of contents linking
// to per-slide anchors, then every slide in order.
func WriteMarkdown(w io.Writer, doc *Document) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", markdownEscaper.Replace(doc.Title))

	sb.WriteString("## Contents\n\n")
	for _, s := range doc.Slides {
		fmt.Fprintf(&sb, "%d. [%s](%s)\n", s.Position, markdownEscaper.Replace(s.Title), s.Fragment)
	}
	sb.WriteString("\n")

	for _, s := range doc.Slides {
		sb.WriteString("---\n\n")
		fmt.Fprintf(&sb, "<a id=\"%s\"></a>\n\n", strings.TrimPrefix(s.Fragment, "#"))
		fmt.Fprintf(&sb, "## %d. %s\n\n", s.ID, markdownEscaper.Replace(s.Title))
		if s.Image != "" {
			fmt.Fprintf(&sb, "![%s](%s)\n\n", markdownEscaper.Replace(s.ImageAlt), s.Image)
		}
		writeBlocks(&sb, s.Blocks)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeBlocks(sb *strings.Builder, blocks []format.Block) {
	for _, blk := range blocks {
		switch b := blk.(type) {
		case format.TextBlock:
			fmt.Fprintf(sb, "**%s**\n\n", b.Label)
			for _, line := range strings.Split(b.Content, "\n") {
				sb.WriteString("> " + line + "\n")
			}
			sb.WriteString("\n")
		case format.ExplanationBlock:
			if b.Labelled() {
				fmt.Fprintf(sb, "**%s**\n\n", b.Label)
			}
			sb.WriteString(b.Content + "\n\n")
		case format.Separator:
			sb.WriteString("* * *\n\n")
		case format.Placeholder:
			fmt.Fprintf(sb, "_%s_\n\n", b.Text)
		}
	}
}

// SaveMarkdown writes the handout to path, creating parent directories.
func SaveMarkdown(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create markdown file: %w", err)
	}
	if err := WriteMarkdown(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("write markdown: %w", err)
	}
	return f.Close()
}
