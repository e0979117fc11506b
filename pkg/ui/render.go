package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/slideview/pkg/format"
	"github.com/vanderheijden86/slideview/pkg/imgpreview"
	"github.com/vanderheijden86/slideview/pkg/viewer"
)

// Layout defaults.
const (
	DefaultSidebarWidth = 28
	DefaultImageRows    = 12
	minContentWidth     = 20
	progressBarWidth    = 10
)

// RenderOptions controls how a frame is drawn.
type RenderOptions struct {
	Theme Theme
	// Width is the total width in cells. 0 means 80.
	Width int

	// Markup post-processes block content. Nil keeps content as is.
	Markup *MarkupProcessor
	// Preview is the decoded image of the current slide, if any.
	Preview   *imgpreview.Preview
	ImageRows int

	SidebarWidth int
	// MenuCursor highlights a menu row other than the active one; -1 for none.
	MenuCursor int
	// Spinner is shown next to a pending body.
	Spinner string
	// Hints adds the key-hint footer.
	Hints bool
}

func (o RenderOptions) width() int {
	if o.Width <= 0 {
		return 80
	}
	return o.Width
}

func (o RenderOptions) sidebarWidth() int {
	if o.SidebarWidth <= 0 {
		return DefaultSidebarWidth
	}
	return o.SidebarWidth
}

// contentWidth is what is left for the slide once a docked menu is placed.
func (o RenderOptions) contentWidth(f viewer.Frame) int {
	w := o.width()
	if f.SidebarDocked {
		w -= o.sidebarWidth() + 4
	}
	if w < minContentWidth {
		w = minContentWidth
	}
	return w
}

// RenderFrame draws a whole frame as a static string. The returned error is
// the first post-processing failure; the output then holds the raw text.
func RenderFrame(f viewer.Frame, opts RenderOptions) (string, error) {
	if f.Phase != viewer.PhaseReady {
		return renderStatusScreen(f, opts), nil
	}

	body, err := renderSlide(f, opts)
	header := renderHeader(f, opts)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	switch {
	case f.SidebarOpen:
		b.WriteString(renderMenu(f, opts, 0))
	case f.SidebarDocked:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, renderMenu(f, opts, 0), "  ", body))
	default:
		b.WriteString(body)
	}
	b.WriteString("\n")
	b.WriteString(renderFooter(f, opts))
	return b.String(), err
}

// renderStatusScreen covers the loading, empty and failed phases.
func renderStatusScreen(f viewer.Frame, opts RenderOptions) string {
	t := opts.Theme
	switch f.Phase {
	case viewer.PhaseLoading:
		return t.Status.Render(strings.TrimSpace(opts.Spinner + " Loading slides…"))
	default:
		return t.ErrorBox.Width(min(opts.width(), 60)).Render(f.Error)
	}
}

// renderHeader draws "<title>  [pos/total] ███░░" and a rule.
func renderHeader(f viewer.Frame, opts RenderOptions) string {
	t := opts.Theme
	r := t.Renderer

	progress := t.Status.Render(fmt.Sprintf("[%s]", strings.ReplaceAll(f.Status, " ", "")))
	filled, empty := progressBar(f.Index+1, f.Total, progressBarWidth)
	bar := r.NewStyle().Foreground(t.Success).Render(filled) +
		r.NewStyle().Foreground(t.Muted).Render(empty)

	width := opts.width()
	tail := "  " + progress + " " + bar
	titleWidth := width - lipgloss.Width(tail)
	title := t.Title.Render(truncate(f.Title, titleWidth))

	rule := t.Separator.Render(strings.Repeat("─", width))
	return title + tail + "\n" + rule
}

// renderSlide draws the image slot, the formatted body and the notice.
func renderSlide(f viewer.Frame, opts RenderOptions) (string, error) {
	t := opts.Theme
	width := opts.contentWidth(f)

	var parts []string
	if img := renderImage(f, opts, width); img != "" {
		parts = append(parts, img)
	}

	var err error
	if f.BodyPending {
		parts = append(parts, t.Placeholder.Render(strings.TrimSpace(opts.Spinner+" …")))
	} else {
		var body string
		body, err = renderBlocks(t, f.Blocks, width, opts.Markup)
		parts = append(parts, body)
	}

	if f.Notice != "" {
		parts = append(parts, t.Notice.Render("⚠ "+truncate(f.Notice, width-2)))
	}
	return strings.Join(parts, "\n\n"), err
}

// renderImage returns the preview, the alt text when the image could not
// be shown yet, or "" when the slide has no image.
func renderImage(f viewer.Frame, opts RenderOptions, width int) string {
	if f.Image.Ref == "" || f.Image.Hidden {
		return ""
	}
	if opts.Preview == nil {
		return opts.Theme.ImageAlt.Render(f.Image.Alt)
	}
	rows := opts.ImageRows
	if rows <= 0 {
		rows = DefaultImageRows
	}
	return opts.Preview.Render(opts.Theme.Renderer, width, rows)
}

// renderBlocks lays out formatted blocks one under the other.
func renderBlocks(t Theme, blocks []format.Block, width int, markup *MarkupProcessor) (string, error) {
	var firstErr error
	process := func(s string) string {
		if markup == nil {
			return s
		}
		out, err := markup.Process(s)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return out
	}
	wrap := t.Renderer.NewStyle().Width(width)

	lines := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		switch b := blk.(type) {
		case format.TextBlock:
			lines = append(lines,
				t.TextLabel.Render(b.Label),
				t.TextContent.Render(wrap.Width(width-2).Render(process(b.Content))))
		case format.ExplanationBlock:
			if b.Labelled() {
				lines = append(lines, t.ExplanationLabel.Render(b.Label))
			}
			lines = append(lines, t.Explanation.Render(wrap.Render(process(b.Content))))
		case format.Separator:
			lines = append(lines, t.Separator.Render(strings.Repeat("─", width)))
		case format.Placeholder:
			lines = append(lines, t.Placeholder.Render(b.Text))
		}
	}
	return strings.Join(lines, "\n"), firstErr
}

// renderMenu draws the slide list. A positive height scrolls the list so
// the highlighted row stays visible.
func renderMenu(f viewer.Frame, opts RenderOptions, height int) string {
	t := opts.Theme
	w := opts.sidebarWidth()
	if f.SidebarOpen {
		w = opts.width() - 4
	}

	focus := f.Index
	if opts.MenuCursor >= 0 && opts.MenuCursor < len(f.Menu) {
		focus = opts.MenuCursor
	}
	start, end := 0, len(f.Menu)
	if height > 0 && len(f.Menu) > height {
		start = clamp(focus-height/2, 0, len(f.Menu)-height)
		end = start + height
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		e := f.Menu[i]
		prefix := "   "
		style := t.MenuItem
		switch {
		case i == opts.MenuCursor && opts.MenuCursor >= 0:
			prefix = " → "
			style = t.MenuCursor
		case e.Active:
			prefix = " ▶ "
			style = t.MenuActive
		}
		label := fmt.Sprintf("%d. %s", e.ID, e.Title)
		b.WriteString(style.Render(prefix + padRight(truncate(label, w-3), w-3)))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return t.MenuBox.Render(b.String())
}

// renderFooter draws the prev/next buttons, the status and the key hints.
func renderFooter(f viewer.Frame, opts RenderOptions) string {
	t := opts.Theme

	button := func(label string, enabled bool) string {
		if enabled {
			return t.Button.Render(label)
		}
		return t.ButtonDisabled.Render(label)
	}
	line := button("◀ prev", f.PrevEnabled) + "  " +
		t.Status.Render(f.Status) + "  " +
		button("next ▶", f.NextEnabled)
	if !opts.Hints {
		return line
	}

	hints := []string{
		t.KeyHint.Render("←/→/Space") + t.HintText.Render(" slides"),
		t.KeyHint.Render("g/G") + t.HintText.Render(" first/last"),
		t.KeyHint.Render("m") + t.HintText.Render(" menu"),
		t.KeyHint.Render("y") + t.HintText.Render(" copy link"),
		t.KeyHint.Render("?") + t.HintText.Render(" help"),
		t.KeyHint.Render("q") + t.HintText.Render(" quit"),
	}
	sep := t.Separator.Render(" │ ")
	return line + "\n" + strings.Join(hints, sep)
}
