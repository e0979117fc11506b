package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/slideview/pkg/format"
)

// SnapshotOptions controls overview sheet export.
type SnapshotOptions struct {
	Path    string // Output path; format inferred from extension when Format empty
	Format  string // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title   string // Overrides the deck title in the header
	Columns int    // Cards per row; default 3
}

// SaveSnapshot renders an overview sheet of the deck: a header and one card
// per slide showing its id, title, first line and block counts.
func SaveSnapshot(doc *Document, opts SnapshotOptions) error {
	if doc == nil || len(doc.Slides) == 0 {
		return fmt.Errorf("no slides to export")
	}

	kind := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if kind == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			kind = "svg"
		case ".png":
			kind = "png"
		default:
			kind = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path += ".svg"
			}
		}
	}
	if kind != "svg" && kind != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", kind)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	sheet := buildSheet(doc, opts)
	if kind == "png" {
		return renderSheetPNG(opts.Path, sheet)
	}
	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	if err := renderSheetSVG(f, sheet); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// --- layout ----------------------------------------------------------------

const (
	cardW        = 300
	cardH        = 120
	cardGap      = 24
	sheetPadding = 32
	headerH      = 90
)

type card struct {
	X, Y     int
	ID       int
	Title    string
	Preview  string
	Counts   string
	HasImage bool
	Empty    bool
}

type sheet struct {
	Width, Height int
	Title         string
	Summary       string
	Cards         []card
}

func buildSheet(doc *Document, opts SnapshotOptions) sheet {
	cols := opts.Columns
	if cols <= 0 {
		cols = 3
	}
	if cols > len(doc.Slides) {
		cols = len(doc.Slides)
	}
	rows := (len(doc.Slides) + cols - 1) / cols

	title := opts.Title
	if title == "" {
		title = doc.Title
	}

	s := sheet{
		Width:  sheetPadding*2 + cols*cardW + (cols-1)*cardGap,
		Height: headerH + sheetPadding + rows*cardH + (rows-1)*cardGap + sheetPadding,
		Title:  title,
	}
	if s.Width < 480 {
		s.Width = 480
	}

	var images, empty int
	for i, sl := range doc.Slides {
		if sl.Image != "" {
			images++
		}
		c := card{
			X:        sheetPadding + (i%cols)*(cardW+cardGap),
			Y:        headerH + sheetPadding + (i/cols)*(cardH+cardGap),
			ID:       sl.ID,
			Title:    truncate(sl.Title, 38),
			Preview:  truncate(firstLine(sl.Blocks), 40),
			HasImage: sl.Image != "",
			Counts: fmt.Sprintf("text %d  expl %d",
				format.Count(sl.Blocks, format.KindText),
				format.Count(sl.Blocks, format.KindExplanation)),
		}
		if format.Count(sl.Blocks, format.KindPlaceholder) > 0 {
			c.Empty = true
			empty++
		}
		s.Cards = append(s.Cards, c)
	}
	s.Summary = fmt.Sprintf("slides: %d  with image: %d  empty: %d", len(doc.Slides), images, empty)
	return s
}

func firstLine(blocks []format.Block) string {
	for _, b := range blocks {
		if c := format.Content(b); c != "" {
			line, _, _ := strings.Cut(c, "\n")
			return line
		}
	}
	return ""
}

// --- rendering -------------------------------------------------------------

var (
	colorCard     = color.RGBA{0xe8, 0xea, 0xf6, 0xff}
	colorCardImg  = color.RGBA{0xe0, 0xf2, 0xf1, 0xff}
	colorEmpty    = color.RGBA{0xee, 0xee, 0xee, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
)

func cardColor(c card) color.RGBA {
	switch {
	case c.Empty:
		return colorEmpty
	case c.HasImage:
		return colorCardImg
	default:
		return colorCard
	}
}

func renderSheetPNG(path string, s sheet) error {
	dc := gg.NewContext(s.Width, s.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(s.Width)-32, headerH-24, 10)
	dc.Fill()

	// basicfont only covers ASCII; other scripts render as placeholder glyphs.
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(s.Title, 32, 40, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(s.Summary, 32, 62, 0, 0.5)

	for _, c := range s.Cards {
		x, y := float64(c.X), float64(c.Y)
		dc.SetColor(cardColor(c))
		dc.DrawRoundedRectangle(x, y, cardW, cardH, 8)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1.2)
		dc.DrawRoundedRectangle(x, y, cardW, cardH, 8)
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(fmt.Sprintf("#slide-%d", c.ID), x+12, y+20, 0, 0.5)
		dc.DrawStringAnchored(c.Title, x+12, y+42, 0, 0.5)
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(c.Preview, x+12, y+66, 0, 0.5)
		dc.DrawStringAnchored(c.Counts, x+12, y+cardH-18, 0, 0.5)
	}
	return dc.SavePNG(path)
}

func renderSheetSVG(w io.Writer, s sheet) error {
	canvas := svg.New(w)
	canvas.Start(s.Width, s.Height)
	canvas.Rect(0, 0, s.Width, s.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, s.Width-32, headerH-24, 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(32, 44, s.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:sans-serif;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, s.Summary, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))

	for _, c := range s.Cards {
		canvas.Roundrect(c.X, c.Y, cardW, cardH, 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(cardColor(c)), css(colorStroke)))
		canvas.Text(c.X+12, c.Y+24, fmt.Sprintf("#slide-%d", c.ID),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
		canvas.Text(c.X+12, c.Y+46, c.Title,
			fmt.Sprintf("fill:%s;font-size:14px;font-family:sans-serif", css(colorText)))
		canvas.Text(c.X+12, c.Y+70, c.Preview,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif", css(colorSubtle)))
		canvas.Text(c.X+12, c.Y+cardH-14, c.Counts,
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
