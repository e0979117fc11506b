// Package imgpreview turns slide images into terminal previews drawn with
// upper half blocks, two pixel rows per cell.
package imgpreview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/vanderheijden86/slideview/pkg/metrics"
)

const halfBlock = "▀"

// ErrEmpty is returned for an empty image payload.
var ErrEmpty = errors.New("empty image data")

// Preview is a decoded image ready to be drawn at any size.
type Preview struct {
	img    image.Image
	format string
}

// Decode reads a PNG, JPEG, GIF, BMP or WebP image.
func Decode(data []byte) (*Preview, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	defer metrics.Timer(metrics.ImageDecode)()
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return &Preview{img: img, format: format}, nil
}

// Format returns the detected image format name.
func (p *Preview) Format() string { return p.format }

// Bounds returns the source image size in pixels.
func (p *Preview) Bounds() image.Rectangle { return p.img.Bounds() }

// Fit returns the cell size that fits the image into maxCols x maxRows while
// keeping its aspect ratio. Terminal cells are about twice as tall as wide,
// which the half-block rendering already compensates for.
func (p *Preview) Fit(maxCols, maxRows int) (cols, rows int) {
	b := p.img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	cols = maxCols
	pxRows := h * cols / w
	if pxRows > maxRows*2 {
		pxRows = maxRows * 2
		cols = w * pxRows / h
	}
	rows = (pxRows + 1) / 2
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// Scale resizes the image to cols x 2*rows pixels.
func (p *Preview) Scale(cols, rows int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), p.img, p.img.Bounds(), draw.Src, nil)
	return dst
}

// Render draws the image into at most maxCols x maxRows cells.
func (p *Preview) Render(r *lipgloss.Renderer, maxCols, maxRows int) string {
	cols, rows := p.Fit(maxCols, maxRows)
	if cols == 0 {
		return ""
	}
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	px := p.Scale(cols, rows)

	var sb strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			top := px.RGBAAt(x, 2*y)
			bottom := px.RGBAAt(x, 2*y+1)
			sb.WriteString(r.NewStyle().
				Foreground(lipgloss.Color(hex(top))).
				Background(lipgloss.Color(hex(bottom))).
				Render(halfBlock))
		}
	}
	return sb.String()
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
