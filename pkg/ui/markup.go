package ui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/slideview/pkg/metrics"
)

// texSymbols maps the TeX commands that show up in lecture notes to their
// Unicode forms. Longer commands come first so \leftarrow wins over \left.
var texSymbols = strings.NewReplacer(
	`\Leftrightarrow`, "⇔",
	`\leftrightarrow`, "↔",
	`\Rightarrow`, "⇒",
	`\Leftarrow`, "⇐",
	`\rightarrow`, "→",
	`\leftarrow`, "←",
	`\implies`, "⟹",
	`\approx`, "≈",
	`\times`, "×",
	`\cdot`, "·",
	`\div`, "÷",
	`\pm`, "±",
	`\neq`, "≠",
	`\leq`, "≤",
	`\geq`, "≥",
	`\le`, "≤",
	`\ge`, "≥",
	`\infty`, "∞",
	`\sum`, "∑",
	`\prod`, "∏",
	`\int`, "∫",
	`\partial`, "∂",
	`\nabla`, "∇",
	`\sqrt`, "√",
	`\forall`, "∀",
	`\exists`, "∃",
	`\notin`, "∉",
	`\in`, "∈",
	`\subseteq`, "⊆",
	`\subset`, "⊂",
	`\cup`, "∪",
	`\cap`, "∩",
	`\emptyset`, "∅",
	`\alpha`, "α",
	`\beta`, "β",
	`\gamma`, "γ",
	`\delta`, "δ",
	`\Delta`, "Δ",
	`\epsilon`, "ε",
	`\theta`, "θ",
	`\lambda`, "λ",
	`\mu`, "μ",
	`\pi`, "π",
	`\sigma`, "σ",
	`\Sigma`, "Σ",
	`\phi`, "φ",
	`\omega`, "ω",
	`\Omega`, "Ω",
	`\,`, " ",
	`\;`, " ",
	`\{`, "{",
	`\}`, "}",
)

var (
	// $$...$$, $...$, \(...\) and \[...\]
	mathSpan = regexp.MustCompile(`\$\$([^$]+)\$\$|\$([^$\n]+)\$|\\\((.+?)\\\)|\\\[(.+?)\\\]`)

	superDigit = strings.NewReplacer(
		"^0", "⁰", "^1", "¹", "^2", "²", "^3", "³", "^4", "⁴",
		"^5", "⁵", "^6", "⁶", "^7", "⁷", "^8", "⁸", "^9", "⁹",
		"^n", "ⁿ",
	)
	subDigit = strings.NewReplacer(
		"_0", "₀", "_1", "₁", "_2", "₂", "_3", "₃", "_4", "₄",
		"_5", "₅", "_6", "₆", "_7", "₇", "_8", "₈", "_9", "₉",
	)
	fracCmd = regexp.MustCompile(`\\frac\{([^{}]*)\}\{([^{}]*)\}`)
)

// ReplaceTeX rewrites inline math spans into plain Unicode. Text outside
// math delimiters is left alone.
func ReplaceTeX(s string) string {
	if !strings.ContainsAny(s, `$\`) {
		return s
	}
	return mathSpan.ReplaceAllStringFunc(s, func(span string) string {
		m := mathSpan.FindStringSubmatch(span)
		var expr string
		for _, g := range m[1:] {
			if g != "" {
				expr = g
				break
			}
		}
		return texExpr(expr)
	})
}

func texExpr(expr string) string {
	expr = fracCmd.ReplaceAllString(expr, "$1/$2")
	expr = texSymbols.Replace(expr)
	expr = superDigit.Replace(expr)
	expr = subDigit.Replace(expr)
	return strings.TrimSpace(expr)
}

// MarkupProcessor post-processes block content after it is laid out: math
// spans become Unicode and the result is rendered as Markdown by Glamour.
type MarkupProcessor struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	err      error
}

// NewMarkupProcessor creates a processor wrapping at width. An empty style
// picks the terminal's light or dark theme; tests use "notty".
func NewMarkupProcessor(width int, style string) *MarkupProcessor {
	p := &MarkupProcessor{style: style}
	p.SetWidth(width)
	return p
}

// SetWidth rebuilds the Glamour renderer for a new wrap width.
func (p *MarkupProcessor) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if p.renderer != nil && width == p.width {
		return
	}
	p.width = width

	styleOpt := glamour.WithAutoStyle()
	if p.style != "" {
		styleOpt = glamour.WithStandardStyle(p.style)
	}
	p.renderer, p.err = glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
	)
}

// Width returns the current wrap width.
func (p *MarkupProcessor) Width() int { return p.width }

// Process returns the rendered content. On error the TeX-substituted text
// is returned along with the error so callers can still show something.
func (p *MarkupProcessor) Process(content string) (string, error) {
	text := ReplaceTeX(content)
	if p.err != nil {
		return text, p.err
	}
	stop := metrics.Timer(metrics.MarkupRender)
	out, err := p.renderer.Render(text)
	stop()
	if err != nil {
		return text, err
	}
	// Glamour pads paragraphs with blank lines and a left margin.
	return strings.Trim(out, "\n"), nil
}
