package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and ANSI white
// otherwise.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds the colors and pre-built styles of the viewer.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	Base   lipgloss.Style
	Title  lipgloss.Style
	Status lipgloss.Style

	TextLabel        lipgloss.Style
	TextContent      lipgloss.Style
	ExplanationLabel lipgloss.Style
	Explanation      lipgloss.Style
	Separator        lipgloss.Style
	Placeholder      lipgloss.Style

	MenuItem   lipgloss.Style
	MenuActive lipgloss.Style
	MenuCursor lipgloss.Style
	MenuBox    lipgloss.Style

	Button         lipgloss.Style
	ButtonDisabled lipgloss.Style
	KeyHint        lipgloss.Style
	HintText       lipgloss.Style
	Notice         lipgloss.Style
	ErrorBox       lipgloss.Style
	ImageAlt       lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Success:   lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Warning:   lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})
	t.Title = r.NewStyle().Bold(true).Foreground(t.Primary)
	t.Status = r.NewStyle().Foreground(t.Subtext)

	t.TextLabel = r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"})
	t.TextContent = r.NewStyle().
		Border(lipgloss.ThickBorder(), false, true, false, false).
		BorderForeground(lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}).
		PaddingRight(1)
	t.ExplanationLabel = r.NewStyle().Bold(true).Foreground(t.Success)
	t.Explanation = t.Base
	t.Separator = r.NewStyle().Foreground(t.Border)
	t.Placeholder = r.NewStyle().Italic(true).Foreground(t.Muted)

	t.MenuItem = r.NewStyle().Foreground(t.Subtext)
	t.MenuActive = r.NewStyle().Bold(true).Foreground(t.Primary)
	t.MenuCursor = r.NewStyle().Bold(true).Foreground(t.Primary).Background(t.Highlight)
	t.MenuBox = r.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	t.Button = r.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Background(t.Primary).
		Padding(0, 1)
	t.ButtonDisabled = r.NewStyle().
		Foreground(t.Muted).
		Background(t.Highlight).
		Padding(0, 1)
	t.KeyHint = r.NewStyle().Bold(true).Foreground(t.Primary)
	t.HintText = r.NewStyle().Foreground(t.Subtext)
	t.Notice = r.NewStyle().Foreground(t.Warning)
	t.ErrorBox = r.NewStyle().
		Foreground(t.Danger).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Danger).
		Padding(1, 2)
	t.ImageAlt = r.NewStyle().
		Foreground(t.Muted).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	return t
}
