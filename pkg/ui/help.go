package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// helpContent is the quick reference for the current focus. It fits one
// screen without scrolling.
func helpContent(menuFocus bool) string {
	if menuFocus {
		return helpMenu
	}
	return helpSlides
}

// renderHelp renders the quick reference modal.
func renderHelp(theme Theme, width int, menuFocus bool) string {
	r := theme.Renderer

	modalWidth := 52
	if modalWidth > width-4 {
		modalWidth = width - 4
	}
	if modalWidth < minContentWidth {
		modalWidth = minContentWidth
	}

	titleStyle := r.NewStyle().Bold(true).Foreground(theme.Primary)
	contentStyle := r.NewStyle().Foreground(theme.Subtext)
	footerStyle := r.NewStyle().Foreground(theme.Muted).Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick Reference"))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", modalWidth-4)))
	b.WriteString("\n\n")
	b.WriteString(contentStyle.Render(helpContent(menuFocus)))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("? or Esc to close"))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth)

	return modalStyle.Render(b.String())
}

const helpSlides = `Slides
  →/l/n/Space   Next slide
  ←/h/p         Previous slide
  g/Home        First slide
  G/End         Last slide
  ↑/↓           Scroll the body

Contents
  m             Toggle the contents menu
  Tab           Focus the menu

Other
  y             Copy the slide link
  r             Reload the deck
  q             Quit`

const helpMenu = `Contents menu
  j/k           Move the cursor
  Enter         Open the slide
  Esc/Tab       Leave the menu

Other
  y             Copy the slide link
  q             Quit`
