package viewer

import (
	"github.com/vanderheijden86/slideview/pkg/model"
	"github.com/vanderheijden86/slideview/pkg/nav"
)

// DefaultNarrowWidth is the terminal width (columns) at or below which the
// sidebar is an overlay that closes after a selection.
const DefaultNarrowWidth = 100

// MenuEntry is one line of the slide menu.
type MenuEntry struct {
	Index    int
	ID       int
	Title    string
	Fragment string
	Active   bool
}

// BuildMenu returns one entry per slide in deck order.
func BuildMenu(deck *model.Deck) []MenuEntry {
	slides := deck.Slides()
	entries := make([]MenuEntry, len(slides))
	for i, s := range slides {
		entries[i] = MenuEntry{
			Index:    i,
			ID:       s.ID,
			Title:    s.Title,
			Fragment: nav.FragmentFor(s.ID),
		}
	}
	return entries
}

// withActive returns a copy of entries with only the entry at index marked
// active.
func withActive(entries []MenuEntry, index int) []MenuEntry {
	out := make([]MenuEntry, len(entries))
	copy(out, entries)
	for i := range out {
		out[i].Active = i == index
	}
	return out
}
