// Package nav owns the slide cursor and its mapping to "#slide-<id>"
// fragments.
package nav

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/vanderheijden86/slideview/pkg/model"
)

// FragmentPrefix precedes the slide id in a location fragment.
const FragmentPrefix = "#slide-"

// Location is the externally visible address of the current slide.
type Location interface {
	Fragment() string
	SetFragment(fragment string) error
}

// MemoryLocation is an in-process Location.
type MemoryLocation struct {
	mu       sync.Mutex
	fragment string
}

func (m *MemoryLocation) Fragment() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fragment
}

func (m *MemoryLocation) SetFragment(fragment string) error {
	m.mu.Lock()
	m.fragment = fragment
	m.mu.Unlock()
	return nil
}

// FragmentFor returns the fragment addressing the slide with the given id.
func FragmentFor(id int) string {
	return FragmentPrefix + strconv.Itoa(id)
}

// ParseFragment extracts the slide id from "#slide-<id>", "slide-<id>" or a
// bare number.
func ParseFragment(fragment string) (int, bool) {
	s := strings.TrimSpace(fragment)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(s, "slide-")
	if s == "" {
		return 0, false
	}
	// Like a leading-number parse, "2abc" names slide 2.
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return id, true
}

// Navigator tracks the current index into a deck.
type Navigator struct {
	deck     *model.Deck
	loc      Location
	index    int
	lastErr  error
	onChange func(index int, fragment string)
}

// New creates a navigator positioned at index 0. A nil location is replaced
// with a MemoryLocation.
func New(deck *model.Deck, loc Location) *Navigator {
	if loc == nil {
		loc = &MemoryLocation{}
	}
	return &Navigator{deck: deck, loc: loc}
}

// OnChange registers a callback invoked after every successful move.
func (n *Navigator) OnChange(fn func(index int, fragment string)) {
	n.onChange = fn
}

func (n *Navigator) Index() int            { return n.index }
func (n *Navigator) Len() int              { return n.deck.Len() }
func (n *Navigator) Location() Location    { return n.loc }
func (n *Navigator) Deck() *model.Deck     { return n.deck }
func (n *Navigator) AtStart() bool         { return n.index <= 0 }
func (n *Navigator) AtEnd() bool           { return n.index >= n.deck.Len()-1 }
func (n *Navigator) LastWriteError() error { return n.lastErr }

// Current returns the slide under the cursor.
func (n *Navigator) Current() (model.Slide, bool) {
	return n.deck.At(n.index)
}

// GoToIndex moves the cursor and publishes the new fragment. It reports
// false, leaving everything untouched, when i is out of range.
func (n *Navigator) GoToIndex(i int) bool {
	slide, ok := n.deck.At(i)
	if !ok {
		return false
	}
	n.index = i
	fragment := FragmentFor(slide.ID)
	if err := n.loc.SetFragment(fragment); err != nil {
		n.lastErr = fmt.Errorf("writing location %s: %w", fragment, err)
	} else {
		n.lastErr = nil
	}
	if n.onChange != nil {
		n.onChange(i, fragment)
	}
	return true
}

// Next advances one slide; it is a no-op on the last slide.
func (n *Navigator) Next() bool {
	if n.AtEnd() {
		return false
	}
	return n.GoToIndex(n.index + 1)
}

// Previous moves back one slide; it is a no-op on the first slide.
func (n *Navigator) Previous() bool {
	if n.AtStart() {
		return false
	}
	return n.GoToIndex(n.index - 1)
}

// ResolveFromFragment maps a fragment to a deck index. Anything that does
// not name a known slide resolves to 0.
func (n *Navigator) ResolveFromFragment(fragment string) int {
	id, ok := ParseFragment(fragment)
	if !ok {
		return 0
	}
	if idx, found := n.deck.IndexOf(id); found {
		return idx
	}
	return 0
}

// Init positions the cursor from the current location without rewriting
// it.
func (n *Navigator) Init() int {
	n.index = n.ResolveFromFragment(n.loc.Fragment())
	return n.index
}

// Sync follows an externally changed fragment. The location is not written
// back. It reports whether the cursor moved.
func (n *Navigator) Sync(fragment string) bool {
	idx := n.ResolveFromFragment(fragment)
	if idx == n.index {
		return false
	}
	n.index = idx
	if n.onChange != nil {
		n.onChange(idx, fragment)
	}
	return true
}
