// Package model defines the slide deck data types shared by the loader,
// navigator, controller and UI.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Slide is a single entry of the deck manifest. Slides are immutable once
// loaded.
type Slide struct {
	ID       int    `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Image    string `json:"image" yaml:"image"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
	TextPath string `json:"textPath,omitempty" yaml:"textPath,omitempty"`
}

// HasInlineText reports whether the slide carries its body inline.
func (s Slide) HasInlineText() bool {
	return s.Text != ""
}

// NeedsFetch reports whether the body must be fetched lazily from TextPath.
func (s Slide) NeedsFetch() bool {
	return s.Text == "" && strings.TrimSpace(s.TextPath) != ""
}

// Deck is the ordered slide collection. It is always sorted ascending by ID.
type Deck struct {
	// Source is the manifest location the deck was loaded from (file path or
	// URL). Relative TextPath and Image references resolve against it.
	Source string

	slides []Slide
	byID   map[int]int
}

// NewDeck builds a deck from the given slides, sorting them by ID.
// Returns an error if two slides share an ID.
func NewDeck(source string, slides []Slide) (*Deck, error) {
	sorted := make([]Slide, len(slides))
	copy(sorted, slides)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	byID := make(map[int]int, len(sorted))
	for i, s := range sorted {
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate slide id %d", s.ID)
		}
		byID[s.ID] = i
	}

	return &Deck{Source: source, slides: sorted, byID: byID}, nil
}

// Len returns the number of slides.
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.slides)
}

// Empty reports whether the deck has no slides.
func (d *Deck) Empty() bool {
	return d.Len() == 0
}

// At returns the slide at index i.
func (d *Deck) At(i int) (Slide, bool) {
	if d == nil || i < 0 || i >= len(d.slides) {
		return Slide{}, false
	}
	return d.slides[i], true
}

// IndexOf returns the index of the slide with the given ID.
func (d *Deck) IndexOf(id int) (int, bool) {
	if d == nil {
		return 0, false
	}
	i, ok := d.byID[id]
	return i, ok
}

// ByID returns the slide with the given ID.
func (d *Deck) ByID(id int) (Slide, bool) {
	i, ok := d.IndexOf(id)
	if !ok {
		return Slide{}, false
	}
	return d.slides[i], true
}

// Slides returns a copy of the ordered slide list.
func (d *Deck) Slides() []Slide {
	if d == nil {
		return nil
	}
	out := make([]Slide, len(d.slides))
	copy(out, d.slides)
	return out
}

// IDs returns the slide IDs in deck order.
func (d *Deck) IDs() []int {
	if d == nil {
		return nil
	}
	ids := make([]int, len(d.slides))
	for i, s := range d.slides {
		ids[i] = s.ID
	}
	return ids
}
