// Package export writes a whole deck to other formats: a Markdown handout,
// a SQLite database and an SVG or PNG overview sheet.
package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vanderheijden86/slideview/pkg/format"
	"github.com/vanderheijden86/slideview/pkg/loader"
	"github.com/vanderheijden86/slideview/pkg/metrics"
	"github.com/vanderheijden86/slideview/pkg/model"
	"github.com/vanderheijden86/slideview/pkg/nav"
	"github.com/vanderheijden86/slideview/pkg/viewer"
)

// SlideDoc is one slide with its body resolved and formatted.
type SlideDoc struct {
	Position int
	ID       int
	Title    string
	Image    string
	ImageAlt string
	Fragment string
	Body     string
	Blocks   []format.Block
}

// Document is a fully resolved deck, ready to be written out.
type Document struct {
	Title  string
	Source string
	Labels format.Labels
	Slides []SlideDoc
}

// CollectOptions controls Collect.
type CollectOptions struct {
	Labels      format.Labels
	Messages    viewer.Messages
	Concurrency int
	// Warn receives one message per body that could not be fetched.
	Warn func(string)
}

// Collect fetches every lazy body of deck and formats all slides.
func Collect(ctx context.Context, deck *model.Deck, fetcher loader.BodyFetcher, opts CollectOptions) (*Document, error) {
	if deck.Empty() {
		return nil, loader.ErrEmptyCatalog
	}
	defer metrics.Timer(metrics.Export)()
	bodies, err := loader.ResolveBodies(ctx, deck, fetcher, opts.Concurrency, opts.Warn)
	if err != nil {
		return nil, fmt.Errorf("collecting deck: %w", err)
	}

	labels := opts.Labels.WithDefaults()
	msgs := opts.Messages.WithDefaults()
	doc := &Document{
		Title:  deckTitle(deck.Source),
		Source: deck.Source,
		Labels: labels,
	}
	for i, s := range deck.Slides() {
		body := bodies[s.ID]
		doc.Slides = append(doc.Slides, SlideDoc{
			Position: i + 1,
			ID:       s.ID,
			Title:    s.Title,
			Image:    s.Image,
			ImageAlt: msgs.AltText(s.ID),
			Fragment: nav.FragmentFor(s.ID),
			Body:     body,
			Blocks:   format.Format(body, labels),
		})
	}
	return doc, nil
}

// deckTitle names a deck after the directory holding its manifest.
func deckTitle(source string) string {
	dir := filepath.Base(filepath.Dir(source))
	if dir == "." || dir == "/" || dir == "" {
		return "slides"
	}
	return dir
}
