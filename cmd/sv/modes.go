package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vanderheijden86/slideview/pkg/config"
	"github.com/vanderheijden86/slideview/pkg/export"
	"github.com/vanderheijden86/slideview/pkg/loader"
	"github.com/vanderheijden86/slideview/pkg/location"
	"github.com/vanderheijden86/slideview/pkg/nav"
	"github.com/vanderheijden86/slideview/pkg/ui"
	"github.com/vanderheijden86/slideview/pkg/viewer"
)

// printDeck renders the slide addressed by start, with its body and image
// resolved, and writes it to w.
func printDeck(ctx context.Context, ld *loader.Loader, source string, cfg config.Config, start string, width int, w io.Writer) error {
	deck, err := ld.Load(ctx, source)
	if err != nil {
		return err
	}

	loc := &nav.MemoryLocation{}
	_ = loc.SetFragment(start)
	ctrl := viewer.New(viewer.Options{
		Labels:      cfg.Labels,
		Messages:    cfg.Messages,
		Location:    loc,
		NarrowWidth: cfg.UI.NarrowWidth,
		ShowImages:  cfg.UI.ShowImages,
	})
	ctrl.Handle(viewer.Resized{Width: width})
	effects := ctrl.Handle(viewer.DeckLoaded{Deck: deck})
	images := ui.Settle(ctx, ctrl, ld, deck, effects)

	frame := ctrl.Frame()
	opts := ui.RenderOptions{
		Theme:      ui.DefaultTheme(lipgloss.NewRenderer(w)),
		Width:      width,
		Preview:    images[frame.SlideID],
		MenuCursor: -1,
	}
	if cfg.UI.Markup {
		opts.Markup = ui.NewMarkupProcessor(width-2, "")
	}
	out, err := ui.RenderFrame(frame, opts)
	if err != nil {
		ctrl.Handle(viewer.PostProcessFailed{SlideID: frame.SlideID, Err: err})
		out, _ = ui.RenderFrame(ctrl.Frame(), opts)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

type exportTargets struct {
	Markdown string
	SQLite   string
	Snapshot string
}

// runExports loads the deck once, resolves every body and writes each
// requested export.
func runExports(ctx context.Context, ld *loader.Loader, source string, cfg config.Config, targets exportTargets, stdout, stderr io.Writer) error {
	deck, err := ld.Load(ctx, source)
	if err != nil {
		return err
	}
	doc, err := export.Collect(ctx, deck, ld, export.CollectOptions{
		Labels:      cfg.Labels,
		Messages:    cfg.Messages,
		Concurrency: cfg.Fetch.Concurrency,
		Warn: func(msg string) {
			fmt.Fprintf(stderr, "Warning: %s\n", msg)
		},
	})
	if err != nil {
		return err
	}

	if targets.Markdown != "" {
		if err := export.SaveMarkdown(targets.Markdown, doc); err != nil {
			return fmt.Errorf("markdown export: %w", err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", targets.Markdown)
	}
	if targets.SQLite != "" {
		if err := export.NewSQLiteExporter(doc).Export(targets.SQLite); err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", targets.SQLite)
	}
	if targets.Snapshot != "" {
		if err := export.SaveSnapshot(doc, export.SnapshotOptions{Path: targets.Snapshot}); err != nil {
			return fmt.Errorf("snapshot export: %w", err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", targets.Snapshot)
	}
	return nil
}

// pickSlide asks for the starting slide and returns its fragment.
func pickSlide(ctx context.Context, ld *loader.Loader, source, current string, loc *location.File) (string, error) {
	deck, err := ld.Load(ctx, source)
	if err != nil {
		return "", err
	}
	if current == "" && loc != nil {
		current = loc.Fragment()
	}

	options := make([]huh.Option[string], 0, deck.Len())
	for _, e := range viewer.BuildMenu(deck) {
		options = append(options, huh.NewOption(fmt.Sprintf("%d. %s", e.ID, e.Title), e.Fragment))
	}
	choice := current
	if _, ok := nav.ParseFragment(choice); !ok {
		choice = options[0].Value
	}

	form := newForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Start at slide").
			Options(options...).
			Height(min(len(options)+2, 15)).
			Value(&choice),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("picking slide: %w", err)
	}
	return choice, nil
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// terminalWidth returns the stdout width, or 80 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
