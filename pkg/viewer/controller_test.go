package viewer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vanderheijden86/slideview/pkg/format"
	"github.com/vanderheijden86/slideview/pkg/loader"
	"github.com/vanderheijden86/slideview/pkg/model"
	"github.com/vanderheijden86/slideview/pkg/nav"
)

func testDeck(t *testing.T) *model.Deck {
	t.Helper()
	d, err := model.NewDeck("/deck/slides.json", []model.Slide{
		{ID: 1, Title: "Intro", Image: "img/1.png", Text: "النص:\nمرحبا\nالشرح:\nتفسير"},
		{ID: 2, Title: "Lazy", Image: "img/2.png", TextPath: "bodies/2.txt"},
		{ID: 3, Title: "Plain", Text: "سطر واحد"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func newReady(t *testing.T, opts Options) (*Controller, *nav.MemoryLocation, []Effect) {
	t.Helper()
	loc := &nav.MemoryLocation{}
	if opts.Location != nil {
		loc = opts.Location.(*nav.MemoryLocation)
	}
	opts.Location = loc
	c := New(opts)
	effects := c.Handle(DeckLoaded{Deck: testDeck(t)})
	return c, loc, effects
}

func findFetch(effects []Effect) (FetchBody, bool) {
	for _, e := range effects {
		if f, ok := e.(FetchBody); ok {
			return f, true
		}
	}
	return FetchBody{}, false
}

func TestInitialFrame(t *testing.T) {
	c, loc, effects := newReady(t, Options{ShowImages: true})

	f := c.Frame()
	if f.Phase != PhaseReady {
		t.Fatalf("Phase = %v, want ready", f.Phase)
	}
	if f.Title != "Intro" || f.Status != "1 / 3" {
		t.Errorf("Title, Status = %q, %q", f.Title, f.Status)
	}
	if f.PrevEnabled || !f.NextEnabled {
		t.Errorf("PrevEnabled=%v NextEnabled=%v, want false/true", f.PrevEnabled, f.NextEnabled)
	}
	if f.Image.Alt != "صورة الشريحة 1" || f.Image.Ref != "img/1.png" {
		t.Errorf("Image = %+v", f.Image)
	}
	if len(f.Blocks) != 3 || f.Blocks[0].Kind() != format.KindText {
		t.Errorf("Blocks = %#v", f.Blocks)
	}
	if loc.Fragment() != "#slide-1" {
		t.Errorf("location = %q, want the start slide published", loc.Fragment())
	}
	if w, ok := effects[0].(WriteFragment); !ok || w.Fragment != "#slide-1" {
		t.Errorf("first effect = %#v, want WriteFragment", effects[0])
	}

	var loadImage bool
	for _, e := range effects {
		if li, ok := e.(LoadImage); ok && li.SlideID == 1 {
			loadImage = true
		}
	}
	if !loadImage {
		t.Errorf("effects = %#v, want LoadImage for slide 1", effects)
	}
}

func TestMenuHasExactlyOneActiveEntry(t *testing.T) {
	c, _, _ := newReady(t, Options{})
	c.Handle(NextPressed{})

	active := 0
	for _, e := range c.Frame().Menu {
		if e.Active {
			active++
			if e.ID != 2 || e.Fragment != "#slide-2" {
				t.Errorf("active entry = %+v", e)
			}
		}
	}
	if active != 1 {
		t.Errorf("active entries = %d, want 1", active)
	}
}

func TestStartsFromLocationFragment(t *testing.T) {
	loc := &nav.MemoryLocation{}
	_ = loc.SetFragment("#slide-3")
	c, _, _ := newReady(t, Options{Location: loc})

	f := c.Frame()
	if f.SlideID != 3 || f.Status != "3 / 3" || f.NextEnabled {
		t.Errorf("frame = id %d status %q next %v", f.SlideID, f.Status, f.NextEnabled)
	}
}

func TestUnknownFragmentStartsAtFirst(t *testing.T) {
	loc := &nav.MemoryLocation{}
	_ = loc.SetFragment("#slide-99")
	c, _, _ := newReady(t, Options{Location: loc})
	if c.Index() != 0 {
		t.Errorf("Index() = %d, want 0", c.Index())
	}
	if loc.Fragment() != "#slide-1" {
		t.Errorf("location = %q, want it normalised to #slide-1", loc.Fragment())
	}
}

func TestNextWritesFragmentAndFetchesLazyBody(t *testing.T) {
	c, loc, _ := newReady(t, Options{})

	effects := c.Handle(NextPressed{})
	if loc.Fragment() != "#slide-2" {
		t.Errorf("location = %q, want #slide-2", loc.Fragment())
	}
	if w, ok := effects[0].(WriteFragment); !ok || w.Fragment != "#slide-2" {
		t.Errorf("first effect = %#v, want WriteFragment", effects[0])
	}
	fetch, ok := findFetch(effects)
	if !ok || fetch.SlideID != 2 || fetch.Slide.TextPath != "bodies/2.txt" {
		t.Fatalf("effects = %#v, want FetchBody for slide 2", effects)
	}

	f := c.Frame()
	if !f.BodyPending || f.Blocks != nil {
		t.Errorf("BodyPending=%v Blocks=%v while fetching", f.BodyPending, f.Blocks)
	}
	if f.Status != "2 / 3" || !f.PrevEnabled || !f.NextEnabled {
		t.Errorf("status/buttons not updated immediately: %+v", f)
	}

	c.Handle(BodyFetched{SlideID: 2, Seq: fetch.Seq, Text: "النص: x"})
	f = c.Frame()
	if f.BodyPending || len(f.Blocks) != 1 || format.Content(f.Blocks[0]) != "x" {
		t.Errorf("after fetch: pending=%v blocks=%#v", f.BodyPending, f.Blocks)
	}
}

func TestStaleBodyIsIgnored(t *testing.T) {
	c, _, _ := newReady(t, Options{})

	first, _ := findFetch(c.Handle(NextPressed{}))
	c.Handle(NextPressed{})
	// Back on the lazy slide: a new request supersedes the first one.
	second, _ := findFetch(c.Handle(PrevPressed{}))
	if second.Seq == first.Seq {
		t.Fatal("expected a new sequence number")
	}

	c.Handle(BodyFetched{SlideID: 2, Seq: first.Seq, Text: "stale"})
	if f := c.Frame(); !f.BodyPending {
		t.Fatal("stale result was applied")
	}

	c.Handle(BodyFetched{SlideID: 2, Seq: second.Seq, Text: "fresh"})
	f := c.Frame()
	if f.BodyPending || format.Content(f.Blocks[0]) != "fresh" {
		t.Errorf("blocks = %#v, want fresh body", f.Blocks)
	}
}

func TestBodyForOtherSlideIsIgnored(t *testing.T) {
	c, _, _ := newReady(t, Options{})
	fetch, _ := findFetch(c.Handle(NextPressed{}))
	c.Handle(NextPressed{})

	c.Handle(BodyFetched{SlideID: 2, Seq: fetch.Seq, Text: "late"})
	f := c.Frame()
	if f.SlideID != 3 || format.Content(f.Blocks[0]) != "سطر واحد" {
		t.Errorf("late body leaked into slide %d: %#v", f.SlideID, f.Blocks)
	}
}

func TestBodyFetchFailureShowsPlaceholder(t *testing.T) {
	c, _, _ := newReady(t, Options{})
	fetch, _ := findFetch(c.Handle(NextPressed{}))

	err := &loader.BodyError{SlideID: 2, Path: "bodies/2.txt", Err: errors.New("404")}
	c.Handle(BodyFetched{SlideID: 2, Seq: fetch.Seq, Err: err})

	f := c.Frame()
	if len(f.Blocks) != 1 || f.Blocks[0].Kind() != format.KindPlaceholder {
		t.Errorf("Blocks = %#v, want placeholder", f.Blocks)
	}
	if f.Notice == "" {
		t.Error("expected a notice for the failed fetch")
	}
}

func TestTerminalNavigationIsNoop(t *testing.T) {
	c, loc, _ := newReady(t, Options{})

	if effects := c.Handle(PrevPressed{}); effects != nil {
		t.Errorf("Prev at start returned effects %#v", effects)
	}
	c.Handle(LastPressed{})
	if effects := c.Handle(NextPressed{}); effects != nil {
		t.Errorf("Next at end returned effects %#v", effects)
	}
	if loc.Fragment() != "#slide-3" {
		t.Errorf("location = %q", loc.Fragment())
	}
	c.Handle(FirstPressed{})
	if c.Index() != 0 {
		t.Errorf("Index() after FirstPressed = %d", c.Index())
	}
}

func TestMenuSelection(t *testing.T) {
	c, loc, _ := newReady(t, Options{})
	c.Handle(Resized{Width: 80, Height: 24})
	c.Handle(SidebarToggled{})
	if !c.Frame().SidebarOpen {
		t.Fatal("sidebar should open on toggle")
	}

	c.Handle(MenuSelected{Index: 2})
	f := c.Frame()
	if f.SlideID != 3 || loc.Fragment() != "#slide-3" {
		t.Errorf("slide %d, location %q", f.SlideID, loc.Fragment())
	}
	if f.SidebarOpen {
		t.Error("narrow sidebar should close after selection")
	}

	if effects := c.Handle(MenuSelected{Index: 7}); effects != nil {
		t.Errorf("out-of-range selection returned %#v", effects)
	}
}

func TestWideResizeClosesOverlay(t *testing.T) {
	c, _, _ := newReady(t, Options{NarrowWidth: 60})
	c.Handle(Resized{Width: 50})
	c.Handle(SidebarToggled{})
	if !c.Frame().SidebarOpen {
		t.Fatal("overlay should be open")
	}

	c.Handle(Resized{Width: 120})
	f := c.Frame()
	if f.SidebarOpen {
		t.Error("overlay should close on a wide resize")
	}

	c.Handle(SidebarToggled{})
	if !c.Frame().SidebarDocked {
		t.Error("toggle on a wide terminal should dock the menu")
	}
}

func TestFragmentChanged(t *testing.T) {
	c, loc, _ := newReady(t, Options{})

	effects := c.Handle(FragmentChanged{Fragment: "#slide-2"})
	if _, ok := findFetch(effects); !ok {
		t.Errorf("effects = %#v, want FetchBody", effects)
	}
	if c.Index() != 1 {
		t.Errorf("Index() = %d, want 1", c.Index())
	}
	if loc.Fragment() != "#slide-1" {
		t.Errorf("following a fragment must not rewrite the location, got %q", loc.Fragment())
	}

	if effects := c.Handle(FragmentChanged{Fragment: "#slide-2"}); effects != nil {
		t.Errorf("same fragment returned %#v", effects)
	}

	c.Handle(FragmentChanged{Fragment: "#bogus"})
	if c.Index() != 0 {
		t.Errorf("unknown fragment should select index 0, got %d", c.Index())
	}
	if loc.Fragment() != "#slide-1" {
		t.Errorf("unknown fragment should be rewritten, location = %q", loc.Fragment())
	}
}

func TestFragmentChangedUnknownIDRewritesLocation(t *testing.T) {
	c, loc, _ := newReady(t, Options{})
	c.Handle(NextPressed{})

	// An external edit names a slide that does not exist.
	_ = loc.SetFragment("#slide-99")
	effects := c.Handle(FragmentChanged{Fragment: "#slide-99"})
	if c.Index() != 0 {
		t.Errorf("Index() = %d, want 0", c.Index())
	}
	if loc.Fragment() != "#slide-1" {
		t.Errorf("location = %q, want #slide-1", loc.Fragment())
	}
	if len(effects) == 0 {
		t.Fatal("moving to the first slide should return effects")
	}
	if w, ok := effects[0].(WriteFragment); !ok || w.Fragment != "#slide-1" {
		t.Errorf("effects[0] = %#v, want WriteFragment #slide-1", effects[0])
	}

	// Already on slide 1: only the address bar is corrected.
	_ = loc.SetFragment("#slide-1x")
	effects = c.Handle(FragmentChanged{Fragment: "#slide-1x"})
	if len(effects) != 1 || loc.Fragment() != "#slide-1" {
		t.Errorf("effects = %#v, location = %q", effects, loc.Fragment())
	}
}

func TestImageEvents(t *testing.T) {
	c, _, _ := newReady(t, Options{ShowImages: true})

	c.Handle(ImageFailed{SlideID: 1, Ref: "img/1.png", Err: loader.ErrImageLoad})
	if f := c.Frame(); !f.Image.Hidden || f.Notice == "" {
		t.Errorf("image should be hidden with a notice: %+v", f.Image)
	}

	c.Handle(ImageLoaded{SlideID: 1})
	if c.Frame().Image.Hidden {
		t.Error("image should show after load")
	}

	c.Handle(ImageFailed{SlideID: 2, Err: errors.New("other slide")})
	if c.Frame().Image.Hidden {
		t.Error("failure for another slide must be ignored")
	}
}

func TestSlideWithoutImageIsHidden(t *testing.T) {
	c, _, _ := newReady(t, Options{ShowImages: true})
	effects := c.Handle(LastPressed{})
	for _, e := range effects {
		if _, ok := e.(LoadImage); ok {
			t.Error("no LoadImage expected for a slide without image")
		}
	}
	if !c.Frame().Image.Hidden {
		t.Error("image slot should be hidden")
	}
}

func TestDeckFailures(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		wantPhase Phase
		wantError string
	}{
		{
			name:      "empty deck",
			event:     DeckLoaded{Deck: &model.Deck{}},
			wantPhase: PhaseEmpty,
			wantError: DefaultEmptyCatalog,
		},
		{
			name:      "empty catalog error",
			event:     DeckFailed{Err: fmt.Errorf("x: %w", loader.ErrEmptyCatalog)},
			wantPhase: PhaseEmpty,
			wantError: DefaultEmptyCatalog,
		},
		{
			name:      "load failure",
			event:     DeckFailed{Err: &loader.ManifestError{Source: "s", Err: errors.New("connection refused")}},
			wantPhase: PhaseFailed,
			wantError: DefaultLoadFailure + ": connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Options{})
			c.Handle(tt.event)
			f := c.Frame()
			if f.Phase != tt.wantPhase || f.Error != tt.wantError {
				t.Errorf("Phase, Error = %v, %q; want %v, %q", f.Phase, f.Error, tt.wantPhase, tt.wantError)
			}
			if effects := c.Handle(NextPressed{}); effects != nil {
				t.Errorf("navigation without a deck returned %#v", effects)
			}
		})
	}
}

func TestPostProcessFailedSetsNotice(t *testing.T) {
	c, _, _ := newReady(t, Options{})
	c.Handle(PostProcessFailed{SlideID: 1, Err: errors.New("bad markup")})
	if f := c.Frame(); f.Notice == "" {
		t.Error("expected notice")
	}
	c.Handle(NextPressed{})
	if f := c.Frame(); f.Notice != "" {
		t.Errorf("notice should clear on navigation, got %q", f.Notice)
	}
}

func TestBuildMenu(t *testing.T) {
	menu := BuildMenu(testDeck(t))
	if len(menu) != 3 {
		t.Fatalf("len = %d, want 3", len(menu))
	}
	for i, e := range menu {
		if e.Index != i || e.Fragment != nav.FragmentFor(e.ID) || e.Active {
			t.Errorf("entry %d = %+v", i, e)
		}
	}
	if BuildMenu(nil) == nil || len(BuildMenu(nil)) != 0 {
		t.Error("BuildMenu(nil) should be empty")
	}
}
