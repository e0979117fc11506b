// Package viewer holds the presentation-independent state of the slide
// viewer.
//
// All state changes go through Controller.Handle, which consumes one Event
// and returns the Effects (fetches, location writes) the surface has to run.
// The surface draws whatever Controller.Frame returns. Fetch results come
// back as events and are dropped when they answer an outdated request.
package viewer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vanderheijden86/slideview/pkg/debug"
	"github.com/vanderheijden86/slideview/pkg/format"
	"github.com/vanderheijden86/slideview/pkg/model"
	"github.com/vanderheijden86/slideview/pkg/nav"
)

// Phase is the lifecycle stage of the controller.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseEmpty
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseEmpty:
		return "empty"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrPostProcess marks a failed markup pass over a rendered body.
var ErrPostProcess = errors.New("post-processing failed")

// Options configures a Controller.
type Options struct {
	Labels   format.Labels
	Messages Messages

	// Location receives the fragment on every navigation. If nil, an
	// in-memory location is used.
	Location nav.Location

	// NarrowWidth is the width at or below which the sidebar is an
	// overlay. If 0, DefaultNarrowWidth is used.
	NarrowWidth int

	// SidebarDocked shows the menu beside the slide on wide terminals.
	SidebarDocked bool

	// ShowImages enables LoadImage effects.
	ShowImages bool
}

// Controller is the single owner of viewer state. It is not safe for
// concurrent use; the surface calls it from its event loop only.
type Controller struct {
	opts Options

	phase   Phase
	errText string
	deck    *model.Deck
	nav     *nav.Navigator
	menu    []MenuEntry

	// body of the slide bodySlideID; valid when !bodyPending
	body        string
	bodySlideID int
	bodyPending bool
	seq         int

	imageHidden bool

	overlayOpen bool
	docked      bool
	width       int
	height      int

	notice string
}

// New returns a controller in the loading phase.
func New(opts Options) *Controller {
	opts.Labels = opts.Labels.WithDefaults()
	opts.Messages = opts.Messages.WithDefaults()
	if opts.NarrowWidth <= 0 {
		opts.NarrowWidth = DefaultNarrowWidth
	}
	if opts.Location == nil {
		opts.Location = &nav.MemoryLocation{}
	}
	return &Controller{opts: opts, docked: opts.SidebarDocked}
}

// Phase returns the current lifecycle stage.
func (c *Controller) Phase() Phase { return c.phase }

// Deck returns the loaded deck, or nil.
func (c *Controller) Deck() *model.Deck { return c.deck }

// Index returns the cursor position.
func (c *Controller) Index() int {
	if c.nav == nil {
		return 0
	}
	return c.nav.Index()
}

// Current returns the slide under the cursor.
func (c *Controller) Current() (model.Slide, bool) {
	if c.nav == nil {
		return model.Slide{}, false
	}
	return c.nav.Current()
}

// Fragment returns the fragment addressing the current slide.
func (c *Controller) Fragment() string {
	s, ok := c.Current()
	if !ok {
		return ""
	}
	return nav.FragmentFor(s.ID)
}

// Handle applies one event and returns the effects it causes.
func (c *Controller) Handle(ev Event) []Effect {
	switch e := ev.(type) {
	case DeckLoaded:
		return c.loaded(e.Deck)

	case DeckFailed:
		c.deck, c.nav, c.menu = nil, nil, nil
		if e.Err == nil {
			e.Err = errors.New("unknown error")
		}
		c.fail(e.Err)
		return nil

	case NextPressed:
		return c.move(func(n *nav.Navigator) bool { return n.Next() })
	case PrevPressed:
		return c.move(func(n *nav.Navigator) bool { return n.Previous() })
	case FirstPressed:
		return c.move(func(n *nav.Navigator) bool { return n.Index() != 0 && n.GoToIndex(0) })
	case LastPressed:
		return c.move(func(n *nav.Navigator) bool {
			last := n.Len() - 1
			return n.Index() != last && n.GoToIndex(last)
		})

	case MenuSelected:
		if c.narrow() {
			c.overlayOpen = false
		}
		return c.move(func(n *nav.Navigator) bool { return n.GoToIndex(e.Index) })

	case FragmentChanged:
		if c.phase != PhaseReady {
			return nil
		}
		idx := c.nav.ResolveFromFragment(e.Fragment)
		slide, _ := c.deck.At(idx)
		if nav.FragmentFor(slide.ID) == strings.TrimSpace(e.Fragment) {
			if !c.nav.Sync(e.Fragment) {
				return nil
			}
			debug.Log("viewer: fragment %q -> index %d", e.Fragment, c.nav.Index())
			return c.render()
		}
		// Unknown or non-canonical fragments are rewritten to the slide shown.
		moved := idx != c.nav.Index()
		c.nav.GoToIndex(idx)
		debug.Log("viewer: fragment %q rewritten to %s", e.Fragment, c.Fragment())
		if !moved {
			return []Effect{WriteFragment{Fragment: c.Fragment(), Err: c.nav.LastWriteError()}}
		}
		return c.published()

	case BodyFetched:
		c.bodyFetched(e)
		return nil

	case ImageLoaded:
		if c.isCurrent(e.SlideID) {
			c.imageHidden = false
		}
		return nil

	case ImageFailed:
		if c.isCurrent(e.SlideID) {
			c.imageHidden = true
			c.setNotice(fmt.Sprintf("image %s: %v", e.Ref, e.Err))
		}
		return nil

	case Resized:
		c.width, c.height = e.Width, e.Height
		if !c.narrow() {
			c.overlayOpen = false
		}
		return nil

	case SidebarToggled:
		if c.narrow() {
			c.overlayOpen = !c.overlayOpen
		} else {
			c.docked = !c.docked
		}
		return nil

	case SidebarClosed:
		c.overlayOpen = false
		return nil

	case PostProcessFailed:
		if c.isCurrent(e.SlideID) {
			c.setNotice(fmt.Errorf("%w: %v", ErrPostProcess, e.Err).Error())
		}
		return nil
	}
	return nil
}

func (c *Controller) loaded(deck *model.Deck) []Effect {
	if deck.Empty() {
		c.deck, c.nav, c.menu = nil, nil, nil
		c.phase = PhaseEmpty
		c.errText = c.opts.Messages.EmptyCatalog
		return nil
	}

	c.deck = deck
	c.nav = nav.New(deck, c.opts.Location)
	c.menu = BuildMenu(deck)
	c.phase = PhaseReady
	c.errText = ""
	start := c.nav.Init()
	debug.Log("viewer: deck ready, %d slides, start index %d", deck.Len(), start)
	// The start slide is published too, normalising an unknown fragment.
	c.nav.GoToIndex(start)
	return c.published()
}

func (c *Controller) fail(err error) {
	c.phase = PhaseFailed
	c.errText = c.opts.Messages.LoadError(err)
	if c.errText == c.opts.Messages.EmptyCatalog {
		c.phase = PhaseEmpty
	}
	debug.Log("viewer: load failed: %v", err)
}

func (c *Controller) move(step func(*nav.Navigator) bool) []Effect {
	if c.phase != PhaseReady || !step(c.nav) {
		return nil
	}
	return c.published()
}

// published renders the slide the navigator just moved to, reporting the
// location write first.
func (c *Controller) published() []Effect {
	write := WriteFragment{Fragment: c.Fragment(), Err: c.nav.LastWriteError()}
	effects := append([]Effect{write}, c.render()...)
	if write.Err != nil {
		c.setNotice(write.Err.Error())
	}
	return effects
}

// render prepares state for the slide under the cursor and requests what
// it needs.
func (c *Controller) render() []Effect {
	slide, ok := c.nav.Current()
	if !ok {
		return nil
	}

	var effects []Effect
	c.notice = ""
	c.imageHidden = slide.Image == ""
	if c.opts.ShowImages && slide.Image != "" {
		effects = append(effects, LoadImage{SlideID: slide.ID, Ref: slide.Image})
	}

	c.bodySlideID = slide.ID
	if slide.NeedsFetch() {
		c.seq++
		c.body = ""
		c.bodyPending = true
		effects = append(effects, FetchBody{SlideID: slide.ID, Seq: c.seq, Slide: slide})
	} else {
		c.body = slide.Text
		c.bodyPending = false
	}
	return effects
}

func (c *Controller) bodyFetched(e BodyFetched) {
	if !c.bodyPending || e.SlideID != c.bodySlideID || e.Seq != c.seq {
		debug.Log("viewer: dropping stale body for slide %d (seq %d, want %d/%d)", e.SlideID, e.Seq, c.bodySlideID, c.seq)
		return
	}
	c.bodyPending = false
	if e.Err != nil {
		c.body = ""
		c.setNotice(e.Err.Error())
		return
	}
	c.body = e.Text
}

func (c *Controller) isCurrent(id int) bool {
	s, ok := c.Current()
	return ok && s.ID == id
}

// narrow treats an unknown width as wide.
func (c *Controller) narrow() bool {
	return c.width > 0 && c.width <= c.opts.NarrowWidth
}

func (c *Controller) setNotice(msg string) {
	c.notice = msg
	debug.Log("viewer: %s", msg)
}
