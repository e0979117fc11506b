package viewer

import (
	"fmt"

	"github.com/vanderheijden86/slideview/pkg/format"
)

// ImageView describes the slide image slot.
type ImageView struct {
	Ref    string
	Alt    string
	Hidden bool
}

// Frame is everything a surface needs to draw one screen.
type Frame struct {
	Phase Phase

	SlideID  int
	Index    int
	Total    int
	Title    string
	Fragment string
	Image    ImageView

	// Blocks is the formatted body; nil while BodyPending.
	Blocks      []format.Block
	BodyPending bool

	// Status is the 1-based "<pos> / <total>" indicator.
	Status string
	Menu   []MenuEntry

	PrevEnabled bool
	NextEnabled bool

	// Error replaces the slide when the deck is empty or failed to load.
	Error string
	// Notice is the latest non-fatal problem on the current slide.
	Notice string

	SidebarOpen   bool
	SidebarDocked bool
	Narrow        bool
	Width         int
	Height        int
}

// ShowMenu reports whether the menu is visible in either form.
func (f Frame) ShowMenu() bool {
	return f.SidebarOpen || f.SidebarDocked
}

// Frame projects the current state. Blocks are formatted on every call.
func (c *Controller) Frame() Frame {
	f := Frame{
		Phase:         c.phase,
		Error:         c.errText,
		Notice:        c.notice,
		SidebarOpen:   c.overlayOpen && c.narrow(),
		SidebarDocked: c.docked && !c.narrow(),
		Narrow:        c.narrow(),
		Width:         c.width,
		Height:        c.height,
	}
	if c.phase != PhaseReady {
		return f
	}

	slide, ok := c.nav.Current()
	if !ok {
		return f
	}
	idx, total := c.nav.Index(), c.nav.Len()

	f.SlideID = slide.ID
	f.Index = idx
	f.Total = total
	f.Title = slide.Title
	f.Fragment = c.Fragment()
	f.Image = ImageView{
		Ref:    slide.Image,
		Alt:    c.opts.Messages.AltText(slide.ID),
		Hidden: c.imageHidden,
	}
	f.Status = fmt.Sprintf("%d / %d", idx+1, total)
	f.Menu = withActive(c.menu, idx)
	f.PrevEnabled = idx > 0
	f.NextEnabled = idx < total-1

	f.BodyPending = c.bodyPending
	if !c.bodyPending {
		f.Blocks = format.Format(c.body, c.opts.Labels)
	}
	return f
}

// Labels returns the formatter labels in use.
func (c *Controller) Labels() format.Labels { return c.opts.Labels }

// Messages returns the user-facing strings in use.
func (c *Controller) Messages() Messages { return c.opts.Messages }
