package viewer

import "github.com/vanderheijden86/slideview/pkg/model"

// Event is an input to Controller.Handle.
type Event interface{ isEvent() }

type (
	// DeckLoaded carries the loaded, sorted deck.
	DeckLoaded struct{ Deck *model.Deck }
	// DeckFailed reports that the manifest could not be loaded.
	DeckFailed struct{ Err error }

	NextPressed  struct{}
	PrevPressed  struct{}
	FirstPressed struct{}
	LastPressed  struct{}

	// MenuSelected is a click on the menu entry at Index.
	MenuSelected struct{ Index int }
	// FragmentChanged is an external edit of the location.
	FragmentChanged struct{ Fragment string }

	// BodyFetched answers a FetchBody effect.
	BodyFetched struct {
		SlideID int
		Seq     int
		Text    string
		Err     error
	}

	ImageLoaded struct{ SlideID int }
	ImageFailed struct {
		SlideID int
		Ref     string
		Err     error
	}

	Resized struct{ Width, Height int }

	SidebarToggled struct{}
	SidebarClosed  struct{}

	// PostProcessFailed reports a markup failure; the raw text stays visible.
	PostProcessFailed struct {
		SlideID int
		Err     error
	}
)

func (DeckLoaded) isEvent()        {}
func (DeckFailed) isEvent()        {}
func (NextPressed) isEvent()       {}
func (PrevPressed) isEvent()       {}
func (FirstPressed) isEvent()      {}
func (LastPressed) isEvent()       {}
func (MenuSelected) isEvent()      {}
func (FragmentChanged) isEvent()   {}
func (BodyFetched) isEvent()       {}
func (ImageLoaded) isEvent()       {}
func (ImageFailed) isEvent()       {}
func (Resized) isEvent()           {}
func (SidebarToggled) isEvent()    {}
func (SidebarClosed) isEvent()     {}
func (PostProcessFailed) isEvent() {}

// Effect is work the surface must perform on behalf of the controller.
type Effect interface{ isEffect() }

type (
	// FetchBody asks for the lazy body of Slide; the answer is a
	// BodyFetched with the same SlideID and Seq.
	FetchBody struct {
		SlideID int
		Seq     int
		Slide   model.Slide
	}

	// LoadImage asks for the slide image; the answer is ImageLoaded or
	// ImageFailed.
	LoadImage struct {
		SlideID int
		Ref     string
	}

	// WriteFragment reports the fragment the navigator just published.
	// Err is set when the location could not be written.
	WriteFragment struct {
		Fragment string
		Err      error
	}
)

func (FetchBody) isEffect()     {}
func (LoadImage) isEffect()     {}
func (WriteFragment) isEffect() {}
