// Package ui is the terminal surface of the slide viewer: a Bubble Tea
// model that feeds key presses, fetch results and location edits into a
// viewer.Controller and draws its frames.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/slideview/pkg/debug"
	"github.com/vanderheijden86/slideview/pkg/format"
	"github.com/vanderheijden86/slideview/pkg/imgpreview"
	"github.com/vanderheijden86/slideview/pkg/loader"
	"github.com/vanderheijden86/slideview/pkg/location"
	"github.com/vanderheijden86/slideview/pkg/model"
	"github.com/vanderheijden86/slideview/pkg/nav"
	"github.com/vanderheijden86/slideview/pkg/viewer"
)

// headerHeight and footerHeight are the fixed rows around the viewport.
const (
	headerHeight = 2
	footerHeight = 3
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// DeckLoadedMsg carries the result of LoadDeckCmd.
type DeckLoadedMsg struct {
	Deck *model.Deck
	Err  error
}

// BodyFetchedMsg carries the result of FetchBodyCmd.
type BodyFetchedMsg struct {
	SlideID int
	Seq     int
	Text    string
	Err     error
}

// ImageMsg carries a decoded slide image or the reason it is missing.
type ImageMsg struct {
	SlideID int
	Ref     string
	Preview *imgpreview.Preview
	Err     error
}

// LocationChangedMsg is sent when the location file changed on disk.
type LocationChangedMsg struct{}

// LoadDeckCmd loads the manifest at src.
func LoadDeckCmd(ld *loader.Loader, src string) tea.Cmd {
	return func() tea.Msg {
		deck, err := ld.Load(context.Background(), src)
		return DeckLoadedMsg{Deck: deck, Err: err}
	}
}

// FetchBodyCmd fetches a lazy slide body.
func FetchBodyCmd(ld *loader.Loader, deck *model.Deck, req viewer.FetchBody) tea.Cmd {
	return func() tea.Msg {
		text, err := ld.FetchBody(context.Background(), deck, req.Slide)
		return BodyFetchedMsg{SlideID: req.SlideID, Seq: req.Seq, Text: text, Err: err}
	}
}

// LoadImageCmd fetches and decodes a slide image.
func LoadImageCmd(ld *loader.Loader, deck *model.Deck, req viewer.LoadImage) tea.Cmd {
	return func() tea.Msg {
		return loadImage(context.Background(), ld, deck, req)
	}
}

func loadImage(ctx context.Context, ld *loader.Loader, deck *model.Deck, req viewer.LoadImage) ImageMsg {
	data, err := ld.FetchImage(ctx, deck, req.Ref)
	if err != nil {
		return ImageMsg{SlideID: req.SlideID, Ref: req.Ref, Err: err}
	}
	p, err := imgpreview.Decode(data)
	if err != nil {
		err = &loader.ImageError{Ref: req.Ref, Err: err}
	}
	return ImageMsg{SlideID: req.SlideID, Ref: req.Ref, Preview: p, Err: err}
}

// WatchLocationCmd waits for the next change of the location file.
func WatchLocationCmd(changed <-chan struct{}) tea.Cmd {
	if changed == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changed; !ok {
			return nil
		}
		return LocationChangedMsg{}
	}
}

// Options configures the interactive model.
type Options struct {
	// Source is the manifest path, directory or URL.
	Source string
	Loader *loader.Loader
	// Location is the on-disk address bar. If nil, the position is kept in
	// memory only.
	Location *location.File
	Debounce time.Duration

	Labels      format.Labels
	Messages    viewer.Messages
	NarrowWidth int

	SidebarWidth  int
	SidebarDocked bool
	ShowImages    bool

	// Markup enables math substitution and Glamour rendering. MarkupStyle
	// is a Glamour standard style name; empty means auto.
	Markup      bool
	MarkupStyle string

	Theme *Theme
}

// Model is the Bubble Tea model of the viewer.
type Model struct {
	opts   Options
	theme  Theme
	ctrl   *viewer.Controller
	loader *loader.Loader
	deck   *model.Deck

	viewport viewport.Model
	spinner  spinner.Model
	markup   *MarkupProcessor
	images   map[int]*imgpreview.Preview

	menuFocus  bool
	menuCursor int
	showHelp   bool

	changed     <-chan struct{}
	shownSlide  int
	postErrSeen int

	width  int
	height int
	status string
}

// NewModel creates the model. The deck is loaded by Init.
func NewModel(opts Options) Model {
	theme := DefaultTheme(nil)
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	ld := opts.Loader
	if ld == nil {
		ld = loader.New(loader.Options{})
	}
	if opts.SidebarWidth <= 0 {
		opts.SidebarWidth = DefaultSidebarWidth
	}

	var loc nav.Location
	if opts.Location != nil {
		loc = opts.Location
	}
	ctrl := viewer.New(viewer.Options{
		Labels:        opts.Labels,
		Messages:      opts.Messages,
		Location:      loc,
		NarrowWidth:   opts.NarrowWidth,
		SidebarDocked: opts.SidebarDocked,
		ShowImages:    opts.ShowImages,
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Renderer.NewStyle().Foreground(theme.Primary)

	m := Model{
		opts:        opts,
		theme:       theme,
		ctrl:        ctrl,
		loader:      ld,
		viewport:    viewport.New(80, 20),
		spinner:     sp,
		images:      make(map[int]*imgpreview.Preview),
		menuCursor:  -1,
		shownSlide:  -1,
		postErrSeen: -1,
	}
	if opts.Markup {
		m.markup = NewMarkupProcessor(80, opts.MarkupStyle)
	}
	if opts.Location != nil {
		changed, err := opts.Location.Watch(opts.Debounce)
		if err != nil {
			debug.Log("ui: location watch failed: %v", err)
		}
		m.changed = changed
	}
	return m
}

// Controller exposes the underlying controller.
func (m Model) Controller() *viewer.Controller { return m.ctrl }

// Init loads the deck and waits for location edits.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadDeckCmd(m.loader, m.opts.Source),
		m.spinner.Tick,
		WatchLocationCmd(m.changed),
	)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ctrl.Handle(viewer.Resized{Width: msg.Width, Height: msg.Height})
		m.layout()

	case DeckLoadedMsg:
		if msg.Err != nil {
			m.deck = nil
			m.ctrl.Handle(viewer.DeckFailed{Err: msg.Err})
			break
		}
		m.deck = msg.Deck
		m.images = make(map[int]*imgpreview.Preview)
		m.shownSlide = -1
		cmds = append(cmds, m.run(m.ctrl.Handle(viewer.DeckLoaded{Deck: msg.Deck}))...)

	case BodyFetchedMsg:
		m.ctrl.Handle(viewer.BodyFetched{SlideID: msg.SlideID, Seq: msg.Seq, Text: msg.Text, Err: msg.Err})

	case ImageMsg:
		if msg.Err != nil {
			m.ctrl.Handle(viewer.ImageFailed{SlideID: msg.SlideID, Ref: msg.Ref, Err: msg.Err})
			break
		}
		m.images[msg.SlideID] = msg.Preview
		m.ctrl.Handle(viewer.ImageLoaded{SlideID: msg.SlideID})

	case LocationChangedMsg:
		if m.opts.Location != nil {
			frag, changed, err := m.opts.Location.Reload()
			switch {
			case err != nil:
				debug.Log("ui: reading location: %v", err)
			case changed:
				cmds = append(cmds, m.run(m.ctrl.Handle(viewer.FragmentChanged{Fragment: frag}))...)
			}
		}
		cmds = append(cmds, WatchLocationCmd(m.changed))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmd, quit := m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
		cmds = append(cmds, cmd)
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return nil, true
	}
	m.status = ""

	if m.showHelp {
		if key == "?" || key == "esc" {
			m.showHelp = false
		}
		return nil, false
	}
	if key == "?" {
		m.showHelp = true
		return nil, false
	}

	frame := m.ctrl.Frame()
	if m.menuFocus && frame.ShowMenu() {
		switch key {
		case "j", "down":
			m.menuCursor = clamp(m.menuCursor+1, 0, len(frame.Menu)-1)
			return nil, false
		case "k", "up":
			m.menuCursor = clamp(m.menuCursor-1, 0, len(frame.Menu)-1)
			return nil, false
		case "enter":
			cmds := m.run(m.ctrl.Handle(viewer.MenuSelected{Index: m.menuCursor}))
			if !m.ctrl.Frame().SidebarOpen {
				m.blurMenu()
			}
			return tea.Batch(cmds...), false
		case "esc", "tab":
			if frame.SidebarOpen {
				m.ctrl.Handle(viewer.SidebarClosed{})
			}
			m.blurMenu()
			return nil, false
		}
	}

	var ev viewer.Event
	switch key {
	case "n", "l", "right", " ", "pgdown":
		ev = viewer.NextPressed{}
	case "p", "h", "left", "pgup":
		ev = viewer.PrevPressed{}
	case "g", "home":
		ev = viewer.FirstPressed{}
	case "G", "end":
		ev = viewer.LastPressed{}
	case "m":
		m.ctrl.Handle(viewer.SidebarToggled{})
		if m.ctrl.Frame().ShowMenu() {
			m.focusMenu()
		} else {
			m.blurMenu()
		}
		m.layout()
		return nil, false
	case "tab":
		if frame.ShowMenu() {
			m.focusMenu()
		}
		return nil, false
	case "esc":
		if frame.SidebarOpen {
			m.ctrl.Handle(viewer.SidebarClosed{})
		}
		return nil, false
	case "y":
		if frame.Fragment == "" {
			return nil, false
		}
		if err := writeClipboard(frame.Fragment); err != nil {
			m.status = fmt.Sprintf("clipboard: %v", err)
		} else {
			m.status = "copied " + frame.Fragment
		}
		return nil, false
	case "r":
		return LoadDeckCmd(m.loader, m.opts.Source), false
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd, false
	}
	return tea.Batch(m.run(m.ctrl.Handle(ev))...), false
}

func (m *Model) focusMenu() {
	m.menuFocus = true
	m.menuCursor = m.ctrl.Index()
}

func (m *Model) blurMenu() {
	m.menuFocus = false
	m.menuCursor = -1
}

// run turns controller effects into commands.
func (m *Model) run(effects []viewer.Effect) []tea.Cmd {
	var cmds []tea.Cmd
	for _, eff := range effects {
		switch e := eff.(type) {
		case viewer.FetchBody:
			cmds = append(cmds, FetchBodyCmd(m.loader, m.deck, e))
		case viewer.LoadImage:
			if p, ok := m.images[e.SlideID]; ok {
				cmds = append(cmds, func() tea.Msg {
					return ImageMsg{SlideID: e.SlideID, Ref: e.Ref, Preview: p}
				})
				continue
			}
			cmds = append(cmds, LoadImageCmd(m.loader, m.deck, e))
		case viewer.WriteFragment:
			if e.Err != nil {
				debug.Log("ui: writing location %s: %v", e.Fragment, e.Err)
			}
		}
	}
	return cmds
}

// layout sizes the viewport and the markup wrap width to the window.
func (m *Model) layout() {
	f := m.ctrl.Frame()
	opts := m.renderOptions(f)
	m.viewport.Width = opts.contentWidth(f)
	m.viewport.Height = max(m.height-headerHeight-footerHeight-2, 3)
	if m.markup != nil {
		m.markup.SetWidth(m.viewport.Width - 2)
	}
}

// refresh re-renders the slide into the viewport.
func (m *Model) refresh() {
	f := m.ctrl.Frame()
	if f.Phase != viewer.PhaseReady {
		return
	}
	m.layout()
	if f.SlideID != m.shownSlide {
		m.shownSlide = f.SlideID
		m.postErrSeen = -1
		m.viewport.GotoTop()
	}
	content, err := renderSlide(f, m.renderOptions(f))
	if err != nil && m.postErrSeen != f.SlideID {
		m.postErrSeen = f.SlideID
		m.ctrl.Handle(viewer.PostProcessFailed{SlideID: f.SlideID, Err: err})
		f = m.ctrl.Frame()
		content, _ = renderSlide(f, m.renderOptions(f))
	}
	m.viewport.SetContent(content)
}

func (m Model) renderOptions(f viewer.Frame) RenderOptions {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return RenderOptions{
		Theme:        m.theme,
		Width:        width,
		Markup:       m.markup,
		Preview:      m.images[f.SlideID],
		ImageRows:    max(m.height/3, 4),
		SidebarWidth: m.opts.SidebarWidth,
		MenuCursor:   m.menuCursor,
		Spinner:      m.spinner.View(),
		Hints:        true,
	}
}

// View draws the current frame.
func (m Model) View() string {
	f := m.ctrl.Frame()
	opts := m.renderOptions(f)
	if f.Phase != viewer.PhaseReady {
		return renderStatusScreen(f, opts)
	}
	if m.showHelp {
		help := renderHelp(m.theme, opts.width(), m.menuFocus)
		return lipgloss.Place(opts.width(), max(m.height, lipgloss.Height(help)), lipgloss.Center, lipgloss.Center, help)
	}

	var b strings.Builder
	b.WriteString(renderHeader(f, opts))
	b.WriteString("\n")

	menuRows := m.viewport.Height - 2
	switch {
	case f.SidebarOpen:
		b.WriteString(renderMenu(f, opts, menuRows))
	case f.SidebarDocked:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, renderMenu(f, opts, menuRows), "  ", m.viewport.View()))
	default:
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(renderFooter(f, opts))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Status.Render(m.status))
	}
	return b.String()
}
