package ui

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/slideview/pkg/format"
	"github.com/vanderheijden86/slideview/pkg/loader"
	"github.com/vanderheijden86/slideview/pkg/model"
	"github.com/vanderheijden86/slideview/pkg/viewer"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		pos, total, width int
		wantFilled        int
	}{
		{1, 3, 10, 3},
		{3, 3, 10, 10},
		{1, 100, 10, 1},
		{0, 0, 10, 0},
	}
	for _, tt := range tests {
		filled, empty := progressBar(tt.pos, tt.total, tt.width)
		if got := strings.Count(filled, "█"); got != tt.wantFilled {
			t.Errorf("progressBar(%d, %d) filled = %d, want %d", tt.pos, tt.total, got, tt.wantFilled)
		}
		if tt.total > 0 && strings.Count(filled, "█")+strings.Count(empty, "░") != tt.width {
			t.Errorf("progressBar(%d, %d) width mismatch", tt.pos, tt.total)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 6, "hello…"},
		{"شرح الشريحة", 4, "شرح…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestReplaceTeX(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"no math here", "no math here"},
		{`area is $\pi r^2$`, "area is π r²"},
		{`\(a \leq b\)`, "a ≤ b"},
		{`$$\sum x_1$$`, "∑ x₁"},
		{`$\frac{1}{2}$`, "1/2"},
		{`\infty stays outside math`, `\infty stays outside math`},
	}
	for _, tt := range tests {
		if got := ReplaceTeX(tt.in); got != tt.want {
			t.Errorf("ReplaceTeX(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarkupProcessor(t *testing.T) {
	p := NewMarkupProcessor(40, "notty")
	out, err := p.Process(`**bold** and $\alpha$`)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(out, "bold") || !strings.Contains(out, "α") {
		t.Errorf("Process output = %q", out)
	}

	p.SetWidth(5)
	if p.Width() != 20 {
		t.Errorf("Width() = %d, want the minimum 20", p.Width())
	}
}

func TestRenderBlocks(t *testing.T) {
	th := *testTheme()
	blocks := []format.Block{
		format.TextBlock{Label: "النص:", Content: "quoted"},
		format.ExplanationBlock{Label: "الشرح:", Content: "explained"},
		format.Separator{},
		format.ExplanationBlock{Content: "bare line"},
		format.Placeholder{Text: "nothing"},
	}
	out, err := renderBlocks(th, blocks, 40, nil)
	if err != nil {
		t.Fatalf("renderBlocks: %v", err)
	}
	for _, want := range []string{"النص:", "quoted", "الشرح:", "explained", strings.Repeat("─", 40), "bare line", "nothing"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func readyController(t *testing.T, slides ...model.Slide) *viewer.Controller {
	t.Helper()
	c := viewer.New(viewer.Options{})
	c.Handle(viewer.DeckLoaded{Deck: testDeck(t, slides...)})
	return c
}

func TestRenderFrame(t *testing.T) {
	c := readyController(t)
	out, err := RenderFrame(c.Frame(), RenderOptions{Theme: *testTheme(), Width: 80, MenuCursor: -1})
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	for _, want := range []string{"Intro", "[1/3]", "1 / 3", "◀ prev", "next ▶", "first text"} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "copy link") {
		t.Error("hints should be off unless requested")
	}
}

func TestRenderFrameDockedMenu(t *testing.T) {
	c := viewer.New(viewer.Options{SidebarDocked: true})
	c.Handle(viewer.DeckLoaded{Deck: testDeck(t)})
	c.Handle(viewer.Resized{Width: 140, Height: 40})

	out, _ := RenderFrame(c.Frame(), RenderOptions{Theme: *testTheme(), Width: 140, MenuCursor: -1})
	for _, want := range []string{"▶ 1. Intro", "2. Middle", "3. End"} {
		if !strings.Contains(out, want) {
			t.Errorf("docked frame missing %q", want)
		}
	}
}

func TestRenderFrameStatusScreens(t *testing.T) {
	th := *testTheme()

	loading := viewer.New(viewer.Options{})
	if out, _ := RenderFrame(loading.Frame(), RenderOptions{Theme: th}); !strings.Contains(out, "Loading") {
		t.Errorf("loading frame = %q", out)
	}

	empty := viewer.New(viewer.Options{})
	deck, _ := model.NewDeck("slides.json", nil)
	empty.Handle(viewer.DeckLoaded{Deck: deck})
	if out, _ := RenderFrame(empty.Frame(), RenderOptions{Theme: th}); !strings.Contains(out, viewer.DefaultEmptyCatalog) {
		t.Errorf("empty frame = %q", out)
	}
}

func TestSettleResolvesBodiesAndImages(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "s1.txt"), []byte("from disk"), 0o644); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.White)
	f, err := os.Create(filepath.Join(dir, "s1.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	deck, err := model.NewDeck(filepath.Join(dir, "slides.json"), []model.Slide{
		{ID: 1, Title: "One", Image: "s1.png", TextPath: "s1.txt"},
	})
	if err != nil {
		t.Fatal(err)
	}
	c := viewer.New(viewer.Options{ShowImages: true})
	effects := c.Handle(viewer.DeckLoaded{Deck: deck})

	images := Settle(context.Background(), c, loader.New(loader.Options{}), deck, effects)
	if images[1] == nil {
		t.Error("image should be decoded")
	}
	frame := c.Frame()
	if frame.BodyPending {
		t.Fatal("body should be resolved")
	}
	if got := format.Content(frame.Blocks[0]); got != "from disk" {
		t.Errorf("body = %q, want from disk", got)
	}
}
