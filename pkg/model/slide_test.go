package model

import (
	"strings"
	"testing"
)

func TestNewDeckSortsByID(t *testing.T) {
	deck, err := NewDeck("slides.json", []Slide{
		{ID: 2, Title: "two"},
		{ID: 1, Title: "one"},
		{ID: 3, Title: "three"},
	})
	if err != nil {
		t.Fatalf("NewDeck: %v", err)
	}

	got := deck.IDs()
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestNewDeckRejectsDuplicateIDs(t *testing.T) {
	_, err := NewDeck("", []Slide{{ID: 1}, {ID: 1}})
	if err == nil {
		t.Fatal("expected error for duplicate ids")
	}
	if !strings.Contains(err.Error(), "duplicate slide id 1") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeckLookup(t *testing.T) {
	deck, err := NewDeck("", []Slide{{ID: 10, Title: "a"}, {ID: 20, Title: "b"}})
	if err != nil {
		t.Fatal(err)
	}

	if idx, ok := deck.IndexOf(20); !ok || idx != 1 {
		t.Errorf("IndexOf(20) = %d, %v; want 1, true", idx, ok)
	}
	if _, ok := deck.IndexOf(99); ok {
		t.Error("IndexOf(99) should not be found")
	}
	if s, ok := deck.ByID(10); !ok || s.Title != "a" {
		t.Errorf("ByID(10) = %+v, %v", s, ok)
	}
	if _, ok := deck.At(-1); ok {
		t.Error("At(-1) should fail")
	}
	if _, ok := deck.At(2); ok {
		t.Error("At(2) should fail")
	}
}

func TestNilDeck(t *testing.T) {
	var d *Deck
	if d.Len() != 0 || !d.Empty() {
		t.Error("nil deck should be empty")
	}
	if d.Slides() != nil {
		t.Error("nil deck Slides() should be nil")
	}
}

func TestSlideNeedsFetch(t *testing.T) {
	tests := []struct {
		slide Slide
		want  bool
	}{
		{Slide{Text: "inline"}, false},
		{Slide{Text: "inline", TextPath: "body.txt"}, false},
		{Slide{TextPath: "body.txt"}, true},
		{Slide{TextPath: "   "}, false},
		{Slide{}, false},
	}
	for _, tt := range tests {
		if got := tt.slide.NeedsFetch(); got != tt.want {
			t.Errorf("NeedsFetch(%+v) = %v, want %v", tt.slide, got, tt.want)
		}
	}
}
