package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/slideview/pkg/config"
	"github.com/vanderheijden86/slideview/pkg/loader"
)

func writeDeck(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	manifest := `[
		{"id": 2, "title": "Second", "image": "", "textPath": "two.txt"},
		{"id": 1, "title": "Opening", "image": "", "text": "hello there"}
	]`
	if err := os.WriteFile(filepath.Join(dir, "slides.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "two.txt"), []byte("lazy body"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestNormalizeFragment(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"3", "#slide-3", true},
		{"slide-3", "#slide-3", true},
		{"#slide-12", "#slide-12", true},
		{" #slide-4 ", "#slide-4", true},
		{"slide-", "", false},
		{"intro", "", false},
	}
	for _, tt := range tests {
		got, ok := normalizeFragment(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("normalizeFragment(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPrintDeck(t *testing.T) {
	dir := writeDeck(t)
	cfg := config.DefaultConfig()
	cfg.UI.Markup = false
	ld := loader.New(loader.Options{WarningHandler: func(string) {}})

	var buf bytes.Buffer
	if err := printDeck(context.Background(), ld, dir, cfg, "#slide-2", 80, &buf); err != nil {
		t.Fatalf("printDeck: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Second", "[2/2]", "lazy body"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := printDeck(context.Background(), ld, dir, cfg, "", 80, &buf); err != nil {
		t.Fatalf("printDeck: %v", err)
	}
	if !strings.Contains(buf.String(), "hello there") {
		t.Errorf("empty fragment should start at the first slide:\n%s", buf.String())
	}
}

func TestPrintDeckMissingManifest(t *testing.T) {
	ld := loader.New(loader.Options{})
	var buf bytes.Buffer
	err := printDeck(context.Background(), ld, filepath.Join(t.TempDir(), "nope.json"), config.DefaultConfig(), "", 80, &buf)
	if err == nil {
		t.Fatal("expected error for a missing manifest")
	}
}

func TestRunExports(t *testing.T) {
	dir := writeDeck(t)
	out := t.TempDir()
	targets := exportTargets{
		Markdown: filepath.Join(out, "deck.md"),
		SQLite:   filepath.Join(out, "deck.db"),
		Snapshot: filepath.Join(out, "sheet.svg"),
	}
	var stdout, stderr bytes.Buffer
	ld := loader.New(loader.Options{})
	if err := runExports(context.Background(), ld, dir, config.DefaultConfig(), targets, &stdout, &stderr); err != nil {
		t.Fatalf("runExports: %v", err)
	}
	for _, p := range []string{targets.Markdown, targets.SQLite, targets.Snapshot} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s not written: %v", filepath.Base(p), err)
		}
		if !strings.Contains(stdout.String(), p) {
			t.Errorf("stdout should report %s", p)
		}
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected warnings: %s", stderr.String())
	}

	md, _ := os.ReadFile(targets.Markdown)
	if !strings.Contains(string(md), "lazy body") {
		t.Error("markdown should include fetched bodies")
	}
}
