// Package location keeps the current slide fragment in a small file so it
// can be bookmarked, shared and edited from outside the viewer, the way a
// browser address bar is.
package location

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vanderheijden86/slideview/pkg/debug"
	"github.com/vanderheijden86/slideview/pkg/watcher"
)

// DefaultPath returns $XDG_STATE_HOME/sv/location, falling back to
// ~/.local/state/sv/location.
func DefaultPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "sv", "location")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "sv-location")
	}
	return filepath.Join(home, ".local", "state", "sv", "location")
}

// File is a file-backed nav.Location. The fragment is cached so reads in
// the render path never touch the disk.
type File struct {
	path string

	mu       sync.Mutex
	fragment string
	w        *watcher.Watcher
}

// Open reads the fragment stored at path. A missing file is not an error;
// it is created on the first SetFragment.
func Open(path string) (*File, error) {
	if path == "" {
		path = DefaultPath()
	}
	f := &File{path: path}
	fragment, err := f.read()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	f.fragment = fragment
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Fragment returns the last known fragment.
func (f *File) Fragment() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fragment
}

// SetFragment stores fragment and writes it atomically.
func (f *File) SetFragment(fragment string) error {
	f.mu.Lock()
	if f.fragment == fragment {
		f.mu.Unlock()
		return nil
	}
	f.fragment = fragment
	f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating location dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(fragment+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing location: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing location: %w", err)
	}
	return nil
}

// Reload re-reads the file and reports the fragment and whether it differs
// from the cached one.
func (f *File) Reload() (string, bool, error) {
	fragment, err := f.read()
	if err != nil {
		return f.Fragment(), false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := fragment != f.fragment
	f.fragment = fragment
	return fragment, changed, nil
}

// Watch starts watching the file for external edits and returns the change
// channel. Calling Watch again returns the same channel.
func (f *File) Watch(debounce time.Duration) (<-chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.w != nil {
		return f.w.Changed(), nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return nil, fmt.Errorf("creating location dir: %w", err)
	}
	w, err := watcher.New(f.path,
		watcher.WithDebounceDuration(debounce),
		watcher.WithOnError(func(err error) {
			debug.Log("location: watch %s: %v", f.path, err)
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("watching location: %w", err)
	}
	f.w = w
	return w.Changed(), nil
}

// Close stops watching.
func (f *File) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.w != nil {
		f.w.Stop()
		f.w = nil
	}
}

func (f *File) read() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line), nil
}
