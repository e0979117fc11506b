// Package loader reads slide deck manifests and the lazily fetched slide
// bodies and images they reference.
//
// A source is a local file, a directory holding slides.json, or an
// http(s) URL. Relative references inside the manifest resolve against the
// manifest location, the same way a browser resolves them against the page.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/slideview/pkg/debug"
	"github.com/vanderheijden86/slideview/pkg/metrics"
	"github.com/vanderheijden86/slideview/pkg/model"
)

// ManifestName is the manifest file looked up inside a directory or URL
// ending in "/".
const ManifestName = "slides.json"

// DefaultTimeout bounds each HTTP request when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

var (
	// ErrManifestLoad marks any failure to fetch or decode the manifest.
	ErrManifestLoad = errors.New("manifest load failed")
	// ErrEmptyCatalog is returned when the manifest decodes to no slides.
	ErrEmptyCatalog = errors.New("empty slide catalog")
	// ErrBodyFetch marks a failed lazy body fetch.
	ErrBodyFetch = errors.New("body fetch failed")
	// ErrImageLoad marks a slide image that could not be read or decoded.
	ErrImageLoad = errors.New("image load failed")
)

// ManifestError describes a manifest that could not be loaded.
type ManifestError struct {
	Source string
	Err    error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("loading manifest %s: %v", e.Source, e.Err)
}

func (e *ManifestError) Unwrap() []error { return []error{ErrManifestLoad, e.Err} }

// BodyError describes a slide body that could not be fetched.
type BodyError struct {
	SlideID int
	Path    string
	Err     error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("fetching body of slide %d from %s: %v", e.SlideID, e.Path, e.Err)
}

func (e *BodyError) Unwrap() []error { return []error{ErrBodyFetch, e.Err} }

// ImageError describes a slide image that could not be loaded.
type ImageError struct {
	Ref string
	Err error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("loading image %s: %v", e.Ref, e.Err)
}

func (e *ImageError) Unwrap() []error { return []error{ErrImageLoad, e.Err} }

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Options configures a Loader.
type Options struct {
	// Client is used for http(s) sources. If nil, a client with Timeout is
	// created.
	Client *http.Client

	// Timeout applies to the default client. If 0, DefaultTimeout is used.
	Timeout time.Duration

	// WarningHandler receives non-fatal problems found while loading.
	// If nil, warnings go to the debug log.
	WarningHandler func(string)
}

// Loader fetches manifests, bodies and images.
type Loader struct {
	client *http.Client
	warn   func(string)
}

// New returns a Loader configured by opts.
func New(opts Options) *Loader {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) { debug.Log("loader: %s", msg) }
	}
	return &Loader{client: client, warn: warn}
}

var defaultLoader = New(Options{})

// Load reads the manifest at src with the default loader.
func Load(ctx context.Context, src string) (*model.Deck, error) {
	return defaultLoader.Load(ctx, src)
}

// FetchBody fetches a slide body with the default loader.
func FetchBody(ctx context.Context, deck *model.Deck, slide model.Slide) (string, error) {
	return defaultLoader.FetchBody(ctx, deck, slide)
}

// Load reads and decodes the manifest at src. The returned deck is sorted by
// slide id. There is no retry.
func (l *Loader) Load(ctx context.Context, src string) (*model.Deck, error) {
	defer debug.LogEnterExit("loader.Load")()
	defer metrics.Timer(metrics.ManifestLoad)()

	loc, err := ResolveManifest(src)
	if err != nil {
		return nil, &ManifestError{Source: src, Err: err}
	}

	data, err := l.read(ctx, loc)
	if err != nil {
		return nil, &ManifestError{Source: loc, Err: err}
	}

	slides, err := ParseManifest(data)
	if err != nil {
		if errors.Is(err, ErrEmptyCatalog) {
			return nil, fmt.Errorf("%s: %w", loc, err)
		}
		return nil, &ManifestError{Source: loc, Err: err}
	}

	for _, s := range slides {
		if s.Text != "" && s.TextPath != "" {
			l.warn(fmt.Sprintf("slide %d has inline text; textPath %q is ignored", s.ID, s.TextPath))
		}
	}

	deck, err := model.NewDeck(loc, slides)
	if err != nil {
		return nil, &ManifestError{Source: loc, Err: err}
	}
	debug.Log("loaded %d slides from %s", deck.Len(), loc)
	return deck, nil
}

// ParseManifest decodes a JSON slide array. An empty document, "null" or
// "[]" yields ErrEmptyCatalog.
func ParseManifest(data []byte) ([]model.Slide, error) {
	data = bytes.TrimSpace(stripBOM(data))
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrEmptyCatalog
	}

	var slides []model.Slide
	if err := json.Unmarshal(data, &slides); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if len(slides) == 0 {
		return nil, ErrEmptyCatalog
	}
	return slides, nil
}

// ResolveManifest turns a user supplied source into the manifest location.
// An empty source means ManifestName in the working directory.
func ResolveManifest(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		src = ManifestName
	}

	if isURL(src) {
		if strings.HasSuffix(src, "/") {
			return src + ManifestName, nil
		}
		return src, nil
	}

	if info, err := os.Stat(src); err == nil && info.IsDir() {
		src = filepath.Join(src, ManifestName)
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", src, err)
	}
	return abs, nil
}

// ResolveRef resolves ref against the manifest location base.
func ResolveRef(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || isURL(ref) {
		return ref
	}

	if isURL(base) {
		b, err := url.Parse(base)
		if err != nil {
			return ref
		}
		r, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return b.ResolveReference(r).String()
	}

	if filepath.IsAbs(ref) || base == "" {
		return ref
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref))
}

// FetchBody returns the raw body of a slide. Inline text is returned as is;
// otherwise TextPath is fetched relative to the deck source.
func (l *Loader) FetchBody(ctx context.Context, deck *model.Deck, slide model.Slide) (string, error) {
	if slide.HasInlineText() {
		return slide.Text, nil
	}
	if !slide.NeedsFetch() {
		return "", nil
	}

	var source string
	if deck != nil {
		source = deck.Source
	}
	path := ResolveRef(source, slide.TextPath)

	start := time.Now()
	data, err := l.read(ctx, path)
	elapsed := time.Since(start)
	metrics.BodyFetch.Record(elapsed)
	debug.LogTiming(fmt.Sprintf("body %d", slide.ID), elapsed)
	if err != nil {
		return "", &BodyError{SlideID: slide.ID, Path: path, Err: err}
	}
	return string(stripBOM(data)), nil
}

// FetchImage returns the raw bytes of an image reference resolved against
// the deck source.
func (l *Loader) FetchImage(ctx context.Context, deck *model.Deck, ref string) ([]byte, error) {
	var source string
	if deck != nil {
		source = deck.Source
	}
	resolved := ResolveRef(source, ref)
	if resolved == "" {
		return nil, &ImageError{Ref: ref, Err: errors.New("empty image reference")}
	}
	defer metrics.Timer(metrics.ImageFetch)()
	data, err := l.read(ctx, resolved)
	if err != nil {
		return nil, &ImageError{Ref: resolved, Err: err}
	}
	return data, nil
}

func (l *Loader) read(ctx context.Context, loc string) ([]byte, error) {
	if !isURL(loc) {
		data, err := os.ReadFile(loc)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", loc, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: loc, Code: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", loc, err)
	}
	return data, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
