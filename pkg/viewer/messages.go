package viewer

import (
	"errors"
	"strconv"

	"github.com/vanderheijden86/slideview/pkg/loader"
)

// Default user-facing strings.
const (
	DefaultEmptyCatalog = "لا توجد شرائح في الملف"
	DefaultLoadFailure  = "خطأ في تحميل الشرائح"
	DefaultImageAlt     = "صورة الشريحة"
)

// Messages holds the strings shown for catalog problems and image alt text.
type Messages struct {
	EmptyCatalog string `yaml:"empty_catalog,omitempty"`
	LoadFailure  string `yaml:"load_failure,omitempty"`
	ImageAlt     string `yaml:"image_alt,omitempty"`
}

// DefaultMessages returns the Arabic strings of the lecture decks.
func DefaultMessages() Messages {
	return Messages{
		EmptyCatalog: DefaultEmptyCatalog,
		LoadFailure:  DefaultLoadFailure,
		ImageAlt:     DefaultImageAlt,
	}
}

// WithDefaults fills empty fields from DefaultMessages.
func (m Messages) WithDefaults() Messages {
	d := DefaultMessages()
	if m.EmptyCatalog == "" {
		m.EmptyCatalog = d.EmptyCatalog
	}
	if m.LoadFailure == "" {
		m.LoadFailure = d.LoadFailure
	}
	if m.ImageAlt == "" {
		m.ImageAlt = d.ImageAlt
	}
	return m
}

// LoadError returns the message shown when the deck could not be loaded.
func (m Messages) LoadError(err error) string {
	if err == nil || errors.Is(err, loader.ErrEmptyCatalog) {
		return m.EmptyCatalog
	}
	return m.LoadFailure + ": " + rootCause(err).Error()
}

// AltText returns the image alt text for a slide.
func (m Messages) AltText(id int) string {
	return m.ImageAlt + " " + strconv.Itoa(id)
}

// rootCause unwraps a ManifestError so the user sees the transport or
// decode problem rather than the wrapper prefix.
func rootCause(err error) error {
	var me *loader.ManifestError
	if errors.As(err, &me) && me.Err != nil {
		return me.Err
	}
	return err
}
