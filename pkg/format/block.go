// Package format turns a raw slide body into an ordered sequence of display
// blocks.
//
// A body is either unstructured (one explanation block per line) or a
// sequence of labelled segments:
//
//	Slide 3 header           <- dropped, the title is rendered separately
//	النص:
//	original text
//	الشرح:
//	explanation of the text
//
// Blocks are derived on every render and never stored.
package format

// Kind identifies the type of a Block.
type Kind int

const (
	KindText Kind = iota
	KindExplanation
	KindSeparator
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindExplanation:
		return "explanation"
	case KindSeparator:
		return "separator"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Block is one display element of a formatted slide body.
type Block interface {
	Kind() Kind
}

// TextBlock is a labelled "text" segment.
type TextBlock struct {
	Label   string
	Content string
}

// ExplanationBlock is an explanation segment. Label is empty for lines of
// an unstructured body.
type ExplanationBlock struct {
	Label   string
	Content string
}

// Separator is the visual divider emitted after explanation blocks.
type Separator struct{}

// Placeholder is shown when a body produced no other block.
type Placeholder struct {
	Text string
}

func (TextBlock) Kind() Kind        { return KindText }
func (ExplanationBlock) Kind() Kind { return KindExplanation }
func (Separator) Kind() Kind        { return KindSeparator }
func (Placeholder) Kind() Kind      { return KindPlaceholder }

// Labelled reports whether the explanation came from a labelled segment.
func (b ExplanationBlock) Labelled() bool {
	return b.Label != ""
}

// Content returns the visible text of a block, or "" for separators.
func Content(b Block) string {
	switch v := b.(type) {
	case TextBlock:
		return v.Content
	case ExplanationBlock:
		return v.Content
	case Placeholder:
		return v.Text
	default:
		return ""
	}
}

// Count returns how many blocks of the given kind appear in blocks.
func Count(blocks []Block, kind Kind) int {
	n := 0
	for _, b := range blocks {
		if b.Kind() == kind {
			n++
		}
	}
	return n
}
