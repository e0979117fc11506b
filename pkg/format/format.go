package format

import (
	"strings"
)

// Default label tokens used by the lecture decks.
const (
	DefaultTextLabel        = "النص:"
	DefaultExplanationLabel = "الشرح:"
	DefaultHeadingMarker    = "شرح الشريحة"
	DefaultPlaceholder      = "لا يوجد محتوى"
)

// Labels holds the structural tokens recognised in a slide body.
type Labels struct {
	Text        string `yaml:"text"`
	Explanation string `yaml:"explanation"`
	Heading     string `yaml:"heading"`
	Placeholder string `yaml:"placeholder"`
}

// DefaultLabels returns the Arabic labels used by the original decks.
func DefaultLabels() Labels {
	return Labels{
		Text:        DefaultTextLabel,
		Explanation: DefaultExplanationLabel,
		Heading:     DefaultHeadingMarker,
		Placeholder: DefaultPlaceholder,
	}
}

// WithDefaults fills empty fields from DefaultLabels.
func (l Labels) WithDefaults() Labels {
	d := DefaultLabels()
	if l.Text == "" {
		l.Text = d.Text
	}
	if l.Explanation == "" {
		l.Explanation = d.Explanation
	}
	if l.Heading == "" {
		l.Heading = d.Heading
	}
	if l.Placeholder == "" {
		l.Placeholder = d.Placeholder
	}
	return l
}

// Unescape converts literal "\n" sequences into real line breaks.
func Unescape(raw string) string {
	return strings.ReplaceAll(raw, `\n`, "\n")
}

// Format parses a raw slide body into display blocks. The result is never
// empty: a body that yields nothing becomes a single Placeholder.
func Format(raw string, labels Labels) []Block {
	labels = labels.WithDefaults()
	text := Unescape(raw)

	var blocks []Block
	if !strings.Contains(text, labels.Text) && !strings.Contains(text, labels.Explanation) {
		blocks = formatUnstructured(text, labels)
	} else {
		blocks = formatLabelled(tokenize(text, labels), labels)
	}

	if len(blocks) == 0 {
		return []Block{Placeholder{Text: labels.Placeholder}}
	}
	return blocks
}

func formatUnstructured(text string, labels Labels) []Block {
	var blocks []Block
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, labels.Heading) {
			continue
		}
		blocks = append(blocks, ExplanationBlock{Content: line}, Separator{})
	}
	return blocks
}

// scanner holds the two pending accumulators of the labelled scan.
type scanner struct {
	labels      Labels
	blocks      []Block
	text        string
	explanation string
}

func (s *scanner) flushText() {
	if s.text == "" {
		return
	}
	s.blocks = append(s.blocks, TextBlock{Label: s.labels.Text, Content: s.text})
	s.text = ""
}

func (s *scanner) flushExplanation() {
	if s.explanation == "" {
		return
	}
	s.blocks = append(s.blocks,
		ExplanationBlock{Label: s.labels.Explanation, Content: s.explanation},
		Separator{},
	)
	s.explanation = ""
}

// isLabel reports whether tok is one of the two block labels. A label is
// never taken as the content of the label before it.
func (l Labels) isLabel(tok string) bool {
	return tok == l.Text || tok == l.Explanation
}

func formatLabelled(tokens []string, labels Labels) []Block {
	s := &scanner{labels: labels}

	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case labels.Text:
			s.flushExplanation()
			s.flushText()
			if i+1 < len(tokens) && !labels.isLabel(tokens[i+1]) {
				s.text = tokens[i+1]
				i++
			}
		case labels.Explanation:
			s.flushText()
			if i+1 < len(tokens) && !labels.isLabel(tokens[i+1]) {
				s.explanation = tokens[i+1]
				i++
			}
		default:
			// Unconsumed content can only be the header before the first
			// label; it is never shown.
		}
	}

	s.flushText()
	s.flushExplanation()
	return s.blocks
}

// tokenize splits text on the two labels, keeping the labels as tokens.
// Whitespace-only fragments are dropped and the rest are trimmed.
func tokenize(text string, labels Labels) []string {
	var tokens []string
	push := func(fragment string) {
		if f := strings.TrimSpace(fragment); f != "" {
			tokens = append(tokens, f)
		}
	}

	rest := text
	for {
		idx, label := nextLabel(rest, labels)
		if idx < 0 {
			push(rest)
			return tokens
		}
		push(rest[:idx])
		tokens = append(tokens, label)
		rest = rest[idx+len(label):]
	}
}

// nextLabel finds the earliest label occurrence in s. On a tie the longer
// label wins.
func nextLabel(s string, labels Labels) (int, string) {
	best, bestLabel := -1, ""
	for _, label := range []string{labels.Text, labels.Explanation} {
		if label == "" {
			continue
		}
		i := strings.Index(s, label)
		if i < 0 {
			continue
		}
		if best < 0 || i < best || (i == best && len(label) > len(bestLabel)) {
			best, bestLabel = i, label
		}
	}
	return best, bestLabel
}
