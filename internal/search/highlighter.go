package search

import "regexp"

const (
	DefaultPreTag  = "<mark>"
	DefaultPostTag = "</mark>"
)

// Highlighter wraps case-insensitive occurrences of query terms in marker tags.
//
// Terms are applied one after another, so a term that also matches inside an
// earlier marker or an overlapping match may be wrapped more than once.
type Highlighter struct {
	preTag  string
	postTag string
}

// NewHighlighter returns a Highlighter using the given tags. Empty tags fall
// back to <mark> and </mark>.
func NewHighlighter(preTag, postTag string) *Highlighter {
	if preTag == "" {
		preTag = DefaultPreTag
	}
	if postTag == "" {
		postTag = DefaultPostTag
	}
	return &Highlighter{preTag: preTag, postTag: postTag}
}

// Compile builds the case-insensitive patterns for terms once, so one query's
// results can all be highlighted without recompiling. Empty terms are skipped.
func (h *Highlighter) Compile(terms []string) *Marker {
	m := &Marker{preTag: h.preTag, postTag: h.postTag}
	for _, term := range terms {
		if term == "" {
			continue
		}
		m.patterns = append(m.patterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(term)))
	}
	return m
}

// Highlight marks every occurrence of each term in text.
// Text is returned unchanged when there are no terms.
func (h *Highlighter) Highlight(text string, terms []string) string {
	return h.Compile(terms).Highlight(text)
}

// HighlightAll marks terms in each value and returns a new slice.
func (h *Highlighter) HighlightAll(values []string, terms []string) []string {
	return h.Compile(terms).HighlightAll(values)
}

// Marker applies a compiled set of term patterns.
type Marker struct {
	preTag   string
	postTag  string
	patterns []*regexp.Regexp
}

// Highlight wraps every match of each pattern in text, in term order.
func (m *Marker) Highlight(text string) string {
	if text == "" || len(m.patterns) == 0 {
		return text
	}
	wrap := func(match string) string {
		return m.preTag + match + m.postTag
	}
	for _, re := range m.patterns {
		text = re.ReplaceAllStringFunc(text, wrap)
	}
	return text
}

// HighlightAll marks each value and returns a new slice.
func (m *Marker) HighlightAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = m.Highlight(v)
	}
	return out
}
