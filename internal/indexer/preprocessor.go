package indexer

import (
	"html"
	"math"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	htmlchar "github.com/blevesearch/bleve/v2/analysis/char/html"
	"github.com/blevesearch/bleve/v2/registry"
)

var (
	markupFilterOnce sync.Once
	markupFilter     analysis.CharFilter
	fallbackTagRegex = regexp.MustCompile(`<[^>]*>`)
)

// loadMarkupFilter resolves bleve's html char filter, which replaces tags with spaces.
func loadMarkupFilter() analysis.CharFilter {
	markupFilterOnce.Do(func() {
		cf, err := registry.NewCache().CharFilterNamed(htmlchar.Name)
		if err == nil {
			markupFilter = cf
		}
	})
	return markupFilter
}

// StripMarkup removes HTML tags, decodes entities, and normalizes whitespace.
func StripMarkup(content string) string {
	if content == "" {
		return ""
	}
	var text string
	if cf := loadMarkupFilter(); cf != nil {
		text = string(cf.Filter([]byte(content)))
	} else {
		text = fallbackTagRegex.ReplaceAllString(content, " ")
	}
	return Preprocess(html.UnescapeString(text))
}

// Preprocess normalizes text for indexing (trim, collapse whitespace).
func Preprocess(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}

// CountWords returns the number of whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime returns ceil(words/wordsPerMinute).
func ReadingTime(words, wordsPerMinute int) int {
	if words <= 0 || wordsPerMinute <= 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / float64(wordsPerMinute)))
}
