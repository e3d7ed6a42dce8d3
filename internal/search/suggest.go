package search

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/kensaku/internal/models"
)

const (
	// MinSuggestionLength is the shortest input that produces suggestions.
	MinSuggestionLength = 2
	// DefaultSuggestionLimit is used when the caller passes a non-positive limit.
	DefaultSuggestionLimit = 5
)

// Suggest returns titles, tags, and categories containing text (case-insensitive),
// in first-seen order without duplicates, truncated to limit.
func Suggest(docs []*models.IndexedDocument, text string, limit int) []string {
	needle := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(needle) < MinSuggestionLength {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	out := make([]string, 0, limit)
	seen := make(map[string]struct{})
	add := func(candidate string) bool {
		if candidate == "" || !strings.Contains(strings.ToLower(candidate), needle) {
			return false
		}
		if _, ok := seen[candidate]; ok {
			return false
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
		return len(out) >= limit
	}

	for _, doc := range docs {
		if add(doc.Title) {
			return out
		}
	}
	for _, doc := range docs {
		for _, tag := range doc.Tags {
			if add(tag) {
				return out
			}
		}
	}
	for _, doc := range docs {
		if add(doc.Category) {
			return out
		}
	}
	return out
}
