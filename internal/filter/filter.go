// Package filter narrows a document set by structured query filters.
package filter

import (
	"strings"

	"github.com/hyperjump/kensaku/internal/models"
)

// Apply returns the documents that pass every filter in f, in their original order.
// The input slice is not modified.
func Apply(docs []*models.IndexedDocument, f models.Filters) []*models.IndexedDocument {
	out := make([]*models.IndexedDocument, 0, len(docs))
	for _, doc := range docs {
		if Matches(doc, f) {
			out = append(out, doc)
		}
	}
	return out
}

// Matches reports whether doc passes all filters in f.
func Matches(doc *models.IndexedDocument, f models.Filters) bool {
	return matchCategory(doc, f.Categories) &&
		matchTags(doc, f.Tags) &&
		matchAuthor(doc, f.Author) &&
		matchDate(doc, f.DateRange)
}

func matchCategory(doc *models.IndexedDocument, categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if strings.EqualFold(doc.Category, c) {
			return true
		}
	}
	return false
}

// matchTags passes when the document carries at least one of the requested tags.
func matchTags(doc *models.IndexedDocument, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, have := range doc.Tags {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

func matchAuthor(doc *models.IndexedDocument, author string) bool {
	if author == "" {
		return true
	}
	return strings.Contains(strings.ToLower(doc.Author), strings.ToLower(author))
}

func matchDate(doc *models.IndexedDocument, dr *models.DateRange) bool {
	if dr == nil {
		return true
	}
	return dr.Contains(doc.PublishedAt)
}
