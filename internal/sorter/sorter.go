// Package sorter orders search results by a requested field and direction.
package sorter

import (
	"cmp"
	"slices"

	"github.com/hyperjump/kensaku/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sorter orders results. Titles are compared with a collator for Tag.
type Sorter struct {
	tag language.Tag
}

// New returns a Sorter collating titles for the given language.
func New(tag language.Tag) *Sorter {
	return &Sorter{tag: tag}
}

// Sort orders results in place using the default English collation.
func Sort(results []*models.SearchResult, s models.Sort) {
	New(language.English).Sort(results, s)
}

// Sort orders results in place. Unknown fields sort by relevance. The sort is
// stable and the direction only negates the comparison, so equal elements
// keep their incoming order in both directions.
func (st *Sorter) Sort(results []*models.SearchResult, s models.Sort) {
	if len(results) < 2 {
		return
	}
	compare := st.comparator(s.Field)
	if s.Direction == models.Asc {
		slices.SortStableFunc(results, compare)
		return
	}
	slices.SortStableFunc(results, func(a, b *models.SearchResult) int {
		return -compare(a, b)
	})
}

func (st *Sorter) comparator(field models.SortField) func(a, b *models.SearchResult) int {
	switch field {
	case models.SortDate:
		return func(a, b *models.SearchResult) int {
			return a.PublishedAt.Compare(b.PublishedAt)
		}
	case models.SortTitle:
		// A collator is not safe for concurrent use, so each call gets its own.
		col := collate.New(st.tag)
		return func(a, b *models.SearchResult) int {
			return col.CompareString(a.Title, b.Title)
		}
	case models.SortViews:
		return func(a, b *models.SearchResult) int {
			return cmp.Compare(a.ViewCount, b.ViewCount)
		}
	case models.SortReadingTime:
		return func(a, b *models.SearchResult) int {
			return cmp.Compare(a.ReadingTimeMinutes, b.ReadingTimeMinutes)
		}
	default:
		return func(a, b *models.SearchResult) int {
			return cmp.Compare(a.ScoreOrZero(), b.ScoreOrZero())
		}
	}
}
