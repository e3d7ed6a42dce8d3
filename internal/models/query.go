package models

import (
	"strings"
	"time"
)

// SortField names the attribute results are ordered by.
type SortField string

const (
	SortRelevance   SortField = "relevance"
	SortDate        SortField = "date"
	SortTitle       SortField = "title"
	SortViews       SortField = "views"
	SortReadingTime SortField = "readingTime"
)

// ParseSortField maps a user-supplied field name to a SortField.
// Unknown names fall back to SortRelevance.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date":
		return SortDate
	case "title":
		return SortTitle
	case "views":
		return SortViews
	case "readingtime", "reading_time", "readtime":
		return SortReadingTime
	default:
		return SortRelevance
	}
}

// SortDirection is ascending or descending.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// ParseSortDirection returns Asc for "asc" (any case) and Desc for anything else.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

// Sort is the requested result order.
type Sort struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort orders by relevance, best first.
func DefaultSort() Sort {
	return Sort{Field: SortRelevance, Direction: Desc}
}

// DateRange is the half-open interval [Start, End).
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Filters holds the structured filters of a query. Categories and Tags are
// sets compared case-insensitively; insertion order is kept for display.
type Filters struct {
	Categories []string   `json:"categories"`
	Tags       []string   `json:"tags"`
	Author     string     `json:"author,omitempty"`
	DateRange  *DateRange `json:"dateRange,omitempty"`
}

// Clone returns a deep copy of f.
func (f Filters) Clone() Filters {
	out := Filters{
		Categories: append([]string{}, f.Categories...),
		Tags:       append([]string{}, f.Tags...),
		Author:     f.Author,
	}
	if f.DateRange != nil {
		dr := *f.DateRange
		out.DateRange = &dr
	}
	return out
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return len(f.Categories) == 0 && len(f.Tags) == 0 && f.Author == "" && f.DateRange == nil
}

// AddCategory adds v to the category set. Returns false if already present.
func (f *Filters) AddCategory(v string) bool {
	return addToSet(&f.Categories, v)
}

// RemoveCategory removes v from the category set.
func (f *Filters) RemoveCategory(v string) bool {
	return removeFromSet(&f.Categories, v)
}

// AddTag adds v to the tag set. Returns false if already present.
func (f *Filters) AddTag(v string) bool {
	return addToSet(&f.Tags, v)
}

// RemoveTag removes v from the tag set.
func (f *Filters) RemoveTag(v string) bool {
	return removeFromSet(&f.Tags, v)
}

func addToSet(set *[]string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, existing := range *set {
		if strings.EqualFold(existing, v) {
			return false
		}
	}
	*set = append(*set, v)
	return true
}

func removeFromSet(set *[]string, v string) bool {
	v = strings.TrimSpace(v)
	for i, existing := range *set {
		if strings.EqualFold(existing, v) {
			*set = append((*set)[:i], (*set)[i+1:]...)
			return true
		}
	}
	return false
}

// Query is the structured form of a raw query string.
type Query struct {
	Raw      string  `json:"raw"`
	FreeText string  `json:"freeText"`
	Filters  Filters `json:"filters"`
	Sort     Sort    `json:"sort"`
}

// Terms returns the lower-cased, whitespace-separated free-text terms.
func (q *Query) Terms() []string {
	return strings.Fields(strings.ToLower(q.FreeText))
}

// HasFreeText reports whether the query carries any free-text terms.
func (q *Query) HasFreeText() bool {
	return len(q.Terms()) > 0
}
